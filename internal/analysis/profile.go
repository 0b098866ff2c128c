package analysis

import (
	"fmt"

	"github.com/aescanero/dago-node-analyzer/internal/detect"
	"github.com/aescanero/dago-node-analyzer/internal/model"
)

// Extraction is what a profile's Extractor derives from the request.
type Extraction struct {
	Suggestions     []model.Suggestion
	Recommendations []string
}

// Extractor derives form-value suggestions from the request text and fields.
type Extractor func(query model.Query, detections []model.DetectionMatch) Extraction

// Profile is everything that distinguishes one domain's analysis from another.
type Profile struct {
	Domain  model.Domain
	Lexicon *detect.Lexicon

	// FormTerms select the form fields relevant to the domain, by label.
	FormTerms []string

	// SearchSuffix is appended to the request text before searching.
	SearchSuffix string

	// Estimates maps a detected keyword to a quantity rule of thumb.
	Estimates map[string]string

	DefaultRecommendations []string
	Clarification          string
	NoDocumentsMessage     string

	Extractor Extractor
}

// Validate reports configuration errors. Profiles are static, so a failure is a
// programmer error surfaced at construction.
func (p Profile) Validate() error {
	if !p.Domain.IsKnown() {
		return fmt.Errorf("profile has unknown domain %q", p.Domain)
	}
	if p.Lexicon == nil || p.Lexicon.Len() == 0 {
		return fmt.Errorf("profile %s: lexicon is required", p.Domain)
	}
	if len(p.DefaultRecommendations) == 0 {
		return fmt.Errorf("profile %s: default recommendations are required", p.Domain)
	}
	if p.Clarification == "" {
		return fmt.Errorf("profile %s: clarification prompt is required", p.Domain)
	}
	return nil
}

// DefaultProfiles returns the profiles for every known domain.
func DefaultProfiles() []Profile {
	return []Profile{SourceProfile(), UsageProfile(), PermissionsProfile()}
}
