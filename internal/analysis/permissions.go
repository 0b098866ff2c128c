package analysis

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aescanero/dago-node-analyzer/internal/detect"
	"github.com/aescanero/dago-node-analyzer/internal/model"
)

var permissionsLexicon = detect.MustLexicon(
	detect.Entry{Keyword: "water sustainability act", Category: "legislation", Description: "BC Water Sustainability Act"},
	detect.Entry{Keyword: "environmental assessment", Category: "assessment", Description: "Environmental assessment requirement"},
	detect.Entry{Keyword: "first nation consultation", Category: "consultation", Description: "First Nation consultation obligation"},
	detect.Entry{Keyword: "fee exemption", Category: "fee exemption", Description: "Application fee exemption"},
	detect.Entry{Keyword: "water license", Category: "license", Description: "Water licence application"},
	detect.Entry{Keyword: "groundwater", Category: "regulation", Description: "Groundwater licensing regulation"},
)

// Fee-exemption form fields.
const (
	FieldFeeExemptionEligible = "V1IsEligibleForFeeExemption"
	FieldExistingExemptClient = "V1IsExistingExemptClient"
	FieldClientNumber         = "V1FeeExemptionClientNumber"
	FieldExemptionCategory    = "V1FeeExemptionCategory"
	FieldSupportingInfo       = "V1FeeExemptionSupportingInfo"
)

var (
	yesNoPattern      = regexp.MustCompile(`(?i)\b(yes|no)\b`)
	clientPattern     = regexp.MustCompile(`(?i)\bclient(?:\s*(?:no\.?|number))?\s*[:#]?\s*([A-Za-z0-9\-]+)\b`)
	categoryPattern   = regexp.MustCompile(`(?i)\bcategory\s*[:\-]\s*([^\n\r;,.]{1,80})`)
	supportingPattern = regexp.MustCompile(`(?i)\bsupporting\s*(?:info|information)\s*[:\-]\s*(.{10,400})`)
)

// PermissionsProfile analyses regulatory requirements and fee exemptions.
func PermissionsProfile() Profile {
	return Profile{
		Domain:       model.DomainPermissions,
		Lexicon:      permissionsLexicon,
		FormTerms:    []string{"permit", "license", "authorization", "exemption", "compliance", "regulation"},
		SearchSuffix: " BC Water Sustainability Act",
		DefaultRecommendations: []string{
			"Review BC Water Sustainability Act requirements",
			"Check First Nation consultation obligations",
			"Verify environmental assessment needs",
			"Confirm fee exemption eligibility criteria",
		},
		Clarification:      "Please specify the regulatory requirements or compliance concerns",
		NoDocumentsMessage: "No compliance guidance found.",
		Extractor:          extractFeeExemption,
	}
}

// extractFeeExemption suggests fee-exemption form values from explicit
// statements in the request text. Each field has its own trigger; when a form
// is supplied only its fields are suggested.
func extractFeeExemption(query model.Query, _ []model.DetectionMatch) Extraction {
	text := query.Text()
	lowered := strings.ToLower(text)
	fields := query.Fields()

	present := make(map[string]bool, len(fields))
	for _, f := range fields {
		present[f.ID] = true
	}

	var out Extraction
	suggest := func(fieldID, value string, confidence float64, rationale string) {
		if len(fields) > 0 && !present[fieldID] {
			return
		}
		out.Suggestions = append(out.Suggestions, model.Suggestion{
			FieldID:    fieldID,
			Value:      value,
			Confidence: confidence,
			Rationale:  rationale,
		})
	}

	// Eligibility needs the fee exemption wording next to a yes/no answer
	if strings.Contains(lowered, "fee exemption") || strings.Contains(lowered, "fee exempt") {
		if m := yesNoPattern.FindStringSubmatch(text); m != nil {
			suggest(FieldFeeExemptionEligible, yesNo(m[1]), 0.85, "fee exemption answered in request")
		}
	}

	if strings.Contains(lowered, "existing exempt client") || strings.Contains(lowered, "existing exemption client") {
		if m := yesNoPattern.FindStringSubmatch(text); m != nil {
			suggest(FieldExistingExemptClient, yesNo(m[1]), 0.8, "existing exempt client answered in request")
		}
	}

	if m := clientPattern.FindStringSubmatch(text); m != nil && !isClientFiller(m[1]) {
		client := m[1]
		suggest(FieldClientNumber, client, 0.9, "client number provided")
		out.Recommendations = append(out.Recommendations,
			fmt.Sprintf("Use client number %s for the existing exemption record", client))
	}

	if m := categoryPattern.FindStringSubmatch(text); m != nil {
		if category := strings.TrimRight(strings.TrimSpace(m[1]), " .;,:"); category != "" {
			suggest(FieldExemptionCategory, category, 0.75, "category stated in request")
		}
	}

	if m := supportingPattern.FindStringSubmatch(text); m != nil {
		suggest(FieldSupportingInfo, strings.TrimSpace(m[1]), 0.7, "supporting information stated in request")
	}

	return out
}

// yesNo renders a matched answer the way the form options spell it.
func yesNo(answer string) string {
	if strings.EqualFold(answer, "yes") {
		return "Yes"
	}
	return "No"
}

// isClientFiller rejects captures where a filler word or a yes/no answer was
// taken as the client ID itself.
func isClientFiller(s string) bool {
	switch strings.ToLower(s) {
	case "number", "no", "id", "yes":
		return true
	}
	return false
}
