package model

// Status is the terminal outcome of one unit invocation.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// ProcessingMethod records which analysis path produced a result.
type ProcessingMethod string

const (
	MethodRuleBased ProcessingMethod = "rule_based"
	MethodHybridLLM ProcessingMethod = "hybrid_llm"
	MethodSkipped   ProcessingMethod = "skipped"
)

// DetectionMatch is one lexicon keyword found in the request text.
type DetectionMatch struct {
	Keyword     string `json:"keyword"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
}

// DocumentRef is a ranked document returned by the search backend.
type DocumentRef struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	URL     string  `json:"url,omitempty"`
	Content string  `json:"content,omitempty"`
	Snippet string  `json:"snippet,omitempty"`
	Score   float64 `json:"score"`
}

// FieldMatch is a form field whose label is relevant to a domain.
type FieldMatch struct {
	ID    string `json:"id,omitempty"`
	Label string `json:"label"`
	Type  string `json:"type,omitempty"`
	Value string `json:"value,omitempty"`
}

// Suggestion proposes a value for a form field.
type Suggestion struct {
	FieldID    string  `json:"field_id"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale,omitempty"`
}

// QuantityEstimate is a rule-of-thumb water quantity for a detected usage.
type QuantityEstimate struct {
	Usage    string `json:"usage"`
	Estimate string `json:"estimate"`
}

// EnhancedPayload is the structured output of the enhancement pass.
type EnhancedPayload struct {
	Data            map[string]any `json:"data"`
	Recommendations []string       `json:"recommendations,omitempty"`
}

// UnitResult is the outcome of one analysis unit invocation.
type UnitResult struct {
	Domain            Domain             `json:"domain"`
	Status            Status             `json:"status"`
	Detections        []DetectionMatch   `json:"detections"`
	Documents         []DocumentRef      `json:"documents"`
	FormMatches       []FieldMatch       `json:"form_matches,omitempty"`
	Suggestions       []Suggestion       `json:"suggestions,omitempty"`
	Estimates         []QuantityEstimate `json:"estimates,omitempty"`
	Enhancement       *EnhancedPayload   `json:"enhancement,omitempty"`
	ProcessingMethod  ProcessingMethod   `json:"processing_method"`
	Recommendations   []string           `json:"recommendations"`
	Escalated         bool               `json:"escalated"`
	EscalationReasons []string           `json:"escalation_reasons,omitempty"`
	EnhancementError  string             `json:"enhancement_error,omitempty"`
	Message           string             `json:"message,omitempty"`
}

// SkippedResult is the placeholder recorded for a domain that routing did not select.
func SkippedResult(d Domain) UnitResult {
	return UnitResult{
		Domain:           d,
		Status:           StatusSkipped,
		Detections:       []DetectionMatch{},
		Documents:        []DocumentRef{},
		ProcessingMethod: MethodSkipped,
		Recommendations:  []string{},
		Message:          "not selected by routing",
	}
}

// ErrorResult is the shape recorded when a unit fails outside its own error handling.
func ErrorResult(d Domain, message string) UnitResult {
	return UnitResult{
		Domain:           d,
		Status:           StatusError,
		Detections:       []DetectionMatch{},
		Documents:        []DocumentRef{},
		ProcessingMethod: MethodRuleBased,
		Recommendations:  []string{},
		Message:          message,
	}
}
