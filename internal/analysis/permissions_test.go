package analysis

import (
	"testing"

	"github.com/aescanero/dago-node-analyzer/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func suggestionValues(ex Extraction) map[string]string {
	out := map[string]string{}
	for _, s := range ex.Suggestions {
		out[s.FieldID] = s.Value
	}
	return out
}

func TestExtractFeeExemptionCategoryAndSupportingInfo(t *testing.T) {
	ex := extractFeeExemption(model.NewQuery(
		"Exempt category: agricultural producer; supporting info: we are a registered farm operation"), nil)

	values := suggestionValues(ex)
	assert.Equal(t, "agricultural producer", values[FieldExemptionCategory])
	assert.Equal(t, "we are a registered farm operation", values[FieldSupportingInfo])
	assert.NotContains(t, values, FieldClientNumber)
	assert.Empty(t, ex.Recommendations)
}

func TestExtractFeeExemptionOnlySuggestsFormFields(t *testing.T) {
	query := model.NewQuery("client number xy-99 exempt",
		model.FormField{ID: FieldClientNumber, Label: "Client number"})

	ex := extractFeeExemption(query, nil)

	require.Len(t, ex.Suggestions, 1)
	assert.Equal(t, FieldClientNumber, ex.Suggestions[0].FieldID)
	assert.Equal(t, "xy-99", ex.Suggestions[0].Value)
	assert.Equal(t, []string{"Use client number xy-99 for the existing exemption record"}, ex.Recommendations)
}

func TestExtractFeeExemptionEligibilityNeedsFeeWording(t *testing.T) {
	values := suggestionValues(extractFeeExemption(model.NewQuery("Fee exemption: yes please"), nil))
	assert.Equal(t, "Yes", values[FieldFeeExemptionEligible])

	values = suggestionValues(extractFeeExemption(model.NewQuery("We are fee exempt? NO"), nil))
	assert.Equal(t, "No", values[FieldFeeExemptionEligible])

	values = suggestionValues(extractFeeExemption(model.NewQuery("I am exempt, yes"), nil))
	assert.NotContains(t, values, FieldFeeExemptionEligible)
}

func TestExtractFeeExemptionExistingClientAnswer(t *testing.T) {
	values := suggestionValues(extractFeeExemption(model.NewQuery("existing exempt client: no"), nil))
	assert.Equal(t, "No", values[FieldExistingExemptClient])
	assert.NotContains(t, values, FieldFeeExemptionEligible)

	values = suggestionValues(extractFeeExemption(model.NewQuery("Existing exemption client yes"), nil))
	assert.Equal(t, "Yes", values[FieldExistingExemptClient])
	assert.NotContains(t, values, FieldClientNumber)
}

func TestExtractFeeExemptionClientNumberKeepsCase(t *testing.T) {
	ex := extractFeeExemption(model.NewQuery("client number Ab1234"), nil)

	require.Len(t, ex.Suggestions, 1)
	assert.Equal(t, FieldClientNumber, ex.Suggestions[0].FieldID)
	assert.Equal(t, "Ab1234", ex.Suggestions[0].Value)
	assert.InDelta(t, 0.9, ex.Suggestions[0].Confidence, 1e-9)
	assert.Equal(t, []string{"Use client number Ab1234 for the existing exemption record"}, ex.Recommendations)
}

func TestExtractFeeExemptionClientFillerIgnored(t *testing.T) {
	ex := extractFeeExemption(model.NewQuery("I am exempt, client no"), nil)
	assert.Empty(t, ex.Suggestions)
	assert.Empty(t, ex.Recommendations)
}

func TestExtractFeeExemptionCategoryTrimmed(t *testing.T) {
	values := suggestionValues(extractFeeExemption(model.NewQuery("category - municipal water supplier :\n"), nil))
	assert.Equal(t, "municipal water supplier", values[FieldExemptionCategory])
	assert.Len(t, values, 1)
}
