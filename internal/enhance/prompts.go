package enhance

import "github.com/aescanero/dago-node-analyzer/internal/model"

const systemTemplate = "system"

const systemPrompt = `You are an expert in BC water licensing and regulations. Always respond with valid JSON.`

// contextBlock is shared by every domain prompt.
const contextBlock = `
Request: {{{query}}}

{{#if fields}}Form fields:
{{#each fields}}- {{{label}}}: {{{default value "(empty)"}}}
{{/each}}
{{/if}}Rule-based detections:
{{#each detections}}- {{{keyword}}} ({{{category}}})
{{else}}- none
{{/each}}
{{#if suggestions}}Suggested form values:
{{#each suggestions}}- {{{field_id}}} = {{{value}}}
{{/each}}
{{/if}}Reference documents:
{{#each documents}}- {{{title}}}: {{{snippet}}}
{{else}}- none
{{/each}}`

var domainPrompts = map[model.Domain]string{
	model.DomainSource: `Analyze the water source described in this licence request.
` + contextBlock + `
Respond with a JSON object:
{"enhanced_sources": [{"name": "", "type": "", "confidence": 0.0}], "location_analysis": "", "regulatory_considerations": [], "recommendations": []}`,

	model.DomainUsage: `Analyze the intended water usage in this licence request.
` + contextBlock + `
Respond with a JSON object:
{"enhanced_usage": [{"purpose": "", "category": "", "estimated_quantity": ""}], "seasonal_patterns": "", "efficiency_recommendations": []}`,

	model.DomainPermissions: `Analyze the regulatory and permit requirements in this licence request.
` + contextBlock + `
Respond with a JSON object:
{"enhanced_requirements": [{"requirement": "", "authority": "", "priority": ""}], "fee_exemption_analysis": {"eligible": null, "reasoning": ""}, "compliance_checklist": []}`,
}

// recommendationKeys name the reply field holding each domain's recommendations.
var recommendationKeys = map[model.Domain]string{
	model.DomainSource:      "recommendations",
	model.DomainUsage:       "efficiency_recommendations",
	model.DomainPermissions: "compliance_checklist",
}

func templateSources() map[string]string {
	sources := map[string]string{systemTemplate: systemPrompt}
	for d, src := range domainPrompts {
		sources[string(d)] = src
	}
	return sources
}
