package analysis

import (
	"github.com/aescanero/dago-node-analyzer/internal/detect"
	"github.com/aescanero/dago-node-analyzer/internal/model"
)

var usageLexicon = detect.MustLexicon(
	detect.Entry{Keyword: "irrigation", Category: "agricultural", Description: "Crop irrigation (high priority)"},
	detect.Entry{Keyword: "industrial", Category: "industrial", Description: "Industrial process water (high priority)"},
	detect.Entry{Keyword: "domestic", Category: "municipal", Description: "Household supply (medium priority)"},
	detect.Entry{Keyword: "mining", Category: "industrial", Description: "Mining operations (high priority)"},
	detect.Entry{Keyword: "power", Category: "industrial", Description: "Power generation (high priority)"},
	detect.Entry{Keyword: "conservation", Category: "environmental", Description: "Conservation flows (medium priority)"},
	detect.Entry{Keyword: "cooling", Category: "industrial", Description: "Cooling water (medium priority)"},
	detect.Entry{Keyword: "livestock", Category: "agricultural", Description: "Livestock watering (medium priority)"},
	detect.Entry{Keyword: "fire protection", Category: "emergency", Description: "Fire protection reserve (high priority)"},
)

// UsageProfile analyses what the water is for and how much is needed.
func UsageProfile() Profile {
	return Profile{
		Domain:    model.DomainUsage,
		Lexicon:   usageLexicon,
		FormTerms: []string{"purpose", "use", "usage", "application"},
		Estimates: map[string]string{
			"irrigation": "2-5 acre-feet per acre annually",
			"domestic":   "0.5-1 acre-foot per household annually",
			"livestock":  "Variable based on animal type and count",
		},
		DefaultRecommendations: []string{
			"Specify exact water quantities needed",
			"Provide detailed usage schedule (seasonal, daily)",
			"Include efficiency measures planned",
		},
		Clarification:      "Please specify the intended water usage purpose",
		NoDocumentsMessage: "No relevant data found for usage query.",
	}
}
