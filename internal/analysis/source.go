package analysis

import (
	"github.com/aescanero/dago-node-analyzer/internal/detect"
	"github.com/aescanero/dago-node-analyzer/internal/model"
)

var sourceLexicon = detect.MustLexicon(
	detect.Entry{Keyword: "fraser river", Category: "river", Description: "Fraser River watershed"},
	detect.Entry{Keyword: "lake", Category: "surface_water", Description: "Lake or pond"},
	detect.Entry{Keyword: "well", Category: "groundwater", Description: "Drilled or dug well"},
	detect.Entry{Keyword: "creek", Category: "surface_water", Description: "Creek or small stream"},
	detect.Entry{Keyword: "groundwater", Category: "groundwater", Description: "Groundwater aquifer"},
	detect.Entry{Keyword: "reservoir", Category: "surface_water", Description: "Storage reservoir"},
	detect.Entry{Keyword: "stream", Category: "surface_water", Description: "Stream or river"},
)

// SourceProfile analyses where the water comes from.
func SourceProfile() Profile {
	return Profile{
		Domain:    model.DomainSource,
		Lexicon:   sourceLexicon,
		FormTerms: []string{"source", "location", "body of water", "intake"},
		DefaultRecommendations: []string{
			"Specify exact coordinates if using groundwater",
			"Provide water rights documentation for surface water",
			"Include seasonal flow information for streams/rivers",
		},
		Clarification:      "Please specify the water source location and type",
		NoDocumentsMessage: "No relevant data found for source query.",
	}
}
