// Package detect implements deterministic keyword detection against static
// per-domain lexicons.
//
// Example usage:
//
//	lex := detect.MustLexicon(
//	    detect.Entry{Keyword: "lake", Category: "surface_water", Description: "Lake source"},
//	    detect.Entry{Keyword: "well", Category: "groundwater", Description: "Well source"},
//	)
//	matches := detect.Detect("Drawing from the lake near our well", lex)
package detect
