// Package search is the boundary to the document-search backend.
//
// Elastic queries an Elasticsearch index of licensing guidance; Cached puts a
// Redis cache in front of any Searcher; Noop is used when no backend is
// configured.
//
// Example usage:
//
//	es, err := search.NewElastic(search.ElasticConfig{
//	    Addresses: []string{"http://localhost:9200"},
//	    Index:     "water-guidance",
//	}, logger)
//	searcher := search.NewCached(es, redisClient, 10*time.Minute, logger)
//	docs, err := searcher.Search(ctx, "groundwater well", 5)
package search
