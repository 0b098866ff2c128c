// Package config provides configuration management for the analysis worker.
//
// Configuration is loaded from environment variables and validated on startup.
// All configuration options have sensible defaults for development; without
// LLM_API_KEY every request is analysed rule-based, and with SEARCH_BACKEND=none
// no guidance documents are searched.
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg)
package config
