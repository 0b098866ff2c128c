// Package worker implements the analysis worker lifecycle and Redis Streams integration.
//
// The worker reads analysis requests from a consumer group, runs the workflow
// for each one, and publishes the merged result to the result stream. Requests
// that cannot be parsed or analysed are reported on "<result stream>.errors".
//
// Example usage:
//
//	cfg, _ := config.Load()
//	redisClient := redis.NewClient(cfg.RedisOptions())
//
//	worker := worker.NewWorker(cfg, redisClient, executor, logger)
//	if err := worker.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer worker.Stop()
//
// A request message carries one "data" field:
//
//	{"request_id": "r-1", "message": "irrigation from a well", "form_fields": [{"id": "V1Purpose", "label": "Purpose"}]}
//
// Health checks and Prometheus metrics are served separately:
//
//	healthServer := worker.NewHealthServer(8082, redisClient, logger)
//	healthServer.AddCheck("search", es.Ping)
//	healthServer.Start()
//	defer healthServer.Stop()
package worker
