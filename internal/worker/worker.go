package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aescanero/dago-node-analyzer/internal/config"
	"github.com/aescanero/dago-node-analyzer/internal/metrics"
	"github.com/aescanero/dago-node-analyzer/internal/model"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Runner executes one analysis workflow.
type Runner interface {
	Run(ctx context.Context, query model.Query) (*model.WorkflowResult, error)
}

// Worker consumes analysis requests from a Redis stream and publishes results
type Worker struct {
	id            string
	config        *config.Config
	redisClient   *redis.Client
	runner        Runner
	logger        *zap.Logger
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	streamKey     string
	consumerGroup string
	resultStream  string
}

// NewWorker creates a new worker
func NewWorker(
	cfg *config.Config,
	redisClient *redis.Client,
	runner Runner,
	logger *zap.Logger,
) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	return &Worker{
		id:            cfg.WorkerID,
		config:        cfg,
		redisClient:   redisClient,
		runner:        runner,
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
		streamKey:     cfg.StreamKey,
		consumerGroup: cfg.ConsumerGroup,
		resultStream:  cfg.ResultStream,
	}
}

// Start starts the worker
func (w *Worker) Start() error {
	w.logger.Info("starting analysis worker",
		zap.String("worker_id", w.id),
		zap.String("stream_key", w.streamKey),
		zap.String("consumer_group", w.consumerGroup),
	)

	if err := w.ensureConsumerGroup(); err != nil {
		return fmt.Errorf("failed to ensure consumer group: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.processWork()
	}()

	w.logger.Info("analysis worker started", zap.String("worker_id", w.id))
	return nil
}

// Stop cancels the processing loop and waits for the in-flight request
func (w *Worker) Stop() error {
	w.logger.Info("stopping analysis worker", zap.String("worker_id", w.id))

	w.cancel()
	w.wg.Wait()

	w.logger.Info("analysis worker stopped", zap.String("worker_id", w.id))
	return nil
}

// ensureConsumerGroup creates the consumer group if it doesn't exist
func (w *Worker) ensureConsumerGroup() error {
	err := w.redisClient.XGroupCreateMkStream(w.ctx, w.streamKey, w.consumerGroup, "0").Err()
	if err != nil {
		// BUSYGROUP means the group already exists
		if strings.Contains(err.Error(), "BUSYGROUP") {
			w.logger.Debug("consumer group already exists",
				zap.String("group", w.consumerGroup),
			)
			return nil
		}
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	w.logger.Info("created consumer group",
		zap.String("group", w.consumerGroup),
		zap.String("stream", w.streamKey),
	)
	return nil
}

// processWork processes work from the Redis stream
func (w *Worker) processWork() {
	w.logger.Info("starting work processing loop")

	for {
		select {
		case <-w.ctx.Done():
			w.logger.Info("work processing loop stopped")
			return
		default:
			streams, err := w.redisClient.XReadGroup(w.ctx, &redis.XReadGroupArgs{
				Group:    w.consumerGroup,
				Consumer: w.id,
				Streams:  []string{w.streamKey, ">"},
				Count:    1,
				Block:    w.config.BlockTime,
			}).Result()

			if err != nil {
				if errors.Is(err, redis.Nil) || w.ctx.Err() != nil {
					continue
				}
				w.logger.Error("failed to read from stream", zap.Error(err))
				select {
				case <-w.ctx.Done():
				case <-time.After(time.Second):
				}
				continue
			}

			for _, stream := range streams {
				for _, message := range stream.Messages {
					w.handleMessage(message)
				}
			}
		}
	}
}

// Request is the JSON payload of an analysis request message
type Request struct {
	RequestID  string            `json:"request_id"`
	Message    string            `json:"message"`
	FormFields []model.FormField `json:"form_fields,omitempty"`
}

// Query converts the request into a workflow query
func (r *Request) Query() model.Query {
	return model.NewQuery(r.Message, r.FormFields...).WithID(r.RequestID)
}

// handleMessage handles a single analysis request message
func (w *Worker) handleMessage(message redis.XMessage) {
	messageID := message.ID
	w.logger.Info("processing analysis request", zap.String("message_id", messageID))

	request, err := parseRequest(message.Values)
	if err != nil {
		w.logger.Error("failed to parse analysis request",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
		metrics.WorkerMessages.WithLabelValues("invalid").Inc()
		w.publishError(&Request{}, messageID, err)
		w.acknowledgeMessage(messageID)
		return
	}

	query := request.Query()
	result, err := w.runner.Run(w.ctx, query)
	if err != nil {
		if w.ctx.Err() != nil {
			// Shutting down; leave the message pending for redelivery
			w.logger.Warn("analysis interrupted by shutdown",
				zap.String("message_id", messageID),
				zap.String("request_id", query.ID()),
			)
			metrics.WorkerMessages.WithLabelValues("interrupted").Inc()
			return
		}
		w.logger.Error("analysis failed",
			zap.String("message_id", messageID),
			zap.String("request_id", query.ID()),
			zap.Error(err),
		)
		metrics.WorkerMessages.WithLabelValues("failed").Inc()
		w.publishError(request, messageID, err)
		w.acknowledgeMessage(messageID)
		return
	}

	if err := w.publishResult(query, result); err != nil {
		w.logger.Error("failed to publish analysis result",
			zap.String("message_id", messageID),
			zap.String("request_id", query.ID()),
			zap.Error(err),
		)
		metrics.WorkerMessages.WithLabelValues("publish_failed").Inc()
		return
	}

	metrics.WorkerMessages.WithLabelValues("processed").Inc()
	w.acknowledgeMessage(messageID)
}

// parseRequest parses an analysis request from a Redis message
func parseRequest(values map[string]interface{}) (*Request, error) {
	dataStr, ok := values["data"].(string)
	if !ok {
		return nil, fmt.Errorf("missing or invalid 'data' field")
	}

	var request Request
	if err := json.Unmarshal([]byte(dataStr), &request); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis request: %w", err)
	}

	if strings.TrimSpace(request.Message) == "" {
		return nil, fmt.Errorf("analysis request has no message")
	}

	return &request, nil
}

// publishResult publishes the merged workflow result, retrying transient
// failures up to MaxRetries times
func (w *Worker) publishResult(query model.Query, result *model.WorkflowResult) error {
	envelope := map[string]interface{}{
		"request_id": query.ID(),
		"query":      query,
		"result":     result,
		"worker_id":  w.id,
		"timestamp":  time.Now().UTC(),
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	var publishErr error
	for attempt := 0; attempt <= w.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-w.ctx.Done():
				return w.ctx.Err()
			case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
			}
		}

		publishErr = w.redisClient.XAdd(w.ctx, &redis.XAddArgs{
			Stream: w.resultStream,
			Values: map[string]interface{}{
				"data": string(data),
			},
		}).Err()
		if publishErr == nil {
			w.logger.Info("published analysis result",
				zap.String("request_id", query.ID()),
				zap.Int("executed", result.Summary.Executed),
				zap.Bool("had_errors", result.Summary.HadErrors),
			)
			return nil
		}

		w.logger.Warn("result publish attempt failed",
			zap.String("request_id", query.ID()),
			zap.Int("attempt", attempt+1),
			zap.Error(publishErr),
		)
	}

	return fmt.Errorf("failed to publish to stream: %w", publishErr)
}

// publishError publishes an error event
func (w *Worker) publishError(request *Request, messageID string, err error) {
	errorEvent := map[string]interface{}{
		"request_id": request.RequestID,
		"message_id": messageID,
		"error":      err.Error(),
		"worker_id":  w.id,
		"timestamp":  time.Now().UTC(),
	}

	data, marshalErr := json.Marshal(errorEvent)
	if marshalErr != nil {
		w.logger.Error("failed to marshal error event", zap.Error(marshalErr))
		return
	}

	_, publishErr := w.redisClient.XAdd(w.ctx, &redis.XAddArgs{
		Stream: w.resultStream + ".errors",
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if publishErr != nil {
		w.logger.Error("failed to publish error event", zap.Error(publishErr))
	}
}

// acknowledgeMessage acknowledges a message from the stream
func (w *Worker) acknowledgeMessage(messageID string) {
	err := w.redisClient.XAck(w.ctx, w.streamKey, w.consumerGroup, messageID).Err()
	if err != nil {
		w.logger.Error("failed to acknowledge message",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
	}
}
