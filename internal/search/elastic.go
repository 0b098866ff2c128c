package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/aescanero/dago-node-analyzer/internal/model"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

// ElasticConfig configures the Elasticsearch backend.
type ElasticConfig struct {
	Addresses []string
	Username  string
	Password  string
	Index     string
}

// Elastic searches a guidance index with a multi_match query.
type Elastic struct {
	client *elasticsearch.Client
	index  string
	logger *zap.Logger
}

type esSearchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string  `json:"_id"`
			Score  float64 `json:"_score"`
			Source struct {
				Title   string `json:"title"`
				URL     string `json:"url"`
				Content string `json:"content"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// NewElastic builds a client for the configured cluster.
func NewElastic(cfg ElasticConfig, logger *zap.Logger) (*Elastic, error) {
	if len(cfg.Addresses) == 0 {
		return nil, fmt.Errorf("at least one elasticsearch address is required")
	}
	if cfg.Index == "" {
		return nil, fmt.Errorf("search index is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	return &Elastic{client: client, index: cfg.Index, logger: logger}, nil
}

// Ping checks that the cluster answers.
func (e *Elastic) Ping(ctx context.Context) error {
	res, err := esapi.PingRequest{}.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("elasticsearch ping failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping failed: %s", res.Status())
	}
	return nil
}

// Search runs a multi_match query over title and content.
func (e *Elastic) Search(ctx context.Context, text string, topK int) ([]model.DocumentRef, error) {
	if topK <= 0 {
		topK = 5
	}

	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  text,
				"fields": []string{"title^2", "content"},
			},
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("failed to encode search query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{e.index},
		Body:  &buf,
		Size:  &topK,
	}

	start := time.Now()
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("%w: %s: %s", ErrSearchFailed, res.Status(), bytes.TrimSpace(detail))
	}

	var parsed esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrSearchFailed, err)
	}

	docs := make([]model.DocumentRef, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		docs = append(docs, model.DocumentRef{
			ID:      hit.ID,
			Title:   hit.Source.Title,
			URL:     hit.Source.URL,
			Content: hit.Source.Content,
			Snippet: Snippet(hit.Source.Content),
			Score:   hit.Score,
		})
	}

	e.logger.Debug("search completed",
		zap.String("index", e.index),
		zap.Int("hits", len(docs)),
		zap.Duration("duration", time.Since(start)),
	)
	return docs, nil
}
