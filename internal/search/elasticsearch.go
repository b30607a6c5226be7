package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"tribuna/internal/config"
	"tribuna/internal/models"
)

// ElasticsearchClient maintains the payment review index: every payment
// record that needs a human decision (unmatched, amount mismatch, late
// but matched) is indexed here for the admin reconciliation console.
type ElasticsearchClient struct {
	client *elasticsearch.Client
	config config.ElasticsearchConfig
}

func NewElasticsearchClient(cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     []string{cfg.URL},
		Username:      cfg.Username,
		Password:      cfg.Password,
		RetryOnStatus: []int{502, 503, 504, 429},
		MaxRetries:    cfg.MaxRetries,
	})

	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	client := &ElasticsearchClient{
		client: es,
		config: cfg,
	}

	if err := client.ensureIndex(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ensure index exists: %w", err)
	}

	return client, nil
}

func (c *ElasticsearchClient) ensureIndex(ctx context.Context) error {
	req := esapi.IndicesExistsRequest{
		Index: []string{c.config.Index},
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 200 {
		slog.Info("Elasticsearch index already exists", "index", c.config.Index)
		return nil
	}

	mapping := map[string]interface{}{
		"settings": map[string]interface{}{
			"number_of_shards":   1,
			"number_of_replicas": 0,
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"transaction_id": map[string]interface{}{
					"type": "keyword",
				},
				"amount": map[string]interface{}{
					"type": "long",
				},
				"reference": map[string]interface{}{
					"type": "keyword",
				},
				"outcome": map[string]interface{}{
					"type": "keyword",
				},
				"matched_hold_id": map[string]interface{}{
					"type": "keyword",
				},
				"detail": map[string]interface{}{
					"type": "text",
				},
				"received_at": map[string]interface{}{
					"type":   "date",
					"format": "strict_date_optional_time||epoch_millis",
				},
			},
		},
	}

	mappingJSON, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	createReq := esapi.IndicesCreateRequest{
		Index: c.config.Index,
		Body:  strings.NewReader(string(mappingJSON)),
	}

	createRes, err := createReq.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("failed to create index: %s", createRes.String())
	}

	slog.Info("Created Elasticsearch index", "index", c.config.Index)
	return nil
}

// IndexPaymentReview writes one payment record into the review index,
// keyed by transaction ID so re-indexing on retry stays idempotent.
func (c *ElasticsearchClient) IndexPaymentReview(ctx context.Context, rec *models.PaymentRecord) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal payment record: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      c.config.Index,
		DocumentID: rec.TransactionID,
		Body:       strings.NewReader(string(doc)),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("Elasticsearch error: %s", res.String())
	}

	return nil
}

// SearchReview returns payment records pending review, newest first,
// optionally filtered by outcome.
func (c *ElasticsearchClient) SearchReview(ctx context.Context, outcome string, page, pageSize int) ([]models.PaymentRecord, error) {
	from := 0
	if page > 0 && pageSize > 0 {
		from = (page - 1) * pageSize
	}
	if pageSize <= 0 {
		pageSize = 10
	}

	var query map[string]interface{}
	if outcome != "" {
		query = map[string]interface{}{
			"term": map[string]interface{}{"outcome": outcome},
		}
	} else {
		query = map[string]interface{}{
			"terms": map[string]interface{}{
				"outcome": []string{
					models.PaymentUnmatched,
					models.PaymentAmountMismatch,
					models.PaymentLateAmountMatched,
				},
			},
		}
	}

	searchRequest := map[string]interface{}{
		"query": query,
		"sort": []map[string]interface{}{
			{"received_at": map[string]interface{}{"order": "desc"}},
		},
		"from": from,
		"size": pageSize,
	}

	searchJSON, err := json.Marshal(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{c.config.Index},
		Body:  strings.NewReader(string(searchJSON)),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var response struct {
		Hits struct {
			Hits []struct {
				Source models.PaymentRecord `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	records := make([]models.PaymentRecord, len(response.Hits.Hits))
	for i, hit := range response.Hits.Hits {
		records[i] = hit.Source
	}

	return records, nil
}
