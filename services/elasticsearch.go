package services

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"facet-search-service/config"
	"facet-search-service/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

// ElasticsearchClient runs compiled request bodies against the index engine.
type ElasticsearchClient struct {
	client *elasticsearch.Client
	logger *zap.Logger
}

func NewElasticsearchClient(cfg config.ElasticsearchConfig, logger *zap.Logger) (*ElasticsearchClient, error) {
	esCfg := elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: cfg.InsecureSkipVerify,
			},
		},
	}
	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("creating elasticsearch client: %v: %w", err, models.ErrConfiguration)
	}
	return &ElasticsearchClient{client: client, logger: logger}, nil
}

func (es *ElasticsearchClient) Ping(ctx context.Context) error {
	res, err := esapi.PingRequest{}.Do(ctx, es.client)
	if err != nil {
		return fmt.Errorf("ping: %v: %w", err, models.ErrIndexEngine)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("ping: %s: %w", res.Status(), models.ErrIndexEngine)
	}
	return nil
}

// Search posts body to the search endpoint of index.
func (es *ElasticsearchClient) Search(ctx context.Context, index string, body map[string]interface{}) (*models.EngineResponse, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("encoding search body: %w", err)
	}
	if ce := es.logger.Check(zap.DebugLevel, "search request"); ce != nil {
		ce.Write(zap.String("index", index), zap.String("body", buf.String()))
	}

	start := time.Now()
	req := esapi.SearchRequest{
		Index: []string{index},
		Body:  &buf,
	}
	res, err := req.Do(ctx, es.client)
	observeEngine("search", start, err)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %v: %w", index, err, models.ErrIndexEngine)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("searching %s: %s: %w", index, res.String(), models.ErrIndexEngine)
	}

	var response models.EngineResponse
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decoding search response: %v: %w", err, models.ErrIndexEngine)
	}
	return &response, nil
}

// Get returns the source of one document.
func (es *ElasticsearchClient) Get(ctx context.Context, index, id string) (map[string]interface{}, error) {
	start := time.Now()
	req := esapi.GetRequest{
		Index:      index,
		DocumentID: id,
	}
	res, err := req.Do(ctx, es.client)
	observeEngine("get", start, err)
	if err != nil {
		return nil, fmt.Errorf("getting %s/%s: %v: %w", index, id, err, models.ErrIndexEngine)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("document %s: %w", id, models.ErrNotFound)
	}
	if res.IsError() {
		return nil, fmt.Errorf("getting %s/%s: %s: %w", index, id, res.String(), models.ErrIndexEngine)
	}

	var doc struct {
		Found  bool                   `json:"found"`
		Source map[string]interface{} `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding document: %v: %w", err, models.ErrIndexEngine)
	}
	if !doc.Found {
		return nil, fmt.Errorf("document %s: %w", id, models.ErrNotFound)
	}
	return doc.Source, nil
}
