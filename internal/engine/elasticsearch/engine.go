package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/Akshaybondre123/First-Startup/internal/domain"
)

// Engine is an Elasticsearch-backed SearchEngine.
type Engine struct {
	client    *elasticsearch.Client
	indexName string
	logger    *slog.Logger
}

type esSearchResponse struct {
	Hits struct {
		Hits []struct {
			Source domain.Restaurant `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

type esBulkResponse struct {
	Errors bool `json:"errors"`
	Items  []struct {
		Index struct {
			ID     string `json:"_id"`
			Status int    `json:"status"`
			Error  struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"index"`
	} `json:"items"`
}

type esErrorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
	Status int `json:"status"`
}

// New connects to Elasticsearch at esURL and creates indexName with the
// restaurant mapping if it does not exist yet.
func New(ctx context.Context, esURL, indexName string, logger *slog.Logger) (*Engine, error) {
	return NewWithTransport(ctx, esURL, indexName, nil, logger)
}

// NewWithTransport is New with a custom HTTP transport. A nil transport uses
// the client default.
func NewWithTransport(ctx context.Context, esURL, indexName string, transport http.RoundTripper, logger *slog.Logger) (*Engine, error) {
	if indexName == "" {
		indexName = DefaultIndexName
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{esURL},
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: create client: %w", err)
	}

	e := &Engine{client: client, indexName: indexName, logger: logger}
	if err := e.ensureIndex(ctx); err != nil {
		return nil, fmt.Errorf("elasticsearch: ensure index: %w", err)
	}
	return e, nil
}

// Ping checks whether the cluster is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	res, err := e.client.Ping(e.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping: %w", err)
	}
	defer closeBody(res)

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: unexpected status %s", res.Status())
	}
	return nil
}

func (e *Engine) ensureIndex(ctx context.Context) error {
	res, err := e.client.Indices.Exists([]string{e.indexName}, e.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index exists: %w", err)
	}
	closeBody(res)

	if res.StatusCode == http.StatusOK {
		e.logger.Info("elasticsearch index already exists", slog.String("index", e.indexName))
		return nil
	}

	res, err = e.client.Indices.Create(
		e.indexName,
		e.client.Indices.Create.WithBody(strings.NewReader(indexMapping)),
		e.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer closeBody(res)

	if res.IsError() {
		return responseError("create index", res)
	}

	e.logger.Info("elasticsearch index created", slog.String("index", e.indexName))
	return nil
}

// Index adds or replaces a restaurant document. The write is refreshed
// before returning so the next Discover sees it.
func (e *Engine) Index(ctx context.Context, r *domain.Restaurant) error {
	doc := *r
	doc.Distance = nil
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("elasticsearch index: marshal restaurant: %w", err)
	}

	res, err := e.client.Index(
		e.indexName,
		bytes.NewReader(data),
		e.client.Index.WithDocumentID(doc.ID),
		e.client.Index.WithRefresh("true"),
		e.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch index: %w", err)
	}
	defer closeBody(res)

	if res.IsError() {
		return responseError("elasticsearch index", res)
	}

	e.logger.Debug("indexed restaurant", slog.String("id", doc.ID), slog.String("name", doc.Name))
	return nil
}

// Delete removes a restaurant document. A missing document is ignored.
func (e *Engine) Delete(ctx context.Context, id string) error {
	res, err := e.client.Delete(
		e.indexName,
		id,
		e.client.Delete.WithRefresh("true"),
		e.client.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch delete: %w", err)
	}
	defer closeBody(res)

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("elasticsearch delete", res)
	}

	e.logger.Debug("deleted restaurant", slog.String("id", id))
	return nil
}

// Discover runs q as a bool query. Ordering matches the Postgres backend:
// nearest first with a location, otherwise rating then verified.
func (e *Engine) Discover(ctx context.Context, q *domain.DiscoveryQuery) ([]domain.Restaurant, error) {
	data, err := json.Marshal(buildDiscoveryQuery(q))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: marshal query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithIndex(e.indexName),
		e.client.Search.WithBody(bytes.NewReader(data)),
		e.client.Search.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: %w", err)
	}
	defer closeBody(res)

	if res.IsError() {
		return nil, responseError("elasticsearch search", res)
	}

	var esResp esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, fmt.Errorf("elasticsearch search: decode response: %w", err)
	}

	out := make([]domain.Restaurant, 0, len(esResp.Hits.Hits))
	for _, hit := range esResp.Hits.Hits {
		r := hit.Source
		r.Normalize()
		out = append(out, r)
	}
	return out, nil
}

func buildDiscoveryQuery(q *domain.DiscoveryQuery) map[string]any {
	var filters []any

	if len(q.Tags) > 0 {
		filters = append(filters, map[string]any{
			"terms": map[string]any{"tags": q.Tags},
		})
	}

	if q.Verified {
		filters = append(filters, map[string]any{
			"term": map[string]any{"verified": true},
		})
	}

	if q.Search != "" {
		filters = append(filters, searchClause(q.Search))
	}

	var sortClause []any
	if q.HasLocation() {
		point := map[string]any{"lat": *q.Lat, "lon": *q.Lng}
		filters = append(filters, map[string]any{
			"geo_distance": map[string]any{
				"distance": fmt.Sprintf("%gm", q.MaxDistanceMeters),
				"location": point,
			},
		})
		sortClause = []any{
			map[string]any{"_geo_distance": map[string]any{
				"location": point,
				"order":    "asc",
				"unit":     "km",
			}},
			map[string]any{"createdAt": "asc"},
		}
	} else {
		sortClause = []any{
			map[string]any{"rating": "desc"},
			map[string]any{"verified": "desc"},
			map[string]any{"createdAt": "asc"},
		}
	}

	boolQuery := map[string]any{
		"must": []any{map[string]any{"match_all": map[string]any{}}},
	}
	if len(filters) > 0 {
		boolQuery["filter"] = filters
	}

	return map[string]any{
		"query": map[string]any{"bool": boolQuery},
		"sort":  sortClause,
		"size":  domain.MaxResults,
	}
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

// searchClause matches text as a case-insensitive substring of any text
// field, the same semantics as the SQL ILIKE path.
func searchClause(text string) map[string]any {
	pattern := "*" + wildcardEscaper.Replace(text) + "*"
	wildcard := func(field string) map[string]any {
		return map[string]any{"wildcard": map[string]any{
			field: map[string]any{"value": pattern, "case_insensitive": true},
		}}
	}

	return map[string]any{"bool": map[string]any{
		"should": []any{
			map[string]any{"multi_match": map[string]any{
				"query":  text,
				"fields": []string{"name^3", "address", "description"},
				"type":   "phrase_prefix",
			}},
			wildcard("name.keyword"),
			wildcard("address.keyword"),
			wildcard("description.keyword"),
			wildcard("cuisines"),
			wildcard("tags"),
		},
		"minimum_should_match": 1,
	}}
}

// BulkIndex adds or replaces many documents through the NDJSON bulk API.
func (e *Engine) BulkIndex(ctx context.Context, rs []domain.Restaurant) error {
	if len(rs) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range rs {
		doc := rs[i]
		doc.Distance = nil
		action := map[string]any{"index": map[string]any{"_index": e.indexName, "_id": doc.ID}}
		if err := enc.Encode(action); err != nil {
			return fmt.Errorf("elasticsearch bulk index: encode action: %w", err)
		}
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("elasticsearch bulk index: encode document: %w", err)
		}
	}

	res, err := e.client.Bulk(
		bytes.NewReader(buf.Bytes()),
		e.client.Bulk.WithIndex(e.indexName),
		e.client.Bulk.WithRefresh("true"),
		e.client.Bulk.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch bulk index: %w", err)
	}
	defer closeBody(res)

	if res.IsError() {
		return responseError("elasticsearch bulk index", res)
	}

	var bulkResp esBulkResponse
	if err := json.NewDecoder(res.Body).Decode(&bulkResp); err != nil {
		return fmt.Errorf("elasticsearch bulk index: decode response: %w", err)
	}
	if bulkResp.Errors {
		var msgs []string
		for _, item := range bulkResp.Items {
			if item.Index.Error.Type != "" {
				msgs = append(msgs, fmt.Sprintf("id=%s: %s: %s", item.Index.ID, item.Index.Error.Type, item.Index.Error.Reason))
			}
		}
		return fmt.Errorf("elasticsearch bulk index: partial errors: %s", strings.Join(msgs, "; "))
	}

	e.logger.Info("bulk indexed restaurants", slog.Int("count", len(rs)))
	return nil
}

func responseError(op string, res *esapi.Response) error {
	var errResp esErrorResponse
	if err := json.NewDecoder(res.Body).Decode(&errResp); err == nil && errResp.Error.Type != "" {
		return fmt.Errorf("%s: %s: %s", op, errResp.Error.Type, errResp.Error.Reason)
	}
	return fmt.Errorf("%s: unexpected status %s", op, res.Status())
}

func closeBody(res *esapi.Response) {
	if res != nil && res.Body != nil {
		_, _ = io.Copy(io.Discard, res.Body)
		_ = res.Body.Close()
	}
}
