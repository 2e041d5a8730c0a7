package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/smartstore/backend/internal/models"
)

// Search runs a fuzzy multi-match over indexed products. The index is kept in
// sync by the product handlers on create/update/delete.
func Search(ctx context.Context, es *elasticsearch.Client, index, query string, from, size int) (int64, []models.Product, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode search body: %w", err)
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search request: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search error: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search response: %w", err)
	}

	prods := make([]models.Product, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		prods[i] = hit.Source
	}
	return r.Hits.Total.Value, prods, nil
}

// IndexProduct upserts one product document keyed by SKU.
func IndexProduct(ctx context.Context, es *elasticsearch.Client, index string, prod *models.Product) error {
	data, err := json.Marshal(prod)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}
	res, err := es.Index(index, bytes.NewReader(data),
		es.Index.WithContext(ctx),
		es.Index.WithDocumentID(prod.SKU),
	)
	if err != nil {
		return fmt.Errorf("index product %s: %w", prod.SKU, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index product %s: %s", prod.SKU, res.Status())
	}
	return nil
}

// DeleteProduct removes the document for a deleted SKU; a missing document is
// not an error.
func DeleteProduct(ctx context.Context, es *elasticsearch.Client, index, sku string) error {
	res, err := es.Delete(index, sku, es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete product %s: %w", sku, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete product %s: %s", sku, res.Status())
	}
	return nil
}
