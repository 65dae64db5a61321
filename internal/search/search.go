// Package search maintains the Elasticsearch user directory behind the
// admin search endpoint. The index is a convenience view; the database
// stays the source of truth.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
)

var ErrUnavailable = errors.New("search unavailable")

type UserDoc struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type Index struct {
	es   *elasticsearch.Client
	name string
}

func NewClient(url, user, password string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch error: %s: %s", res.Status(), body)
	}
	return client, nil
}

// NewIndex returns nil when es is nil; every method is nil-safe so the rest
// of the service does not care whether search is configured.
func NewIndex(es *elasticsearch.Client, name string) *Index {
	if es == nil {
		return nil
	}
	return &Index{es: es, name: name}
}

// IndexUser upserts one user document, keyed by database id so role changes
// overwrite the previous doc.
func (i *Index) IndexUser(ctx context.Context, doc UserDoc) error {
	if i == nil {
		return ErrUnavailable
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("search: marshal doc: %w", err)
	}
	res, err := i.es.Index(i.name, strings.NewReader(string(body)),
		i.es.Index.WithDocumentID(strconv.FormatUint(uint64(doc.ID), 10)),
		i.es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("search: index user: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("search: index user: %s", res.Status())
	}
	return nil
}

// Search matches the query against email, username and role.
func (i *Index) Search(ctx context.Context, query string) ([]UserDoc, error) {
	if i == nil {
		return nil, ErrUnavailable
	}
	q := fmt.Sprintf(`{
		"query": {
			"multi_match": {
				"query": %q,
				"fields": ["email", "username", "role"],
				"fuzziness": "AUTO"
			}
		}
	}`, query)

	res, err := i.es.Search(
		i.es.Search.WithContext(ctx),
		i.es.Search.WithIndex(i.name),
		i.es.Search.WithBody(strings.NewReader(q)),
	)
	if err != nil {
		return nil, fmt.Errorf("search: query: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search: query: %s", res.Status())
	}

	var envelope struct {
		Hits struct {
			Hits []struct {
				Source UserDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("search: decode response: %w", err)
	}

	docs := make([]UserDoc, 0, len(envelope.Hits.Hits))
	for _, hit := range envelope.Hits.Hits {
		docs = append(docs, hit.Source)
	}
	return docs, nil
}
