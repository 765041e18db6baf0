// Package search keeps an Elasticsearch index of articles for full-text lookup.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-article-feed/internal/domain/entity"
	"github.com/oksasatya/go-article-feed/internal/domain/repository"
)

const callTimeout = 3 * time.Second

type ArticleIndex struct {
	ES   *elasticsearch.Client
	Name string
}

func NewArticleIndex(es *elasticsearch.Client, index string) *ArticleIndex {
	return &ArticleIndex{ES: es, Name: index}
}

var indexMapping = `{
  "mappings": {
    "properties": {
      "title":      {"type": "text"},
      "content":    {"type": "text"},
      "tags":       {"type": "text"},
      "category":   {"type": "keyword"},
      "author":     {"type": "keyword"},
      "created_at": {"type": "date"}
    }
  }
}`

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (x *ArticleIndex) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	res, err := x.ES.Indices.Exists([]string{x.Name}, x.ES.Indices.Exists.WithContext(c))
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}
	res, err = x.ES.Indices.Create(x.Name,
		x.ES.Indices.Create.WithContext(c),
		x.ES.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", x.Name, res.Status())
	}
	return nil
}

func (x *ArticleIndex) Index(ctx context.Context, a *entity.Article) error {
	b, err := json.Marshal(articleDoc(a))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.Name, DocumentID: a.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("index article %s: %s", a.ID, res.Status())
	}
	return nil
}

func (x *ArticleIndex) Remove(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: x.Name, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("remove article %s: %s", id, res.Status())
	}
	return nil
}

// Search runs a multi_match over title, content and tags.
func (x *ArticleIndex) Search(ctx context.Context, q string, size int) ([]string, error) {
	b, err := json.Marshal(searchQuery(q, size))
	if err != nil {
		return nil, err
	}
	c, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	res, err := x.ES.Search(
		x.ES.Search.WithContext(c),
		x.ES.Search.WithIndex(x.Name),
		x.ES.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("search articles: %s", res.Status())
	}
	return decodeHitIDs(res.Body)
}

func articleDoc(a *entity.Article) map[string]any {
	return map[string]any{
		"id":         a.ID,
		"title":      a.Title,
		"content":    a.Content,
		"tags":       a.Tags,
		"category":   string(a.Category),
		"author":     a.Author,
		"created_at": a.CreatedAt.Format(time.RFC3339Nano),
	}
}

func searchQuery(q string, size int) map[string]any {
	size = repository.SearchSize(size)
	return map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^3", "tags^2", "content"},
			},
		},
		"size":    size,
		"_source": false,
	}
}

func decodeHitIDs(r io.Reader) ([]string, error) {
	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(r).Decode(&parsed); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

var _ repository.ArticleIndex = (*ArticleIndex)(nil)
