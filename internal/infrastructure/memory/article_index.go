package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/oksasatya/go-article-feed/internal/domain/entity"
	"github.com/oksasatya/go-article-feed/internal/domain/repository"
)

// ArticleIndex is a naive term-count index used when Elasticsearch is not wired.
type ArticleIndex struct {
	mu    sync.RWMutex
	docs  map[string]string
	order []string
}

func NewArticleIndex() *ArticleIndex {
	return &ArticleIndex{docs: make(map[string]string)}
}

func (x *ArticleIndex) Index(_ context.Context, a *entity.Article) error {
	text := strings.ToLower(a.Title + " " + a.Content + " " + strings.Join(a.Tags, " "))
	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.docs[a.ID]; !ok {
		x.order = append(x.order, a.ID)
	}
	x.docs[a.ID] = text
	return nil
}

func (x *ArticleIndex) Remove(_ context.Context, id string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.docs, id)
	for i, v := range x.order {
		if v == id {
			x.order = append(x.order[:i], x.order[i+1:]...)
			break
		}
	}
	return nil
}

func (x *ArticleIndex) Search(_ context.Context, query string, size int) ([]string, error) {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return []string{}, nil
	}
	type hit struct {
		id    string
		score int
	}
	x.mu.RLock()
	hits := make([]hit, 0)
	for _, id := range x.order {
		score := 0
		for _, t := range terms {
			score += strings.Count(x.docs[id], t)
		}
		if score > 0 {
			hits = append(hits, hit{id: id, score: score})
		}
	}
	x.mu.RUnlock()

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if size = repository.SearchSize(size); len(hits) > size {
		hits = hits[:size]
	}
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.id
	}
	return ids, nil
}

var _ repository.ArticleIndex = (*ArticleIndex)(nil)
