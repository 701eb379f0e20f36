// Package cache implementa documents.ParseCache en memoria (LRU) y en Redis.
package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/WINTERANDREA/vet-sheet-parser/internal/domain/documents"
)

const DefaultLRUSize = 256

// LRU guarda copias: lo que devuelve Get se puede modificar sin tocar la caché.
type LRU struct {
	c *lru.Cache[string, documents.Result]
}

var _ documents.ParseCache = (*LRU)(nil)

func NewLRU(size int) (*LRU, error) {
	if size <= 0 {
		size = DefaultLRUSize
	}
	c, err := lru.New[string, documents.Result](size)
	if err != nil {
		return nil, fmt.Errorf("lru cache: %w", err)
	}
	return &LRU{c: c}, nil
}

func (l *LRU) Get(_ context.Context, key string) (documents.Result, bool, error) {
	res, ok := l.c.Get(key)
	if ok {
		res.Document = res.Document.Clone()
	}
	return res, ok, nil
}

func (l *LRU) Set(_ context.Context, key string, res documents.Result) error {
	res.Document = res.Document.Clone()
	l.c.Add(key, res)
	return nil
}

func (l *LRU) Len() int { return l.c.Len() }
