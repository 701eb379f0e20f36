// Package fs lee fichas .txt de un directorio local.
package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/WINTERANDREA/vet-sheet-parser/internal/domain/documents"
)

type Source struct {
	dir string
}

func New(dir string) *Source {
	return &Source{dir: dir}
}

var _ documents.Source = (*Source)(nil)

func (s *Source) Dir() string { return s.dir }

func (s *Source) List(_ context.Context) ([]documents.DocumentInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	out := []documents.DocumentInfo{}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), documents.Extension) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// borrado entre ReadDir e Info
			continue
		}
		out = append(out, documents.DocumentInfo{
			Name:       e.Name(),
			Size:       info.Size(),
			ModifiedAt: info.ModTime().UTC(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Source) Read(_ context.Context, name string) ([]byte, error) {
	if err := documents.ValidateName(name); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, documents.ErrNotFound
	}
	return b, err
}
