package documents

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"path"
	"strings"
)

var (
	ErrInvalidName  = errors.New("invalid document name")
	ErrNotFound     = errors.New("document not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrNoSource     = errors.New("no document source configured")
)

// Source es el origen de las fichas (directorio local, bucket, ...).
type Source interface {
	// List devuelve sólo fichas .txt, ordenadas por nombre.
	List(ctx context.Context) ([]DocumentInfo, error)
	// Read devuelve los bytes crudos; ErrNotFound si no existe.
	Read(ctx context.Context, name string) ([]byte, error)
}

// ParseCache guarda resultados por contenido. Un fallo de cache nunca es fatal.
type ParseCache interface {
	Get(ctx context.Context, key string) (Result, bool, error)
	Set(ctx context.Context, key string, res Result) error
}

// ValidateName rechaza rutas, traversal y extensiones distintas de .txt.
func ValidateName(name string) error {
	n := strings.TrimSpace(name)
	switch {
	case n == "", n != name:
		return ErrInvalidName
	case strings.ContainsAny(n, `/\`), strings.Contains(n, ".."):
		return ErrInvalidName
	case !strings.EqualFold(path.Ext(n), Extension):
		return ErrInvalidName
	}
	return nil
}

// CacheKey = sha256 del contenido + flag keepRaw.
func CacheKey(b []byte, keepRaw bool) string {
	sum := sha256.Sum256(b)
	k := hex.EncodeToString(sum[:])
	if keepRaw {
		return k + ":raw"
	}
	return k
}
