package documents

import (
	"time"

	"github.com/WINTERANDREA/vet-sheet-parser/internal/parser"
)

// Extension es la única extensión que se lista y se parsea.
const Extension = ".txt"

// DocumentInfo describe una ficha disponible en la fuente.
type DocumentInfo struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modifiedAt,omitzero"`
}

// Result es una ficha decodificada y parseada.
type Result struct {
	Name     string                `json:"name"`
	Encoding string                `json:"encoding"`
	Document parser.ParsedDocument `json:"document"`
}
