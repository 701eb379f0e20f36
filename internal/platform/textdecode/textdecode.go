// Package textdecode convierte bytes de fichas en texto UTF-8 con fin de línea \n.
package textdecode

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
)

// Etiquetas de la decodificación elegida.
const (
	LabelUTF8    = "utf-8"
	LabelUTF8BOM = "utf-8-bom"
	LabelWin1252 = "windows-1252"
	LabelLatin1  = "iso-8859-1"
	LabelLossy   = "utf-8-lossy"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode devuelve siempre un string; ver DecodeWithLabel.
func Decode(b []byte) string {
	s, _ := DecodeWithLabel(b)
	return s
}

// DecodeWithLabel prueba, en orden: BOM UTF-8, UTF-8 directo, el charset detectado
// estadísticamente, windows-1252 e ISO-8859-1. Acepta la primera decodificación
// sin caracteres de reemplazo; si ninguna sirve, devuelve la lectura UTF-8 con
// pérdidas. También devuelve la etiqueta usada.
func DecodeWithLabel(b []byte) (string, string) {
	if bytes.HasPrefix(b, utf8BOM) {
		return normalizeNewlines(string(b[len(utf8BOM):])), LabelUTF8BOM
	}
	if utf8.Valid(b) && !strings.ContainsRune(string(b), utf8.RuneError) {
		return normalizeNewlines(string(b)), LabelUTF8
	}

	// UTF-8 detectado ya se descartó arriba.
	if label, ok := detect(b); ok && label != LabelUTF8 {
		if enc := encodingFor(label); enc != nil {
			if s, ok := tryDecode(enc, b); ok {
				return normalizeNewlines(s), label
			}
		}
	}

	if s, ok := tryDecode(charmap.Windows1252, b); ok {
		return normalizeNewlines(s), LabelWin1252
	}
	if s, ok := tryDecode(charmap.ISO8859_1, b); ok {
		return normalizeNewlines(s), LabelLatin1
	}
	return normalizeNewlines(strings.ToValidUTF8(string(b), string(utf8.RuneError))), LabelLossy
}

func detect(b []byte) (string, bool) {
	res, err := chardet.NewTextDetector().DetectBest(b)
	if err != nil || res == nil || res.Charset == "" {
		return "", false
	}
	return NormalizeLabel(res.Charset), true
}

// NormalizeLabel lleva alias comunes a una etiqueta canónica.
func NormalizeLabel(label string) string {
	l := strings.ToLower(strings.TrimSpace(label))
	switch {
	case l == "ascii", l == "us-ascii", l == "utf-8", l == "utf8":
		return LabelUTF8
	case strings.HasPrefix(l, "iso-8859-"), strings.HasPrefix(l, "iso8859-"), l == "latin1":
		return LabelLatin1
	case l == "windows-1252", l == "cp1252", l == "win1252":
		return LabelWin1252
	default:
		return l
	}
}

func encodingFor(label string) encoding.Encoding {
	switch label {
	case LabelLatin1:
		return charmap.ISO8859_1
	case LabelWin1252:
		return charmap.Windows1252
	}
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil
	}
	return enc // puede ser nil si x/text no lo soporta
}

func tryDecode(enc encoding.Encoding, b []byte) (string, bool) {
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", false
	}
	s := string(out)
	if strings.ContainsRune(s, utf8.RuneError) {
		return "", false
	}
	return s, true
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
