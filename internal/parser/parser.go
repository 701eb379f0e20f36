// Package parser extrae dueños, mascotas y visitas de fichas clínicas veterinarias
// escritas en texto libre. Es puro: sin I/O, sin estado global mutable y total
// sobre cualquier string.
package parser

import "strings"

// ParseDocument es el único punto de entrada del motor. Con keepRaw devuelve
// además el texto recibido en Raw.
func ParseDocument(text string, keepRaw bool) ParsedDocument {
	norm := strings.ReplaceAll(text, "\r\n", "\n")
	norm = strings.ReplaceAll(norm, "\r", "\n")

	doc := ParsedDocument{
		Owners: ExtractOwners(norm),
		Pets:   ExtractPets(norm),
	}
	if keepRaw {
		doc.Raw = text
	}
	return doc
}
