package parser

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Token es una coincidencia clasificada. Start/End son offsets en bytes sobre el
// texto escaneado.
type Token struct {
	Kind  Kind   `json:"kind"`
	Value string `json:"value"`
	Start int    `json:"start"`
	End   int    `json:"end"`

	rank int
}

// Scan corre cada reconocedor sobre text y devuelve todos los tokens ordenados por
// posición. A igual posición gana el reconocedor pasado antes.
func Scan(text string, recognizers ...Recognizer) []Token {
	var out []Token
	for rank, r := range recognizers {
		for _, loc := range r.re.FindAllStringIndex(text, -1) {
			out = append(out, Token{
				Kind:  r.Kind,
				Value: text[loc[0]:loc[1]],
				Start: loc[0],
				End:   loc[1],
				rank:  rank,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].rank < out[j].rank
	})
	return out
}

// Find devuelve la primera coincidencia del reconocedor.
func (r Recognizer) Find(text string) (Token, bool) {
	loc := r.re.FindStringIndex(text)
	if loc == nil {
		return Token{}, false
	}
	return Token{Kind: r.Kind, Value: text[loc[0]:loc[1]], Start: loc[0], End: loc[1]}, true
}

// FindAll devuelve todas las coincidencias, en orden.
func (r Recognizer) FindAll(text string) []Token {
	return Scan(text, r)
}

// Match indica si el reconocedor aparece en text.
func (r Recognizer) Match(text string) bool {
	return r.re.MatchString(text)
}

// Groups devuelve los grupos de la primera coincidencia (índice 0 = completa).
func (r Recognizer) Groups(text string) []string {
	return r.re.FindStringSubmatch(text)
}

// first devuelve el primer token de la clase k.
func first(toks []Token, k Kind) (Token, bool) {
	for _, t := range toks {
		if t.Kind == k {
			return t, true
		}
	}
	return Token{}, false
}

// firstStop devuelve el offset del corte más temprano, o -1.
func firstStop(text string, stops []Recognizer) int {
	best := -1
	for _, s := range stops {
		if t, ok := s.Find(text); ok && (best < 0 || t.Start < best) {
			best = t.Start
		}
	}
	return best
}

// Helpers de ventanas medidas en caracteres (runas), no en bytes.

// backRunes retrocede n runas desde el offset i.
func backRunes(s string, i, n int) int {
	for ; n > 0 && i > 0; n-- {
		_, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
	}
	return i
}

// forwardRunes avanza n runas desde el offset i.
func forwardRunes(s string, i, n int) int {
	for ; n > 0 && i < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return i
}

// headRunes recorta s a sus primeras n runas.
func headRunes(s string, n int) string {
	return s[:forwardRunes(s, 0, n)]
}

// lastIndexFold es strings.LastIndex sin distinguir mayúsculas, con offsets del
// texto original.
func lastIndexFold(s, sub string) int {
	if sub == "" {
		return len(s)
	}
	for i := len(s); i >= 0; i-- {
		if i < len(s) && !utf8.RuneStart(s[i]) {
			continue
		}
		end := forwardRunes(s, i, utf8.RuneCountInString(sub))
		if strings.EqualFold(s[i:end], sub) {
			return i
		}
	}
	return -1
}
