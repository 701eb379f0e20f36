package parser

import (
	"strings"
	"unicode/utf8"
)

const (
	headerRunes   = 900 // cabecera donde se buscan los dueños
	windowBefore  = 160
	windowAfter   = 180
	addressSpan   = 180
	addressMinLen = 8
	addressMaxLen = 120
)

// ExtractOwners reconstruye los dueños de la cabecera del documento.
// Cada token de identidad (código fiscal, email, teléfono) abre una ventana local
// donde se buscan nombre y dirección; después se fusionan los candidatos y se
// aplica el cambio de titular. Nunca falla: sin tokens devuelve lista vacía.
func ExtractOwners(text string) []OwnerCandidate {
	header := headRunes(text, headerRunes)

	var cands []OwnerCandidate
	for _, tok := range Scan(header, taxCode, email, phone) {
		lo := backRunes(header, tok.Start, windowBefore)
		hi := forwardRunes(header, tok.Start, windowAfter)
		local := tok
		local.Start -= lo
		local.End = min(tok.End, hi) - lo
		cands = append(cands, candidateFromWindow(header[lo:hi], local))
	}

	owners := mergeOwners(cands)
	owners = applyTransfer(header, owners)
	assignRoles(owners)
	if owners == nil {
		owners = []OwnerCandidate{}
	}
	return owners
}

// candidateFromWindow arma el candidato de un token de identidad (offsets
// relativos a la ventana). El nombre es la persona más cercana antes del token
// (o la primera después); el tramo que va de ese nombre al siguiente acota
// dónde se buscan código fiscal y dirección.
func candidateFromWindow(win string, tok Token) OwnerCandidate {
	c := OwnerCandidate{Emails: []string{}, Phones: []string{}}
	switch tok.Kind {
	case KindEmail:
		c.Emails = append(c.Emails, tok.Value)
	case KindPhone:
		c.Phones = append(c.Phones, strings.TrimSpace(tok.Value))
	case KindTaxCode:
		c.TaxCode = tok.Value
	}

	persons := personsIn(win)
	segLo, segHi := 0, len(win)
	if i := ownerOf(persons, tok); i >= 0 {
		c.FullName = strings.Join(strings.Fields(persons[i].Value), " ")
		segLo = persons[i].Start
		if i+1 < len(persons) {
			segHi = persons[i+1].Start
		}
	}
	seg := win[segLo:segHi]

	if c.TaxCode == "" {
		c.TaxCode = nearestValue(taxCode.FindAll(seg), tok.Start-segLo)
	}
	c.Address = findAddress(seg)
	return c
}

// personsIn devuelve los nombres de persona de la ventana, sin los que empiezan
// por un tipo de calle ni los rótulos de campo. Si hay alguno con minúsculas,
// se descartan los que están todo en mayúsculas.
func personsIn(win string) []Token {
	var all, mixed []Token
	for _, t := range Scan(win, personName, upperName) {
		if s, ok := street.Find(t.Value); ok && s.Start == 0 {
			continue
		}
		if speciesCode.Match(t.Value) || isLabel(win, t) {
			continue
		}
		all = append(all, t)
		if mixedCase.MatchString(t.Value) {
			mixed = append(mixed, t)
		}
	}
	if len(mixed) > 0 {
		return mixed
	}
	return all
}

// isLabel: el par contiene una palabra de rótulo o va seguido de ':'.
func isLabel(win string, t Token) bool {
	if fieldLabel.Match(t.Value) {
		return true
	}
	return strings.HasPrefix(strings.TrimLeft(win[t.End:], " \t"), ":")
}

// ownerOf elige la persona que termina más cerca antes del token; si no hay
// ninguna, la primera posterior. -1 si la ventana no tiene nombres.
func ownerOf(persons []Token, tok Token) int {
	best := -1
	for i, p := range persons {
		if p.End <= tok.Start {
			best = i
		}
	}
	if best < 0 && len(persons) > 0 {
		best = 0
	}
	return best
}

// nearestValue devuelve el token más cercano a pos; a igual distancia, el primero.
func nearestValue(toks []Token, pos int) string {
	best, bestDist := "", -1
	for _, t := range toks {
		d := t.Start - pos
		if t.End <= pos {
			d = pos - t.End
		}
		if d < 0 {
			d = 0
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = t.Value, d
		}
	}
	return best
}

// findAddress devuelve la dirección válida más larga; a igual largo, la primera.
func findAddress(win string) string {
	best, bestLen := "", 0
	for _, t := range street.FindAll(win) {
		cand := win[t.Start:forwardRunes(win, t.Start, addressSpan)]
		if cut := firstStop(cand, addressStops); cut >= 0 {
			cand = cand[:cut]
		}
		for _, a := range streetAbbrev {
			cand = a.re.ReplaceAllString(cand, a.repl)
		}
		cand = strings.TrimSpace(reSpaceRun.ReplaceAllString(cand, " "))

		n := utf8.RuneCountInString(cand)
		if n < addressMinLen || n > addressMaxLen || !reDigit.MatchString(cand) || strings.Contains(cand, "@") {
			continue
		}
		if n > bestLen {
			best, bestLen = cand, n
		}
	}
	return best
}

// applyTransfer aplica la primera frase de cesión de la cabecera: el nombrado
// pasa a titular desde el mes indicado, o se crea si no estaba.
func applyTransfer(header string, owners []OwnerCandidate) []OwnerCandidate {
	g := transfer.Groups(header)
	if g == nil {
		return owners
	}
	var start string
	if g[2] != "" && g[3] != "" {
		start = g[3] + "-" + g[2] + "-01"
	}
	name := strings.Join(strings.Fields(g[5]), " ")

	for i := range owners {
		if strings.EqualFold(owners[i].FullName, name) {
			owners[i].Role = RolePrimary
			if start != "" {
				owners[i].StartDate = start
			}
			return owners
		}
	}
	return append(owners, OwnerCandidate{
		FullName:  name,
		Emails:    []string{},
		Phones:    []string{},
		Role:      RolePrimary,
		StartDate: start,
	})
}

// assignRoles deja exactamente un titular: el explícito o, si no hay, el primero.
func assignRoles(owners []OwnerCandidate) {
	primary := -1
	for i := range owners {
		if owners[i].Role == RolePrimary && primary < 0 {
			primary = i
		}
	}
	if primary < 0 && len(owners) > 0 {
		primary = 0
	}
	for i := range owners {
		if i == primary {
			owners[i].Role = RolePrimary
		} else {
			owners[i].Role = RoleSecondary
		}
	}
}

func appendUnique(list []string, v string) []string {
	if v == "" {
		return list
	}
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}
