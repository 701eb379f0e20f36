package parser

import (
	"strings"
)

// SegmentPets corta el documento en bloques, uno por línea que empieza con un
// código de especie. Lo anterior al primer código no pertenece a ninguna mascota.
func SegmentPets(text string) []string {
	var blocks []string
	var cur []string
	open := false
	for _, line := range strings.Split(text, "\n") {
		if speciesCode.Match(line) {
			if open {
				blocks = append(blocks, strings.Join(cur, "\n"))
			}
			cur = []string{line}
			open = true
			continue
		}
		if open {
			cur = append(cur, line)
		}
	}
	if open {
		blocks = append(blocks, strings.Join(cur, "\n"))
	}
	return blocks
}

// ExtractPets segmenta y parsea todas las mascotas del documento.
func ExtractPets(text string) []PetRecord {
	pets := []PetRecord{}
	for _, block := range SegmentPets(text) {
		if p, ok := ParsePetBlock(block); ok {
			pets = append(pets, p)
		}
	}
	return pets
}

// ParsePetBlock parsea un bloque. Devuelve false si la primera línea no lleva
// código de especie.
func ParsePetBlock(block string) (PetRecord, bool) {
	lines := strings.Split(block, "\n")
	head := lines[0]
	g := speciesCode.Groups(head)
	if g == nil {
		return PetRecord{}, false
	}

	pet := parsePetHeader(strings.TrimSpace(head[len(g[0]):]))
	pet.Species = SpeciesDog
	if strings.HasPrefix(strings.ToUpper(g[1]), "G") {
		pet.Species = SpeciesCat
	}
	pet.Sterilized = detectSterilization(head)
	if t, ok := microchip.Find(block); ok {
		pet.Microchip = t.Value
	}
	pet.Visits = SegmentVisits(lines[1:])
	return pet, true
}

// parsePetHeader interpreta la línea de cabecera sin el código de especie:
// raza, sexo, fecha de nacimiento, nombre y color, en cualquier orden razonable.
func parsePetHeader(rest string) PetRecord {
	var pet PetRecord
	toks := Scan(rest, dateAny, sexMarker)

	sexTok, hasSex := first(toks, KindSex)
	if hasSex {
		pet.Sex = Sex(strings.ToUpper(sexTok.Value))
	}

	before, after := rest, ""
	dateTok, hasDate := first(toks, KindDate)
	if hasDate {
		before, after = rest[:dateTok.Start], rest[dateTok.End:]
		pet.DOB, _ = NormalizeDob(dateTok.Value)
	}

	breedBase := before
	if t, ok := colorWord.Find(before); ok {
		pet.Color = Clean(before[t.Start:])
		breedBase = before[:t.Start]
	} else if t, ok := colorWord.Find(after); ok {
		pet.Color = Clean(after[t.Start:])
	}

	pet.Name = nameAfterDate(after)
	if pet.Name == "" && hasSex && hasDate && sexTok.End <= dateTok.Start {
		pet.Name = nameBetween(rest[sexTok.End:dateTok.Start])
	}

	if pet.Name != "" {
		if i := lastIndexFold(breedBase, pet.Name); i > 0 {
			breedBase = breedBase[:i]
		}
	} else {
		words := strings.Fields(breedBase)
		if len(words) > 4 {
			words = words[:4]
		}
		breedBase = strings.Join(words, " ")
	}
	pet.Breed = Clean(sexMarker.re.ReplaceAllString(breedBase, ""))
	return pet
}

// nameAfterDate toma un trozo corto de palabras tras la fecha, antes de
// marcadores de esterilización, certeza o color.
func nameAfterDate(after string) string {
	if t, ok := nameStop.Find(after); ok {
		after = after[:t.Start]
	}
	if t, ok := colorWord.Find(after); ok {
		after = after[:t.Start]
	}
	return Clean(nameChunk.FindString(after))
}

// nameBetween deriva el nombre del tramo entre sexo y fecha: la frase con
// paréntesis si la hay, si no las dos últimas palabras.
func nameBetween(mid string) string {
	if t, ok := colorWord.Find(mid); ok {
		mid = mid[:t.Start]
	}
	if p := strings.Index(mid, "("); p >= 0 {
		start := strings.LastIndex(strings.TrimRight(mid[:p], " \t"), " ") + 1
		end := len(mid)
		if q := strings.Index(mid[p:], ")"); q >= 0 {
			end = p + q + 1
		}
		return Clean(mid[start:end])
	}
	words := strings.Fields(mid)
	if len(words) > 2 {
		words = words[len(words)-2:]
	}
	return strings.Join(words, " ")
}

// detectSterilization: nil si no hay marcador, false sólo para INTERO.
func detectSterilization(line string) *bool {
	t, ok := sterilization.Find(line)
	if !ok {
		return nil
	}
	v := !strings.EqualFold(t.Value, "INTERO")
	return &v
}
