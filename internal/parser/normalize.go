package parser

import (
	"fmt"
	"strings"
)

// NormalizeDate convierte el primer d/m/y del fragmento a YYYY-MM-DD.
// Años de dos cifras van a 20yy. No valida rangos: "31/13/2024" pasa tal cual.
func NormalizeDate(fragment string) (string, bool) {
	g := dateLoose.Groups(fragment)
	if g == nil {
		return "", false
	}
	return canonical(g[1], g[2], g[3]), true
}

// NormalizeDob acepta d/m/y, m/yyyy (día 01) y yyyy (01-01).
func NormalizeDob(fragment string) (string, bool) {
	s := strings.TrimSpace(fragment)
	if g := reDobDMY.FindStringSubmatch(s); g != nil {
		return canonical(g[1], g[2], g[3]), true
	}
	if g := reDobMY.FindStringSubmatch(s); g != nil {
		return fmt.Sprintf("%s-%s-01", g[2], pad2(g[1])), true
	}
	if reDobY.MatchString(s) {
		return s + "-01-01", true
	}
	return "", false
}

// Clean colapsa espacios/tabs repetidos y recorta extremos.
func Clean(text string) string {
	return strings.TrimSpace(reHSpaceRun.ReplaceAllString(text, " "))
}

func canonical(d, m, y string) string {
	if len(y) == 2 {
		y = "20" + y
	}
	return fmt.Sprintf("%s-%s-%s", y, pad2(m), pad2(d))
}

func pad2(s string) string {
	if len(s) < 2 {
		return "0" + s
	}
	return s
}
