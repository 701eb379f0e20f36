package parser

import (
	"strings"
	"unicode"
)

// mergeOwners agrupa candidatos que comparten código fiscal, nombre, email o
// teléfono. La agrupación es transitiva y no depende del orden de fusión: cada
// grupo queda representado por su primer miembro, que absorbe a los demás en
// orden de aparición.
func mergeOwners(cands []OwnerCandidate) []OwnerCandidate {
	uf := newUnionFind(len(cands))
	seen := make(map[string]int)
	for i, c := range cands {
		for _, k := range ownerKeys(c) {
			if j, ok := seen[k]; ok {
				uf.union(j, i)
				continue
			}
			seen[k] = i
		}
	}

	var out []OwnerCandidate
	slot := make(map[int]int)
	for i, c := range cands {
		root := uf.find(i)
		idx, ok := slot[root]
		if !ok {
			slot[root] = len(out)
			out = append(out, cloneOwner(c))
			continue
		}
		absorb(&out[idx], c)
	}
	return out
}

// ownerKeys devuelve las claves de fusión normalizadas de un candidato.
func ownerKeys(c OwnerCandidate) []string {
	var keys []string
	if c.TaxCode != "" {
		keys = append(keys, "cf:"+strings.ToUpper(c.TaxCode))
	}
	if n := strings.ToLower(strings.Join(strings.Fields(c.FullName), " ")); n != "" {
		keys = append(keys, "name:"+n)
	}
	for _, e := range c.Emails {
		keys = append(keys, "email:"+strings.ToLower(e))
	}
	for _, p := range c.Phones {
		if d := phoneKey(p); d != "" {
			keys = append(keys, "phone:"+d)
		}
	}
	return keys
}

// phoneKey deja sólo dígitos y quita el prefijo internacional 39.
func phoneKey(p string) string {
	var b strings.Builder
	for _, r := range p {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	d := b.String()
	if len(d) > 10 && strings.HasPrefix(d, "39") {
		d = d[2:]
	}
	return d
}

// absorb funde src en dst: unión de contactos, último valor no vacío en escalares.
func absorb(dst *OwnerCandidate, src OwnerCandidate) {
	for _, e := range src.Emails {
		dst.Emails = appendUnique(dst.Emails, e)
	}
	for _, p := range src.Phones {
		dst.Phones = appendUnique(dst.Phones, p)
	}
	if src.FullName != "" {
		dst.FullName = src.FullName
	}
	if src.TaxCode != "" {
		dst.TaxCode = src.TaxCode
	}
	if src.Address != "" {
		dst.Address = src.Address
	}
	if src.Role != "" {
		dst.Role = src.Role
	}
	if src.StartDate != "" {
		dst.StartDate = src.StartDate
	}
	if src.EndDate != "" {
		dst.EndDate = src.EndDate
	}
}

func cloneOwner(c OwnerCandidate) OwnerCandidate {
	c.Emails = append([]string{}, c.Emails...)
	c.Phones = append([]string{}, c.Phones...)
	return c
}

type unionFind struct{ parent []int }

func newUnionFind(n int) *unionFind {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &unionFind{parent: p}
}

func (u *unionFind) find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}
	return i
}

// union conserva como raíz el índice menor.
func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if rb < ra {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
}
