package parser

import "slices"

// Species es la especie derivada del código de dos letras que abre cada bloque.
type Species string

const (
	SpeciesCat Species = "Gatto"
	SpeciesDog Species = "Cane"
)

// Sex es el marcador de sexo del encabezado de la mascota.
type Sex string

const (
	SexMale   Sex = "M"
	SexFemale Sex = "F"
)

// Role indica si el dueño es el titular actual o un contacto adicional.
type Role string

const (
	RolePrimary   Role = "primary"
	RoleSecondary Role = "secondary"
)

// OwnerCandidate es un dueño reconstruido a partir de la cabecera del documento.
// Las fechas van en forma canónica YYYY-MM-DD; string vacío = ausente.
type OwnerCandidate struct {
	FullName  string   `json:"fullName,omitempty"`
	TaxCode   string   `json:"taxCode,omitempty"`
	Emails    []string `json:"emails"`
	Phones    []string `json:"phones"`
	Address   string   `json:"address,omitempty"`
	Role      Role     `json:"role,omitempty"`
	StartDate string   `json:"startDate,omitempty"`
	EndDate   string   `json:"endDate,omitempty"`
}

// Visit es un tramo de la historia clínica que empieza en una línea con fecha.
type Visit struct {
	VisitedAt         string `json:"visitedAt,omitempty"`
	Description       string `json:"description"`
	ExamsText         string `json:"examsText,omitempty"`
	PrescriptionsText string `json:"prescriptionsText,omitempty"`
	RawText           string `json:"rawText"`
}

// PetRecord es el perfil de una mascota y sus visitas, en orden de aparición.
// Sterilized es tri-estado: nil = no se sabe.
type PetRecord struct {
	Name       string  `json:"name,omitempty"`
	Species    Species `json:"species"`
	Breed      string  `json:"breed,omitempty"`
	Sex        Sex     `json:"sex,omitempty"`
	DOB        string  `json:"dob,omitempty"`
	Color      string  `json:"color,omitempty"`
	Sterilized *bool   `json:"sterilized,omitempty"`
	Microchip  string  `json:"microchip,omitempty"`
	Visits     []Visit `json:"visits"`
}

// ParsedDocument es el resultado de una extracción.
//
// Los dueños no se vinculan a mascotas concretas: todos los dueños de la cabecera
// aplican a todas las mascotas del mismo documento. El vínculo fino es tarea de
// quien persiste.
type ParsedDocument struct {
	Owners []OwnerCandidate `json:"owners"`
	Pets   []PetRecord      `json:"pets"`
	Raw    string           `json:"raw,omitempty"`
}

// Clone devuelve una copia profunda: ningún slice ni puntero queda compartido.
func (d ParsedDocument) Clone() ParsedDocument {
	out := d
	if d.Owners != nil {
		out.Owners = make([]OwnerCandidate, len(d.Owners))
		for i, o := range d.Owners {
			o.Emails = slices.Clone(o.Emails)
			o.Phones = slices.Clone(o.Phones)
			out.Owners[i] = o
		}
	}
	if d.Pets != nil {
		out.Pets = make([]PetRecord, len(d.Pets))
		for i, p := range d.Pets {
			if p.Sterilized != nil {
				v := *p.Sterilized
				p.Sterilized = &v
			}
			p.Visits = slices.Clone(p.Visits)
			out.Pets[i] = p
		}
	}
	return out
}
