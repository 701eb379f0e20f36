package records

import (
	"time"

	"github.com/WINTERANDREA/vet-sheet-parser/internal/parser"
)

// Fechas de dominio (DOB, visitedAt, start/end) en YYYY-MM-DD como texto:
// se guardan tal cual salen del parser, incluso si no son fechas de calendario.

type Owner struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName,omitempty"`
	TaxCode   string    `json:"taxCode,omitempty"`
	Address   string    `json:"address,omitempty"`
	Emails    []string  `json:"emails"`
	Phones    []string  `json:"phones"`
	CreatedAt time.Time `json:"createdAt"`
}

type Pet struct {
	ID             string    `json:"id"`
	Name           string    `json:"name,omitempty"`
	Species        string    `json:"species"`
	Breed          string    `json:"breed,omitempty"`
	Sex            string    `json:"sex,omitempty"`
	DOB            string    `json:"dob,omitempty"`
	Color          string    `json:"color,omitempty"`
	Sterilized     *bool     `json:"sterilized,omitempty"`
	Microchip      string    `json:"microchip,omitempty"`
	CurrentOwnerID string    `json:"currentOwnerId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

type Visit struct {
	ID                string    `json:"id"`
	PetID             string    `json:"petId"`
	VisitedAt         string    `json:"visitedAt,omitempty"`
	Description       string    `json:"description"`
	ExamsText         string    `json:"examsText,omitempty"`
	PrescriptionsText string    `json:"prescriptionsText,omitempty"`
	RawText           string    `json:"rawText,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// PetOwner vincula dueño y mascota con rol y rango de fechas.
type PetOwner struct {
	ID        string      `json:"id"`
	PetID     string      `json:"petId"`
	OwnerID   string      `json:"ownerId"`
	Role      parser.Role `json:"role"`
	StartDate string      `json:"startDate,omitempty"`
	EndDate   string      `json:"endDate,omitempty"`
}

// Vistas de lectura.

type OwnerSummary struct {
	ID          string `json:"id"`
	FullName    string `json:"fullName,omitempty"`
	TaxCode     string `json:"taxCode,omitempty"`
	Address     string `json:"address,omitempty"`
	PetsCount   int    `json:"petsCount"`
	VisitsCount int    `json:"visitsCount"`
	LastVisitAt string `json:"lastVisitAt,omitempty"`
}

type OwnerDetail struct {
	Owner
	Pets []PetDetail `json:"pets"`
}

// PetDetail lleva la línea de tiempo completa de dueños y las visitas de la más
// reciente a la más antigua.
type PetDetail struct {
	Pet
	Owners []PetOwnerView `json:"owners"`
	Visits []Visit        `json:"visits"`
}

type PetOwnerView struct {
	PetOwner
	OwnerName string `json:"ownerName,omitempty"`
}

// SaveResult resume qué creó Save.
type SaveResult struct {
	OwnerIDs      []string `json:"ownerIds"`
	PetIDs        []string `json:"petIds"`
	OwnersCreated int      `json:"ownersCreated"`
	PetsCreated   int      `json:"petsCreated"`
	VisitsCreated int      `json:"visitsCreated"`
	LinksCreated  int      `json:"linksCreated"`
}

// OwnerUpdate reemplaza los datos del dueño y, opcionalmente, de mascotas y
// visitas identificadas por ID.
type OwnerUpdate struct {
	FullName string        `json:"fullName"`
	TaxCode  string        `json:"taxCode"`
	Address  string        `json:"address"`
	Emails   []string      `json:"emails"`
	Phones   []string      `json:"phones"`
	Pets     []PetUpdate   `json:"pets"`
	Visits   []VisitUpdate `json:"visits"`
}

type PetUpdate struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Breed      string `json:"breed"`
	Sex        string `json:"sex"`
	DOB        string `json:"dob"`
	Color      string `json:"color"`
	Sterilized *bool  `json:"sterilized"`
	Microchip  string `json:"microchip"`
}

type VisitUpdate struct {
	ID                string `json:"id"`
	VisitedAt         string `json:"visitedAt"`
	Description       string `json:"description"`
	ExamsText         string `json:"examsText"`
	PrescriptionsText string `json:"prescriptionsText"`
}
