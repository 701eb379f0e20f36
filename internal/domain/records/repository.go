package records

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// Store son las operaciones de persistencia que usa el servicio. Los Find*
// devuelven ErrNotFound cuando no hay coincidencia.
type Store interface {
	FindOwnerByTaxCode(ctx context.Context, taxCode string) (Owner, error)
	FindOwnerByName(ctx context.Context, fullName string) (Owner, error)
	GetOwner(ctx context.Context, id string) (Owner, error)
	CreateOwner(ctx context.Context, o Owner) error
	// UpdateOwner reemplaza escalares, emails y teléfonos.
	UpdateOwner(ctx context.Context, o Owner) error
	ListOwners(ctx context.Context) ([]OwnerSummary, error)

	FindPetByMicrochip(ctx context.Context, microchip string) (Pet, error)
	FindPetByNameSpecies(ctx context.Context, name, species string) (Pet, error)
	GetPet(ctx context.Context, id string) (Pet, error)
	CreatePet(ctx context.Context, p Pet) error
	UpdatePet(ctx context.Context, p Pet) error
	ListPetsByOwner(ctx context.Context, ownerID string) ([]Pet, error)

	LinkExists(ctx context.Context, l PetOwner) (bool, error)
	CreateLink(ctx context.Context, l PetOwner) error
	ListLinksByPet(ctx context.Context, petID string) ([]PetOwner, error)

	VisitExists(ctx context.Context, petID, visitedAt, description string) (bool, error)
	GetVisit(ctx context.Context, id string) (Visit, error)
	CreateVisit(ctx context.Context, v Visit) error
	UpdateVisit(ctx context.Context, v Visit) error
	// ListVisitsByPet ordena de la visita más reciente a la más antigua.
	ListVisitsByPet(ctx context.Context, petID string) ([]Visit, error)
	// ListVisits devuelve todas las visitas (export).
	ListVisits(ctx context.Context) ([]Visit, error)
	ListPets(ctx context.Context) ([]Pet, error)
}

// Repository agrega atomicidad: fn ve un Store cuyos cambios se confirman sólo
// si fn devuelve nil.
type Repository interface {
	Store
	Atomic(ctx context.Context, fn func(Store) error) error
}
