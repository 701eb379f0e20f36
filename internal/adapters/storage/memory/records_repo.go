package memory

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/WINTERANDREA/vet-sheet-parser/internal/domain/records"
)

// RecordsRepo guarda dueños, mascotas, vínculos y visitas en memoria (dev/test).
type RecordsRepo struct {
	mu sync.RWMutex
	st *state
}

func NewRecordsRepo() *RecordsRepo {
	return &RecordsRepo{st: newState()}
}

var _ records.Repository = (*RecordsRepo)(nil)

// Atomic corre fn sobre una copia y la publica sólo si fn no falla.
func (r *RecordsRepo) Atomic(_ context.Context, fn func(records.Store) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	work := r.st.clone()
	if err := fn(work); err != nil {
		return err
	}
	r.st = work
	return nil
}

func (r *RecordsRepo) read() *state {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.st
}

// Las lecturas usan el snapshot vigente: Atomic reemplaza el puntero, nunca
// muta un estado publicado.

func (r *RecordsRepo) FindOwnerByTaxCode(ctx context.Context, taxCode string) (records.Owner, error) {
	return r.read().FindOwnerByTaxCode(ctx, taxCode)
}
func (r *RecordsRepo) FindOwnerByName(ctx context.Context, name string) (records.Owner, error) {
	return r.read().FindOwnerByName(ctx, name)
}
func (r *RecordsRepo) GetOwner(ctx context.Context, id string) (records.Owner, error) {
	return r.read().GetOwner(ctx, id)
}
func (r *RecordsRepo) ListOwners(ctx context.Context) ([]records.OwnerSummary, error) {
	return r.read().ListOwners(ctx)
}
func (r *RecordsRepo) FindPetByMicrochip(ctx context.Context, chip string) (records.Pet, error) {
	return r.read().FindPetByMicrochip(ctx, chip)
}
func (r *RecordsRepo) FindPetByNameSpecies(ctx context.Context, name, species string) (records.Pet, error) {
	return r.read().FindPetByNameSpecies(ctx, name, species)
}
func (r *RecordsRepo) GetPet(ctx context.Context, id string) (records.Pet, error) {
	return r.read().GetPet(ctx, id)
}
func (r *RecordsRepo) ListPetsByOwner(ctx context.Context, ownerID string) ([]records.Pet, error) {
	return r.read().ListPetsByOwner(ctx, ownerID)
}
func (r *RecordsRepo) ListPets(ctx context.Context) ([]records.Pet, error) {
	return r.read().ListPets(ctx)
}
func (r *RecordsRepo) LinkExists(ctx context.Context, l records.PetOwner) (bool, error) {
	return r.read().LinkExists(ctx, l)
}
func (r *RecordsRepo) ListLinksByPet(ctx context.Context, petID string) ([]records.PetOwner, error) {
	return r.read().ListLinksByPet(ctx, petID)
}
func (r *RecordsRepo) VisitExists(ctx context.Context, petID, visitedAt, description string) (bool, error) {
	return r.read().VisitExists(ctx, petID, visitedAt, description)
}
func (r *RecordsRepo) GetVisit(ctx context.Context, id string) (records.Visit, error) {
	return r.read().GetVisit(ctx, id)
}
func (r *RecordsRepo) ListVisitsByPet(ctx context.Context, petID string) ([]records.Visit, error) {
	return r.read().ListVisitsByPet(ctx, petID)
}
func (r *RecordsRepo) ListVisits(ctx context.Context) ([]records.Visit, error) {
	return r.read().ListVisits(ctx)
}

func (r *RecordsRepo) CreateOwner(ctx context.Context, o records.Owner) error {
	return r.Atomic(ctx, func(s records.Store) error { return s.CreateOwner(ctx, o) })
}
func (r *RecordsRepo) UpdateOwner(ctx context.Context, o records.Owner) error {
	return r.Atomic(ctx, func(s records.Store) error { return s.UpdateOwner(ctx, o) })
}
func (r *RecordsRepo) CreatePet(ctx context.Context, p records.Pet) error {
	return r.Atomic(ctx, func(s records.Store) error { return s.CreatePet(ctx, p) })
}
func (r *RecordsRepo) UpdatePet(ctx context.Context, p records.Pet) error {
	return r.Atomic(ctx, func(s records.Store) error { return s.UpdatePet(ctx, p) })
}
func (r *RecordsRepo) CreateLink(ctx context.Context, l records.PetOwner) error {
	return r.Atomic(ctx, func(s records.Store) error { return s.CreateLink(ctx, l) })
}
func (r *RecordsRepo) CreateVisit(ctx context.Context, v records.Visit) error {
	return r.Atomic(ctx, func(s records.Store) error { return s.CreateVisit(ctx, v) })
}
func (r *RecordsRepo) UpdateVisit(ctx context.Context, v records.Visit) error {
	return r.Atomic(ctx, func(s records.Store) error { return s.UpdateVisit(ctx, v) })
}

// state no tiene locks; lo protege RecordsRepo.
type state struct {
	owners map[string]records.Owner
	pets   map[string]records.Pet
	links  map[string]records.PetOwner
	visits map[string]records.Visit
}

func newState() *state {
	return &state{
		owners: make(map[string]records.Owner),
		pets:   make(map[string]records.Pet),
		links:  make(map[string]records.PetOwner),
		visits: make(map[string]records.Visit),
	}
}

func (s *state) clone() *state {
	c := &state{
		owners: make(map[string]records.Owner, len(s.owners)),
		pets:   maps.Clone(s.pets),
		links:  maps.Clone(s.links),
		visits: maps.Clone(s.visits),
	}
	for id, o := range s.owners {
		c.owners[id] = copyOwner(o)
	}
	return c
}

func copyOwner(o records.Owner) records.Owner {
	o.Emails = slices.Clone(o.Emails)
	o.Phones = slices.Clone(o.Phones)
	if o.Emails == nil {
		o.Emails = []string{}
	}
	if o.Phones == nil {
		o.Phones = []string{}
	}
	return o
}

func (s *state) FindOwnerByTaxCode(_ context.Context, taxCode string) (records.Owner, error) {
	for _, o := range s.sortedOwners() {
		if strings.EqualFold(o.TaxCode, taxCode) {
			return copyOwner(o), nil
		}
	}
	return records.Owner{}, records.ErrNotFound
}

func (s *state) FindOwnerByName(_ context.Context, name string) (records.Owner, error) {
	for _, o := range s.sortedOwners() {
		if strings.EqualFold(o.FullName, name) {
			return copyOwner(o), nil
		}
	}
	return records.Owner{}, records.ErrNotFound
}

func (s *state) GetOwner(_ context.Context, id string) (records.Owner, error) {
	o, ok := s.owners[id]
	if !ok {
		return records.Owner{}, records.ErrNotFound
	}
	return copyOwner(o), nil
}

func (s *state) CreateOwner(_ context.Context, o records.Owner) error {
	if strings.TrimSpace(o.ID) == "" {
		return errors.New("owner id required")
	}
	if _, exists := s.owners[o.ID]; exists {
		return errors.New("owner already exists")
	}
	s.owners[o.ID] = copyOwner(o)
	return nil
}

func (s *state) UpdateOwner(_ context.Context, o records.Owner) error {
	if _, exists := s.owners[o.ID]; !exists {
		return records.ErrNotFound
	}
	s.owners[o.ID] = copyOwner(o)
	return nil
}

func (s *state) ListOwners(_ context.Context) ([]records.OwnerSummary, error) {
	out := make([]records.OwnerSummary, 0, len(s.owners))
	for _, o := range s.sortedOwners() {
		sum := records.OwnerSummary{ID: o.ID, FullName: o.FullName, TaxCode: o.TaxCode, Address: o.Address}
		for _, petID := range s.petIDsOf(o.ID) {
			sum.PetsCount++
			for _, v := range s.visits {
				if v.PetID != petID {
					continue
				}
				sum.VisitsCount++
				if v.VisitedAt > sum.LastVisitAt {
					sum.LastVisitAt = v.VisitedAt
				}
			}
		}
		out = append(out, sum)
	}
	return out, nil
}

// sortedOwners: por nombre sin mayúsculas y después por id.
func (s *state) sortedOwners() []records.Owner {
	out := slices.Collect(maps.Values(s.owners))
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].FullName), strings.ToLower(out[j].FullName)
		if a != b {
			return a < b
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *state) petIDsOf(ownerID string) []string {
	seen := map[string]bool{}
	var ids []string
	for _, l := range s.links {
		if l.OwnerID == ownerID && !seen[l.PetID] {
			seen[l.PetID] = true
			ids = append(ids, l.PetID)
		}
	}
	sort.Strings(ids)
	return ids
}

func (s *state) FindPetByMicrochip(_ context.Context, chip string) (records.Pet, error) {
	for _, p := range s.sortedPets() {
		if p.Microchip == chip {
			return p, nil
		}
	}
	return records.Pet{}, records.ErrNotFound
}

func (s *state) FindPetByNameSpecies(_ context.Context, name, species string) (records.Pet, error) {
	for _, p := range s.sortedPets() {
		if strings.EqualFold(p.Name, name) && p.Species == species {
			return p, nil
		}
	}
	return records.Pet{}, records.ErrNotFound
}

func (s *state) GetPet(_ context.Context, id string) (records.Pet, error) {
	p, ok := s.pets[id]
	if !ok {
		return records.Pet{}, records.ErrNotFound
	}
	return p, nil
}

func (s *state) CreatePet(_ context.Context, p records.Pet) error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("pet id required")
	}
	if _, exists := s.pets[p.ID]; exists {
		return errors.New("pet already exists")
	}
	s.pets[p.ID] = p
	return nil
}

func (s *state) UpdatePet(_ context.Context, p records.Pet) error {
	if _, exists := s.pets[p.ID]; !exists {
		return records.ErrNotFound
	}
	s.pets[p.ID] = p
	return nil
}

func (s *state) ListPetsByOwner(_ context.Context, ownerID string) ([]records.Pet, error) {
	out := []records.Pet{}
	for _, id := range s.petIDsOf(ownerID) {
		if p, ok := s.pets[id]; ok {
			out = append(out, p)
		}
	}
	sortPets(out)
	return out, nil
}

func (s *state) ListPets(_ context.Context) ([]records.Pet, error) {
	return s.sortedPets(), nil
}

func (s *state) sortedPets() []records.Pet {
	out := slices.Collect(maps.Values(s.pets))
	sortPets(out)
	return out
}

func sortPets(p []records.Pet) {
	sort.Slice(p, func(i, j int) bool {
		a, b := strings.ToLower(p[i].Name), strings.ToLower(p[j].Name)
		if a != b {
			return a < b
		}
		return p[i].ID < p[j].ID
	})
}

func (s *state) LinkExists(_ context.Context, l records.PetOwner) (bool, error) {
	for _, x := range s.links {
		if x.PetID == l.PetID && x.OwnerID == l.OwnerID && x.Role == l.Role &&
			x.StartDate == l.StartDate && x.EndDate == l.EndDate {
			return true, nil
		}
	}
	return false, nil
}

func (s *state) CreateLink(_ context.Context, l records.PetOwner) error {
	if strings.TrimSpace(l.ID) == "" {
		return errors.New("link id required")
	}
	s.links[l.ID] = l
	return nil
}

// ListLinksByPet ordena por fecha de inicio (vacía primero) y rol.
func (s *state) ListLinksByPet(_ context.Context, petID string) ([]records.PetOwner, error) {
	out := []records.PetOwner{}
	for _, l := range s.links {
		if l.PetID == petID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartDate != out[j].StartDate {
			return out[i].StartDate < out[j].StartDate
		}
		if out[i].Role != out[j].Role {
			return out[i].Role < out[j].Role
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *state) VisitExists(_ context.Context, petID, visitedAt, description string) (bool, error) {
	for _, v := range s.visits {
		if v.PetID == petID && v.VisitedAt == visitedAt && v.Description == description {
			return true, nil
		}
	}
	return false, nil
}

func (s *state) GetVisit(_ context.Context, id string) (records.Visit, error) {
	v, ok := s.visits[id]
	if !ok {
		return records.Visit{}, records.ErrNotFound
	}
	return v, nil
}

func (s *state) CreateVisit(_ context.Context, v records.Visit) error {
	if strings.TrimSpace(v.ID) == "" {
		return errors.New("visit id required")
	}
	if _, ok := s.pets[v.PetID]; !ok {
		return records.ErrNotFound
	}
	s.visits[v.ID] = v
	return nil
}

func (s *state) UpdateVisit(_ context.Context, v records.Visit) error {
	if _, ok := s.visits[v.ID]; !ok {
		return records.ErrNotFound
	}
	s.visits[v.ID] = v
	return nil
}

func (s *state) ListVisitsByPet(_ context.Context, petID string) ([]records.Visit, error) {
	out := []records.Visit{}
	for _, v := range s.visits {
		if v.PetID == petID {
			out = append(out, v)
		}
	}
	sortVisitsDesc(out)
	return out, nil
}

func (s *state) ListVisits(_ context.Context) ([]records.Visit, error) {
	out := slices.Collect(maps.Values(s.visits))
	sortVisitsDesc(out)
	return out, nil
}

// sortVisitsDesc: fecha descendente, sin fecha al final.
func sortVisitsDesc(v []records.Visit) {
	sort.Slice(v, func(i, j int) bool {
		a, b := v[i].VisitedAt, v[j].VisitedAt
		if a != b {
			if a == "" || b == "" {
				return b == ""
			}
			return a > b
		}
		if !v[i].CreatedAt.Equal(v[j].CreatedAt) {
			return v[i].CreatedAt.After(v[j].CreatedAt)
		}
		return v[i].ID < v[j].ID
	})
}
