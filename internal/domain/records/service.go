package records

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/WINTERANDREA/vet-sheet-parser/internal/parser"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/platform/logger"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/platform/metrics"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	repo    Repository
	log     logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	newID   func() string
}

type Option func(*Service)

func WithLogger(l logger.Logger) Option     { return func(s *Service) { s.log = l } }
func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:  repo,
		log:   logger.NewNop(),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Save persiste un documento parseado:
//   - dueños por código fiscal, si no por nombre; si no, se crean
//   - mascotas por microchip, si no por nombre+especie; si no, se crean
//   - cada dueño del documento queda vinculado a cada mascota del documento
//   - visitas deduplicadas por (mascota, fecha, descripción)
//
// Todo ocurre en una sola unidad atómica.
func (s *Service) Save(ctx context.Context, doc parser.ParsedDocument) (SaveResult, error) {
	res := SaveResult{OwnerIDs: []string{}, PetIDs: []string{}}

	err := s.repo.Atomic(ctx, func(st Store) error {
		res = SaveResult{OwnerIDs: []string{}, PetIDs: []string{}}

		type savedOwner struct {
			id   string
			cand parser.OwnerCandidate
		}
		var owners []savedOwner
		for _, oc := range doc.Owners {
			id, created, err := s.upsertOwner(ctx, st, oc)
			if err != nil {
				return err
			}
			if created {
				res.OwnersCreated++
			}
			owners = append(owners, savedOwner{id: id, cand: oc})
			res.OwnerIDs = append(res.OwnerIDs, id)
		}

		for _, pr := range doc.Pets {
			pet, created, err := s.upsertPet(ctx, st, pr)
			if err != nil {
				return err
			}
			if created {
				res.PetsCreated++
			}
			res.PetIDs = append(res.PetIDs, pet.ID)

			current := ""
			for _, o := range owners {
				link := PetOwner{
					PetID:     pet.ID,
					OwnerID:   o.id,
					Role:      o.cand.Role,
					StartDate: o.cand.StartDate,
					EndDate:   o.cand.EndDate,
				}
				if link.Role == "" {
					link.Role = parser.RoleSecondary
				}
				exists, err := st.LinkExists(ctx, link)
				if err != nil {
					return fmt.Errorf("check link: %w", err)
				}
				if !exists {
					link.ID = s.newID()
					if err := st.CreateLink(ctx, link); err != nil {
						return fmt.Errorf("create link: %w", err)
					}
					res.LinksCreated++
				}
				if link.Role == parser.RolePrimary && link.EndDate == "" && current == "" {
					current = o.id
				}
			}
			if current != "" && pet.CurrentOwnerID != current {
				pet.CurrentOwnerID = current
				if err := st.UpdatePet(ctx, pet); err != nil {
					return fmt.Errorf("update pet owner: %w", err)
				}
			}

			for _, v := range pr.Visits {
				exists, err := st.VisitExists(ctx, pet.ID, v.VisitedAt, v.Description)
				if err != nil {
					return fmt.Errorf("check visit: %w", err)
				}
				if exists {
					continue
				}
				if err := st.CreateVisit(ctx, Visit{
					ID:                s.newID(),
					PetID:             pet.ID,
					VisitedAt:         v.VisitedAt,
					Description:       v.Description,
					ExamsText:         v.ExamsText,
					PrescriptionsText: v.PrescriptionsText,
					RawText:           v.RawText,
					CreatedAt:         s.now(),
				}); err != nil {
					return fmt.Errorf("create visit: %w", err)
				}
				res.VisitsCreated++
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error("save document failed", map[string]any{"error": err})
		return SaveResult{}, err
	}

	s.metrics.ObserveSave(res.OwnersCreated, res.PetsCreated, res.VisitsCreated)
	s.log.Info("document saved", map[string]any{
		"owners":         len(res.OwnerIDs),
		"owners_created": res.OwnersCreated,
		"pets":           len(res.PetIDs),
		"pets_created":   res.PetsCreated,
		"visits_created": res.VisitsCreated,
	})
	return res, nil
}

func (s *Service) upsertOwner(ctx context.Context, st Store, oc parser.OwnerCandidate) (string, bool, error) {
	var (
		o   Owner
		err = ErrNotFound
	)
	if oc.TaxCode != "" {
		o, err = st.FindOwnerByTaxCode(ctx, oc.TaxCode)
	}
	if errors.Is(err, ErrNotFound) && oc.FullName != "" {
		o, err = st.FindOwnerByName(ctx, oc.FullName)
	}

	switch {
	case errors.Is(err, ErrNotFound):
		o = Owner{
			ID:        s.newID(),
			FullName:  oc.FullName,
			TaxCode:   oc.TaxCode,
			Address:   oc.Address,
			Emails:    union(nil, oc.Emails),
			Phones:    union(nil, oc.Phones),
			CreatedAt: s.now(),
		}
		if err := st.CreateOwner(ctx, o); err != nil {
			return "", false, fmt.Errorf("create owner: %w", err)
		}
		return o.ID, true, nil
	case err != nil:
		return "", false, fmt.Errorf("find owner: %w", err)
	}

	o.FullName = nonEmpty(oc.FullName, o.FullName)
	o.TaxCode = nonEmpty(oc.TaxCode, o.TaxCode)
	o.Address = nonEmpty(oc.Address, o.Address)
	o.Emails = union(o.Emails, oc.Emails)
	o.Phones = union(o.Phones, oc.Phones)
	if err := st.UpdateOwner(ctx, o); err != nil {
		return "", false, fmt.Errorf("update owner: %w", err)
	}
	return o.ID, false, nil
}

func (s *Service) upsertPet(ctx context.Context, st Store, pr parser.PetRecord) (Pet, bool, error) {
	var (
		p   Pet
		err = ErrNotFound
	)
	if pr.Microchip != "" {
		p, err = st.FindPetByMicrochip(ctx, pr.Microchip)
	}
	if errors.Is(err, ErrNotFound) && pr.Name != "" {
		p, err = st.FindPetByNameSpecies(ctx, pr.Name, string(pr.Species))
	}

	switch {
	case errors.Is(err, ErrNotFound):
		p = Pet{
			ID:         s.newID(),
			Name:       pr.Name,
			Species:    string(pr.Species),
			Breed:      pr.Breed,
			Sex:        string(pr.Sex),
			DOB:        pr.DOB,
			Color:      pr.Color,
			Sterilized: pr.Sterilized,
			Microchip:  pr.Microchip,
			CreatedAt:  s.now(),
		}
		if err := st.CreatePet(ctx, p); err != nil {
			return Pet{}, false, fmt.Errorf("create pet: %w", err)
		}
		return p, true, nil
	case err != nil:
		return Pet{}, false, fmt.Errorf("find pet: %w", err)
	}

	p.Name = nonEmpty(pr.Name, p.Name)
	p.Breed = nonEmpty(pr.Breed, p.Breed)
	p.Sex = nonEmpty(string(pr.Sex), p.Sex)
	p.DOB = nonEmpty(pr.DOB, p.DOB)
	p.Color = nonEmpty(pr.Color, p.Color)
	p.Microchip = nonEmpty(pr.Microchip, p.Microchip)
	if pr.Sterilized != nil {
		p.Sterilized = pr.Sterilized
	}
	if err := st.UpdatePet(ctx, p); err != nil {
		return Pet{}, false, fmt.Errorf("update pet: %w", err)
	}
	return p, false, nil
}

func (s *Service) ListOwners(ctx context.Context) ([]OwnerSummary, error) {
	items, err := s.repo.ListOwners(ctx)
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	if items == nil {
		items = []OwnerSummary{}
	}
	return items, nil
}

// GetOwner arma el detalle: datos del dueño, sus mascotas, la línea de tiempo de
// dueños de cada mascota y sus visitas.
func (s *Service) GetOwner(ctx context.Context, id string) (OwnerDetail, error) {
	if strings.TrimSpace(id) == "" {
		return OwnerDetail{}, ErrInvalidInput
	}
	o, err := s.repo.GetOwner(ctx, id)
	if err != nil {
		return OwnerDetail{}, err
	}
	pets, err := s.repo.ListPetsByOwner(ctx, id)
	if err != nil {
		return OwnerDetail{}, fmt.Errorf("list pets: %w", err)
	}

	names := map[string]string{o.ID: o.FullName}
	out := OwnerDetail{Owner: o, Pets: make([]PetDetail, 0, len(pets))}
	for _, p := range pets {
		links, err := s.repo.ListLinksByPet(ctx, p.ID)
		if err != nil {
			return OwnerDetail{}, fmt.Errorf("list links: %w", err)
		}
		views := make([]PetOwnerView, 0, len(links))
		for _, l := range links {
			name, ok := names[l.OwnerID]
			if !ok {
				if other, err := s.repo.GetOwner(ctx, l.OwnerID); err == nil {
					name = other.FullName
				}
				names[l.OwnerID] = name
			}
			views = append(views, PetOwnerView{PetOwner: l, OwnerName: name})
		}
		visits, err := s.repo.ListVisitsByPet(ctx, p.ID)
		if err != nil {
			return OwnerDetail{}, fmt.Errorf("list visits: %w", err)
		}
		if visits == nil {
			visits = []Visit{}
		}
		out.Pets = append(out.Pets, PetDetail{Pet: p, Owners: views, Visits: visits})
	}
	return out, nil
}

// UpdateOwner reemplaza los datos del dueño y actualiza las mascotas y visitas
// listadas. Todas deben pertenecer al dueño.
func (s *Service) UpdateOwner(ctx context.Context, id string, in OwnerUpdate) (OwnerDetail, error) {
	if strings.TrimSpace(id) == "" {
		return OwnerDetail{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.FullName) == "" && strings.TrimSpace(in.TaxCode) == "" {
		return OwnerDetail{}, fmt.Errorf("%w: fullName or taxCode required", ErrInvalidInput)
	}

	err := s.repo.Atomic(ctx, func(st Store) error {
		o, err := st.GetOwner(ctx, id)
		if err != nil {
			return err
		}
		o.FullName = strings.TrimSpace(in.FullName)
		o.TaxCode = strings.TrimSpace(in.TaxCode)
		o.Address = strings.TrimSpace(in.Address)
		o.Emails = union(nil, in.Emails)
		o.Phones = union(nil, in.Phones)
		if err := st.UpdateOwner(ctx, o); err != nil {
			return fmt.Errorf("update owner: %w", err)
		}

		owned := map[string]bool{}
		pets, err := st.ListPetsByOwner(ctx, id)
		if err != nil {
			return fmt.Errorf("list pets: %w", err)
		}
		for _, p := range pets {
			owned[p.ID] = true
		}

		for _, pu := range in.Pets {
			if !owned[pu.ID] {
				return fmt.Errorf("pet %s: %w", pu.ID, ErrNotFound)
			}
			p, err := st.GetPet(ctx, pu.ID)
			if err != nil {
				return err
			}
			p.Name = strings.TrimSpace(pu.Name)
			p.Breed = strings.TrimSpace(pu.Breed)
			p.Sex = strings.TrimSpace(pu.Sex)
			p.DOB = strings.TrimSpace(pu.DOB)
			p.Color = strings.TrimSpace(pu.Color)
			p.Sterilized = pu.Sterilized
			p.Microchip = strings.TrimSpace(pu.Microchip)
			if err := st.UpdatePet(ctx, p); err != nil {
				return fmt.Errorf("update pet: %w", err)
			}
		}

		for _, vu := range in.Visits {
			v, err := st.GetVisit(ctx, vu.ID)
			if err != nil {
				return err
			}
			if !owned[v.PetID] {
				return fmt.Errorf("visit %s: %w", vu.ID, ErrNotFound)
			}
			v.VisitedAt = strings.TrimSpace(vu.VisitedAt)
			v.Description = strings.TrimSpace(vu.Description)
			v.ExamsText = strings.TrimSpace(vu.ExamsText)
			v.PrescriptionsText = strings.TrimSpace(vu.PrescriptionsText)
			if err := st.UpdateVisit(ctx, v); err != nil {
				return fmt.Errorf("update visit: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return OwnerDetail{}, err
	}
	return s.GetOwner(ctx, id)
}

// Snapshot devuelve todo lo guardado (export).
func (s *Service) Snapshot(ctx context.Context) ([]OwnerSummary, []Pet, []Visit, error) {
	owners, err := s.ListOwners(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	pets, err := s.repo.ListPets(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("list pets: %w", err)
	}
	visits, err := s.repo.ListVisits(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("list visits: %w", err)
	}
	return owners, pets, visits, nil
}

func nonEmpty(v, fallback string) string {
	if strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

// union conserva el orden y descarta vacíos y duplicados.
func union(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	seen := map[string]bool{}
	for _, list := range [][]string{base, extra} {
		for _, v := range list {
			v = strings.TrimSpace(v)
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
