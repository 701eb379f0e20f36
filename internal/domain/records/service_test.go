package records_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WINTERANDREA/vet-sheet-parser/internal/adapters/storage/memory"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/domain/records"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/parser"
)

const sheet = "Mario Rossi RSSMRA80A01H501U a@b.it 3331234567\n" +
	ownerGap +
	"Anna Bianchi BNCNNA80A41F205X\n" +
	"CG Labrador M 01/02/2015 Fido STERILIZZATO\n" +
	"microchip 380260000123456\n" +
	"05/03/24 Visita di controllo\n" +
	"12/04/2024 Zoppia\n" +
	"GT Europeo F 03/04/2019 Micia\n" +
	"10/10/2023 Vomito\n"

// separa las dos ventanas de dueños
const ownerGap = "x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x " +
	"x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x " +
	"x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x " +
	"x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x " +
	"x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x x\n"

func newService() (*records.Service, *memory.RecordsRepo) {
	repo := memory.NewRecordsRepo()
	return records.NewService(repo), repo
}

func TestSave_CreatesEverything(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	doc := parser.ParseDocument(sheet, false)
	require.Len(t, doc.Owners, 2)
	require.Len(t, doc.Pets, 2)

	res, err := svc.Save(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, 2, res.OwnersCreated)
	assert.Equal(t, 2, res.PetsCreated)
	assert.Equal(t, 3, res.VisitsCreated)
	assert.Equal(t, 4, res.LinksCreated)

	owners, err := svc.ListOwners(ctx)
	require.NoError(t, err)
	require.Len(t, owners, 2)
	assert.Equal(t, "Anna Bianchi", owners[0].FullName)
	assert.Equal(t, "Mario Rossi", owners[1].FullName)
	assert.Equal(t, 2, owners[1].PetsCount)
	assert.Equal(t, 3, owners[1].VisitsCount)
	assert.Equal(t, "2024-04-12", owners[1].LastVisitAt)

	detail, err := svc.GetOwner(ctx, owners[1].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@b.it"}, detail.Emails)
	require.Len(t, detail.Pets, 2)
	fido := detail.Pets[0]
	assert.Equal(t, "Fido", fido.Name)
	assert.Equal(t, owners[1].ID, fido.CurrentOwnerID)
	assert.Len(t, fido.Owners, 2)
	require.Len(t, fido.Visits, 2)
	assert.Equal(t, "2024-04-12", fido.Visits[0].VisitedAt)
}

func TestSave_ReimportIsIdempotent(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	doc := parser.ParseDocument(sheet, false)

	_, err := svc.Save(ctx, doc)
	require.NoError(t, err)
	res, err := svc.Save(ctx, doc)
	require.NoError(t, err)

	assert.Zero(t, res.OwnersCreated)
	assert.Zero(t, res.PetsCreated)
	assert.Zero(t, res.VisitsCreated)
	assert.Zero(t, res.LinksCreated)
}

func TestSave_MergesOwnerByTaxCode(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.Save(ctx, parser.ParsedDocument{Owners: []parser.OwnerCandidate{
		{FullName: "Mario Rossi", TaxCode: "RSSMRA80A01H501U", Emails: []string{"a@b.it"}, Role: parser.RolePrimary},
	}})
	require.NoError(t, err)
	_, err = svc.Save(ctx, parser.ParsedDocument{Owners: []parser.OwnerCandidate{
		{TaxCode: "RSSMRA80A01H501U", Emails: []string{"c@d.it"}, Address: "Via Roma 1", Role: parser.RolePrimary},
	}})
	require.NoError(t, err)

	owners, err := svc.ListOwners(ctx)
	require.NoError(t, err)
	require.Len(t, owners, 1)

	o, err := svc.GetOwner(ctx, owners[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Mario Rossi", o.FullName)
	assert.Equal(t, "Via Roma 1", o.Address)
	assert.Equal(t, []string{"a@b.it", "c@d.it"}, o.Emails)
}

func TestSave_PetMatchByNameSpecies(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()
	yes := true

	_, err := svc.Save(ctx, parser.ParsedDocument{Pets: []parser.PetRecord{{Name: "Fido", Species: parser.SpeciesDog}}})
	require.NoError(t, err)
	res, err := svc.Save(ctx, parser.ParsedDocument{Pets: []parser.PetRecord{
		{Name: "fido", Species: parser.SpeciesDog, Sterilized: &yes, Breed: "Labrador"},
		{Name: "Fido", Species: parser.SpeciesCat},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.PetsCreated)

	pets, err := repo.ListPets(ctx)
	require.NoError(t, err)
	require.Len(t, pets, 2)
	for _, p := range pets {
		if p.Species == string(parser.SpeciesDog) {
			assert.Equal(t, "Labrador", p.Breed)
			require.NotNil(t, p.Sterilized)
			assert.True(t, *p.Sterilized)
		}
	}
}

func TestUpdateOwner(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	_, err := svc.Save(ctx, parser.ParseDocument(sheet, false))
	require.NoError(t, err)

	owners, _ := svc.ListOwners(ctx)
	mario := owners[1]
	detail, err := svc.GetOwner(ctx, mario.ID)
	require.NoError(t, err)
	fido := detail.Pets[0]

	out, err := svc.UpdateOwner(ctx, mario.ID, records.OwnerUpdate{
		FullName: "Mario Rossi",
		TaxCode:  "RSSMRA80A01H501U",
		Address:  "Corso Italia 3",
		Emails:   []string{"nuovo@b.it"},
		Phones:   []string{},
		Pets:     []records.PetUpdate{{ID: fido.ID, Name: "Fido", Breed: "Labrador retriever", Sex: "M"}},
		Visits:   []records.VisitUpdate{{ID: fido.Visits[0].ID, VisitedAt: "2024-04-13", Description: "Zoppia lieve"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Corso Italia 3", out.Address)
	assert.Equal(t, []string{"nuovo@b.it"}, out.Emails)
	assert.Empty(t, out.Phones)
	assert.Equal(t, "Labrador retriever", out.Pets[0].Breed)
	assert.Equal(t, "Zoppia lieve", out.Pets[0].Visits[0].Description)
}

func TestUpdateOwner_Errors(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.UpdateOwner(ctx, "x", records.OwnerUpdate{})
	assert.ErrorIs(t, err, records.ErrInvalidInput)

	_, err = svc.UpdateOwner(ctx, "missing", records.OwnerUpdate{FullName: "A B"})
	assert.ErrorIs(t, err, records.ErrNotFound)

	_, err = svc.Save(ctx, parser.ParseDocument(sheet, false))
	require.NoError(t, err)
	owners, _ := svc.ListOwners(ctx)
	_, err = svc.UpdateOwner(ctx, owners[0].ID, records.OwnerUpdate{
		FullName: "Anna Bianchi",
		Pets:     []records.PetUpdate{{ID: "not-mine"}},
	})
	assert.True(t, errors.Is(err, records.ErrNotFound))

	// el fallo no dejó cambios a medias
	o, err := svc.GetOwner(ctx, owners[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "BNCNNA80A41F205X", o.TaxCode)
}

func TestGetOwner_NotFound(t *testing.T) {
	svc, _ := newService()
	_, err := svc.GetOwner(context.Background(), "nope")
	assert.ErrorIs(t, err, records.ErrNotFound)
}
