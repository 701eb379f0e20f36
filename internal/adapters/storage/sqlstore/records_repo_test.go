package sqlstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WINTERANDREA/vet-sheet-parser/internal/domain/records"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/parser"
)

func newSQLiteRepo(t *testing.T) *RecordsRepo {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "vetsheet.db")

	require.NoError(t, Migrate(DriverSQLite, dsn))
	// dos veces: ErrNoChange no es error
	require.NoError(t, Migrate(DriverSQLite, dsn))

	db, err := Open(DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRecordsRepo(db, DriverSQLite)
}

func TestRebind(t *testing.T) {
	pg := &queries{numbered: true}
	assert.Equal(t, "a = $1 AND b = $2", pg.rebind("a = ? AND b = ?"))

	lite := &queries{}
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}

func TestVersion(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "v.db")

	v, _, err := Version(DriverSQLite, dsn)
	require.NoError(t, err)
	assert.Zero(t, v)

	require.NoError(t, Migrate(DriverSQLite, dsn))
	v, dirty, err := Version(DriverSQLite, dsn)
	require.NoError(t, err)
	assert.EqualValues(t, 1, v)
	assert.False(t, dirty)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("oracle", "x")
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestRecordsRepo_OwnersRoundTrip(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	o := records.Owner{
		ID: "o1", FullName: "Mario Rossi", TaxCode: "RSSMRA80A01H501U",
		Emails: []string{"b@x.it", "a@x.it"}, Phones: []string{"3331234567"},
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, repo.CreateOwner(ctx, o))

	got, err := repo.FindOwnerByTaxCode(ctx, "rssmra80a01h501u")
	require.NoError(t, err)
	assert.Equal(t, o, got)

	got, err = repo.FindOwnerByName(ctx, "MARIO ROSSI")
	require.NoError(t, err)
	assert.Equal(t, "o1", got.ID)

	o.Address = "Via Roma 1"
	o.Emails = []string{"c@x.it"}
	o.Phones = nil
	require.NoError(t, repo.UpdateOwner(ctx, o))

	got, err = repo.GetOwner(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, "Via Roma 1", got.Address)
	assert.Equal(t, []string{"c@x.it"}, got.Emails)
	assert.Equal(t, []string{}, got.Phones)

	_, err = repo.GetOwner(ctx, "nope")
	assert.ErrorIs(t, err, records.ErrNotFound)
	assert.ErrorIs(t, repo.UpdateOwner(ctx, records.Owner{ID: "nope"}), records.ErrNotFound)
}

func TestRecordsRepo_PetsLinksVisits(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateOwner(ctx, records.Owner{ID: "o1", FullName: "Mario Rossi"}))
	yes := true
	require.NoError(t, repo.CreatePet(ctx, records.Pet{ID: "p1", Name: "Fido", Species: "Cane", Sterilized: &yes, Microchip: "380260000123456"}))
	require.NoError(t, repo.CreatePet(ctx, records.Pet{ID: "p2", Name: "Micia", Species: "Gatto"}))

	p, err := repo.FindPetByMicrochip(ctx, "380260000123456")
	require.NoError(t, err)
	require.NotNil(t, p.Sterilized)
	assert.True(t, *p.Sterilized)

	p, err = repo.FindPetByNameSpecies(ctx, "micia", "Gatto")
	require.NoError(t, err)
	assert.Nil(t, p.Sterilized)
	_, err = repo.FindPetByNameSpecies(ctx, "micia", "Cane")
	assert.ErrorIs(t, err, records.ErrNotFound)

	link := records.PetOwner{ID: "l1", PetID: "p1", OwnerID: "o1", Role: parser.RolePrimary}
	require.NoError(t, repo.CreateLink(ctx, link))
	ok, err := repo.LinkExists(ctx, records.PetOwner{PetID: "p1", OwnerID: "o1", Role: parser.RolePrimary})
	require.NoError(t, err)
	assert.True(t, ok)

	links, err := repo.ListLinksByPet(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []records.PetOwner{link}, links)

	pets, err := repo.ListPetsByOwner(ctx, "o1")
	require.NoError(t, err)
	require.Len(t, pets, 1)
	assert.Equal(t, "Fido", pets[0].Name)

	for _, v := range []records.Visit{
		{ID: "v1", PetID: "p1", VisitedAt: "2024-03-05", Description: "controllo"},
		{ID: "v2", PetID: "p1", VisitedAt: "", Description: "senza data"},
		{ID: "v3", PetID: "p1", VisitedAt: "2024-04-12", Description: "zoppia"},
	} {
		require.NoError(t, repo.CreateVisit(ctx, v))
	}
	assert.ErrorIs(t, repo.CreateVisit(ctx, records.Visit{ID: "v4", PetID: "ghost"}), records.ErrNotFound)

	visits, err := repo.ListVisitsByPet(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, visits, 3)
	assert.Equal(t, []string{"v3", "v1", "v2"}, []string{visits[0].ID, visits[1].ID, visits[2].ID})

	exists, err := repo.VisitExists(ctx, "p1", "2024-03-05", "controllo")
	require.NoError(t, err)
	assert.True(t, exists)

	owners, err := repo.ListOwners(ctx)
	require.NoError(t, err)
	require.Len(t, owners, 1)
	assert.Equal(t, 1, owners[0].PetsCount)
	assert.Equal(t, 3, owners[0].VisitsCount)
	assert.Equal(t, "2024-04-12", owners[0].LastVisitAt)
}

func TestRecordsRepo_AtomicRollsBack(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := repo.Atomic(ctx, func(st records.Store) error {
		require.NoError(t, st.CreateOwner(ctx, records.Owner{ID: "o1", FullName: "Mario Rossi"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repo.GetOwner(ctx, "o1")
	assert.ErrorIs(t, err, records.ErrNotFound)
}

func TestRecordsRepo_AtomicReleasesTxOnPanic(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = repo.Atomic(ctx, func(st records.Store) error {
			_ = st.CreateOwner(ctx, records.Owner{ID: "o1", FullName: "Mario Rossi"})
			panic("boom")
		})
	})

	// con una sola conexión, una transacción abierta bloquearía esta consulta
	_, err := repo.GetOwner(ctx, "o1")
	assert.ErrorIs(t, err, records.ErrNotFound)
	require.NoError(t, repo.CreateOwner(ctx, records.Owner{ID: "o2", FullName: "Anna Bianchi"}))
}

func TestRecordsRepo_ServiceSave(t *testing.T) {
	repo := newSQLiteRepo(t)
	svc := records.NewService(repo)
	ctx := context.Background()

	doc := parser.ParseDocument("Mario Rossi RSSMRA80A01H501U a@b.it\n"+
		"CG Labrador M 01/02/2015 Fido\n"+
		"05/03/24 Visita di controllo\n", false)

	first, err := svc.Save(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, 1, first.OwnersCreated)
	assert.Equal(t, 1, first.VisitsCreated)

	second, err := svc.Save(ctx, doc)
	require.NoError(t, err)
	assert.Zero(t, second.OwnersCreated)
	assert.Zero(t, second.PetsCreated)
	assert.Zero(t, second.VisitsCreated)
	assert.Zero(t, second.LinksCreated)

	detail, err := svc.GetOwner(ctx, first.OwnerIDs[0])
	require.NoError(t, err)
	require.Len(t, detail.Pets, 1)
	assert.Equal(t, "Fido", detail.Pets[0].Name)
	assert.Equal(t, detail.ID, detail.Pets[0].CurrentOwnerID)
}
