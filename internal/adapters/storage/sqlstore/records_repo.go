package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/WINTERANDREA/vet-sheet-parser/internal/domain/records"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/parser"
)

// tsLayout tiene ancho fijo para que el orden de texto coincida con el temporal.
const tsLayout = "2006-01-02T15:04:05.000000000Z"

// querier es lo común entre *sql.DB y *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// RecordsRepo implementa records.Repository. Las consultas se escriben con "?"
// y se reescriben a $n para PostgreSQL.
type RecordsRepo struct {
	db *sql.DB
	queries
}

func NewRecordsRepo(db *sql.DB, driver string) *RecordsRepo {
	return &RecordsRepo{db: db, queries: queries{q: db, numbered: driver == DriverPostgres}}
}

var _ records.Repository = (*RecordsRepo)(nil)

// Atomic corre fn dentro de una transacción. Si fn falla o entra en pánico se
// hace rollback.
func (r *RecordsRepo) Atomic(ctx context.Context, fn func(records.Store) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&queries{q: tx, numbered: r.numbered}); err != nil {
		return err
	}
	return tx.Commit()
}

type queries struct {
	q        querier
	numbered bool
}

func (s *queries) rebind(query string) string {
	if !s.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *queries) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.q.ExecContext(ctx, s.rebind(query), args...)
}

func (s *queries) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.q.QueryContext(ctx, s.rebind(query), args...)
}

func (s *queries) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.q.QueryRowContext(ctx, s.rebind(query), args...)
}

func formatTS(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(tsLayout)
}

func parseTS(s string) time.Time {
	t, err := time.Parse(tsLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t
}

func mustAffect(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return records.ErrNotFound
	}
	return nil
}

// ---- owners ----

const ownerColumns = `id, full_name, tax_code, address, created_at`

func (s *queries) scanOwner(ctx context.Context, row *sql.Row) (records.Owner, error) {
	var (
		o  records.Owner
		ts string
	)
	if err := row.Scan(&o.ID, &o.FullName, &o.TaxCode, &o.Address, &ts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return records.Owner{}, records.ErrNotFound
		}
		return records.Owner{}, err
	}
	o.CreatedAt = parseTS(ts)

	var err error
	if o.Emails, err = s.listValues(ctx, `SELECT email FROM owner_emails WHERE owner_id = ? ORDER BY position`, o.ID); err != nil {
		return records.Owner{}, err
	}
	if o.Phones, err = s.listValues(ctx, `SELECT phone FROM owner_phones WHERE owner_id = ? ORDER BY position`, o.ID); err != nil {
		return records.Owner{}, err
	}
	return o, nil
}

func (s *queries) listValues(ctx context.Context, query, id string) ([]string, error) {
	rows, err := s.query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *queries) FindOwnerByTaxCode(ctx context.Context, taxCode string) (records.Owner, error) {
	return s.scanOwner(ctx, s.queryRow(ctx, `
		SELECT `+ownerColumns+` FROM owners
		WHERE UPPER(tax_code) = UPPER(?)
		ORDER BY LOWER(full_name), id
		LIMIT 1`, taxCode))
}

func (s *queries) FindOwnerByName(ctx context.Context, fullName string) (records.Owner, error) {
	return s.scanOwner(ctx, s.queryRow(ctx, `
		SELECT `+ownerColumns+` FROM owners
		WHERE LOWER(full_name) = LOWER(?)
		ORDER BY id
		LIMIT 1`, fullName))
}

func (s *queries) GetOwner(ctx context.Context, id string) (records.Owner, error) {
	return s.scanOwner(ctx, s.queryRow(ctx, `SELECT `+ownerColumns+` FROM owners WHERE id = ?`, id))
}

func (s *queries) CreateOwner(ctx context.Context, o records.Owner) error {
	if strings.TrimSpace(o.ID) == "" {
		return errors.New("owner id required")
	}
	_, err := s.exec(ctx, `
		INSERT INTO owners (id, full_name, tax_code, address, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		o.ID, o.FullName, o.TaxCode, o.Address, formatTS(o.CreatedAt),
	)
	if err != nil {
		return err
	}
	return s.writeContacts(ctx, o)
}

func (s *queries) UpdateOwner(ctx context.Context, o records.Owner) error {
	res, err := s.exec(ctx, `
		UPDATE owners SET full_name = ?, tax_code = ?, address = ?
		WHERE id = ?`,
		o.FullName, o.TaxCode, o.Address, o.ID,
	)
	if err != nil {
		return err
	}
	if err := mustAffect(res); err != nil {
		return err
	}
	if _, err := s.exec(ctx, `DELETE FROM owner_emails WHERE owner_id = ?`, o.ID); err != nil {
		return err
	}
	if _, err := s.exec(ctx, `DELETE FROM owner_phones WHERE owner_id = ?`, o.ID); err != nil {
		return err
	}
	return s.writeContacts(ctx, o)
}

func (s *queries) writeContacts(ctx context.Context, o records.Owner) error {
	for i, e := range o.Emails {
		if _, err := s.exec(ctx, `INSERT INTO owner_emails (owner_id, position, email) VALUES (?, ?, ?)`, o.ID, i, e); err != nil {
			return err
		}
	}
	for i, p := range o.Phones {
		if _, err := s.exec(ctx, `INSERT INTO owner_phones (owner_id, position, phone) VALUES (?, ?, ?)`, o.ID, i, p); err != nil {
			return err
		}
	}
	return nil
}

func (s *queries) ListOwners(ctx context.Context) ([]records.OwnerSummary, error) {
	rows, err := s.query(ctx, `
		SELECT
			o.id, o.full_name, o.tax_code, o.address,
			(SELECT COUNT(DISTINCT po.pet_id) FROM pet_owners po WHERE po.owner_id = o.id),
			(SELECT COUNT(*) FROM visits v
				WHERE v.pet_id IN (SELECT pet_id FROM pet_owners WHERE owner_id = o.id)),
			(SELECT COALESCE(MAX(v.visited_at), '') FROM visits v
				WHERE v.pet_id IN (SELECT pet_id FROM pet_owners WHERE owner_id = o.id))
		FROM owners o
		ORDER BY LOWER(o.full_name), o.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []records.OwnerSummary{}
	for rows.Next() {
		var sum records.OwnerSummary
		if err := rows.Scan(&sum.ID, &sum.FullName, &sum.TaxCode, &sum.Address,
			&sum.PetsCount, &sum.VisitsCount, &sum.LastVisitAt); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// ---- pets ----

const petColumns = `id, name, species, breed, sex, dob, color, sterilized, microchip, current_owner_id, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPet(row rowScanner) (records.Pet, error) {
	var (
		p    records.Pet
		ster sql.NullBool
		ts   string
	)
	err := row.Scan(&p.ID, &p.Name, &p.Species, &p.Breed, &p.Sex, &p.DOB, &p.Color,
		&ster, &p.Microchip, &p.CurrentOwnerID, &ts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return records.Pet{}, records.ErrNotFound
		}
		return records.Pet{}, err
	}
	if ster.Valid {
		v := ster.Bool
		p.Sterilized = &v
	}
	p.CreatedAt = parseTS(ts)
	return p, nil
}

func (s *queries) listPets(ctx context.Context, query string, args ...any) ([]records.Pet, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []records.Pet{}
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

func (s *queries) FindPetByMicrochip(ctx context.Context, microchip string) (records.Pet, error) {
	return scanPet(s.queryRow(ctx, `
		SELECT `+petColumns+` FROM pets
		WHERE microchip = ?
		ORDER BY LOWER(name), id
		LIMIT 1`, microchip))
}

func (s *queries) FindPetByNameSpecies(ctx context.Context, name, species string) (records.Pet, error) {
	return scanPet(s.queryRow(ctx, `
		SELECT `+petColumns+` FROM pets
		WHERE LOWER(name) = LOWER(?) AND species = ?
		ORDER BY id
		LIMIT 1`, name, species))
}

func (s *queries) GetPet(ctx context.Context, id string) (records.Pet, error) {
	return scanPet(s.queryRow(ctx, `SELECT `+petColumns+` FROM pets WHERE id = ?`, id))
}

func (s *queries) CreatePet(ctx context.Context, p records.Pet) error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("pet id required")
	}
	_, err := s.exec(ctx, `
		INSERT INTO pets (`+petColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Species, p.Breed, p.Sex, p.DOB, p.Color,
		nullBool(p.Sterilized), p.Microchip, p.CurrentOwnerID, formatTS(p.CreatedAt),
	)
	return err
}

func (s *queries) UpdatePet(ctx context.Context, p records.Pet) error {
	res, err := s.exec(ctx, `
		UPDATE pets SET
			name = ?, species = ?, breed = ?, sex = ?, dob = ?, color = ?,
			sterilized = ?, microchip = ?, current_owner_id = ?
		WHERE id = ?`,
		p.Name, p.Species, p.Breed, p.Sex, p.DOB, p.Color,
		nullBool(p.Sterilized), p.Microchip, p.CurrentOwnerID, p.ID,
	)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (s *queries) ListPetsByOwner(ctx context.Context, ownerID string) ([]records.Pet, error) {
	return s.listPets(ctx, `
		SELECT `+petColumns+` FROM pets
		WHERE id IN (SELECT pet_id FROM pet_owners WHERE owner_id = ?)
		ORDER BY LOWER(name), id`, ownerID)
}

func (s *queries) ListPets(ctx context.Context) ([]records.Pet, error) {
	return s.listPets(ctx, `SELECT `+petColumns+` FROM pets ORDER BY LOWER(name), id`)
}

// ---- pet_owners ----

func (s *queries) LinkExists(ctx context.Context, l records.PetOwner) (bool, error) {
	var n int
	err := s.queryRow(ctx, `
		SELECT COUNT(*) FROM pet_owners
		WHERE pet_id = ? AND owner_id = ? AND role = ? AND start_date = ? AND end_date = ?`,
		l.PetID, l.OwnerID, string(l.Role), l.StartDate, l.EndDate,
	).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *queries) CreateLink(ctx context.Context, l records.PetOwner) error {
	if strings.TrimSpace(l.ID) == "" {
		return errors.New("link id required")
	}
	_, err := s.exec(ctx, `
		INSERT INTO pet_owners (id, pet_id, owner_id, role, start_date, end_date)
		VALUES (?, ?, ?, ?, ?, ?)`,
		l.ID, l.PetID, l.OwnerID, string(l.Role), l.StartDate, l.EndDate,
	)
	return err
}

func (s *queries) ListLinksByPet(ctx context.Context, petID string) ([]records.PetOwner, error) {
	rows, err := s.query(ctx, `
		SELECT id, pet_id, owner_id, role, start_date, end_date
		FROM pet_owners
		WHERE pet_id = ?
		ORDER BY start_date, role, id`, petID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []records.PetOwner{}
	for rows.Next() {
		var (
			l    records.PetOwner
			role string
		)
		if err := rows.Scan(&l.ID, &l.PetID, &l.OwnerID, &role, &l.StartDate, &l.EndDate); err != nil {
			return nil, err
		}
		l.Role = parser.Role(role)
		out = append(out, l)
	}
	return out, rows.Err()
}

// ---- visits ----

const visitColumns = `id, pet_id, visited_at, description, exams_text, prescriptions_text, raw_text, created_at`

// Sin fecha al final; el resto de la más reciente a la más antigua.
const visitOrder = `ORDER BY CASE WHEN visited_at = '' THEN 1 ELSE 0 END, visited_at DESC, created_at DESC, id`

func scanVisit(row rowScanner) (records.Visit, error) {
	var (
		v  records.Visit
		ts string
	)
	err := row.Scan(&v.ID, &v.PetID, &v.VisitedAt, &v.Description, &v.ExamsText,
		&v.PrescriptionsText, &v.RawText, &ts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return records.Visit{}, records.ErrNotFound
		}
		return records.Visit{}, err
	}
	v.CreatedAt = parseTS(ts)
	return v, nil
}

func (s *queries) listVisits(ctx context.Context, query string, args ...any) ([]records.Visit, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []records.Visit{}
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *queries) VisitExists(ctx context.Context, petID, visitedAt, description string) (bool, error) {
	var n int
	err := s.queryRow(ctx, `
		SELECT COUNT(*) FROM visits
		WHERE pet_id = ? AND visited_at = ? AND description = ?`,
		petID, visitedAt, description,
	).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *queries) GetVisit(ctx context.Context, id string) (records.Visit, error) {
	return scanVisit(s.queryRow(ctx, `SELECT `+visitColumns+` FROM visits WHERE id = ?`, id))
}

func (s *queries) CreateVisit(ctx context.Context, v records.Visit) error {
	if strings.TrimSpace(v.ID) == "" {
		return errors.New("visit id required")
	}
	if _, err := s.GetPet(ctx, v.PetID); err != nil {
		return err
	}
	_, err := s.exec(ctx, `
		INSERT INTO visits (`+visitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.PetID, v.VisitedAt, v.Description, v.ExamsText,
		v.PrescriptionsText, v.RawText, formatTS(v.CreatedAt),
	)
	return err
}

func (s *queries) UpdateVisit(ctx context.Context, v records.Visit) error {
	res, err := s.exec(ctx, `
		UPDATE visits SET
			visited_at = ?, description = ?, exams_text = ?, prescriptions_text = ?, raw_text = ?
		WHERE id = ?`,
		v.VisitedAt, v.Description, v.ExamsText, v.PrescriptionsText, v.RawText, v.ID,
	)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (s *queries) ListVisitsByPet(ctx context.Context, petID string) ([]records.Visit, error) {
	return s.listVisits(ctx, `SELECT `+visitColumns+` FROM visits WHERE pet_id = ? `+visitOrder, petID)
}

func (s *queries) ListVisits(ctx context.Context) ([]records.Visit, error) {
	return s.listVisits(ctx, `SELECT `+visitColumns+` FROM visits `+visitOrder)
}
