// Package export genera el libro XLSX con todo lo importado.
package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/WINTERANDREA/vet-sheet-parser/internal/domain/records"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/platform/logger"
)

// Snapshotter es lo que necesita el export; lo cumple *records.Service.
type Snapshotter interface {
	Snapshot(ctx context.Context) ([]records.OwnerSummary, []records.Pet, []records.Visit, error)
}

const (
	SheetOwners = "Owners"
	SheetPets   = "Pets"
	SheetVisits = "Visits"

	maxCellText = 500
)

type Service struct {
	src Snapshotter
	log logger.Logger
}

func NewService(src Snapshotter, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{src: src, log: log}
}

// XLSX devuelve el libro con hojas Owners, Pets y Visits.
func (s *Service) XLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	owners, pets, visits, err := s.src.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	ownerNames := make(map[string]string, len(owners))
	for _, o := range owners {
		ownerNames[o.ID] = o.FullName
	}
	petNames := make(map[string]string, len(pets))
	for _, p := range pets {
		petNames[p.ID] = p.Name
	}

	f := excelize.NewFile()
	defer f.Close()

	ownerRows := make([][]any, 0, len(owners))
	for _, o := range owners {
		ownerRows = append(ownerRows, []any{o.ID, o.FullName, o.TaxCode, o.Address, o.PetsCount, o.VisitsCount, o.LastVisitAt})
	}
	if err := writeSheet(f, SheetOwners,
		[]string{"ID", "Full name", "Tax code", "Address", "Pets", "Visits", "Last visit"},
		ownerRows, []float64{38, 28, 20, 40, 8, 8, 12}); err != nil {
		return nil, err
	}

	petRows := make([][]any, 0, len(pets))
	for _, p := range pets {
		petRows = append(petRows, []any{
			p.ID, p.Name, p.Species, p.Breed, p.Sex, p.DOB, p.Color,
			sterilizedLabel(p.Sterilized), p.Microchip, ownerNames[p.CurrentOwnerID],
		})
	}
	if err := writeSheet(f, SheetPets,
		[]string{"ID", "Name", "Species", "Breed", "Sex", "Birth date", "Color", "Sterilized", "Microchip", "Current owner"},
		petRows, []float64{38, 20, 10, 20, 6, 12, 18, 10, 18, 28}); err != nil {
		return nil, err
	}

	visitRows := make([][]any, 0, len(visits))
	for _, v := range visits {
		visitRows = append(visitRows, []any{
			v.ID, petNames[v.PetID], v.VisitedAt,
			truncate(v.Description, maxCellText), truncate(v.ExamsText, maxCellText), truncate(v.PrescriptionsText, maxCellText),
		})
	}
	if err := writeSheet(f, SheetVisits,
		[]string{"ID", "Pet", "Date", "Description", "Exams", "Prescriptions"},
		visitRows, []float64{38, 20, 12, 60, 48, 48}); err != nil {
		return nil, err
	}

	// La hoja por defecto de NewFile queda vacía.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	idx, _ := f.GetSheetIndex(SheetOwners)
	f.SetActiveSheet(idx)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.log.Info("export.xlsx.ok", map[string]any{
		"owners":     len(owners),
		"pets":       len(pets),
		"visits":     len(visits),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]any, widths []float64) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheet, col, col, w)
	}
	return nil
}

func sterilizedLabel(b *bool) string {
	switch {
	case b == nil:
		return ""
	case *b:
		return "yes"
	default:
		return "no"
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
