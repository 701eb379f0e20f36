package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentVisits(t *testing.T) {
	lines := []string{
		"nota prima della prima visita",
		"05/03/24 Visita di controllo",
		"  Apparente buona salute",
		"",
		"Emogramma: nella norma",
		"HCT 45%",
		"R/ Metacam 1 cp",
		"continua terapia",
		"12/04/2024",
		"Sta bene",
	}

	visits := SegmentVisits(lines)
	require.Len(t, visits, 2)

	v := visits[0]
	assert.Equal(t, "2024-03-05", v.VisitedAt)
	assert.Equal(t, "Visita di controllo\nApparente buona salute\ncontinua terapia", v.Description)
	assert.Equal(t, "Emogramma: nella norma\nHCT 45%", v.ExamsText)
	assert.Equal(t, "R/ Metacam 1 cp", v.PrescriptionsText)
	assert.Equal(t, strings.Join(lines[1:8], "\n"), v.RawText)

	v = visits[1]
	assert.Equal(t, "2024-04-12", v.VisitedAt)
	assert.Equal(t, "Sta bene", v.Description)
	assert.Empty(t, v.ExamsText)
	assert.Empty(t, v.PrescriptionsText)
	assert.Equal(t, "12/04/2024\nSta bene", v.RawText)
}

func TestSegmentVisits_DateLineTailIsClassified(t *testing.T) {
	visits := SegmentVisits([]string{
		"12/04/24 Emogramma: HCT 30",
		"PLT 250",
		"05/05/24 Metacam 1 cp",
		"migliorato",
		"06/06/24 - 07/06/24 ricontrollo",
	})
	require.Len(t, visits, 3)

	assert.Empty(t, visits[0].Description)
	assert.Equal(t, "Emogramma: HCT 30\nPLT 250", visits[0].ExamsText)
	assert.Equal(t, "12/04/24 Emogramma: HCT 30\nPLT 250", visits[0].RawText)

	assert.Equal(t, "Metacam 1 cp", visits[1].PrescriptionsText)
	assert.Equal(t, "migliorato", visits[1].Description)

	assert.Equal(t, "2024-06-06", visits[2].VisitedAt)
	assert.Equal(t, "07/06/24 ricontrollo", visits[2].Description)
}

func TestTailClass(t *testing.T) {
	assert.Equal(t, lineExam, tailClass("Eco addome"))
	assert.Equal(t, linePrescription, tailClass("R/ Metacam"))
	assert.Equal(t, lineText, tailClass("07/06/24 ricontrollo"))
}

func TestSegmentVisits_NoDateLines(t *testing.T) {
	visits := SegmentVisits([]string{"testo libero", "Emogramma"})
	assert.NotNil(t, visits)
	assert.Empty(t, visits)
}

func TestSegmentVisits_EmptyDescription(t *testing.T) {
	visits := SegmentVisits([]string{"01/01/2024", "", "Eco addome: negativa"})
	require.Len(t, visits, 1)
	assert.Equal(t, "", visits[0].Description)
	assert.Equal(t, "Eco addome: negativa", visits[0].ExamsText)
	assert.Equal(t, "01/01/2024\n\nEco addome: negativa", visits[0].RawText)
}

func TestVisitTransitions(t *testing.T) {
	cases := []struct {
		from  visitState
		class lineClass
		next  visitState
		act   visitAction
	}{
		{stateNoCurrentVisit, lineText, stateNoCurrentVisit, actionSkip},
		{stateNoCurrentVisit, lineDate, stateInDescription, actionOpen},
		{stateInDescription, lineExam, stateInExam, actionExam},
		{stateInExam, lineText, stateInExam, actionExam},
		{stateInExam, linePrescription, stateInDescription, actionPrescription},
		{stateInExam, lineDate, stateInDescription, actionOpen},
		{stateInExam, lineBlank, stateInExam, actionRaw},
	}
	for _, tc := range cases {
		tr := visitTransitions[tc.from][tc.class]
		assert.Equal(t, tc.next, tr.next, "%s/%d", tc.from, tc.class)
		assert.Equal(t, tc.act, tr.action, "%s/%d", tc.from, tc.class)
	}
}

func TestClassifyLine(t *testing.T) {
	assert.Equal(t, lineBlank, classifyLine(""))
	assert.Equal(t, lineDate, classifyLine("3.4.2023 visita"))
	assert.Equal(t, linePrescription, classifyLine("Consiglio dieta renale"))
	assert.Equal(t, lineExam, classifyLine("Profilo base felino"))
	assert.Equal(t, lineText, classifyLine("Il gatto mangia poco"))
}
