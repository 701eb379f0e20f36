package parser

import "strings"

// Máquina de estados de las visitas. Cada línea se clasifica y la tabla decide el
// próximo estado y a qué buffer va la línea.

type visitState int

const (
	stateNoCurrentVisit visitState = iota
	stateInDescription
	stateInExam
)

func (s visitState) String() string {
	switch s {
	case stateInDescription:
		return "InDescription"
	case stateInExam:
		return "InExam"
	default:
		return "NoCurrentVisit"
	}
}

type lineClass int

const (
	lineBlank lineClass = iota
	lineDate
	linePrescription
	lineExam
	lineText
	numLineClasses
)

type visitAction int

const (
	actionSkip visitAction = iota
	actionRaw
	actionOpen
	actionPrescription
	actionExam
	actionDescription
)

type transition struct {
	next   visitState
	action visitAction
}

var visitTransitions = [...][numLineClasses]transition{
	stateNoCurrentVisit: {
		lineBlank:        {stateNoCurrentVisit, actionSkip},
		lineDate:         {stateInDescription, actionOpen},
		linePrescription: {stateNoCurrentVisit, actionSkip},
		lineExam:         {stateNoCurrentVisit, actionSkip},
		lineText:         {stateNoCurrentVisit, actionSkip},
	},
	stateInDescription: {
		lineBlank:        {stateInDescription, actionRaw},
		lineDate:         {stateInDescription, actionOpen},
		linePrescription: {stateInDescription, actionPrescription},
		lineExam:         {stateInExam, actionExam},
		lineText:         {stateInDescription, actionDescription},
	},
	stateInExam: {
		lineBlank:        {stateInExam, actionRaw},
		lineDate:         {stateInDescription, actionOpen},
		linePrescription: {stateInDescription, actionPrescription},
		lineExam:         {stateInExam, actionExam},
		lineText:         {stateInExam, actionExam},
	},
}

// classifyLine: la fecha se evalúa primero, después receta y examen.
func classifyLine(line string) lineClass {
	switch {
	case line == "":
		return lineBlank
	case dateLine.Match(line):
		return lineDate
	case prescriptionTrigger.Match(line):
		return linePrescription
	case examTrigger.Match(line):
		return lineExam
	default:
		return lineText
	}
}

type visitAccumulator struct {
	date   string
	desc   []string
	exams  []string
	prescr []string
	raw    []string
}

func (a *visitAccumulator) visit() Visit {
	v := Visit{
		VisitedAt:   a.date,
		Description: strings.TrimSpace(strings.Join(a.desc, "\n")),
		RawText:     strings.Join(a.raw, "\n"),
	}
	if len(a.exams) > 0 {
		v.ExamsText = strings.TrimSpace(strings.Join(a.exams, "\n"))
	}
	if len(a.prescr) > 0 {
		v.PrescriptionsText = strings.TrimSpace(strings.Join(a.prescr, "\n"))
	}
	return v
}

// SegmentVisits parte las líneas de un bloque en visitas fechadas, en orden de
// aparición. Lo anterior a la primera fecha se ignora. El texto que sigue a la
// fecha en la línea de apertura se clasifica como una línea más.
func SegmentVisits(lines []string) []Visit {
	visits := []Visit{}
	state := stateNoCurrentVisit
	var cur *visitAccumulator

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		tr := visitTransitions[state][classifyLine(line)]
		state = tr.next

		switch tr.action {
		case actionSkip:
			continue
		case actionOpen:
			if cur != nil {
				visits = append(visits, cur.visit())
			}
			cur = &visitAccumulator{raw: []string{raw}}
			cur.date, _ = NormalizeDate(line)
			if tail := dateLineTail(line); tail != "" {
				tt := visitTransitions[state][tailClass(tail)]
				cur.add(tt.action, tail)
				state = tt.next
			}
			continue
		}
		cur.raw = append(cur.raw, raw)
		cur.add(tr.action, line)
	}
	if cur != nil {
		visits = append(visits, cur.visit())
	}
	return visits
}

func (a *visitAccumulator) add(act visitAction, line string) {
	switch act {
	case actionPrescription:
		a.prescr = append(a.prescr, line)
	case actionExam:
		a.exams = append(a.exams, line)
	case actionDescription:
		a.desc = append(a.desc, line)
	}
}

// tailClass: una segunda fecha en la cola no abre otra visita.
func tailClass(tail string) lineClass {
	if c := classifyLine(tail); c != lineDate {
		return c
	}
	return lineText
}

// dateLineTail devuelve el texto que sigue a la fecha en una línea de apertura.
func dateLineTail(line string) string {
	t, ok := dateLine.Find(line)
	if !ok {
		return ""
	}
	return strings.TrimSpace(strings.TrimLeft(line[t.End:], " \t-:.,"))
}
