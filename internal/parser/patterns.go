package parser

import "regexp"

// Biblioteca de patrones. Todo es inmutable y seguro para uso concurrente.
// Go usa RE2, así que cada reconocedor corre en tiempo lineal sobre la entrada
// aunque el texto venga de una fuente no confiable.

// Kind clasifica un token reconocido en el texto.
type Kind string

const (
	KindDate                Kind = "date"
	KindPhone               Kind = "phone"
	KindEmail               Kind = "email"
	KindTaxCode             Kind = "tax_code"
	KindSpeciesCode         Kind = "species_code"
	KindMicrochip           Kind = "microchip"
	KindSex                 Kind = "sex"
	KindColor               Kind = "color"
	KindSterilization       Kind = "sterilization"
	KindNameStop            Kind = "name_stop"
	KindStreet              Kind = "street"
	KindPersonName          Kind = "person_name"
	KindFieldLabel          Kind = "field_label"
	KindTransfer            Kind = "transfer"
	KindExamTrigger         Kind = "exam_trigger"
	KindPrescriptionTrigger Kind = "prescription_trigger"
)

// Recognizer asocia un Kind a una expresión regular compilada.
type Recognizer struct {
	Kind Kind
	re   *regexp.Regexp
}

func newRecognizer(k Kind, expr string) Recognizer {
	return Recognizer{Kind: k, re: regexp.MustCompile(expr)}
}

const (
	personWord = `[A-ZÀ-Ÿ][a-zà-ÿ'().-]+`
	taxCodeRE  = `[A-Z]{6}\d{2}[A-Z]\d{2}[A-Z]\d{3}[A-Z]`
	emailRE    = `[\w.+-]+@[\w.-]+\.[A-Za-z]{2,}`
	dateAnyRE  = `\b\d{1,2}[./-]\d{1,2}[./-]\d{2,4}\b`
)

var (
	// Identidad y contacto.
	taxCode   = newRecognizer(KindTaxCode, taxCodeRE)
	email     = newRecognizer(KindEmail, emailRE)
	phone     = newRecognizer(KindPhone, `\b(?:\+?39)?\s?3\d{8,10}\b`)
	microchip = newRecognizer(KindMicrochip, `\b\d{15}\b`)

	// Fechas: línea que abre visita, fecha suelta y fecha con grupos.
	dateLine  = newRecognizer(KindDate, `^\s*(\d{1,2})[./-](\d{1,2})[./-](\d{2,4})\b`)
	dateAny   = newRecognizer(KindDate, dateAnyRE)
	dateLoose = newRecognizer(KindDate, `\b(\d{1,2})[./-](\d{1,2})[./-](\d{2,4})\b`)

	// Encabezado de la mascota.
	speciesCode   = newRecognizer(KindSpeciesCode, `(?i)^\s*(GT|CT|CG|CN)\b`)
	sexMarker     = newRecognizer(KindSex, `(?i)\b(M|F)\b`)
	sterilization = newRecognizer(KindSterilization, `(?i)\b(STERILIZZAT[OA]|CASTRAT[OA]|INTERO)\b`)
	nameStop      = newRecognizer(KindNameStop, `(?i)\b(STERILIZZAT[OA]|CASTRAT[OA]|INTERO|certa|incerta)\b`)
	colorWord     = newRecognizer(KindColor, `(?i)\b(nero|bianco|grigio|tigrato|fulvo|tricolore|pezzato|marrone|focato|crema|blu|bruno|rosso|arancio|arancione)\b`)
	nameChunk     = regexp.MustCompile(`[A-Za-zÀ-ÿ'().-]+(?:\s+[A-Za-zÀ-ÿ'().-]+){0,3}`)

	// Personas, direcciones y cambio de titular.
	personName = newRecognizer(KindPersonName, personWord+`\s+`+personWord)
	upperName  = newRecognizer(KindPersonName, `\b[A-ZÀ-Ý]{2,}\s+[A-ZÀ-Ý]{2,}\b`)
	mixedCase  = regexp.MustCompile(`[A-ZÀ-Ý][a-zà-ÿ]`)
	// Rótulos de campo de la anagrafica: "Codice Fiscale", "Indirizzo Email"...
	fieldLabel = newRecognizer(KindFieldLabel, `(?i)\b(proprietari[oa]|titolare|cliente|codice|fiscale|e-?mail|mail|posta|telefono|tel|cellulare|cell|fisso|indirizzo|residenza|residente|recapito|nome|cognome)\b`)
	street     = newRecognizer(KindStreet, `(?i)\b(v\.?|via|viale|piazza|p\.?zza|p\.za|corso|c\.?so|largo|l\.?go|vicolo|vico|strada|s\.?da|piazzale|p\.?le)\b`)
	transfer   = newRecognizer(KindTransfer, `(?i)(da\s+(\d{2})/(\d{4}))?\s*(intestato a|cessione a|passaggio a|ceduto a)\s+(`+personWord+`\s+`+personWord+`)`)

	// Clasificación de líneas dentro de una visita.
	examTrigger = newRecognizer(KindExamTrigger, `(?i)(PROFILO|BASE\s+[A-Z]|EMOGRAMMA|BIOCHIMICO|PANNELLO|ESAME\s+(FECI|URINE)|ISTOLOG|CITOLOG|TEST\b|ECO(CARDIO|\s*ADDOME|GRAFIA)?|RX\b|RADIOGRAFIA|TC\b|TAC\b)`)
	prescriptionTrigger = newRecognizer(KindPrescriptionTrigger, `(?i)^(R/|Rev\b|Ricetta|Prescrizione|Faccio\b|Do\b|Aggiungo\b|Consiglio\b|Metacam|Meloxidyl|Clavaseptin|Kesium|Afilaria|Frontline|Advantix|Otopet|Otogent|Tranex|Arnica|Prevomax)`)
)

// Cortes de dirección: lo primero que aparezca de estos cierra el candidato.
var addressStops = []Recognizer{
	newRecognizer(KindPhone, `(?:\+?39)?\s?3\d{8,10}`),
	taxCode,
	email,
	newRecognizer(KindSpeciesCode, `(\bGT|\bCT|\bCG|\bCN)\s+`),
	dateAny,
}

// Reescrituras de abreviaturas al inicio de una dirección, en este orden.
var streetAbbrev = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(?i)^v\.`), "Via"},
	{regexp.MustCompile(`(?i)^c\.?\s?so`), "Corso"},
	{regexp.MustCompile(`(?i)^p\.?zza`), "Piazza"},
	{regexp.MustCompile(`(?i)^p\.?le`), "P.le"},
}

var (
	reHSpaceRun = regexp.MustCompile(`[ \t]{2,}`)
	reSpaceRun  = regexp.MustCompile(`\s{2,}`)
	reDigit     = regexp.MustCompile(`\d`)

	reDobDMY = regexp.MustCompile(`^(\d{1,2})[./-](\d{1,2})[./-](\d{2,4})$`)
	reDobMY  = regexp.MustCompile(`^(\d{1,2})[./-](\d{4})$`)
	reDobY   = regexp.MustCompile(`^\d{4}$`)
)
