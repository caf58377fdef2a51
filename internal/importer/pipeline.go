package importer

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"ward-census/internal/datetime"
	"ward-census/internal/domain"
)

// DefaultAffirmatives are the caregiver indicator values read as "yes".
var DefaultAffirmatives = []string{"да", "ha", "ҳа", "yes", "1", "true", "bor"}

// Options tunes a Pipeline. The zero value uses the built-in tables and the
// wall clock.
type Options struct {
	Synonyms     Synonyms
	Affirmatives []string
	// FallbackToFirst assigns the first stored ward/doctor when the sheet text
	// matches none, instead of leaving the reference unset.
	FallbackToFirst bool
	// Now supplies the year for day.month dates without one.
	Now func() time.Time
}

// MissingColumnsError lists the required fields the header row lacks.
type MissingColumnsError struct {
	Fields []Field
}

func (e *MissingColumnsError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = FieldLabel(f)
	}
	return "missing required columns: " + strings.Join(names, ", ")
}

// FieldLabel returns the header spelling shown to users for a field.
func FieldLabel(f Field) string {
	switch f {
	case FieldHistoryNumber:
		return "Тартиб Раками"
	case FieldBirthDate:
		return "Тугилган Сана"
	case FieldFullName:
		return "Бемор Ф.И.О"
	}
	return string(f)
}

// Unresolved is a ward or doctor cell that named nothing on file.
type Unresolved struct {
	Row   int    `json:"row"` // 1-based sheet row
	Field Field  `json:"field"`
	Text  string `json:"text"`
}

// Result 导入结果
type Result struct {
	Records    []*domain.AdmissionRecord
	HeaderRow  int // 1-based
	Imported   int
	Skipped    int
	Unresolved []Unresolved
}

// Pipeline turns a worksheet into admission records. It never writes; the
// caller commits Result.Records as one batch.
type Pipeline struct {
	opts         Options
	affirmatives map[string]bool
	logger       *zap.Logger
}

// NewPipeline fills unset options with defaults.
func NewPipeline(opts Options, logger *zap.Logger) *Pipeline {
	if opts.Synonyms == nil {
		opts.Synonyms = DefaultSynonyms()
	}
	if opts.Affirmatives == nil {
		opts.Affirmatives = DefaultAffirmatives
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	aff := make(map[string]bool, len(opts.Affirmatives))
	for _, a := range opts.Affirmatives {
		aff[Normalize(a)] = true
	}
	return &Pipeline{opts: opts, affirmatives: aff, logger: logger}
}

// Run maps the header row, then converts every following row. Rows lacking a
// history number, full name, date of birth, last name or first name are
// skipped silently.
func (p *Pipeline) Run(sheet *Sheet, wards []*domain.Ward, doctors []*domain.Doctor) (*Result, error) {
	if sheet == nil || len(sheet.Rows) == 0 {
		return nil, &MissingColumnsError{Fields: RequiredFields}
	}
	headerIdx := DetectHeaderRow(sheet.Rows)
	cols := MatchColumns(sheet.Rows[headerIdx], p.opts.Synonyms)
	if missing := cols.Missing(); len(missing) > 0 {
		return nil, &MissingColumnsError{Fields: missing}
	}

	wardByName := make(map[string]*domain.Ward, len(wards))
	for _, w := range wards {
		name := strings.TrimSpace(w.Name)
		if _, dup := wardByName[name]; !dup {
			wardByName[name] = w
		}
	}
	doctorByName := make(map[string]*domain.Doctor, len(doctors))
	for _, d := range doctors {
		name := strings.TrimSpace(d.FullName)
		if _, dup := doctorByName[name]; !dup {
			doctorByName[name] = d
		}
	}

	ref := p.opts.Now()
	res := &Result{HeaderRow: headerIdx + 1}
	for i, row := range sheet.Rows[headerIdx+1:] {
		rowNum := headerIdx + i + 2
		if blankRow(row) {
			continue
		}
		rec, unresolved := p.convert(row, cols, ref, rowNum, wards, doctors, wardByName, doctorByName)
		if rec == nil {
			res.Skipped++
			continue
		}
		res.Records = append(res.Records, rec)
		res.Unresolved = append(res.Unresolved, unresolved...)
	}
	res.Imported = len(res.Records)

	p.logger.Info("Sheet imported",
		zap.String("sheet", sheet.Name),
		zap.Int("header_row", res.HeaderRow),
		zap.Int("imported", res.Imported),
		zap.Int("skipped", res.Skipped),
	)
	for _, u := range res.Unresolved {
		p.logger.Warn("Unresolved reference",
			zap.Int("row", u.Row),
			zap.String("field", string(u.Field)),
			zap.String("text", u.Text),
		)
	}
	return res, nil
}

func (p *Pipeline) convert(
	row []string,
	cols ColumnMap,
	ref time.Time,
	rowNum int,
	wards []*domain.Ward,
	doctors []*domain.Doctor,
	wardByName map[string]*domain.Ward,
	doctorByName map[string]*domain.Doctor,
) (*domain.AdmissionRecord, []Unresolved) {
	get := func(f Field) string { return cell(row, cols.Index(f)) }

	hist, fio, dob := get(FieldHistoryNumber), get(FieldFullName), get(FieldBirthDate)
	if hist == "" || fio == "" || dob == "" {
		return nil, nil
	}
	last, first, patronymic := SplitName(fio)
	if last == "" || first == "" {
		return nil, nil
	}

	rec := &domain.AdmissionRecord{
		HistoryNumber: hist,
		LastName:      last,
		FirstName:     first,
		Patronymic:    patronymic,
		BirthDate:     datetime.NormalizeDate(dob, ref),
		Phone:         get(FieldPhone),
		Address:       get(FieldAddress),
		Occupation:    get(FieldOccupation),
		ArrivalDate:   datetime.NormalizeDate(get(FieldArrivalDate), ref),
		ArrivalTime:   datetime.NormalizeTime(get(FieldArrivalTime)),
	}

	discDate := datetime.NormalizeDate(get(FieldDischargeDate), ref)
	discTime := datetime.NormalizeTime(get(FieldDischargeTime))
	if discDate != "" || discTime != "" {
		rec.Discharge = domain.OptionalString(discDate + " " + discTime)
	}

	var unresolved []Unresolved
	if text := get(FieldWard); text != "" || p.opts.FallbackToFirst {
		if w, ok := wardByName[text]; ok {
			rec.WardID = &w.WardID
		} else {
			if p.opts.FallbackToFirst && len(wards) > 0 {
				rec.WardID = &wards[0].WardID
			}
			if text != "" {
				unresolved = append(unresolved, Unresolved{Row: rowNum, Field: FieldWard, Text: text})
			}
		}
	}
	if text := get(FieldDoctor); text != "" || p.opts.FallbackToFirst {
		if d, ok := doctorByName[text]; ok {
			rec.DoctorID = &d.DoctorID
		} else {
			if p.opts.FallbackToFirst && len(doctors) > 0 {
				rec.DoctorID = &doctors[0].DoctorID
			}
			if text != "" {
				unresolved = append(unresolved, Unresolved{Row: rowNum, Field: FieldDoctor, Text: text})
			}
		}
	}

	if p.affirmatives[Normalize(get(FieldCaregiver))] {
		rec.Caregiver = &domain.Caregiver{}
	}
	return rec, unresolved
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// String summarises a result for CLI output.
func (r *Result) String() string {
	return fmt.Sprintf("Imported %d patients (%d rows skipped, %d unresolved references)",
		r.Imported, r.Skipped, len(r.Unresolved))
}
