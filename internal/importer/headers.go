package importer

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Field 导入列对应的规范字段
type Field string

const (
	FieldHistoryNumber Field = "hist"
	FieldFullName      Field = "fio"
	FieldBirthDate     Field = "dob"
	FieldAddress       Field = "address"
	FieldPhone         Field = "phone"
	FieldOccupation    Field = "occ"
	FieldArrivalDate   Field = "arr_date"
	FieldArrivalTime   Field = "arr_time"
	FieldDischargeDate Field = "disc_date"
	FieldDischargeTime Field = "disc_time"
	FieldWard          Field = "ward"
	FieldDoctor        Field = "doctor"
	FieldCaregiver     Field = "caregiver"

	// recognised so that optional extra columns do not look unknown; never persisted
	FieldDiagnosis       Field = "diagnosis"
	FieldReferrer        Field = "referrer"
	FieldRejectionReason Field = "reject"
)

// Fields lists every canonical field in column order.
var Fields = []Field{
	FieldHistoryNumber, FieldFullName, FieldBirthDate, FieldAddress, FieldPhone,
	FieldOccupation, FieldArrivalDate, FieldArrivalTime, FieldDischargeDate,
	FieldDischargeTime, FieldWard, FieldDoctor, FieldCaregiver,
	FieldDiagnosis, FieldReferrer, FieldRejectionReason,
}

// RequiredFields must all be matched before any row is read.
var RequiredFields = []Field{FieldHistoryNumber, FieldBirthDate, FieldFullName}

// Synonyms maps a canonical field to the header spellings that identify it.
// Spellings may be given in any form; they are normalized before matching.
type Synonyms map[Field][]string

// DefaultSynonyms returns a fresh copy of the built-in table covering Uzbek
// (Cyrillic and Latin), Russian and English headers.
func DefaultSynonyms() Synonyms {
	return Synonyms{
		FieldHistoryNumber: {"Тартиб Раками", "Ист номер", "hist_number", "History No.", "Номер", "Istoriya raqami", "История болезни"},
		FieldFullName:      {"Бемор Ф.И.О", "ФИО", "Ф.И пациента", "full_name", "FIO", "ФИО пасиента", "Ф.И.О пациента", "Bemor F.I.O", "Patient Full Name"},
		FieldBirthDate:     {"Тугилган Сана", "Дата рождения", "birth date", "Date of Birth", "Tug‘ilgan sana"},
		FieldAddress: {
			"Доимий яшаш жойи ёки кариндош якинларининг манзили телефон",
			"Адрес", "Address", "Адрес проживания", "Yashash manzili", "Яшаш жойи",
		},
		FieldPhone:         {"Телефон раками", "Тел. номер", "Phone", "Телефон", "Telefon"},
		FieldOccupation:    {"Иш жойи", "Касби", "Occupation", "Profession", "Профессия", "Kasbi"},
		FieldArrivalDate:   {"Келган сана", "Дата поступления", "Arrival Date", "Kelgan sana"},
		FieldArrivalTime:   {"Келган вакти", "Время вступления", "Arrival Time", "Время поступления", "Kelgan vaqti"},
		FieldDischargeDate: {"Чикарилган сана", "Дата выписки", "Discharge Date", "Chiqarilgan sana"},
		FieldDischargeTime: {"Чикарилган вакт", "Время выписки", "Discharge Time", "Chiqarilgan vaqt"},
		FieldWard:          {"Палата", "Ward", "Palata"},
		FieldDoctor:        {"Шифокор", "Врач", "Doctor", "Shifokor"},
		FieldCaregiver:     {"Каровчи", "Сиделка", "Caregiver", "Qarovchi", "Ухажёр"},
		FieldDiagnosis:     {"Кабулхона ташхиси"},
		FieldReferrer:      {"Кайси муассаса йуллаган ёки ким олиб келган"},
		FieldRejectionReason: {"раdetишнингсабабиташхис", "Радэтишнинг сабаби ташхис"},
	}
}

// Merge appends extra spellings to s, returning s.
func (s Synonyms) Merge(extra Synonyms) Synonyms {
	for field, spellings := range extra {
		s[field] = append(s[field], spellings...)
	}
	return s
}

// Normalize folds a header cell to its matching key: trimmed, lower-cased,
// composed, with everything but letters and digits removed, in any script.
func Normalize(text string) string {
	s := norm.NFC.String(strings.ToLower(strings.TrimSpace(text)))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MatchColumn finds the header that identifies a field: an exact match over
// all headers wins, otherwise the first header starting with a candidate.
func MatchColumn(normalizedHeaders []string, candidates []string) (int, bool) {
	keys := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if k := Normalize(c); k != "" {
			keys = append(keys, k)
		}
	}
	for i, h := range normalizedHeaders {
		for _, k := range keys {
			if h == k {
				return i, true
			}
		}
	}
	for i, h := range normalizedHeaders {
		for _, k := range keys {
			if strings.HasPrefix(h, k) {
				return i, true
			}
		}
	}
	return -1, false
}

// ColumnMap holds the matched column index of each recognised field.
type ColumnMap map[Field]int

// Index returns the column of f, or -1 when the sheet has none.
func (m ColumnMap) Index(f Field) int {
	if i, ok := m[f]; ok {
		return i
	}
	return -1
}

// Missing returns the required fields absent from m, in RequiredFields order.
func (m ColumnMap) Missing() []Field {
	var missing []Field
	for _, f := range RequiredFields {
		if _, ok := m[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

// MatchColumns maps every field of table onto the header row.
func MatchColumns(headers []string, table Synonyms) ColumnMap {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = Normalize(h)
	}
	out := ColumnMap{}
	for _, f := range Fields {
		if i, ok := MatchColumn(normalized, table[f]); ok {
			out[f] = i
		}
	}
	return out
}

const (
	headerScanRows     = 10
	headerMinNonBlanks = 6
)

// DetectHeaderRow returns the index of the first of the leading rows with at
// least six filled cells, or 0 when none qualifies.
func DetectHeaderRow(rows [][]string) int {
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		filled := 0
		for _, v := range rows[i] {
			if v != "" {
				filled++
			}
		}
		if filled >= headerMinNonBlanks {
			return i
		}
	}
	return 0
}
