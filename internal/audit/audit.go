// Package audit finds stored admission records that lack mandatory fields.
package audit

import (
	"strings"

	"ward-census/internal/domain"
)

// Field names a mandatory record attribute.
type Field string

const (
	FieldHistoryNumber Field = "hist_number"
	FieldLastName      Field = "last_name"
	FieldFirstName     Field = "first_name"
	FieldPatronymic    Field = "patronymic"
	FieldBirthDate     Field = "birth_date"
	FieldPhone         Field = "phone"
	FieldAddress       Field = "address"
	FieldOccupation    Field = "occupation"
	FieldArrivalDate   Field = "arrival_date"
	FieldArrivalTime   Field = "arrival_time"
	FieldWard          Field = "ward"
	FieldDoctor        Field = "doctor"
)

var labels = map[Field]string{
	FieldHistoryNumber: "History No.",
	FieldLastName:      "Last Name",
	FieldFirstName:     "First Name",
	FieldPatronymic:    "Patronymic",
	FieldBirthDate:     "Date of Birth",
	FieldPhone:         "Phone",
	FieldAddress:       "Address",
	FieldOccupation:    "Occupation",
	FieldArrivalDate:   "Arrival Date",
	FieldArrivalTime:   "Arrival Time",
	FieldWard:          "Ward",
	FieldDoctor:        "Doctor",
}

// Label returns the display name of f.
func (f Field) Label() string {
	if l, ok := labels[f]; ok {
		return l
	}
	return string(f)
}

// Finding 缺失必填字段的记录
type Finding struct {
	Record  *domain.AdmissionRecord
	Missing []Field
}

// Missing lists the mandatory fields of r that are blank or unset, in a
// fixed order.
func Missing(r *domain.AdmissionRecord) []Field {
	var m []Field
	text := []struct {
		field Field
		value string
	}{
		{FieldHistoryNumber, r.HistoryNumber},
		{FieldLastName, r.LastName},
		{FieldFirstName, r.FirstName},
		{FieldPatronymic, r.Patronymic},
		{FieldBirthDate, r.BirthDate},
		{FieldPhone, r.Phone},
		{FieldAddress, r.Address},
		{FieldOccupation, r.Occupation},
		{FieldArrivalDate, r.ArrivalDate},
		{FieldArrivalTime, r.ArrivalTime},
	}
	for _, t := range text {
		if strings.TrimSpace(t.value) == "" {
			m = append(m, t.field)
		}
	}
	if r.WardID == nil || *r.WardID == "" {
		m = append(m, FieldWard)
	}
	if r.DoctorID == nil || *r.DoctorID == "" {
		m = append(m, FieldDoctor)
	}
	return m
}

// Valid reports whether r has every mandatory field.
func Valid(r *domain.AdmissionRecord) bool {
	return len(Missing(r)) == 0
}

// FindInvalid returns one finding per incomplete record, in input order.
func FindInvalid(records []*domain.AdmissionRecord) []Finding {
	var out []Finding
	for _, r := range records {
		if missing := Missing(r); len(missing) > 0 {
			out = append(out, Finding{Record: r, Missing: missing})
		}
	}
	return out
}
