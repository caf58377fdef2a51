package domain

import (
	"strings"
	"time"
)

// AdmissionRecord 一次住院记录（对应 admissions 表）
// Mandatory text fields use "" for blank; optional references and values are pointers,
// coerced once when a record enters the system (import, form, store scan).
type AdmissionRecord struct {
	RecordID string `db:"record_id"` // UUID, PRIMARY KEY

	// identity
	HistoryNumber string `db:"hist_number"`
	LastName      string `db:"last_name"`
	FirstName     string `db:"first_name"`
	Patronymic    string `db:"patronymic"`
	BirthDate     string `db:"birth_date"` // dd.mm.yyyy, text (kept verbatim when unparsable)
	Phone         string `db:"phone"`
	Address       string `db:"address"`
	Occupation    string `db:"occupation"`

	// stay
	ArrivalDate string  `db:"arrival_date"` // dd.mm.yyyy
	ArrivalTime string  `db:"arrival_time"` // HH:MM
	WardID      *string `db:"ward_id"`
	DoctorID    *string `db:"doctor_id"`
	Discharge   *string `db:"discharge_datetime"` // "dd.mm.yyyy HH:MM" or "dd.mm.yyyy"; nil = still admitted

	// nil when the patient has no caregiver; stored caregiver columns are ignored then
	Caregiver *Caregiver

	CreatedAt time.Time `db:"created_at"`
}

// Caregiver 陪护人员（与患者同住，可占用其他病房）
type Caregiver struct {
	FullName      string  `db:"caregiver_fullname"` // may be blank
	WardID        *string `db:"caregiver_ward_id"`  // nil = patient's ward
	ArrivalDate   *string `db:"caregiver_arrival_date"`
	DepartureDate *string `db:"caregiver_departure_date"`
}

// FullName returns "last first patronymic" joined by single spaces.
func (r *AdmissionRecord) FullName() string {
	return strings.Join(strings.Fields(r.LastName+" "+r.FirstName+" "+r.Patronymic), " ")
}

// HasCaregiver reports the caregiver presence flag.
func (r *AdmissionRecord) HasCaregiver() bool {
	return r.Caregiver != nil
}

// OptionalString turns blank text into nil, trimmed text otherwise.
func OptionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// StringValue dereferences an optional string ("" when nil).
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
