package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"ward-census/internal/datetime"
	"ward-census/internal/domain"
	"ward-census/internal/events"
	"ward-census/internal/repository"
)

// Invalidator drops derived data after the record store changes.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

type nopInvalidator struct{}

func (nopInvalidator) Invalidate(context.Context) {}

// PatientService 患者登记、编辑、查询、清空
type PatientService struct {
	store     repository.Store
	cache     Invalidator
	publisher events.Publisher
	now       func() time.Time
	logger    *zap.Logger
}

func NewPatientService(st repository.Store, cache Invalidator, publisher events.Publisher, logger *zap.Logger) *PatientService {
	if cache == nil {
		cache = nopInvalidator{}
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &PatientService{store: st, cache: cache, publisher: publisher, now: time.Now, logger: logger}
}

// PatientInput 登记/编辑表单
type PatientInput struct {
	HistoryNumber string `json:"hist_number"`
	LastName      string `json:"last_name"`
	FirstName     string `json:"first_name"`
	Patronymic    string `json:"patronymic"`
	BirthDate     string `json:"birth_date"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	Occupation    string `json:"occupation"`
	ArrivalDate   string `json:"arrival_date"`
	ArrivalTime   string `json:"arrival_time"`
	WardID        string `json:"ward_id"`
	DoctorID      string `json:"doctor_id"`
	Discharge     string `json:"discharge_datetime"`

	CaregiverExists        bool   `json:"caregiver_exists"`
	CaregiverFullName      string `json:"caregiver_fullname"`
	CaregiverWardID        string `json:"caregiver_ward_id"`
	CaregiverArrivalDate   string `json:"caregiver_arrival_date"`
	CaregiverDepartureDate string `json:"caregiver_departure_date"`
}

// Validate checks the mandatory fields in form order and reports the first
// blank one.
func (in *PatientInput) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"hist_number", in.HistoryNumber},
		{"last_name", in.LastName},
		{"first_name", in.FirstName},
		{"patronymic", in.Patronymic},
		{"birth_date", in.BirthDate},
		{"phone", in.Phone},
		{"address", in.Address},
		{"occupation", in.Occupation},
		{"arrival_date", in.ArrivalDate},
		{"arrival_time", in.ArrivalTime},
		{"ward_id", in.WardID},
		{"doctor_id", in.DoctorID},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Field: f.name}
		}
	}
	if d := strings.TrimSpace(in.Discharge); d != "" {
		if _, ok := datetime.ParseInstant(d); !ok {
			return &ValidationError{Field: "discharge_datetime", Reason: "expected dd.mm.yyyy or dd.mm.yyyy HH:MM"}
		}
	}
	return nil
}

// apply copies the form onto r. Dates are normalized when they parse and
// kept as typed otherwise; caregiver fields are dropped unless the flag is set.
func (in *PatientInput) apply(r *domain.AdmissionRecord, ref time.Time) {
	r.HistoryNumber = strings.TrimSpace(in.HistoryNumber)
	r.LastName = strings.TrimSpace(in.LastName)
	r.FirstName = strings.TrimSpace(in.FirstName)
	r.Patronymic = strings.TrimSpace(in.Patronymic)
	r.BirthDate = datetime.NormalizeDate(in.BirthDate, ref)
	r.Phone = strings.TrimSpace(in.Phone)
	r.Address = strings.TrimSpace(in.Address)
	r.Occupation = strings.TrimSpace(in.Occupation)
	r.ArrivalDate = datetime.NormalizeDate(in.ArrivalDate, ref)
	r.ArrivalTime = datetime.NormalizeTime(in.ArrivalTime)
	r.WardID = domain.OptionalString(in.WardID)
	r.DoctorID = domain.OptionalString(in.DoctorID)
	r.Discharge = domain.OptionalString(in.Discharge)

	r.Caregiver = nil
	if in.CaregiverExists {
		r.Caregiver = &domain.Caregiver{
			FullName:      strings.TrimSpace(in.CaregiverFullName),
			WardID:        domain.OptionalString(in.CaregiverWardID),
			ArrivalDate:   normalizeOptionalDate(in.CaregiverArrivalDate, ref),
			DepartureDate: normalizeOptionalDate(in.CaregiverDepartureDate, ref),
		}
	}
}

func normalizeOptionalDate(text string, ref time.Time) *string {
	return domain.OptionalString(datetime.NormalizeDate(text, ref))
}

// PatientItem 患者列表项
type PatientItem struct {
	RecordID      string `json:"record_id"`
	HistoryNumber string `json:"hist_number"`
	LastName      string `json:"last_name"`
	FirstName     string `json:"first_name"`
	Patronymic    string `json:"patronymic"`
	FullName      string `json:"full_name"`
	BirthDate     string `json:"birth_date"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	Occupation    string `json:"occupation"`
	ArrivalDate   string `json:"arrival_date"`
	ArrivalTime   string `json:"arrival_time"`
	WardID        string `json:"ward_id,omitempty"`
	WardName      string `json:"ward_name"`
	DoctorID      string `json:"doctor_id,omitempty"`
	DoctorName    string `json:"doctor_name"`
	Discharge     string `json:"discharge_datetime,omitempty"`

	CaregiverExists        bool   `json:"caregiver_exists"`
	CaregiverFullName      string `json:"caregiver_fullname,omitempty"`
	CaregiverWardID        string `json:"caregiver_ward_id,omitempty"`
	CaregiverArrivalDate   string `json:"caregiver_arrival_date,omitempty"`
	CaregiverDepartureDate string `json:"caregiver_departure_date,omitempty"`
}

// Names resolves ward and doctor ids to display names.
type Names struct {
	Wards   map[string]string
	Doctors map[string]string
}

// LoadNames reads the current ward and doctor lists.
func LoadNames(ctx context.Context, st repository.Store) (*Names, error) {
	wards, err := st.ListWards(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list wards: %w", err)
	}
	doctors, err := st.ListDoctors(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	n := &Names{Wards: make(map[string]string, len(wards)), Doctors: make(map[string]string, len(doctors))}
	for _, w := range wards {
		n.Wards[w.WardID] = w.Name
	}
	for _, d := range doctors {
		n.Doctors[d.DoctorID] = d.FullName
	}
	return n, nil
}

// Item converts a stored record for display.
func (n *Names) Item(r *domain.AdmissionRecord) PatientItem {
	item := PatientItem{
		RecordID:      r.RecordID,
		HistoryNumber: r.HistoryNumber,
		LastName:      r.LastName,
		FirstName:     r.FirstName,
		Patronymic:    r.Patronymic,
		FullName:      r.FullName(),
		BirthDate:     r.BirthDate,
		Phone:         r.Phone,
		Address:       r.Address,
		Occupation:    r.Occupation,
		ArrivalDate:   r.ArrivalDate,
		ArrivalTime:   r.ArrivalTime,
		WardID:        domain.StringValue(r.WardID),
		WardName:      n.Wards[domain.StringValue(r.WardID)],
		DoctorID:      domain.StringValue(r.DoctorID),
		DoctorName:    n.Doctors[domain.StringValue(r.DoctorID)],
		Discharge:     domain.StringValue(r.Discharge),
	}
	if c := r.Caregiver; c != nil {
		item.CaregiverExists = true
		item.CaregiverFullName = c.FullName
		item.CaregiverWardID = domain.StringValue(c.WardID)
		item.CaregiverArrivalDate = domain.StringValue(c.ArrivalDate)
		item.CaregiverDepartureDate = domain.StringValue(c.DepartureDate)
	}
	return item
}

// List returns records newest first, each with ward and doctor names.
func (s *PatientService) List(ctx context.Context, filter repository.AdmissionFilter) ([]PatientItem, error) {
	records, err := s.store.ListAdmissions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list admissions: %w", err)
	}
	names, err := LoadNames(ctx, s.store)
	if err != nil {
		return nil, err
	}
	items := make([]PatientItem, 0, len(records))
	for _, r := range records {
		items = append(items, names.Item(r))
	}
	return items, nil
}

// Get returns one record.
func (s *PatientService) Get(ctx context.Context, recordID string) (*PatientItem, error) {
	r, err := s.store.GetAdmission(ctx, recordID)
	if err != nil {
		return nil, err
	}
	names, err := LoadNames(ctx, s.store)
	if err != nil {
		return nil, err
	}
	item := names.Item(r)
	return &item, nil
}

// checkReferences rejects ward and doctor ids that are not on file.
func (s *PatientService) checkReferences(ctx context.Context, r *domain.AdmissionRecord) error {
	names, err := LoadNames(ctx, s.store)
	if err != nil {
		return err
	}
	if id := domain.StringValue(r.WardID); id != "" {
		if _, ok := names.Wards[id]; !ok {
			return &ValidationError{Field: "ward_id", Reason: "unknown ward"}
		}
	}
	if id := domain.StringValue(r.DoctorID); id != "" {
		if _, ok := names.Doctors[id]; !ok {
			return &ValidationError{Field: "doctor_id", Reason: "unknown doctor"}
		}
	}
	if r.Caregiver != nil {
		if id := domain.StringValue(r.Caregiver.WardID); id != "" {
			if _, ok := names.Wards[id]; !ok {
				return &ValidationError{Field: "caregiver_ward_id", Reason: "unknown ward"}
			}
		}
	}
	return nil
}

// Register validates the form and stores a new record.
func (s *PatientService) Register(ctx context.Context, in *PatientInput) (*domain.AdmissionRecord, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	r := &domain.AdmissionRecord{}
	in.apply(r, s.now())
	if err := s.checkReferences(ctx, r); err != nil {
		return nil, err
	}
	if err := s.store.CreateAdmissions(ctx, []*domain.AdmissionRecord{r}); err != nil {
		return nil, fmt.Errorf("failed to create admission: %w", err)
	}
	s.cache.Invalidate(ctx)
	s.logger.Info("Patient registered", zap.String("record_id", r.RecordID), zap.String("hist_number", r.HistoryNumber))
	return r, nil
}

// Update replaces every editable field of an existing record.
func (s *PatientService) Update(ctx context.Context, recordID string, in *PatientInput) (*domain.AdmissionRecord, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	r, err := s.store.GetAdmission(ctx, recordID)
	if err != nil {
		return nil, err
	}
	in.apply(r, s.now())
	if err := s.checkReferences(ctx, r); err != nil {
		return nil, err
	}
	if err := s.store.UpdateAdmission(ctx, r); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	s.logger.Info("Patient updated", zap.String("record_id", r.RecordID))
	return r, nil
}

// ClearAll deletes every record.
func (s *PatientService) ClearAll(ctx context.Context) (int, error) {
	n, err := s.store.DeleteAllAdmissions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to clear admissions: %w", err)
	}
	s.cache.Invalidate(ctx)
	s.logger.Info("All patients deleted", zap.Int("count", n))
	if err := s.publisher.Publish(ctx, events.Event{Type: events.TypeAdmissionsCleared, Count: n}); err != nil {
		s.logger.Warn("Failed to publish clear event", zap.Error(err))
	}
	return n, nil
}
