package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"ward-census/internal/domain"
)

// MemoryStore keeps everything in process memory, for runs without a
// database and for tests. The mutex only protects the maps; concurrent
// writers to one record still race with last-writer-wins.
type MemoryStore struct {
	mu sync.RWMutex

	admissions map[string]*domain.AdmissionRecord
	order      []string // record ids in insertion order
	wards      map[string]*domain.Ward
	doctors    map[string]*domain.Doctor

	now func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		admissions: map[string]*domain.AdmissionRecord{},
		wards:      map[string]*domain.Ward{},
		doctors:    map[string]*domain.Doctor{},
		now:        time.Now,
	}
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

// ---- admissions ----

func (s *MemoryStore) ListAdmissions(_ context.Context, filter AdmissionFilter) ([]*domain.AdmissionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.AdmissionRecord, 0, len(s.order))
	for _, id := range s.order {
		r := s.admissions[id]
		if filter.matches(r) {
			out = append(out, cloneRecord(r))
		}
	}
	if filter.NewestFirst {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

func (s *MemoryStore) GetAdmission(_ context.Context, recordID string) (*domain.AdmissionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.admissions[recordID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRecord(r), nil
}

func (s *MemoryStore) CreateAdmissions(_ context.Context, records []*domain.AdmissionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for _, r := range records {
		r.RecordID = uuid.NewString()
		r.CreatedAt = now
		s.admissions[r.RecordID] = cloneRecord(r)
		s.order = append(s.order, r.RecordID)
	}
	return nil
}

func (s *MemoryStore) UpdateAdmission(_ context.Context, record *domain.AdmissionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.admissions[record.RecordID]
	if !ok {
		return ErrNotFound
	}
	updated := cloneRecord(record)
	updated.CreatedAt = old.CreatedAt
	s.admissions[record.RecordID] = updated
	return nil
}

func (s *MemoryStore) DeleteAdmissions(_ context.Context, recordIDs []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, id := range recordIDs {
		if _, ok := s.admissions[id]; ok {
			delete(s.admissions, id)
			n++
		}
	}
	s.compactOrder()
	return n, nil
}

func (s *MemoryStore) DeleteAllAdmissions(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.admissions)
	s.admissions = map[string]*domain.AdmissionRecord{}
	s.order = nil
	return n, nil
}

func (s *MemoryStore) compactOrder() {
	kept := s.order[:0]
	for _, id := range s.order {
		if _, ok := s.admissions[id]; ok {
			kept = append(kept, id)
		}
	}
	s.order = kept
}

// ---- wards ----

func (s *MemoryStore) ListWards(context.Context) ([]*domain.Ward, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Ward, 0, len(s.wards))
	for _, w := range s.wards {
		c := *w
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Block != b.Block {
			return a.Block < b.Block
		}
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		return a.Name < b.Name
	})
	return out, nil
}

func (s *MemoryStore) CreateWard(_ context.Context, ward *domain.Ward) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ward.WardID == "" {
		ward.WardID = uuid.NewString()
	}
	c := *ward
	s.wards[ward.WardID] = &c
	return nil
}

func (s *MemoryStore) UpdateWard(_ context.Context, ward *domain.Ward) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.wards[ward.WardID]; !ok {
		return ErrNotFound
	}
	c := *ward
	s.wards[ward.WardID] = &c
	return nil
}

func (s *MemoryStore) DeleteWards(_ context.Context, wardIDs []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, id := range wardIDs {
		if _, ok := s.wards[id]; !ok {
			continue
		}
		delete(s.wards, id)
		n++
		for _, r := range s.admissions {
			if r.WardID != nil && *r.WardID == id {
				r.WardID = nil
			}
			if r.Caregiver != nil && r.Caregiver.WardID != nil && *r.Caregiver.WardID == id {
				r.Caregiver.WardID = nil
			}
		}
	}
	return n, nil
}

// ---- doctors ----

func (s *MemoryStore) ListDoctors(context.Context) ([]*domain.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Doctor, 0, len(s.doctors))
	for _, d := range s.doctors {
		c := *d
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].FullName < out[j].FullName
	})
	return out, nil
}

func (s *MemoryStore) CreateDoctor(_ context.Context, doctor *domain.Doctor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doctor.DoctorID == "" {
		doctor.DoctorID = uuid.NewString()
	}
	c := *doctor
	s.doctors[doctor.DoctorID] = &c
	return nil
}

func (s *MemoryStore) UpdateDoctor(_ context.Context, doctor *domain.Doctor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.doctors[doctor.DoctorID]; !ok {
		return ErrNotFound
	}
	c := *doctor
	s.doctors[doctor.DoctorID] = &c
	return nil
}

func (s *MemoryStore) DeleteDoctors(_ context.Context, doctorIDs []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, id := range doctorIDs {
		if _, ok := s.doctors[id]; !ok {
			continue
		}
		delete(s.doctors, id)
		n++
		for _, r := range s.admissions {
			if r.DoctorID != nil && *r.DoctorID == id {
				r.DoctorID = nil
			}
		}
	}
	return n, nil
}

func cloneRecord(r *domain.AdmissionRecord) *domain.AdmissionRecord {
	c := *r
	c.WardID = cloneString(r.WardID)
	c.DoctorID = cloneString(r.DoctorID)
	c.Discharge = cloneString(r.Discharge)
	if r.Caregiver != nil {
		cg := *r.Caregiver
		cg.WardID = cloneString(r.Caregiver.WardID)
		cg.ArrivalDate = cloneString(r.Caregiver.ArrivalDate)
		cg.DepartureDate = cloneString(r.Caregiver.DepartureDate)
		c.Caregiver = &cg
	}
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
