package repository

import (
	"context"
	"errors"
	"strings"

	"ward-census/internal/domain"
)

// ErrNotFound is returned when a record, ward or doctor id is unknown.
var ErrNotFound = errors.New("not found")

// AdmissionFilter narrows ListAdmissions. Every non-empty field is a
// case-insensitive prefix.
type AdmissionFilter struct {
	HistoryNumber string
	LastName      string
	FirstName     string
	Patronymic    string
	// NewestFirst reverses the default insertion order.
	NewestFirst bool
}

func (f AdmissionFilter) matches(r *domain.AdmissionRecord) bool {
	return hasFoldPrefix(r.HistoryNumber, f.HistoryNumber) &&
		hasFoldPrefix(r.LastName, f.LastName) &&
		hasFoldPrefix(r.FirstName, f.FirstName) &&
		hasFoldPrefix(r.Patronymic, f.Patronymic)
}

func hasFoldPrefix(s, prefix string) bool {
	prefix = strings.TrimSpace(prefix)
	return prefix == "" || strings.HasPrefix(strings.ToLower(s), strings.ToLower(prefix))
}

// AdmissionsRepository 住院记录存储
type AdmissionsRepository interface {
	// ListAdmissions returns records in insertion order unless the filter asks otherwise.
	ListAdmissions(ctx context.Context, filter AdmissionFilter) ([]*domain.AdmissionRecord, error)
	GetAdmission(ctx context.Context, recordID string) (*domain.AdmissionRecord, error)
	// CreateAdmissions stores the whole batch or nothing, assigning ids and
	// creation times.
	CreateAdmissions(ctx context.Context, records []*domain.AdmissionRecord) error
	UpdateAdmission(ctx context.Context, record *domain.AdmissionRecord) error
	DeleteAdmissions(ctx context.Context, recordIDs []string) (int, error)
	DeleteAllAdmissions(ctx context.Context) (int, error)
}

// WardsRepository 病房存储
type WardsRepository interface {
	// ListWards orders by block, then sort order, then name.
	ListWards(ctx context.Context) ([]*domain.Ward, error)
	CreateWard(ctx context.Context, ward *domain.Ward) error
	UpdateWard(ctx context.Context, ward *domain.Ward) error
	// DeleteWards unassigns records that referenced a deleted ward.
	DeleteWards(ctx context.Context, wardIDs []string) (int, error)
}

// DoctorsRepository 医生存储
type DoctorsRepository interface {
	// ListDoctors orders by sort order, then name.
	ListDoctors(ctx context.Context) ([]*domain.Doctor, error)
	CreateDoctor(ctx context.Context, doctor *domain.Doctor) error
	UpdateDoctor(ctx context.Context, doctor *domain.Doctor) error
	DeleteDoctors(ctx context.Context, doctorIDs []string) (int, error)
}

// Store bundles the three repositories behind one backend.
type Store interface {
	AdmissionsRepository
	WardsRepository
	DoctorsRepository
	Ping(ctx context.Context) error
}
