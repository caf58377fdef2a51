package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"ward-census/internal/catalog"
	"ward-census/internal/domain"
	"ward-census/internal/repository"
)

// WardInput 病房表单
type WardInput struct {
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
	Block     string `json:"block"` // empty means A
}

func (in *WardInput) ward() (*domain.Ward, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, &ValidationError{Field: "name"}
	}
	block := domain.Block(strings.TrimSpace(in.Block))
	if block == "" {
		block = domain.BlockA
	}
	if !block.Valid() {
		return nil, &ValidationError{Field: "block", Reason: fmt.Sprintf("unknown block %q", in.Block)}
	}
	return &domain.Ward{Name: name, SortOrder: in.SortOrder, Block: block}, nil
}

// DoctorInput 医生表单
type DoctorInput struct {
	FullName  string `json:"full_name"`
	SortOrder int    `json:"sort_order"`
}

func (in *DoctorInput) doctor() (*domain.Doctor, error) {
	name := strings.TrimSpace(in.FullName)
	if name == "" {
		return nil, &ValidationError{Field: "full_name"}
	}
	return &domain.Doctor{FullName: name, SortOrder: in.SortOrder}, nil
}

// SettingsService 病房与医生目录管理
type SettingsService struct {
	store  repository.Store
	cache  Invalidator
	logger *zap.Logger
}

func NewSettingsService(st repository.Store, cache Invalidator, logger *zap.Logger) *SettingsService {
	if cache == nil {
		cache = nopInvalidator{}
	}
	return &SettingsService{store: st, cache: cache, logger: logger}
}

func (s *SettingsService) ListWards(ctx context.Context) ([]*domain.Ward, error) {
	return s.store.ListWards(ctx)
}

func (s *SettingsService) CreateWard(ctx context.Context, in *WardInput) (*domain.Ward, error) {
	w, err := in.ward()
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateWard(ctx, w); err != nil {
		return nil, fmt.Errorf("failed to create ward: %w", err)
	}
	s.cache.Invalidate(ctx)
	return w, nil
}

func (s *SettingsService) UpdateWard(ctx context.Context, wardID string, in *WardInput) (*domain.Ward, error) {
	w, err := in.ward()
	if err != nil {
		return nil, err
	}
	w.WardID = wardID
	if err := s.store.UpdateWard(ctx, w); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	return w, nil
}

// DeleteWards removes wards; records that pointed at them lose the reference.
func (s *SettingsService) DeleteWards(ctx context.Context, wardIDs []string) (int, error) {
	if len(wardIDs) == 0 {
		return 0, ErrNoSelection
	}
	n, err := s.store.DeleteWards(ctx, wardIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to delete wards: %w", err)
	}
	s.cache.Invalidate(ctx)
	s.logger.Info("Wards deleted", zap.Int("count", n))
	return n, nil
}

func (s *SettingsService) ListDoctors(ctx context.Context) ([]*domain.Doctor, error) {
	return s.store.ListDoctors(ctx)
}

func (s *SettingsService) CreateDoctor(ctx context.Context, in *DoctorInput) (*domain.Doctor, error) {
	d, err := in.doctor()
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateDoctor(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to create doctor: %w", err)
	}
	return d, nil
}

func (s *SettingsService) UpdateDoctor(ctx context.Context, doctorID string, in *DoctorInput) (*domain.Doctor, error) {
	d, err := in.doctor()
	if err != nil {
		return nil, err
	}
	d.DoctorID = doctorID
	if err := s.store.UpdateDoctor(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *SettingsService) DeleteDoctors(ctx context.Context, doctorIDs []string) (int, error) {
	if len(doctorIDs) == 0 {
		return 0, ErrNoSelection
	}
	n, err := s.store.DeleteDoctors(ctx, doctorIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to delete doctors: %w", err)
	}
	s.logger.Info("Doctors deleted", zap.Int("count", n))
	return n, nil
}

// Seed fills an empty ward list and an empty doctor list from the catalog.
// Lists that already have entries are left alone.
func (s *SettingsService) Seed(ctx context.Context, c *catalog.Catalog) error {
	wards, err := s.store.ListWards(ctx)
	if err != nil {
		return fmt.Errorf("failed to list wards: %w", err)
	}
	if len(wards) == 0 {
		for _, w := range c.DomainWards() {
			if err := s.store.CreateWard(ctx, w); err != nil {
				return fmt.Errorf("failed to seed ward %s: %w", w.Name, err)
			}
		}
		s.logger.Info("Seeded wards", zap.Int("count", len(c.Wards)))
	}

	doctors, err := s.store.ListDoctors(ctx)
	if err != nil {
		return fmt.Errorf("failed to list doctors: %w", err)
	}
	if len(doctors) == 0 {
		for _, d := range c.DomainDoctors() {
			if err := s.store.CreateDoctor(ctx, d); err != nil {
				return fmt.Errorf("failed to seed doctor %s: %w", d.FullName, err)
			}
		}
		s.logger.Info("Seeded doctors", zap.Int("count", len(c.Doctors)))
	}
	return nil
}
