package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ward-census/internal/audit"
	"ward-census/internal/events"
	"ward-census/internal/repository"
)

// InvalidItem 缺失必填字段的患者
type InvalidItem struct {
	PatientItem
	Missing       []audit.Field `json:"missing"`
	MissingLabels []string      `json:"missing_labels"`
}

// CleanupService lists and removes records that lack mandatory fields.
type CleanupService struct {
	store     repository.Store
	cache     Invalidator
	publisher events.Publisher
	logger    *zap.Logger
}

func NewCleanupService(st repository.Store, cache Invalidator, publisher events.Publisher, logger *zap.Logger) *CleanupService {
	if cache == nil {
		cache = nopInvalidator{}
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &CleanupService{store: st, cache: cache, publisher: publisher, logger: logger}
}

func (s *CleanupService) findings(ctx context.Context) ([]audit.Finding, error) {
	records, err := s.store.ListAdmissions(ctx, repository.AdmissionFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list admissions: %w", err)
	}
	return audit.FindInvalid(records), nil
}

// ListInvalid returns every incomplete record with the fields it misses.
func (s *CleanupService) ListInvalid(ctx context.Context) ([]InvalidItem, error) {
	findings, err := s.findings(ctx)
	if err != nil {
		return nil, err
	}
	names, err := LoadNames(ctx, s.store)
	if err != nil {
		return nil, err
	}
	items := make([]InvalidItem, 0, len(findings))
	for _, f := range findings {
		labels := make([]string, len(f.Missing))
		for i, m := range f.Missing {
			labels[i] = m.Label()
		}
		items = append(items, InvalidItem{PatientItem: names.Item(f.Record), Missing: f.Missing, MissingLabels: labels})
	}
	return items, nil
}

// DeleteSelected deletes the named records that are still incomplete. Ids of
// complete or unknown records are ignored.
func (s *CleanupService) DeleteSelected(ctx context.Context, recordIDs []string) (int, error) {
	if len(recordIDs) == 0 {
		return 0, ErrNoSelection
	}
	findings, err := s.findings(ctx)
	if err != nil {
		return 0, err
	}
	selected := make(map[string]bool, len(recordIDs))
	for _, id := range recordIDs {
		selected[id] = true
	}
	var ids []string
	for _, f := range findings {
		if selected[f.Record.RecordID] {
			ids = append(ids, f.Record.RecordID)
		}
	}
	return s.delete(ctx, ids)
}

// DeleteAll deletes every incomplete record.
func (s *CleanupService) DeleteAll(ctx context.Context) (int, error) {
	findings, err := s.findings(ctx)
	if err != nil {
		return 0, err
	}
	ids := make([]string, len(findings))
	for i, f := range findings {
		ids[i] = f.Record.RecordID
	}
	return s.delete(ctx, ids)
}

func (s *CleanupService) delete(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := s.store.DeleteAdmissions(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete admissions: %w", err)
	}
	s.cache.Invalidate(ctx)
	s.logger.Info("Incomplete patients deleted", zap.Int("count", n))
	if err := s.publisher.Publish(ctx, events.Event{Type: events.TypeAdmissionsDeleted, Count: n}); err != nil {
		s.logger.Warn("Failed to publish delete event", zap.Error(err))
	}
	return n, nil
}
