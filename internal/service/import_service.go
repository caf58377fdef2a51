package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"ward-census/internal/events"
	"ward-census/internal/importer"
	"ward-census/internal/repository"
)

// ImportReport 导入结果（返回给前端）
type ImportReport struct {
	Sheet      string                `json:"sheet"`
	HeaderRow  int                   `json:"header_row"`
	Imported   int                   `json:"imported"`
	Skipped    int                   `json:"skipped"`
	Unresolved []importer.Unresolved `json:"unresolved"`
	Message    string                `json:"message"`
}

// ImportService reads uploaded journals and commits them as one batch.
type ImportService struct {
	store     repository.Store
	cache     Invalidator
	publisher events.Publisher
	sheetName string
	opts      importer.Options
	logger    *zap.Logger
}

func NewImportService(st repository.Store, cache Invalidator, publisher events.Publisher, sheetName string, opts importer.Options, logger *zap.Logger) *ImportService {
	if cache == nil {
		cache = nopInvalidator{}
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if sheetName == "" {
		sheetName = importer.DefaultSheetName
	}
	return &ImportService{
		store:     st,
		cache:     cache,
		publisher: publisher,
		sheetName: sheetName,
		opts:      opts,
		logger:    logger,
	}
}

// Import reads an uploaded workbook. Nothing is stored unless every row
// converts and the batch commits.
func (s *ImportService) Import(ctx context.Context, r io.Reader, filename string) (*ImportReport, error) {
	sheet, err := importer.ReadSheet(r, filename, s.sheetName)
	if err != nil {
		return nil, err
	}
	return s.ImportSheet(ctx, sheet, filename)
}

// ImportSheet runs an already decoded sheet through the pipeline against the
// stored ward and doctor lists.
func (s *ImportService) ImportSheet(ctx context.Context, sheet *importer.Sheet, source string) (*ImportReport, error) {
	wards, err := s.store.ListWards(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list wards: %w", err)
	}
	doctors, err := s.store.ListDoctors(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}

	res, err := importer.NewPipeline(s.opts, s.logger).Run(sheet, wards, doctors)
	if err != nil {
		return nil, err
	}
	if len(res.Records) > 0 {
		if err := s.store.CreateAdmissions(ctx, res.Records); err != nil {
			return nil, fmt.Errorf("failed to store imported admissions: %w", err)
		}
		s.cache.Invalidate(ctx)
	}

	ev := events.Event{
		Type:       events.TypeImportCompleted,
		Count:      res.Imported,
		Skipped:    res.Skipped,
		Unresolved: len(res.Unresolved),
		Source:     source,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn("Failed to publish import event", zap.String("source", source), zap.Error(err))
	}

	unresolved := res.Unresolved
	if unresolved == nil {
		unresolved = []importer.Unresolved{}
	}
	return &ImportReport{
		Sheet:      sheet.Name,
		HeaderRow:  res.HeaderRow,
		Imported:   res.Imported,
		Skipped:    res.Skipped,
		Unresolved: unresolved,
		Message:    res.String(),
	}, nil
}

// Template returns the blank import workbook.
func (s *ImportService) Template() ([]byte, error) {
	return importer.GenerateTemplate()
}
