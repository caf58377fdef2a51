package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ward-census/internal/datetime"
	"ward-census/internal/occupancy"
	"ward-census/internal/repository"
	"ward-census/internal/store"
)

const snapshotKeyPrefix = "ward-census:snapshot:"

// SnapshotView 病房占用快照（前端格式）
type SnapshotView struct {
	At         string      `json:"at"` // dd.mm.yyyy HH:MM
	Patients   int         `json:"patients"`
	Caregivers int         `json:"caregivers"`
	Blocks     []BlockItem `json:"blocks"`
}

// BlockItem 病区
type BlockItem struct {
	Block string     `json:"block"`
	Title string     `json:"title"`
	Wards []WardItem `json:"wards"`
}

// WardItem 病房及其占用者
type WardItem struct {
	WardID    string               `json:"ward_id"`
	Name      string               `json:"name"`
	Occupants []occupancy.Occupant `json:"occupants"`
	Text      string               `json:"text"` // rendered occupant lines, "—" when vacant
}

// OccupancyService builds ward snapshots and caches them by reference minute.
type OccupancyService struct {
	store  repository.Store
	kv     store.KV // nil disables caching
	ttl    time.Duration
	opts   occupancy.Options
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

func NewOccupancyService(st repository.Store, kv store.KV, ttl time.Duration, opts occupancy.Options, loc *time.Location, logger *zap.Logger) *OccupancyService {
	if loc == nil {
		loc = time.UTC
	}
	if ttl <= 0 {
		kv = nil
	}
	return &OccupancyService{store: st, kv: kv, ttl: ttl, opts: opts, loc: loc, now: time.Now, logger: logger}
}

// Now returns the current wall-clock instant in the ward timezone.
func (s *OccupancyService) Now() time.Time {
	return datetime.Wall(s.now(), s.loc)
}

// ReferenceInstant reads an "at" parameter, falling back to now. The result
// has minute precision, like every instant stored on a record.
func (s *OccupancyService) ReferenceInstant(at string) time.Time {
	return datetime.ParseReference(at, s.Now()).Truncate(time.Minute)
}

// Snapshot returns the occupancy at the instant named by at.
func (s *OccupancyService) Snapshot(ctx context.Context, at string) (*SnapshotView, error) {
	ref := s.ReferenceInstant(at)
	key := fmt.Sprintf("%s%s:%t", snapshotKeyPrefix, ref.Format("200601021504"), s.opts.InclusiveDischarge)

	if s.kv != nil {
		if cached, err := s.kv.Get(ctx, key); err == nil {
			var view SnapshotView
			if err := json.Unmarshal([]byte(cached), &view); err == nil {
				return &view, nil
			}
			s.logger.Warn("Discarding unreadable cached snapshot", zap.String("key", key))
		} else if !errors.Is(err, store.ErrMiss) {
			s.logger.Warn("Snapshot cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	records, err := s.store.ListAdmissions(ctx, repository.AdmissionFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list admissions: %w", err)
	}
	wards, err := s.store.ListWards(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list wards: %w", err)
	}

	snap := occupancy.Build(records, wards, ref, s.opts)
	view := &SnapshotView{At: datetime.FormatInstant(ref)}
	view.Patients, view.Caregivers = snap.Count()
	for _, b := range snap.Blocks(wards) {
		item := BlockItem{Block: string(b.Block), Title: b.Block.Title(), Wards: []WardItem{}}
		for _, w := range b.Wards {
			item.Wards = append(item.Wards, WardItem{
				WardID:    w.Ward.WardID,
				Name:      w.Ward.Name,
				Occupants: w.Occupants,
				Text:      occupancy.RenderOccupants(w.Occupants, occupancy.DefaultLabels),
			})
		}
		view.Blocks = append(view.Blocks, item)
	}

	if s.kv != nil {
		if data, err := json.Marshal(view); err == nil {
			if err := s.kv.Set(ctx, key, string(data), s.ttl); err != nil {
				s.logger.Warn("Snapshot cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return view, nil
}

// Invalidate drops every cached snapshot. Called after any write.
func (s *OccupancyService) Invalidate(ctx context.Context) {
	if s.kv == nil {
		return
	}
	n, err := store.DeletePattern(ctx, s.kv, snapshotKeyPrefix+"*")
	if err != nil {
		s.logger.Warn("Snapshot cache invalidation failed", zap.Error(err))
		return
	}
	s.logger.Debug("Snapshot cache invalidated", zap.Int("keys", n))
}
