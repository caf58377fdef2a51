package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ward-census/internal/config"
	"ward-census/internal/domain"
	"ward-census/internal/occupancy"
	"ward-census/internal/repository"
	"ward-census/internal/store"
)

func newCachedOccupancy(t *testing.T, st repository.Store) (*miniredis.Miniredis, *OccupancyService) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := store.NewRedisClient(&config.RedisConfig{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewOccupancyService(st, store.NewRedisKV(client), time.Minute, occupancy.Options{}, time.UTC, getTestLogger())
}

func admit(t *testing.T, st repository.Store, hist, last, first, wardID, date, clock string) {
	t.Helper()
	r := &domain.AdmissionRecord{
		HistoryNumber: hist,
		LastName:      last,
		FirstName:     first,
		ArrivalDate:   date,
		ArrivalTime:   clock,
		WardID:        domain.OptionalString(wardID),
	}
	require.NoError(t, st.CreateAdmissions(context.Background(), []*domain.AdmissionRecord{r}))
}

func TestOccupancyService_ReferenceInstant(t *testing.T) {
	s := NewOccupancyService(repository.NewMemoryStore(), nil, 0, occupancy.Options{}, time.FixedZone("UZT", 5*3600), getTestLogger())
	s.now = func() time.Time { return time.Date(2024, 6, 1, 7, 30, 45, 0, time.UTC) }

	assert.Equal(t, time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC), s.ReferenceInstant(""))
	assert.Equal(t, time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC), s.ReferenceInstant("garbage"))
	assert.Equal(t, time.Date(2024, 5, 20, 9, 15, 0, 0, time.UTC), s.ReferenceInstant("20.05.2024 09:15"))
}

func TestOccupancyService_Snapshot(t *testing.T) {
	ctx := context.Background()
	st, wards, _ := seededStore(t)
	admit(t, st, "17", "Иванов", "Пётр", wards[0].WardID, "01.06.2024", "08:00")
	admit(t, st, "18", "Петров", "Олег", wards[0].WardID, "02.06.2024", "08:00")

	s := NewOccupancyService(st, nil, 0, occupancy.Options{}, time.UTC, getTestLogger())
	view, err := s.Snapshot(ctx, "01.06.2024 12:00")
	require.NoError(t, err)

	assert.Equal(t, "01.06.2024 12:00", view.At)
	assert.Equal(t, 1, view.Patients)
	assert.Zero(t, view.Caregivers)
	require.Len(t, view.Blocks, len(domain.BlockOrder))
	assert.Equal(t, "A", view.Blocks[0].Block)
	assert.Equal(t, "Block A", view.Blocks[0].Title)
	require.Len(t, view.Blocks[0].Wards, 5)

	first := view.Blocks[0].Wards[0]
	assert.Equal(t, "A-101", first.Name)
	assert.Equal(t, "Иванов Пётр (17)", first.Text)
	assert.Equal(t, "—", view.Blocks[0].Wards[1].Text)
	assert.Empty(t, view.Blocks[2].Wards)
}

func TestOccupancyService_CacheAndInvalidate(t *testing.T) {
	ctx := context.Background()
	st, wards, doctors := seededStore(t)
	mr, occ := newCachedOccupancy(t, st)

	view, err := occ.Snapshot(ctx, "01.06.2024 12:00")
	require.NoError(t, err)
	assert.Zero(t, view.Patients)
	assert.True(t, mr.Exists("ward-census:snapshot:202406011200:false"))

	// written behind the service's back, so the cached view still answers
	admit(t, st, "17", "Иванов", "Пётр", wards[0].WardID, "01.06.2024", "08:00")
	view, err = occ.Snapshot(ctx, "01.06.2024 12:00")
	require.NoError(t, err)
	assert.Zero(t, view.Patients)

	patients := NewPatientService(st, occ, nil, getTestLogger())
	_, err = patients.Register(ctx, validInput(wards[1].WardID, doctors[0].DoctorID))
	require.NoError(t, err)
	assert.False(t, mr.Exists("ward-census:snapshot:202406011200:false"))

	view, err = occ.Snapshot(ctx, "01.06.2024 12:00")
	require.NoError(t, err)
	assert.Equal(t, 2, view.Patients)
}

func TestOccupancyService_UnreadableCacheEntry(t *testing.T) {
	ctx := context.Background()
	st, wards, _ := seededStore(t)
	admit(t, st, "17", "Иванов", "Пётр", wards[0].WardID, "01.06.2024", "08:00")
	mr, occ := newCachedOccupancy(t, st)

	require.NoError(t, mr.Set("ward-census:snapshot:202406011200:false", "{not json"))
	view, err := occ.Snapshot(ctx, "01.06.2024 12:00")
	require.NoError(t, err)
	assert.Equal(t, 1, view.Patients)
}
