package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ward-census/internal/catalog"
	"ward-census/internal/domain"
	"ward-census/internal/repository"
)

func TestSettingsService_Seed(t *testing.T) {
	ctx := context.Background()
	st := repository.NewMemoryStore()
	s := NewSettingsService(st, nil, getTestLogger())

	require.NoError(t, s.Seed(ctx, catalog.Default()))
	wards, err := s.ListWards(ctx)
	require.NoError(t, err)
	assert.Len(t, wards, 10)
	doctors, err := s.ListDoctors(ctx)
	require.NoError(t, err)
	assert.Len(t, doctors, 5)

	// a second seed leaves populated lists alone
	require.NoError(t, s.Seed(ctx, catalog.Default()))
	wards, err = s.ListWards(ctx)
	require.NoError(t, err)
	assert.Len(t, wards, 10)
}

func TestSettingsService_Wards(t *testing.T) {
	ctx := context.Background()
	st := repository.NewMemoryStore()
	cache := &countingInvalidator{}
	s := NewSettingsService(st, cache, getTestLogger())

	_, err := s.CreateWard(ctx, &WardInput{Name: "  "})
	assert.True(t, IsValidation(err))
	_, err = s.CreateWard(ctx, &WardInput{Name: "X-1", Block: "Z"})
	assert.True(t, IsValidation(err))

	w, err := s.CreateWard(ctx, &WardInput{Name: " R-1 ", SortOrder: 3, Block: "R"})
	require.NoError(t, err)
	assert.Equal(t, "R-1", w.Name)
	assert.Equal(t, domain.BlockReanimation, w.Block)

	d, err := s.CreateWard(ctx, &WardInput{Name: "A-1"})
	require.NoError(t, err)
	assert.Equal(t, domain.BlockA, d.Block)

	_, err = s.UpdateWard(ctx, w.WardID, &WardInput{Name: "R-2", SortOrder: 1, Block: "R"})
	require.NoError(t, err)
	_, err = s.UpdateWard(ctx, "missing", &WardInput{Name: "R-3"})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = s.DeleteWards(ctx, nil)
	assert.ErrorIs(t, err, ErrNoSelection)
	n, err := s.DeleteWards(ctx, []string{w.WardID})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	wards, err := s.ListWards(ctx)
	require.NoError(t, err)
	require.Len(t, wards, 1)
	assert.Equal(t, "A-1", wards[0].Name)
	assert.Equal(t, 4, cache.calls)
}

func TestSettingsService_DeleteWardUnassignsRecords(t *testing.T) {
	ctx := context.Background()
	st, wards, doctors := seededStore(t)
	patients := NewPatientService(st, nil, nil, getTestLogger())
	r, err := patients.Register(ctx, validInput(wards[0].WardID, doctors[0].DoctorID))
	require.NoError(t, err)

	s := NewSettingsService(st, nil, getTestLogger())
	_, err = s.DeleteWards(ctx, []string{wards[0].WardID})
	require.NoError(t, err)
	_, err = s.DeleteDoctors(ctx, []string{doctors[0].DoctorID})
	require.NoError(t, err)

	got, err := st.GetAdmission(ctx, r.RecordID)
	require.NoError(t, err)
	assert.Nil(t, got.WardID)
	assert.Nil(t, got.DoctorID)
}

func TestSettingsService_Doctors(t *testing.T) {
	ctx := context.Background()
	s := NewSettingsService(repository.NewMemoryStore(), nil, getTestLogger())

	_, err := s.CreateDoctor(ctx, &DoctorInput{})
	assert.True(t, IsValidation(err))

	d, err := s.CreateDoctor(ctx, &DoctorInput{FullName: "Dr. B", SortOrder: 2})
	require.NoError(t, err)
	_, err = s.CreateDoctor(ctx, &DoctorInput{FullName: "Dr. A", SortOrder: 1})
	require.NoError(t, err)

	doctors, err := s.ListDoctors(ctx)
	require.NoError(t, err)
	require.Len(t, doctors, 2)
	assert.Equal(t, "Dr. A", doctors[0].FullName)

	updated, err := s.UpdateDoctor(ctx, d.DoctorID, &DoctorInput{FullName: "Dr. C", SortOrder: 0})
	require.NoError(t, err)
	assert.Equal(t, d.DoctorID, updated.DoctorID)

	doctors, err = s.ListDoctors(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Dr. C", doctors[0].FullName)
}
