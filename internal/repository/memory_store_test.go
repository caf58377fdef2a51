package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ward-census/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestMemoryStore_Admissions(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	batch := []*domain.AdmissionRecord{
		{HistoryNumber: "17", LastName: "Иванов", FirstName: "Пётр"},
		{HistoryNumber: "170", LastName: "Karimov", FirstName: "Aziz"},
		{HistoryNumber: "2", LastName: "Иванова", FirstName: "Мария"},
	}
	require.NoError(t, s.CreateAdmissions(ctx, batch))
	for _, r := range batch {
		assert.NotEmpty(t, r.RecordID)
		assert.False(t, r.CreatedAt.IsZero())
	}

	all, err := s.ListAdmissions(ctx, AdmissionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "17", all[0].HistoryNumber)

	got, err := s.ListAdmissions(ctx, AdmissionFilter{HistoryNumber: "17"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.ListAdmissions(ctx, AdmissionFilter{LastName: "ИВАН", NewestFirst: true})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Мария", got[0].FirstName)

	// returned records are copies
	got[0].FirstName = "changed"
	again, err := s.GetAdmission(ctx, got[0].RecordID)
	require.NoError(t, err)
	assert.Equal(t, "Мария", again.FirstName)

	again.Discharge = strPtr("05.03.2025 14:30")
	require.NoError(t, s.UpdateAdmission(ctx, again))
	updated, err := s.GetAdmission(ctx, again.RecordID)
	require.NoError(t, err)
	assert.Equal(t, "05.03.2025 14:30", domain.StringValue(updated.Discharge))
	assert.Equal(t, batch[2].CreatedAt, updated.CreatedAt)

	err = s.UpdateAdmission(ctx, &domain.AdmissionRecord{RecordID: "nope"})
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = s.GetAdmission(ctx, "nope")
	assert.True(t, errors.Is(err, ErrNotFound))

	n, err := s.DeleteAdmissions(ctx, []string{batch[0].RecordID, "nope"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	all, _ = s.ListAdmissions(ctx, AdmissionFilter{})
	require.Len(t, all, 2)
	assert.Equal(t, "170", all[0].HistoryNumber)

	n, err = s.DeleteAllAdmissions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	all, _ = s.ListAdmissions(ctx, AdmissionFilter{})
	assert.Empty(t, all)
}

func TestMemoryStore_WardsOrderAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for _, w := range []*domain.Ward{
		{Name: "B-201", SortOrder: 101, Block: domain.BlockB},
		{Name: "A-102", SortOrder: 2, Block: domain.BlockA},
		{Name: "A-101", SortOrder: 1, Block: domain.BlockA},
	} {
		require.NoError(t, s.CreateWard(ctx, w))
	}
	wards, err := s.ListWards(ctx)
	require.NoError(t, err)
	require.Len(t, wards, 3)
	assert.Equal(t, []string{"A-101", "A-102", "B-201"}, []string{wards[0].Name, wards[1].Name, wards[2].Name})

	rec := &domain.AdmissionRecord{
		HistoryNumber: "17",
		WardID:        strPtr(wards[0].WardID),
		Caregiver:     &domain.Caregiver{WardID: strPtr(wards[0].WardID)},
	}
	require.NoError(t, s.CreateAdmissions(ctx, []*domain.AdmissionRecord{rec}))

	n, err := s.DeleteWards(ctx, []string{wards[0].WardID})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored, err := s.GetAdmission(ctx, rec.RecordID)
	require.NoError(t, err)
	assert.Nil(t, stored.WardID)
	assert.Nil(t, stored.Caregiver.WardID)

	wards[1].Name = "A-102b"
	require.NoError(t, s.UpdateWard(ctx, wards[1]))
	assert.True(t, errors.Is(s.UpdateWard(ctx, &domain.Ward{WardID: "nope"}), ErrNotFound))
}

func TestMemoryStore_Doctors(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	d2 := &domain.Doctor{FullName: "Dr. Example 2", SortOrder: 2}
	d1 := &domain.Doctor{FullName: "Dr. Example 1", SortOrder: 1}
	require.NoError(t, s.CreateDoctor(ctx, d2))
	require.NoError(t, s.CreateDoctor(ctx, d1))

	doctors, err := s.ListDoctors(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Example 1", doctors[0].FullName)

	rec := &domain.AdmissionRecord{DoctorID: strPtr(d1.DoctorID)}
	require.NoError(t, s.CreateAdmissions(ctx, []*domain.AdmissionRecord{rec}))
	n, err := s.DeleteDoctors(ctx, []string{d1.DoctorID})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	stored, _ := s.GetAdmission(ctx, rec.RecordID)
	assert.Nil(t, stored.DoctorID)

	d2.FullName = "Dr. Renamed"
	require.NoError(t, s.UpdateDoctor(ctx, d2))
	doctors, _ = s.ListDoctors(ctx)
	assert.Equal(t, []*domain.Doctor{{DoctorID: d2.DoctorID, FullName: "Dr. Renamed", SortOrder: 2}}, doctors)
}

func TestMemoryStore_ConcurrentBatches(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			batch := []*domain.AdmissionRecord{{HistoryNumber: "a"}, {HistoryNumber: "b"}}
			assert.NoError(t, s.CreateAdmissions(ctx, batch))
		}()
	}
	wg.Wait()

	all, err := s.ListAdmissions(ctx, AdmissionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 16)
}
