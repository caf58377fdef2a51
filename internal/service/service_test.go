package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ward-census/internal/catalog"
	"ward-census/internal/domain"
	"ward-census/internal/events"
	"ward-census/internal/repository"
)

func getTestLogger() *zap.Logger {
	return zap.NewNop()
}

// seededStore returns a memory store holding the default catalog, plus its
// wards and doctors in list order.
func seededStore(t *testing.T) (*repository.MemoryStore, []*domain.Ward, []*domain.Doctor) {
	t.Helper()
	ctx := context.Background()
	st := repository.NewMemoryStore()
	require.NoError(t, NewSettingsService(st, nil, getTestLogger()).Seed(ctx, catalog.Default()))
	wards, err := st.ListWards(ctx)
	require.NoError(t, err)
	doctors, err := st.ListDoctors(ctx)
	require.NoError(t, err)
	return st, wards, doctors
}

func validInput(wardID, doctorID string) *PatientInput {
	return &PatientInput{
		HistoryNumber: "17",
		LastName:      "Иванов",
		FirstName:     "Пётр",
		Patronymic:    "Сергеевич",
		BirthDate:     "12.05.1980",
		Phone:         "+998901234567",
		Address:       "Tashkent",
		Occupation:    "Engineer",
		ArrivalDate:   "01.06.2024",
		ArrivalTime:   "08:00",
		WardID:        wardID,
		DoctorID:      doctorID,
	}
}

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.events = append(p.events, ev)
	return p.err
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate(context.Context) { c.calls++ }
