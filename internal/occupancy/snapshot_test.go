package occupancy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ward-census/internal/domain"
)

func ptr(s string) *string { return &s }

func instant(t *testing.T, s string) time.Time {
	t.Helper()
	at, err := time.Parse("02.01.2006 15:04", s)
	require.NoError(t, err)
	return at
}

func wards() []*domain.Ward {
	return []*domain.Ward{
		{WardID: "a101", Name: "A-101", SortOrder: 2, Block: domain.BlockA},
		{WardID: "a102", Name: "A-102", SortOrder: 1, Block: domain.BlockA},
		{WardID: "r1", Name: "R-1", SortOrder: 1, Block: domain.BlockReanimation},
		{WardID: "x1", Name: "X-1", SortOrder: 1, Block: "X"},
	}
}

func admitted(arrivalDate, arrivalTime string, ward string) *domain.AdmissionRecord {
	return &domain.AdmissionRecord{
		HistoryNumber: "17",
		LastName:      "Иванов",
		FirstName:     "Пётр",
		Patronymic:    "Сергеевич",
		ArrivalDate:   arrivalDate,
		ArrivalTime:   arrivalTime,
		WardID:        ptr(ward),
	}
}

func TestBuild_NotDischarged(t *testing.T) {
	rec := admitted("01.01.2024", "10:00", "a101")
	snap := Build([]*domain.AdmissionRecord{rec}, wards(), instant(t, "01.06.2024 00:00"), Options{})

	assert.Equal(t, []Occupant{{Name: "Иванов Пётр Сергеевич", HistoryNumber: "17", Role: RolePatient}}, snap.Occupants["a101"])
	assert.Equal(t, []Occupant{}, snap.Occupants["a102"], "vacant wards are listed, not omitted")
	assert.Len(t, snap.Occupants, 4)
}

func TestBuild_DischargeBoundary(t *testing.T) {
	rec := admitted("01.01.2024", "10:00", "a101")
	rec.Discharge = ptr("01.02.2024 09:00")
	at := instant(t, "01.02.2024 09:00")

	snap := Build([]*domain.AdmissionRecord{rec}, wards(), at, Options{})
	assert.Empty(t, snap.Occupants["a101"])

	snap = Build([]*domain.AdmissionRecord{rec}, wards(), at, Options{InclusiveDischarge: true})
	assert.Len(t, snap.Occupants["a101"], 1)
}

func TestBuild_PresentOnlyDuringStay(t *testing.T) {
	rec := admitted("01.01.2024", "10:00", "a101")
	rec.Discharge = ptr("03.01.2024 08:30")
	arrival := instant(t, "01.01.2024 10:00")
	discharge := instant(t, "03.01.2024 08:30")

	for at := arrival.Add(-6 * time.Hour); at.Before(discharge.Add(6 * time.Hour)); at = at.Add(30 * time.Minute) {
		snap := Build([]*domain.AdmissionRecord{rec}, wards(), at, Options{})
		want := !at.Before(arrival) && at.Before(discharge)
		assert.Equal(t, want, len(snap.Occupants["a101"]) == 1, at.String())
	}
}

func TestBuild_UnparsableValues(t *testing.T) {
	at := instant(t, "01.06.2024 00:00")

	noArrival := admitted("", "", "a101")
	noArrival.Discharge = ptr("01.05.2024")
	badArrival := admitted("2024-01-01", "10:00", "a101")
	badTime := admitted("01.01.2024", "ten", "a102")
	badDischarge := admitted("01.01.2024", "10:00", "r1")
	badDischarge.Discharge = ptr("soon")
	dateOnlyDischarge := admitted("01.01.2024", "10:00", "r1")
	dateOnlyDischarge.Discharge = ptr("31.05.2024")

	snap := Build([]*domain.AdmissionRecord{noArrival, badArrival, badTime, badDischarge, dateOnlyDischarge}, wards(), at, Options{})
	assert.Empty(t, snap.Occupants["a101"])
	assert.Len(t, snap.Occupants["a102"], 1, "unreadable arrival time counts from midnight")
	assert.Len(t, snap.Occupants["r1"], 1)
}

func TestBuild_Wards(t *testing.T) {
	at := instant(t, "01.06.2024 00:00")
	unknown := admitted("01.01.2024", "10:00", "gone")
	none := admitted("01.01.2024", "10:00", "")
	none.WardID = nil

	snap := Build([]*domain.AdmissionRecord{unknown, none}, wards(), at, Options{})
	assert.Len(t, snap.Occupants["gone"], 1)
	assert.Len(t, snap.Occupants, 5)
}

func TestBuild_Caregiver(t *testing.T) {
	at := instant(t, "01.06.2024 00:00")

	ownWard := admitted("01.01.2024", "10:00", "a101")
	ownWard.Caregiver = &domain.Caregiver{}

	otherWard := admitted("01.01.2024", "10:00", "a101")
	otherWard.HistoryNumber = "18"
	otherWard.Caregiver = &domain.Caregiver{FullName: "Иванова Мария", WardID: ptr("a102")}

	notYet := admitted("01.01.2024", "10:00", "r1")
	notYet.Caregiver = &domain.Caregiver{FullName: "Late", ArrivalDate: ptr("02.06.2024")}

	leftToday := admitted("01.01.2024", "10:00", "r1")
	leftToday.Caregiver = &domain.Caregiver{FullName: "Today", DepartureDate: ptr("01.06.2024")}

	leftYesterday := admitted("01.01.2024", "10:00", "r1")
	leftYesterday.Caregiver = &domain.Caregiver{FullName: "Gone", DepartureDate: ptr("31.05.2024")}

	unknownWard := admitted("01.01.2024", "10:00", "r1")
	unknownWard.Caregiver = &domain.Caregiver{FullName: "Lost", WardID: ptr("nowhere")}

	snap := Build([]*domain.AdmissionRecord{ownWard, otherWard, notYet, leftToday, leftYesterday, unknownWard}, wards(), at, Options{})

	require.Len(t, snap.Occupants["a101"], 3)
	assert.Equal(t, Occupant{Name: "", Role: RoleCaregiver}, snap.Occupants["a101"][1])
	assert.Equal(t, []Occupant{{Name: "Иванова Мария", Role: RoleCaregiver}}, snap.Occupants["a102"])

	var names []string
	for _, o := range snap.Occupants["r1"] {
		if o.Role == RoleCaregiver {
			names = append(names, o.Name)
		}
	}
	assert.Equal(t, []string{"Today"}, names)
	assert.NotContains(t, snap.Occupants, "nowhere")

	patients, caregivers := snap.Count()
	assert.Equal(t, 6, patients)
	assert.Equal(t, 3, caregivers)
}

func TestBuild_CaregiverStaysAfterDischarge(t *testing.T) {
	rec := admitted("01.01.2024", "10:00", "a101")
	rec.Discharge = ptr("01.03.2024 10:00")
	rec.Caregiver = &domain.Caregiver{FullName: "Stays"}

	snap := Build([]*domain.AdmissionRecord{rec}, wards(), instant(t, "01.06.2024 00:00"), Options{})
	assert.Equal(t, []Occupant{{Name: "Stays", Role: RoleCaregiver}}, snap.Occupants["a101"])
}

func TestBuild_FutureArrivalHidesCaregiver(t *testing.T) {
	rec := admitted("02.06.2024", "10:00", "a101")
	rec.Caregiver = &domain.Caregiver{FullName: "Early"}

	snap := Build([]*domain.AdmissionRecord{rec}, wards(), instant(t, "01.06.2024 00:00"), Options{})
	assert.Empty(t, snap.Occupants["a101"])
}

func TestSnapshot_Blocks(t *testing.T) {
	rec := admitted("01.01.2024", "10:00", "a101")
	snap := Build([]*domain.AdmissionRecord{rec}, wards(), instant(t, "01.06.2024 00:00"), Options{})

	blocks := snap.Blocks(wards())
	require.Len(t, blocks, 5)
	assert.Equal(t, domain.BlockA, blocks[0].Block)
	require.Len(t, blocks[0].Wards, 2)
	assert.Equal(t, "A-102", blocks[0].Wards[0].Ward.Name)
	assert.Equal(t, "A-101", blocks[0].Wards[1].Ward.Name)
	assert.Len(t, blocks[0].Wards[1].Occupants, 1)
	assert.Empty(t, blocks[1].Wards)
	assert.Equal(t, domain.BlockReanimation, blocks[4].Block)
	assert.Len(t, blocks[4].Wards, 1)
}
