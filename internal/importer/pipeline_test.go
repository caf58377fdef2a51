package importer

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ward-census/internal/domain"
)

func fixedNow() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }

func testWards() []*domain.Ward {
	return []*domain.Ward{
		{WardID: "w1", Name: "A-101", SortOrder: 1, Block: domain.BlockA},
		{WardID: "w2", Name: "A-102", SortOrder: 2, Block: domain.BlockA},
	}
}

func testDoctors() []*domain.Doctor {
	return []*domain.Doctor{
		{DoctorID: "d1", FullName: "Dr. Example 1", SortOrder: 1},
		{DoctorID: "d2", FullName: "Dr. Example 2", SortOrder: 2},
	}
}

var journalHeader = []string{
	"Тартиб Раками", "Бемор Ф.И.О", "Тугилган Сана", "Телефон раками",
	"Келган сана", "Келган вакти", "Чикарилган сана", "Чикарилган вакт",
	"Палата", "Шифокор", "Каровчи",
}

func newTestPipeline(opts Options) *Pipeline {
	opts.Now = fixedNow
	return NewPipeline(opts, zap.NewNop())
}

func TestPipeline_HeaderOnThirdRow(t *testing.T) {
	sheet := &Sheet{Name: "PalataQabul", Rows: [][]string{
		{"Palata qabul jurnali"},
		{},
		journalHeader,
		{"17", "Иванов Пётр Сергеевич", "12.05.1980", "+998901234567", "01.03.2025", "0845", "", "", "A-102", "Dr. Example 2", "ha"},
	}}

	res, err := newTestPipeline(Options{}).Run(sheet, testWards(), testDoctors())
	require.NoError(t, err)
	assert.Equal(t, 3, res.HeaderRow)
	assert.Equal(t, 1, res.Imported)
	assert.Zero(t, res.Skipped)
	assert.Empty(t, res.Unresolved)

	rec := res.Records[0]
	assert.Equal(t, "17", rec.HistoryNumber)
	assert.Equal(t, "Иванов", rec.LastName)
	assert.Equal(t, "Пётр", rec.FirstName)
	assert.Equal(t, "Сергеевич", rec.Patronymic)
	assert.Equal(t, "12.05.1980", rec.BirthDate)
	assert.Equal(t, "+998901234567", rec.Phone)
	assert.Equal(t, "01.03.2025", rec.ArrivalDate)
	assert.Equal(t, "08:45", rec.ArrivalTime)
	assert.Nil(t, rec.Discharge)
	require.NotNil(t, rec.WardID)
	assert.Equal(t, "w2", *rec.WardID)
	require.NotNil(t, rec.DoctorID)
	assert.Equal(t, "d2", *rec.DoctorID)
	require.True(t, rec.HasCaregiver())
	assert.Nil(t, rec.Caregiver.WardID)
	assert.Empty(t, rec.Caregiver.FullName)
}

func TestPipeline_SkipsIncompleteRows(t *testing.T) {
	sheet := &Sheet{Rows: [][]string{
		journalHeader,
		{"", "Иванов Пётр", "12.05.1980"},
		{"2", "  ", "12.05.1980"},
		{"3", "Иванов Пётр", ""},
		{"4", "Иванов", "12.05.1980"},
		{},
		{"5", "Karimov, Aziz", "1.2.1990", "", "7.3", "9:05"},
		{"6", "Xolmatov Jasur", "not a date"},
	}}

	res, err := newTestPipeline(Options{}).Run(sheet, testWards(), testDoctors())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 4, res.Skipped)

	assert.Equal(t, "Karimov", res.Records[0].LastName)
	assert.Equal(t, "Aziz", res.Records[0].FirstName)
	assert.Equal(t, "01.02.1990", res.Records[0].BirthDate)
	assert.Equal(t, "07.03.2025", res.Records[0].ArrivalDate)
	assert.Equal(t, "09:05", res.Records[0].ArrivalTime)

	assert.Equal(t, "not a date", res.Records[1].BirthDate, "unparsable dates are kept verbatim")
}

func TestPipeline_Discharge(t *testing.T) {
	sheet := &Sheet{Rows: [][]string{
		journalHeader,
		{"1", "A B", "01.01.1990", "", "01.03.2025", "08:00", "05.03.2025", "14:30"},
		{"2", "A B", "01.01.1990", "", "01.03.2025", "08:00", "2025-03-06", ""},
		{"3", "A B", "01.01.1990", "", "01.03.2025", "08:00", "", "1015"},
	}}
	res, err := newTestPipeline(Options{}).Run(sheet, testWards(), testDoctors())
	require.NoError(t, err)
	require.Len(t, res.Records, 3)
	assert.Equal(t, "05.03.2025 14:30", domain.StringValue(res.Records[0].Discharge))
	assert.Equal(t, "06.03.2025", domain.StringValue(res.Records[1].Discharge))
	assert.Equal(t, "10:15", domain.StringValue(res.Records[2].Discharge))
}

func TestPipeline_UnresolvedReferences(t *testing.T) {
	sheet := &Sheet{Rows: [][]string{
		journalHeader,
		{"1", "A B", "01.01.1990", "", "", "", "", "", "C-999", "Dr. Nobody", "no"},
		{"2", "A B", "01.01.1990", "", "", "", "", "", "", "", ""},
	}}

	res, err := newTestPipeline(Options{}).Run(sheet, testWards(), testDoctors())
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Nil(t, res.Records[0].WardID)
	assert.Nil(t, res.Records[0].DoctorID)
	assert.False(t, res.Records[0].HasCaregiver())
	assert.Equal(t, []Unresolved{
		{Row: 2, Field: FieldWard, Text: "C-999"},
		{Row: 2, Field: FieldDoctor, Text: "Dr. Nobody"},
	}, res.Unresolved)
	assert.Nil(t, res.Records[1].WardID)

	res, err = newTestPipeline(Options{FallbackToFirst: true}).Run(sheet, testWards(), testDoctors())
	require.NoError(t, err)
	assert.Equal(t, "w1", domain.StringValue(res.Records[0].WardID))
	assert.Equal(t, "d1", domain.StringValue(res.Records[0].DoctorID))
	assert.Equal(t, "w1", domain.StringValue(res.Records[1].WardID))
	assert.Len(t, res.Unresolved, 2)

	res, err = newTestPipeline(Options{FallbackToFirst: true}).Run(sheet, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, res.Records[0].WardID)
	assert.Nil(t, res.Records[0].DoctorID)
}

func TestPipeline_CaregiverIndicator(t *testing.T) {
	for _, v := range []string{"Да", "HA", "ҳа", "Yes", "1", "true", "Bor", " yes. "} {
		sheet := &Sheet{Rows: [][]string{
			journalHeader,
			{"1", "A B", "01.01.1990", "", "", "", "", "", "", "", v},
		}}
		res, err := newTestPipeline(Options{}).Run(sheet, nil, nil)
		require.NoError(t, err)
		assert.True(t, res.Records[0].HasCaregiver(), v)
	}
	for _, v := range []string{"", "нет", "yo'q", "0", "no"} {
		sheet := &Sheet{Rows: [][]string{
			journalHeader,
			{"1", "A B", "01.01.1990", "", "", "", "", "", "", "", v},
		}}
		res, err := newTestPipeline(Options{}).Run(sheet, nil, nil)
		require.NoError(t, err)
		assert.False(t, res.Records[0].HasCaregiver(), v)
	}
}

func TestPipeline_MissingColumns(t *testing.T) {
	sheet := &Sheet{Rows: [][]string{
		{"Бемор Ф.И.О", "Палата", "Шифокор", "Каровчи", "Касби", "Телефон"},
		{"Иванов Пётр", "A-101", "", "", "", ""},
	}}
	_, err := newTestPipeline(Options{}).Run(sheet, testWards(), testDoctors())
	var mce *MissingColumnsError
	require.True(t, errors.As(err, &mce))
	assert.Equal(t, []Field{FieldHistoryNumber, FieldBirthDate}, mce.Fields)
	assert.Equal(t, "missing required columns: Тартиб Раками, Тугилган Сана", err.Error())

	_, err = newTestPipeline(Options{}).Run(&Sheet{}, nil, nil)
	require.True(t, errors.As(err, &mce))
}

func TestPipeline_ExtraSynonyms(t *testing.T) {
	sheet := &Sheet{Rows: [][]string{
		{"Karta", "Bemor", "Tug'ilgan", "Xona", "a", "b"},
		{"1", "A B", "01.01.1990", "A-101", "", ""},
	}}
	syn := DefaultSynonyms().Merge(Synonyms{
		FieldHistoryNumber: {"Karta"},
		FieldFullName:      {"Bemor"},
		FieldBirthDate:     {"Tug'ilgan"},
		FieldWard:          {"Xona"},
	})
	res, err := newTestPipeline(Options{Synonyms: syn}).Run(sheet, testWards(), nil)
	require.NoError(t, err)
	require.Equal(t, 1, res.Imported)
	assert.Equal(t, "w1", domain.StringValue(res.Records[0].WardID))
}
