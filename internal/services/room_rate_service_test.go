package services

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sortyourtrip/hotel-crm-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testSearchSession() *models.BookingSession {
	return &models.BookingSession{
		Rooms: map[string]models.RoomDetails{
			"r1": {RoomID: "r1", RoomName: "Deluxe King"},
			"r2": {RoomID: "r2", RoomName: "Twin Garden View"},
		},
		Rates: map[string]models.Rate{
			"rt1": {ID: "rt1", RoomID: "r1", FinalRate: 6000, Currency: "INR"},
			"rt2": {ID: "rt2", RoomID: "r2", FinalRate: 4000, Currency: "INR"},
		},
		Occupancies: map[string]models.Occupancy{
			"r1": {RoomID: "r1", Adults: 2},
			"r2": {RoomID: "r2", Adults: 1, ChildAges: []int{6}},
		},
		Recommendations: map[string][]models.RoomRateRecommendation{
			"standard": {
				{ID: "rec-1", GroupID: "standard", RateIDs: []string{"rt1", "rt2"}},
				{ID: "rec-2", GroupID: "standard", RateIDs: []string{"rt1"}},
			},
		},
	}
}

func TestResolveRecommendation(t *testing.T) {
	svc := NewRoomRateService(testLogger())
	session := testSearchSession()

	rec, err := svc.ResolveRecommendation(session, "rec-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"rt1"}, rec.RateIDs)

	_, err = svc.ResolveRecommendation(session, "rec-missing")
	assert.ErrorIs(t, err, ErrRecommendationNotFound)
}

func TestBuildSelection(t *testing.T) {
	svc := NewRoomRateService(testLogger())
	session := testSearchSession()

	rec, err := svc.ResolveRecommendation(session, "rec-1")
	require.NoError(t, err)

	selection, err := svc.BuildSelection(session, rec)
	require.NoError(t, err)
	require.Len(t, selection, 2)

	assert.Equal(t, "rt1", selection[0].RateID)
	assert.Equal(t, "r1", selection[0].RoomID)
	assert.Equal(t, "Deluxe King", selection[0].RoomDetails.RoomName)
	assert.Equal(t, 2, selection[0].Occupancy.Adults)

	assert.Equal(t, "rt2", selection[1].RateID)
	assert.Equal(t, []int{6}, selection[1].Occupancy.ChildAges)
}

func TestBuildSelectionUnknownRate(t *testing.T) {
	svc := NewRoomRateService(testLogger())
	session := testSearchSession()

	rec := &models.RoomRateRecommendation{ID: "rec-x", RateIDs: []string{"rt1", "rt-missing"}}
	_, err := svc.BuildSelection(session, rec)
	assert.ErrorIs(t, err, ErrRateNotFound)
}

func TestComputeTotalSumsFinalRates(t *testing.T) {
	svc := NewRoomRateService(testLogger())
	session := testSearchSession()

	rec, err := svc.ResolveRecommendation(session, "rec-1")
	require.NoError(t, err)
	selection, err := svc.BuildSelection(session, rec)
	require.NoError(t, err)

	total, currency, err := svc.ComputeTotal(session, selection)
	require.NoError(t, err)
	assert.Equal(t, 10000.0, total)
	assert.Equal(t, "INR", currency)
}

func TestComputeTotalSameRoomTwice(t *testing.T) {
	svc := NewRoomRateService(testLogger())
	session := testSearchSession()
	session.Recommendations["standard"] = append(
		session.Recommendations["standard"],
		models.RoomRateRecommendation{ID: "rec-double", GroupID: "standard", RateIDs: []string{"rt1", "rt1"}},
	)

	rec, err := svc.ResolveRecommendation(session, "rec-double")
	require.NoError(t, err)
	selection, err := svc.BuildSelection(session, rec)
	require.NoError(t, err)
	require.Len(t, selection, 2)

	total, _, err := svc.ComputeTotal(session, selection)
	require.NoError(t, err)
	assert.Equal(t, 12000.0, total)
}
