package services

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/sortyourtrip/hotel-crm-backend/internal/models"
)

var (
	// ErrRecommendationNotFound indicates an unknown recommendation id
	ErrRecommendationNotFound = errors.New("recommendation not found")

	// ErrRateNotFound indicates a recommendation referencing a missing rate
	ErrRateNotFound = errors.New("rate not found for recommendation")
)

// RoomRateService resolves recommendation ids into concrete room/rate
// selections and prices them. It operates purely on the session's search
// context; no supplier calls are made here.
type RoomRateService struct {
	logger *logrus.Logger
}

// NewRoomRateService creates a new room rate service
func NewRoomRateService(logger *logrus.Logger) *RoomRateService {
	return &RoomRateService{logger: logger}
}

// ResolveRecommendation finds a recommendation by id across all groups.
func (s *RoomRateService) ResolveRecommendation(session *models.BookingSession, recommendationID string) (*models.RoomRateRecommendation, error) {
	for _, group := range session.Recommendations {
		for i := range group {
			if group[i].ID == recommendationID {
				return &group[i], nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrRecommendationNotFound, recommendationID)
}

// BuildSelection expands a recommendation into one SelectedRoom per rate id,
// in the recommendation's order. Each room occupies its own slot even when
// the same physical room appears twice.
func (s *RoomRateService) BuildSelection(session *models.BookingSession, rec *models.RoomRateRecommendation) ([]models.SelectedRoom, error) {
	selection := make([]models.SelectedRoom, 0, len(rec.RateIDs))
	for _, rateID := range rec.RateIDs {
		rate, ok := session.Rates[rateID]
		if !ok {
			return nil, fmt.Errorf("%w: rate %s in recommendation %s", ErrRateNotFound, rateID, rec.ID)
		}

		room := models.SelectedRoom{
			RateID: rateID,
			RoomID: rate.RoomID,
		}
		if details, ok := session.Rooms[rate.RoomID]; ok {
			room.RoomDetails = details
		} else {
			room.RoomDetails = models.RoomDetails{RoomID: rate.RoomID}
		}
		if occ, ok := session.Occupancies[rate.RoomID]; ok {
			room.Occupancy = occ
		}
		selection = append(selection, room)
	}
	return selection, nil
}

// ComputeTotal sums the final rates of a selection. The displayed total is
// always this sum; individual room prices are never shown in isolation.
func (s *RoomRateService) ComputeTotal(session *models.BookingSession, selection []models.SelectedRoom) (float64, string, error) {
	var total float64
	currency := ""
	for _, room := range selection {
		rate, ok := session.Rates[room.RateID]
		if !ok {
			return 0, "", fmt.Errorf("%w: %s", ErrRateNotFound, room.RateID)
		}
		total += rate.FinalRate
		if currency == "" {
			currency = rate.Currency
		}
	}
	return total, currency, nil
}
