package repository

import (
	"errors"
	"time"

	"github.com/dirboard/DirBoard/app/models"
	"gorm.io/gorm"
)

// sponsoredListingReservationRepository implements the reservation store
type sponsoredListingReservationRepository struct {
	db *gorm.DB
}

// NewSponsoredListingReservationRepository creates a reservation repository backed by GORM.
func NewSponsoredListingReservationRepository(db *gorm.DB) SponsoredListingReservationRepository {
	return &sponsoredListingReservationRepository{db: db}
}

func (r *sponsoredListingReservationRepository) Create(reservation *models.SponsoredListingReservation) error {
	return r.db.Create(reservation).Error
}

func (r *sponsoredListingReservationRepository) GetByReservationID(reservationID string) (*models.SponsoredListingReservation, error) {
	var reservation models.SponsoredListingReservation
	err := r.db.Where("reservation_id = ?", reservationID).First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *sponsoredListingReservationRepository) GetActiveCount(group string, now time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.SponsoredListingReservation{}).
		Where("reservation_group = ? AND expiration_date > ?", group, now).
		Count(&count).Error
	return count, err
}

func (r *sponsoredListingReservationRepository) GetEarliestActiveExpiration(group string, now time.Time) (*time.Time, error) {
	var reservation models.SponsoredListingReservation
	err := r.db.
		Where("reservation_group = ? AND expiration_date > ?", group, now).
		Order("expiration_date ASC").
		First(&reservation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reservation.ExpirationDate, nil
}

// ExtendExpiration moves a hold's expiration forward only. An earlier
// timestamp is a no-op that still reports success; only an unknown
// reservation id returns false.
func (r *sponsoredListingReservationRepository) ExtendExpiration(reservationID string, newExpiration time.Time) (bool, error) {
	reservation, err := r.GetByReservationID(reservationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	if !newExpiration.After(reservation.ExpirationDate) {
		return true, nil
	}

	err = r.db.Model(&models.SponsoredListingReservation{}).
		Where("reservation_id = ?", reservationID).
		Update("expiration_date", newExpiration).Error
	if err != nil {
		return false, err
	}
	return true, nil
}
