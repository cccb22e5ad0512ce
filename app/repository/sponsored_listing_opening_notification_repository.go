package repository

import (
	"errors"
	"time"

	"github.com/dirboard/DirBoard/app/models"
	"gorm.io/gorm"
)

// sponsoredListingOpeningNotificationRepository implements the waitlist store
type sponsoredListingOpeningNotificationRepository struct {
	db *gorm.DB
}

// NewSponsoredListingOpeningNotificationRepository creates a waitlist repository backed by GORM.
func NewSponsoredListingOpeningNotificationRepository(db *gorm.DB) SponsoredListingOpeningNotificationRepository {
	return &sponsoredListingOpeningNotificationRepository{db: db}
}

func scopeFilter(q *gorm.DB, sponsorshipType models.SponsorshipType, typeID *uint) *gorm.DB {
	q = q.Where("sponsorship_type = ?", sponsorshipType)
	if sponsorshipType == models.SponsorshipTypeMain || typeID == nil {
		return q.Where("type_id IS NULL")
	}
	return q.Where("type_id = ?", *typeID)
}

// Upsert keeps at most one active entry per (email, type, scope). An existing
// not-yet-reminded row only gets its subscribed date refreshed; a reminded row
// does not block re-subscribing.
func (r *sponsoredListingOpeningNotificationRepository) Upsert(email string, sponsorshipType models.SponsorshipType, typeID *uint, directoryEntryID *uint, now time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.SponsoredListingOpeningNotification
		q := scopeFilter(tx.Where("email = ? AND is_reminder_sent = ?", email, false), sponsorshipType, typeID)
		err := q.First(&existing).Error
		if err == nil {
			return tx.Model(&existing).
				Updates(map[string]interface{}{
					"subscribed_date":    now,
					"directory_entry_id": directoryEntryID,
				}).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		entry := models.SponsoredListingOpeningNotification{
			Email:            email,
			SponsorshipType:  sponsorshipType,
			TypeID:           typeID,
			DirectoryEntryID: directoryEntryID,
			SubscribedDate:   now,
		}
		if sponsorshipType == models.SponsorshipTypeMain {
			entry.TypeID = nil
		}
		return tx.Create(&entry).Error
	})
}

func (r *sponsoredListingOpeningNotificationRepository) GetCount(sponsorshipType models.SponsorshipType, typeID *uint) (int64, error) {
	var count int64
	err := scopeFilter(r.db.Model(&models.SponsoredListingOpeningNotification{}).Where("is_reminder_sent = ?", false), sponsorshipType, typeID).
		Count(&count).Error
	return count, err
}

// GetPreview returns the newest subscribers first, capped at take.
func (r *sponsoredListingOpeningNotificationRepository) GetPreview(sponsorshipType models.SponsorshipType, typeID *uint, take int) ([]models.SponsoredListingOpeningNotification, error) {
	var entries []models.SponsoredListingOpeningNotification
	err := scopeFilter(r.db.Where("is_reminder_sent = ?", false), sponsorshipType, typeID).
		Order("subscribed_date DESC, id DESC").
		Limit(take).
		Find(&entries).Error
	return entries, err
}

func (r *sponsoredListingOpeningNotificationRepository) GetPaged(sponsorshipType models.SponsorshipType, typeID *uint, page, pageSize int) ([]models.SponsoredListingOpeningNotification, int64, error) {
	total, err := r.GetCount(sponsorshipType, typeID)
	if err != nil {
		return nil, 0, err
	}

	var entries []models.SponsoredListingOpeningNotification
	err = scopeFilter(r.db.Where("is_reminder_sent = ?", false), sponsorshipType, typeID).
		Order("subscribed_date DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entries).Error
	return entries, total, err
}

func (r *sponsoredListingOpeningNotificationRepository) GetPendingSubscribers() ([]models.SponsoredListingOpeningNotification, error) {
	var entries []models.SponsoredListingOpeningNotification
	err := r.db.
		Where("is_reminder_sent = ?", false).
		Order("subscribed_date ASC").
		Find(&entries).Error
	return entries, err
}

func (r *sponsoredListingOpeningNotificationRepository) MarkReminderSent(id uint, now time.Time) error {
	return r.db.Model(&models.SponsoredListingOpeningNotification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_reminder_sent":   true,
			"reminder_sent_date": now,
		}).Error
}
