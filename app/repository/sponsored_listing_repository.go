package repository

import (
	"errors"
	"time"

	"github.com/dirboard/DirBoard/app/models"
	"gorm.io/gorm"
)

// sponsoredListingRepository implements the SponsoredListingRepository interface
type sponsoredListingRepository struct {
	db *gorm.DB
}

// NewSponsoredListingRepository creates a slot ledger repository backed by GORM.
func NewSponsoredListingRepository(db *gorm.DB) SponsoredListingRepository {
	return &sponsoredListingRepository{db: db}
}

func (r *sponsoredListingRepository) Create(listing *models.SponsoredListing) error {
	return r.db.Create(listing).Error
}

func (r *sponsoredListingRepository) GetByID(id uint) (*models.SponsoredListing, error) {
	var listing models.SponsoredListing
	err := r.db.Preload("DirectoryEntry").First(&listing, id).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *sponsoredListingRepository) GetByInvoiceID(invoiceID uint) (*models.SponsoredListing, error) {
	var listing models.SponsoredListing
	err := r.db.Where("sponsored_listing_invoice_id = ?", invoiceID).First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// GetActiveByType returns active grants of one type, next-to-expire first,
// with the entry and its subcategory preloaded for scope filtering.
func (r *sponsoredListingRepository) GetActiveByType(sponsorshipType models.SponsorshipType, now time.Time) ([]models.SponsoredListing, error) {
	var listings []models.SponsoredListing
	err := r.db.
		Preload("DirectoryEntry").
		Preload("DirectoryEntry.Subcategory").
		Where("sponsorship_type = ? AND campaign_end_date > ?", sponsorshipType, now).
		Order("campaign_end_date ASC").
		Find(&listings).Error
	return listings, err
}

// GetActiveCount counts active grants in a scope. Category and subcategory
// scopes match the direct scope column or, as a fallback for rows written
// without one, the scope implied by the referenced directory entry.
func (r *sponsoredListingRepository) GetActiveCount(sponsorshipType models.SponsorshipType, scopeID *uint, now time.Time) (int64, error) {
	q := r.db.Model(&models.SponsoredListing{}).
		Where("sponsored_listings.sponsorship_type = ? AND sponsored_listings.campaign_end_date > ?", sponsorshipType, now)

	switch sponsorshipType {
	case models.SponsorshipTypeMain:
		// site-wide pool, scope id ignored
	case models.SponsorshipTypeCategory:
		if scopeID == nil {
			return 0, errors.New("category sponsor count requires a category id")
		}
		q = q.Joins("JOIN directory_entries ON directory_entries.id = sponsored_listings.directory_entry_id").
			Joins("JOIN subcategories ON subcategories.id = directory_entries.subcategory_id").
			Where("sponsored_listings.category_id = ? OR subcategories.category_id = ?", *scopeID, *scopeID)
	case models.SponsorshipTypeSubcategory:
		if scopeID == nil {
			return 0, errors.New("subcategory sponsor count requires a subcategory id")
		}
		q = q.Joins("JOIN directory_entries ON directory_entries.id = sponsored_listings.directory_entry_id").
			Where("sponsored_listings.subcategory_id = ? OR directory_entries.subcategory_id = ?", *scopeID, *scopeID)
	default:
		return 0, errors.New("unknown sponsorship type")
	}

	var count int64
	err := q.Count(&count).Error
	return count, err
}

func (r *sponsoredListingRepository) GetActiveForEntry(directoryEntryID uint, sponsorshipType models.SponsorshipType, now time.Time) (*models.SponsoredListing, error) {
	var listing models.SponsoredListing
	err := r.db.
		Where("directory_entry_id = ? AND sponsorship_type = ? AND campaign_end_date > ?",
			directoryEntryID, sponsorshipType, now).
		First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *sponsoredListingRepository) IsActiveForEntry(directoryEntryID uint, sponsorshipType models.SponsorshipType, now time.Time) (bool, error) {
	_, err := r.GetActiveForEntry(directoryEntryID, sponsorshipType, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetNextExpiration returns the soonest future campaign end, or nil when no
// campaign outlives now.
func (r *sponsoredListingRepository) GetNextExpiration(now time.Time) (*time.Time, error) {
	var listing models.SponsoredListing
	err := r.db.
		Where("campaign_end_date > ?", now).
		Order("campaign_end_date ASC").
		First(&listing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &listing.CampaignEndDate, nil
}

func (r *sponsoredListingRepository) GetPaginated(page, pageSize int) ([]models.SponsoredListing, int64, error) {
	var total int64
	if err := r.db.Model(&models.SponsoredListing{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var listings []models.SponsoredListing
	err := r.db.
		Preload("DirectoryEntry").
		Order("campaign_end_date DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&listings).Error
	return listings, total, err
}
