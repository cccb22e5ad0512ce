package repository

import (
	"github.com/dirboard/DirBoard/app/models"
	"gorm.io/gorm"
)

// sponsoredListingOfferRepository implements the offer catalog store
type sponsoredListingOfferRepository struct {
	db *gorm.DB
}

// NewSponsoredListingOfferRepository creates an offer repository backed by GORM.
func NewSponsoredListingOfferRepository(db *gorm.DB) SponsoredListingOfferRepository {
	return &sponsoredListingOfferRepository{db: db}
}

func (r *sponsoredListingOfferRepository) Create(offer *models.SponsoredListingOffer) error {
	return r.db.Create(offer).Error
}

func (r *sponsoredListingOfferRepository) Update(offer *models.SponsoredListingOffer) error {
	return r.db.Save(offer).Error
}

func (r *sponsoredListingOfferRepository) GetByID(id uint) (*models.SponsoredListingOffer, error) {
	var offer models.SponsoredListingOffer
	if err := r.db.First(&offer, id).Error; err != nil {
		return nil, err
	}
	return &offer, nil
}

// GetEnabledByTypeAndSubcategory returns enabled offers for a type, shortest
// campaign first. When a subcategory has its own offers those replace the
// generic set; otherwise the generic offers apply.
func (r *sponsoredListingOfferRepository) GetEnabledByTypeAndSubcategory(sponsorshipType models.SponsorshipType, subcategoryID *uint) ([]models.SponsoredListingOffer, error) {
	var offers []models.SponsoredListingOffer

	if subcategoryID != nil {
		err := r.db.
			Where("sponsorship_type = ? AND is_enabled = ? AND subcategory_id = ?", sponsorshipType, true, *subcategoryID).
			Order("days ASC").
			Find(&offers).Error
		if err != nil {
			return nil, err
		}
		if len(offers) > 0 {
			return offers, nil
		}
	}

	err := r.db.
		Where("sponsorship_type = ? AND is_enabled = ? AND subcategory_id IS NULL", sponsorshipType, true).
		Order("days ASC").
		Find(&offers).Error
	return offers, err
}
