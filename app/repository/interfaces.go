package repository

import (
	"time"

	"github.com/dirboard/DirBoard/app/models"
	"gorm.io/gorm"
)

// SponsoredListingRepository defines database operations on the slot ledger,
// the authoritative table of paid grants.
type SponsoredListingRepository interface {
	Create(listing *models.SponsoredListing) error
	GetByID(id uint) (*models.SponsoredListing, error)
	GetByInvoiceID(invoiceID uint) (*models.SponsoredListing, error)
	GetActiveByType(sponsorshipType models.SponsorshipType, now time.Time) ([]models.SponsoredListing, error)
	GetActiveCount(sponsorshipType models.SponsorshipType, scopeID *uint, now time.Time) (int64, error)
	GetActiveForEntry(directoryEntryID uint, sponsorshipType models.SponsorshipType, now time.Time) (*models.SponsoredListing, error)
	IsActiveForEntry(directoryEntryID uint, sponsorshipType models.SponsorshipType, now time.Time) (bool, error)
	GetNextExpiration(now time.Time) (*time.Time, error)
	GetPaginated(page, pageSize int) ([]models.SponsoredListing, int64, error)
}

// SponsoredListingReservationRepository manages checkout holds. Holds lapse
// by wall clock; nothing ever deletes them.
type SponsoredListingReservationRepository interface {
	Create(reservation *models.SponsoredListingReservation) error
	GetByReservationID(reservationID string) (*models.SponsoredListingReservation, error)
	GetActiveCount(group string, now time.Time) (int64, error)
	GetEarliestActiveExpiration(group string, now time.Time) (*time.Time, error)
	ExtendExpiration(reservationID string, newExpiration time.Time) (bool, error)
}

// SponsoredListingInvoiceRepository stores purchase attempts and serves the
// reporting queries that aggregate over paid invoices.
type SponsoredListingInvoiceRepository interface {
	Create(invoice *models.SponsoredListingInvoice) error
	Update(invoice *models.SponsoredListingInvoice) error
	GetByID(id uint) (*models.SponsoredListingInvoice, error)
	GetByInvoiceID(invoiceID string) (*models.SponsoredListingInvoice, error)
	GetByProcessorInvoiceID(processorInvoiceID string) (*models.SponsoredListingInvoice, error)
	GetByReservationID(reservationID string) (*models.SponsoredListingInvoice, error)
	GetPage(page, pageSize int) ([]models.SponsoredListingInvoice, int64, error)
	GetPageByStatus(status models.PaymentStatus, page, pageSize int) ([]models.SponsoredListingInvoice, int64, error)
	GetPaidOverlappingWindow(from, to time.Time) ([]models.SponsoredListingInvoice, error)
	GetRecentPaid(limit int) ([]models.SponsoredListingInvoice, error)
	GetTotalsPaid(from, to time.Time) (*InvoiceTotals, error)
	GetForEntryInWindow(directoryEntryID uint, from, to time.Time, sponsorshipType *models.SponsorshipType, paidOnly bool, page, pageSize int) ([]models.SponsoredListingInvoice, int64, error)
}

// SponsoredListingOpeningNotificationRepository is the waitlist registry.
type SponsoredListingOpeningNotificationRepository interface {
	Upsert(email string, sponsorshipType models.SponsorshipType, typeID *uint, directoryEntryID *uint, now time.Time) error
	GetCount(sponsorshipType models.SponsorshipType, typeID *uint) (int64, error)
	GetPreview(sponsorshipType models.SponsorshipType, typeID *uint, take int) ([]models.SponsoredListingOpeningNotification, error)
	GetPaged(sponsorshipType models.SponsorshipType, typeID *uint, page, pageSize int) ([]models.SponsoredListingOpeningNotification, int64, error)
	GetPendingSubscribers() ([]models.SponsoredListingOpeningNotification, error)
	MarkReminderSent(id uint, now time.Time) error
}

// SponsoredListingOfferRepository serves the static offer catalog.
type SponsoredListingOfferRepository interface {
	Create(offer *models.SponsoredListingOffer) error
	Update(offer *models.SponsoredListingOffer) error
	GetByID(id uint) (*models.SponsoredListingOffer, error)
	GetEnabledByTypeAndSubcategory(sponsorshipType models.SponsorshipType, subcategoryID *uint) ([]models.SponsoredListingOffer, error)
}

// DirectoryEntryRepository reads listings owned by the directory system.
type DirectoryEntryRepository interface {
	GetByID(id uint) (*models.DirectoryEntry, error)
	GetByIDs(ids []uint) (map[uint]models.DirectoryEntry, error)
	CountActiveByCategory(categoryID uint) (int64, error)
	CountActiveBySubcategory(subcategoryID uint) (int64, error)
}

// CategoryRepository reads category and subcategory names for scope labels.
type CategoryRepository interface {
	GetByID(id uint) (*models.Category, error)
	GetSubcategoryByID(id uint) (*models.Subcategory, error)
}

// InvoiceTotals summarizes paid invoices created inside a window.
type InvoiceTotals struct {
	From                time.Time
	To                  time.Time
	Currency            string
	PaidInCurrency      string
	TotalAmount         float64
	TotalReceivedAmount float64
	InvoiceCount        int
}

// Repositories struct holds all repository instances
type Repositories struct {
	SponsoredListing    SponsoredListingRepository
	Reservation         SponsoredListingReservationRepository
	Invoice             SponsoredListingInvoiceRepository
	OpeningNotification SponsoredListingOpeningNotificationRepository
	Offer               SponsoredListingOfferRepository
	DirectoryEntry      DirectoryEntryRepository
	Category            CategoryRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		SponsoredListing:    NewSponsoredListingRepository(db),
		Reservation:         NewSponsoredListingReservationRepository(db),
		Invoice:             NewSponsoredListingInvoiceRepository(db),
		OpeningNotification: NewSponsoredListingOpeningNotificationRepository(db),
		Offer:               NewSponsoredListingOfferRepository(db),
		DirectoryEntry:      NewDirectoryEntryRepository(db),
		Category:            NewCategoryRepository(db),
	}
}
