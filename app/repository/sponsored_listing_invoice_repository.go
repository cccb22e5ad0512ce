package repository

import (
	"time"

	"github.com/dirboard/DirBoard/app/models"
	"gorm.io/gorm"
)

// sponsoredListingInvoiceRepository implements the invoice store
type sponsoredListingInvoiceRepository struct {
	db *gorm.DB
}

// NewSponsoredListingInvoiceRepository creates an invoice repository backed by GORM.
func NewSponsoredListingInvoiceRepository(db *gorm.DB) SponsoredListingInvoiceRepository {
	return &sponsoredListingInvoiceRepository{db: db}
}

func (r *sponsoredListingInvoiceRepository) Create(invoice *models.SponsoredListingInvoice) error {
	return r.db.Create(invoice).Error
}

func (r *sponsoredListingInvoiceRepository) Update(invoice *models.SponsoredListingInvoice) error {
	return r.db.Save(invoice).Error
}

func (r *sponsoredListingInvoiceRepository) GetByID(id uint) (*models.SponsoredListingInvoice, error) {
	var invoice models.SponsoredListingInvoice
	if err := r.db.First(&invoice, id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *sponsoredListingInvoiceRepository) GetByInvoiceID(invoiceID string) (*models.SponsoredListingInvoice, error) {
	var invoice models.SponsoredListingInvoice
	if err := r.db.Where("invoice_id = ?", invoiceID).First(&invoice).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *sponsoredListingInvoiceRepository) GetByProcessorInvoiceID(processorInvoiceID string) (*models.SponsoredListingInvoice, error) {
	var invoice models.SponsoredListingInvoice
	if err := r.db.Where("processor_invoice_id = ?", processorInvoiceID).First(&invoice).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *sponsoredListingInvoiceRepository) GetByReservationID(reservationID string) (*models.SponsoredListingInvoice, error) {
	var invoice models.SponsoredListingInvoice
	err := r.db.Where("reservation_id = ?", reservationID).
		Order("created_at DESC").
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *sponsoredListingInvoiceRepository) GetPage(page, pageSize int) ([]models.SponsoredListingInvoice, int64, error) {
	var total int64
	if err := r.db.Model(&models.SponsoredListingInvoice{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoices []models.SponsoredListingInvoice
	err := r.db.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&invoices).Error
	return invoices, total, err
}

func (r *sponsoredListingInvoiceRepository) GetPageByStatus(status models.PaymentStatus, page, pageSize int) ([]models.SponsoredListingInvoice, int64, error) {
	base := r.db.Model(&models.SponsoredListingInvoice{}).Where("payment_status = ?", status)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoices []models.SponsoredListingInvoice
	err := r.db.
		Where("payment_status = ?", status).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&invoices).Error
	return invoices, total, err
}

// GetPaidOverlappingWindow returns paid invoices whose campaign window has at
// least one day in common with [from, to]. The overlap itself is prorated by
// the reporting layer.
func (r *sponsoredListingInvoiceRepository) GetPaidOverlappingWindow(from, to time.Time) ([]models.SponsoredListingInvoice, error) {
	var invoices []models.SponsoredListingInvoice
	err := r.db.
		Where("payment_status = ? AND campaign_start_date <= ? AND campaign_end_date >= ?",
			models.PaymentStatusPaid, to, from).
		Order("campaign_start_date ASC").
		Find(&invoices).Error
	return invoices, err
}

func (r *sponsoredListingInvoiceRepository) GetRecentPaid(limit int) ([]models.SponsoredListingInvoice, error) {
	var invoices []models.SponsoredListingInvoice
	err := r.db.
		Where("payment_status = ?", models.PaymentStatusPaid).
		Order("created_at DESC").
		Limit(limit).
		Find(&invoices).Error
	return invoices, err
}

// GetTotalsPaid sums paid invoices created inside the window. Amounts are in
// the quoted currency; received amounts are in whatever the buyer paid with.
func (r *sponsoredListingInvoiceRepository) GetTotalsPaid(from, to time.Time) (*InvoiceTotals, error) {
	var row struct {
		TotalAmount         float64
		TotalReceivedAmount float64
		InvoiceCount        int
	}
	err := r.db.Model(&models.SponsoredListingInvoice{}).
		Select("COALESCE(SUM(amount), 0) AS total_amount, COALESCE(SUM(paid_amount), 0) AS total_received_amount, COUNT(*) AS invoice_count").
		Where("payment_status = ? AND created_at >= ? AND created_at <= ?", models.PaymentStatusPaid, from, to).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	return &InvoiceTotals{
		From:                from,
		To:                  to,
		Currency:            models.CurrencyUSD,
		PaidInCurrency:      models.CurrencyXMR,
		TotalAmount:         row.TotalAmount,
		TotalReceivedAmount: row.TotalReceivedAmount,
		InvoiceCount:        row.InvoiceCount,
	}, nil
}

func (r *sponsoredListingInvoiceRepository) GetForEntryInWindow(directoryEntryID uint, from, to time.Time, sponsorshipType *models.SponsorshipType, paidOnly bool, page, pageSize int) ([]models.SponsoredListingInvoice, int64, error) {
	build := func() *gorm.DB {
		q := r.db.Model(&models.SponsoredListingInvoice{}).
			Where("directory_entry_id = ? AND created_at >= ? AND created_at <= ?", directoryEntryID, from, to)
		if sponsorshipType != nil {
			q = q.Where("sponsorship_type = ?", *sponsorshipType)
		}
		if paidOnly {
			q = q.Where("payment_status = ?", models.PaymentStatusPaid)
		}
		return q
	}

	var total int64
	if err := build().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoices []models.SponsoredListingInvoice
	err := build().
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&invoices).Error
	return invoices, total, err
}
