package reporting

import (
	"math"
	"time"

	"github.com/dirboard/DirBoard/app/models"
)

// OverlapDays is the day count a campaign window shares with a reporting
// window, both at day granularity. Zero or negative means no overlap.
func OverlapDays(campStart, campEnd, from, to time.Time) int {
	start := campStart
	if from.After(start) {
		start = from
	}
	end := campEnd
	if to.Before(end) {
		end = to
	}
	return int(end.Sub(start).Hours() / 24)
}

// ProratedAmount attributes the fraction of an invoice's amount whose
// campaign days fall inside the reporting window. Campaigns shorter than a
// day count as one day so same-day purchases still attribute revenue.
func ProratedAmount(invoice *models.SponsoredListingInvoice, from, to time.Time) float64 {
	overlap := OverlapDays(invoice.CampaignStartDate, invoice.CampaignEndDate, from, to)
	if overlap <= 0 {
		return 0
	}
	total := invoice.CampaignDays()
	if overlap > total {
		overlap = total
	}
	return invoice.Amount * float64(overlap) / float64(total)
}

// Round2 rounds monetary output to cents.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
