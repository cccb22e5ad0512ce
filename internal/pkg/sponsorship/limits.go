package sponsorship

import (
	"fmt"
	"time"

	"github.com/dirboard/DirBoard/app/models"
)

// Limits carries the fixed capacity configuration. Pools are intentionally
// small; sponsorships are a scarcity product.
type Limits struct {
	MainSlots          int
	CategorySlots      int
	SubcategorySlots   int
	MainPerSubcategory int
	ReservationWindow  time.Duration

	// AdmittedMinAgeDays is how long an admitted but unverified listing must
	// exist before it may buy a sponsorship. Verified listings skip the wait.
	AdmittedMinAgeDays int
}

// DefaultLimits returns the production capacity configuration.
func DefaultLimits() Limits {
	return Limits{
		MainSlots:          5,
		CategorySlots:      2,
		SubcategorySlots:   1,
		MainPerSubcategory: 2,
		ReservationWindow:  60 * time.Minute,
		AdmittedMinAgeDays: 30,
	}
}

// MaxSlots returns the pool size for a sponsorship type.
func (l Limits) MaxSlots(sponsorshipType models.SponsorshipType) int {
	switch sponsorshipType {
	case models.SponsorshipTypeMain:
		return l.MainSlots
	case models.SponsorshipTypeCategory:
		return l.CategorySlots
	case models.SponsorshipTypeSubcategory:
		return l.SubcategorySlots
	default:
		return 0
	}
}

// ReservationGroup encodes (type, scope) into the key under which checkout
// holds are counted together. The main pool is site-wide and carries no scope.
func ReservationGroup(sponsorshipType models.SponsorshipType, scopeID *uint) string {
	if sponsorshipType == models.SponsorshipTypeMain || scopeID == nil {
		return string(sponsorshipType)
	}
	return fmt.Sprintf("%s-%d", sponsorshipType, *scopeID)
}
