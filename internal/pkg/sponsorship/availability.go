package sponsorship

import (
	"time"

	"github.com/dirboard/DirBoard/app/models"
	"github.com/dirboard/DirBoard/app/repository"
)

// Holder is one current occupant of a slot, surfaced so buyers can see who
// they are competing with and when the slot frees up.
type Holder struct {
	DirectoryEntryID uint      `json:"directory_entry_id"`
	Name             string    `json:"name"`
	Link             string    `json:"link"`
	CampaignEndDate  time.Time `json:"campaign_end_date"`
	IsYou            bool      `json:"is_you"`
}

// Availability is the computed capacity snapshot for one scope. It is
// advisory only; nothing holds a lock between reading it and reserving.
type Availability struct {
	SponsorshipType         models.SponsorshipType `json:"sponsorship_type"`
	ScopeID                 *uint                  `json:"scope_id,omitempty"`
	IsAvailable             bool                   `json:"is_available"`
	IsExtension             bool                   `json:"is_extension"`
	ActiveCount             int64                  `json:"active_count"`
	MaxSlots                int                    `json:"max_slots"`
	ReservedCount           int64                  `json:"reserved_count"`
	BlockedBySubcategoryCap bool                   `json:"blocked_by_subcategory_cap"`
	NextOpening             *time.Time             `json:"next_opening,omitempty"`
	ActiveHolders           []Holder               `json:"active_holders"`
}

// Resolver computes free/total slots by combining active grants and active
// checkout holds. Capacity is always recomputed from the ledger at read time,
// never cached as a counter.
type Resolver struct {
	listings     repository.SponsoredListingRepository
	reservations repository.SponsoredListingReservationRepository
	limits       Limits
}

// NewResolver creates an availability resolver.
func NewResolver(listings repository.SponsoredListingRepository, reservations repository.SponsoredListingReservationRepository, limits Limits) *Resolver {
	return &Resolver{listings: listings, reservations: reservations, limits: limits}
}

// Check resolves availability of one scope for a buyer's listing. The buyer's
// own subcategory decides the per-subcategory cap on main sponsors; callers
// pass callerSubcategoryID from the listing they intend to advertise.
func (r *Resolver) Check(sponsorshipType models.SponsorshipType, scopeID *uint, callerEntryID uint, callerSubcategoryID uint, now time.Time) (*Availability, error) {
	out := &Availability{
		SponsorshipType: sponsorshipType,
		ScopeID:         scopeID,
		MaxSlots:        r.limits.MaxSlots(sponsorshipType),
	}

	active, err := r.listings.GetActiveByType(sponsorshipType, now)
	if err != nil {
		return nil, err
	}
	scoped := filterByScope(active, sponsorshipType, scopeID)

	out.ActiveCount = int64(len(scoped))
	for _, l := range scoped {
		h := Holder{
			DirectoryEntryID: l.DirectoryEntryID,
			CampaignEndDate:  l.CampaignEndDate,
			IsYou:            l.DirectoryEntryID == callerEntryID,
		}
		if l.DirectoryEntry != nil {
			h.Name = l.DirectoryEntry.Name
			h.Link = l.DirectoryEntry.Link
		}
		out.ActiveHolders = append(out.ActiveHolders, h)
		if h.IsYou {
			out.IsExtension = true
		}
	}

	// An existing holder extending its own campaign bypasses every capacity
	// rule; the slot is already theirs.
	if out.IsExtension {
		out.IsAvailable = true
		return out, nil
	}

	if sponsorshipType == models.SponsorshipTypeMain && callerSubcategoryID != 0 {
		sameSubcategory := 0
		var earliestEnd *time.Time
		for _, l := range scoped {
			if l.DirectoryEntry == nil || l.DirectoryEntry.SubcategoryID != callerSubcategoryID {
				continue
			}
			sameSubcategory++
			if earliestEnd == nil || l.CampaignEndDate.Before(*earliestEnd) {
				end := l.CampaignEndDate
				earliestEnd = &end
			}
		}
		if sameSubcategory >= r.limits.MainPerSubcategory {
			out.BlockedBySubcategoryCap = true
			out.NextOpening = earliestEnd
			return out, nil
		}
	}

	if int(out.ActiveCount) >= out.MaxSlots {
		if len(scoped) > 0 {
			end := scoped[0].CampaignEndDate
			out.NextOpening = &end
		}
		return out, nil
	}

	group := ReservationGroup(sponsorshipType, scopeID)
	reserved, err := r.reservations.GetActiveCount(group, now)
	if err != nil {
		return nil, err
	}
	out.ReservedCount = reserved

	if reserved >= int64(out.MaxSlots)-out.ActiveCount {
		if exp, err := r.reservations.GetEarliestActiveExpiration(group, now); err == nil && exp != nil {
			out.NextOpening = exp
		}
		return out, nil
	}

	out.IsAvailable = true
	return out, nil
}

// filterByScope narrows active grants of one type down to a scope. A grant
// matches either through its direct scope column or through the scope implied
// by its directory entry.
func filterByScope(listings []models.SponsoredListing, sponsorshipType models.SponsorshipType, scopeID *uint) []models.SponsoredListing {
	if sponsorshipType == models.SponsorshipTypeMain || scopeID == nil {
		return listings
	}

	var out []models.SponsoredListing
	for _, l := range listings {
		switch sponsorshipType {
		case models.SponsorshipTypeCategory:
			if l.CategoryID != nil && *l.CategoryID == *scopeID {
				out = append(out, l)
				continue
			}
			if l.DirectoryEntry != nil && l.DirectoryEntry.Subcategory != nil && l.DirectoryEntry.Subcategory.CategoryID == *scopeID {
				out = append(out, l)
			}
		case models.SponsorshipTypeSubcategory:
			if l.SubcategoryID != nil && *l.SubcategoryID == *scopeID {
				out = append(out, l)
				continue
			}
			if l.DirectoryEntry != nil && l.DirectoryEntry.SubcategoryID == *scopeID {
				out = append(out, l)
			}
		}
	}
	return out
}
