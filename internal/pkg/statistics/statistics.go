package statistics

import (
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/dirboard/DirBoard/app/models"
	"github.com/dirboard/DirBoard/internal/pkg/cache"
	"github.com/dirboard/DirBoard/internal/pkg/database"
)

const (
	CacheKeyActiveSponsors = "statistics:sponsors:active"
	CacheKeyWaitlistTotal  = "statistics:waitlist:total"
	CacheKeyPaidInvoices   = "statistics:invoices:paid"
	CacheExpiration        = 30 * time.Minute
)

// StatisticsData holds the occupancy numbers shown on the landing page
type StatisticsData struct {
	ActiveSponsors int
	WaitlistSize   int
	PaidInvoices   int
}

var (
	lastCacheUpdate     time.Time
	cacheUpdateMutex    sync.Mutex
	cacheUpdateInterval = 5 * time.Minute
)

// ShouldUpdateCache checks whether the cache is due for a refresh
func ShouldUpdateCache() bool {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	return time.Since(lastCacheUpdate) > cacheUpdateInterval
}

// UpdateCacheIfNeeded refreshes the cache when the interval has elapsed
func UpdateCacheIfNeeded() {
	if ShouldUpdateCache() {
		cacheUpdateMutex.Lock()
		defer cacheUpdateMutex.Unlock()

		log.Println("Updating statistics cache...")
		if err := UpdateStatisticsCache(); err != nil {
			log.Printf("Failed to update statistics cache: %v", err)
		} else {
			log.Println("Statistics cache updated successfully")
			lastCacheUpdate = time.Now()
		}
	}
}

// ResetCacheUpdateTimer forces the next check to refresh
func ResetCacheUpdateTimer() {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	lastCacheUpdate = time.Time{}
}

// UpdateStatisticsCache recomputes all statistics and stores them in the cache
func UpdateStatisticsCache() error {
	db := database.GetDB()
	now := time.Now()

	var activeSponsors int64
	if err := db.Model(&models.SponsoredListing{}).Where("campaign_end_date > ?", now).Count(&activeSponsors).Error; err != nil {
		log.Printf("Error counting active sponsorships: %v", err)
		return err
	}

	var waitlistSize int64
	if err := db.Model(&models.SponsoredListingOpeningNotification{}).Where("is_reminder_sent = ?", false).Count(&waitlistSize).Error; err != nil {
		log.Printf("Error counting waitlist entries: %v", err)
		return err
	}

	var paidInvoices int64
	if err := db.Model(&models.SponsoredListingInvoice{}).Where("payment_status = ?", models.PaymentStatusPaid).Count(&paidInvoices).Error; err != nil {
		log.Printf("Error counting paid invoices: %v", err)
		return err
	}

	if err := cache.Set(CacheKeyActiveSponsors, strconv.FormatInt(activeSponsors, 10), CacheExpiration); err != nil {
		log.Printf("Error caching active sponsorships: %v", err)
		return err
	}
	if err := cache.Set(CacheKeyWaitlistTotal, strconv.FormatInt(waitlistSize, 10), CacheExpiration); err != nil {
		log.Printf("Error caching waitlist size: %v", err)
		return err
	}
	if err := cache.Set(CacheKeyPaidInvoices, strconv.FormatInt(paidInvoices, 10), CacheExpiration); err != nil {
		log.Printf("Error caching paid invoice count: %v", err)
		return err
	}

	log.Printf("Statistics updated in cache: Active Sponsors: %d, Waitlist: %d, Paid Invoices: %d",
		activeSponsors, waitlistSize, paidInvoices)

	return nil
}

// GetStatistics reads the cached statistics, refreshing the cache on a miss
func GetStatistics() StatisticsData {
	data := StatisticsData{}

	active, err := cache.GetInt(CacheKeyActiveSponsors)
	if err != nil {
		if err := UpdateStatisticsCache(); err != nil {
			return data
		}
		active, _ = cache.GetInt(CacheKeyActiveSponsors)
	}
	data.ActiveSponsors = active

	if waiting, err := cache.GetInt(CacheKeyWaitlistTotal); err == nil {
		data.WaitlistSize = waiting
	}
	if paid, err := cache.GetInt(CacheKeyPaidInvoices); err == nil {
		data.PaidInvoices = paid
	}

	return data
}
