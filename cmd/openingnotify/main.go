package main

import (
	"fmt"
	"log"
	"time"

	"github.com/dirboard/DirBoard/app/models"
	"github.com/dirboard/DirBoard/app/repository"
	"github.com/dirboard/DirBoard/internal/pkg/database"
	"github.com/dirboard/DirBoard/internal/pkg/env"
	"github.com/dirboard/DirBoard/internal/pkg/mail"
	"github.com/dirboard/DirBoard/internal/pkg/sponsorship"
)

// openingnotify walks the waitlist and emails subscribers whose scope has a
// free slot again. Intended to run from cron; every reminder is sent at most
// once per subscription.
func main() {
	env.SetupEnvFile()
	database.SetupDatabase()

	repos := repository.NewRepositories(database.GetDB())
	resolver := sponsorship.NewResolver(repos.SponsoredListing, repos.Reservation, sponsorship.DefaultLimits())

	pending, err := repos.OpeningNotification.GetPendingSubscribers()
	if err != nil {
		log.Fatalf("Failed to load waitlist: %v", err)
	}
	if len(pending) == 0 {
		log.Println("No pending waitlist subscribers")
		return
	}

	now := time.Now()
	sent := 0
	for _, entry := range pending {
		avail, err := resolver.Check(entry.SponsorshipType, entry.TypeID, 0, 0, now)
		if err != nil {
			log.Printf("Availability check failed for waitlist entry %d: %v", entry.ID, err)
			continue
		}
		if !avail.IsAvailable {
			continue
		}

		// Subscribers whose listing already holds a slot of this type don't
		// need the nudge; their entry stays pending for the next run.
		if entry.DirectoryEntryID != nil {
			holds, err := repos.SponsoredListing.IsActiveForEntry(*entry.DirectoryEntryID, entry.SponsorshipType, now)
			if err != nil {
				log.Printf("Holder check failed for waitlist entry %d: %v", entry.ID, err)
				continue
			}
			if holds {
				continue
			}
		}

		subject := "A sponsorship slot has opened up"
		body := fmt.Sprintf(
			"<p>Good news: a %s slot you were waiting for is available again.</p>"+
				"<p>Slots are first come, first served, so head over and grab it.</p>",
			scopeLabel(entry.SponsorshipType),
		)
		if err := mail.SendMail(entry.Email, subject, body); err != nil {
			log.Printf("Failed to notify %s: %v", entry.Email, err)
			continue
		}
		if err := repos.OpeningNotification.MarkReminderSent(entry.ID, now); err != nil {
			log.Printf("Failed to mark reminder sent for entry %d: %v", entry.ID, err)
			continue
		}
		sent++
	}

	log.Printf("Waitlist run complete: %d of %d subscribers notified", sent, len(pending))
}

func scopeLabel(t models.SponsorshipType) string {
	switch t {
	case models.SponsorshipTypeMain:
		return "main sponsor"
	case models.SponsorshipTypeCategory:
		return "category sponsor"
	case models.SponsorshipTypeSubcategory:
		return "subcategory sponsor"
	default:
		return "sponsor"
	}
}
