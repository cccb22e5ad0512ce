package main

import (
	"log"

	"github.com/dirboard/DirBoard/internal/pkg/cache"
	"github.com/dirboard/DirBoard/internal/pkg/database"
	"github.com/dirboard/DirBoard/internal/pkg/env"
	"github.com/dirboard/DirBoard/internal/pkg/metrics/counter"
	"github.com/dirboard/DirBoard/internal/pkg/statistics"
)

// housekeeping drains pending impression counters into the database and
// refreshes the cached landing-page statistics. Intended to run from cron.
func main() {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	if err := counter.FlushAll(); err != nil {
		log.Printf("Failed to flush impression counters: %v", err)
	} else {
		log.Println("Impression counters flushed")
	}

	if err := statistics.UpdateStatisticsCache(); err != nil {
		log.Printf("Failed to refresh statistics cache: %v", err)
	} else {
		log.Println("Statistics cache refreshed")
	}
}
