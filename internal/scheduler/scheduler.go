package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// Purger drops expired entries and reports how many were removed.
type Purger interface {
	Purge() int
}

// Scheduler periodically evicts expired forecasts from the cache.
type Scheduler struct {
	scheduler *gocron.Scheduler
	cache     Purger
	interval  time.Duration
}

// New creates a new Scheduler.
func New(cache Purger, interval time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		cache:     cache,
		interval:  interval,
	}
}

// Start schedules the purge job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.cache == nil {
		log.Println("INFO: scheduler: no cache configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(s.purge)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) purge() {
	removed := s.cache.Purge()
	log.Printf("DEBUG: scheduler: purged %d expired forecasts", removed)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
