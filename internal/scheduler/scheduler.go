package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// RecordDeleter is the slice of the store the pruner needs.
type RecordDeleter interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Pruner periodically deletes records older than the retention cutoff.
type Pruner struct {
	scheduler *gocron.Scheduler
	store     RecordDeleter
	maxAge    time.Duration
	interval  time.Duration
}

// NewPruner creates a new Pruner. A maxAge of zero disables it.
func NewPruner(store RecordDeleter, maxAge, interval time.Duration) *Pruner {
	s := gocron.NewScheduler(time.UTC)
	return &Pruner{
		scheduler: s,
		store:     store,
		maxAge:    maxAge,
		interval:  interval,
	}
}

// Start schedules the pruning job and starts the underlying scheduler.
func (p *Pruner) Start() error {
	if p.maxAge <= 0 {
		log.Println("pruner: retention disabled; nothing to schedule")
		return nil
	}

	minutes := int(p.interval.Minutes())
	if minutes <= 0 {
		minutes = 60
	}

	_, err := p.scheduler.Every(minutes).Minutes().Do(p.prune)
	if err != nil {
		return err
	}

	p.scheduler.StartAsync()
	return nil
}

func (p *Pruner) prune() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().UTC().Add(-p.maxAge)
	n, err := p.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		log.Printf("pruner: delete failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("pruner: deleted %d records created before %s", n, cutoff.Format(time.RFC3339))
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (p *Pruner) Stop() {
	if p.scheduler != nil {
		p.scheduler.Stop()
	}
}
