// services/scheduler.go
package services

import (
	"context"
	"fmt"
	"log"

	"ranked-tournaments/models"

	"github.com/go-co-op/gocron/v2"
)

// StartRankedScheduler runs the resolution pass and the season check in the
// background. Jobs never overlap themselves. The caller shuts the scheduler
// down on exit.
func StartRankedScheduler(ctx context.Context, ranked *RankedService, season *SeasonService) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	// Resolve queues whose timeout elapsed
	if _, err := sched.NewJob(
		gocron.DurationJob(ranked.Config.ResolveInterval),
		gocron.NewTask(func() {
			resolved, err := ranked.ResolveDue(ctx, models.TriggerAuto)
			if err != nil {
				log.Printf("[Scheduler] Resolution pass error: %v", err)
			}
			if len(resolved) > 0 {
				log.Printf("✅ [Scheduler] Auto-resolved %d queue(s)", len(resolved))
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return nil, fmt.Errorf("schedule resolution pass: %w", err)
	}

	// Close the season when the month changes
	if _, err := sched.NewJob(
		gocron.DurationJob(ranked.Config.SeasonCheckInterval),
		gocron.NewTask(func() {
			if _, err := season.Rollover(ctx); err != nil {
				log.Printf("[Scheduler] Season check error: %v", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return nil, fmt.Errorf("schedule season check: %w", err)
	}

	sched.Start()
	return sched, nil
}
