package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"ranked-tournaments/models"
)

const (
	AdminActionList            = "list"
	AdminActionForceResolve    = "force_resolve"
	AdminActionForceResolveAll = "force_resolve_all"
	AdminActionCancelQueue     = "cancel_queue"
	AdminActionClearAll        = "clear_all"
)

type AdminRequest struct {
	Action  string `json:"action"`
	QueueID string `json:"queue_id"`
}

type AdminQueue struct {
	QueueSummary
	Players []string `json:"players"`
}

type AdminResult struct {
	Action   string       `json:"action"`
	Queues   []AdminQueue `json:"queues,omitempty"`
	Resolved []Resolution `json:"resolved,omitempty"`
	Skipped  []string     `json:"skipped,omitempty"`
	Deleted  int64        `json:"deleted,omitempty"`
}

// AdminService executes operator overrides on the queues. Callers are
// authenticated before reaching it.
type AdminService struct {
	Ranked *RankedService
}

func NewAdminService(ranked *RankedService) *AdminService {
	return &AdminService{Ranked: ranked}
}

func (a *AdminService) Execute(ctx context.Context, req AdminRequest) (*AdminResult, error) {
	switch req.Action {
	case AdminActionList:
		return a.list(ctx)
	case AdminActionForceResolve:
		return a.forceResolve(ctx, req.QueueID)
	case AdminActionForceResolveAll:
		return a.forceResolveAll(ctx)
	case AdminActionCancelQueue:
		return a.cancelQueue(ctx, req.QueueID)
	case AdminActionClearAll:
		return a.clearAll(ctx)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAdminAction, req.Action)
	}
}

func (a *AdminService) list(ctx context.Context) (*AdminResult, error) {
	buckets, err := a.Ranked.ListBuckets(ctx)
	if err != nil {
		return nil, err
	}
	now := a.Ranked.Now()
	out := &AdminResult{Action: AdminActionList, Queues: []AdminQueue{}}
	for _, b := range buckets {
		q := AdminQueue{QueueSummary: summarizeBucket(b, now, a.Ranked.Config)}
		for _, e := range b.Entries {
			q.Players = append(q.Players, e.PlayerName)
		}
		out.Queues = append(out.Queues, q)
	}
	return out, nil
}

func (a *AdminService) forceResolve(ctx context.Context, rawQueueID string) (*AdminResult, error) {
	queueID, err := requireQueueID(rawQueueID)
	if err != nil {
		return nil, err
	}
	buckets, err := a.Ranked.ListBuckets(ctx)
	if err != nil {
		return nil, err
	}
	b, ok := findBucket(buckets, queueID)
	if !ok {
		return nil, ErrQueueNotFound
	}
	if b.Size() < a.Ranked.Config.MinPlayers {
		return nil, fmt.Errorf("%w: %d of %d", ErrNotEnoughPlayers, b.Size(), a.Ranked.Config.MinPlayers)
	}

	res, err := a.Ranked.Resolver.Resolve(ctx, queueID, b.Entries, models.TriggerAdmin)
	if err != nil {
		return nil, err
	}
	log.Printf("[ADMIN] Force-resolved queue %s", queueID)
	return &AdminResult{Action: AdminActionForceResolve, Resolved: []Resolution{*res}}, nil
}

func (a *AdminService) forceResolveAll(ctx context.Context) (*AdminResult, error) {
	buckets, err := a.Ranked.ListBuckets(ctx)
	if err != nil {
		return nil, err
	}
	out := &AdminResult{Action: AdminActionForceResolveAll}
	var errs []error
	for _, b := range buckets {
		if b.Size() < a.Ranked.Config.MinPlayers {
			out.Skipped = append(out.Skipped, b.QueueID)
			continue
		}
		res, err := a.Ranked.Resolver.Resolve(ctx, b.QueueID, b.Entries, models.TriggerAdmin)
		if errors.Is(err, ErrAlreadyResolved) {
			out.Skipped = append(out.Skipped, b.QueueID)
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("resolve %s: %w", b.QueueID, err))
			continue
		}
		out.Resolved = append(out.Resolved, *res)
	}
	log.Printf("[ADMIN] Force-resolved %d queue(s), skipped %d", len(out.Resolved), len(out.Skipped))
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *AdminService) cancelQueue(ctx context.Context, rawQueueID string) (*AdminResult, error) {
	queueID, err := requireQueueID(rawQueueID)
	if err != nil {
		return nil, err
	}
	res := a.Ranked.DB.WithContext(ctx).Where("queue_id = ?", queueID).Delete(&models.QueueEntry{})
	if res.Error != nil {
		return nil, fmt.Errorf("cancel queue: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrQueueNotFound
	}
	log.Printf("[ADMIN] Cancelled queue %s (%d entries removed)", queueID, res.RowsAffected)
	return &AdminResult{Action: AdminActionCancelQueue, Deleted: res.RowsAffected}, nil
}

func (a *AdminService) clearAll(ctx context.Context) (*AdminResult, error) {
	res := a.Ranked.DB.WithContext(ctx).Where("1 = 1").Delete(&models.QueueEntry{})
	if res.Error != nil {
		return nil, fmt.Errorf("clear queues: %w", res.Error)
	}
	log.Printf("[ADMIN] Cleared all queues (%d entries removed)", res.RowsAffected)
	return &AdminResult{Action: AdminActionClearAll, Deleted: res.RowsAffected}, nil
}

func requireQueueID(raw string) (string, error) {
	queueID, err := NormalizeQueueID(raw)
	if err != nil {
		return "", err
	}
	if queueID == "" {
		return "", ErrQueueIDRequired
	}
	return queueID, nil
}
