package services

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrPlayerNameRequired = errors.New("player name is required")
	ErrInvalidScore       = errors.New("score must be a non-negative integer")
	ErrQueueIDRequired    = errors.New("queue id is required")
	ErrUnknownAdminAction = errors.New("unknown admin action")

	ErrQueueNotFound    = errors.New("queue not found")
	ErrNotEnoughPlayers = errors.New("not enough players in queue")
	ErrNoAttemptsLeft   = errors.New("no attempts left in this queue")

	// ErrAlreadyResolved means another resolver claimed the batch first.
	// Callers may re-read the queue and retry.
	ErrAlreadyResolved = errors.New("queue batch already resolved")
)
