package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gosimple/slug"
	"golang.org/x/text/unicode/norm"
)

const (
	maxPlayerNameRunes = 32
	maxQueueIDLength   = 64
)

// NormalizePlayerName trims and NFC-normalizes a display name so that the
// same name typed on different keyboards maps to one rating record.
func NormalizePlayerName(raw string) (string, error) {
	name := norm.NFC.String(strings.TrimSpace(raw))
	if name == "" {
		return "", ErrPlayerNameRequired
	}
	if utf8.RuneCountInString(name) > maxPlayerNameRunes {
		return "", fmt.Errorf("%w: player name longer than %d characters", ErrValidation, maxPlayerNameRunes)
	}
	return name, nil
}

// NormalizeQueueID turns a requested queue identifier into its slug.
// An empty input stays empty and means "place me automatically".
func NormalizeQueueID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	id := slug.Make(raw)
	if len(id) > maxQueueIDLength {
		id = strings.TrimRight(id[:maxQueueIDLength], "-")
	}
	if id == "" {
		return "", fmt.Errorf("%w: queue id %q has no usable characters", ErrValidation, raw)
	}
	return id, nil
}
