// Package ratings stores the single-user rating feedback log. The log is
// append-only: events are never mutated or deleted, and appends are
// serialized so concurrent writers cannot interleave a record.
package ratings

import (
	"context"
	"fmt"
	"time"

	"github.com/muse-movies/muse/pkg/errors"
)

// Event is one rating log entry. Title is free text captured at feedback
// time; the preference model fuzzy-joins it onto corpus titles during
// training.
type Event struct {
	Title     string    `json:"title"`
	Rating    int       `json:"rating"`
	Timestamp time.Time `json:"timestamp"`
}

// Store is the rating log contract: read the full log, append one event.
type Store interface {
	All(ctx context.Context) ([]Event, error)
	Append(ctx context.Context, event Event) error
}

// ValidateRating rejects ratings outside [1,5]. Out-of-range values are
// errors, never clamped.
func ValidateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: got %d", errors.ErrInvalidRating, rating)
	}
	return nil
}
