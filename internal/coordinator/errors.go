package coordinator

import (
	"errors"
	"fmt"
)

// Local rejections.  None of these reach the remote store.
var (
	ErrNoActingUser  = errors.New("no acting user")
	ErrUnknownMovie  = errors.New("movie not found")
	ErrNotOwner      = errors.New("only the creator can change this movie")
	ErrNotWatched    = errors.New("mark the movie as watched before rating it")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	ErrInvalidState  = errors.New("view state must be \"vista\" or \"no vista\"")
	ErrEmptyTitle    = errors.New("title is required")
	ErrEmptyMessage  = errors.New("message is empty")
)

// MutationError wraps a failed remote write together with the recovery
// the coordinator applied to the cache.
type MutationError struct {
	Kind     Kind
	Recovery Recovery
	Err      error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

// IsRemote reports whether err came from a failed remote write rather
// than a local rejection.
func IsRemote(err error) bool {
	var me *MutationError
	return errors.As(err, &me)
}
