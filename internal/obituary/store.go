package obituary

import "context"

// Filter narrows a listing. A zero OwnerID means the public feed: only records
// with Public=true. Results are always newest first.
type Filter struct {
	OwnerID string
	Skip    int
	Limit   int
}

// Store persists obituary records.
type Store interface {
	Insert(ctx context.Context, o *Obituary) error
	Find(ctx context.Context, id string) (*Obituary, error)
	List(ctx context.Context, f Filter) ([]Obituary, error)

	// Count returns the total matching records, ignoring Skip and Limit.
	Count(ctx context.Context, f Filter) (int, error)
	SetAudioURL(ctx context.Context, id, url string) error

	// DeleteOwned removes the record only when id and ownerID both match.
	// A missing record and a foreign record produce the same ErrNotFound.
	DeleteOwned(ctx context.Context, id, ownerID string) error
}
