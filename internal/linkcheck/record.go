// Package linkcheck contains the core link-liveness pipeline: deduplication,
// the bounded batch runner, and the classification contract.
package linkcheck

import "context"

// Status is the liveness classification of a link.
type Status int

const (
	// StatusUnchecked marks a record that has never been probed.
	StatusUnchecked Status = iota
	// StatusAvailable means the URL answered successfully at its own address.
	StatusAvailable
	// StatusRedirect means the URL resolved to a different final address.
	StatusRedirect
	// StatusDead means the server answered 404 for the URL.
	StatusDead
	// StatusError covers timeouts, connection failures and other non-404 errors.
	StatusError
)

// String returns the internal name of the status.
func (s Status) String() string {
	switch s {
	case StatusUnchecked:
		return "unchecked"
	case StatusAvailable:
		return "available"
	case StatusRedirect:
		return "redirect"
	case StatusDead:
		return "dead"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// LinkRecord is one row of the record store. The store owns the record's
// lifecycle; the pipeline only reads it and proposes a new status.
type LinkRecord struct {
	ID     string
	Title  string
	URL    string
	Status Status
}

// Classifier determines the liveness of a single URL. Implementations never
// return an error: every probe outcome resolves to a definite Status.
type Classifier interface {
	Classify(ctx context.Context, url string) Status
}

// RecordStore is the external collaborator holding the link records.
type RecordStore interface {
	// FetchAll returns every matching record, following the store's
	// pagination protocol transparently.
	FetchAll(ctx context.Context) ([]LinkRecord, error)
	// WriteStatus upserts the status field of a single record.
	WriteStatus(ctx context.Context, id string, status Status) error
	// Archive soft-deletes a record.
	Archive(ctx context.Context, id string) error
}
