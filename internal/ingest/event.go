package ingest

import "time"

// Event is an accepted message. ID is zero until the store assigns one.
type Event struct {
	ID        int64
	Topic     string
	FirstName string
	LastName  string
	Timestamp time.Time
}
