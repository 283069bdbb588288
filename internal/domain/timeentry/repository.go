package timeentry

import "context"

type TimeEntryRepository interface {
	// List returns one page of entries, newest first, and the total match count.
	List(ctx context.Context, filter ListFilter) ([]TimeEntry, int64, error)
}
