package timeentry

import "context"

type TimeEntryService interface {
	List(ctx context.Context, filter ListFilter) (ListTimeEntriesResponse, error)
}
