package timeentry

import (
	"context"

	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/timeentry"
)

type TimeEntryServiceImpl struct {
	timeEntryRepo timeentry.TimeEntryRepository
}

func NewTimeEntryService(timeEntryRepo timeentry.TimeEntryRepository) timeentry.TimeEntryService {
	return &TimeEntryServiceImpl{timeEntryRepo: timeEntryRepo}
}

func (s *TimeEntryServiceImpl) List(ctx context.Context, filter timeentry.ListFilter) (timeentry.ListTimeEntriesResponse, error) {
	if err := filter.Validate(); err != nil {
		return timeentry.ListTimeEntriesResponse{}, err
	}

	entries, total, err := s.timeEntryRepo.List(ctx, filter)
	if err != nil {
		return timeentry.ListTimeEntriesResponse{}, err
	}

	resp := timeentry.ListTimeEntriesResponse{
		Entries: make([]timeentry.TimeEntryResponse, 0, len(entries)),
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, timeentry.NewTimeEntryResponse(e))
	}
	return resp, nil
}
