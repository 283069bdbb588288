package imports

import (
	"time"

	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/timesheet"
)

// ImportBatch records one atomic ingestion of an uploaded file.
type ImportBatch struct {
	ID          int64
	Filename    string
	ImportedAt  time.Time
	RowCount    int
	ArchivePath *string
}

// ProjectRef is the display information a file carries for a project.
type ProjectRef struct {
	ProjectID string
	Name      string
	Client    string
}

// ProjectOutcome reports what EnsureProject did.
type ProjectOutcome int

const (
	ProjectUnchanged ProjectOutcome = iota
	ProjectCreated
	ProjectUpdated
)

// Entry is a parsed row resolved to its project's surrogate id.
type Entry struct {
	ProjectID int64
	timesheet.Row
}
