package report

import (
	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/project"
)

var ErrProjectNotFound = project.ErrProjectNotFound
