package export

import "errors"

var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrInvalidPeriod     = errors.New("invalid export period")
)
