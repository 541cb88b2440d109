package config

import "errors"

var (
	ErrNilPointer    = errors.New("config target must be a non-nil pointer")
	ErrParsingConfig = errors.New("failed to parse environment variables into config")
	ErrReadingSource = errors.New("failed to read configuration source")
)
