package constants

import "errors"

// CLI argument errors.
var (
	ErrTableRequired      = errors.New("table name is required")
	ErrSysIDRequired      = errors.New("sys_id is required")
	ErrRecordRequired     = errors.New("record data is required (use --data or --file)")
	ErrDataAndFile        = errors.New("--data and --file are mutually exclusive")
	ErrSubjectRequired    = errors.New("--subject is required")
	ErrUnknownOutput      = errors.New("unknown output format")
	ErrReferenceMalformed = errors.New("reference link is malformed")
	ErrUnknownConfigKey   = errors.New("unknown configuration key")
)

// Operation errors surfaced by the CLI when the library returns an absent value.
var (
	ErrRecordNotReturned = errors.New("server did not return a record")
)
