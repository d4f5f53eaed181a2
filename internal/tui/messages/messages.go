package messages

import "scenefuse/pkg/types"

type ErrorMsg struct {
	Err error
}

// ScanCompleteMsg carries the result of grouping the browsed directory.
type ScanCompleteMsg struct {
	Grouping types.Grouping
	Err      error
}
