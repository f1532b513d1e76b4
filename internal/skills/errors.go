package skills

import "errors"

var (
	// ErrNotFound is returned when no skill exists under a name.
	ErrNotFound = errors.New("skill not found")

	// ErrNameMissing is returned when a skill without a name is saved.
	ErrNameMissing = errors.New("skill name is required")
)
