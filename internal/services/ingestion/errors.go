package ingestion

import (
	"fmt"

	"github.com/google/uuid"
)

// DuplicateError rejects an upload that would re-import data already in the
// system. ExistingID points at the statement that holds it.
type DuplicateError struct {
	Kind       string // "file" or "period"
	ExistingID uuid.UUID
}

func (e *DuplicateError) Error() string {
	if e.Kind == "period" {
		return fmt.Sprintf("statement period already imported as %s", e.ExistingID)
	}
	return fmt.Sprintf("file already imported as statement %s", e.ExistingID)
}
