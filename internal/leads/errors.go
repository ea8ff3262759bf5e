package leads

import (
	"github.com/talentbridge/sales-crm-platform/internal/faults"
)

// ErrVersionConflict is returned when an update carries a stale version
// token; the caller must re-read and resubmit.
var ErrVersionConflict error = faults.Conflict("lead")
