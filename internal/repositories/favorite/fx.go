package favorite

import (
	"github.com/orgball2608/story-explorer/internal/db"
	"github.com/orgball2608/story-explorer/pkg/logger"
)

// New picks the durable repository when the local store is open and the
// in-memory one otherwise.
func New(local *db.LocalDB, log logger.Logger) Repository {
	if local.Available() {
		return NewSQL(local, log)
	}
	return NewMemory()
}
