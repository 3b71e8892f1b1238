package pending

import (
	"github.com/orgball2608/story-explorer/internal/db"
	"github.com/orgball2608/story-explorer/pkg/logger"
)

func New(local *db.LocalDB, log logger.Logger) Repository {
	if local.Available() {
		return NewSQL(local, log)
	}
	return NewMemory()
}
