package formatter

import (
	"fmt"
	"strconv"

	"github.com/orgball2608/story-explorer/internal/domain"
)

// FormatNumber converts an integer to a string with commas as thousands separators.
// Example: 1234567 -> "1,234,567"
func FormatNumber(n int) string {
	s := strconv.Itoa(n)
	if n < 0 {
		s = s[1:]
	}

	le := len(s)
	if le <= 3 {
		if n < 0 {
			return "-" + s
		}
		return s
	}

	sepCount := (le - 1) / 3

	res := make([]byte, le+sepCount)

	j := len(res) - 1
	for i := le - 1; i >= 0; i-- {
		res[j] = s[i]
		j--
		if (le-i)%3 == 0 && i > 0 {
			res[j] = ','
			j--
		}
	}

	if n < 0 {
		return "-" + string(res)
	}
	return string(res)
}

// SyncSummary renders aggregate sync counts for the render layer.
func SyncSummary(result domain.SyncResult) string {
	if result.Total() == 0 {
		return "No pending stories to sync"
	}
	return fmt.Sprintf("Sync completed: %s sent, %s failed",
		FormatNumber(result.Succeeded), FormatNumber(result.Failed))
}
