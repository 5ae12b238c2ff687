package patch

import (
	"fmt"
	"time"
)

// LogHeader is written once when the patch log does not exist yet.
const LogHeader = "# Patch Log\n\n"

// TimestampLayout is ISO 8601 in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Entry is one line of the patch log.
type Entry struct {
	Timestamp time.Time
	Patch     string // path relative to the working tree root
	Status    Status
	Mode      Mode
}

// FormatEntry renders e as a Markdown bullet, newline included.
func FormatEntry(e Entry) string {
	return fmt.Sprintf("- %s — `%s` — **%s** (%s)\n",
		e.Timestamp.UTC().Format(TimestampLayout), e.Patch, e.Status, e.Mode)
}
