package domain

import "time"

type (
	BoardName = string
	ThreadId  = string
	ReplyId   = string
	Password  = string
	Text      = string
)

// DeletedText replaces the text of a reply removed by its author.
const DeletedText Text = "[deleted]"

// Now returns the current time the way every store can round-trip it:
// UTC, millisecond precision.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
