package book

import "fmt"

// InvalidLevelData reports a level update whose price or quantity could not
// be used. The feed is otherwise trusted, so this is the only ingestion
// failure the book produces.
type InvalidLevelData struct {
	Venue  string
	Field  string
	Value  string
	Reason string
}

func (e *InvalidLevelData) Error() string {
	return fmt.Sprintf("invalid level data from %q: %s %q: %s", e.Venue, e.Field, e.Value, e.Reason)
}
