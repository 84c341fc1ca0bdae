package conversation

import "strings"

// Accumulator folds successive text fragments into the full content of the
// open message.
type Accumulator struct {
	content strings.Builder
	count   int
}

// Add appends fragment with no separator and returns everything accumulated
// so far. Consumers always receive the complete text, never a diff.
func (a *Accumulator) Add(fragment string) string {
	a.content.WriteString(fragment)
	a.count++
	return a.content.String()
}

// Content returns the accumulated text.
func (a *Accumulator) Content() string {
	return a.content.String()
}

// Count returns the number of fragments added.
func (a *Accumulator) Count() int {
	return a.count
}
