package experiment

import (
	"fmt"
	"strings"
)

// TallyEntry is one line of the click-count display.
type TallyEntry struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ClickTally counts taps per object id. Counts only grow; entries are never
// removed, so a reset of the placement keeps the participant's history.
type ClickTally struct {
	order  []string
	labels map[string]string
	counts map[string]int
}

// NewClickTally creates an empty tally.
func NewClickTally() *ClickTally {
	return &ClickTally{
		labels: make(map[string]string),
		counts: make(map[string]int),
	}
}

// Track registers a known object so it shows up in snapshots with a zero count.
// Tracking an id twice keeps its count and updates the label.
func (t *ClickTally) Track(id, label string) {
	if _, ok := t.counts[id]; !ok {
		t.order = append(t.order, id)
		t.counts[id] = 0
	}
	if label != "" {
		t.labels[id] = label
	}
}

// Record increments the count for id and returns the new value.
func (t *ClickTally) Record(id string) int {
	t.Track(id, "")
	t.counts[id]++
	return t.counts[id]
}

// Count returns the current count for id.
func (t *ClickTally) Count(id string) int {
	return t.counts[id]
}

// Len returns the number of known objects.
func (t *ClickTally) Len() int {
	return len(t.order)
}

// Snapshot returns the tally in registration order. The slice is a copy.
func (t *ClickTally) Snapshot() []TallyEntry {
	out := make([]TallyEntry, 0, len(t.order))
	for _, id := range t.order {
		label := t.labels[id]
		if label == "" {
			label = id
		}
		out = append(out, TallyEntry{ID: id, Label: label, Count: t.counts[id]})
	}
	return out
}

// String renders the tally the way the info panel shows it, one object per line.
func (t *ClickTally) String() string {
	var b strings.Builder
	b.WriteString("Click counts")
	for _, e := range t.Snapshot() {
		fmt.Fprintf(&b, "\n%s: %d", e.Label, e.Count)
	}
	return b.String()
}

// Increased returns the id of the first entry whose count grew between two
// snapshots, or "" when none did.
func Increased(before, after []TallyEntry) string {
	counts := make(map[string]int, len(before))
	for _, e := range before {
		counts[e.ID] = e.Count
	}
	for _, e := range after {
		if e.Count > counts[e.ID] {
			return e.ID
		}
	}
	return ""
}
