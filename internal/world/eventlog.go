package world

import (
	"fmt"
	"sort"
	"strings"
)

// Event categories.
const (
	CatCombat    = "combat"
	CatLifecycle = "lifecycle"
	CatPortal    = "portal"
	CatState     = "state"
	CatObject    = "object"
	CatMovement  = "movement" // verbose only
)

// Event is one recorded simulation event.
type Event struct {
	Tick     int
	Map      string
	Subject  string  // type name, or "--" for map-wide events
	Category string  // combat, lifecycle, portal, state, object, movement
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=0042] village  Skeleton     combat    hit            arrow 10 dmg
func (e Event) String() string {
	return fmt.Sprintf("[T=%04d] %-8s %-12s %-9s %-14s %s",
		e.Tick, e.Map, e.Subject, e.Category, e.Key, e.Value)
}

// EventLog collects structured simulation events. It is unbounded and
// machine readable; tests and the headless report query it.
type EventLog struct {
	entries []Event
	verbose bool
}

// NewEventLog creates an EventLog. If verbose is true, a movement entry is
// also recorded for every creature step that changed position.
func NewEventLog(verbose bool) *EventLog {
	return &EventLog{verbose: verbose}
}

// Add records a new entry.
func (el *EventLog) Add(tick int, mapID, subject, category, key, value string, numVal float64) {
	if el == nil {
		return
	}
	el.entries = append(el.entries, Event{
		Tick:     tick,
		Map:      mapID,
		Subject:  subject,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (el *EventLog) AddVerbose(tick int, mapID, subject, category, key, value string, numVal float64) {
	if el == nil || !el.verbose {
		return
	}
	el.Add(tick, mapID, subject, category, key, value, numVal)
}

// Entries returns all recorded entries.
func (el *EventLog) Entries() []Event {
	return el.entries
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (el *EventLog) Filter(category, key string) []Event {
	var out []Event
	for _, e := range el.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Count returns how many entries match the given category and key.
func (el *EventLog) Count(category, key string) int {
	return len(el.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key, or false if none.
func (el *EventLog) LastOf(category, key string) (Event, bool) {
	entries := el.Filter(category, key)
	if len(entries) == 0 {
		return Event{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry reports whether an entry matches category, key and value substring.
func (el *EventLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range el.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string for t.Log output.
func (el *EventLog) Format() string {
	var sb strings.Builder
	for _, e := range el.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary returns event counts grouped by category and key.
func (el *EventLog) Summary() string {
	counts := map[string]int{}
	for _, e := range el.entries {
		counts[e.Category+"/"+e.Key]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%-24s %d\n", k, counts[k])
	}
	return sb.String()
}
