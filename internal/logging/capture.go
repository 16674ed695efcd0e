package logging

import (
	"fmt"
	"strings"
	"sync"
)

// Entry is one call recorded by Capture.
type Entry struct {
	Level string
	Msg   string
	Args  []any
}

// Capture is a Logger that records calls. Test packages share it instead of
// each growing their own fake.
type Capture struct {
	mu      sync.Mutex
	entries []Entry
}

func (c *Capture) record(level, msg string, args []any) {
	c.mu.Lock()
	c.entries = append(c.entries, Entry{Level: level, Msg: msg, Args: append([]any(nil), args...)})
	c.mu.Unlock()
}

func (c *Capture) Debug(msg string, args ...any) { c.record("debug", msg, args) }
func (c *Capture) Info(msg string, args ...any)  { c.record("info", msg, args) }
func (c *Capture) Warn(msg string, args ...any)  { c.record("warn", msg, args) }
func (c *Capture) Error(msg string, args ...any) { c.record("error", msg, args) }

// Entries returns a copy of the recorded calls.
func (c *Capture) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Entry(nil), c.entries...)
}

// Count returns the number of entries at level.
func (c *Capture) Count(level string) int {
	n := 0
	for _, e := range c.Entries() {
		if e.Level == level {
			n++
		}
	}
	return n
}

// Contains reports whether any entry at level has a message containing substr.
func (c *Capture) Contains(level, substr string) bool {
	for _, e := range c.Entries() {
		if e.Level == level && strings.Contains(e.Msg, substr) {
			return true
		}
	}
	return false
}

func (e Entry) String() string {
	return fmt.Sprintf("%s %s %v", e.Level, e.Msg, e.Args)
}
