package notices

import (
	"sync"
	"time"
)

// Level classifies a notice for rendering.
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarn    Level = "warn"
	LevelError   Level = "error"
)

// Notice is one user-visible message. Notices are transient by design: the
// feed is bounded and old entries are pruned.
type Notice struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

const defaultLimit = 100

// Center is the bounded in-memory notice feed. It satisfies the Notifier
// interfaces of the transition queue and the stocks service.
type Center struct {
	mu    sync.Mutex
	items []Notice
	limit int
	now   func() time.Time
}

func NewCenter() *Center {
	return &Center{limit: defaultLimit, now: time.Now}
}

func (c *Center) Success(msg string) { c.add(LevelSuccess, msg) }
func (c *Center) Warn(msg string)    { c.add(LevelWarn, msg) }
func (c *Center) Error(msg string)   { c.add(LevelError, msg) }

func (c *Center) add(level Level, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, Notice{Level: level, Message: msg, At: c.now().UTC()})
	if len(c.items) > c.limit {
		c.items = c.items[len(c.items)-c.limit:]
	}
}

// Recent returns the feed newest first.
func (c *Center) Recent() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notice, len(c.items))
	for i, n := range c.items {
		out[len(c.items)-1-i] = n
	}
	return out
}

// Prune drops notices older than the given age; the scheduler calls this
// periodically.
func (c *Center) Prune(olderThan time.Duration) int {
	cutoff := c.now().Add(-olderThan)
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.items[:0]
	for _, n := range c.items {
		if n.At.After(cutoff) {
			kept = append(kept, n)
		}
	}
	dropped := len(c.items) - len(kept)
	c.items = kept
	return dropped
}
