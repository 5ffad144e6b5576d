package room

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound      = errors.New("room: not found")
	ErrUnknownStatus = errors.New("room: unknown status")
)

// Status is the closed set of housekeeping states a room can be in. The
// zero value is not a valid status.
type Status string

const (
	StatusCleaning    Status = "Cleaning"
	StatusAvailable   Status = "Available"
	StatusUnavailable Status = "Unavailable"
	StatusMaintenance Status = "Maintenance"
)

// Statuses lists all variants in board-column order.
func Statuses() []Status {
	return []Status{StatusCleaning, StatusAvailable, StatusUnavailable, StatusMaintenance}
}

// wireCodes maps each status to the code the backend speaks. The table is
// the single source of the mapping in both directions.
var wireCodes = map[Status]string{
	StatusCleaning:    "CLEANING",
	StatusAvailable:   "AVAILABLE",
	StatusUnavailable: "UNAVAILABLE",
	StatusMaintenance: "MAINTENANCE",
}

func (s Status) Valid() bool {
	_, ok := wireCodes[s]
	return ok
}

// WireCode returns the backend code for the status.
func (s Status) WireCode() (string, error) {
	code, ok := wireCodes[s]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, string(s))
	}
	return code, nil
}

// StatusFromWire resolves a backend code back to a Status.
func StatusFromWire(code string) (Status, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for status, wire := range wireCodes {
		if wire == code {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: wire code %q", ErrUnknownStatus, code)
}

// ParseStatus accepts either the display label or the wire code.
func ParseStatus(raw string) (Status, error) {
	trimmed := strings.TrimSpace(raw)
	for status := range wireCodes {
		if strings.EqualFold(string(status), trimmed) {
			return status, nil
		}
	}
	return StatusFromWire(trimmed)
}

// Room is the read model of a physical room. The authoritative copy lives in
// the backend; the service holds a read-through cache refreshed on demand.
type Room struct {
	ID           string
	Number       string
	Floor        string
	Capacity     int
	CategoryID   string
	CategoryName string
	PhotoURL     string
	Status       Status
	Deleted      bool
}

// Filter narrows a room listing. Query matches number, floor and category
// name case-insensitively.
type Filter struct {
	Query          string
	IncludeDeleted bool
}

// Matches applies the filter to a single room.
func (f Filter) Matches(r Room) bool {
	if r.Deleted && !f.IncludeDeleted {
		return false
	}
	q := strings.TrimSpace(strings.ToLower(f.Query))
	if q == "" {
		return true
	}
	for _, field := range []string{r.Number, r.Floor, r.CategoryName} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Directory is the authoritative room backend.
type Directory interface {
	List(ctx context.Context, filter Filter) ([]Room, error)
	ByID(ctx context.Context, id string) (Room, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
}
