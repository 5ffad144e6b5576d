package stocks

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// CapacityError is the typed form of the backend's "insufficient inventory"
// rejection. The backend embeds the numbers in the message text; the two
// substrings below are an intentional, if fragile, contract.
type CapacityError struct {
	Current int
	Total   int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("stocks: insufficient inventory: Current stock: %d, Total rooms: %d", e.Current, e.Total)
}

// Remaining is how many more rooms could still be put on sale for the range.
func (e *CapacityError) Remaining() int {
	left := e.Total - e.Current
	if left < 0 {
		return 0
	}
	return left
}

var (
	currentStockRe = regexp.MustCompile(`Current stock:\s*(\d+)`)
	totalRoomsRe   = regexp.MustCompile(`Total rooms:\s*(\d+)`)
)

// parseCapacityError inspects a backend error for the inventory contract
// substrings. Both numbers must be present for the error to qualify.
func parseCapacityError(err error) (*CapacityError, bool) {
	if err == nil {
		return nil, false
	}
	var capErr *CapacityError
	if errors.As(err, &capErr) {
		return capErr, true
	}
	msg := err.Error()
	cur := currentStockRe.FindStringSubmatch(msg)
	tot := totalRoomsRe.FindStringSubmatch(msg)
	if cur == nil || tot == nil {
		return nil, false
	}
	current, err1 := strconv.Atoi(cur[1])
	total, err2 := strconv.Atoi(tot[1])
	if err1 != nil || err2 != nil {
		return nil, false
	}
	return &CapacityError{Current: current, Total: total}, true
}
