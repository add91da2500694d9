package wire

import "fmt"

// depthContext tracks the current aggregate nesting while decoding.
type depthContext struct {
	current int
	max     int
}

// enter increments the depth and returns an error if the limit would be exceeded.
// The depth is only incremented on success.
func (dc *depthContext) enter() error {
	if dc.current >= dc.max {
		return fmt.Errorf("%w: limit %d", ErrMaxDepthExceeded, dc.max)
	}
	dc.current++
	return nil
}

// exit decrements the depth.
func (dc *depthContext) exit() {
	if dc.current > 0 {
		dc.current--
	}
}

// capacityHint bounds a declared element count by what the remaining
// bytes could possibly hold, so a forged count cannot force a huge
// allocation.
func capacityHint(count uint64, remaining, minElementSize int) int {
	fit := remaining / minElementSize
	if count < uint64(fit) {
		return int(count)
	}
	return fit
}
