package netx

import (
	"errors"
	"fmt"
	"net"
)

// ErrNoFreePort is returned when every port in the configured range is taken.
var ErrNoFreePort = errors.New("no free TCP port available in range")

// FindFreePort sequentially bind-probes loopback ports in [low, high] and
// returns the first that accepts a listener, skipping ports in the skip set
// (ports already assigned to live deployments whose process may not have
// bound yet). The listener is closed immediately, so the result is inherently
// racy against other allocators; callers must treat a later bind failure by
// the launched process as a launch failure, not retry here.
func FindFreePort(low, high int, skip map[int]struct{}) (int, error) {
	for port := low; port <= high; port++ {
		if _, taken := skip[port]; taken {
			continue
		}
		if portFree(port) {
			return port, nil
		}
	}
	return 0, fmt.Errorf("%w [%d, %d]", ErrNoFreePort, low, high)
}

func portFree(port int) bool {
	l, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return false
	}
	l.Close()
	return true
}
