package gpu

import "context"

// Device describes one accelerator visible on this host.
type Device struct {
	Index      int
	FreeMemory uint64
}

// Prober queries the accelerators available on this host. Probing is best
// effort: implementations return an empty slice on any failure (missing
// driver, unparseable tool output) and never an error, because callers must
// support accelerator-less execution.
type Prober interface {
	Probe(ctx context.Context) []Device
}

// Chain tries each prober in order and returns the first non-empty result.
type Chain []Prober

func (c Chain) Probe(ctx context.Context) []Device {
	for _, p := range c {
		if devices := p.Probe(ctx); len(devices) > 0 {
			return devices
		}
	}
	return nil
}

// Noop is the fallback prober for hosts without any GPU tooling.
type Noop struct{}

func (Noop) Probe(context.Context) []Device { return nil }

// Select picks a device index from the probed set. A preferred index wins
// when present; otherwise the device with the most free memory is chosen.
// Returns nil when the set is empty, meaning "run without a GPU".
func Select(devices []Device, preferred *int) *int {
	if len(devices) == 0 {
		return nil
	}
	if preferred != nil {
		for _, d := range devices {
			if d.Index == *preferred {
				idx := d.Index
				return &idx
			}
		}
	}
	best := devices[0]
	for _, d := range devices[1:] {
		if d.FreeMemory > best.FreeMemory {
			best = d
		}
	}
	idx := best.Index
	return &idx
}
