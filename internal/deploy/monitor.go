package deploy

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/modelhost/internal/model"
	"github.com/edvin/modelhost/internal/proc"
)

// Monitor converges a freshly created deployment from starting to its
// observed state. One Run per deployment, spawned by the controller right
// after the record is registered; it never blocks the create call.
type Monitor struct {
	logger   zerolog.Logger
	reg      *Registry
	ctl      proc.Control
	client   *http.Client
	settle   time.Duration
	attempts int
	interval time.Duration
}

func NewMonitor(logger zerolog.Logger, reg *Registry, ctl proc.Control, probeTimeout, settle time.Duration, attempts int, interval time.Duration) *Monitor {
	return &Monitor{
		logger:   logger.With().Str("component", "health-monitor").Logger(),
		reg:      reg,
		ctl:      ctl,
		client:   &http.Client{Timeout: probeTimeout},
		settle:   settle,
		attempts: attempts,
		interval: interval,
	}
}

// Run waits out the settle delay, checks process liveness once, then polls
// the HTTP health endpoint a bounded number of times. It terminates in one
// of three states:
//
//   - process already dead: stopped, health_ok=false (no HTTP attempts)
//   - probe succeeded:      running, health_ok=true
//   - attempts exhausted:   running, health_ok=false (degraded, not failed)
//
// The deployment may be deleted mid-poll; the final write is then a no-op.
func (m *Monitor) Run(id string, pid, port int, healthPath string) {
	time.Sleep(m.settle)

	if !m.ctl.Alive(pid) {
		now := time.Now()
		updated := m.reg.Update(id, func(d *model.Deployment) {
			d.Status = model.StatusStopped
			d.HealthOK = false
			if d.StoppedAt == nil {
				d.StoppedAt = &now
			}
		})
		if updated {
			m.logger.Warn().Str("deployment", id).Int("pid", pid).Msg("process exited before first health probe")
		}
		healthProbes.WithLabelValues("process_dead").Inc()
		return
	}

	healthy := false
	for i := 0; i < m.attempts; i++ {
		if m.CheckHealth(port, healthPath) {
			healthy = true
			break
		}
		time.Sleep(m.interval)
	}

	updated := m.reg.Update(id, func(d *model.Deployment) {
		d.Status = model.StatusRunning
		d.HealthOK = healthy
	})
	if !updated {
		m.logger.Debug().Str("deployment", id).Msg("deployment removed before monitor finished")
		return
	}

	if healthy {
		healthProbes.WithLabelValues("healthy").Inc()
		m.logger.Info().Str("deployment", id).Int("port", port).Msg("deployment healthy")
	} else {
		healthProbes.WithLabelValues("unhealthy").Inc()
		m.logger.Warn().Str("deployment", id).Int("port", port).Msg("deployment alive but not confirmed healthy")
	}
}

// CheckHealth probes the configured health path and falls back to the root
// path, because not every serving process exposes a dedicated health route.
// Probe errors degrade to "unhealthy"; they are never propagated.
func (m *Monitor) CheckHealth(port int, healthPath string) bool {
	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	if m.httpOK(base + healthPath) {
		return true
	}
	return m.httpOK(base + "/")
}

func (m *Monitor) httpOK(url string) bool {
	resp, err := m.client.Get(url)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
