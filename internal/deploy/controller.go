package deploy

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/edvin/modelhost/internal/config"
	"github.com/edvin/modelhost/internal/gpu"
	"github.com/edvin/modelhost/internal/model"
	"github.com/edvin/modelhost/internal/netx"
	"github.com/edvin/modelhost/internal/platform"
	"github.com/edvin/modelhost/internal/proc"
)

// Launcher starts serving processes. proc.CommandLauncher is the real one;
// tests substitute fakes.
type Launcher interface {
	Render(spec proc.LaunchSpec) string
	Launch(spec proc.LaunchSpec) (int, error)
}

// Controller coordinates GPU selection, port allocation, process launch,
// health monitoring and teardown into the deployment lifecycle. All state
// lives in the injected registry.
type Controller struct {
	logger   zerolog.Logger
	cfg      *config.Config
	reg      *Registry
	prober   gpu.Prober
	launcher Launcher
	ctl      proc.Control
	monitor  *Monitor

	// findPort is swappable so lifecycle tests can allocate ports
	// deterministically without binding sockets.
	findPort func(low, high int, skip map[int]struct{}) (int, error)

	monitors sync.WaitGroup
}

func NewController(logger zerolog.Logger, cfg *config.Config, reg *Registry, prober gpu.Prober, launcher Launcher, ctl proc.Control) *Controller {
	return &Controller{
		logger:   logger.With().Str("component", "deploy-controller").Logger(),
		cfg:      cfg,
		reg:      reg,
		prober:   prober,
		launcher: launcher,
		ctl:      ctl,
		monitor:  NewMonitor(logger, reg, ctl, cfg.HealthProbeTimeout, cfg.HealthSettleDelay, cfg.HealthAttempts, cfg.HealthInterval),
		findPort: netx.FindFreePort,
	}
}

// CreateParams carries the caller-supplied deployment request.
type CreateParams struct {
	ModelPath    string
	ModelVersion *string
	Tags         []string
	ExtraArgs    string
	PreferredGPU *int
	HealthPath   string
}

// Create allocates a GPU (optional) and a port, launches the serving process
// and registers the record with status starting. It returns as soon as the
// record exists; health convergence happens in a background monitor.
//
// On launch failure the returned record is still registered, with status
// failed and a nil pid, so operators can inspect why. The error tells the
// caller the operation failed, not that nothing was recorded.
func (c *Controller) Create(ctx context.Context, p CreateParams) (model.Deployment, error) {
	gpuID := gpu.Select(c.prober.Probe(ctx), p.PreferredGPU)

	port, err := c.findPort(c.cfg.PortRangeLow, c.cfg.PortRangeHigh, c.reg.Ports())
	if err != nil {
		return model.Deployment{}, fmt.Errorf("%w: %v", ErrPortsExhausted, err)
	}

	id := platform.NewID()
	healthPath := normalizeHealthPath(p.HealthPath, c.cfg.HealthPath)
	spec := proc.LaunchSpec{
		ModelPath: p.ModelPath,
		Port:      port,
		GPUID:     gpuID,
		ExtraArgs: p.ExtraArgs,
		LogPath:   filepath.Join(c.cfg.LogDir, id+".log"),
	}

	now := time.Now()
	rec := model.Deployment{
		ID:            id,
		ModelPath:     p.ModelPath,
		ModelVersion:  p.ModelVersion,
		Tags:          p.Tags,
		GPUID:         gpuID,
		Port:          port,
		Status:        model.StatusStarting,
		StartedAt:     &now,
		LaunchCommand: c.launcher.Render(spec),
		LogFile:       spec.LogPath,
		HealthPath:    healthPath,
	}

	pid, err := c.launcher.Launch(spec)
	if err != nil {
		stopped := time.Now()
		rec.Status = model.StatusFailed
		rec.StoppedAt = &stopped
		c.reg.Insert(rec)
		registeredDeployments.Set(float64(c.reg.Len()))
		launchFailures.Inc()
		c.logger.Error().Err(err).Str("deployment", id).Str("command", rec.LaunchCommand).Msg("launch failed")
		return rec, fmt.Errorf("%w: %v", ErrLaunchFailed, err)
	}

	rec.PID = &pid
	c.reg.Insert(rec)
	registeredDeployments.Set(float64(c.reg.Len()))
	deploymentsCreated.Inc()

	c.logger.Info().
		Str("deployment", id).
		Str("model", p.ModelPath).
		Int("port", port).
		Int("pid", pid).
		Msg("deployment created")

	c.monitors.Add(1)
	go func() {
		defer c.monitors.Done()
		c.monitor.Run(id, pid, port, healthPath)
	}()

	return rec, nil
}

// Get returns the deployment after a liveness re-check: a dead process flips
// the record to stopped eagerly, an alive one gets a synchronous health
// refresh. Reads are self-healing rather than waiting on the background
// monitor.
func (c *Controller) Get(ctx context.Context, id string) (model.Deployment, error) {
	rec, ok := c.reg.Get(id)
	if !ok {
		return model.Deployment{}, ErrNotFound
	}

	c.refresh(rec)

	rec, ok = c.reg.Get(id)
	if !ok {
		return model.Deployment{}, ErrNotFound
	}
	return rec, nil
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Model  string // substring of the model path
	Tag    string // exact tag membership
	Status string // case-insensitive status
}

func (f Filter) matches(d *model.Deployment) bool {
	if f.Model != "" && !strings.Contains(d.ModelPath, f.Model) {
		return false
	}
	if f.Tag != "" {
		found := false
		for _, tag := range d.Tags {
			if tag == f.Tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Status != "" && !strings.EqualFold(d.Status, f.Status) {
		return false
	}
	return true
}

// List returns all deployments matching the filter, each refreshed the same
// way Get refreshes. Refreshes run in parallel so a page full of deployments
// does not pay one probe timeout per record.
func (c *Controller) List(ctx context.Context, f Filter) []model.Deployment {
	var g errgroup.Group
	g.SetLimit(8)
	for _, rec := range c.reg.List() {
		rec := rec
		g.Go(func() error {
			c.refresh(rec)
			return nil
		})
	}
	g.Wait()

	out := make([]model.Deployment, 0)
	for _, rec := range c.reg.List() {
		if f.matches(&rec) {
			out = append(out, rec)
		}
	}
	return out
}

// refresh re-checks process liveness for a record with a pid. The liveness
// check and health probe happen outside the registry lock.
func (c *Controller) refresh(rec model.Deployment) {
	if rec.PID == nil || rec.Status == model.StatusStopped || rec.Status == model.StatusFailed {
		return
	}

	if c.ctl.Alive(*rec.PID) {
		healthy := c.monitor.CheckHealth(rec.Port, rec.HealthPath)
		c.reg.Update(rec.ID, func(d *model.Deployment) {
			d.HealthOK = healthy
		})
		return
	}

	now := time.Now()
	c.reg.Update(rec.ID, func(d *model.Deployment) {
		d.Status = model.StatusStopped
		d.HealthOK = false
		if d.StoppedAt == nil {
			d.StoppedAt = &now
		}
	})
}

// Delete stops the deployment's process and removes the record. The graceful
// path signals the process group and polls for exit up to the configured
// timeout; on timeout without force the record stays in stopping and
// ErrStopTimeout asks the caller to retry with force. With force the process
// group gets SIGKILL and the record is removed without further polling;
// kill is assumed to eventually succeed.
func (c *Controller) Delete(ctx context.Context, id string, force bool) (model.Deployment, error) {
	rec, ok := c.reg.Get(id)
	if !ok {
		return model.Deployment{}, ErrNotFound
	}

	c.reg.Update(id, func(d *model.Deployment) {
		d.Status = model.StatusStopping
	})

	if rec.PID != nil {
		pid := *rec.PID
		c.ctl.Terminate(pid)

		if proc.WaitExit(ctx, c.ctl, pid, c.cfg.StopTimeout, c.cfg.StopPollInterval) {
			terminations.WithLabelValues("graceful").Inc()
		} else if force {
			c.ctl.Kill(pid)
			terminations.WithLabelValues("forced").Inc()
			c.logger.Warn().Str("deployment", id).Int("pid", pid).Msg("process killed after graceful stop timed out")
		} else {
			terminations.WithLabelValues("timeout").Inc()
			return model.Deployment{}, ErrStopTimeout
		}
	}

	removed, ok := c.reg.Remove(id)
	if !ok {
		// Lost a race with a concurrent delete; same outcome for the caller.
		return model.Deployment{}, ErrNotFound
	}
	registeredDeployments.Set(float64(c.reg.Len()))

	now := time.Now()
	removed.Status = model.StatusStopped
	if removed.StoppedAt == nil {
		removed.StoppedAt = &now
	}

	c.logger.Info().Str("deployment", id).Bool("force", force).Msg("deployment removed")
	return removed, nil
}

// GPUCount reports how many accelerators the prober currently sees. Advisory
// only, used by the readiness endpoint.
func (c *Controller) GPUCount(ctx context.Context) int {
	return len(c.prober.Probe(ctx))
}

// RegisteredCount reports how many deployment records are held, including
// stopped and failed ones awaiting cleanup.
func (c *Controller) RegisteredCount() int {
	return c.reg.Len()
}

// WaitMonitors blocks until all spawned health monitors have finished. Test
// and shutdown hook; monitors are otherwise fire-and-forget.
func (c *Controller) WaitMonitors() {
	c.monitors.Wait()
}

func normalizeHealthPath(requested, fallback string) string {
	path := requested
	if path == "" {
		path = fallback
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}
