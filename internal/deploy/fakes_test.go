package deploy

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/edvin/modelhost/internal/config"
	"github.com/edvin/modelhost/internal/gpu"
	"github.com/edvin/modelhost/internal/proc"
)

func testConfig() *config.Config {
	return &config.Config{
		ServiceName:        "modelhost-test",
		LogLevel:           "disabled",
		CommandTemplate:    "serve --model {model_path} --port {port} --device {gpu_id} {extra_args}",
		LogDir:             "/tmp",
		HealthPath:         "/health",
		PortRangeLow:       44000,
		PortRangeHigh:      44063,
		HealthSettleDelay:  10 * time.Millisecond,
		HealthProbeTimeout: 200 * time.Millisecond,
		HealthAttempts:     3,
		HealthInterval:     10 * time.Millisecond,
		StopTimeout:        200 * time.Millisecond,
		StopPollInterval:   10 * time.Millisecond,
	}
}

type fakeProber struct {
	devices []gpu.Device
}

func (f *fakeProber) Probe(context.Context) []gpu.Device { return f.devices }

// fakeLauncher hands out sequential pids without starting anything.
type fakeLauncher struct {
	mu      sync.Mutex
	nextPID int
	err     error
	specs   []proc.LaunchSpec
}

func newFakeLauncher() *fakeLauncher {
	return &fakeLauncher{nextPID: 1000}
}

func (f *fakeLauncher) Render(spec proc.LaunchSpec) string {
	return proc.RenderCommand("serve --model {model_path} --port {port} --device {gpu_id} {extra_args}", spec)
}

func (f *fakeLauncher) Launch(spec proc.LaunchSpec) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.specs = append(f.specs, spec)
	f.nextPID++
	return f.nextPID, nil
}

var errExecNotFound = errors.New("exec: \"vllm\": executable file not found in $PATH")

// fakeControl scripts process liveness and records signal deliveries.
type fakeControl struct {
	mu             sync.Mutex
	dead           map[int]bool
	defaultDead    bool
	dieOnTerminate bool
	terminated     []int
	killed         []int
}

func newFakeControl() *fakeControl {
	return &fakeControl{dead: make(map[int]bool)}
}

func (f *fakeControl) Alive(pid int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if dead, ok := f.dead[pid]; ok {
		return !dead
	}
	return !f.defaultDead
}

func (f *fakeControl) Terminate(pid int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.terminated = append(f.terminated, pid)
	if f.dieOnTerminate {
		f.dead[pid] = true
	}
}

func (f *fakeControl) Kill(pid int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.killed = append(f.killed, pid)
	f.dead[pid] = true
}

func (f *fakeControl) markDead(pid int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dead[pid] = true
}

var _ proc.Control = (*fakeControl)(nil)
var _ Launcher = (*fakeLauncher)(nil)
var _ gpu.Prober = (*fakeProber)(nil)
