package proc

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/rs/zerolog"
)

// CommandLauncher starts serving processes from a shell command template.
// Children run in their own session so the orchestrator's exit does not take
// them down and the whole process group can be signaled at teardown.
type CommandLauncher struct {
	logger   zerolog.Logger
	template string
}

func NewCommandLauncher(logger zerolog.Logger, template string) *CommandLauncher {
	return &CommandLauncher{
		logger:   logger.With().Str("component", "launcher").Logger(),
		template: template,
	}
}

// Render returns the command that Launch would execute for the spec.
func (l *CommandLauncher) Render(spec LaunchSpec) string {
	return RenderCommand(l.template, spec)
}

// Launch starts the serving process detached, with stdout and stderr
// appended to the spec's log file, and returns its pid. The caller records
// the launch failure; it is not retried here.
func (l *CommandLauncher) Launch(spec LaunchSpec) (int, error) {
	command := RenderCommand(l.template, spec)

	logFile, err := os.OpenFile(spec.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open deployment log %s: %w", spec.LogPath, err)
	}
	defer logFile.Close()

	cmd := exec.Command("/bin/sh", "-c", command)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.Env = buildEnv(os.Environ(), spec.GPUID)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start serving process: %w", err)
	}

	pid := cmd.Process.Pid
	l.logger.Info().
		Int("pid", pid).
		Int("port", spec.Port).
		Str("model", spec.ModelPath).
		Str("log", spec.LogPath).
		Msg("serving process started")

	// Reap the child when it exits so it never lingers as a zombie.
	go func() {
		_ = cmd.Wait()
	}()

	return pid, nil
}
