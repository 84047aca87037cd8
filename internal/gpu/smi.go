package gpu

import (
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// SMIProber shells out to nvidia-smi. It is the fallback path for hosts where
// the management library cannot be loaded but the CLI tool works.
type SMIProber struct {
	logger zerolog.Logger
}

func NewSMIProber(logger zerolog.Logger) *SMIProber {
	return &SMIProber{logger: logger.With().Str("component", "smi-prober").Logger()}
}

func (p *SMIProber) Probe(ctx context.Context) []Device {
	cmd := exec.CommandContext(ctx, "nvidia-smi",
		"--query-gpu=index,memory.free",
		"--format=csv,noheader,nounits")
	output, err := cmd.Output()
	if err != nil {
		p.logger.Debug().Err(err).Msg("nvidia-smi unavailable")
		return nil
	}

	devices, err := parseSMIOutput(string(output))
	if err != nil {
		p.logger.Debug().Err(err).Msg("unparseable nvidia-smi output")
		return nil
	}
	return devices
}

// parseSMIOutput parses "index, memory.free" CSV lines. Memory is reported
// in MiB and converted to bytes.
func parseSMIOutput(output string) ([]Device, error) {
	var devices []Device
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		indexStr, memStr, ok := strings.Cut(line, ",")
		if !ok {
			return nil, &parseError{line: line}
		}
		index, err := strconv.Atoi(strings.TrimSpace(indexStr))
		if err != nil {
			return nil, err
		}
		freeMiB, err := strconv.ParseUint(strings.TrimSpace(memStr), 10, 64)
		if err != nil {
			return nil, err
		}
		devices = append(devices, Device{Index: index, FreeMemory: freeMiB * 1024 * 1024})
	}
	return devices, nil
}

type parseError struct {
	line string
}

func (e *parseError) Error() string {
	return "malformed nvidia-smi line: " + e.line
}
