package gpu

import (
	"context"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
	"github.com/rs/zerolog"
)

// NVMLProber queries devices through the NVIDIA management library. This is
// the preferred probing path; it fails cleanly when the driver library is not
// present on the host.
type NVMLProber struct {
	logger zerolog.Logger
}

func NewNVMLProber(logger zerolog.Logger) *NVMLProber {
	return &NVMLProber{logger: logger.With().Str("component", "nvml-prober").Logger()}
}

func (p *NVMLProber) Probe(_ context.Context) []Device {
	if ret := nvml.Init(); ret != nvml.SUCCESS {
		p.logger.Debug().Str("nvml", nvml.ErrorString(ret)).Msg("nvml unavailable")
		return nil
	}
	defer func() {
		_ = nvml.Shutdown()
	}()

	count, ret := nvml.DeviceGetCount()
	if ret != nvml.SUCCESS {
		p.logger.Debug().Str("nvml", nvml.ErrorString(ret)).Msg("device count query failed")
		return nil
	}

	devices := make([]Device, 0, count)
	for i := 0; i < count; i++ {
		dev, ret := nvml.DeviceGetHandleByIndex(i)
		if ret != nvml.SUCCESS {
			p.logger.Debug().Int("index", i).Str("nvml", nvml.ErrorString(ret)).Msg("device handle query failed")
			return nil
		}
		mem, ret := dev.GetMemoryInfo()
		if ret != nvml.SUCCESS {
			p.logger.Debug().Int("index", i).Str("nvml", nvml.ErrorString(ret)).Msg("memory query failed")
			return nil
		}
		devices = append(devices, Device{Index: i, FreeMemory: mem.Free})
	}
	return devices
}
