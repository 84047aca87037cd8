package proc

import (
	"strconv"
	"strings"
)

// LaunchSpec carries everything needed to render and start one serving
// process.
type LaunchSpec struct {
	ModelPath string
	Port      int
	GPUID     *int
	ExtraArgs string
	LogPath   string
}

// RenderCommand substitutes the spec into the configured command template.
// Placeholders: {model_path}, {port}, {gpu_id}, {extra_args}. A nil GPU
// renders {gpu_id} as the empty string.
//
// The template is trusted operator configuration; the rendered string is
// executed through a shell and must never contain caller-controlled input
// beyond the model path and extra args the operator chose to expose.
func RenderCommand(template string, spec LaunchSpec) string {
	gpuID := ""
	if spec.GPUID != nil {
		gpuID = strconv.Itoa(*spec.GPUID)
	}
	r := strings.NewReplacer(
		"{model_path}", spec.ModelPath,
		"{port}", strconv.Itoa(spec.Port),
		"{gpu_id}", gpuID,
		"{extra_args}", spec.ExtraArgs,
	)
	return strings.TrimSpace(r.Replace(template))
}

const cudaVisibleDevices = "CUDA_VISIBLE_DEVICES"

// buildEnv returns the child environment. The GPU visibility variable is
// always stripped from the inherited environment first, so a GPU-less child
// cannot accidentally see the parent's device list.
func buildEnv(base []string, gpuID *int) []string {
	env := make([]string, 0, len(base)+1)
	for _, kv := range base {
		if strings.HasPrefix(kv, cudaVisibleDevices+"=") {
			continue
		}
		env = append(env, kv)
	}
	if gpuID != nil {
		env = append(env, cudaVisibleDevices+"="+strconv.Itoa(*gpuID))
	}
	return env
}
