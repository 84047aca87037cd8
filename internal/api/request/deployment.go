package request

import (
	"net/http"
	"strconv"

	"github.com/edvin/modelhost/internal/deploy"
)

// CreateDeployment is the payload for creating a new model deployment.
type CreateDeployment struct {
	ModelPath    string   `json:"model_path" validate:"required"`
	ModelVersion *string  `json:"model_version"`
	Tags         []string `json:"tags"`
	// ExtraArgs is appended verbatim to the launch command template.
	ExtraArgs    string `json:"extra_args"`
	PreferredGPU *int   `json:"preferred_gpu" validate:"omitempty,gte=0"`
	HealthPath   string `json:"health_path"`
}

// Params converts the payload into controller parameters.
func (c *CreateDeployment) Params() deploy.CreateParams {
	return deploy.CreateParams{
		ModelPath:    c.ModelPath,
		ModelVersion: c.ModelVersion,
		Tags:         c.Tags,
		ExtraArgs:    c.ExtraArgs,
		PreferredGPU: c.PreferredGPU,
		HealthPath:   c.HealthPath,
	}
}

// ParseDeploymentFilter reads the list query parameters.
func ParseDeploymentFilter(r *http.Request) deploy.Filter {
	q := r.URL.Query()
	return deploy.Filter{
		Model:  q.Get("model"),
		Tag:    q.Get("tag"),
		Status: q.Get("status"),
	}
}

// ParseForce reads the delete force flag; absent or unparseable means false.
func ParseForce(r *http.Request) bool {
	force, err := strconv.ParseBool(r.URL.Query().Get("force"))
	return err == nil && force
}
