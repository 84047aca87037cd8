package model

import "time"

// Deployment is one externally launched inference-serving process plus the
// metadata tracked for it. Records live only in the in-memory registry; a
// restart of the orchestrator loses them and orphans any still-running
// serving processes.
type Deployment struct {
	ID           string     `json:"deployment_id"`
	ModelPath    string     `json:"model_path"`
	ModelVersion *string    `json:"model_version"`
	Tags         []string   `json:"tags"`
	GPUID        *int       `json:"gpu_id"`
	Port         int        `json:"port"`
	PID          *int       `json:"pid"`
	Status       string     `json:"status"`
	StartedAt    *time.Time `json:"started_at"`
	StoppedAt    *time.Time `json:"stopped_at"`
	HealthOK     bool       `json:"health_ok"`
	// LaunchCommand is the fully rendered command used to start the process,
	// retained for audit even when the launch failed.
	LaunchCommand string `json:"launch_command"`
	LogFile       string `json:"log_file"`
	HealthPath    string `json:"health_path"`
}

// Clone returns a deep copy safe to hand to callers outside the registry lock.
func (d *Deployment) Clone() Deployment {
	c := *d
	if d.ModelVersion != nil {
		v := *d.ModelVersion
		c.ModelVersion = &v
	}
	if d.GPUID != nil {
		v := *d.GPUID
		c.GPUID = &v
	}
	if d.PID != nil {
		v := *d.PID
		c.PID = &v
	}
	if d.StartedAt != nil {
		v := *d.StartedAt
		c.StartedAt = &v
	}
	if d.StoppedAt != nil {
		v := *d.StoppedAt
		c.StoppedAt = &v
	}
	if d.Tags != nil {
		c.Tags = append([]string(nil), d.Tags...)
	}
	return c
}
