package model

// Deployment status constants.
//
// starting -> running -> stopping -> stopped, with starting -> failed on
// launch errors. A crashed process flips any state to stopped. stopped and
// failed are terminal.
const (
	StatusStarting = "starting"
	StatusRunning  = "running"
	StatusStopping = "stopping"
	StatusStopped  = "stopped"
	StatusFailed   = "failed"
)
