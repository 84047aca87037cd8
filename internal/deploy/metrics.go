package deploy

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	deploymentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "modelhost_deployments_created_total",
		Help: "Total deployments successfully launched",
	})

	launchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "modelhost_launch_failures_total",
		Help: "Total serving process launch failures",
	})

	registeredDeployments = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "modelhost_registered_deployments",
		Help: "Deployment records currently held in the registry",
	})

	healthProbes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "modelhost_health_probes_total",
		Help: "Health monitor outcomes per deployment",
	}, []string{"result"})

	terminations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "modelhost_terminations_total",
		Help: "Deployment terminations by outcome",
	}, []string{"outcome"})
)
