package server

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/oshokin/facility-breach/internal/config"
	"github.com/oshokin/facility-breach/internal/facility"
	"github.com/oshokin/facility-breach/internal/metrics"
)

// service bundles the running facility with its metrics collector.
type service struct {
	// facility is the simulation exposed over gRPC.
	facility *facility.Facility
	// metrics observes power and breach events and RPCs.
	metrics *metrics.Collector
}

// newService registers metrics on reg and builds the facility wired to them.
func newService(ctx context.Context, settings *config.Config, reg prometheus.Registerer) (*service, error) {
	collector, err := metrics.NewCollector(reg)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	f, err := facility.New(ctx, settings,
		facility.WithPowerObserver(collector),
		facility.WithBreachObserver(collector),
	)
	if err != nil {
		return nil, fmt.Errorf("build facility: %w", err)
	}

	return &service{
		facility: f,
		metrics:  collector,
	}, nil
}
