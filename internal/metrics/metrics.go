package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// Collector bundles the facility metrics.
type Collector struct {
	gatherer prometheus.Gatherer

	GridToggles        *prometheus.CounterVec
	SubsystemOverloads *prometheus.CounterVec
	SubsystemUsage     *prometheus.GaugeVec
	SubsystemActive    *prometheus.GaugeVec
	BreachState        prometheus.Gauge
	ListenersNotified  prometheus.Counter
	RPCRequests        *prometheus.CounterVec
}

// NewCollector registers the facility metrics against reg, defaulting to the
// global registry when reg is nil. Registering twice reuses the existing collectors.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{gatherer: gatherer}

	var err error

	if c.GridToggles, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "facility_grid_toggles_total",
		Help: "Grid state changes, labeled by grid and resulting state.",
	}, []string{"grid", "state"})); err != nil {
		return nil, err
	}

	if c.SubsystemOverloads, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "facility_subsystem_overloads_total",
		Help: "Connections that overloaded a subsystem and shut it down.",
	}, []string{"grid", "subsystem"})); err != nil {
		return nil, err
	}

	if c.SubsystemUsage, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "facility_subsystem_usage",
		Help: "Power granted by a subsystem after its last state change.",
	}, []string{"grid", "subsystem"})); err != nil {
		return nil, err
	}

	if c.SubsystemActive, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "facility_subsystem_active",
		Help: "1 while a subsystem is supplying power.",
	}, []string{"grid", "subsystem"})); err != nil {
		return nil, err
	}

	if c.BreachState, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "facility_breach_triggered",
		Help: "1 once the facility breach has fired.",
	})); err != nil {
		return nil, err
	}

	if c.ListenersNotified, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "facility_breach_listeners_notified_total",
		Help: "Breach reactions invoked by the breach broadcast.",
	})); err != nil {
		return nil, err
	}

	if c.RPCRequests, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "facility_rpc_requests_total",
		Help: "Handled admin RPCs, labeled by method and gRPC status code.",
	}, []string{"method", "code"})); err != nil {
		return nil, err
	}

	return c, nil
}

// GridToggled implements power.Observer.
func (c *Collector) GridToggled(grid string, active bool) {
	if c == nil {
		return
	}

	c.GridToggles.WithLabelValues(grid, stateLabel(active)).Inc()
}

// SubsystemToggled implements power.Observer.
func (c *Collector) SubsystemToggled(grid, subsystem string, active bool, usage, _ float64) {
	if c == nil {
		return
	}

	c.SubsystemUsage.WithLabelValues(grid, subsystem).Set(usage)
	c.SubsystemActive.WithLabelValues(grid, subsystem).Set(boolFloat(active))
}

// SubsystemOverloaded implements power.Observer.
func (c *Collector) SubsystemOverloaded(grid, subsystem string) {
	if c == nil {
		return
	}

	c.SubsystemOverloads.WithLabelValues(grid, subsystem).Inc()
}

// SubsystemUsageChanged implements power.Observer.
func (c *Collector) SubsystemUsageChanged(grid, subsystem string, usage, _ float64) {
	if c == nil {
		return
	}

	c.SubsystemUsage.WithLabelValues(grid, subsystem).Set(usage)
}

// BreachTriggered implements breach.Observer.
func (c *Collector) BreachTriggered(notified int) {
	if c == nil {
		return
	}

	c.BreachState.Set(1)
	c.ListenersNotified.Add(float64(notified))
}

// UnaryServerInterceptor counts unary RPCs by method and status code.
func (c *Collector) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)

		if c == nil {
			return resp, err
		}

		method := "unknown"
		if info != nil {
			method = methodName(info.FullMethod)
		}

		c.RPCRequests.WithLabelValues(method, status.Code(err).String()).Inc()

		return resp, err
	}
}

// Handler serves the registered metrics.
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}

	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// methodName strips the service path from a full gRPC method name.
func methodName(fullMethod string) string {
	if idx := strings.LastIndex(fullMethod, "/"); idx >= 0 && idx+1 < len(fullMethod) {
		return fullMethod[idx+1:]
	}

	if fullMethod == "" {
		return "unknown"
	}

	return fullMethod
}

func stateLabel(active bool) string {
	if active {
		return "on"
	}

	return "off"
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}

	return 0
}

// register adds collector to reg, returning the already registered instance
// when an identical collector exists.
func register[T prometheus.Collector](reg prometheus.Registerer, collector T) (T, error) {
	if err := reg.Register(collector); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError) //nolint:errorlint // Registry returns the value type.
		if !ok {
			return collector, err
		}

		existing, ok := are.ExistingCollector.(T)
		if !ok {
			var zero T

			return zero, fmt.Errorf("collector %T already registered with incompatible type", collector)
		}

		return existing, nil
	}

	return collector, nil
}
