// Package observability collects Prometheus metrics from the engine's
// notification hub. Metrics are purely observational: the collector is just
// another subscriber and its failures never reach the engine.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dodgeblaster/orange-agent/pkg/domain"
	"github.com/dodgeblaster/orange-agent/pkg/hub"
)

// Metrics holds the engine metric set, registered against a caller-provided
// registry so tests and multi-session hosts stay isolated.
type Metrics struct {
	TurnsStarted      prometheus.Counter
	MessagesAppended  *prometheus.CounterVec
	ToolCallsStarted  *prometheus.CounterVec
	ToolCallsFinished *prometheus.CounterVec
	ToolCallsFailed   *prometheus.CounterVec
	Confirmations     *prometheus.CounterVec
	EngineErrors      prometheus.Counter
}

// NewMetrics registers the metric set on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TurnsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "orange_turns_started_total",
			Help: "Total number of user turns started",
		}),
		MessagesAppended: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "orange_messages_appended_total",
			Help: "Total messages appended to the transcript, by role",
		}, []string{"role"}),
		ToolCallsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "orange_tool_calls_started_total",
			Help: "Total tool executions started, by tool",
		}, []string{"tool"}),
		ToolCallsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "orange_tool_calls_finished_total",
			Help: "Total tool executions finished successfully, by tool",
		}, []string{"tool"}),
		ToolCallsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "orange_tool_calls_failed_total",
			Help: "Total tool executions that failed or were declined, by tool",
		}, []string{"tool"}),
		Confirmations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "orange_confirmations_requested_total",
			Help: "Total confirmation gates raised, by tool",
		}, []string{"tool"}),
		EngineErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "orange_engine_errors_total",
			Help: "Total backend invocation errors absorbed by the engine",
		}),
	}
}

// Bind subscribes the metric set to the hub and returns a function that
// removes all subscriptions.
func (m *Metrics) Bind(h *hub.Hub) func() {
	cancels := []func(){
		h.Subscribe(domain.EventTurnStarted, func(ctx context.Context, evt domain.Event) error {
			m.TurnsStarted.Inc()
			return nil
		}),
		h.Subscribe(domain.EventUserMessageAppended, func(ctx context.Context, evt domain.Event) error {
			m.MessagesAppended.WithLabelValues("user").Inc()
			return nil
		}),
		h.Subscribe(domain.EventAssistantMessageAppended, func(ctx context.Context, evt domain.Event) error {
			m.MessagesAppended.WithLabelValues("assistant").Inc()
			return nil
		}),
		h.Subscribe(domain.EventToolCallStarted, func(ctx context.Context, evt domain.Event) error {
			m.ToolCallsStarted.WithLabelValues(evt.ToolName).Inc()
			return nil
		}),
		h.Subscribe(domain.EventToolCallFinished, func(ctx context.Context, evt domain.Event) error {
			m.ToolCallsFinished.WithLabelValues(evt.ToolName).Inc()
			return nil
		}),
		h.Subscribe(domain.EventToolCallFailed, func(ctx context.Context, evt domain.Event) error {
			m.ToolCallsFailed.WithLabelValues(evt.ToolName).Inc()
			return nil
		}),
		h.Subscribe(domain.EventToolConfirmationRequest, func(ctx context.Context, evt domain.Event) error {
			m.Confirmations.WithLabelValues(evt.ToolName).Inc()
			return nil
		}),
		h.Subscribe(domain.EventEngineError, func(ctx context.Context, evt domain.Event) error {
			m.EngineErrors.Inc()
			return nil
		}),
	}

	return func() {
		for _, cancel := range cancels {
			cancel()
		}
	}
}
