package observability

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/dodgeblaster/orange-agent/pkg/domain"
	"github.com/dodgeblaster/orange-agent/pkg/hub"
)

func TestMetricsCountEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	h := hub.New()
	unbind := metrics.Bind(h)
	defer unbind()

	ctx := context.Background()
	h.Publish(ctx, domain.Event{Type: domain.EventTurnStarted})
	h.Publish(ctx, domain.Event{Type: domain.EventUserMessageAppended, Content: "hi"})
	h.Publish(ctx, domain.Event{Type: domain.EventAssistantMessageAppended, Content: "hello"})
	h.Publish(ctx, domain.Event{Type: domain.EventToolCallStarted, ToolName: "read_file"})
	h.Publish(ctx, domain.Event{Type: domain.EventToolCallFinished, ToolName: "read_file"})
	h.Publish(ctx, domain.Event{Type: domain.EventToolCallFailed, ToolName: "run_command"})
	h.Publish(ctx, domain.Event{Type: domain.EventToolConfirmationRequest, ToolName: "run_command"})
	h.Publish(ctx, domain.Event{Type: domain.EventEngineError})

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.TurnsStarted))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.MessagesAppended.WithLabelValues("user")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.MessagesAppended.WithLabelValues("assistant")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.ToolCallsStarted.WithLabelValues("read_file")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.ToolCallsFinished.WithLabelValues("read_file")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.ToolCallsFailed.WithLabelValues("run_command")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Confirmations.WithLabelValues("run_command")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.EngineErrors))
}

func TestUnbindStopsCounting(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	h := hub.New()
	unbind := metrics.Bind(h)

	ctx := context.Background()
	h.Publish(ctx, domain.Event{Type: domain.EventTurnStarted})
	unbind()
	h.Publish(ctx, domain.Event{Type: domain.EventTurnStarted})

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.TurnsStarted))
}
