package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoopWithoutApplication(t *testing.T) {
	ctx := context.Background()

	assert.NotPanics(t, func() {
		RecordCount(ctx, "count", 1)
		RecordDuration(ctx, "duration", time.Second)
		RecordEvent(ctx, "event", map[string]interface{}{"k": "v"})

		// A nil application stored in the context is also ignored
		nilApp := NewContext(ctx, nil)
		RecordCount(nilApp, "count", 1)
		RecordEvent(nilApp, "event", nil)
	})
}

func TestTraceWithoutTransaction(t *testing.T) {
	tracer := TraceMethodCall(context.Background(), "metrics", "Test")
	assert.Nil(t, tracer)

	assert.NotPanics(t, func() {
		tracer.AddAttribute("k", "v")
		tracer.OnError(errors.New("failure"))
		tracer.End()
	})
}
