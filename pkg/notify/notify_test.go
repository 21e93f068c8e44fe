package notify

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zpiroux/dsutils/entity"
)

var testSource = Source{Sender: "pipeline", Instance: "someId", Pipeline: "orders-v1"}

func TestNotify(t *testing.T) {
	t.Setenv(MinLevelEnv, "DEBUG")
	ch := make(entity.NotifyChan, 4)
	n := New(ch, nil, 0, testSource)

	n.Notify(entity.NotifyLevelDebug, "fitting %d steps", 3)
	event := <-ch
	assert.NotEmpty(t, event.Timestamp)
	event.Timestamp = ""
	assert.Equal(t, entity.NotificationEvent{
		Level:    entity.NotifyLevelDebug,
		Sender:   "pipeline",
		Instance: "someId",
		Pipeline: "orders-v1",
		Message:  "fitting 3 steps",
		Func:     "notify.TestNotify",
	}, event)

	n.NotifyStep(entity.NotifyLevelWarn, "onehot", "transform", "failed: %v", "boom")
	event = <-ch
	assert.Equal(t, entity.NotifyLevelWarn, event.Level)
	assert.Equal(t, "onehot", event.Step)
	assert.Equal(t, "transform", event.Phase)
	assert.Equal(t, "failed: boom", event.Message)
	assert.Equal(t, "notify_test.go", filepath.Base(event.File))
	assert.Greater(t, event.Line, 0)
}

func reportFromHelper(n *Notifier) {
	n.Notify(entity.NotifyLevelInfo, "from helper")
}

func TestNotifyCallerDepth(t *testing.T) {
	t.Setenv(MinLevelEnv, "")
	ch := make(entity.NotifyChan, 2)

	reportFromHelper(New(ch, nil, 0, testSource))
	assert.Equal(t, "notify.reportFromHelper", (<-ch).Func)

	reportFromHelper(New(ch, nil, 1, testSource))
	assert.Equal(t, "notify.TestNotifyCallerDepth", (<-ch).Func)
}

func TestMinLevel(t *testing.T) {
	t.Setenv(MinLevelEnv, "")
	assert.Equal(t, entity.NotifyLevelInfo, New(nil, nil, 0, testSource).minLevel)

	t.Setenv(MinLevelEnv, "SOME_INVALID_LEVEL")
	assert.Equal(t, entity.NotifyLevelInfo, New(nil, nil, 0, testSource).minLevel)

	t.Setenv(MinLevelEnv, "ERROR")
	assert.Equal(t, entity.NotifyLevelError, New(nil, nil, 0, testSource).minLevel)

	t.Setenv(MinLevelEnv, "WARN")
	ch := make(entity.NotifyChan, 1)
	n := New(ch, nil, 0, testSource)
	n.Notify(entity.NotifyLevelInfo, "not sent")
	assert.Len(t, ch, 0)
	n.Notify(entity.NotifyLevelWarn, "sent")
	require.Len(t, ch, 1)
	assert.Equal(t, "sent", (<-ch).Message)
}

func TestNotifyDropsWhenFull(t *testing.T) {
	t.Setenv(MinLevelEnv, "")
	ch := make(entity.NotifyChan, 1)
	n := New(ch, nil, 0, testSource)
	n.Notify(entity.NotifyLevelInfo, "first")
	n.Notify(entity.NotifyLevelInfo, "second")
	require.Len(t, ch, 1)
	assert.Equal(t, "first", (<-ch).Message)

	assert.NotPanics(t, func() { New(nil, nil, 0, testSource).Notify(entity.NotifyLevelError, "nowhere to go") })
	var nilNotifier *Notifier
	assert.NotPanics(t, func() { nilNotifier.Notify(entity.NotifyLevelError, "nowhere to go") })
}

func TestLogLine(t *testing.T) {
	assert.Equal(t, "[registry] spec rejected", logLine(entity.NotificationEvent{Sender: "registry", Message: "spec rejected"}))
	assert.Equal(t, "[pipeline:someId] orders-v1/onehot(fit): failed", logLine(entity.NotificationEvent{
		Sender:   "pipeline",
		Instance: "someId",
		Pipeline: "orders-v1",
		Step:     "onehot",
		Phase:    "fit",
		Message:  "failed",
	}))
	assert.Equal(t, "[pipeline:someId] orders-v1: fitted", logLine(entity.NotificationEvent{
		Sender:   "pipeline",
		Instance: "someId",
		Pipeline: "orders-v1",
		Message:  "fitted",
	}))
}

func TestNotifyLevelNames(t *testing.T) {
	assert.Equal(t, "WARN", entity.NotifyLevelWarn.String())
	assert.Equal(t, "INVALID", entity.NotifyLevel(42).String())
	assert.Equal(t, entity.NotifyLevelDebug, entity.ParseNotifyLevel("DEBUG"))
	assert.Equal(t, entity.NotifyLevelInvalid, entity.ParseNotifyLevel("INVALID"))
}
