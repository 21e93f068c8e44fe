// Package notify fans out operational events from pipeline runs and spec registration to the
// notification channel of dsutils.Config and, optionally, to the log.
// Custom transformers can use it to report on the same channel.
package notify

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/teltech/logger"
	"github.com/zpiroux/dsutils/entity"
)

const (
	// MinLevelEnv names the env variable holding the minimum level to notify, default INFO.
	MinLevelEnv = "LOG_LEVEL"

	timestampFormat = "2006-01-02T15:04:05.000000Z"
)

// Source identifies the component sending events.
type Source struct {
	Sender   string
	Instance string
	Pipeline string
}

// Notifier sends events from a single Source.
type Notifier struct {
	src      Source
	ch       entity.NotifyChan
	log      *logger.Log
	minLevel entity.NotifyLevel

	// skip is the number of stack frames between the emitting code and the reported caller
	skip int
}

// New creates a Notifier where depth is the number of calls between the function to report as
// sender and Notify, with 0 meaning the function calling Notify directly.
// Both ch and log are optional. Events on a full channel are dropped.
func New(ch entity.NotifyChan, log *logger.Log, depth int, src Source) *Notifier {
	minLevel := entity.ParseNotifyLevel(os.Getenv(MinLevelEnv))
	if minLevel == entity.NotifyLevelInvalid {
		minLevel = entity.NotifyLevelInfo
	}
	return &Notifier{src: src, ch: ch, log: log, minLevel: minLevel, skip: depth + 2}
}

// Notify sends an event not tied to a specific pipeline step.
func (n *Notifier) Notify(level entity.NotifyLevel, format string, args ...any) {
	n.emit(level, "", "", format, args)
}

// NotifyStep sends an event about running step in phase "fit" or "transform".
func (n *Notifier) NotifyStep(level entity.NotifyLevel, step, phase, format string, args ...any) {
	n.emit(level, step, phase, format, args)
}

func (n *Notifier) emit(level entity.NotifyLevel, step, phase, format string, args []any) {
	if n == nil || level < n.minLevel {
		return
	}
	event := entity.NotificationEvent{
		Level:     level,
		Timestamp: time.Now().UTC().Format(timestampFormat),
		Sender:    n.src.Sender,
		Instance:  n.src.Instance,
		Pipeline:  n.src.Pipeline,
		Step:      step,
		Phase:     phase,
		Message:   fmt.Sprintf(format, args...),
		Func:      "unknown",
	}
	pc, file, line, ok := runtime.Caller(n.skip)
	if ok {
		if f := runtime.FuncForPC(pc); f != nil {
			event.Func = filepath.Base(f.Name())
		}
		if level >= entity.NotifyLevelWarn {
			event.File, event.Line = file, line
		}
	}

	if n.ch != nil {
		select {
		case n.ch <- event:
		default:
		}
	}
	if n.log != nil {
		n.logEvent(event)
	}
}

func (n *Notifier) logEvent(e entity.NotificationEvent) {
	line := logLine(e)
	switch e.Level {
	case entity.NotifyLevelDebug:
		n.log.Debug(line)
	case entity.NotifyLevelInfo:
		n.log.Info(line)
	case entity.NotifyLevelWarn:
		n.log.Warn(line)
	case entity.NotifyLevelError:
		n.log.Error(line)
	}
}

// logLine formats e as "[sender:instance] pipeline/step(phase): message", leaving out the
// parts not set.
func logLine(e entity.NotificationEvent) string {
	var sb strings.Builder
	sb.WriteString("[" + e.Sender)
	if e.Instance != "" {
		sb.WriteString(":" + e.Instance)
	}
	sb.WriteString("] ")
	if e.Pipeline != "" {
		sb.WriteString(e.Pipeline)
		if e.Step != "" {
			sb.WriteString("/" + e.Step)
		}
		if e.Phase != "" {
			sb.WriteString("(" + e.Phase + ")")
		}
		sb.WriteString(": ")
	}
	sb.WriteString(e.Message)
	return sb.String()
}
