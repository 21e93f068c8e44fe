package entity

// NotificationEvent is sent on the notification channel of dsutils.Config, accessible with
// Config.NotifyChannel(), by pipelines and the transformer registry.
type NotificationEvent struct {
	Level NotifyLevel

	// Timestamp on the format "2006-01-02T15:04:05.000000Z"
	Timestamp string

	// Sender is the kind of component sending the event, "pipeline" or "registry"
	Sender string

	// Instance is the unique id of the sending pipeline, empty for the registry
	Instance string

	// Pipeline is the spec id of the sending pipeline, if any
	Pipeline string

	// Step and Phase ("fit" or "transform") are set for events about a single step run
	Step  string
	Phase string

	Message string

	// Func is the function that sent the event. File and Line are added from level WARN.
	Func string
	File string
	Line int
}

type NotifyChan chan NotificationEvent

type NotifyLevel int

const (
	NotifyLevelInvalid NotifyLevel = iota
	NotifyLevelDebug
	NotifyLevelInfo
	NotifyLevelWarn
	NotifyLevelError
)

var notifyLevelNames = [...]string{"INVALID", "DEBUG", "INFO", "WARN", "ERROR"}

func (l NotifyLevel) String() string {
	if l < NotifyLevelDebug || l > NotifyLevelError {
		return notifyLevelNames[NotifyLevelInvalid]
	}
	return notifyLevelNames[l]
}

// ParseNotifyLevel returns the level with the provided name, e.g. "WARN", or NotifyLevelInvalid.
func ParseNotifyLevel(name string) NotifyLevel {
	for l := NotifyLevelDebug; l <= NotifyLevelError; l++ {
		if notifyLevelNames[l] == name {
			return l
		}
	}
	return NotifyLevelInvalid
}
