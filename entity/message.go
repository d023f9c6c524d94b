package entity

import "time"

type LogLevel uint8

const (
	LogLevelUnknown LogLevel = iota
	LogLevelDebug
	LogLevelInfo
	LogLevelWarning
	LogLevelError
	LogLevelFatal
)

func (l LogLevel) String() string {
	return [...]string{"UNKNOWN", "DEBUG", "INFO", "WARNING", "ERROR", "FATAL"}[l]
}

// RawEvent is one event as reported natively by an external log source,
// before normalization. Bindings fill fields best-effort; anything the
// source does not report stays at its zero value.
type RawEvent struct {
	Source     string    `json:"source"`
	Severity   string    `json:"severity"`
	Timestamp  time.Time `json:"timestamp"`
	Category   string    `json:"category"`
	Username   string    `json:"username"`
	InstanceID int64     `json:"instance_id"`
	Message    string    `json:"message"`
}

// LogMessage is the normalized, source-agnostic record pushed to handlers.
// Constructed once per accepted raw event; ownership transfers to the
// handler and the producing provider keeps no reference.
type LogMessage struct {
	Number     int64     `json:"number"`
	Level      LogLevel  `json:"level"`
	Timestamp  time.Time `json:"timestamp"`
	Logger     string    `json:"logger"`
	Category   string    `json:"category"`
	Username   string    `json:"username"`
	InstanceID int64     `json:"instance_id"`
	Message    string    `json:"message"`
}
