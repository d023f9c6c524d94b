package eventlog

import (
	"testing"
	"time"

	"github.com/thisisjab/logview/entity"
)

func TestCSVHeader(t *testing.T) {
	r := New(Config{Log: "Application"}, nil, nil)

	want := "\"Number\",\"Level\",\"Timestamp\",\"Logger\",\"Category\",\"User Name\",\"Thread\",\"Message\"\n"
	if got := r.CSVHeader(); got != want {
		t.Fatalf("CSVHeader() = %q, want %q", got, want)
	}
}

func TestCSVRow(t *testing.T) {
	msg := entity.LogMessage{
		Number:     42,
		Level:      entity.LogLevelWarning,
		Timestamp:  time.Date(2024, 3, 9, 15, 4, 5, 0, time.UTC),
		Logger:     "AppX",
		Category:   "General",
		Username:   "svc-runner",
		InstanceID: 4711,
		Message:    "disk almost full",
	}

	want := "42,WARNING,2024-03-09T15:04:05Z,AppX,General,\"svc-runner\",\"4711\",\"disk almost full\"\n"
	if got := CSVRow(msg); got != want {
		t.Fatalf("CSVRow() = %q, want %q", got, want)
	}
}

func TestCSVRowEscapesQuotes(t *testing.T) {
	msg := entity.LogMessage{
		Number:    1,
		Level:     entity.LogLevelError,
		Timestamp: time.Date(2024, 3, 9, 15, 4, 5, 0, time.UTC),
		Logger:    "AppX",
		Message:   `cannot open "state.db"`,
	}

	want := "1,ERROR,2024-03-09T15:04:05Z,AppX,,\"\",\"0\",\"cannot open \"\"state.db\"\"\"\n"
	if got := CSVRow(msg); got != want {
		t.Fatalf("CSVRow() = %q, want %q", got, want)
	}
}
