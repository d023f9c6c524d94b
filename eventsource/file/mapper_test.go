package file

import (
	"testing"
	"time"

	"github.com/thisisjab/logview/entity"
)

func TestPlainMapper(t *testing.T) {
	ev := plainMapper{}.Map([]byte("kernel: oom-killer invoked"))

	if ev.Message != "kernel: oom-killer invoked" {
		t.Fatalf("Message = %q", ev.Message)
	}
	if ev.Source != "" || ev.Severity != "" {
		t.Fatalf("plain mapping must not invent fields: %+v", ev)
	}
}

func TestJSONMapperFullEntry(t *testing.T) {
	m := newJSONMapper(FieldNames{})
	line := `{"source":"AppX","level":"warning","timestamp":"2024-03-09T15:04:05Z","category":"net","username":"svc","instance":42,"message":"retrying"}`

	ev := m.Map([]byte(line))

	want := entity.RawEvent{
		Source:     "AppX",
		Severity:   "warning",
		Timestamp:  time.Date(2024, 3, 9, 15, 4, 5, 0, time.UTC),
		Category:   "net",
		Username:   "svc",
		InstanceID: 42,
		Message:    "retrying",
	}
	if ev != want {
		t.Fatalf("Map() = %+v, want %+v", ev, want)
	}
}

func TestJSONMapperCustomFieldNames(t *testing.T) {
	m := newJSONMapper(FieldNames{Source: "logger", Severity: "sev", Message: "msg"})

	ev := m.Map([]byte(`{"logger":"AppY","sev":"error","msg":"boom"}`))

	if ev.Source != "AppY" || ev.Severity != "error" || ev.Message != "boom" {
		t.Fatalf("Map() = %+v", ev)
	}
}

func TestJSONMapperMissingFieldsDefault(t *testing.T) {
	m := newJSONMapper(FieldNames{})

	ev := m.Map([]byte(`{"message":"just text"}`))

	if ev.Message != "just text" {
		t.Fatalf("Message = %q", ev.Message)
	}
	if ev.Source != "" || ev.Severity != "" || !ev.Timestamp.IsZero() || ev.InstanceID != 0 {
		t.Fatalf("missing fields must stay zero: %+v", ev)
	}
}

func TestJSONMapperMalformedLine(t *testing.T) {
	m := newJSONMapper(FieldNames{})
	line := "not json at all"

	ev := m.Map([]byte(line))

	if ev.Message != line {
		t.Fatalf("malformed line must become a bare message, got %+v", ev)
	}
}

func TestJSONMapperInstanceAsString(t *testing.T) {
	m := newJSONMapper(FieldNames{})

	ev := m.Map([]byte(`{"instance":"1234"}`))

	if ev.InstanceID != 1234 {
		t.Fatalf("InstanceID = %d, want 1234", ev.InstanceID)
	}
}
