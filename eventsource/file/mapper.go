package file

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/thisisjab/logview/entity"
)

// Mapper converts one raw line from the log file into a raw event. Mapping
// is best-effort: fields the line does not carry stay at their zero values,
// and a line the mapper cannot parse at all becomes a bare message. A bad
// line never fails the subscription.
type Mapper interface {
	Map(line []byte) entity.RawEvent
}

// plainMapper treats the whole line as the message payload.
type plainMapper struct{}

func (plainMapper) Map(line []byte) entity.RawEvent {
	return entity.RawEvent{Message: string(line)}
}

// FieldNames names the JSON keys the json format reads. Empty names fall
// back to the defaults.
type FieldNames struct {
	Source    string `yaml:"source"`
	Severity  string `yaml:"severity"`
	Timestamp string `yaml:"timestamp"`
	Category  string `yaml:"category"`
	Username  string `yaml:"username"`
	Instance  string `yaml:"instance"`
	Message   string `yaml:"message"`
}

func (f FieldNames) withDefaults() FieldNames {
	def := func(v, fallback string) string {
		if v == "" {
			return fallback
		}
		return v
	}
	return FieldNames{
		Source:    def(f.Source, "source"),
		Severity:  def(f.Severity, "level"),
		Timestamp: def(f.Timestamp, "timestamp"),
		Category:  def(f.Category, "category"),
		Username:  def(f.Username, "username"),
		Instance:  def(f.Instance, "instance"),
		Message:   def(f.Message, "message"),
	}
}

// jsonMapper extracts raw event fields from one JSON object per line.
type jsonMapper struct {
	fields FieldNames
}

func newJSONMapper(fields FieldNames) jsonMapper {
	return jsonMapper{fields: fields.withDefaults()}
}

func (m jsonMapper) Map(line []byte) entity.RawEvent {
	data := make(map[string]any)
	if err := json.Unmarshal(line, &data); err != nil {
		// Not JSON after all; keep the entry as a bare message.
		return entity.RawEvent{Message: string(line)}
	}

	return entity.RawEvent{
		Source:     stringField(data, m.fields.Source),
		Severity:   stringField(data, m.fields.Severity),
		Timestamp:  timeField(data, m.fields.Timestamp),
		Category:   stringField(data, m.fields.Category),
		Username:   stringField(data, m.fields.Username),
		InstanceID: intField(data, m.fields.Instance),
		Message:    stringField(data, m.fields.Message),
	}
}

func stringField(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

func timeField(data map[string]any, key string) time.Time {
	s, ok := data[key].(string)
	if !ok {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func intField(data map[string]any, key string) int64 {
	switch v := data[key].(type) {
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}
