package eventlog

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/thisisjab/logview/entity"
)

// ExportHeader is the fixed export header row. Field order matches the
// display columns.
const ExportHeader = `"Number","Level","Timestamp","Logger","Category","User Name","Thread","Message"` + "\n"

func (r *Receiver) CSVHeader() string {
	return ExportHeader
}

// CSVRow renders one message as an export row in the fixed column order.
// Free-text fields are quoted, with embedded quotes doubled.
func CSVRow(msg entity.LogMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d,%s,%s,%s,%s,",
		msg.Number,
		msg.Level,
		msg.Timestamp.Format(time.RFC3339),
		msg.Logger,
		msg.Category,
	)
	b.WriteString(quote(msg.Username))
	b.WriteByte(',')
	b.WriteString(quote(strconv.FormatInt(msg.InstanceID, 10)))
	b.WriteByte(',')
	b.WriteString(quote(msg.Message))
	b.WriteByte('\n')
	return b.String()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
