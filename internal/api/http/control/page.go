package control

import (
	"bytes"
	"context"
	"fmt"
	"time"

	domain "github.com/oshokin/alarm-ap/internal/domain/alarm"
	"github.com/oshokin/alarm-ap/internal/logger"
)

// ControlPath is the only path that renders content.
const ControlPath = "/alarm"

// pageTemplate is parameterised by status text, link target and link label.
const pageTemplate = `<html><body style="text-align:center;margin-top:50px">` +
	`<h1>Alarme</h1>` +
	`<p>%s</p>` +
	`<a href="?alarm=%d" style="background:#4CAF50;color:white;padding:5px 10px;text-decoration:none">%s</a>` +
	`</body></html>`

// alarmParam prefixes the toggle query.
var alarmParam = []byte("alarm=")

// Generate renders the control page into dst and returns its length.
// Paths other than ControlPath produce no content and a zero length.
// A valid toggle query updates st before rendering, so the page always
// shows the state after this request.
func Generate(ctx context.Context, dst *Buffer, path, query []byte, st *domain.State, now time.Time) (int, error) {
	dst.Reset()

	if string(path) != ControlPath {
		return 0, nil
	}

	if active, ok := parseToggle(query); ok && st.SetActive(active, now) {
		logger.InfoKV(ctx, "Alarm state changed", "alarm_active", st.Active)
	}

	status, target, label := "DESATIVADO", 1, "Ligar"
	if st.Active {
		status, target, label = "ATIVADO", 0, "Desligar"
	}

	if _, err := fmt.Fprintf(dst, pageTemplate, status, target, label); err != nil {
		return 0, err
	}

	return dst.Len(), nil
}

// parseToggle reads "alarm=<int>" and reports whether the query matched.
// Any non-zero integer switches the alarm on.
func parseToggle(query []byte) (active, ok bool) {
	rest, found := bytes.CutPrefix(query, alarmParam)
	if !found {
		return false, false
	}

	if len(rest) > 0 && (rest[0] == '+' || rest[0] == '-') {
		rest = rest[1:]
	}

	digits := 0

	for _, c := range rest {
		if c < '0' || c > '9' {
			break
		}

		digits++

		if c != '0' {
			active = true
		}
	}

	return active, digits > 0
}
