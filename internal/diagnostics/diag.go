// Package diagnostics describes notable runtime conditions in a form both
// the log and preview clients can show.
package diagnostics

import (
	"fmt"

	"github.com/rs/zerolog"
)

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

// Publisher receives diagnostics as they happen.
type Publisher interface {
	Publish(Diagnostic)
}

// Discard drops every diagnostic.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(Diagnostic) {}

// Log writes d to l at the level matching its severity.
func Log(l zerolog.Logger, d Diagnostic) {
	var ev *zerolog.Event
	switch d.Severity {
	case Err:
		ev = l.Error()
	case Warn:
		ev = l.Warn()
	default:
		ev = l.Info()
	}
	ev = ev.Str("code", d.Code)
	if d.Detail != "" {
		ev = ev.Str("detail", d.Detail)
	}
	if len(d.Evidence) > 0 {
		ev = ev.Fields(d.Evidence)
	}
	ev.Msg(d.Summary)
}

func SinkFailing(frame uint64, streak int, err error) Diagnostic {
	return Diagnostic{
		Severity: Err,
		Code:     "SINK.FAILING",
		Summary:  fmt.Sprintf("%d consecutive frames failed to send", streak),
		Detail:   err.Error(),
		LikelyCauses: []string{
			"controller is offline or changed address",
			"Wi-Fi link is saturated",
		},
		SuggestedFixes: []string{
			"check wled.host and that the controller answers /json/info",
			"lower leds.fps",
		},
		Evidence: map[string]any{"frame": frame, "streak": streak},
	}
}

func SinkRecovered(frame uint64, streak int) Diagnostic {
	return Diagnostic{
		Severity: Info,
		Code:     "SINK.RECOVERED",
		Summary:  "frames are reaching the controller again",
		Evidence: map[string]any{"frame": frame, "failed_frames": streak},
	}
}

func EffectActive(name string) Diagnostic {
	return Diagnostic{Severity: Info, Code: "EFFECT.ACTIVE", Summary: "effect started", Detail: name}
}

func EffectFailed(err error) Diagnostic {
	return Diagnostic{
		Severity:       Err,
		Code:           "EFFECT.FAILED",
		Summary:        "effect crashed; display cleared",
		Detail:         err.Error(),
		SuggestedFixes: []string{"run a different effect with --effect"},
	}
}

func CountMismatch(loaded, want int, policy string) Diagnostic {
	return Diagnostic{
		Severity: Warn,
		Code:     "COORDS.COUNT",
		Summary:  "coordinate rows do not match leds.count",
		Evidence: map[string]any{"loaded": loaded, "configured": want, "policy": policy},
	}
}

func LinearLayout(n int) Diagnostic {
	return Diagnostic{
		Severity:       Warn,
		Code:           "COORDS.LINEAR",
		Summary:        "no coordinate file; LEDs laid out on a vertical line",
		SuggestedFixes: []string{"pass --coords with the measured tree positions"},
		Evidence:       map[string]any{"leds": n},
	}
}
