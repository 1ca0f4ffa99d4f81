// Package command decodes remote display commands, as received over MQTT or
// HTTP, and applies them to a controller.
package command

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Kind names a command.
type Kind string

const (
	KindAlert  Kind = "alert"
	KindStatus Kind = "status"
	KindRumble Kind = "rumble"
)

// Kinds lists every command kind.
var Kinds = []Kind{KindAlert, KindStatus, KindRumble}

var (
	ErrUnknownKind = errors.New("command: unknown kind")
	ErrBadPayload  = errors.New("command: bad payload")
)

// Target receives display commands. *controller.Controller satisfies it.
type Target interface {
	SubmitStatus(line int, text string) error
	SubmitAlert(line int, text string, d time.Duration, rumble string) error
	SubmitAlerts(texts []string, d time.Duration, rumble string) error
	Rumble(pattern string) error
}

// Alert is a timed alert. Either Text (starting at Line, may contain
// newlines) or Texts (one entry per row from row 0) is given.
type Alert struct {
	Line       int      `json:"line"`
	Text       string   `json:"text,omitempty"`
	Texts      []string `json:"texts,omitempty"`
	DurationMs int64    `json:"duration_ms"`
	Rumble     string   `json:"rumble,omitempty"`
}

// Status is permanent row text.
type Status struct {
	Line int    `json:"line"`
	Text string `json:"text"`
}

// Rumble is a one-shot rumble pattern.
type Rumble struct {
	Pattern string `json:"pattern"`
}

// Apply submits the alert to t.
func (a Alert) Apply(t Target) error {
	d := time.Duration(a.DurationMs) * time.Millisecond
	if len(a.Texts) > 0 {
		if a.Text != "" || a.Line != 0 {
			return fmt.Errorf("%w: texts excludes text and line", ErrBadPayload)
		}
		return t.SubmitAlerts(a.Texts, d, a.Rumble)
	}
	return t.SubmitAlert(a.Line, a.Text, d, a.Rumble)
}

// Apply submits the status text to t.
func (s Status) Apply(t Target) error {
	return t.SubmitStatus(s.Line, s.Text)
}

// Apply submits the pattern to t.
func (r Rumble) Apply(t Target) error {
	return t.Rumble(r.Pattern)
}

// ParseKind validates a command kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Apply decodes payload as a command of kind and applies it to t.
// Unknown fields are rejected.
func Apply(t Target, kind Kind, payload []byte) error {
	switch kind {
	case KindAlert:
		var a Alert
		if err := decode(payload, &a); err != nil {
			return err
		}
		return a.Apply(t)
	case KindStatus:
		var s Status
		if err := decode(payload, &s); err != nil {
			return err
		}
		return s.Apply(t)
	case KindRumble:
		var r Rumble
		if err := decode(payload, &r); err != nil {
			return err
		}
		return r.Apply(t)
	}
	return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

func decode(payload []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return nil
}
