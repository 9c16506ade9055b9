package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type ExpectationAction string

const (
	ActionDuplicate ExpectationAction = "Duplicate"
	ActionError     ExpectationAction = "Error"
)

// Expectation scripts the mock's answer for a biometric hash or reference id.
type Expectation struct {
	ID                string            `json:"id"`
	Version           string            `json:"version,omitempty"`
	RequestTime       *RequestTime      `json:"requesttime,omitempty"`
	ActionToInterfere ExpectationAction `json:"actionToInterfere"`
	ErrorCode         string            `json:"errorCode,omitempty"`
	DelayInExecution  string            `json:"delayInExecution,omitempty"`
	Gallery           *Gallery          `json:"gallery,omitempty"`
}

// Validate checks the action and, for errors, the reason code.
func (e *Expectation) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("id is required")
	}
	switch {
	case strings.EqualFold(string(e.ActionToInterfere), string(ActionDuplicate)):
		e.ActionToInterfere = ActionDuplicate
	case strings.EqualFold(string(e.ActionToInterfere), string(ActionError)):
		e.ActionToInterfere = ActionError
		if _, err := ParseReason(e.ErrorCode); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported actionToInterfere %q", e.ActionToInterfere)
	}
	if _, err := e.Delay(); err != nil {
		return err
	}
	return nil
}

// Delay parses delayInExecution, given in whole seconds.
func (e *Expectation) Delay() (time.Duration, error) {
	s := strings.TrimSpace(e.DelayInExecution)
	if s == "" {
		return 0, nil
	}
	secs, err := strconv.Atoi(s)
	if err != nil || secs < 0 {
		return 0, fmt.Errorf("delayInExecution must be a non-negative number of seconds, got %q", s)
	}
	return time.Duration(secs) * time.Second, nil
}

// Reason returns the configured failure reason, or INTERNAL_ERROR_UNKNOWN.
func (e *Expectation) Reason() FailureReason {
	r, err := ParseReason(e.ErrorCode)
	if err != nil {
		return ReasonInternalErrorUnknown
	}
	return r
}

// Settings are the runtime-tunable engine switches.
type Settings struct {
	FindDuplicate bool `json:"findDuplicate"`
}
