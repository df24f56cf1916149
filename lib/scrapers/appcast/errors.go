package appcast

import (
	"fmt"
	"strings"
)

const (
	StepLoginPage   = "fetch login page"
	StepToken       = "extract authenticity token"
	StepLoginSubmit = "submit login"
)

// LoginError is returned by AcquireSession when a step of the login
// sequence cannot complete.
type LoginError struct {
	Step string
	// zero when the failure did not come from an http status
	StatusCode int
	Err        error
}

func (e *LoginError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "login failed: %s", e.Step)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": unexpected status %d", e.StatusCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %s", e.Err.Error())
	}
	return b.String()
}

func (e *LoginError) Unwrap() error {
	return e.Err
}

// ApiError is returned by FetchReport when the report endpoint responds
// with a non-2xx status. Body holds at most the first 500 characters.
type ApiError struct {
	StatusCode int
	Body       string
}

func (e *ApiError) Error() string {
	return fmt.Sprintf("report request failed with status %d: %s", e.StatusCode, e.Body)
}

const maxErrorBody = 500

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
