package webscraper

import (
	"fmt"
	"net/http"
)

// Status is the class of a probe outcome
type Status int

const (
	StatusOK Status = iota
	StatusBroken
	StatusSkipped
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusBroken:
		return "BROKEN"
	case StatusSkipped:
		return "SKIPPED"
	case StatusError:
		return "ERROR"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// ErrorKind classifies transport failures
type ErrorKind int

const (
	ErrorNone ErrorKind = iota
	ErrorTimeout
	ErrorConnection
	ErrorOther
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorNone:
		return ""
	case ErrorTimeout:
		return "Timeout"
	case ErrorConnection:
		return "Connection"
	case ErrorOther:
		return "Other"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// ProbeOutcome is the immutable result of checking one URL.
// StatusCode is only set for StatusBroken and StatusOK, Kind only for StatusError.
type ProbeOutcome struct {
	Status     Status
	StatusCode int
	Kind       ErrorKind
}

func OK(statusCode int) ProbeOutcome {
	return ProbeOutcome{Status: StatusOK, StatusCode: statusCode}
}

func Broken(statusCode int) ProbeOutcome {
	return ProbeOutcome{Status: StatusBroken, StatusCode: statusCode}
}

func Skipped() ProbeOutcome {
	return ProbeOutcome{Status: StatusSkipped}
}

func Failed(kind ErrorKind) ProbeOutcome {
	return ProbeOutcome{Status: StatusError, Kind: kind}
}

// IsFinding reports whether the outcome must be reported as a broken link
func (o ProbeOutcome) IsFinding() bool {
	return o.Status == StatusBroken || o.Status == StatusError
}

// String renders the outcome for logs and reports, e.g. "BROKEN (404 Not Found)" or "ERROR (Timeout)"
func (o ProbeOutcome) String() string {
	switch o.Status {
	case StatusBroken:
		if text := http.StatusText(o.StatusCode); text != "" {
			return fmt.Sprintf("BROKEN (%d %s)", o.StatusCode, text)
		}
		return fmt.Sprintf("BROKEN (%d)", o.StatusCode)
	case StatusError:
		return fmt.Sprintf("ERROR (%s)", o.Kind)
	}
	return o.Status.String()
}

// Finding is a broken or unreachable link found on a page
type Finding struct {
	URL     string
	Outcome ProbeOutcome
}
