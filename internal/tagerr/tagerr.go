// internal/tagerr/tagerr.go
package tagerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code is a stable numeric error identifier.
// It implements error and exposes Code() so status writers can publish it verbatim.
type Code uint16

const (
	OK Code = iota
	InvalidArgument
	Transport
	ProtocolTimeout
	TagRejected
	CommunicationExhausted
	DataIntegrity
	Configuration
)

// Unknown is reported for errors that carry no Code.
const Unknown Code = 0xFFFF

var codeNames = map[Code]string{
	OK:                     "ok",
	InvalidArgument:        "invalid_argument",
	Transport:              "transport_error",
	ProtocolTimeout:        "protocol_timeout",
	TagRejected:            "tag_rejected",
	CommunicationExhausted: "communication_exhausted",
	DataIntegrity:          "data_integrity_warning",
	Configuration:          "configuration_error",
	Unknown:                "unknown",
}

func (c Code) Error() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("error_%d", uint16(c))
}

func (c Code) Code() uint16 { return uint16(c) }

// E carries a Code together with the failing operation and an optional cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := e.C.Error()
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() uint16  { return uint16(e.C) }

// New builds an error without a cause.
func New(c Code, op, format string, args ...interface{}) error {
	return &E{C: c, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies err under c. A nil err yields a plain E.
func Wrap(c Code, op string, err error, format string, args ...interface{}) error {
	e := &E{C: c, Op: op, Msg: fmt.Sprintf(format, args...)}
	if err != nil {
		e.Err = errors.WithStack(err)
	}
	return e
}

// Of returns the outermost Code found in err's chain.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	var e *E
	if errors.As(err, &e) {
		return e.C
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	return Unknown
}

// Is reports whether err is classified as c anywhere in its chain.
func Is(err error, c Code) bool {
	for err != nil {
		switch v := err.(type) {
		case *E:
			if v.C == c {
				return true
			}
		case Code:
			return v == c
		}
		err = errors.Unwrap(err)
	}
	return false
}

// Cause returns the innermost error, typically the transport's own error value.
func Cause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return errors.Cause(err)
		}
		err = next
	}
}
