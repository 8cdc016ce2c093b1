package tagerr

import (
	"fmt"
	"io"
	"testing"
)

func TestCodesAreStableStrings(t *testing.T) {
	cases := map[string]Code{
		"ok":                      OK,
		"invalid_argument":        InvalidArgument,
		"transport_error":         Transport,
		"protocol_timeout":        ProtocolTimeout,
		"tag_rejected":            TagRejected,
		"communication_exhausted": CommunicationExhausted,
		"data_integrity_warning":  DataIntegrity,
		"configuration_error":     Configuration,
	}
	for want, c := range cases {
		if c.Error() != want {
			t.Fatalf("code %d: got %q want %q", c, c.Error(), want)
		}
	}
}

func TestWrapKeepsCauseAndCode(t *testing.T) {
	err := Wrap(Transport, "memif.read", io.ErrUnexpectedEOF, "reply slot")
	if !Is(err, Transport) {
		t.Fatalf("expected Transport, got %v", Of(err))
	}
	if Cause(err) != io.ErrUnexpectedEOF {
		t.Fatalf("cause lost: %v", Cause(err))
	}

	outer := fmt.Errorf("cache get: %w", Wrap(CommunicationExhausted, "memif.read", err, "3 attempts"))
	if Of(outer) != CommunicationExhausted {
		t.Fatalf("outer code: got %v", Of(outer))
	}
	if !Is(outer, Transport) {
		t.Fatalf("inner Transport classification lost")
	}
	if Cause(outer) != io.ErrUnexpectedEOF {
		t.Fatalf("deep cause lost: %v", Cause(outer))
	}
}

func TestOfPlainErrors(t *testing.T) {
	if Of(nil) != OK {
		t.Fatalf("nil should be OK")
	}
	if Of(io.EOF) != Unknown {
		t.Fatalf("plain error should be Unknown")
	}
	if Of(TagRejected) != TagRejected {
		t.Fatalf("bare code should classify as itself")
	}
	if got := New(InvalidArgument, "regmap", "bin %d", 7).(*E).Code(); got != uint16(InvalidArgument) {
		t.Fatalf("Code() = %d", got)
	}
}
