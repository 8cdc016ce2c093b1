// internal/memif/engine_test.go
package memif_test

import (
	"io"
	"log"
	"testing"
	"time"

	"github.com/tamzrod/rt0013/internal/memif"
	"github.com/tamzrod/rt0013/internal/simtag"
	"github.com/tamzrod/rt0013/internal/tagerr"
)

type sleeps struct {
	got []time.Duration
}

func (s *sleeps) sleep(d time.Duration) { s.got = append(s.got, d) }

func newEngine(t *testing.T, tag *simtag.Tag) (*memif.Engine, *sleeps) {
	t.Helper()
	s := &sleeps{}
	e, err := memif.New(tag, memif.Config{
		TagID:  tag.ID(),
		Sleep:  s.sleep,
		Logger: log.New(io.Discard, "", 0),
	})
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	return e, s
}

func TestNew_RequiresTransportAndTag(t *testing.T) {
	if _, err := memif.New(nil, memif.Config{TagID: "t"}); err == nil {
		t.Fatalf("expected error for nil transport")
	}
	if _, err := memif.New(simtag.New("t"), memif.Config{}); err == nil {
		t.Fatalf("expected error for empty tag id")
	}
}

func TestRead_ReturnsRegisters(t *testing.T) {
	tag := simtag.New("e1")
	tag.SetRegs(0x0100, []uint16{0x1234, 0xABCD, 0x0001})
	e, s := newEngine(t, tag)

	got, err := e.Read(0x0100, 3)
	if err != nil {
		t.Fatalf("Read err=%v", err)
	}
	want := []uint16{0x1234, 0xABCD, 0x0001}
	if len(got) != len(want) {
		t.Fatalf("len=%d want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("word %d = 0x%04X, want 0x%04X", i, got[i], want[i])
		}
	}

	// 3 words = 6 bytes: 100 + 7*(6/4+1) ms
	if len(s.got) != 1 || s.got[0] != 114*time.Millisecond {
		t.Fatalf("sleeps=%v, want [114ms]", s.got)
	}

	cmds := tag.Commands
	if len(cmds) != 1 {
		t.Fatalf("commands=%d, want 1", len(cmds))
	}
	if cmds[0].Code != memif.CmdRead || cmds[0].Address != 0x0100 || cmds[0].Size != 3 {
		t.Fatalf("unexpected command %+v", cmds[0])
	}
}

func TestReadWait(t *testing.T) {
	cases := []struct {
		words uint16
		want  time.Duration
	}{
		{1, 107 * time.Millisecond},
		{2, 114 * time.Millisecond},
		{100, 100*time.Millisecond + 7*51*time.Millisecond},
		{200, 100*time.Millisecond + 7*101*time.Millisecond},
	}
	for _, c := range cases {
		if got := memif.ReadWait(c.words); got != c.want {
			t.Fatalf("ReadWait(%d)=%v want %v", c.words, got, c.want)
		}
	}
}

func TestWrite_StoresRegisters(t *testing.T) {
	tag := simtag.New("e1")
	e, s := newEngine(t, tag)

	if err := e.Write(0x006E, []uint16{0x4142, 0x4300}); err != nil {
		t.Fatalf("Write err=%v", err)
	}
	if tag.Reg(0x006E) != 0x4142 || tag.Reg(0x006F) != 0x4300 {
		t.Fatalf("registers not written: 0x%04X 0x%04X", tag.Reg(0x006E), tag.Reg(0x006F))
	}
	if len(s.got) != 1 || s.got[0] != 400*time.Millisecond {
		t.Fatalf("sleeps=%v, want [400ms]", s.got)
	}
}

func TestMessageID_Alternates(t *testing.T) {
	tag := simtag.New("e1")
	e, _ := newEngine(t, tag)

	for i := 0; i < 4; i++ {
		if _, err := e.Read(0x0008, 1); err != nil {
			t.Fatalf("Read %d err=%v", i, err)
		}
	}
	want := []byte{1, 0, 1, 0}
	for i, c := range tag.Commands {
		if c.ID != want[i] {
			t.Fatalf("command %d id=%d want %d", i, c.ID, want[i])
		}
	}
	if memif.LastID(e) != 0 {
		t.Fatalf("LastID=%d want 0", memif.LastID(e))
	}
}

func TestReadOnce_StaleReplyIsProtocolTimeout(t *testing.T) {
	tag := simtag.New("e1")
	tag.Stale = true
	e, _ := newEngine(t, tag)

	_, err := e.ReadOnce(0x0010, 1)
	if !tagerr.Is(err, tagerr.ProtocolTimeout) {
		t.Fatalf("err=%v, want protocol_timeout", err)
	}
}

func TestReadOnce_UnknownReplyCodeIsProtocolTimeout(t *testing.T) {
	tag := simtag.New("e1")
	tag.ReplyCode = 0x55
	e, _ := newEngine(t, tag)

	_, err := e.ReadOnce(0x0010, 1)
	if !tagerr.Is(err, tagerr.ProtocolTimeout) {
		t.Fatalf("err=%v, want protocol_timeout", err)
	}
}

func TestReadOnce_NACKIsTagRejected(t *testing.T) {
	tag := simtag.New("e1")
	tag.NACK = true
	e, _ := newEngine(t, tag)

	_, err := e.ReadOnce(0x0010, 1)
	if !tagerr.Is(err, tagerr.TagRejected) {
		t.Fatalf("err=%v, want tag_rejected", err)
	}
	if err := e.WriteOnce(0x0010, []byte{0, 1}); !tagerr.Is(err, tagerr.TagRejected) {
		t.Fatalf("write err=%v, want tag_rejected", err)
	}
}

func TestRead_ExhaustsAfterThreeAttempts(t *testing.T) {
	tag := simtag.New("e1")
	tag.FailCalls = 1000
	e, _ := newEngine(t, tag)

	_, err := e.Read(0x0010, 1)
	if !tagerr.Is(err, tagerr.CommunicationExhausted) {
		t.Fatalf("err=%v, want communication_exhausted", err)
	}
	if !tagerr.Is(err, tagerr.Transport) {
		t.Fatalf("err=%v should keep the transport cause", err)
	}
	// Each attempt dies on its first transport call.
	if tag.Calls != memif.Attempts {
		t.Fatalf("transport calls=%d, want %d", tag.Calls, memif.Attempts)
	}
}

func TestRead_SucceedsAfterTwoFailures(t *testing.T) {
	tag := simtag.New("e1")
	tag.SetReg(0x0010, 0x0042)
	tag.FailCalls = 2
	e, _ := newEngine(t, tag)

	got, err := e.Read(0x0010, 1)
	if err != nil {
		t.Fatalf("Read err=%v", err)
	}
	if got[0] != 0x0042 {
		t.Fatalf("got 0x%04X", got[0])
	}
}

func TestWrite_StaleRetriesThenExhausts(t *testing.T) {
	tag := simtag.New("e1")
	tag.Stale = true
	e, s := newEngine(t, tag)

	err := e.Write(0x0010, []uint16{1})
	if tagerr.Of(err) != tagerr.CommunicationExhausted {
		t.Fatalf("err=%v, want communication_exhausted", err)
	}
	if len(tag.Commands) != memif.Attempts {
		t.Fatalf("handshakes=%d, want %d", len(tag.Commands), memif.Attempts)
	}
	if len(s.got) != memif.Attempts {
		t.Fatalf("settle waits=%d, want %d", len(s.got), memif.Attempts)
	}
}

func TestInvalidArguments_NoIO(t *testing.T) {
	tag := simtag.New("e1")
	e, _ := newEngine(t, tag)

	checks := []struct {
		name string
		run  func() error
	}{
		{"odd byte address", func() error { _, err := e.ReadOnce(0x0011, 1); return err }},
		{"zero words", func() error { _, err := e.Read(0x0010, 0); return err }},
		{"too many words", func() error { _, err := e.Read(0x0010, memif.MaxWords+1); return err }},
		{"past end", func() error { _, err := e.Read(0x1089, 2); return err }},
		{"odd payload", func() error { return e.WriteOnce(0x0010, []byte{1, 2, 3}) }},
		{"empty write", func() error { return e.Write(0x0010, nil) }},
	}
	for _, c := range checks {
		if err := c.run(); !tagerr.Is(err, tagerr.InvalidArgument) {
			t.Fatalf("%s: err=%v, want invalid_argument", c.name, err)
		}
	}
	if tag.Calls != 0 {
		t.Fatalf("transport calls=%d, want 0", tag.Calls)
	}
}

func TestRead_MaxTransfer(t *testing.T) {
	tag := simtag.New("e1")
	e, _ := newEngine(t, tag)

	got, err := e.Read(0x008A, memif.MaxWords)
	if err != nil {
		t.Fatalf("Read err=%v", err)
	}
	if len(got) != memif.MaxWords {
		t.Fatalf("len=%d", len(got))
	}
	for i, w := range got {
		if w != 0xFFFF {
			t.Fatalf("log word %d = 0x%04X, want empty", i, w)
		}
	}
}
