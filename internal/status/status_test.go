// internal/status/status_test.go
package status

import (
	"testing"

	"github.com/tamzrod/rt0013/internal/regmap"
)

func TestDecodeTag_Battery(t *testing.T) {
	cases := []struct {
		raw  uint16
		want Battery
	}{
		{0x0000, BatteryEmpty},
		{0x0001, BatteryLow},
		{0x0002, BatteryNormal},
		{0x0003, BatteryFull},
	}
	for _, c := range cases {
		if got := DecodeTag(c.raw).Battery; got != c.want {
			t.Fatalf("raw=0x%04X battery=%s want %s", c.raw, got, c.want)
		}
	}
}

func TestDecodeTag_Flags(t *testing.T) {
	raw := uint16(1<<regmap.BitMemFullH | 1<<regmap.BitBinAlrmT | 1<<regmap.BitETAAlarm)
	s := DecodeTag(raw)
	if !s.MemFull(regmap.Humidity) || s.MemFull(regmap.Temperature) {
		t.Fatalf("memfull decode wrong: %+v", s)
	}
	if !s.BinAlarm(regmap.Temperature) || s.BinAlarm(regmap.Humidity) {
		t.Fatalf("bin alarm decode wrong: %+v", s)
	}
	if !s.ETAAlarm || !s.AnyMemFull() {
		t.Fatalf("eta/memfull wrong: %+v", s)
	}
}

func TestEncode_Layout(t *testing.T) {
	regs := Encode(Snapshot{
		Health:        HealthOK,
		LastErrorCode: 5,
		TagStatus:     0x0403,
		LastSampleT:   816,
		SamplesH:      12,
	})
	if len(regs) != SlotsPerDevice {
		t.Fatalf("len=%d", len(regs))
	}
	if regs[SlotHealthCode] != HealthOK || regs[SlotLastErrorCode] != 5 ||
		regs[SlotTagStatus] != 0x0403 || regs[SlotLastSampleT] != 816 || regs[SlotSamplesH] != 12 {
		t.Fatalf("unexpected block %v", regs)
	}
	for i := SlotReservedStart; i <= SlotDeviceNameEnd; i++ {
		if regs[i] != 0 {
			t.Fatalf("slot %d = %d, want 0", i, regs[i])
		}
	}
}

func TestEncodeName(t *testing.T) {
	regs := EncodeName("AB\x01")
	if regs[0] != 0x4142 || regs[1] != 0x3F00 {
		t.Fatalf("name regs=%v", regs)
	}
	long := EncodeName("0123456789abcdefXYZ")
	if long[7] != uint16('e')<<8|uint16('f') {
		t.Fatalf("truncation wrong: 0x%04X", long[7])
	}
	block := EncodeBlock(Snapshot{}, regs)
	if block[SlotDeviceNameStart] != 0x4142 {
		t.Fatalf("block name slot=0x%04X", block[SlotDeviceNameStart])
	}
}
