package gpan

import (
	"testing"

	"github.com/pkg/errors"
)

func TestSetFrequencyRegisters(t *testing.T) {
	tests := []struct {
		freq    uint32
		bandSel byte
		loSel   byte
		fb      byte
		fcLo    byte
		fcHi    byte
		loCtl   byte
	}{
		{433000000, 0x8e, 0x02, 87, 0xf4, 0x01, 0x0e},
		{868000000, 0x8e, 0x01, 88, 0x90, 0x01, 0x08},
		{490000000, 0xae, 0x02, 101, 0x58, 0x02, 0x0e},
	}
	for _, tt := range tests {
		r, c, _ := newTestRadio()
		if err := r.SetFrequency(tt.freq); err != nil {
			t.Fatalf("%d: %v", tt.freq, err)
		}
		checks := []struct {
			name string
			page Page
			addr byte
			want byte
		}{
			{"band", Page0, RegBandSel, tt.bandSel},
			{"lo select", Page0, RegLoSel, tt.loSel},
			{"fb", Page3, RegLoFb, tt.fb},
			{"fc lo", Page3, RegLoFcLo, tt.fcLo},
			{"fc hi", Page3, RegLoFcHi, tt.fcHi},
			{"lo ctl", Page3, RegLoCtl, tt.loCtl},
		}
		for _, ch := range checks {
			if got := c.get(ch.page, ch.addr); got != ch.want {
				t.Errorf("%d %s = 0x%02x, want 0x%02x", tt.freq, ch.name, got, ch.want)
			}
		}
		got, err := r.Frequency()
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.freq {
			t.Errorf("Frequency() = %d, want %d", got, tt.freq)
		}
	}
}

func TestSetFrequencyKeepsOtherBits(t *testing.T) {
	r, c, _ := newTestRadio()
	c.set(Page0, RegLoSel, 0xf0)
	c.set(Page3, RegLoCtl, 0xf1)

	if err := r.SetFrequency(868000000); err != nil {
		t.Fatal(err)
	}
	if got := c.get(Page0, RegLoSel); got != 0xf1 {
		t.Errorf("lo select = 0x%02x, want 0xf1", got)
	}
	if got := c.get(Page3, RegLoCtl); got != 0xf9 {
		t.Errorf("lo ctl = 0x%02x, want 0xf9", got)
	}
}

func TestSetFrequencyBandEdges(t *testing.T) {
	tests := []struct {
		freq    uint32
		bandSel byte
	}{
		{336000000, 0x8e},
		{470000000, 0x8e},
		{470000001, 0xae},
		{510000000, 0xae},
		{800000000, 0x8e},
		{920000000, 0x8e},
	}
	for _, tt := range tests {
		r, c, _ := newTestRadio()
		if err := r.SetFrequency(tt.freq); err != nil {
			t.Fatalf("%d: %v", tt.freq, err)
		}
		if got := c.get(Page0, RegBandSel); got != tt.bandSel {
			t.Errorf("%d: band = 0x%02x, want 0x%02x", tt.freq, got, tt.bandSel)
		}
	}
}

func TestSetFrequencyUnsupported(t *testing.T) {
	for _, f := range []uint32{0, 335999999, 510000001, 600000000, 799999999, 920000001} {
		r, c, _ := newTestRadio()
		err := r.SetFrequency(f)
		if !errors.Is(err, ErrUnsupportedFrequency) {
			t.Errorf("%d: want ErrUnsupportedFrequency, got %v", f, err)
		}
		if n := c.transfers(); n != 0 {
			t.Errorf("%d: %d transfers before rejecting", f, n)
		}
	}
}

func TestLoDivider(t *testing.T) {
	tests := []struct {
		freq    uint32
		lowband byte
		fb, fc  int
	}{
		{433000000, 1, 87, 500},
		{868000000, 0, 88, 400},
		{915000000, 0, 94, 300},
		{400000000, 1, 79, 400},
	}
	for _, tt := range tests {
		fb, fc := loDivider(tt.freq, tt.lowband)
		if fb != tt.fb || fc != tt.fc {
			t.Errorf("loDivider(%d) = %d, %d, want %d, %d", tt.freq, fb, fc, tt.fb, tt.fc)
		}
	}
}

func TestParamRoundTrip(t *testing.T) {
	r, _, _ := newTestRadio()

	for sf := uint8(7); sf <= 12; sf++ {
		if err := r.SetSpreadingFactor(sf); err != nil {
			t.Fatal(err)
		}
		if got, err := r.SpreadingFactor(); err != nil || got != sf {
			t.Errorf("SF %d read back %d, %v", sf, got, err)
		}
	}
	for _, bw := range []Bandwidth{BW125k, BW250k, BW500k} {
		if err := r.SetBandwidth(bw); err != nil {
			t.Fatal(err)
		}
		if got, err := r.Bandwidth(); err != nil || got != bw {
			t.Errorf("bandwidth %d read back %d, %v", bw, got, err)
		}
	}
	for cr := CR45; cr <= CR48; cr++ {
		if err := r.SetCodingRate(cr); err != nil {
			t.Fatal(err)
		}
		if got, err := r.CodingRate(); err != nil || got != cr {
			t.Errorf("coding rate %d read back %d, %v", cr, got, err)
		}
	}
	for _, n := range []uint16{0, 8, 0x1234, 0xffff} {
		if err := r.SetPreamble(n); err != nil {
			t.Fatal(err)
		}
		if got, err := r.Preamble(); err != nil || got != n {
			t.Errorf("preamble %d read back %d, %v", n, got, err)
		}
	}
	for _, s := range []byte{0x00, 0x12, 0x34, 0xff} {
		if err := r.SetSyncWord(s); err != nil {
			t.Fatal(err)
		}
		if got, err := r.SyncWord(); err != nil || got != s {
			t.Errorf("sync word 0x%02x read back 0x%02x, %v", s, got, err)
		}
	}

	var powers []byte
	for p := byte(0x00); p <= 0x60; p += 0x10 {
		powers = append(powers, p)
	}
	for p := byte(0x70); p <= 0x7f; p++ {
		powers = append(powers, p)
	}
	for _, p := range powers {
		if err := r.SetTxPower(p); err != nil {
			t.Fatal(err)
		}
		if got, err := r.TxPower(); err != nil || got != p {
			t.Errorf("tx power 0x%02x read back 0x%02x, %v", p, got, err)
		}
	}

	toggles := []struct {
		name string
		set  func(bool) error
		get  func() (bool, error)
	}{
		{"crc", r.SetCRC, r.CRC},
		{"dcdc", r.SetDCDC, r.DCDC},
		{"ldr", r.SetLDR, r.LDR},
		{"early irq", r.SetEarlyIRQ, r.EarlyIRQ},
		{"plhd mask", r.SetPLHDMask, r.PLHDMask},
	}
	for _, tg := range toggles {
		for _, on := range []bool{true, false, true} {
			if err := tg.set(on); err != nil {
				t.Fatal(err)
			}
			if got, err := tg.get(); err != nil || got != on {
				t.Errorf("%s %v read back %v, %v", tg.name, on, got, err)
			}
		}
	}

	for _, l := range []PLHDLen{PLHDLen8, PLHDLen16} {
		if err := r.SetPLHD(0x05, l); err != nil {
			t.Fatal(err)
		}
		if got, err := r.PLHDLength(); err != nil || got != l {
			t.Errorf("plhd length %d read back %d, %v", l, got, err)
		}
	}
}

func TestModemFieldsShareRegisters(t *testing.T) {
	r, c, _ := newTestRadio()

	if err := r.SetBandwidth(BW250k); err != nil {
		t.Fatal(err)
	}
	if err := r.SetCodingRate(CR47); err != nil {
		t.Fatal(err)
	}
	if err := r.SetSpreadingFactor(9); err != nil {
		t.Fatal(err)
	}
	if err := r.SetCRC(true); err != nil {
		t.Fatal(err)
	}
	if got := c.get(Page3, RegModem1); got != 0x86 {
		t.Errorf("modem1 = 0x%02x, want 0x86", got)
	}
	if got := c.get(Page3, RegModem2); got != 0x98 {
		t.Errorf("modem2 = 0x%02x, want 0x98", got)
	}
}

func TestTxPowerSecondStage(t *testing.T) {
	r, c, _ := newTestRadio()

	if err := r.SetTxPower(0x35); err != nil {
		t.Fatal(err)
	}
	if got := c.get(Page1, RegPaPower); got != 0x03 {
		t.Errorf("register = 0x%02x, want 0x03", got)
	}
	if got, _ := r.TxPower(); got != 0x30 {
		t.Errorf("TxPower() = 0x%02x, want 0x30", got)
	}

	if err := r.SetTxPower(0x7a); err != nil {
		t.Fatal(err)
	}
	if got := c.get(Page1, RegPaPower); got != 0xa7 {
		t.Errorf("register = 0x%02x, want 0xa7", got)
	}
}

func TestParamValidation(t *testing.T) {
	r, c, _ := newTestRadio()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"sf 6", r.SetSpreadingFactor(6), ErrUnsupportedSpreadingFactor},
		{"sf 13", r.SetSpreadingFactor(13), ErrUnsupportedSpreadingFactor},
		{"bw 62.5k", r.SetBandwidth(BW62k), ErrUnsupportedBandwidth},
		{"bw 10", r.SetBandwidth(10), ErrUnsupportedBandwidth},
		{"cr 0", r.SetCodingRate(0), ErrUnsupportedCodingRate},
		{"cr 5", r.SetCodingRate(5), ErrUnsupportedCodingRate},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, tt.err, tt.want)
		}
	}
	if n := c.transfers(); n != 0 {
		t.Errorf("%d transfers for rejected values", n)
	}
}

func TestConfigure(t *testing.T) {
	r, c, _ := newTestRadio()
	c.set(Global, RegOpMode, byte(ModeStandby3))

	want := DefaultParams()
	want.Preamble = 12
	want.SyncWord = 0x34
	if err := r.Configure(want); err != nil {
		t.Fatal(err)
	}
	got, err := r.ReadParams()
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("ReadParams() = %+v, want %+v", got, want)
	}
	if c.resets != 6 {
		t.Errorf("resets = %d, want one per modulation field", c.resets)
	}
	if m, _ := r.Mode(); m != ModeStandby3 {
		t.Errorf("mode = %v", m)
	}
}

func TestConfigureStopsAtFirstError(t *testing.T) {
	r, c, _ := newTestRadio()

	p := DefaultParams()
	p.Frequency = 700000000
	err := r.Configure(p)
	if !errors.Is(err, ErrUnsupportedFrequency) {
		t.Fatalf("got %v", err)
	}
	if c.resets != 0 {
		t.Errorf("reset after failed field")
	}
}
