package gpan

import (
	"reflect"
	"testing"
	"time"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
)

func TestWakeFromDeepSleep(t *testing.T) {
	r, c, d := newTestRadio()

	if err := r.WakeFromDeepSleep(); err != nil {
		t.Fatal(err)
	}
	wantModes := []Mode{ModeDeepSleep, ModeSleep, ModeStandby1, ModeStandby2, ModeStandby3}
	if got := c.modeHistory(); !reflect.DeepEqual(got, wantModes) {
		t.Errorf("modes = %v, want %v", got, wantModes)
	}
	wantDelays := []time.Duration{
		10 * time.Microsecond, // deep sleep
		10 * time.Microsecond, // sleep
		time.Millisecond,      // tcxo
		10 * time.Microsecond, // standby1
		2 * time.Millisecond,  // standby2
		10 * time.Microsecond, // standby3
	}
	if got := d.all(); !reflect.DeepEqual(got, wantDelays) {
		t.Errorf("delays = %v, want %v", got, wantDelays)
	}
	if v := c.get(Global, RegXtalTrim); v != 0x1b {
		t.Errorf("xtal trim = 0x%02x", v)
	}
	if v := c.get(Global, RegLdoCtl); v != 0x76 {
		t.Errorf("ldo = 0x%02x", v)
	}
	if v := c.get(Page3, RegTcxoCtl); v != 0x40 {
		t.Errorf("tcxo ctl = 0x%02x", v)
	}
	if l, _ := r.GPIO().Level(GpioTcxo); l != gpio.High {
		t.Errorf("tcxo supply not enabled")
	}
	if m, _ := r.Mode(); m != ModeStandby3 {
		t.Errorf("mode = %v", m)
	}
}

func TestWakeFromSleep(t *testing.T) {
	r, c, _ := newTestRadio()

	if err := r.WakeFromSleep(); err != nil {
		t.Fatal(err)
	}
	want := []Mode{ModeSleep, ModeStandby1, ModeStandby2, ModeStandby3}
	if got := c.modeHistory(); !reflect.DeepEqual(got, want) {
		t.Errorf("modes = %v, want %v", got, want)
	}
}

func TestEnterSleep(t *testing.T) {
	for _, from := range []Mode{ModeStandby3, ModeTx, ModeRx} {
		r, c, d := newTestRadio()
		c.set(Global, RegOpMode, byte(from))
		c.set(Global, RegLdoCtl, 0x76)

		if err := r.EnterSleep(); err != nil {
			t.Fatalf("from %v: %v", from, err)
		}
		want := []Mode{ModeStandby3, ModeStandby2, ModeStandby1, ModeSleep}
		if got := c.modeHistory(); !reflect.DeepEqual(got, want) {
			t.Errorf("from %v: modes = %v, want %v", from, got, want)
		}
		if v := c.get(Global, RegLdoCtl); v != 0x16 {
			t.Errorf("ldo = 0x%02x, want 0x16", v)
		}
		if l, _ := r.GPIO().Level(GpioTcxo); l != gpio.Low {
			t.Errorf("tcxo supply left on")
		}
		for _, s := range d.all() {
			if s != 10*time.Microsecond {
				t.Errorf("unexpected settle %v", s)
			}
		}
		if n := len(d.all()); n != 5 {
			t.Errorf("%d settles, want 5", n)
		}
	}
}

func TestEnterDeepSleep(t *testing.T) {
	r, c, _ := newTestRadio()
	c.set(Global, RegOpMode, byte(ModeStandby3))

	if err := r.EnterDeepSleep(); err != nil {
		t.Fatal(err)
	}
	want := []Mode{ModeStandby3, ModeStandby2, ModeStandby1, ModeSleep, ModeDeepSleep}
	if got := c.modeHistory(); !reflect.DeepEqual(got, want) {
		t.Errorf("modes = %v, want %v", got, want)
	}
	if v := c.get(Global, RegLdoCtl); v != 0x06 {
		t.Errorf("ldo = 0x%02x, want 0x06", v)
	}
}

func TestEnterSleepRejected(t *testing.T) {
	for _, from := range []Mode{ModeDeepSleep, ModeSleep, ModeStandby1, ModeStandby2} {
		r, c, _ := newTestRadio()
		c.set(Global, RegOpMode, byte(from))

		for name, enter := range map[string]func() error{
			"sleep":      r.EnterSleep,
			"deep sleep": r.EnterDeepSleep,
		} {
			m := c.mark()
			err := enter()
			if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("%s from %v: got %v", name, from, err)
			}
			var me *ModeError
			if !errors.As(err, &me) || me.Reached != from {
				t.Errorf("%s from %v: want ModeError reaching %v, got %v", name, from, from, err)
			}
			if w := c.writesSince(m); len(w) != 0 {
				t.Errorf("%s from %v: wrote %x", name, from, w)
			}
		}
	}
}

func TestModeErrorStep(t *testing.T) {
	r, c, _ := newTestRadio()
	c.setStuck(Global, RegLdoCtl, 0x00)

	err := r.WakeFromDeepSleep()
	var me *ModeError
	if !errors.As(err, &me) {
		t.Fatalf("want ModeError, got %v", err)
	}
	if me.Step != "ldo on" || me.Reached != ModeSleep {
		t.Errorf("step %q reached %v", me.Step, me.Reached)
	}
	var ve *VerifyError
	if !errors.As(err, &ve) || ve.Addr != RegLdoCtl {
		t.Errorf("cause lost: %v", err)
	}
	want := []Mode{ModeDeepSleep, ModeSleep}
	if got := c.modeHistory(); !reflect.DeepEqual(got, want) {
		t.Errorf("sequence went on after failure: %v", got)
	}
}

func TestSubModes(t *testing.T) {
	r, c, _ := newTestRadio()
	c.set(Page3, RegTrxMode, 0x20)

	for _, m := range []RxMode{RxSingle, RxSingleTimeout, RxContinuous} {
		if err := r.SetRxMode(m); err != nil {
			t.Fatal(err)
		}
		if got, err := r.RxSubMode(); err != nil || got != m {
			t.Errorf("rx mode %d read back %d, %v", m, got, err)
		}
	}
	for _, m := range []TxMode{TxContinuous, TxSingle} {
		if err := r.SetTxMode(m); err != nil {
			t.Fatal(err)
		}
		if got, err := r.TxSubMode(); err != nil || got != m {
			t.Errorf("tx mode %d read back %d, %v", m, got, err)
		}
	}
	if v := c.get(Page3, RegTrxMode); v&0xf8 != 0x20 {
		t.Errorf("other bits changed: 0x%02x", v)
	}
}

func TestRxTimeout(t *testing.T) {
	r, c, _ := newTestRadio()

	if err := r.SetRxTimeout(3000); err != nil {
		t.Fatal(err)
	}
	if lo, hi := c.get(Page3, RegRxTimeout), c.get(Page3, RegRxTimeout+1); lo != 0xb8 || hi != 0x0b {
		t.Errorf("timeout bytes 0x%02x 0x%02x", lo, hi)
	}
	if err := r.SetRxTimeout(70000); err != nil {
		t.Fatal(err)
	}
	if got, _ := r.RxTimeout(); got != MaxRxTimeout {
		t.Errorf("RxTimeout() = %d, want clamp to %d", got, MaxRxTimeout)
	}
}
