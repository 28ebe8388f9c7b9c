package gpan

import (
	"time"

	"github.com/pkg/errors"
)

const modeUnknown Mode = 0xff

// step is one stage of a mode sequence followed by its settle time.
type step struct {
	name   string
	do     func() error
	settle time.Duration
	mode   Mode // mode reached when do succeeds, modeUnknown otherwise
}

func (r *Radio) toMode(m Mode, settle time.Duration) step {
	return step{
		name:   m.String(),
		do:     func() error { return r.SetMode(m) },
		settle: settle,
		mode:   m,
	}
}

func (r *Radio) toReg(name string, page Page, addr, v byte, settle time.Duration) step {
	return step{
		name:   name,
		do:     func() error { return r.bus.Write(page, addr, v) },
		settle: settle,
		mode:   modeUnknown,
	}
}

func hook(name string, fn func() error, settle time.Duration) step {
	return step{name: name, do: fn, settle: settle, mode: modeUnknown}
}

// run executes steps in order and stops at the first failure. Nothing is
// undone.
func (r *Radio) run(seq string, from Mode, steps []step) error {
	reached := from
	for _, s := range steps {
		if err := s.do(); err != nil {
			return &ModeError{Step: s.name, Reached: reached, Err: err}
		}
		if s.mode != modeUnknown {
			reached = s.mode
		}
		if s.settle > 0 {
			r.delay(s.settle)
		}
	}
	r.log("gpan: %s done, mode %v", seq, reached)
	return nil
}

// wakeSteps brings the oscillator up and climbs the standby stages.
func (r *Radio) wakeSteps() []step {
	return []step{
		r.toReg("xtal trim", Global, RegXtalTrim, 0x1b, 0),
		r.toReg("ldo on", Global, RegLdoCtl, 0x76, 0),
		r.toReg("tcxo ctl", Page3, RegTcxoCtl, 0x40, 0),
		hook("tcxo enable", r.board.EnableTCXO, time.Millisecond),
		r.toMode(ModeStandby1, 10*time.Microsecond),
		r.toMode(ModeStandby2, 2*time.Millisecond),
		r.toMode(ModeStandby3, 10*time.Microsecond),
	}
}

// descendSteps steps down from Standby3 and shuts the oscillator off.
func (r *Radio) descendSteps(ldo byte) []step {
	return []step{
		r.toMode(ModeStandby3, 10*time.Microsecond),
		r.toMode(ModeStandby2, 10*time.Microsecond),
		r.toMode(ModeStandby1, 10*time.Microsecond),
		hook("tcxo disable", r.board.DisableTCXO, 0),
		r.toReg("ldo off", Global, RegLdoCtl, ldo, 10*time.Microsecond),
		r.toMode(ModeSleep, 10*time.Microsecond),
	}
}

// WakeFromDeepSleep drives the chip from deep sleep (or power-on) to
// Standby3 through Standby1 and Standby2.
func (r *Radio) WakeFromDeepSleep() error {
	steps := append([]step{
		r.toMode(ModeDeepSleep, 10*time.Microsecond),
		r.toMode(ModeSleep, 10*time.Microsecond),
	}, r.wakeSteps()...)
	return r.run("deep sleep wake up", modeUnknown, steps)
}

// WakeFromSleep drives the chip from sleep to Standby3.
func (r *Radio) WakeFromSleep() error {
	steps := append([]step{
		r.toMode(ModeSleep, 10*time.Microsecond),
	}, r.wakeSteps()...)
	return r.run("sleep wake up", modeUnknown, steps)
}

// EnterSleep drives the chip from Standby3 (or TX/RX) down to sleep.
//
// DCDC and low data rate optimization must be switched off before calling.
// The call is refused with ErrInvalidTransition, before any write, when the
// chip is in a sleep or intermediate standby mode.
func (r *Radio) EnterSleep() error {
	from, err := r.checkDescend()
	if err != nil {
		return err
	}
	return r.run("sleep", from, r.descendSteps(0x16))
}

// EnterDeepSleep is EnterSleep continued down to deep sleep. The same
// caller contract applies.
func (r *Radio) EnterDeepSleep() error {
	from, err := r.checkDescend()
	if err != nil {
		return err
	}
	steps := append(r.descendSteps(0x06), r.toMode(ModeDeepSleep, 0))
	return r.run("deep sleep", from, steps)
}

func (r *Radio) checkDescend() (Mode, error) {
	m, err := r.Mode()
	if err != nil {
		return modeUnknown, &ModeError{Step: "read mode", Reached: modeUnknown, Err: err}
	}
	switch m {
	case ModeStandby3, ModeTx, ModeRx:
		return m, nil
	}
	return m, &ModeError{Step: "check mode", Reached: m, Err: errors.Wrapf(ErrInvalidTransition, "from %v", m)}
}

// SetMode writes the operating mode directly. Use it for moves between
// Standby3, TX and RX; sleep transitions need the staged sequences.
func (r *Radio) SetMode(m Mode) error {
	return r.bus.Write(Global, RegOpMode, byte(m))
}

// Mode reads the operating mode.
func (r *Radio) Mode() (Mode, error) {
	v, err := r.bus.Read(Global, RegOpMode)
	return Mode(v), err
}

func (r *Radio) SetTxMode(m TxMode) error {
	return r.bus.Update(Page3, RegTrxMode, 0x04, byte(m)<<2)
}

func (r *Radio) TxSubMode() (TxMode, error) {
	v, err := r.bus.Read(Page3, RegTrxMode)
	return TxMode((v >> 2) & 0x01), err
}

func (r *Radio) SetRxMode(m RxMode) error {
	return r.bus.Update(Page3, RegTrxMode, 0x03, byte(m))
}

func (r *Radio) RxSubMode() (RxMode, error) {
	v, err := r.bus.Read(Page3, RegTrxMode)
	return RxMode(v & 0x03), err
}

// SetRxTimeout sets the single-with-timeout receive window in milliseconds,
// clamped to 65535.
func (r *Radio) SetRxTimeout(ms uint32) error {
	if ms > MaxRxTimeout {
		ms = MaxRxTimeout
	}
	return r.bus.WriteMulti(Page3, RegRxTimeout, 2, ms)
}

func (r *Radio) RxTimeout() (uint32, error) {
	return r.bus.ReadMulti(Page3, RegRxTimeout, 2)
}
