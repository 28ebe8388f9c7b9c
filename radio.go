package gpan

import (
	"sync"
	"time"

	"periph.io/x/conn/v3/spi"
)

// LogPrintf is a function used by the driver to print debug info.
type LogPrintf func(format string, v ...interface{})

// Opts configures a Radio. Every field is optional.
type Opts struct {
	// Board switches the antenna path and TCXO supply. Defaults to the
	// reference wiring on the chip's own GPIO lines.
	Board Board
	// Handler receives dispatched events. Defaults to the radio's Flags.
	Handler EventHandler
	// Delay blocks for mandatory settle times. Defaults to time.Sleep.
	Delay func(time.Duration)
	// Logger traces mode transitions. The driver is silent without one.
	Logger LogPrintf
}

// Radio is one PAN3031 transceiver. It owns the register bus, the board
// hooks, the event handler and the status flags.
//
// Methods are not safe to call from several goroutines at once. When Serve
// runs in the background, bus work from other goroutines has to go through
// Exclusive.
type Radio struct {
	bus     *Bus
	gpio    *ChipGPIO
	board   Board
	handler EventHandler
	delay   func(time.Duration)
	log     LogPrintf

	op      sync.Mutex
	flags   *Flags
	mailbox *Mailbox
}

func New(conn spi.Conn, opts Opts) *Radio {
	bus := NewBus(conn)
	r := &Radio{
		bus:     bus,
		gpio:    NewChipGPIO(bus),
		board:   opts.Board,
		handler: opts.Handler,
		delay:   opts.Delay,
		log:     opts.Logger,
		flags:   &Flags{},
		mailbox: NewMailbox(),
	}
	if r.board == nil {
		r.board = NewChipBoard(r.gpio)
	}
	if r.handler == nil {
		r.handler = r.flags
	}
	if r.delay == nil {
		r.delay = time.Sleep
	}
	if r.log == nil {
		r.log = func(format string, v ...interface{}) {}
	}
	return r
}

func (r *Radio) Bus() *Bus { return r.bus }

func (r *Radio) GPIO() *ChipGPIO { return r.gpio }

// Flags returns the latched status flags. They are only updated by dispatch
// when no other Handler was configured.
func (r *Radio) Flags() *Flags { return r.flags }

func (r *Radio) Mailbox() *Mailbox { return r.mailbox }

// Exclusive runs fn while no dispatch can touch the bus.
func (r *Radio) Exclusive(fn func() error) error {
	r.op.Lock()
	defer r.op.Unlock()
	return fn()
}

// Init brings the chip from power-on (deep sleep) to Standby3 and applies
// the base configuration, the AGC ladder and the antenna setup.
func (r *Radio) Init() error {
	if err := r.WakeFromDeepSleep(); err != nil {
		return err
	}
	if err := r.bus.WriteTable("init", initTable); err != nil {
		return err
	}
	if err := r.SetAGC(true); err != nil {
		return err
	}
	return r.initAntenna()
}

// SetAGC switches the automatic gain control and loads the gain ladder.
func (r *Radio) SetAGC(on bool) error {
	v := byte(0x03)
	if on {
		v = 0x02
	}
	if err := r.bus.Write(Page2, RegAgcCtl, v); err != nil {
		return err
	}
	return r.bus.WriteTable("agc", agcTable)
}

// Reset pulses the soft reset bit. It aborts any reception in progress.
func (r *Radio) Reset() error {
	return r.bus.Pulse(sysCtlReset)
}

// ClearPacketCount pulses the packet counter clear bit.
func (r *Radio) ClearPacketCount() error {
	return r.bus.Pulse(sysCtlPktCntClr)
}

// Sleep idles the antenna and takes the chip from Standby3 to sleep.
func (r *Radio) Sleep() error {
	if err := r.board.IdleAntenna(); err != nil {
		return err
	}
	return r.EnterSleep()
}

// DeepSleep idles the antenna and takes the chip from Standby3 to deep
// sleep. Wake it again with Init.
func (r *Radio) DeepSleep() error {
	if err := r.board.IdleAntenna(); err != nil {
		return err
	}
	return r.EnterDeepSleep()
}

// Wake takes the chip from sleep back to Standby3. Sleep keeps the register
// contents, so no configuration is reapplied.
func (r *Radio) Wake() error {
	if err := r.WakeFromSleep(); err != nil {
		return err
	}
	return r.initAntenna()
}

// EnterContinuousRx starts receiving until told otherwise.
func (r *Radio) EnterContinuousRx() error {
	return r.enterRx(RxContinuous, 0)
}

// EnterSingleRx receives one frame and then returns to standby.
func (r *Radio) EnterSingleRx() error {
	return r.enterRx(RxSingle, 0)
}

// EnterSingleTimeoutRx receives one frame, giving up after timeoutMs
// milliseconds with an RX timeout event.
func (r *Radio) EnterSingleTimeoutRx(timeoutMs uint32) error {
	return r.enterRx(RxSingleTimeout, timeoutMs)
}

func (r *Radio) enterRx(m RxMode, timeoutMs uint32) error {
	if err := r.SetMode(ModeStandby3); err != nil {
		return err
	}
	if err := r.board.SelectRx(); err != nil {
		return err
	}
	if err := r.SetRxMode(m); err != nil {
		return err
	}
	if m == RxSingleTimeout {
		if err := r.SetRxTimeout(timeoutMs); err != nil {
			return err
		}
	}
	return r.SetMode(ModeRx)
}

// TransmitSingle sends one frame and returns the estimated time on air in
// milliseconds. Completion is signalled by the TX done event.
func (r *Radio) TransmitSingle(payload []byte) (uint32, error) {
	if err := r.SetMode(ModeStandby3); err != nil {
		return 0, err
	}
	if err := r.board.SelectTx(); err != nil {
		return 0, err
	}
	if err := r.SetTxMode(TxSingle); err != nil {
		return 0, err
	}
	if err := r.Send(payload); err != nil {
		return 0, err
	}
	return r.EstimatedTxTimeMs()
}

// EnterContinuousTx prepares continuous transmission. Frames are then sent
// with TransmitContinuous.
func (r *Radio) EnterContinuousTx() error {
	if err := r.SetMode(ModeStandby3); err != nil {
		return err
	}
	if err := r.board.SelectTx(); err != nil {
		return err
	}
	return r.SetTxMode(TxContinuous)
}

// TransmitContinuous sends one frame in continuous TX mode.
func (r *Radio) TransmitContinuous(payload []byte) error {
	return r.Send(payload)
}

// EnablePLHD turns on the pre-header interrupt, capturing l bytes from addr.
func (r *Radio) EnablePLHD(addr byte, l PLHDLen) error {
	if err := r.SetEarlyIRQ(true); err != nil {
		return err
	}
	if err := r.SetPLHD(addr, l); err != nil {
		return err
	}
	return r.SetPLHDMask(true)
}

func (r *Radio) DisablePLHD() error {
	if err := r.SetEarlyIRQ(false); err != nil {
		return err
	}
	return r.SetPLHDMask(false)
}

// EnableCAD routes channel activity detection to chip GPIO 11.
func (r *Radio) EnableCAD() error {
	if err := r.gpio.ConfigureOutput(GpioCadIrq); err != nil {
		return err
	}
	return r.bus.Write(Page1, RegCadCtl, 0x15)
}

// CarrierWaveTest emits an unmodulated carrier for RF measurements. The
// chip has to be re-initialized afterwards.
func (r *Radio) CarrierWaveTest() error {
	const settle = 8 * time.Millisecond

	if err := r.applySlow("cw power up", cwPowerUp, settle); err != nil {
		return err
	}
	if err := r.initAntenna(); err != nil {
		return err
	}
	if err := r.board.EnableTCXO(); err != nil {
		return err
	}
	r.delay(settle)
	if err := r.applySlow("cw carrier", cwCarrier, settle); err != nil {
		return err
	}
	return r.board.SelectTx()
}

func (r *Radio) applySlow(name string, table []RegValue, settle time.Duration) error {
	for i, e := range table {
		if err := r.bus.Write(e.Page, e.Addr, e.Value); err != nil {
			return &TableError{Table: name, Index: i, Err: err}
		}
		r.delay(settle)
	}
	return nil
}

func (r *Radio) initAntenna() error {
	if b, ok := r.board.(interface{ Init() error }); ok {
		return b.Init()
	}
	return r.board.IdleAntenna()
}
