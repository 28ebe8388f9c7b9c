package gpan

import "periph.io/x/conn/v3/gpio"

// Board switches the RF front end around the transceiver: the reference
// oscillator supply and the antenna path.
type Board interface {
	EnableTCXO() error
	DisableTCXO() error
	SelectTx() error
	SelectRx() error
	IdleAntenna() error
}

// ChipBoard is the reference module wiring, where the TCXO supply and the
// RF switch hang off the transceiver's own GPIO lines.
type ChipBoard struct {
	GPIO *ChipGPIO
	Tx   int
	Rx   int
	Tcxo int
}

func NewChipBoard(g *ChipGPIO) *ChipBoard {
	return &ChipBoard{GPIO: g, Tx: GpioTxPath, Rx: GpioRxPath, Tcxo: GpioTcxo}
}

// Init configures both antenna lines as outputs, driven low.
func (b *ChipBoard) Init() error {
	if err := b.GPIO.ConfigureOutput(b.Rx); err != nil {
		return err
	}
	if err := b.GPIO.ConfigureOutput(b.Tx); err != nil {
		return err
	}
	return b.IdleAntenna()
}

func (b *ChipBoard) EnableTCXO() error {
	if err := b.GPIO.ConfigureOutput(b.Tcxo); err != nil {
		return err
	}
	return b.GPIO.Drive(b.Tcxo, gpio.High)
}

func (b *ChipBoard) DisableTCXO() error {
	if err := b.GPIO.ConfigureOutput(b.Tcxo); err != nil {
		return err
	}
	return b.GPIO.Drive(b.Tcxo, gpio.Low)
}

func (b *ChipBoard) SelectTx() error {
	return b.drive(b.Rx, b.Tx)
}

func (b *ChipBoard) SelectRx() error {
	return b.drive(b.Tx, b.Rx)
}

func (b *ChipBoard) IdleAntenna() error {
	if err := b.GPIO.Drive(b.Tx, gpio.Low); err != nil {
		return err
	}
	return b.GPIO.Drive(b.Rx, gpio.Low)
}

// drive lowers off before raising on so both paths are never enabled.
func (b *ChipBoard) drive(off, on int) error {
	if err := b.GPIO.Drive(off, gpio.Low); err != nil {
		return err
	}
	return b.GPIO.Drive(on, gpio.High)
}
