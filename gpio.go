package gpan

import (
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
)

// ChipGPIO drives the sixteen general purpose lines exposed by the
// transceiver itself. Pins 0-7 live in the low register of each pair,
// pins 8-15 in the high one.
type ChipGPIO struct {
	bus *Bus
}

func NewChipGPIO(bus *Bus) *ChipGPIO {
	return &ChipGPIO{bus: bus}
}

// ConfigureInput enables the input buffer of pin.
func (g *ChipGPIO) ConfigureInput(pin int) error {
	reg, bit, err := gpioBit(RegGpioInLo, pin)
	if err != nil {
		return err
	}
	return g.bus.Update(Page0, reg, bit, bit)
}

// ConfigureOutput enables the output driver of pin.
func (g *ChipGPIO) ConfigureOutput(pin int) error {
	reg, bit, err := gpioBit(RegGpioOutLo, pin)
	if err != nil {
		return err
	}
	return g.bus.Update(Page0, reg, bit, bit)
}

// Drive sets the output level of pin.
func (g *ChipGPIO) Drive(pin int, l gpio.Level) error {
	reg, bit, err := gpioBit(RegGpioLvlLo, pin)
	if err != nil {
		return err
	}
	var v byte
	if l == gpio.High {
		v = bit
	}
	return g.bus.Update(Page0, reg, bit, v)
}

// Level returns the level last driven on pin.
func (g *ChipGPIO) Level(pin int) (gpio.Level, error) {
	reg, bit, err := gpioBit(RegGpioLvlLo, pin)
	if err != nil {
		return gpio.Low, err
	}
	v, err := g.bus.Read(Page0, reg)
	if err != nil {
		return gpio.Low, err
	}
	return gpio.Level(v&bit != 0), nil
}

func gpioBit(lo byte, pin int) (byte, byte, error) {
	if pin < 0 || pin > 15 {
		return 0, 0, errors.Errorf("chip gpio %d out of range", pin)
	}
	if pin < 8 {
		return lo, 1 << uint(pin), nil
	}
	return lo + 1, 1 << uint(pin-8), nil
}
