package gpan

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/driver/driverreg"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// SPIClock is the bus speed used by Open.
const SPIClock = 8 * physic.MegaHertz

// Device is a Radio wired to a host SPI port and IRQ pin.
type Device struct {
	*Radio
	IRQ  gpio.PinIn
	port spi.PortCloser
}

// Open initializes the host drivers, connects to spiPort in mode 0 and looks
// up irqPin. The chip itself is not touched; call Init next.
func Open(spiPort, irqPin string, opts Opts) (*Device, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "host init")
	}
	if _, err := driverreg.Init(); err != nil {
		return nil, errors.Wrap(err, "driver init")
	}

	p, err := spireg.Open(spiPort)
	if err != nil {
		return nil, errors.Wrapf(err, "open spi port %q", spiPort)
	}
	c, err := p.Connect(SPIClock, spi.Mode0, 8)
	if err != nil {
		p.Close()
		return nil, errors.Wrapf(err, "connect spi port %q", spiPort)
	}

	irq := gpioreg.ByName(irqPin)
	if irq == nil {
		p.Close()
		return nil, errors.Errorf("irq pin %q not found", irqPin)
	}

	return &Device{Radio: New(c, opts), IRQ: irq, port: p}, nil
}

// Run serves the IRQ pin until ctx is done.
func (d *Device) Run(ctx context.Context) error {
	return d.Serve(ctx, d.IRQ, time.Second)
}

func (d *Device) Close() error {
	return d.port.Close()
}
