package gpan

import (
	"github.com/pkg/errors"
)

// Send loads payload and starts the transmission: length register, TX mode,
// then the FIFO burst. The burst itself cannot be verified.
func (r *Radio) Send(payload []byte) error {
	if len(payload) == 0 || len(payload) > MaxPktLength {
		return errors.Wrapf(ErrPayloadSize, "%d bytes", len(payload))
	}
	if err := r.bus.Write(Page1, RegPayloadLen, byte(len(payload))); err != nil {
		return err
	}
	if err := r.SetMode(ModeTx); err != nil {
		return err
	}
	return r.bus.WriteFIFO(payload)
}

// Receive drains the frame waiting in the FIFO and clears the IRQ status.
// It returns an empty payload when the chip reports no received bytes.
func (r *Radio) Receive() ([]byte, error) {
	n, err := r.bus.Read(Page1, RegRxLen)
	if err != nil {
		return nil, err
	}
	var payload []byte
	if n > 0 {
		if payload, err = r.bus.ReadFIFO(int(n)); err != nil {
			return nil, err
		}
	}
	if err := r.ClearIRQ(); err != nil {
		return nil, err
	}
	return payload, nil
}

// ReceivePLHD reads the pre-header snapshot and clears the IRQ status.
//
// The 8 byte snapshot sits at page 2 0x76..0x7d. The 16 byte one continues
// with 0x7e..0x7f and then wraps to page 0 0x76..0x7b.
func (r *Radio) ReceivePLHD(l PLHDLen) ([]byte, error) {
	n := 8
	if l == PLHDLen16 {
		n = 16
	}
	buf := make([]byte, n)
	for i := range buf {
		page, addr := Page2, RegPlhdHeadP2+byte(i)
		if i >= 10 {
			page, addr = Page0, RegPlhdTailP0+byte(i-10)
		}
		v, err := r.bus.Read(page, addr)
		if err != nil {
			return nil, err
		}
		buf[i] = v
	}
	if err := r.ClearIRQ(); err != nil {
		return nil, err
	}
	return buf, nil
}

// IRQStatus returns the latched interrupt bits.
func (r *Radio) IRQStatus() (byte, error) {
	return r.bus.Read(Page0, RegIrqStatus)
}

// ClearIRQ acknowledges every latched interrupt. The status register is
// write-one-to-clear, so the write is not read back.
func (r *Radio) ClearIRQ() error {
	return r.bus.Strobe(Page0, RegIrqStatus, irqAll)
}
