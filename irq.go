package gpan

import "fmt"

// EventKind tags the outcome of one dispatch.
type EventKind int

const (
	EventNone EventKind = iota
	EventPlhdDone
	EventRxDone
	EventRxCRCError
	EventRxTimeout
	EventTxDone
)

func (k EventKind) String() string {
	switch k {
	case EventNone:
		return "none"
	case EventPlhdDone:
		return "plhd-done"
	case EventRxDone:
		return "rx-done"
	case EventRxCRCError:
		return "rx-crc-error"
	case EventRxTimeout:
		return "rx-timeout"
	case EventTxDone:
		return "tx-done"
	}
	return fmt.Sprintf("event(%d)", int(k))
}

func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Event is the result of one dispatch. Payload is set for RX and PLHD done,
// RSSI and SNR for RX done only. The payload is a fresh slice owned by the
// receiver.
type Event struct {
	Kind    EventKind `json:"kind"`
	Payload []byte    `json:"payload,omitempty"`
	RSSI    float64   `json:"rssi,omitempty"`
	SNR     float64   `json:"snr,omitempty"`
}

// EventHandler receives dispatched events synchronously, from whichever
// goroutine runs Dispatch.
type EventHandler interface {
	OnPlhdDone(payload []byte)
	OnRxDone(payload []byte, rssi, snr float64)
	OnRxError()
	OnRxTimeout()
	OnTxDone()
}

// Dispatch reads the IRQ status once and handles the highest priority
// pending interrupt: PLHD done, RX done, CRC error, RX timeout, TX done.
// Lower priority bits are cleared along with it. With no bit set it returns
// EventNone and writes nothing.
//
// Dispatch must not be called from inside Exclusive.
func (r *Radio) Dispatch() (Event, error) {
	r.op.Lock()
	defer r.op.Unlock()

	irq, err := r.IRQStatus()
	if err != nil {
		return Event{}, err
	}

	var ev Event
	switch {
	case irq&IrqPlhdDone != 0:
		if ev, err = r.plhdDone(); err != nil {
			return Event{}, err
		}
		r.handler.OnPlhdDone(ev.Payload)
	case irq&IrqRxDone != 0:
		if ev, err = r.rxDone(); err != nil {
			return Event{}, err
		}
		r.handler.OnRxDone(ev.Payload, ev.RSSI, ev.SNR)
	case irq&IrqCrcError != 0:
		if err := r.ClearIRQ(); err != nil {
			return Event{}, err
		}
		ev.Kind = EventRxCRCError
		r.handler.OnRxError()
	case irq&IrqRxTimeout != 0:
		if err := r.ClearIRQ(); err != nil {
			return Event{}, err
		}
		ev.Kind = EventRxTimeout
		r.handler.OnRxTimeout()
	case irq&IrqTxDone != 0:
		if err := r.ClearIRQ(); err != nil {
			return Event{}, err
		}
		ev.Kind = EventTxDone
		r.handler.OnTxDone()
	default:
		return Event{Kind: EventNone}, nil
	}
	r.log("gpan: irq 0x%02x dispatched as %v", irq, ev.Kind)
	return ev, nil
}

// plhdDone reads the snapshot and then resets the chip, which drops the
// full frame still being received.
func (r *Radio) plhdDone() (Event, error) {
	l, err := r.PLHDLength()
	if err != nil {
		return Event{}, err
	}
	payload, err := r.ReceivePLHD(l)
	if err != nil {
		return Event{}, err
	}
	if err := r.Reset(); err != nil {
		return Event{}, err
	}
	return Event{Kind: EventPlhdDone, Payload: payload}, nil
}

// rxDone takes the link metrics before draining the FIFO, since draining
// clears the IRQ.
func (r *Radio) rxDone() (Event, error) {
	snr, err := r.SNR()
	if err != nil {
		return Event{}, err
	}
	rssi, err := r.RSSI()
	if err != nil {
		return Event{}, err
	}
	payload, err := r.Receive()
	if err != nil {
		return Event{}, err
	}
	return Event{Kind: EventRxDone, Payload: payload, RSSI: rssi, SNR: snr}, nil
}
