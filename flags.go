package gpan

import (
	"sync"
	"sync/atomic"
)

// Status is a latched completion flag value.
type Status int32

const (
	StatusIdle Status = iota
	StatusTxDone
	StatusRxDone
	StatusRxTimeout
	StatusRxErr
	StatusPlhdRxDone
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusTxDone:
		return "tx-done"
	case StatusRxDone:
		return "rx-done"
	case StatusRxTimeout:
		return "rx-timeout"
	case StatusRxErr:
		return "rx-error"
	case StatusPlhdRxDone:
		return "plhd-rx-done"
	}
	return "unknown"
}

// RxMessage is the last frame or pre-header snapshot handed over by Flags.
type RxMessage struct {
	Payload []byte
	RSSI    float64
	SNR     float64
	Plhd    []byte
}

// Flags is the default EventHandler. It latches a receive and a transmit
// status for polling callers, who reset them to StatusIdle once consumed.
//
// One goroutine may produce (dispatch) while another consumes. The message
// is stored before its flag is raised, so a consumer that sees RxDone or
// PlhdRxDone also sees the matching message.
type Flags struct {
	recv     atomic.Int32
	transmit atomic.Int32

	mu  sync.Mutex
	msg RxMessage
}

func (f *Flags) SetRecv(s Status) { f.recv.Store(int32(s)) }

func (f *Flags) Recv() Status { return Status(f.recv.Load()) }

func (f *Flags) SetTransmit(s Status) { f.transmit.Store(int32(s)) }

func (f *Flags) Transmit() Status { return Status(f.transmit.Load()) }

// Message returns the last received frame and pre-header snapshot.
func (f *Flags) Message() RxMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.msg
}

func (f *Flags) OnPlhdDone(payload []byte) {
	f.mu.Lock()
	f.msg.Plhd = payload
	f.mu.Unlock()
	f.SetRecv(StatusPlhdRxDone)
}

func (f *Flags) OnRxDone(payload []byte, rssi, snr float64) {
	f.mu.Lock()
	f.msg.Payload, f.msg.RSSI, f.msg.SNR = payload, rssi, snr
	f.mu.Unlock()
	f.SetRecv(StatusRxDone)
}

func (f *Flags) OnRxError() { f.SetRecv(StatusRxErr) }

func (f *Flags) OnRxTimeout() { f.SetRecv(StatusRxTimeout) }

func (f *Flags) OnTxDone() { f.SetTransmit(StatusTxDone) }
