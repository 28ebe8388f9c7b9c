package gpan

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrUnsupportedFrequency       = errors.New("frequency outside supported bands")
	ErrUnsupportedSpreadingFactor = errors.New("spreading factor not supported")
	ErrUnsupportedBandwidth       = errors.New("bandwidth not supported")
	ErrUnsupportedCodingRate      = errors.New("coding rate not supported")
	ErrPayloadSize                = errors.New("payload size out of range")
	ErrInvalidTransition          = errors.New("invalid mode transition")
	ErrPageSelect                 = errors.New("page select not applied")
)

// BusError reports a transfer failure from the SPI transport.
type BusError struct {
	Op   string
	Page Page
	Addr byte
	Err  error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("bus %s %s/0x%02x: %v", e.Op, pageName(e.Page), e.Addr, e.Err)
}

func (e *BusError) Unwrap() error { return e.Err }

// VerifyError reports that a register did not hold the value just written
// to it. Earlier writes of the same sequence stay applied.
type VerifyError struct {
	Page Page
	Addr byte
	Want byte
	Got  byte
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("verify %s/0x%02x: wrote 0x%02x, read back 0x%02x", pageName(e.Page), e.Addr, e.Want, e.Got)
}

// ModeError reports the step at which a mode sequence stopped. Reached is
// the last mode the sequence wrote successfully; the chip may be anywhere
// between Reached and the failed step, so callers should check Mode before
// retrying.
type ModeError struct {
	Step    string
	Reached Mode
	Err     error
}

func (e *ModeError) Error() string {
	return fmt.Sprintf("mode step %q failed (last reached %v): %v", e.Step, e.Reached, e.Err)
}

func (e *ModeError) Unwrap() error { return e.Err }

// TableError reports the first entry of a register table that failed to
// apply. Entries before Index were written.
type TableError struct {
	Table string
	Index int
	Err   error
}

func (e *TableError) Error() string {
	return fmt.Sprintf("%s table entry %d: %v", e.Table, e.Index, e.Err)
}

func (e *TableError) Unwrap() error { return e.Err }

func pageName(p Page) string {
	if p == Global {
		return "sys"
	}
	return fmt.Sprintf("p%d", p)
}
