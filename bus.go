package gpan

import (
	"sync"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/spi"
)

// RegValue is one entry of a register table.
type RegValue struct {
	Page  Page
	Addr  byte
	Value byte
}

// Bus is the paged register access layer. Every transaction goes out as a
// single spi.Conn.Tx, so chip select covers exactly one command.
//
// A read is {addr<<1, 0} and a write {addr<<1|1, value}. Register writes are
// verified by reading the register back, which is the only acknowledgment
// the chip gives. FIFO bursts have no readable mirror and are not verified.
//
// The selected page is cached. The cache is dropped whenever a transfer
// fails or the chip is reset, so a stale page is never assumed.
type Bus struct {
	mu        sync.Mutex
	conn      spi.Conn
	page      Page
	pageValid bool
}

func NewBus(conn spi.Conn) *Bus {
	return &Bus{conn: conn}
}

// Read returns the register at addr on page.
func (b *Bus) Read(page Page, addr byte) (byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.selectPage(page); err != nil {
		return 0, err
	}
	return b.readReg(page, addr)
}

// Write writes value to the register at addr on page and verifies it.
func (b *Bus) Write(page Page, addr, value byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.selectPage(page); err != nil {
		return err
	}
	return b.writeVerify(page, addr, value)
}

// Strobe writes without read-back, for self-clearing and write-one-to-clear
// registers.
func (b *Bus) Strobe(page Page, addr, value byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.selectPage(page); err != nil {
		return err
	}
	return b.writeReg(page, addr, value)
}

// Update replaces the bits selected by mask with the same bits of value,
// keeping the others, and verifies the result.
func (b *Bus) Update(page Page, addr, mask, value byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.selectPage(page); err != nil {
		return err
	}
	cur, err := b.readReg(page, addr)
	if err != nil {
		return err
	}
	return b.writeVerify(page, addr, cur&^mask|value&mask)
}

// ReadMulti reads n consecutive byte registers starting at addr and
// assembles them least significant byte first.
func (b *Bus) ReadMulti(page Page, addr byte, n int) (uint32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.selectPage(page); err != nil {
		return 0, err
	}
	var v uint32
	for i := 0; i < n; i++ {
		c, err := b.readReg(page, addr+byte(i))
		if err != nil {
			return 0, err
		}
		v |= uint32(c) << (8 * i)
	}
	return v, nil
}

// WriteMulti writes v into n consecutive byte registers, least significant
// byte first, verifying each one.
func (b *Bus) WriteMulti(page Page, addr byte, n int, v uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.selectPage(page); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := b.writeVerify(page, addr+byte(i), byte(v>>(8*i))); err != nil {
			return err
		}
	}
	return nil
}

// WriteFIFO bursts data into the FIFO.
func (b *Bus) WriteFIFO(data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	w := append([]byte{RegFifo<<1 | 0x01}, data...)
	if err := b.conn.Tx(w, make([]byte, len(w))); err != nil {
		b.pageValid = false
		return &BusError{Op: "fifo write", Page: Global, Addr: RegFifo, Err: err}
	}
	return nil
}

// ReadFIFO bursts n bytes out of the FIFO into a new slice.
func (b *Bus) ReadFIFO(n int) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	w := make([]byte, n+1)
	w[0] = RegFifo << 1
	r := make([]byte, len(w))
	if err := b.conn.Tx(w, r); err != nil {
		b.pageValid = false
		return nil, &BusError{Op: "fifo read", Page: Global, Addr: RegFifo, Err: err}
	}
	return r[1:], nil
}

// WriteTable applies a register table in order and stops at the first entry
// that fails.
func (b *Bus) WriteTable(name string, table []RegValue) error {
	for i, e := range table {
		if err := b.Write(e.Page, e.Addr, e.Value); err != nil {
			return &TableError{Table: name, Index: i, Err: err}
		}
	}
	return nil
}

// Pulse sets bit in SYS_CTL and clears it again. The reset bit also drops
// the page cache.
func (b *Bus) Pulse(bit byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	cur, err := b.readReg(Global, RegSysCtl)
	if err != nil {
		return err
	}
	if err := b.writeReg(Global, RegSysCtl, cur|bit); err != nil {
		return err
	}
	if bit&sysCtlReset != 0 {
		b.pageValid = false
	}
	cur, err = b.readReg(Global, RegSysCtl)
	if err != nil {
		return err
	}
	return b.writeVerify(Global, RegSysCtl, cur&^bit)
}

// Invalidate forgets the cached page so the next access reselects it.
func (b *Bus) Invalidate() {
	b.mu.Lock()
	b.pageValid = false
	b.mu.Unlock()
}

func (b *Bus) selectPage(page Page) error {
	if page == Global || (b.pageValid && b.page == page) {
		return nil
	}
	b.pageValid = false

	cur, err := b.readReg(Global, RegSysCtl)
	if err != nil {
		return err
	}
	if err := b.writeReg(Global, RegSysCtl, cur&^sysCtlPageMask|byte(page)); err != nil {
		return err
	}
	got, err := b.readReg(Global, RegSysCtl)
	if err != nil {
		return err
	}
	if got&sysCtlPageMask != byte(page) {
		return errors.Wrapf(ErrPageSelect, "want page %d, sys_ctl 0x%02x", page, got)
	}
	b.page = page
	b.pageValid = true
	return nil
}

func (b *Bus) readReg(page Page, addr byte) (byte, error) {
	var r [2]byte
	if err := b.conn.Tx([]byte{addr << 1, 0x00}, r[:]); err != nil {
		b.pageValid = false
		return 0, &BusError{Op: "read", Page: page, Addr: addr, Err: err}
	}
	return r[1], nil
}

func (b *Bus) writeReg(page Page, addr, value byte) error {
	var r [2]byte
	if err := b.conn.Tx([]byte{addr<<1 | 0x01, value}, r[:]); err != nil {
		b.pageValid = false
		return &BusError{Op: "write", Page: page, Addr: addr, Err: err}
	}
	return nil
}

func (b *Bus) writeVerify(page Page, addr, value byte) error {
	if err := b.writeReg(page, addr, value); err != nil {
		return err
	}
	got, err := b.readReg(page, addr)
	if err != nil {
		return err
	}
	if got != value {
		return &VerifyError{Page: page, Addr: addr, Want: value, Got: got}
	}
	return nil
}
