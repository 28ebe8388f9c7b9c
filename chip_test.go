package gpan

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/spi"
)

var errInjected = errors.New("injected transfer failure")

type regKey struct {
	page Page
	addr byte
}

// fakeChip is a register model of the transceiver behind spi.Conn. It keeps
// the system area, four pages, the FIFO and the write-one-to-clear IRQ
// register, and records every transfer.
type fakeChip struct {
	mu sync.Mutex

	sys   [5]byte
	pages [4][256]byte

	fifoTx []byte
	fifoRx []byte

	stuck  map[regKey]byte // reads return the value, writes are ignored
	failAt int             // transfer number (1-based) that fails, 0 for never

	txCount int
	writes  [][]byte
	modes   []Mode
	resets  int
}

var _ spi.Conn = (*fakeChip)(nil)

func newFakeChip() *fakeChip {
	return &fakeChip{stuck: map[regKey]byte{}}
}

func (c *fakeChip) String() string { return "fakeChip" }

func (c *fakeChip) Duplex() conn.Duplex { return conn.Full }

func (c *fakeChip) TxPackets(p []spi.Packet) error {
	for _, pkt := range p {
		if err := c.Tx(pkt.W, pkt.R); err != nil {
			return err
		}
	}
	return nil
}

func (c *fakeChip) Tx(w, r []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.txCount++
	if c.failAt != 0 && c.txCount == c.failAt {
		return errInjected
	}
	addr, write := w[0]>>1, w[0]&0x01 != 0

	if addr == RegFifo {
		if write {
			c.fifoTx = append([]byte(nil), w[1:]...)
			c.writes = append(c.writes, append([]byte(nil), w...))
		} else {
			copy(r[1:], c.fifoRx)
		}
		return nil
	}

	key := c.key(addr)
	if !write {
		if v, ok := c.stuck[key]; ok {
			r[1] = v
			return nil
		}
		r[1] = *c.reg(key)
		return nil
	}

	c.writes = append(c.writes, append([]byte(nil), w...))
	if _, ok := c.stuck[key]; ok {
		return nil
	}
	v := w[1]
	switch {
	case key.page == Global && addr == RegSysCtl:
		if v&sysCtlReset != 0 {
			c.resets++
			v &^= sysCtlReset
		}
	case key.page == Global && addr == RegOpMode:
		c.modes = append(c.modes, Mode(v))
	case key.page == Page0 && addr == RegIrqStatus:
		c.pages[0][RegIrqStatus] &^= v
		return nil
	}
	*c.reg(key) = v
	return nil
}

func (c *fakeChip) key(addr byte) regKey {
	if addr <= RegLdoCtl {
		return regKey{Global, addr}
	}
	return regKey{Page(c.sys[RegSysCtl] & sysCtlPageMask), addr}
}

func (c *fakeChip) reg(k regKey) *byte {
	if k.page == Global {
		return &c.sys[k.addr]
	}
	return &c.pages[k.page][k.addr]
}

// get and set bypass the bus.
func (c *fakeChip) get(page Page, addr byte) byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *c.reg(regKey{page, addr})
}

func (c *fakeChip) set(page Page, addr byte, values ...byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, v := range values {
		*c.reg(regKey{page, addr + byte(i)}) = v
	}
}

func (c *fakeChip) setStuck(page Page, addr, v byte) {
	c.mu.Lock()
	c.stuck[regKey{page, addr}] = v
	c.mu.Unlock()
}

// failNext makes the n-th transfer from now fail.
func (c *fakeChip) failNext(n int) {
	c.mu.Lock()
	c.failAt = c.txCount + n
	c.mu.Unlock()
}

func (c *fakeChip) mark() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.writes)
}

// writesSince returns the write transfers recorded after mark m.
func (c *fakeChip) writesSince(m int) [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.writes[m:]...)
}

func (c *fakeChip) transfers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.txCount
}

func (c *fakeChip) modeHistory() []Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Mode(nil), c.modes...)
}

// delays records settle times instead of sleeping.
type delays struct {
	mu sync.Mutex
	d  []time.Duration
}

func (d *delays) sleep(t time.Duration) {
	d.mu.Lock()
	d.d = append(d.d, t)
	d.mu.Unlock()
}

func (d *delays) all() []time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]time.Duration(nil), d.d...)
}

func newTestRadio() (*Radio, *fakeChip, *delays) {
	c := newFakeChip()
	d := &delays{}
	return New(c, Opts{Delay: d.sleep}), c, d
}
