package gpan

import (
	"github.com/pkg/errors"
)

// Params is the modulation setup of the radio.
type Params struct {
	Frequency       uint32     `json:"frequency"`
	SpreadingFactor uint8      `json:"spreading_factor"`
	Bandwidth       Bandwidth  `json:"bandwidth"`
	CodingRate      CodingRate `json:"coding_rate"`
	CRC             bool       `json:"crc"`
	Preamble        uint16     `json:"preamble,omitempty"`  // left untouched when 0
	SyncWord        byte       `json:"sync_word,omitempty"` // left untouched when 0
	TxPower         byte       `json:"tx_power"`
	DCDC            bool       `json:"dcdc"`
	LDR             bool       `json:"ldr"`
}

// DefaultParams returns 433 MHz, SF9, 125 kHz, 4/8, CRC on, full power.
func DefaultParams() Params {
	return Params{
		Frequency:       433000000,
		SpreadingFactor: 9,
		Bandwidth:       BW125k,
		CodingRate:      CR48,
		CRC:             true,
		TxPower:         0x7f,
	}
}

// Configure applies p from Standby3. Each modulation field is followed by a
// soft reset so the modem restarts with the new value.
func (r *Radio) Configure(p Params) error {
	if err := r.SetMode(ModeStandby3); err != nil {
		return err
	}
	fields := []struct {
		name string
		set  func() error
	}{
		{"frequency", func() error { return r.SetFrequency(p.Frequency) }},
		{"coding rate", func() error { return r.SetCodingRate(p.CodingRate) }},
		{"bandwidth", func() error { return r.SetBandwidth(p.Bandwidth) }},
		{"spreading factor", func() error { return r.SetSpreadingFactor(p.SpreadingFactor) }},
		{"tx power", func() error { return r.SetTxPower(p.TxPower) }},
		{"crc", func() error { return r.SetCRC(p.CRC) }},
	}
	for _, f := range fields {
		if err := f.set(); err != nil {
			return errors.Wrapf(err, "configure %s", f.name)
		}
		if err := r.Reset(); err != nil {
			return errors.Wrapf(err, "reset after %s", f.name)
		}
	}
	if p.Preamble != 0 {
		if err := r.SetPreamble(p.Preamble); err != nil {
			return errors.Wrap(err, "configure preamble")
		}
	}
	if p.SyncWord != 0 {
		if err := r.SetSyncWord(p.SyncWord); err != nil {
			return errors.Wrap(err, "configure sync word")
		}
	}
	if err := r.SetDCDC(p.DCDC); err != nil {
		return errors.Wrap(err, "configure dcdc")
	}
	return errors.Wrap(r.SetLDR(p.LDR), "configure ldr")
}

// ReadParams reads the modulation setup back from the chip.
func (r *Radio) ReadParams() (Params, error) {
	var p Params
	var err error
	read := func(fn func() error) {
		if err == nil {
			err = fn()
		}
	}
	read(func() (e error) { p.Frequency, e = r.Frequency(); return })
	read(func() (e error) { p.SpreadingFactor, e = r.SpreadingFactor(); return })
	read(func() (e error) { p.Bandwidth, e = r.Bandwidth(); return })
	read(func() (e error) { p.CodingRate, e = r.CodingRate(); return })
	read(func() (e error) { p.CRC, e = r.CRC(); return })
	read(func() (e error) { p.Preamble, e = r.Preamble(); return })
	read(func() (e error) { p.SyncWord, e = r.SyncWord(); return })
	read(func() (e error) { p.TxPower, e = r.TxPower(); return })
	read(func() (e error) { p.DCDC, e = r.DCDC(); return })
	read(func() (e error) { p.LDR, e = r.LDR(); return })
	return p, err
}

// SetFrequency tunes the synthesizer. Supported bands are 336-510 MHz
// (400 MHz LO) and 800-920 MHz (800 MHz LO).
func (r *Radio) SetFrequency(freq uint32) error {
	var bandSel, loSel, lowband byte
	switch {
	case freq >= freq336M && freq <= freq470M:
		bandSel, loSel, lowband = 0x8e, 0x02, 1
	case freq > freq470M && freq <= freq510M:
		bandSel, loSel, lowband = 0xae, 0x02, 1
	case freq >= freq800M && freq <= freq920M:
		bandSel, loSel, lowband = 0x8e, 0x01, 0
	default:
		return errors.Wrapf(ErrUnsupportedFrequency, "%d Hz", freq)
	}
	fb, fc := loDivider(freq, lowband)

	if err := r.bus.Write(Page0, RegBandSel, bandSel); err != nil {
		return err
	}
	if err := r.bus.Update(Page0, RegLoSel, 0x03, loSel); err != nil {
		return err
	}
	if err := r.bus.Write(Page3, RegLoFb, byte(fb)&0x7f); err != nil {
		return err
	}
	if err := r.bus.Write(Page3, RegLoFcLo, byte(fc)); err != nil {
		return err
	}
	if err := r.bus.Write(Page3, RegLoFcHi, byte(fc>>8)&0x0f); err != nil {
		return err
	}
	if err := r.bus.Update(Page3, RegLoCtl, 0x0e, 0x08|lowband<<2|lowband<<1); err != nil {
		return err
	}
	return r.bus.WriteMulti(Page3, RegFreq, 4, freq)
}

// loDivider splits freq*mult/RefClock into the integer (fb) and fractional
// (fc) synthesizer words. It works in single precision so the words match
// the vendor's calculator bit for bit.
func loDivider(freq uint32, lowband byte) (fb, fc int) {
	mult := uint32(2 * (1 + lowband))
	tmp := float32(float64(freq*mult) / RefClock)
	ip := int(tmp)
	fb = ip - 20
	fc = int((tmp - float32(ip)) * 1600 / float32(mult))
	if fc < 0xff {
		fb--
		fc += 400
	}
	return fb, fc
}

// Frequency returns the frequency last written by SetFrequency. It is read
// from the plain copy the chip keeps, not derived from the LO words.
func (r *Radio) Frequency() (uint32, error) {
	return r.bus.ReadMulti(Page3, RegFreq, 4)
}

func (r *Radio) SetBandwidth(bw Bandwidth) error {
	if bw < BW125k || bw > BW500k {
		return errors.Wrapf(ErrUnsupportedBandwidth, "code %d", bw)
	}
	return r.bus.Update(Page3, RegModem1, 0xf0, byte(bw)<<4)
}

func (r *Radio) Bandwidth() (Bandwidth, error) {
	v, err := r.bus.Read(Page3, RegModem1)
	return Bandwidth(v >> 4), err
}

func (r *Radio) SetCodingRate(cr CodingRate) error {
	if cr < CR45 || cr > CR48 {
		return errors.Wrapf(ErrUnsupportedCodingRate, "index %d", cr)
	}
	return r.bus.Update(Page3, RegModem1, 0x0e, byte(cr)<<1)
}

func (r *Radio) CodingRate() (CodingRate, error) {
	v, err := r.bus.Read(Page3, RegModem1)
	return CodingRate((v & 0x0e) >> 1), err
}

// SetSpreadingFactor accepts 7 to 12 although the PAN3031 is only
// specified for 7 to 9.
func (r *Radio) SetSpreadingFactor(sf uint8) error {
	if sf < 7 || sf > 12 {
		return errors.Wrapf(ErrUnsupportedSpreadingFactor, "SF%d", sf)
	}
	return r.bus.Update(Page3, RegModem2, 0xf0, sf<<4)
}

func (r *Radio) SpreadingFactor() (uint8, error) {
	v, err := r.bus.Read(Page3, RegModem2)
	return v >> 4, err
}

func (r *Radio) SetCRC(on bool) error {
	return r.bus.Update(Page3, RegModem2, 0x08, bit(on, 3))
}

func (r *Radio) CRC() (bool, error) {
	v, err := r.bus.Read(Page3, RegModem2)
	return v&0x08 != 0, err
}

func (r *Radio) SetPreamble(n uint16) error {
	return r.bus.WriteMulti(Page3, RegPreamble, 2, uint32(n))
}

func (r *Radio) Preamble() (uint16, error) {
	v, err := r.bus.ReadMulti(Page3, RegPreamble, 2)
	return uint16(v), err
}

func (r *Radio) SetSyncWord(sync byte) error {
	return r.bus.Write(Page3, RegSyncWord, sync)
}

func (r *Radio) SyncWord() (byte, error) {
	return r.bus.Read(Page3, RegSyncWord)
}

// SetTxPower sets the PA level. The value is first<<4|second: first (bits
// 4-6) drives the first PA stage and second (bits 0-3) the second stage,
// which only runs when first is at its maximum of 7. Otherwise second is
// stored as 0.
func (r *Radio) SetTxPower(p byte) error {
	first := (p >> 4) & 0x07
	second := p & 0x0f
	if first < 0x07 {
		second = 0
	}
	return r.bus.Write(Page1, RegPaPower, second<<4|first)
}

func (r *Radio) TxPower() (byte, error) {
	v, err := r.bus.Read(Page1, RegPaPower)
	return (v&0x07)<<4 | (v>>4)&0x0f, err
}

// SetDCDC switches the DC-DC converter. It has to be off before sleeping.
func (r *Radio) SetDCDC(on bool) error {
	return r.bus.Update(Page3, RegDcdc, 0x01, bit(on, 0))
}

func (r *Radio) DCDC() (bool, error) {
	v, err := r.bus.Read(Page3, RegDcdc)
	return v&0x01 != 0, err
}

// SetLDR switches low data rate optimization. It has to be off before
// sleeping.
func (r *Radio) SetLDR(on bool) error {
	return r.bus.Update(Page3, RegLdr, 0x08, bit(on, 3))
}

func (r *Radio) LDR() (bool, error) {
	v, err := r.bus.Read(Page3, RegLdr)
	return v&0x08 != 0, err
}

// SetEarlyIRQ enables the pre-header interrupt.
func (r *Radio) SetEarlyIRQ(on bool) error {
	return r.bus.Update(Page1, RegEarlyIrq, 0x80, bit(on, 7))
}

func (r *Radio) EarlyIRQ() (bool, error) {
	v, err := r.bus.Read(Page1, RegEarlyIrq)
	return v&0x80 != 0, err
}

// SetPLHD sets the payload address and length captured by the pre-header
// interrupt.
func (r *Radio) SetPLHD(addr byte, l PLHDLen) error {
	return r.bus.Write(Page1, RegPlhdCtl, addr&0x7f|byte(l)<<7)
}

func (r *Radio) PLHDLength() (PLHDLen, error) {
	v, err := r.bus.Read(Page1, RegPlhdCtl)
	return PLHDLen(v >> 7), err
}

func (r *Radio) SetPLHDMask(on bool) error {
	return r.bus.Update(Page0, RegPlhdMask, 0x10, bit(on, 4))
}

func (r *Radio) PLHDMask() (bool, error) {
	v, err := r.bus.Read(Page0, RegPlhdMask)
	return v&0x10 != 0, err
}

func bit(on bool, n uint) byte {
	if on {
		return 1 << n
	}
	return 0
}
