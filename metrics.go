package gpan

import (
	"math"
)

// rssiSNRThreshold separates the two RSSI estimates. Below it the raw RSSI
// register is unreliable and the value is derived from SNR instead.
const rssiSNRThreshold = 6

// SNR returns the signal to noise ratio of the last received frame in dB.
// The signal power is normalized by 2^SF, the spreading factor the modem
// reports for that frame. A zero noise reading counts as 1.
func (r *Radio) SNR() (float64, error) {
	sig, noise, err := r.powers()
	if err != nil {
		return 0, err
	}
	sf, err := r.bus.Read(Page1, RegRxSf)
	if err != nil {
		return 0, err
	}
	return snrDB(sig, noise, sf>>4), nil
}

// CascadeSNR is SNR without the spreading factor normalization.
func (r *Radio) CascadeSNR() (float64, error) {
	sig, noise, err := r.powers()
	if err != nil {
		return 0, err
	}
	return snrDB(sig, noise, 0), nil
}

func (r *Radio) powers() (sig, noise uint32, err error) {
	if sig, err = r.bus.ReadMulti(Page1, RegSigPower, 3); err != nil {
		return 0, 0, err
	}
	if noise, err = r.bus.ReadMulti(Page2, RegNoisePower, 3); err != nil {
		return 0, 0, err
	}
	return sig, noise, nil
}

func snrDB(sig, noise uint32, sf byte) float64 {
	if noise == 0 {
		noise = 1
	}
	return 10 * math.Log10(float64(sig)/math.Pow(2, float64(sf))/float64(noise))
}

// RSSI returns the received signal strength of the last frame in dBm.
func (r *Radio) RSSI() (float64, error) {
	bw, err := r.Bandwidth()
	if err != nil {
		return 0, err
	}
	snr, err := r.SNR()
	if err != nil {
		return 0, err
	}
	return rssiDBm(snr, bw, func() (byte, error) { return r.bus.Read(Page1, RegRssiRaw) })
}

// rssiDBm only reads the raw register when snr is at or above the
// threshold.
func rssiDBm(snr float64, bw Bandwidth, raw func() (byte, error)) (float64, error) {
	if snr < rssiSNRThreshold {
		return snr - 113 - float64(bwOffset(bw)), nil
	}
	v, err := raw()
	if err != nil {
		return 0, err
	}
	return float64(int(v) - 256), nil
}

func bwOffset(bw Bandwidth) int {
	switch bw {
	case BW62k:
		return 9
	case BW125k:
		return 6
	case BW250k:
		return 3
	}
	return 0
}

// EstimatedTxTimeMs estimates the time on air of the frame in the FIFO from
// the payload length register and the current modulation, plus a 5 ms
// margin.
func (r *Radio) EstimatedTxTimeMs() (uint32, error) {
	pl, err := r.bus.Read(Page1, RegPayloadLen)
	if err != nil {
		return 0, err
	}
	sf, err := r.SpreadingFactor()
	if err != nil {
		return 0, err
	}
	crc, err := r.CRC()
	if err != nil {
		return 0, err
	}
	cr, err := r.CodingRate()
	if err != nil {
		return 0, err
	}
	bw, err := r.Bandwidth()
	if err != nil {
		return 0, err
	}
	return airTimeMs(pl, sf, crc, cr, bw), nil
}

// airTimeMs is the LoRa time on air: 20.25 preamble and header symbols plus
// ceil((8*pl - 4*sf + 28 + 16*crc) / 4*sf) * (4+cr) payload symbols, each
// lasting 2^sf/bw seconds.
func airTimeMs(pl, sf byte, crc bool, cr CodingRate, bw Bandwidth) uint32 {
	hz := bw.Hz()
	if hz == 0 || sf == 0 {
		return txTimeMarginMs
	}
	c := 0
	if crc {
		c = 1
	}
	n := float32(8*int(pl)-4*int(sf)+28+16*c) / float32(4*int(sf))
	symbols := 12.25 + 8 + math.Ceil(float64(n))*float64(cr+4)
	symbolTime := float64(uint32(1)<<sf) / float64(hz)
	return uint32(symbols*symbolTime*1000) + txTimeMarginMs
}
