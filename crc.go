package gpan

// CRCType selects the polynomial and seed of ComputeCRC.
type CRCType int

const (
	// CRCCCITT is polynomial 0x1021, seed 0x1d0f, result inverted.
	CRCCCITT CRCType = iota
	// CRCIBM is polynomial 0x8005, seed 0xffff, result as is.
	CRCIBM
)

const (
	polyCCITT = 0x1021
	polyIBM   = 0x8005
	seedCCITT = 0x1d0f
	seedIBM   = 0xffff
)

// ComputeCRC returns the 16 bit CRC of data, MSB first, the same way the
// chip checks frame payloads.
func ComputeCRC(data []byte, t CRCType) uint16 {
	poly, crc := uint16(polyCCITT), uint16(seedCCITT)
	if t == CRCIBM {
		poly, crc = polyIBM, seedIBM
	}
	for _, b := range data {
		crc = crcByte(crc, b, poly)
	}
	if t == CRCIBM {
		return crc
	}
	return ^crc
}

func crcByte(crc uint16, b byte, poly uint16) uint16 {
	for i := 0; i < 8; i++ {
		if (crc>>8^uint16(b))&0x80 != 0 {
			crc = crc<<1 ^ poly
		} else {
			crc <<= 1
		}
		b <<= 1
	}
	return crc
}
