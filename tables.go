package gpan

// initTable is the basic configuration applied after the first wake up.
var initTable = []RegValue{
	{Page0, 0x06, 0x01},
	{Page0, 0x40, 0x50},
	{Page0, 0x3e, 0x2c},
	{Page0, 0x3c, 0xff},
	{Page1, 0x0e, 0x44},
	{Page1, 0x0f, 0x0a},
	{Page1, 0x1e, 0x00},
	{Page1, 0x11, 0xa1},
	{Page1, 0x15, 0x38},
	{Page1, 0x2f, 0x0c},
	{Page3, 0x06, 0x26},
	{Page3, 0x10, 0x80},
	{Page3, 0x11, 0x0d},
	{Page3, 0x12, 0x16},
	{Page3, 0x18, 0xff},
}

// agcLadder is the AGC gain ladder, written to page 2 from offset 0x07 on.
var agcLadder = []byte{
	0x90, 0xff, 0x64, 0x27, 0x00, 0x00, 0x27, 0x27,
	0x00, 0x00, 0x27, 0x27, 0x00, 0x00, 0x27, 0x27,
	0x00, 0x00, 0x27, 0x27, 0x00, 0x00, 0x27, 0x27,
	0x00, 0x00, 0x27, 0x27, 0x00, 0x00, 0x27, 0x27,
	0x00, 0x00, 0x27, 0x27, 0x00, 0x00, 0x27, 0x2b,
	0x00, 0xf8, 0x2b, 0x31, 0x00, 0xfc, 0x31, 0x37,
	0x00, 0xff, 0x37, 0x3c, 0x20, 0xff, 0x3c, 0x42,
	0x40, 0xff, 0x42, 0x48, 0x60, 0xff, 0x48, 0x4d,
	0x80, 0xff, 0x4d, 0x53, 0x84, 0xff, 0x53, 0x59,
	0x88, 0xff, 0x59, 0x5f, 0x8c, 0xff, 0x5f, 0x64,
	0x90, 0xff, 0x64, 0x06, 0xff, 0x40, 0x42, 0x0f,
	0x00, 0x00, 0x01, 0xf4, 0x2f, 0xf3, 0x0f, 0x00,
	0x00, 0x00,
}

const agcLadderBase = 0x07

var agcTable = ladder(Page2, agcLadderBase, agcLadder)

// Carrier wave test sequence: OP_MODE and LDO steps up to the oscillator
// switch over, then the PA and LO overrides.
var cwPowerUp = []RegValue{
	{Global, RegOpMode, 0x00},
	{Global, RegOpMode, 0x01},
	{Global, RegLdoCtl, 0x16},
	{Global, RegLdoCtl, 0x56},
	{Global, RegLdoCtl, 0x76},
}

var cwCarrier = []RegValue{
	{Global, RegLdoCtl, 0xf6},
	{Global, RegOpMode, 0x02},
	{Page3, RegPaRamp, 0x60},
	{Global, RegOpMode, 0x03},
	{Page3, RegPaRamp, 0xe0},
	{Global, RegOpMode, 0x04},
	{Page3, RegPaRamp, 0xf0},
	{Page0, 0x4c, 0xbf},
	{Page0, RegBandSel, 0x92},
	{Page3, RegLoCtl, 0x0f},
	{Page3, RegLoFb, 0x58},
	{Page3, RegLoFcLo, 0x64},
	{Page3, RegLoFcHi, 0x00},
	{Page1, 0x66, 0x7f},
	{Page1, 0x65, 0xf7},
	{Page0, 0x17, 0x08},
	{Page0, 0x18, 0x28},
}

func ladder(page Page, base byte, values []byte) []RegValue {
	t := make([]RegValue, len(values))
	for i, v := range values {
		t[i] = RegValue{Page: page, Addr: base + byte(i), Value: v}
	}
	return t
}
