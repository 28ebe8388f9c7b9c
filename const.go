package gpan

// Page selects one of the four register pages of the chip.
type Page byte

// Mode is the chip's operating mode as stored in the OP_MODE register.
type Mode byte

// TxMode and RxMode are the transmit and receive sub-modes. They live in a
// control register of their own and are independent of Mode.
type TxMode byte
type RxMode byte

// Bandwidth is the chip's bandwidth code, not a frequency in Hz.
type Bandwidth byte

// CodingRate is the 4/(4+n) coding rate index n.
type CodingRate byte

// PLHDLen selects the size of the pre-header snapshot.
type PLHDLen byte

const (
	Page0 Page = 0
	Page1 Page = 1
	Page2 Page = 2
	Page3 Page = 3

	// Global addresses the system-control area (offsets 0x00 to 0x04), which
	// is reachable whatever page is selected.
	Global Page = 0xff
)

// System-control area.
const (
	RegSysCtl   byte = 0x00
	RegFifo     byte = 0x01
	RegOpMode   byte = 0x02
	RegXtalTrim byte = 0x03
	RegLdoCtl   byte = 0x04
)

const (
	sysCtlPageMask  byte = 0x03
	sysCtlPktCntClr byte = 0x40
	sysCtlReset     byte = 0x80
)

// Page 0.
const (
	RegAnaSwitch  byte = 0x06
	RegLoSel      byte = 0x45
	RegBandSel    byte = 0x4a
	RegPlhdMask   byte = 0x58
	RegGpioInLo   byte = 0x63
	RegGpioInHi   byte = 0x64
	RegGpioOutLo  byte = 0x65
	RegGpioOutHi  byte = 0x66
	RegGpioLvlLo  byte = 0x67
	RegGpioLvlHi  byte = 0x68
	RegIrqStatus  byte = 0x6c
	RegPlhdTailP0 byte = 0x76
)

// Page 1.
const (
	RegCadCtl     byte = 0x0f
	RegPayloadLen byte = 0x0c
	RegEarlyIrq   byte = 0x2d
	RegPlhdCtl    byte = 0x2e
	RegPaPower    byte = 0x63
	RegSigPower   byte = 0x74 // 0x74..0x76
	RegRxSf       byte = 0x7c
	RegRxLen      byte = 0x7d
	RegRssiRaw    byte = 0x7e
)

// Page 2.
const (
	RegAgcCtl     byte = 0x06
	RegNoisePower byte = 0x71 // 0x71..0x73
	RegPlhdHeadP2 byte = 0x76
)

// Page 3.
const (
	RegTrxMode   byte = 0x06
	RegRxTimeout byte = 0x07 // 0x07 lo, 0x08 hi
	RegFreq      byte = 0x09 // 0x09..0x0c
	RegModem1    byte = 0x0d // bandwidth, coding rate
	RegModem2    byte = 0x0e // spreading factor, crc
	RegSyncWord  byte = 0x0f
	RegLdr       byte = 0x12
	RegPreamble  byte = 0x13 // 0x13 lo, 0x14 hi
	RegLoFb      byte = 0x15
	RegLoFcLo    byte = 0x16
	RegLoFcHi    byte = 0x17
	RegLoCtl     byte = 0x18
	RegDcdc      byte = 0x1e
	RegPaRamp    byte = 0x24
	RegTcxoCtl   byte = 0x26
)

const (
	ModeDeepSleep Mode = 0
	ModeSleep     Mode = 1
	ModeStandby1  Mode = 2
	ModeStandby2  Mode = 3
	ModeStandby3  Mode = 4
	ModeTx        Mode = 5
	ModeRx        Mode = 6
)

const (
	TxSingle     TxMode = 0
	TxContinuous TxMode = 1
)

const (
	RxSingle        RxMode = 0
	RxSingleTimeout RxMode = 1
	RxContinuous    RxMode = 2
)

const (
	BW62k  Bandwidth = 6
	BW125k Bandwidth = 7
	BW250k Bandwidth = 8
	BW500k Bandwidth = 9
)

const (
	CR45 CodingRate = 1
	CR46 CodingRate = 2
	CR47 CodingRate = 3
	CR48 CodingRate = 4
)

const (
	PLHDLen8  PLHDLen = 0
	PLHDLen16 PLHDLen = 1
)

// IRQ status bits, listed in dispatch priority order.
const (
	IrqPlhdDone  byte = 0x10
	IrqRxDone    byte = 0x08
	IrqCrcError  byte = 0x04
	IrqRxTimeout byte = 0x02
	IrqTxDone    byte = 0x01

	irqAll byte = 0x1f
)

const (
	RefClock       = 16000000
	MaxPktLength   = 255
	MaxRxTimeout   = 0xffff
	txTimeMarginMs = 5

	freq336M = 336000000
	freq470M = 470000000
	freq510M = 510000000
	freq800M = 800000000
	freq920M = 920000000
)

// Chip GPIO lines used by the reference module wiring.
const (
	GpioRxPath = 1
	GpioTxPath = 3
	GpioTcxo   = 5
	GpioCadIrq = 11
)

func (m Mode) String() string {
	switch m {
	case ModeDeepSleep:
		return "deep-sleep"
	case ModeSleep:
		return "sleep"
	case ModeStandby1:
		return "standby1"
	case ModeStandby2:
		return "standby2"
	case ModeStandby3:
		return "standby3"
	case ModeTx:
		return "tx"
	case ModeRx:
		return "rx"
	}
	return "unknown"
}

// Hz returns the bandwidth in Hz, or 0 for an unknown code.
func (b Bandwidth) Hz() uint32 {
	switch b {
	case BW62k:
		return 62500
	case BW125k:
		return 125000
	case BW250k:
		return 250000
	case BW500k:
		return 500000
	}
	return 0
}
