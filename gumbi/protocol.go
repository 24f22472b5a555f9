package gumbi

// see firmware/ng/avr/gumbi.h

const (
	Ack  byte = 'A'
	Nack byte = 'N'
)

const (
	DefaultBaud = 9600
	MaxPins     = 128
	ResetLen    = 1024
)

// Mode selects the board's active function. It is sent as
// the single byte of a mode-selection frame.
type Mode byte

const (
	ModeNop Mode = iota
	ModeParallelFlash
	ModeSPIFlash
	ModeSPIEEPROM
	ModeI2CEEPROM
	ModePing
	ModeInfo
	ModeSpeed
	ModeGPIO
	ModeID
)

// Op selects an action within the current mode.
type Op byte

const (
	OpExit Op = iota
	OpRead
	OpWrite
	OpErase
	OpPinHigh
	OpPinLow
)

var modeNames = [...]string{
	ModeNop:           "Nop",
	ModeParallelFlash: "ParallelFlash",
	ModeSPIFlash:      "SPIFlash",
	ModeSPIEEPROM:     "SPIEEPROM",
	ModeI2CEEPROM:     "I2CEEPROM",
	ModePing:          "Ping",
	ModeInfo:          "Info",
	ModeSpeed:         "Speed",
	ModeGPIO:          "GPIO",
	ModeID:            "ID",
}

var opNames = [...]string{
	OpExit:    "Exit",
	OpRead:    "Read",
	OpWrite:   "Write",
	OpErase:   "Erase",
	OpPinHigh: "PinHigh",
	OpPinLow:  "PinLow",
}

// Valid reports whether m is one of the modes known to the firmware.
func (m Mode) Valid() bool {
	return int(m) < len(modeNames)
}

func (m Mode) String() string {
	if !m.Valid() {
		return "Mode(" + itoa(int(m)) + ")"
	}
	return modeNames[m]
}

func (op Op) String() string {
	if int(op) >= len(opNames) {
		return "Op(" + itoa(int(op)) + ")"
	}
	return opNames[op]
}
