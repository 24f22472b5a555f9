package gumbi

// GPIO provides raw read/write access to the board's I/O pins.
// Pin numbers are 1-based.
type GPIO struct {
	s Session
}

// OpenGPIO puts the board in GPIO mode.
func OpenGPIO(s Session) (*GPIO, error) {
	if err := s.SetMode(ModeGPIO); err != nil {
		return nil, err
	}
	return &GPIO{s: s}, nil
}

// PinHigh sets pin high.
func (g *GPIO) PinHigh(pin int) error {
	return g.pinOp(OpPinHigh, pin)
}

// PinLow sets pin low.
func (g *GPIO) PinLow(pin int) error {
	return g.pinOp(OpPinLow, pin)
}

// ReadPin returns the level of pin, 1 for high and 0 for low.
func (g *GPIO) ReadPin(pin int) (int, error) {
	if err := g.pinOp(OpRead, pin); err != nil {
		return -1, err
	}
	res, err := g.s.Read(1)
	if err != nil {
		return -1, err
	}
	return Ordinal(res)
}

// Exit leaves GPIO mode.
func (g *GPIO) Exit() error {
	return g.s.Write([]byte{byte(OpExit), 0})
}

func (g *GPIO) pinOp(op Op, pin int) error {
	p, err := Pin2Real(pin)
	if err != nil {
		return err
	}
	return g.s.Write([]byte{byte(op), p})
}
