package gumbi

import (
	"fmt"
	"time"
)

// Info returns the board's info lines. The listing ends with a line holding a lone Ack.
func Info(s Session) ([]string, error) {
	if err := s.SetMode(ModeInfo); err != nil {
		return nil, err
	}
	var lines []string
	for {
		line, err := s.ReadText()
		if err != nil {
			return lines, err
		}
		if line == string(Ack) {
			return lines, nil
		}
		lines = append(lines, line)
	}
}

// Identify returns the board's identification string.
func Identify(s Session) (string, error) {
	if err := s.SetMode(ModeID); err != nil {
		return "", err
	}
	return s.ReadText()
}

// Ping checks the board answers a ping with an Ack.
func Ping(s Session) error {
	if err := s.SetMode(ModePing); err != nil {
		return err
	}
	return s.ReadAck()
}

// SpeedTest asks the board for count bytes and returns the time taken to receive them.
func SpeedTest(s Session, count int) (time.Duration, error) {
	n, err := Pack32(int64(count))
	if err != nil {
		return 0, err
	}
	if err = s.SetMode(ModeSpeed); err != nil {
		return 0, err
	}
	t0 := time.Now()
	if err = s.Write(n); err != nil {
		return 0, err
	}
	if count == 0 {
		return time.Since(t0), nil
	}
	res, err := s.Read(count)
	if err != nil {
		return 0, err
	}
	if len(res) != count {
		return 0, fmt.Errorf("speed test: got %d bytes, expected %d", len(res), count)
	}
	return time.Since(t0), nil
}

// Exec runs step repeat times, stopping at the first error.
// Some chip recipes only take effect after their command step ran twice;
// the reason is not known, so callers pass the count explicitly.
func Exec(s Session, repeat int, step func(Session) error) error {
	if repeat < 1 {
		repeat = 1
	}
	for i := 0; i < repeat; i++ {
		if err := step(s); err != nil {
			return fmt.Errorf("exec %d/%d: %w", i+1, repeat, err)
		}
	}
	return nil
}
