package gumbi

import (
	"errors"
	"fmt"
	"strconv"
)

// This file contains (un)marshallers for State and Mode, allowing
// to encode / decode names instead of numeric values, making
// communication with the web api or config files easier.

var stateNames = [...]string{
	Disconnected: "Disconnected",
	Idle:         "Idle",
	ModeSelected: "ModeSelected",
	AwaitingAck:  "AwaitingAck",
	Faulted:      "Faulted",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
	return stateNames[s]
}

// ---- type State int

func (s State) MarshalJSON() ([]byte, error) {
	return quote(s.MarshalText())
}

func (s *State) UnmarshalJSON(data []byte) error {
	b, err := unquote(data, "State")
	if err != nil {
		return err
	}
	return s.UnmarshalText(b)
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	str := string(b)
	for i, v := range stateNames {
		if v == str {
			*s = State(i)
			return nil
		}
	}
	i, err := strconv.Atoi(str)
	if err == nil && i >= 0 && i < len(stateNames) {
		*s = State(i)
		return nil
	}
	return fmt.Errorf("cannot unmarshal \"%s\" to State, is it misspelled?", str)
}

// ---- type Mode byte

func (m Mode) MarshalJSON() ([]byte, error) {
	return quote(m.MarshalText())
}

func (m *Mode) UnmarshalJSON(data []byte) error {
	b, err := unquote(data, "Mode")
	if err != nil {
		return err
	}
	return m.UnmarshalText(b)
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	str := string(b)
	for i, v := range modeNames {
		if v == str {
			*m = Mode(i)
			return nil
		}
	}
	i, err := strconv.Atoi(str)
	if err == nil && i >= 0 && i < len(modeNames) {
		*m = Mode(i)
		return nil
	}
	return fmt.Errorf("cannot unmarshal \"%s\" to Mode, is it misspelled?", str)
}

func quote(b []byte, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	return []byte(strconv.Quote(string(b))), nil
}

func unquote(data []byte, typ string) ([]byte, error) {
	n := len(data)
	if n < 2 || data[0] != '"' || data[n-1] != '"' {
		return nil, errors.New(typ + ".UnmarshalJSON: invalid JSON provided")
	}
	return data[1 : n-1], nil
}
