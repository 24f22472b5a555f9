// Package shell provides an interactive console driving a gumbi board.
package shell

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"
	"github.com/solar3s/gogumbi/gumbi"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	OutputJSON bool

	Shell *ishell.Shell
	Board *gumbi.Board

	err error // last command failure, reported by Eval
}

const (
	shellKey = "$shell"
	prompt   = "gumbi> "
)

var commands = []*ishell.Cmd{
	&PingCmd,
	&InfoCmd,
	&IdentifyCmd,
	&PinCmd,
	&SpeedCmd,
	&ResetCmd,
	&StateCmd,
}

// New creates a new shell over board.
func New(board *gumbi.Board) *Shell {
	s := &Shell{
		Shell: ishell.New(),
		Board: board,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(prompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// Run starts the interactive loop.
func (s *Shell) Run() {
	s.Shell.Println("gumbi shell, type help for commands")
	s.Shell.Run()
}

// Eval runs a single command line, without interaction. It returns
// the command's failure, if any.
func (s *Shell) Eval(args ...string) error {
	s.err = nil
	if err := s.Shell.Process(args...); err != nil {
		return err
	}
	return s.err
}

func (s *Shell) fail(c *ishell.Context, err error) {
	if s.err == nil {
		s.err = err
	}
	c.Err(err)
}

func (s *Shell) print(c *ishell.Context, v interface{}) {
	if s.OutputJSON {
		out, err := json.Marshal(v)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Println(v)
}

var PingCmd = ishell.Cmd{
	Name: "ping",
	Help: "ping the board",
	Func: func(c *ishell.Context) {
		s := ShellFrom(c)
		if err := gumbi.Ping(s.Board); err != nil {
			s.fail(c, err)
			return
		}
		c.Println("OK")
	},
}

var InfoCmd = ishell.Cmd{
	Name: "info",
	Help: "print board info",
	Func: func(c *ishell.Context) {
		s := ShellFrom(c)
		lines, err := gumbi.Info(s.Board)
		if err != nil {
			s.fail(c, err)
			return
		}
		if s.OutputJSON {
			s.print(c, lines)
			return
		}
		c.Println(strings.Join(lines, "\n"))
	},
}

var IdentifyCmd = ishell.Cmd{
	Name: "id",
	Help: "print board identification",
	Func: func(c *ishell.Context) {
		s := ShellFrom(c)
		id, err := gumbi.Identify(s.Board)
		if err != nil {
			s.fail(c, err)
			return
		}
		s.print(c, id)
	},
}

var PinCmd = ishell.Cmd{
	Name: "pin",
	Help: "pin <n> [high|low]: read or set pin n (1-128)",
	Func: func(c *ishell.Context) {
		s := ShellFrom(c)
		if len(c.Args) < 1 || len(c.Args) > 2 {
			s.fail(c, fmt.Errorf("usage: pin <n> [high|low]"))
			return
		}
		pin, err := strconv.Atoi(c.Args[0])
		if err != nil {
			s.fail(c, fmt.Errorf("invalid pin \"%s\"", c.Args[0]))
			return
		}
		g, err := gumbi.OpenGPIO(s.Board)
		if err != nil {
			s.fail(c, err)
			return
		}
		defer func() {
			if s.Board.State() == gumbi.Faulted {
				return
			}
			if err := g.Exit(); err != nil {
				s.fail(c, err)
			}
		}()
		if len(c.Args) == 1 {
			v, err := g.ReadPin(pin)
			if err != nil {
				s.fail(c, err)
				return
			}
			s.print(c, v)
		} else {
			switch c.Args[1] {
			case "high":
				err = g.PinHigh(pin)
			case "low":
				err = g.PinLow(pin)
			default:
				err = fmt.Errorf("invalid level \"%s\"", c.Args[1])
			}
			if err != nil {
				s.fail(c, err)
				return
			}
			c.Println("OK")
		}
	},
}

var SpeedCmd = ishell.Cmd{
	Name: "speed",
	Help: "speed [count]: time the transfer of count bytes (default 1024)",
	Func: func(c *ishell.Context) {
		s := ShellFrom(c)
		count := 1024
		if len(c.Args) > 0 {
			n, err := strconv.Atoi(c.Args[0])
			if err != nil || n <= 0 {
				s.fail(c, fmt.Errorf("invalid count \"%s\"", c.Args[0]))
				return
			}
			count = n
		}
		d, err := gumbi.SpeedTest(s.Board, count)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.Printf("%d bytes in %s (%.0f B/s)\n", count, d, float64(count)/d.Seconds())
	},
}

var ResetCmd = ishell.Cmd{
	Name: "reset",
	Help: "reset the communication stream",
	Func: func(c *ishell.Context) {
		s := ShellFrom(c)
		if err := s.Board.Reset(); err != nil {
			s.fail(c, err)
			return
		}
		c.Println("OK")
	},
}

var StateCmd = ishell.Cmd{
	Name: "state",
	Help: "print session state and mode",
	Func: func(c *ishell.Context) {
		s := ShellFrom(c)
		s.print(c, map[string]string{
			"state": s.Board.State().String(),
			"mode":  s.Board.Mode().String(),
		})
	},
}
