package web

import (
	"time"

	"github.com/rkjdid/util"
	"github.com/solar3s/gogumbi/gumbi"
	"github.com/solar3s/gogumbi/rawhid"
	"go.bug.st/serial"
)

const (
	TransportSerial = "serial"
	TransportHID    = "hid"
)

var DefaultConfig = Config{
	Transport: TransportSerial,
	Serial:    DefaultSerialConfig,
	HID:       rawhid.DefaultConfig,
	Web:       DefaultServerConfig,
	Watcher:   gumbi.DefaultWatcherConfig,
	LogDir:    "logs",
}

var DefaultSerialConfig = SerialConfig{
	BaudRate: gumbi.DefaultBaud,
}

var DefaultServerConfig = ServerConfig{
	ListenAddr:        "localhost:3637",
	WebsocketInterval: util.Duration(time.Second),
}

type Config struct {
	Transport string // "serial" or "hid"
	Serial    SerialConfig
	HID       rawhid.Config
	Web       ServerConfig
	Watcher   gumbi.WatcherConfig
	LogDir    string // speed test logs, relative to root directory
}

type SerialConfig struct {
	Port      string // if empty, searched by VendorID/ProductID, then platform default
	BaudRate  int
	VendorID  string // hex, as reported by the OS (e.g. "0403")
	ProductID string
}

type ServerConfig struct {
	ListenAddr        string
	Verbose           bool
	WebsocketInterval util.Duration
}

// Mode returns the serial.Mode described by sc.
func (sc SerialConfig) Mode() *serial.Mode {
	mode := *gumbi.DefaultSerialMode
	if sc.BaudRate > 0 {
		mode.BaudRate = sc.BaudRate
	}
	return &mode
}

// LoadConfig reads the TOML config at path. If it doesn't exist,
// it is created from DefaultConfig and created is true.
func LoadConfig(path string) (cfg *Config, created bool, err error) {
	err = util.ReadTomlFile(&cfg, path)
	if err == nil {
		return cfg, false, nil
	}
	if !isNotExist(err) {
		return nil, false, err
	}
	def := DefaultConfig
	cfg = &def
	return cfg, true, util.WriteTomlFile(cfg, path)
}
