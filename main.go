package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/solar3s/gogumbi/gumbi"
	"github.com/solar3s/gogumbi/rawhid"
	"github.com/solar3s/gogumbi/shell"
	"github.com/solar3s/gogumbi/web"
)

const Version = "0.3.0"

var (
	rootConfig *web.Config
	device     string
)

var (
	devPath   = flag.String("dev", "", "path to serial port, if empty it is searched by usb ids, then platform default")
	useHID    = flag.Bool("hid", false, "use usb-hid transport instead of serial")
	rootPath  = flag.String("root", "", "path to gogumbi's main directory (defaults to executable path)")
	cfgPath   = flag.String("config", "", "path to config (defaults to <root>/config.toml)")
	runShell  = flag.Bool("shell", false, "start interactive shell instead of web server")
	eval      = flag.String("e", "", "evaluate a shell command line & exit")
	jsonOut   = flag.Bool("json", false, "print shell output in json")
	doReset   = flag.Bool("reset", false, "reset communication stream after connecting")
	verbose   = flag.Bool("v", false, "higher verbosity")
	version   = flag.Bool("version", false, "print version & exit")
	listPorts = flag.Bool("ports", false, "list serial ports & exit")
)

func init() {
	flag.Parse()

	// print version & exit
	if *version {
		fmt.Printf("gogumbi %s\n", Version)
		os.Exit(0)
	}

	if *listPorts {
		ports, err := gumbi.ListPorts()
		if err != nil {
			log.Fatal("error listing serial ports: ", err)
		}
		for _, p := range ports {
			if p.IsUSB {
				fmt.Printf("%s\t%s:%s\t%s\n", p.Name, p.VID, p.PID, p.Product)
			} else {
				fmt.Println(p.Name)
			}
		}
		os.Exit(0)
	}

	if *rootPath == "" {
		exe, err := os.Executable()
		if err != nil {
			log.Fatalf("couldn't get path to executable: %s", err)
		}
		*rootPath = filepath.Dir(exe)
	}
	if err := os.MkdirAll(*rootPath, 0755); err != nil {
		log.Fatalf("couldn't mkdir \"%s\": %s", *rootPath, err)
	}

	if *cfgPath == "" {
		*cfgPath = filepath.Join(*rootPath, "config.toml")
	}

	var (
		created bool
		err     error
	)
	rootConfig, created, err = web.LoadConfig(*cfgPath)
	if err != nil {
		log.Fatalf("error reading config \"%s\": %s", *cfgPath, err)
	}
	if created {
		log.Printf("created new config file \"%s\"", *cfgPath)
	}
	if *verbose {
		rootConfig.Web.Verbose = true
	}
	if *useHID {
		rootConfig.Transport = web.TransportHID
	}
	if *devPath != "" {
		rootConfig.Serial.Port = *devPath
	}
	if !filepath.IsAbs(rootConfig.LogDir) && rootConfig.LogDir != "" {
		rootConfig.LogDir = filepath.Join(*rootPath, rootConfig.LogDir)
	}

	log.Printf("using config file: %s", *cfgPath)
}

// openBoard opens the transport selected in cfg and wraps it in a Board.
func openBoard(cfg *web.Config) (*gumbi.Board, error) {
	switch cfg.Transport {
	case web.TransportHID:
		h, err := rawhid.Dial(cfg.HID)
		if err != nil {
			return nil, err
		}
		if cfg.Web.Verbose {
			h.Log = log.New(os.Stderr, "hid: ", log.LstdFlags)
		}
		h.Flush()
		device = fmt.Sprintf("%04x:%04x", cfg.HID.VendorID, cfg.HID.ProductID)
		return gumbi.NewBoard(h), nil
	case web.TransportSerial, "":
		var (
			board *gumbi.Board
			err   error
		)
		if cfg.Serial.Port == "" && (cfg.Serial.VendorID != "" || cfg.Serial.ProductID != "") {
			var conn *gumbi.SerialConnection
			conn, err = gumbi.FindSerial(cfg.Serial.VendorID, cfg.Serial.ProductID, cfg.Serial.Mode())
			if err == nil {
				board = gumbi.NewBoard(conn)
			}
		} else {
			board, err = gumbi.OpenBoard(cfg.Serial.Port, cfg.Serial.Mode())
		}
		if err != nil {
			return nil, err
		}
		if conn, ok := board.Transport().(*gumbi.SerialConnection); ok {
			device = conn.Path()
		}
		return board, nil
	default:
		return nil, fmt.Errorf("unknown transport \"%s\"", cfg.Transport)
	}
}

func main() {
	board, err := openBoard(rootConfig)
	if err != nil {
		log.Fatal("error opening board connection: ", err)
	}
	defer board.Close()
	if rootConfig.Web.Verbose {
		board.Log = log.New(os.Stderr, "board: ", log.LstdFlags)
	}

	if *doReset {
		log.Println("resetting communication stream...")
		if err = board.Reset(); err != nil {
			log.Printf("reset failed on \"%s\": %s", device, err)
			board.Close()
			os.Exit(1)
		}
	}

	if *runShell || *eval != "" {
		sh := shell.New(board)
		sh.OutputJSON = *jsonOut
		if *eval != "" {
			if err = sh.Eval(strings.Fields(*eval)...); err != nil {
				log.Println(err)
				board.Close()
				os.Exit(1)
			}
			return
		}
		sh.Run()
		return
	}

	if err = gumbi.Ping(board); err != nil {
		log.Printf("no response from board on \"%s\": %s", device, err)
		board.Close()
		os.Exit(1)
	}
	log.Printf("connected to \"%s\"", device)

	srv := web.NewServer(Version, board, rootConfig)
	srv.Device = device

	log.Printf("starting webserver on http://%s ...", rootConfig.Web.ListenAddr)
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			log.Fatal("http.ListenAndServe: ", err)
		}
	}()

	// small delay to allow for failure in ListenAndServe
	<-time.After(time.Millisecond * 500)
	log.Println("Press <Ctrl-C> to quit")

	trap := make(chan os.Signal, 1)
	signal.Notify(trap, os.Interrupt)
	<-trap
	fmt.Println()
	log.Println("quit received...")

	cleanExit := make(chan struct{})
	go func() {
		if err := srv.Close(); err != nil {
			log.Println("error closing board:", err)
		}
		close(cleanExit)
	}()
	select {
	case <-time.After(time.Second * 10):
		log.Panicln("no clean exit after 10sec")
	case <-cleanExit:
	}
}
