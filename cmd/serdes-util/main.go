// Copyright (c) 2024 The serdeslib Authors

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"serdeslib/pkg/serdes"

	"k8s.io/klog/v2"
)

var Version = "1.0.0"

// This variable is filled in during the linker step - -ldflags "-X main.buildTime=`date -u '+%Y-%m-%dT%H:%M:%S'`"
var buildTime = ""

var helptxt = `
serdes-util is a command line tool to inspect and drive the SerDes lanes of
Realtek Otto switch SoCs (RTL838x/839x/930x/931x).

Usage:
./serdes-util --family=NAME --base=HEX [--swcore=HEX] [--config=FILE]
              [--dump=SID] [--mode=SID] [--polarity=SID] [--set-hwmode=SID:HEX]
              [--version] [--help] [--verbosity=0]

Which:
	version            : Print the version of this application and exit
	help               : Print the help text and exit
	family             : SoC family, one of rtl8380-serdes rtl8390-serdes rtl9300-serdes rtl9310-serdes
	base               : Physical base address (hex) of the SerDes register block or indirect access registers
	swcore             : Physical base address (hex) of the switch core window, default 0xbb000000
	config             : Controller configuration file (managed lanes, event scripts)
	dump=SID           : Print all pages and registers of one lane to stdout
	mode=SID           : Print the hardware mode code and the portable mode of one lane
	polarity=SID       : Print the tx/rx signal inversion of one lane
	set-hwmode=SID:HEX : Force a raw hardware mode code into one lane (hardware exploration)
	verbosity          : Set the log level verbosity, where 0 is no logging and 4 is very verbose
`

const (
	DefaultVerbosity = "0" // Default log level
)

// The switch core window sits at the same physical address on all
// supported SoCs.
var DefaultSwcore = strconv.FormatUint(serdes.SWITCH_ADDR_BASE, 16)

type Settings struct {
	Version   bool   // Print the version of this application and exit if true
	Verbosity string // The log level verbosity, where 0 is no logging and 4 is very verbose
	Help      bool   // Print the help text and exit
	Family    string // SoC family name
	Base      string // SerDes register window base address in hex
	Swcore    string // Switch core window base address in hex
	Config    string // Controller configuration file
	dump      int    // Lane to dump, -1 when unused
	mode      int    // Lane to show the mode of, -1 when unused
	polarity  int    // Lane to show the polarity of, -1 when unused
	sethw     string // SID:HEX raw mode override
}

// InitContext: initialize the configuration data using command line args
func (s *Settings) InitContext(args []string, ctx context.Context) (error, context.Context) {

	newContext := ctx

	flags := flag.NewFlagSet(args[0], flag.ExitOnError)

	var (
		version   = flags.Bool("version", false, "Display version and exit")
		verbosity = flags.String("verbosity", DefaultVerbosity, "Log level verbosity")
		help      = flags.Bool("help", false, "Print the help text")
		family    = flags.String("family", "", "SoC family name")
		base      = flags.String("base", "", "SerDes register window base address in hex")
		swcore    = flags.String("swcore", DefaultSwcore, "Switch core window base address in hex")
		config    = flags.String("config", "", "Controller configuration file")
		dump      = flags.Int("dump", -1, "Print all pages and registers of the lane")
		mode      = flags.Int("mode", -1, "Print the hardware and portable mode of the lane")
		polarity  = flags.Int("polarity", -1, "Print the tx/rx signal inversion of the lane")
		sethw     = flags.String("set-hwmode", "", "Force a raw hardware mode code, SID:HEX")
	)

	err := flags.Parse(args[1:])
	if err != nil {
		return err, newContext
	}

	s.Version = *version
	s.Verbosity = *verbosity
	s.Help = *help
	s.Family = *family
	s.Base = *base
	s.Swcore = *swcore
	s.Config = *config
	s.dump = *dump
	s.mode = *mode
	s.polarity = *polarity
	s.sethw = *sethw

	if len(args) == 1 {
		s.Help = true
	}

	return nil, newContext
}

func main() {

	settings := Settings{}
	ctx := context.Background()
	var err error
	err, _ = settings.InitContext(os.Args, ctx)

	if err != nil {
		fmt.Printf("ERROR: parsing parameters, err=%v\n", err)
		os.Exit(1)
	}

	// Set verbosity level according to the 'verbosity' flag
	var l klog.Level
	l.Set(settings.Verbosity)

	// serdes-util banner
	args := strings.Join(os.Args[1:], " ")
	klog.V(1).InfoS("serdes-util", "args", args)
	klog.V(2).InfoS("serdes-util", "settings", settings)

	if settings.Version {
		fmt.Println("[] serdes-util", "version", Version, "build", buildTime)
		os.Exit(0)
	}

	if settings.Help {
		fmt.Print(helptxt)
		os.Exit(0)
	}

	family := serdes.FamilyByName(settings.Family)
	if family == serdes.FAMILY_UNKNOWN {
		fmt.Printf("ERROR: unknown family %q, expected one of %s\n",
			settings.Family, strings.Join(serdes.FamilyNames(), " "))
		os.Exit(1)
	}

	basePhys, err := strconv.ParseInt(settings.Base, 16, 64)
	if err != nil || basePhys == 0 {
		fmt.Printf("ERROR: invalid register window base %q\n", settings.Base)
		os.Exit(1)
	}
	swPhys, err := strconv.ParseInt(settings.Swcore, 16, 64)
	if err != nil {
		fmt.Printf("ERROR: invalid switch core base %q\n", settings.Swcore)
		os.Exit(1)
	}

	base, err := serdes.NewDevMem(basePhys, 0x10000)
	if err != nil {
		fmt.Printf("ERROR: mapping register window, err=%v\n", err)
		os.Exit(1)
	}
	defer base.Close()

	sw, err := serdes.NewDevMem(swPhys, 0x4000)
	if err != nil {
		fmt.Printf("ERROR: mapping switch core window, err=%v\n", err)
		os.Exit(1)
	}
	defer sw.Close()

	var cfg *serdes.Config
	if settings.Config != "" {
		cfg, err = serdes.LoadConfig(settings.Config)
		if err != nil {
			klog.Warningf("serdes-util: config not usable, continuing read-only: %v", err)
			cfg = nil
		}
	}

	ctrl, err := serdes.NewCtrl(family, base, sw, cfg)
	if err != nil {
		fmt.Printf("ERROR: creating controller, err=%v\n", err)
		os.Exit(1)
	}

	if settings.sethw != "" {
		part := strings.SplitN(settings.sethw, ":", 2)
		if len(part) != 2 {
			fmt.Printf("ERROR: expected --set-hwmode=SID:HEX, got %q\n", settings.sethw)
			os.Exit(1)
		}
		sid, err1 := strconv.ParseUint(part[0], 10, 32)
		hwmode, err2 := strconv.ParseUint(part[1], 16, 32)
		if err1 != nil || err2 != nil {
			fmt.Printf("ERROR: expected --set-hwmode=SID:HEX, got %q\n", settings.sethw)
			os.Exit(1)
		}
		if err := ctrl.SetHwMode(uint32(sid), uint32(hwmode)); err != nil {
			fmt.Printf("ERROR: set hwmode on SerDes %d, err=%v\n", sid, err)
			os.Exit(1)
		}
		fmt.Printf("SerDes %d hardware mode forced to 0x%x\n", sid, hwmode)
	}

	if settings.mode >= 0 {
		hw, mode, err := ctrl.ModeInfo(uint32(settings.mode))
		if err != nil {
			fmt.Printf("ERROR: reading mode of SerDes %d, err=%v\n", settings.mode, err)
			os.Exit(1)
		}
		fmt.Printf("SerDes %d: hardware mode 0x%x, portable mode %s\n", settings.mode, hw, mode)
	}

	if settings.polarity >= 0 {
		txInv, rxInv, err := ctrl.Polarity(uint32(settings.polarity))
		if err != nil {
			fmt.Printf("ERROR: reading polarity of SerDes %d, err=%v\n", settings.polarity, err)
			os.Exit(1)
		}
		fmt.Printf("SerDes %d: tx inverted %v, rx inverted %v\n", settings.polarity, txInv, rxInv)
	}

	if settings.dump >= 0 {
		dump, err := ctrl.DumpRegisters(uint32(settings.dump))
		if err != nil {
			fmt.Printf("ERROR: dumping SerDes %d, err=%v\n", settings.dump, err)
			os.Exit(1)
		}
		fmt.Printf("Register dump of SerDes %d:\n%s", settings.dump, dump)
	}
}
