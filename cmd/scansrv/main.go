package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"

	yml "gopkg.in/yaml.v2"

	"github.com/qt3uw/goscan/scan"
	"github.com/qt3uw/goscan/scansrv"
)

var (
	// Version is the version number.  Typically injected via ldflags with git build
	Version = "1"

	// ConfigFileName is what it sounds like
	ConfigFileName = "scansrv.yml"
	k              = koanf.New(".")
)

func setupconfig() {
	k.Load(structs.Provider(scansrv.Config{
		Addr: ":8000",
		Sessions: []scansrv.SessionSetup{{
			Endpoint: "scan/demo",
			Axis:     scansrv.Minmax{Min: 0, Max: 100},
			Reader:   scansrv.ReaderSetup{Type: "peak", Center: 50, Width: 2, Amplitude: 1e4, Background: 100},
			Settings: scan.Settings{Start: 40, End: 60, Pixels: 100, Subpixels: 2, SweepTime: 1},
		}}}, "koanf"), nil)
	if err := k.Load(file.Provider(ConfigFileName), yaml.Parser()); err != nil {
		errtxt := err.Error()
		if !strings.Contains(errtxt, "no such") { // file missing, who cares
			log.Fatalf("error loading config: %v", err)
		}
	}
}

func root() {
	str := `scansrv coordinates sweep-and-acquire scans and exposes an HTTP interface to them.
This enables a server-client architecture, and the clients can leverage the
excellent HTTP libraries for any programming language.

Usage:
	scansrv <command>

Commands:
	run
	help
	mkconf
	conf
	version`
	fmt.Println(str)
}

func help() {
	str := `scansrv is amenable to configuration via its .yaml file.  For a primer on YAML, see
https://yaml.org/start.html

Each entry under Sessions becomes one scan session mounted at its Endpoint.
No two sessions can have the same Endpoint.

Endpoints may look like any variation between "scan/tisapph" or "/scan/tisapph/",
the leading slash is added and the trailing slash removed by the server if needed.

Reader types, case insensitive:
- "linear"
	> detector value is Gain * position + Offset, deterministic
- "peak", "lorentzian"
	> Lorentzian line at Center with HWHM Width on a flat Background, noisy

Set Repump: true to attach an auxiliary repump output, and give the session a
Slow axis block to enable 2-D rasters (Settings.rows > 0).`
	fmt.Println(str)
}

func mkconf() {
	c := scansrv.Config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	f, err := os.Create(ConfigFileName)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	err = yml.NewEncoder(f).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func printconf() {
	c := scansrv.Config{}
	k.Unmarshal("", &c)
	err := yml.NewEncoder(os.Stdout).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func pversion() {
	fmt.Printf("scansrv version %v\n", Version)
}

func run() {
	c := scansrv.Config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	mux, err := scansrv.BuildMux(c)
	if err != nil {
		log.Fatal(err)
	}
	log.Println("now listening for requests at ", c.Addr)
	log.Fatal(http.ListenAndServe(c.Addr, mux))
}

func main() {
	args := os.Args
	if len(args) == 1 {
		root()
		return
	}
	setupconfig()
	cmd := strings.ToLower(args[1])
	switch cmd {
	case "help":
		help()
	case "mkconf":
		mkconf()
	case "conf":
		printconf()
	case "run":
		run()
	case "version":
		pversion()
	default:
		log.Fatal("unknown command")
	}
}
