// Command scantest runs a simulated sweep-and-acquire scan at the terminal.
// It is a bench check for the scan engine and a template for wiring real
// hardware bindings to a session.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/theckman/yacspin"
	"golang.org/x/time/rate"

	"github.com/qt3uw/goscan/scan"
	"github.com/qt3uw/goscan/scanrec"
	"github.com/qt3uw/goscan/sim"
	"github.com/qt3uw/goscan/util"
)

func main() {
	var (
		start     = flag.Float64("start", 40, "sweep start position")
		end       = flag.Float64("end", 60, "sweep end position")
		pixels    = flag.Int("pixels", 80, "pixels per sweep")
		subpixels = flag.Int("subpixels", 2, "sub-samples per pixel")
		sweep     = flag.Float64("sweep", 2, "sweep duration, seconds")
		cycles    = flag.Int("cycles", 1, "number of sweep cycles")
		bidi      = flag.Bool("bidi", false, "sweep back down after each up sweep")
		center    = flag.Float64("center", 50, "simulated line center")
		width     = flag.Float64("width", 1, "simulated line HWHM")
		fits      = flag.String("fits", "", "path to save the acquired data as FITS, empty to skip")
	)
	flag.Parse()

	ax := sim.NewAxis(*start, *end)
	rd := sim.NewPeakReader(ax, *center, *width, 1e5, 200)
	rd.Realtime = true
	sess, err := scan.New(scan.Settings{
		Start: *start, End: *end, Pixels: *pixels, Subpixels: *subpixels,
		SweepTime: *sweep, Cycles: *cycles, Bidirectional: *bidi,
	}, scan.Hardware{Axis: ax, Reader: rd, Aux: &sim.Switch{}})
	if err != nil {
		log.Fatal(err)
	}

	spin, err := yacspin.New(yacspin.Config{
		Frequency:     100 * time.Millisecond,
		CharSet:       yacspin.CharSets[14],
		Suffix:        " scanning",
		StopCharacter: "done",
	})
	if err != nil {
		log.Fatal(err)
	}

	if err := sess.Start(); err != nil {
		log.Fatal(err)
	}
	spin.Start()
	// poll at a bounded rate rather than hammering the session mutex
	limiter := rate.NewLimiter(rate.Every(50*time.Millisecond), 1)
	for sess.State() == scan.Running {
		limiter.Wait(context.Background())
		spin.Message(fmt.Sprintf("%d rows acquired", sess.Frames()))
	}
	spin.Stop()
	sess.Wait()
	if err := sess.Err(); err != nil {
		log.Fatal(err)
	}

	snap := sess.Snapshot()
	if len(snap.Rows) == 0 {
		log.Fatal("no rows acquired")
	}
	row := snap.Rows[0]
	printProfile(snap.Settings, row)

	if *fits != "" {
		f, err := os.Create(*fits)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		if err := scanrec.WriteFITS(f, snap); err != nil {
			log.Fatal(err)
		}
		log.Println("saved", *fits)
	}
}

// printProfile renders the first row as an ASCII profile and reports where
// the maximum landed.
func printProfile(set scan.Settings, row scan.Row) {
	positions := util.Arange(set.Start, set.End, (set.End-set.Start)/float64(len(row.Pixels)))
	for len(positions) < len(row.Pixels) {
		positions = append(positions, set.End)
	}
	peak := 0.0
	argmax := 0
	for i, px := range row.Pixels {
		if px.Value > peak {
			peak = px.Value
			argmax = i
		}
	}
	for i, px := range row.Pixels {
		fmt.Printf("%8.3f |%s\n", positions[i], bar(px.Value, peak))
	}
	fmt.Printf("maximum %.0f counts at %.3f\n", peak, positions[argmax])
}

// bar scales v against peak into a 50-column bar.  A dark row (peak 0) gets
// empty bars rather than a division by zero.
func bar(v, peak float64) string {
	if peak <= 0 {
		return ""
	}
	frac := util.Clamp(v/peak, 0, 1)
	return strings.Repeat("#", int(frac*50))
}
