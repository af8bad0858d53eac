// Package scanrec saves scan snapshots to FITS files, with an auto-writing
// recorder that manages incrementing filenames in yyyy-mm-dd subfolders.
package scanrec

import (
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/astrogo/fitsio"

	"github.com/qt3uw/goscan/scan"
)

// headerCards builds the FITS cards describing how the snapshot was acquired.
func headerCards(snap scan.Snapshot) []fitsio.Card {
	set := snap.Settings
	return []fitsio.Card{
		{Name: "SWPSTART", Value: set.Start, Comment: "sweep start position"},
		{Name: "SWPEND", Value: set.End, Comment: "sweep end position"},
		{Name: "NPIX", Value: set.Pixels, Comment: "pixels per forward leg"},
		{Name: "NPIXBACK", Value: set.PixelsBack, Comment: "pixels per backward leg"},
		{Name: "NSUBPIX", Value: set.Subpixels, Comment: "sub-samples per pixel"},
		{Name: "TSWEEP", Value: set.SweepTime, Comment: "forward leg duration, sec"},
		{Name: "TSWPBACK", Value: set.SweepTimeBack, Comment: "backward leg duration, sec"},
		{Name: "TREPUMP", Value: set.RepumpTime, Comment: "repump hold before forward legs, sec"},
		{Name: "NROWS", Value: set.Rows, Comment: "slow axis rows, 0 for 1-D"},
		{Name: "SLOWSTRT", Value: set.SlowStart, Comment: "slow axis start position"},
		{Name: "SLOWEND", Value: set.SlowEnd, Comment: "slow axis end position"},
		{Name: "DATE-OBS", Value: snap.Started.UTC().Format(time.RFC3339), Comment: "scan start time, UTC"},
	}
}

// directionRows collects the rows swept in direction d, preserving order.
func directionRows(snap scan.Snapshot, d scan.Direction) []scan.Row {
	var rows []scan.Row
	for _, row := range snap.Rows {
		if row.Direction == d {
			rows = append(rows, row)
		}
	}
	return rows
}

// writeImage writes one double-precision image HDU holding the rows' values
// or timestamps, tagged with the direction and content.
func writeImage(fits *fitsio.File, cards []fitsio.Card, rows []scan.Row, content string, value func(scan.Pixel) float64) error {
	width := len(rows[0].Pixels)
	for _, row := range rows {
		if len(row.Pixels) != width {
			return fmt.Errorf("ragged snapshot: row %d has %d pixels, expected %d", row.Index, len(row.Pixels), width)
		}
	}
	height := len(rows)
	im := fitsio.NewImage(-64, []int{width, height})
	defer im.Close()
	cards = append(cards,
		fitsio.Card{Name: "DIRECTN", Value: rows[0].Direction.String(), Comment: "sweep direction"},
		fitsio.Card{Name: "CONTENT", Value: content, Comment: "values or elapsed seconds"},
	)
	if err := im.Header().Append(cards...); err != nil {
		return err
	}
	data := make([]float64, 0, width*height)
	for _, row := range rows {
		for _, px := range row.Pixels {
			data = append(data, value(px))
		}
	}
	if err := im.Write(&data); err != nil {
		return err
	}
	return fits.Write(im)
}

// WriteFITS streams a snapshot to w as a FITS file.  Each sweep direction
// present gets a value image and a matching elapsed-seconds image, rows in
// acquisition order.
func WriteFITS(w io.Writer, snap scan.Snapshot) error {
	if len(snap.Rows) == 0 {
		return fmt.Errorf("empty snapshot, nothing to write")
	}
	fits, err := fitsio.Create(w)
	if err != nil {
		return err
	}
	defer fits.Close()
	cards := headerCards(snap)
	for _, d := range []scan.Direction{scan.Forward, scan.Backward} {
		rows := directionRows(snap, d)
		if len(rows) == 0 {
			continue
		}
		err = writeImage(fits, cards, rows, "values", func(px scan.Pixel) float64 { return px.Value })
		if err != nil {
			return err
		}
		err = writeImage(fits, cards, rows, "elapsed", func(px scan.Pixel) float64 { return px.Elapsed.Seconds() })
		if err != nil {
			return err
		}
	}
	return nil
}

// Recorder saves snapshots with incrementing filenames in yyyy-mm-dd
// subfolders.  It is not thread safe.
type Recorder struct {
	counter int

	// Root is the root path
	Root string

	// Prefix is the prefix for the filenames
	Prefix string

	// timeFldr is the subfolder with yyyy-mm-dd format
	timeFldr string
}

func (r *Recorder) updateFolder() {
	now := time.Now()
	r.timeFldr = fmt.Sprintf("%04d-%02d-%02d", now.Year(), now.Month(), now.Day())
}

func (r *Recorder) mkDir() (string, error) {
	fldr := path.Join(r.Root, r.timeFldr)
	err := os.MkdirAll(fldr, 0777)
	return fldr, err
}

// incr updates the filename counter by scanning the folder.  If there is an
// error, the counter is not incremented
func (r *Recorder) incr() {
	dn, _ := r.mkDir()
	files, err := os.ReadDir(dn)
	if err != nil {
		return
	}
	count := 0
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		fn := file.Name()
		if !strings.HasSuffix(fn, ".fits") || !strings.HasPrefix(fn, r.Prefix) {
			continue
		}
		bit := strings.TrimSuffix(strings.TrimPrefix(fn, r.Prefix), ".fits")
		n, err := strconv.Atoi(bit)
		if err != nil {
			return
		}
		if count < n {
			count = n
		}
	}
	r.counter = count + 1
}

// Save writes the snapshot to the next file in the sequence and returns its
// path.
func (r *Recorder) Save(snap scan.Snapshot) (string, error) {
	r.updateFolder()
	fldr, err := r.mkDir()
	if err != nil {
		return "", err
	}
	r.incr()
	fn := path.Join(fldr, fmt.Sprintf("%s%06d.fits", r.Prefix, r.counter))
	fid, err := os.Create(fn)
	if err != nil {
		return "", err
	}
	defer fid.Close()
	if err := WriteFITS(fid, snap); err != nil {
		return "", err
	}
	return fn, nil
}
