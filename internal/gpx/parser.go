package gpx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Parse error taxonomy. All three are fatal to an import: the caller
// must reject the file and persist nothing.
var (
	ErrUnreadable = errors.New("gpx: source cannot be opened")
	ErrMalformed  = errors.New("gpx: file cannot be decoded")
	ErrEmpty      = errors.New("gpx: no track points found")
)

// Result holds the normalized outcome of parsing one GPX file.
type Result struct {
	Name   string
	Points []Point
}

// ParseFile reads and parses a GPX file.
func ParseFile(filename string) (*Result, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse parses GPX from an io.Reader, flattening all tracks and
// segments into one point sequence in recording order.
func Parse(r io.Reader) (*Result, error) {
	decoder := xml.NewDecoder(r)

	var doc document
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	result := &Result{Name: trackName(&doc)}
	for _, track := range doc.Tracks {
		for _, segment := range track.Segments {
			for _, rp := range segment.Points {
				result.Points = append(result.Points, normalizePoint(rp))
			}
		}
	}

	if len(result.Points) == 0 {
		return nil, ErrEmpty
	}

	return result, nil
}

func trackName(doc *document) string {
	if doc.Name != "" {
		return doc.Name
	}
	for _, track := range doc.Tracks {
		if track.Name != "" {
			return track.Name
		}
	}
	return ""
}

func normalizePoint(rp rawPoint) Point {
	p := Point{
		Lat:       rp.Lat,
		Lon:       rp.Lon,
		Elevation: rp.Elevation,
	}

	if rp.Time != "" {
		if t, err := time.Parse(time.RFC3339, rp.Time); err == nil {
			utc := t.UTC()
			p.Time = &utc
		}
	}

	if len(rp.Extensions) > 0 {
		p.HeartRate, p.Cadence, p.Temperature, p.Power = scanExtensions(rp.Extensions)
	}

	return p
}

// scanExtensions walks the raw extension XML and picks out known
// trackpoint extension values. Matching is on the local element name
// only, so both bound (gpxtpx:hr) and unbound (hr) prefixes work.
func scanExtensions(raw []byte) (hr, cad, temp, power *float64) {
	decoder := xml.NewDecoder(bytes.NewReader(raw))

	var current string
	for {
		tok, err := decoder.Token()
		if err != nil {
			return
		}

		switch t := tok.(type) {
		case xml.StartElement:
			current = strings.ToLower(t.Name.Local)
		case xml.CharData:
			value, err := strconv.ParseFloat(strings.TrimSpace(string(t)), 64)
			if err != nil {
				continue
			}
			switch current {
			case "hr", "heartrate":
				hr = &value
			case "cad", "cadence":
				cad = &value
			case "atemp", "temp":
				temp = &value
			case "power":
				power = &value
			}
		case xml.EndElement:
			current = ""
		}
	}
}
