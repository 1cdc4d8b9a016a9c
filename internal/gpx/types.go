package gpx

import (
	"encoding/xml"
	"time"
)

// RawXML preserves nested extension blocks without re-parsing them
// during decode. The inner XML bytes are kept verbatim and scanned for
// known trackpoint extension values afterwards.
type RawXML []byte

func (r *RawXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	type inner struct {
		Content string `xml:",innerxml"`
	}

	var data inner
	if err := d.DecodeElement(&data, &start); err != nil {
		return err
	}

	if len(data.Content) == 0 {
		*r = nil
		return nil
	}

	*r = append((*r)[:0], data.Content...)
	return nil
}

// Point is a normalized track point. Immutable once parsed; the slice
// order is the recording order.
type Point struct {
	Lat       float64
	Lon       float64
	Elevation *float64
	Time      *time.Time

	// Vendor trackpoint extensions (Garmin, Strava, etc.)
	HeartRate   *float64
	Cadence     *float64
	Temperature *float64
	Power       *float64
}

// rawPoint mirrors a <trkpt> element on the wire.
type rawPoint struct {
	Lat        float64  `xml:"lat,attr"`
	Lon        float64  `xml:"lon,attr"`
	Elevation  *float64 `xml:"ele"`
	Time       string   `xml:"time"`
	Extensions RawXML   `xml:"extensions"`
}

type rawSegment struct {
	Points []rawPoint `xml:"trkpt"`
}

type rawTrack struct {
	Name     string       `xml:"name"`
	Segments []rawSegment `xml:"trkseg"`
}

// document is the subset of the GPX file structure the pipeline reads.
// GPX writing is out of scope, so namespaces and metadata beyond the
// track name are not preserved.
type document struct {
	XMLName xml.Name   `xml:"gpx"`
	Version string     `xml:"version,attr"`
	Creator string     `xml:"creator,attr"`
	Name    string     `xml:"metadata>name"`
	Tracks  []rawTrack `xml:"trk"`
}
