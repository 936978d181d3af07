package model

import "math"

// Record keys used by seed files and external JSON payloads.
const (
	KeyName      = "name"
	KeySummary   = "summary"
	KeyLatitude  = "latitude"
	KeyLongitude = "longitude"
	KeyImage     = "imageName"
)

// UnknownSummary is the summary given to geocaches created from external text.
const UnknownSummary = "Unknown"

type Geocache struct {
	Name      string  `json:"name"`
	Summary   string  `json:"summary"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Image     []byte  `json:"image,omitempty"`
}

// HasImage reports whether image bytes are attached.
func (g Geocache) HasImage() bool { return len(g.Image) > 0 }

// HasLocation is false for the 0,0 placeholder given to imported geocaches.
func (g Geocache) HasLocation() bool {
	return g.Latitude != 0 || g.Longitude != 0
}

type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (g Geocache) Coordinate() Coordinate {
	return Coordinate{Latitude: g.Latitude, Longitude: g.Longitude}
}

// Valid reports whether the coordinate is a finite point on the globe.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) {
		return false
	}
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}
