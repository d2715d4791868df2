package domain

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Represents a campus building the user can route to.
// At most one destination is active per session.
type Destination struct {
	Name string
	Lat  float64
	Lng  float64
}

func (d Destination) Equal(other Destination) bool {
	return d.Name == other.Name && d.Lat == other.Lat && d.Lng == other.Lng
}

func (d Destination) Position() Position {
	return Position{Lat: d.Lat, Lng: d.Lng}
}

func (d Destination) LatLng() string {
	return fmt.Sprintf("%f,%f", d.Lat, d.Lng)
}

// Flat catalog entry. The category name is also its store key.
type Category struct {
	Name string
}

// DisplayName upper-cases the first letter of a building or category name.
func DisplayName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}
