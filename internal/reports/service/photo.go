package service

import (
	"io"

	"github.com/rwcarlsen/goexif/exif"

	"greenbin_backend/internal/geocode"
)

// photoCoordinate extracts a GPS position from a photo's EXIF data. Photos
// without usable EXIF are common; every failure just means no coordinate.
func photoCoordinate(r io.Reader) (geocode.Coordinate, bool) {
	meta, err := exif.Decode(r)
	if err != nil {
		return geocode.Coordinate{}, false
	}

	lat, lng, err := meta.LatLong()
	if err != nil {
		return geocode.Coordinate{}, false
	}

	return geocode.Coordinate{Lat: lat, Lng: lng}, true
}
