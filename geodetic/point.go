package geodetic

// Point is a geodetic position. Longitude and latitude are in degrees,
// altitude in meters above the ellipsoid. No normalization is applied at
// construction; callers own wrap semantics.
type Point struct {
	Lon float64
	Lat float64
	Alt float64
}

// Cartesian is an Earth-Centered-Earth-Fixed position in meters.
type Cartesian struct {
	X float64
	Y float64
	Z float64
}

// Box is an axis-aligned geodetic bounding box.
type Box struct {
	Min Point
	Max Point
}

// Extend grows the box to cover p.
func (b *Box) Extend(p Point) {
	if p.Lon < b.Min.Lon {
		b.Min.Lon = p.Lon
	}
	if p.Lon > b.Max.Lon {
		b.Max.Lon = p.Lon
	}
	if p.Lat < b.Min.Lat {
		b.Min.Lat = p.Lat
	}
	if p.Lat > b.Max.Lat {
		b.Max.Lat = p.Lat
	}
	if p.Alt < b.Min.Alt {
		b.Min.Alt = p.Alt
	}
	if p.Alt > b.Max.Alt {
		b.Max.Alt = p.Alt
	}
}

// Covers reports whether p lies inside the box or on its boundary.
func (b Box) Covers(p Point) bool {
	return p.Lon >= b.Min.Lon && p.Lon <= b.Max.Lon &&
		p.Lat >= b.Min.Lat && p.Lat <= b.Max.Lat &&
		p.Alt >= b.Min.Alt && p.Alt <= b.Max.Alt
}
