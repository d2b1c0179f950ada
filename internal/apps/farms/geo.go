package farms

import (
	"math"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
)

// point returns the farm's coordinates as an orb.Point (lon, lat).
func (f *Farm) point() (orb.Point, bool) {
	if f.Latitude == nil || f.Longitude == nil {
		return orb.Point{}, false
	}
	return orb.Point{*f.Longitude, *f.Latitude}, true
}

// searchBound is the bounding box used to prefilter a radius search in SQL.
func (n NearFilter) searchBound() orb.Bound {
	return geo.NewBoundAroundPoint(n.center(), n.RadiusKm*1000)
}

// lonClause is the SQL longitude prefilter for b. A bound that crosses the
// antimeridian has Min.Lon > Max.Lon; one spanning every longitude needs no
// predicate and yields "".
func lonClause(b orb.Bound) (string, []interface{}) {
	minLon, maxLon := b.Min.Lon(), b.Max.Lon()
	switch {
	case maxLon-minLon >= 360-1e-9:
		return "", nil
	case minLon > maxLon:
		return "(longitude >= ? OR longitude <= ?)", []interface{}{minLon, maxLon}
	default:
		return "longitude BETWEEN ? AND ?", []interface{}{minLon, maxLon}
	}
}

func (n NearFilter) center() orb.Point {
	return orb.Point{n.Lng, n.Lat}
}

// contains reports whether the farm lies within the radius.
func (n NearFilter) contains(f *Farm) bool {
	p, ok := f.point()
	if !ok {
		return false
	}
	return geo.Distance(n.center(), p) <= n.RadiusKm*1000
}

// DistanceKm is the great-circle distance between the farm and a point.
func (f *Farm) DistanceKm(lat, lng float64) (float64, bool) {
	p, ok := f.point()
	if !ok {
		return 0, false
	}
	return geo.Distance(orb.Point{lng, lat}, p) / 1000, true
}

// FeatureCollection renders farms with coordinates as GeoJSON points. With a
// radius search each feature also carries distance_km from its centre.
func FeatureCollection(list []Farm, near *NearFilter) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i := range list {
		f := &list[i]
		p, ok := f.point()
		if !ok {
			continue
		}
		feature := geojson.NewFeature(p)
		feature.ID = strconv.FormatUint(uint64(f.ID), 10)
		feature.Properties["farm_id"] = f.ID
		feature.Properties["farmer_username"] = f.FarmerUsername
		feature.Properties["farm_location"] = f.FarmLocation
		feature.Properties["crop_type"] = f.CropType
		feature.Properties["is_organic"] = f.IsOrganic
		feature.Properties["farm_status"] = f.FarmStatus
		feature.Properties["farm_area"] = f.FarmArea
		if f.MinAskingPrice != nil {
			feature.Properties["min_asking_price"] = *f.MinAskingPrice
		}
		if near != nil {
			if d, ok := f.DistanceKm(near.Lat, near.Lng); ok {
				feature.Properties["distance_km"] = math.Round(d*100) / 100
			}
		}
		fc.Append(feature)
	}
	return fc
}
