// Package mapview clusters report pins into map markers sized to a viewport,
// so the admin map stays readable when reports pile up in one block.
package mapview

import (
	"github.com/golang/geo/r1"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	"report-intake-service/models"
)

// Marker is one clustered point on the admin map.
type Marker struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Count     int64   `json:"count"`
}

type bucket struct {
	cnt     int64
	origPin s2.CellID
}

// Aggregator buckets pins by their parent S2 cell at a level picked for the
// viewport size.
type Aggregator struct {
	level   int
	buckets map[s2.CellID]*bucket
}

const (
	expectedMarkers = 160
	minLevel        = 6
	maxLevel        = 16
)

// cellBaseLevel picks the deepest cell level at which the viewport holds no
// more than expectedMarkers cells.
func cellBaseLevel(vp *models.ViewPort) int {
	minLL := s2.LatLngFromDegrees(vp.LatMin, vp.LonMin)
	maxLL := s2.LatLngFromDegrees(vp.LatMax, vp.LonMax)

	rect := s2.Rect{
		Lat: r1.Interval{
			Lo: minLL.Lat.Radians(),
			Hi: maxLL.Lat.Radians()},
		Lng: s1.Interval{
			Lo: minLL.Lng.Radians(),
			Hi: maxLL.Lng.Radians()},
	}
	vpArea := rect.Area()

	center := s2.CellIDFromLatLng(s2.LatLngFromDegrees(
		(vp.LatMin+vp.LatMax)/2, (vp.LonMin+vp.LonMax)/2))

	for lv := maxLevel; lv >= minLevel; lv-- {
		cell := s2.CellFromCellID(center.Parent(lv))
		if vpArea/cell.ApproxArea() < expectedMarkers {
			return lv
		}
	}
	return minLevel // Large enough level
}

func NewAggregator(vp *models.ViewPort) *Aggregator {
	return &Aggregator{
		level:   cellBaseLevel(vp),
		buckets: make(map[s2.CellID]*bucket),
	}
}

func (a *Aggregator) AddPin(pin models.MapPin) {
	pc := s2.CellIDFromLatLng(s2.LatLngFromDegrees(pin.Latitude, pin.Longitude))
	parent := pc.Parent(a.level)
	if _, ok := a.buckets[parent]; !ok {
		a.buckets[parent] = &bucket{}
	}
	a.buckets[parent].cnt += 1
	a.buckets[parent].origPin = pc
}

// Markers returns one marker per occupied cell: the cell center for crowded
// cells, the exact pin location when a cell holds a single report.
func (a *Aggregator) Markers() []Marker {
	res := make([]Marker, 0, len(a.buckets))
	for c, b := range a.buckets {
		ll := c.LatLng()
		if b.cnt == 1 {
			ll = b.origPin.LatLng()
		}
		res = append(res, Marker{
			Latitude:  ll.Lat.Degrees(),
			Longitude: ll.Lng.Degrees(),
			Count:     b.cnt,
		})
	}
	return res
}

// Cluster is the one-call form: bucket all pins for the viewport and return
// the markers.
func Cluster(vp *models.ViewPort, pins []models.MapPin) []Marker {
	a := NewAggregator(vp)
	for _, p := range pins {
		a.AddPin(p)
	}
	return a.Markers()
}
