// Package neo aggregates a near-earth-object feed into chart-ready
// summaries and manages the feed's date window.
package neo

import (
	"reflect"
	"sort"
	"sync"

	"github.com/Sternrassler/nasa-explorer-client/pkg/nasa"
)

// Size category labels in ascending threshold order.
const (
	SizeSmall     = "Small (<50m)"
	SizeMedium    = "Medium (50-200m)"
	SizeLarge     = "Large (200-1000m)"
	SizeVeryLarge = "Very Large (>1000m)"
)

// Hazard slice labels and chart colours.
const (
	HazardSafe      = "Safe"
	HazardDangerous = "Potentially Hazardous"

	ColorSafe      = "#4ade80"
	ColorDangerous = "#ef4444"
)

var sizeThresholds = []struct {
	below float64
	name  string
}{
	{50, SizeSmall},
	{200, SizeMedium},
	{1000, SizeLarge},
}

// DailyCount is the number of objects approaching on one date.
type DailyCount struct {
	Date      string `json:"date"`
	Count     int    `json:"count"`
	Hazardous int    `json:"hazardous"`
}

// HazardSlice is one slice of the hazard split chart.
type HazardSlice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// SizeBucket counts objects of one size category.
type SizeBucket struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Summary is the aggregated view of a feed.
type Summary struct {
	Daily          []DailyCount  `json:"daily"`
	Hazard         []HazardSlice `json:"hazard"`
	Sizes          []SizeBucket  `json:"sizes"`
	Total          int           `json:"total"`
	HazardousCount int           `json:"hazardous_count"`
}

// MeanDiameter returns the midpoint of the estimated diameter in meters.
// Missing bounds count as 0.
func MeanDiameter(obj nasa.NEOObject) float64 {
	if obj.EstimatedDiameter == nil || obj.EstimatedDiameter.Meters == nil {
		return 0
	}
	m := obj.EstimatedDiameter.Meters
	return (m.Min + m.Max) / 2
}

// SizeCategory returns the first category whose upper bound exceeds d.
func SizeCategory(d float64) string {
	for _, t := range sizeThresholds {
		if d < t.below {
			return t.name
		}
	}
	return SizeVeryLarge
}

// Summarize aggregates feed. Daily counts are ordered by date and size
// buckets by ascending threshold; empty buckets are omitted.
func Summarize(feed map[string][]nasa.NEOObject) Summary {
	dates := sortedDates(feed)

	s := Summary{
		Daily: make([]DailyCount, 0, len(dates)),
	}

	sizes := make(map[string]int)
	for _, date := range dates {
		objects := feed[date]
		day := DailyCount{Date: date, Count: len(objects)}

		for _, obj := range objects {
			s.Total++
			if obj.PotentiallyHazardous {
				day.Hazardous++
				s.HazardousCount++
			}
			sizes[SizeCategory(MeanDiameter(obj))]++
		}

		s.Daily = append(s.Daily, day)
	}

	s.Hazard = []HazardSlice{
		{Name: HazardSafe, Value: s.Total - s.HazardousCount, Color: ColorSafe},
		{Name: HazardDangerous, Value: s.HazardousCount, Color: ColorDangerous},
	}

	s.Sizes = make([]SizeBucket, 0, len(sizes))
	for _, name := range []string{SizeSmall, SizeMedium, SizeLarge, SizeVeryLarge} {
		if n := sizes[name]; n > 0 {
			s.Sizes = append(s.Sizes, SizeBucket{Category: name, Count: n})
		}
	}

	return s
}

// AllAsteroids flattens feed in date order.
func AllAsteroids(feed map[string][]nasa.NEOObject) []nasa.NEOObject {
	var all []nasa.NEOObject
	for _, date := range sortedDates(feed) {
		all = append(all, feed[date]...)
	}
	return all
}

func sortedDates(feed map[string][]nasa.NEOObject) []string {
	dates := make([]string, 0, len(feed))
	for date := range feed {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

// Memo caches the summary of the last feed it saw. The summary is
// recomputed only when a different feed map is passed; mutating a map in
// place after summarizing it is not detected.
type Memo struct {
	mu      sync.Mutex
	last    map[string][]nasa.NEOObject
	summary Summary
	valid   bool
}

// Summarize returns the summary for feed, reusing the previous result when
// feed is the same map.
func (m *Memo) Summarize(feed map[string][]nasa.NEOObject) Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.valid && sameMap(m.last, feed) {
		return m.summary
	}

	m.summary = Summarize(feed)
	m.last = feed
	m.valid = true
	return m.summary
}

func sameMap(a, b map[string][]nasa.NEOObject) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}
