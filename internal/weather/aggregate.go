package weather

import (
	"sort"
	"time"
)

// AggregateDaily folds a list of forecast steps into one DailyPoint per calendar day
// in loc. Min/max come from the step temperatures, precipitation probability is
// the maximum seen during the day and the code is picked by majority. Ties go to the
// more severe condition, then to the higher code.
func AggregateDaily(points []HourlyPoint, loc *time.Location) []DailyPoint {
	if len(points) == 0 {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}

	type bucket struct {
		date   time.Time
		min    float64
		max    float64
		prob   float64
		counts map[int]int
		kind   CodeKind
	}

	buckets := make(map[string]*bucket)
	for _, p := range points {
		t := p.Time.In(loc)
		k := t.Format("2006-01-02")

		b, ok := buckets[k]
		if !ok {
			b = &bucket{
				date:   time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc),
				min:    p.TemperatureC,
				max:    p.TemperatureC,
				counts: make(map[int]int),
				kind:   p.CodeKind,
			}
			buckets[k] = b
		}

		if p.TemperatureC < b.min {
			b.min = p.TemperatureC
		}
		if p.TemperatureC > b.max {
			b.max = p.TemperatureC
		}
		if p.PrecipProbPct > b.prob {
			b.prob = p.PrecipProbPct
		}
		b.counts[p.Code]++
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	daily := make([]DailyPoint, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]

		// Pick majority code.
		bestCode, bestCount := 0, 0
		for code, count := range b.counts {
			if count > bestCount || (count == bestCount && moreSevere(b.kind, code, bestCode)) {
				bestCode = code
				bestCount = count
			}
		}

		daily = append(daily, DailyPoint{
			Date:          b.date,
			MinC:          b.min,
			MaxC:          b.max,
			PrecipProbPct: b.prob,
			Code:          bestCode,
			CodeKind:      b.kind,
		})
	}

	return daily
}

var severity = map[Condition]int{
	ConditionUnknown: 0,
	ConditionClear:   1,
	ConditionCloudy:  2,
	ConditionMist:    3,
	ConditionRain:    4,
	ConditionSnow:    5,
	ConditionStorm:   6,
}

// moreSevere reports whether code a outranks code b for a rider.
func moreSevere(kind CodeKind, a, b int) bool {
	sa, sb := severity[ConditionOf(kind, a)], severity[ConditionOf(kind, b)]
	if sa != sb {
		return sa > sb
	}
	return a > b
}
