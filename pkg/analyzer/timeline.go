package analyzer

import (
	"fmt"
	"sort"
	"time"

	"github.com/ccollicutt/chatlens/pkg/parser"
)

// weekdayOrder is the fixed row order for weekday aggregates.
var weekdayOrder = [7]time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}

// weekdayRow maps a weekday to its row in weekdayOrder.
func weekdayRow(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// MonthlyTimeline returns one point per calendar month with messages,
// in chronological order.
func MonthlyTimeline(participant string, records []parser.Record) []TimelinePoint {
	type key struct{ year, month int }
	counts := make(map[key]*TimelinePoint)
	for _, r := range selectRecords(participant, records) {
		k := key{r.Year, r.MonthNum}
		p, ok := counts[k]
		if !ok {
			p = &TimelinePoint{
				Year:     r.Year,
				MonthNum: r.MonthNum,
				Month:    r.Month,
				Label:    fmt.Sprintf("%s-%d", r.Month, r.Year),
			}
			counts[k] = p
		}
		p.Count++
	}

	points := make([]TimelinePoint, 0, len(counts))
	for _, p := range counts {
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Year != points[j].Year {
			return points[i].Year < points[j].Year
		}
		return points[i].MonthNum < points[j].MonthNum
	})
	return points
}

// WeekdayActivity returns message counts for Monday through Sunday. All
// seven rows are present even when zero.
func WeekdayActivity(participant string, records []parser.Record) []CategoryCount {
	var counts [7]int
	for _, r := range selectRecords(participant, records) {
		counts[weekdayRow(r.Timestamp.Weekday())]++
	}

	rows := make([]CategoryCount, 7)
	for i, d := range weekdayOrder {
		rows[i] = CategoryCount{Label: d.String(), Count: counts[i]}
	}
	return rows
}

// MonthActivity returns message counts per "Jan 2006" label, busiest
// first. Equal counts keep ascending label order.
func MonthActivity(participant string, records []parser.Record) []CategoryCount {
	counts := make(map[string]int)
	for _, r := range selectRecords(participant, records) {
		counts[r.Timestamp.Format("Jan 2006")]++
	}

	rows := make([]CategoryCount, 0, len(counts))
	for label, n := range counts {
		rows = append(rows, CategoryCount{Label: label, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Label < rows[j].Label })
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Count > rows[j].Count })
	return rows
}

// ActivityHeatmap returns the weekday by hour grid normalized so the
// busiest cell is 1. An empty selection yields an all-zero grid.
func ActivityHeatmap(participant string, records []parser.Record) Heatmap {
	var h Heatmap
	for i, d := range weekdayOrder {
		h.Weekdays[i] = d.String()
	}

	for _, r := range selectRecords(participant, records) {
		h.Cells[weekdayRow(r.Timestamp.Weekday())][r.Hour]++
	}

	var peak float64
	for _, row := range h.Cells {
		for _, v := range row {
			if v > peak {
				peak = v
			}
		}
	}
	if peak == 0 {
		return h
	}
	for i := range h.Cells {
		for j := range h.Cells[i] {
			h.Cells[i][j] /= peak
		}
	}
	return h
}
