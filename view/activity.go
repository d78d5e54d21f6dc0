package view

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"chat-analyzer/model"
)

var (
	weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	months   = []string{
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	}
)

const heatLevels = 5

// ActivityChart shows messages per weekday and per month in calendar order.
type ActivityChart struct {
	Days         []Bar
	Months       []Bar
	BusiestDay   string
	BusiestMonth string
}

func NewActivityChart(a model.ActivityMap) ActivityChart {
	chart := ActivityChart{
		Days:   calendarBars(a.BusyDay, weekdays, "#6366f1"),
		Months: calendarBars(a.BusyMonth, months, "#ec4899"),
	}
	chart.BusiestDay = busiest(chart.Days)
	chart.BusiestMonth = busiest(chart.Months)
	return chart
}

// calendarBars orders known names by calendar and appends unknown keys sorted.
func calendarBars(counts map[string]int64, order []string, color string) []Bar {
	keys := calendarOrder(keysOf(counts), order)

	var max int64
	for _, k := range keys {
		if counts[k] > max {
			max = counts[k]
		}
	}
	bars := make([]Bar, 0, len(keys))
	for _, k := range keys {
		v := counts[k]
		bars = append(bars, Bar{Label: k, Value: v, Count: FormatCount(v), Height: relative(v, max), Color: color})
	}
	return bars
}

func busiest(bars []Bar) string {
	var best Bar
	for _, b := range bars {
		if b.Value > best.Value {
			best = b
		}
	}
	return best.Label
}

// Heatmap is the weekday x hour-period grid.
type Heatmap struct {
	Periods []string
	Rows    []HeatRow
	Max     float64
}

type HeatRow struct {
	Day   string
	Cells []HeatCell
}

// HeatCell carries Level 0 (empty) to 5 (busiest).
type HeatCell struct {
	Period string
	Value  float64
	Count  string
	Level  int
}

// NewHeatmap accepts both day->period and period->day shapes.
func NewHeatmap(h model.ActivityHeatmap) Heatmap {
	grid := map[string]map[string]float64(h)
	if isTransposed(grid) {
		grid = transpose(grid)
	}

	periodSet := map[string]bool{}
	var max float64
	for _, cols := range grid {
		for p, v := range cols {
			periodSet[p] = true
			if v > max {
				max = v
			}
		}
	}
	periods := make([]string, 0, len(periodSet))
	for p := range periodSet {
		periods = append(periods, p)
	}
	sortPeriods(periods)

	dayKeys := make([]string, 0, len(grid))
	for d := range grid {
		dayKeys = append(dayKeys, d)
	}

	hm := Heatmap{Periods: periods, Max: max}
	for _, day := range calendarOrder(dayKeys, weekdays) {
		row := HeatRow{Day: day}
		for _, p := range periods {
			v := grid[day][p]
			row.Cells = append(row.Cells, HeatCell{
				Period: p,
				Value:  v,
				Count:  FormatCount(int64(math.Round(v))),
				Level:  HeatLevel(v, max),
			})
		}
		hm.Rows = append(hm.Rows, row)
	}
	return hm
}

// HeatLevel buckets v relative to max into 0..5; zero stays empty.
func HeatLevel(v, max float64) int {
	if v <= 0 || max <= 0 {
		return 0
	}
	level := int(math.Ceil(v / max * heatLevels))
	if level > heatLevels {
		level = heatLevels
	}
	return level
}

// isTransposed reports whether weekday names appear as inner keys rather than outer ones.
func isTransposed(grid map[string]map[string]float64) bool {
	outer, inner := 0, 0
	for k, cols := range grid {
		if isWeekday(k) {
			outer++
		}
		for c := range cols {
			if isWeekday(c) {
				inner++
			}
		}
	}
	return outer == 0 && inner > 0
}

func transpose(grid map[string]map[string]float64) map[string]map[string]float64 {
	out := map[string]map[string]float64{}
	for row, cols := range grid {
		for col, v := range cols {
			if out[col] == nil {
				out[col] = map[string]float64{}
			}
			out[col][row] = v
		}
	}
	return out
}

func isWeekday(s string) bool {
	for _, d := range weekdays {
		if strings.EqualFold(d, s) {
			return true
		}
	}
	return false
}

// sortPeriods orders "0-1", "1-2" ... "23-0" by their starting hour.
func sortPeriods(periods []string) {
	sort.Slice(periods, func(i, j int) bool {
		hi, okI := leadingInt(periods[i])
		hj, okJ := leadingInt(periods[j])
		if okI && okJ && hi != hj {
			return hi < hj
		}
		if okI != okJ {
			return okI
		}
		return periods[i] < periods[j]
	})
}

func leadingInt(s string) (int, bool) {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	return n, err == nil
}

func calendarOrder(keys []string, order []string) []string {
	rank := make(map[string]int, len(order))
	for i, name := range order {
		rank[strings.ToLower(name)] = i
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, okI := rank[strings.ToLower(keys[i])]
		rj, okJ := rank[strings.ToLower(keys[j])]
		switch {
		case okI && okJ:
			return ri < rj
		case okI != okJ:
			return okI
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

func keysOf(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
