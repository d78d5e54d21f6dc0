package view

import (
	"fmt"
	"html/template"
	"sort"
	"strings"

	"chat-analyzer/model"
)

var (
	busiestPalette   = []string{"#6366f1", "#8b5cf6", "#a855f7", "#d946ef", "#ec4899", "#f472b6", "#fb7185"}
	emojiPalette     = []string{"#6366f1", "#ec4899", "#f43f5e", "#f59e0b", "#10b981"}
	sentimentPalette = map[string]string{
		model.SentimentPositive: "#22c55e",
		model.SentimentNeutral:  "#94a3b8",
		model.SentimentNegative: "#ef4444",
	}
)

const (
	maxBusiestUsers  = 10
	maxEmojiSlices   = 5
	maxEmojiList     = 10
	maxSentimentRows = 5
)

// Bar is one bar of a bar chart. Height is relative to the tallest bar (0-100).
type Bar struct {
	Label  string
	Value  int64
	Count  string
	Height float64
	Color  string
}

// Slice is one wedge of a pie chart, in percent of the total.
type Slice struct {
	Label   string
	Count   int64
	Percent float64
	Share   string
	Color   string
}

// BusiestUsersChart ranks participants by message count.
type BusiestUsersChart struct {
	Bars   []Bar
	Shares []Share
}

type Share struct {
	Name    string
	Percent string
}

func NewBusiestUsersChart(b model.BusiestUsers) BusiestUsersChart {
	type entry struct {
		name  string
		count int64
	}
	entries := make([]entry, 0, len(b.TopUsers))
	for name, count := range b.TopUsers {
		entries = append(entries, entry{name, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})
	if len(entries) > maxBusiestUsers {
		entries = entries[:maxBusiestUsers]
	}

	var chart BusiestUsersChart
	var max int64
	if len(entries) > 0 {
		max = entries[0].count
	}
	for i, e := range entries {
		chart.Bars = append(chart.Bars, Bar{
			Label:  e.name,
			Value:  e.count,
			Count:  FormatCount(e.count),
			Height: relative(e.count, max),
			Color:  busiestPalette[i%len(busiestPalette)],
		})
	}
	for _, p := range b.Percentages {
		chart.Shares = append(chart.Shares, Share{Name: p.Name, Percent: formatPercent(p.Percent)})
	}
	return chart
}

// EmojiChart is a pie of the five most used emojis plus a list of the next five.
type EmojiChart struct {
	Slices   []Slice
	More     []model.Emoji
	Gradient template.CSS
}

func NewEmojiChart(emojis []model.Emoji) EmojiChart {
	var chart EmojiChart

	top := emojis
	if len(top) > maxEmojiSlices {
		top = top[:maxEmojiSlices]
	}
	var total int64
	for _, e := range top {
		total += e.Count
	}
	for i, e := range top {
		p := percentOf(e.Count, total)
		chart.Slices = append(chart.Slices, Slice{
			Label:   e.Emoji,
			Count:   e.Count,
			Percent: p,
			Share:   formatPercent(p),
			Color:   emojiPalette[i%len(emojiPalette)],
		})
	}
	chart.Gradient = conicGradient(chart.Slices)

	if len(emojis) > maxEmojiSlices {
		end := len(emojis)
		if end > maxEmojiList {
			end = maxEmojiList
		}
		chart.More = emojis[maxEmojiSlices:end]
	}
	return chart
}

// SentimentChart is the label distribution in vocabulary order with sample messages.
type SentimentChart struct {
	Segments []Slice
	Total    int64
	Gradient template.CSS
	Samples  []SentimentRow
}

type SentimentRow struct {
	User      string
	Message   string
	Sentiment string
	Score     string
	Color     string
}

func NewSentimentChart(s model.Sentiment) SentimentChart {
	var chart SentimentChart
	for _, label := range model.SentimentLabels {
		chart.Total += s.Counts[label]
	}
	for _, label := range model.SentimentLabels {
		count := s.Counts[label]
		p := percentOf(count, chart.Total)
		chart.Segments = append(chart.Segments, Slice{
			Label:   label,
			Count:   count,
			Percent: p,
			Share:   formatPercent(p),
			Color:   sentimentPalette[label],
		})
	}
	chart.Gradient = conicGradient(chart.Segments)

	samples := s.Samples
	if len(samples) > maxSentimentRows {
		samples = samples[:maxSentimentRows]
	}
	for _, smp := range samples {
		chart.Samples = append(chart.Samples, SentimentRow{
			User:      smp.User,
			Message:   smp.Message,
			Sentiment: smp.Sentiment,
			Score:     fmt.Sprintf("%.2f", smp.Score),
			Color:     sentimentPalette[smp.Sentiment],
		})
	}
	return chart
}

// NewTimeline charts the monthly message series in payload order.
func NewTimeline(points []model.TimelinePoint) []Bar {
	var max int64
	for _, p := range points {
		if p.Message > max {
			max = p.Message
		}
	}
	bars := make([]Bar, 0, len(points))
	for _, p := range points {
		bars = append(bars, Bar{Label: p.Time, Value: p.Message, Count: FormatCount(p.Message), Height: relative(p.Message, max)})
	}
	return bars
}

// NewDailyTimeline charts the daily series, whichever shape the backend sent.
func NewDailyTimeline(points []model.DailyPoint) []Bar {
	var max int64
	for _, p := range points {
		if v := p.Value(); v > max {
			max = v
		}
	}
	bars := make([]Bar, 0, len(points))
	for _, p := range points {
		v := p.Value()
		bars = append(bars, Bar{Label: p.Label(), Value: v, Count: FormatCount(v), Height: relative(v, max)})
	}
	return bars
}

// WordCloud returns the image as a data URI safe for an <img src>.
// Anything that is not a PNG/JPEG data URI or bare base64 is dropped.
func WordCloud(raw string) template.URL {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "data:") {
		for _, prefix := range []string{"data:image/png;base64,", "data:image/jpeg;base64,"} {
			if strings.HasPrefix(raw, prefix) && isBase64(raw[len(prefix):]) {
				return template.URL(raw)
			}
		}
		return ""
	}
	if !isBase64(raw) {
		return ""
	}
	return template.URL("data:image/png;base64," + raw)
}

func isBase64(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case r == '+', r == '/', r == '=':
		default:
			return false
		}
	}
	return true
}

func relative(v, max int64) float64 {
	if max <= 0 {
		return 0
	}
	return float64(v) / float64(max) * 100
}

func percentOf(v, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(v) / float64(total) * 100
}

// conicGradient builds the CSS background for a pie from its slices.
func conicGradient(slices []Slice) template.CSS {
	var parts []string
	start := 0.0
	for _, s := range slices {
		if s.Percent <= 0 {
			continue
		}
		end := start + s.Percent
		parts = append(parts, fmt.Sprintf("%s %.2f%% %.2f%%", s.Color, start, end))
		start = end
	}
	if len(parts) == 0 {
		return "#e5e7eb"
	}
	return template.CSS("conic-gradient(" + strings.Join(parts, ", ") + ")")
}
