package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// OverallUser is the selected-user sentinel meaning "all participants".
const OverallUser = "Overall"

// Sentiment labels produced by the analysis backend.
const (
	SentimentPositive = "Positive"
	SentimentNeutral  = "Neutral"
	SentimentNegative = "Negative"
)

// SentimentLabels is the fixed vocabulary of sentiment count keys, in display order.
var SentimentLabels = []string{SentimentPositive, SentimentNeutral, SentimentNegative}

var ErrInvalidResults = errors.New("analysis results violate the data contract")

// AnalysisResults is the payload returned by POST /analyze for one (file, selected user) pair.
// Values are treated as immutable once decoded.
type AnalysisResults struct {
	Stats             ChatStats          `json:"stats"`
	BusiestUsers      BusiestUsers       `json:"busiest_users"`
	WordCloud         string             `json:"wordcloud"` // base64 PNG, usually already a data URI
	Emojis            []Emoji            `json:"emojis"`
	Timeline          []TimelinePoint    `json:"timeline"`
	DailyTimeline     []DailyPoint       `json:"daily_timeline"`
	ActivityMap       ActivityMap        `json:"activity_map"`
	ActivityHeatmap   ActivityHeatmap    `json:"activity_heatmap"`
	Sentiment         Sentiment          `json:"sentiment"`
	UserDetailedStats []UserDetailedStat `json:"user_detailed_stats"`
	ExtraStats        ExtraStats         `json:"extra_stats"`
}

// ChatStats holds the headline counters
type ChatStats struct {
	NumMessages int64 `json:"num_messages"`
	NumWords    int64 `json:"num_words"`
	NumMedia    int64 `json:"num_media"`
	NumLinks    int64 `json:"num_links"`
}

// BusiestUsers holds raw message counts and each participant's share of messages.
type BusiestUsers struct {
	TopUsers    map[string]int64 `json:"top_users"`
	Percentages []UserPercentage `json:"percentages"`
}

type UserPercentage struct {
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
	Count   *int64  `json:"count,omitempty"`
}

// Emoji is one entry of the emoji frequency list, most frequent first.
type Emoji struct {
	Emoji string `json:"emoji"`
	Count int64  `json:"count"`
}

// UnmarshalJSON accepts both {"emoji": "😂", "count": 3} and the positional
// {"0": "😂", "1": 3} record shape the backend emits for unnamed columns.
func (e *Emoji) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	emojiRaw, ok := raw["emoji"]
	if !ok {
		emojiRaw = raw["0"]
	}
	countRaw, ok := raw["count"]
	if !ok {
		countRaw = raw["1"]
	}

	if len(emojiRaw) > 0 {
		if err := json.Unmarshal(emojiRaw, &e.Emoji); err != nil {
			return fmt.Errorf("emoji: %w", err)
		}
	}
	if len(countRaw) > 0 {
		count, err := decodeCount(countRaw)
		if err != nil {
			return fmt.Errorf("emoji count: %w", err)
		}
		e.Count = count
	}
	return nil
}

// TimelinePoint is one month of the monthly message timeline.
type TimelinePoint struct {
	Time     string `json:"time"`
	Message  int64  `json:"message"`
	Month    string `json:"month,omitempty"`
	MonthNum int    `json:"month_num,omitempty"`
	Year     int    `json:"year,omitempty"`
}

// DailyPoint is one entry of the daily timeline. The backend sends either
// {date, message} or {day_name, count}.
type DailyPoint struct {
	Date    string `json:"date,omitempty"`
	DayName string `json:"day_name,omitempty"`
	Message int64  `json:"message,omitempty"`
	Count   int64  `json:"count,omitempty"`
}

// Label returns whichever key identifies the point.
func (p DailyPoint) Label() string {
	if p.Date != "" {
		return p.Date
	}
	return p.DayName
}

// Value returns whichever counter the point carries.
func (p DailyPoint) Value() int64 {
	if p.Message != 0 {
		return p.Message
	}
	return p.Count
}

// ActivityMap holds message frequencies per weekday and per month name.
type ActivityMap struct {
	BusyDay   map[string]int64 `json:"busy_day"`
	BusyMonth map[string]int64 `json:"busy_month"`
}

// ActivityHeatmap maps day -> period -> message count. Cells are floats because the
// backend fills gaps with 0.0; some backend versions send the transposed shape.
type ActivityHeatmap map[string]map[string]float64

// Sentiment holds the label distribution and a handful of scored sample messages.
type Sentiment struct {
	Counts  map[string]int64  `json:"counts"`
	Samples []SentimentSample `json:"samples"`
}

type SentimentSample struct {
	User      string  `json:"user"`
	Message   string  `json:"message"`
	Sentiment string  `json:"sentiment"`
	Score     float64 `json:"sentiment_score"`
}

// UserDetailedStat is one row of the per-user rollup (only filled for the Overall view).
type UserDetailedStat struct {
	User     string `json:"User"`
	Messages int64  `json:"Messages"`
	Words    int64  `json:"Words"`
	Emojis   int64  `json:"Emojis"`
	Media    int64  `json:"Media"`
}

type ExtraStats struct {
	DeletedMessages int64   `json:"deleted_messages"`
	EmptyMessages   int64   `json:"empty_messages"`
	AvgMsgLength    float64 `json:"avg_msg_length"`
	MaxMsgLength    int64   `json:"max_msg_length"`
	AvgWordCount    float64 `json:"avg_word_count"`
	MaxWordCount    int64   `json:"max_word_count"`
}

// UserNames returns the distinct participant names from busiest_users.percentages
// in the order the backend sent them.
func (a *AnalysisResults) UserNames() []string {
	seen := make(map[string]bool, len(a.BusiestUsers.Percentages))
	names := make([]string, 0, len(a.BusiestUsers.Percentages))
	for _, p := range a.BusiestUsers.Percentages {
		if seen[p.Name] {
			continue
		}
		seen[p.Name] = true
		names = append(names, p.Name)
	}
	return names
}

// Validate checks the invariants the dashboard relies on: no negative numbers,
// percentages within [0,100] and sentiment keys from the fixed vocabulary.
func (a *AnalysisResults) Validate() error {
	s := a.Stats
	if s.NumMessages < 0 || s.NumWords < 0 || s.NumMedia < 0 || s.NumLinks < 0 {
		return fmt.Errorf("%w: negative chat stats", ErrInvalidResults)
	}

	for name, count := range a.BusiestUsers.TopUsers {
		if count < 0 {
			return fmt.Errorf("%w: negative message count for %q", ErrInvalidResults, name)
		}
	}
	for _, p := range a.BusiestUsers.Percentages {
		if p.Percent < 0 || p.Percent > 100 {
			return fmt.Errorf("%w: percentage %.2f for %q out of range", ErrInvalidResults, p.Percent, p.Name)
		}
		if p.Count != nil && *p.Count < 0 {
			return fmt.Errorf("%w: negative count for %q", ErrInvalidResults, p.Name)
		}
	}

	for _, e := range a.Emojis {
		if e.Count < 0 {
			return fmt.Errorf("%w: negative emoji count", ErrInvalidResults)
		}
	}
	for _, t := range a.Timeline {
		if t.Message < 0 {
			return fmt.Errorf("%w: negative timeline value at %q", ErrInvalidResults, t.Time)
		}
	}
	for _, d := range a.DailyTimeline {
		if d.Message < 0 || d.Count < 0 {
			return fmt.Errorf("%w: negative daily value at %q", ErrInvalidResults, d.Label())
		}
	}
	for _, m := range []map[string]int64{a.ActivityMap.BusyDay, a.ActivityMap.BusyMonth} {
		for k, v := range m {
			if v < 0 {
				return fmt.Errorf("%w: negative activity for %q", ErrInvalidResults, k)
			}
		}
	}
	for row, cols := range a.ActivityHeatmap {
		for col, v := range cols {
			if v < 0 {
				return fmt.Errorf("%w: negative heatmap cell %s/%s", ErrInvalidResults, row, col)
			}
		}
	}

	for label, count := range a.Sentiment.Counts {
		if !isSentimentLabel(label) {
			return fmt.Errorf("%w: unknown sentiment label %q", ErrInvalidResults, label)
		}
		if count < 0 {
			return fmt.Errorf("%w: negative sentiment count for %q", ErrInvalidResults, label)
		}
	}

	for _, u := range a.UserDetailedStats {
		if u.Messages < 0 || u.Words < 0 || u.Emojis < 0 || u.Media < 0 {
			return fmt.Errorf("%w: negative rollup for %q", ErrInvalidResults, u.User)
		}
	}

	x := a.ExtraStats
	if x.DeletedMessages < 0 || x.EmptyMessages < 0 || x.AvgMsgLength < 0 ||
		x.MaxMsgLength < 0 || x.AvgWordCount < 0 || x.MaxWordCount < 0 {
		return fmt.Errorf("%w: negative extra stats", ErrInvalidResults)
	}

	return nil
}

func isSentimentLabel(label string) bool {
	for _, l := range SentimentLabels {
		if l == label {
			return true
		}
	}
	return false
}

// decodeCount reads an integer that may have been serialised as a float (3.0).
func decodeCount(raw json.RawMessage) (int64, error) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, err
	}
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}
