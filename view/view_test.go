package view

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chat-analyzer/analyzer"
	"chat-analyzer/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCount(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{120, "120"},
		{999, "999"},
		{1000, "1,000"},
		{1234, "1,234"},
		{1234567, "1,234,567"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCount(tt.in))
		})
	}
}

func TestStatCards(t *testing.T) {
	cards := StatCards(model.ChatStats{NumMessages: 120, NumWords: 4321, NumMedia: 3, NumLinks: 0})
	require.Len(t, cards, 4)
	assert.Equal(t, StatCard{Label: "Total Messages", Value: "120", Icon: "💬"}, cards[0])
	assert.Equal(t, "4,321", cards[1].Value)
	assert.Equal(t, "Links Shared", cards[3].Label)
}

func TestExtraStatCards(t *testing.T) {
	cards := ExtraStatCards(model.ExtraStats{DeletedMessages: 2, AvgMsgLength: 23.456, MaxMsgLength: 1500})
	require.Len(t, cards, 6)
	assert.Equal(t, "Deleted Messages", cards[0].Label)
	assert.Equal(t, "23.46", cards[2].Value)
	assert.Equal(t, "1,500", cards[3].Value)
}

func TestBusiestUsersChart(t *testing.T) {
	top := map[string]int64{}
	for i, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		top[name] = int64(100 - i)
	}
	top["tie"] = 100

	chart := NewBusiestUsersChart(model.BusiestUsers{
		TopUsers:    top,
		Percentages: []model.UserPercentage{{Name: "a", Percent: 12.345}},
	})

	require.Len(t, chart.Bars, 10)
	assert.Equal(t, "a", chart.Bars[0].Label, "ties break by name")
	assert.Equal(t, "tie", chart.Bars[1].Label)
	assert.Equal(t, 100.0, chart.Bars[0].Height)
	assert.Equal(t, "#6366f1", chart.Bars[0].Color)
	assert.Equal(t, "#6366f1", chart.Bars[7].Color, "palette wraps")
	assert.Equal(t, []Share{{Name: "a", Percent: "12.35%"}}, chart.Shares)
}

func TestEmojiChart(t *testing.T) {
	emojis := []model.Emoji{}
	for i, e := range []string{"😂", "❤️", "👍", "🙏", "😭", "🔥", "🎉", "😅", "😊", "🤣", "😍"} {
		emojis = append(emojis, model.Emoji{Emoji: e, Count: int64(20 - i)})
	}

	chart := NewEmojiChart(emojis)
	require.Len(t, chart.Slices, 5)
	require.Len(t, chart.More, 5)
	assert.Equal(t, "🔥", chart.More[0].Emoji)

	var sum float64
	for _, s := range chart.Slices {
		sum += s.Percent
	}
	assert.InDelta(t, 100, sum, 0.001)
	assert.Contains(t, string(chart.Gradient), "conic-gradient(#6366f1 0.00%")

	empty := NewEmojiChart(nil)
	assert.Empty(t, empty.Slices)
	assert.Empty(t, empty.More)
}

func TestSentimentChart(t *testing.T) {
	chart := NewSentimentChart(model.Sentiment{
		Counts: map[string]int64{"Positive": 5, "Neutral": 3, "Negative": 2},
		Samples: []model.SentimentSample{
			{User: "Alice", Message: "great", Sentiment: "Positive", Score: 0.8765},
			{User: "Bob", Message: "meh", Sentiment: "Neutral", Score: 0},
			{User: "Bob", Message: "bad", Sentiment: "Negative", Score: -0.5},
			{User: "Bob", Message: "4", Sentiment: "Neutral"},
			{User: "Bob", Message: "5", Sentiment: "Neutral"},
			{User: "Bob", Message: "6", Sentiment: "Neutral"},
		},
	})

	require.Len(t, chart.Segments, 3)
	var sum int64
	for _, s := range chart.Segments {
		sum += s.Count
	}
	assert.Equal(t, int64(10), sum)
	assert.Equal(t, int64(10), chart.Total)
	assert.Equal(t, "Positive", chart.Segments[0].Label)
	assert.Equal(t, "#22c55e", chart.Segments[0].Color)
	assert.Equal(t, "50.00%", chart.Segments[0].Share)

	require.Len(t, chart.Samples, 5)
	assert.Equal(t, "0.88", chart.Samples[0].Score)
	assert.Equal(t, "-0.50", chart.Samples[2].Score)
	assert.Equal(t, "#ef4444", chart.Samples[2].Color)
}

func TestSentimentChart_Empty(t *testing.T) {
	chart := NewSentimentChart(model.Sentiment{})
	assert.Zero(t, chart.Total)
	assert.Equal(t, "#e5e7eb", string(chart.Gradient))
}

func TestHeatLevel(t *testing.T) {
	tests := []struct {
		v, max float64
		want   int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{2, 10, 1},
		{2.1, 10, 2},
		{10, 10, 5},
		{12, 10, 5},
		{3, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HeatLevel(tt.v, tt.max), "v=%v max=%v", tt.v, tt.max)
	}
}

func TestHeatmap(t *testing.T) {
	dayMajor := model.ActivityHeatmap{
		"Sunday": {"10-11": 4, "9-10": 0},
		"Monday": {"10-11": 2, "9-10": 8, "23-00": 1},
	}
	periodMajor := model.ActivityHeatmap{
		"10-11": {"Sunday": 4, "Monday": 2},
		"9-10":  {"Sunday": 0, "Monday": 8},
		"23-00": {"Monday": 1},
	}

	for name, input := range map[string]model.ActivityHeatmap{"day major": dayMajor, "period major": periodMajor} {
		t.Run(name, func(t *testing.T) {
			hm := NewHeatmap(input)
			assert.Equal(t, []string{"9-10", "10-11", "23-00"}, hm.Periods)
			require.Len(t, hm.Rows, 2)
			assert.Equal(t, "Monday", hm.Rows[0].Day)
			assert.Equal(t, "Sunday", hm.Rows[1].Day)
			assert.Equal(t, 5, hm.Rows[0].Cells[0].Level)
			assert.Equal(t, 0, hm.Rows[1].Cells[0].Level)
			assert.Equal(t, 0, hm.Rows[1].Cells[2].Level, "missing cell renders empty")
		})
	}
}

func TestActivityChart(t *testing.T) {
	chart := NewActivityChart(model.ActivityMap{
		BusyDay:   map[string]int64{"Friday": 3, "Monday": 9, "Sunday": 1},
		BusyMonth: map[string]int64{"December": 4, "March": 2, "Smarch": 1},
	})

	var days, months []string
	for _, b := range chart.Days {
		days = append(days, b.Label)
	}
	for _, b := range chart.Months {
		months = append(months, b.Label)
	}
	assert.Equal(t, []string{"Monday", "Friday", "Sunday"}, days)
	assert.Equal(t, []string{"March", "December", "Smarch"}, months)
	assert.Equal(t, "Monday", chart.BusiestDay)
	assert.Equal(t, "December", chart.BusiestMonth)
}

func TestTimelines(t *testing.T) {
	bars := NewTimeline([]model.TimelinePoint{{Time: "January-2023", Message: 5}, {Time: "February-2023", Message: 10}})
	require.Len(t, bars, 2)
	assert.Equal(t, 50.0, bars[0].Height)

	daily := NewDailyTimeline([]model.DailyPoint{{DayName: "Monday", Count: 4}, {Date: "2023-01-02", Message: 2}})
	assert.Equal(t, "Monday", daily[0].Label)
	assert.Equal(t, int64(2), daily[1].Value)
	assert.Equal(t, 50.0, daily[1].Height)
}

func TestUserTable(t *testing.T) {
	assert.False(t, NewUserTable(nil).Visible)

	table := NewUserTable([]model.UserDetailedStat{{User: "Alice", Messages: 1200, Words: 5}})
	assert.True(t, table.Visible)
	assert.Equal(t, "1,200", table.Rows[0].Messages)
}

func TestWordCloud(t *testing.T) {
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", string(WordCloud("iVBORw0KGgo=")))
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", string(WordCloud("data:image/png;base64,iVBORw0KGgo=")))
	assert.Empty(t, WordCloud(""))
	assert.Empty(t, WordCloud("javascript:alert(1)"))
	assert.Empty(t, WordCloud("data:text/html;base64,PHNjcmlwdD4="))
}

func sampleSnapshot() analyzer.Snapshot {
	return analyzer.Snapshot{
		State: analyzer.Results,
		Results: &model.AnalysisResults{
			Stats:        model.ChatStats{NumMessages: 120},
			BusiestUsers: model.BusiestUsers{TopUsers: map[string]int64{"Alice": 70, "Bob": 50}},
			Sentiment:    model.Sentiment{Counts: map[string]int64{"Positive": 5, "Neutral": 3, "Negative": 2}},
			WordCloud:    "iVBORw0KGgo=",
		},
		FileName:     "chat.txt",
		FileSize:     2048,
		SelectedUser: model.OverallUser,
		Users:        []string{model.OverallUser, "Alice", "Bob"},
	}
}

func TestNewDashboard(t *testing.T) {
	d := NewDashboard(sampleSnapshot())
	assert.True(t, d.HasResults)
	assert.True(t, d.IsOverall)
	assert.Equal(t, "results", d.State)
	assert.Equal(t, "2.0 kB", d.FileSize)
	assert.Equal(t, "120", d.Stats[0].Value)
	assert.False(t, d.UserTable.Visible)

	empty := NewDashboard(analyzer.Snapshot{SelectedUser: model.OverallUser})
	assert.False(t, empty.HasResults)
	assert.Empty(t, empty.FileSize)
}

func TestRenderer(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	t.Run("analyzer page", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.Render(rec, http.StatusOK, PageAnalyzer, AnalyzerPage{Dashboard: NewDashboard(sampleSnapshot()), MaxUploadMB: 20, Extension: ".txt"})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		body := rec.Body.String()
		assert.Contains(t, body, "Total Messages")
		assert.Contains(t, body, `<option value="Overall" selected>`)
		assert.Contains(t, body, "data:image/png;base64,iVBORw0KGgo=")
	})

	t.Run("login error escaped", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.Render(rec, http.StatusUnauthorized, PageLogin, LoginPage{Error: "<b>nope</b>"})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "&lt;b&gt;nope&lt;/b&gt;")
	})

	t.Run("unknown page", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.Render(rec, http.StatusOK, "missing.html", nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.False(t, strings.Contains(rec.Body.String(), "<html"))
	})
}
