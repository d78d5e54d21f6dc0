package view

import (
	"html/template"

	"chat-analyzer/analyzer"
	"chat-analyzer/model"

	"github.com/dustin/go-humanize"
)

// Dashboard is everything the analyzer page renders for one snapshot.
type Dashboard struct {
	State        string
	Loading      bool
	HasResults   bool
	FileName     string
	FileSize     string
	SelectedUser string
	IsOverall    bool
	Users        []string
	Error        string
	Notice       string

	Stats     []StatCard
	Extra     []StatCard
	Busiest   BusiestUsersChart
	Emojis    EmojiChart
	Timeline  []Bar
	Daily     []Bar
	Activity  ActivityChart
	Heatmap   Heatmap
	Sentiment SentimentChart
	UserTable UserTable
	WordCloud template.URL
}

func NewDashboard(s analyzer.Snapshot) Dashboard {
	d := Dashboard{
		State:        s.State.String(),
		Loading:      s.State == analyzer.Loading,
		FileName:     s.FileName,
		SelectedUser: s.SelectedUser,
		IsOverall:    s.SelectedUser == model.OverallUser,
		Users:        s.Users,
		Error:        s.Error,
		Notice:       s.Notice,
	}
	if s.FileName != "" {
		d.FileSize = humanize.Bytes(uint64(s.FileSize))
	}

	r := s.Results
	if r == nil {
		return d
	}
	d.HasResults = true
	d.Stats = StatCards(r.Stats)
	d.Extra = ExtraStatCards(r.ExtraStats)
	d.Busiest = NewBusiestUsersChart(r.BusiestUsers)
	d.Emojis = NewEmojiChart(r.Emojis)
	d.Timeline = NewTimeline(r.Timeline)
	d.Daily = NewDailyTimeline(r.DailyTimeline)
	d.Activity = NewActivityChart(r.ActivityMap)
	d.Heatmap = NewHeatmap(r.ActivityHeatmap)
	d.Sentiment = NewSentimentChart(r.Sentiment)
	d.UserTable = NewUserTable(r.UserDetailedStats)
	d.WordCloud = WordCloud(r.WordCloud)
	return d
}

// LoginPage backs login.html.
type LoginPage struct {
	Error    string
	Username string
}

// RegisterPage backs register.html.
type RegisterPage struct {
	Error    string
	Username string
	Email    string
}

// AnalyzerPage backs analyzer.html.
type AnalyzerPage struct {
	Dashboard
	MaxUploadMB int
	Extension   string
}
