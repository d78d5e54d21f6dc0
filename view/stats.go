// Package view turns analysis results into template-ready view models and
// renders the dashboard pages.
package view

import (
	"fmt"

	"chat-analyzer/model"

	"github.com/dustin/go-humanize"
)

// StatCard is one labelled figure.
type StatCard struct {
	Label string
	Value string
	Icon  string
}

// FormatCount groups thousands ("1,234") and leaves smaller values as-is.
func FormatCount(n int64) string {
	return humanize.Comma(n)
}

func formatDecimal(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// StatCards are the four headline counters.
func StatCards(s model.ChatStats) []StatCard {
	return []StatCard{
		{Label: "Total Messages", Value: FormatCount(s.NumMessages), Icon: "💬"},
		{Label: "Total Words", Value: FormatCount(s.NumWords), Icon: "📝"},
		{Label: "Media Shared", Value: FormatCount(s.NumMedia), Icon: "🖼"},
		{Label: "Links Shared", Value: FormatCount(s.NumLinks), Icon: "🔗"},
	}
}

func ExtraStatCards(x model.ExtraStats) []StatCard {
	return []StatCard{
		{Label: "Deleted Messages", Value: FormatCount(x.DeletedMessages)},
		{Label: "Empty/Blank", Value: FormatCount(x.EmptyMessages)},
		{Label: "Avg Msg Length (Chars)", Value: formatDecimal(x.AvgMsgLength)},
		{Label: "Max Msg Length (Chars)", Value: FormatCount(x.MaxMsgLength)},
		{Label: "Avg Word Count", Value: formatDecimal(x.AvgWordCount)},
		{Label: "Max Word Count", Value: FormatCount(x.MaxWordCount)},
	}
}

// UserTable is the per-user rollup, hidden when the backend sent no rows.
type UserTable struct {
	Visible bool
	Rows    []UserRow
}

type UserRow struct {
	User     string
	Messages string
	Words    string
	Emojis   string
	Media    string
}

func NewUserTable(stats []model.UserDetailedStat) UserTable {
	t := UserTable{Visible: len(stats) > 0}
	for _, s := range stats {
		t.Rows = append(t.Rows, UserRow{
			User:     s.User,
			Messages: FormatCount(s.Messages),
			Words:    FormatCount(s.Words),
			Emojis:   FormatCount(s.Emojis),
			Media:    FormatCount(s.Media),
		})
	}
	return t
}
