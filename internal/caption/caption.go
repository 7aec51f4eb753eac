// Package caption turns a conditions record into channel-specific caption text.
package caption

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pfrederiksen/ski-report/internal/conditions"
)

const (
	DefaultTitle = "Beaver Creek Grooming Report"

	// Per-channel limits.
	TwitterMaxLength  = 280
	TelegramMaxLength = 1024
	SMSMaxPoints      = 3

	cellSeparator = " | "
	absentCell    = "-"
	ellipsis      = "..."
)

// Variant describes how one channel wants its caption rendered.
type Variant struct {
	// Trailer is appended after a blank line, e.g. hashtags.
	Trailer string
	// MaxPoints limits the hourly block; 0 shows the whole series.
	MaxPoints int
	// MaxLength truncates the caption to this many characters; 0 disables.
	MaxLength int
}

// Composer renders captions with a fixed title prefix.
type Composer struct {
	title string
}

// New creates a Composer. An empty title uses DefaultTitle.
func New(title string) Composer {
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}
	return Composer{title: title}
}

// Compose renders rec with the default title and an optional trailer.
func Compose(rec conditions.Record, displayDate, trailer string) string {
	return New("").Compose(rec, displayDate, Variant{Trailer: trailer})
}

// Compose renders rec for one channel. The output depends only on its
// arguments.
func (c Composer) Compose(rec conditions.Record, displayDate string, v Variant) string {
	lines := []string{fmt.Sprintf("%s - %s", c.title, displayDate)}

	if line := snowLine(rec.Snow); line != "" {
		lines = append(lines, line)
	}
	lines = append(lines, currentLines(rec.Current)...)
	lines = append(lines, hourlyLines(rec.Hourly.Limit(v.MaxPoints))...)

	body := strings.Join(lines, "\n")

	trailer := ""
	if t := strings.TrimSpace(v.Trailer); t != "" {
		trailer = "\n\n" + t
	}

	if v.MaxLength > 0 && utf8.RuneCountInString(body+trailer) > v.MaxLength {
		budget := v.MaxLength - utf8.RuneCountInString(trailer)
		if budget <= utf8.RuneCountInString(ellipsis) {
			return truncate(body+trailer, v.MaxLength)
		}
		body = truncate(body, budget)
	}

	return body + trailer
}

func snowLine(s conditions.SnowSummary) string {
	var parts []string
	if s.Last24hInches != nil {
		parts = append(parts, fmt.Sprintf(`Last 24hrs: %d"`, *s.Last24hInches))
	}
	if s.Next5DayInches != nil {
		parts = append(parts, fmt.Sprintf(`Next 5 days: %d"`, *s.Next5DayInches))
	}
	if len(parts) == 0 {
		return ""
	}
	return "Snow: " + strings.Join(parts, cellSeparator)
}

func currentLines(c conditions.CurrentConditions) []string {
	var lines []string

	if c.TempF != nil {
		temp := fmt.Sprintf("%d°F", *c.TempF)
		if c.FeelsLikeF != nil {
			temp += fmt.Sprintf(" (feels %d°F)", *c.FeelsLikeF)
		}
		lines = append(lines, "Temp: "+temp)
	}

	if c.Sky != nil {
		lines = append(lines, "Sky: "+*c.Sky)
	}

	if c.WindMPH != nil {
		wind := fmt.Sprintf("%dmph", *c.WindMPH)
		if c.WindDir != nil {
			wind = *c.WindDir + wind
		}
		if c.GustMPH != nil {
			wind += fmt.Sprintf(", gusts %dmph", *c.GustMPH)
		}
		lines = append(lines, "Wind: "+wind)
	}

	return lines
}

// hourlyLines renders one line per field across the series. A field with no
// entries at any position is left out; absent cells show as "-".
func hourlyLines(series conditions.HourlySeries) []string {
	if len(series) == 0 {
		return nil
	}

	fields := []struct {
		label string
		cell  func(conditions.HourlyPoint) (string, bool)
	}{
		{"Time", func(p conditions.HourlyPoint) (string, bool) {
			return p.TimeLabel, p.TimeLabel != ""
		}},
		{"Temp", func(p conditions.HourlyPoint) (string, bool) {
			return degrees(p.TempF)
		}},
		{"Feels", func(p conditions.HourlyPoint) (string, bool) {
			return degrees(p.FeelsLikeF)
		}},
		{"Wind", func(p conditions.HourlyPoint) (string, bool) {
			if p.Wind == nil {
				return "", false
			}
			return *p.Wind, true
		}},
		{"Cloud", func(p conditions.HourlyPoint) (string, bool) {
			if p.CloudPercent == nil {
				return "", false
			}
			return fmt.Sprintf("%d%%", *p.CloudPercent), true
		}},
	}

	lines := []string{"Hourly:"}
	for _, f := range fields {
		cells := make([]string, len(series))
		populated := false
		for i, p := range series {
			cell, ok := f.cell(p)
			if !ok {
				cell = absentCell
			} else {
				populated = true
			}
			cells[i] = cell
		}
		if populated {
			lines = append(lines, f.label+": "+strings.Join(cells, cellSeparator))
		}
	}
	return lines
}

func degrees(v *int) (string, bool) {
	if v == nil {
		return "", false
	}
	return fmt.Sprintf("%d°", *v), true
}

// truncate cuts s to limit characters, ending with an ellipsis.
func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	keep := limit - utf8.RuneCountInString(ellipsis)
	if keep < 0 {
		return string(r[:limit])
	}
	return strings.TrimRight(string(r[:keep]), " \n") + ellipsis
}
