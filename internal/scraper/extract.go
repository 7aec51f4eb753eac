package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pfrederiksen/ski-report/internal/conditions"
)

// Section headers on the snow report page.
const (
	headerRightNow    = "Right Now"
	headerHourly      = "Hourly"
	headerTemperature = "Temperature"
	headerFeelsLike   = "Feels Like"
	headerWind        = "Wind"
	headerCloudCover  = "Cloud Cover"
	headerPrecip      = "Precip"
)

// currentWindowLimit bounds the "Right Now" block when no Hourly header follows it.
const currentWindowLimit = 400

var (
	last24hPattern  = regexp.MustCompile(`Last 24 Hours\s*(\d+)\s*["”″]`)
	next5DayPattern = regexp.MustCompile(`Next 1-5 Days\s*(\d+)\s*["”″]`)

	timeTokenPattern   = regexp.MustCompile(`(?i)\b(now|(?:1[0-2]|0?[1-9])\s?(?:am|pm))\b`)
	degreeTokenPattern = regexp.MustCompile(`(-?\d+)\s*°`)
	windTokenPattern   = regexp.MustCompile(`\b([NSEW]{1,3})\s*(\d+)\b`)
	cloudTokenPattern  = regexp.MustCompile(`(\d+)\s*%`)

	currentTempPattern    = regexp.MustCompile(`(-?\d+)\s*°\s*F`)
	currentFeelsPattern   = regexp.MustCompile(`(?i)feels\s+like\s*(-?\d+)\s*°\s*F`)
	currentWindPattern    = regexp.MustCompile(`(\d+)\s*mph\s*([NSEW]{1,3})\b`)
	currentWindAltPattern = regexp.MustCompile(`\b([NSEW]{1,3})\s*(\d+)\s*mph`)
	currentGustPattern    = regexp.MustCompile(`(?i)gusts?\s*(?:to\s*)?(\d+)`)
	currentSkyPattern     = regexp.MustCompile(`(?i)\b(partly cloudy|mostly cloudy|partly sunny|mostly sunny|snow showers|light snow|heavy snow|overcast|cloudy|clear|sunny|snow|rain|fog)\b`)
)

// Extract applies the snow and hourly rules to raw and returns the snow
// summary and the aligned hourly series. Text without any recognized pattern
// yields an empty summary and an empty series.
func Extract(raw string) (conditions.SnowSummary, conditions.HourlySeries) {
	return extractSnow(raw), conditions.Align(ExtractHourly(raw))
}

// ExtractRecord runs every rule against raw and builds the run's Record.
func ExtractRecord(raw string, capturedAt time.Time) conditions.Record {
	snow, hourly := Extract(raw)
	return conditions.NewRecord(snow, ExtractCurrent(raw), hourly, capturedAt)
}

func extractSnow(text string) conditions.SnowSummary {
	return conditions.SnowSummary{
		Last24hInches:  firstInt(last24hPattern, text),
		Next5DayInches: firstInt(next5DayPattern, text),
	}
}

// ExtractHourly applies the five hourly sequence rules. Each sequence holds
// at most conditions.MaxHorizon tokens; the sequences are not aligned.
func ExtractHourly(text string) conditions.RawHourly {
	section := text
	if i := strings.Index(text, headerHourly); i >= 0 {
		section = text[i:]
	}

	return conditions.RawHourly{
		Times:     timeTokens(windowBetween(text, headerHourly, headerTemperature)),
		Temps:     intTokens(degreeTokenPattern, windowBetween(section, headerTemperature, headerFeelsLike)),
		FeelsLike: intTokens(degreeTokenPattern, windowBetween(section, headerFeelsLike, headerWind)),
		Wind:      windTokens(windowBetween(section, headerWind, headerCloudCover)),
		Cloud:     intTokens(cloudTokenPattern, windowBetween(section, headerCloudCover, headerPrecip)),
	}
}

// ExtractCurrent applies the "Right Now" rules to the block that follows the
// Right Now header.
func ExtractCurrent(text string) conditions.CurrentConditions {
	window := windowAfter(text, headerRightNow, headerHourly, currentWindowLimit)
	if window == "" {
		return conditions.CurrentConditions{}
	}

	var current conditions.CurrentConditions
	current.FeelsLikeF = firstInt(currentFeelsPattern, window)
	current.TempF = firstInt(currentTempPattern, currentFeelsPattern.ReplaceAllString(window, ""))
	current.GustMPH = firstInt(currentGustPattern, window)

	if m := currentWindPattern.FindStringSubmatch(window); m != nil {
		if v, ok := parseInt(m[1]); ok {
			current.WindMPH = conditions.Int(v)
			current.WindDir = conditions.String(m[2])
		}
	} else if m := currentWindAltPattern.FindStringSubmatch(window); m != nil {
		if v, ok := parseInt(m[2]); ok {
			current.WindMPH = conditions.Int(v)
			current.WindDir = conditions.String(m[1])
		}
	}

	if m := currentSkyPattern.FindStringSubmatch(window); m != nil {
		current.Sky = conditions.String(cases.Title(language.English).String(strings.ToLower(m[1])))
	}

	return current
}

// windowBetween returns the text between the first start header and the
// first end header after it. A missing header yields "" so that no rule
// falls back to scanning the whole document.
func windowBetween(text, start, end string) string {
	i := strings.Index(text, start)
	if i < 0 {
		return ""
	}
	rest := text[i+len(start):]
	j := strings.Index(rest, end)
	if j < 0 {
		return ""
	}
	return rest[:j]
}

// windowAfter returns the text following start up to stop or limit bytes,
// whichever comes first.
func windowAfter(text, start, stop string, limit int) string {
	i := strings.Index(text, start)
	if i < 0 {
		return ""
	}
	rest := text[i+len(start):]
	if j := strings.Index(rest, stop); j >= 0 {
		rest = rest[:j]
	}
	if len(rest) > limit {
		rest = rest[:limit]
	}
	return rest
}

// parseInt is the tolerant cast used by every numeric rule.
func parseInt(s string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return v, true
}

func firstInt(re *regexp.Regexp, text string) *int {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, ok := parseInt(m[1])
	if !ok {
		return nil
	}
	return &v
}

// intTokens collects up to MaxHorizon integers. A token that fails the cast
// ends the sequence so later values never move into its position.
func intTokens(re *regexp.Regexp, window string) []int {
	var out []int
	for _, m := range re.FindAllStringSubmatch(window, conditions.MaxHorizon) {
		v, ok := parseInt(m[1])
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out
}

func timeTokens(window string) []string {
	var out []string
	for _, m := range timeTokenPattern.FindAllStringSubmatch(window, conditions.MaxHorizon) {
		label := strings.ToLower(strings.ReplaceAll(m[1], " ", ""))
		if label == "now" {
			label = "Now"
		}
		out = append(out, label)
	}
	return out
}

func windTokens(window string) []string {
	var out []string
	for _, m := range windTokenPattern.FindAllStringSubmatch(window, conditions.MaxHorizon) {
		speed, ok := parseInt(m[2])
		if !ok {
			break
		}
		out = append(out, fmt.Sprintf("%s %d", m[1], speed))
	}
	return out
}
