package conditions

import "time"

// MaxHorizon is the maximum number of hourly points shown in a bulletin.
const MaxHorizon = 6

// SnowSummary holds the snowfall totals reported by the source.
type SnowSummary struct {
	Last24hInches  *int `json:"last_24h_inches,omitempty"`
	Next5DayInches *int `json:"next_5_day_inches,omitempty"`
}

// IsEmpty reports whether neither snowfall figure was extracted.
func (s SnowSummary) IsEmpty() bool {
	return s.Last24hInches == nil && s.Next5DayInches == nil
}

// CurrentConditions holds the "Right Now" block of the snow report.
type CurrentConditions struct {
	TempF      *int    `json:"temp_f,omitempty"`
	FeelsLikeF *int    `json:"feels_like_f,omitempty"`
	Sky        *string `json:"sky,omitempty"`
	WindDir    *string `json:"wind_dir,omitempty"`
	WindMPH    *int    `json:"wind_mph,omitempty"`
	GustMPH    *int    `json:"gust_mph,omitempty"`
}

// IsEmpty reports whether no current condition was extracted.
func (c CurrentConditions) IsEmpty() bool {
	return c.TempF == nil && c.FeelsLikeF == nil && c.Sky == nil &&
		c.WindDir == nil && c.WindMPH == nil && c.GustMPH == nil
}

// HourlyPoint is one forecast hour. TimeLabel is always set; the other
// fields are nil when the source row did not cover this position.
type HourlyPoint struct {
	TimeLabel    string  `json:"time_label"`
	TempF        *int    `json:"temp_f,omitempty"`
	FeelsLikeF   *int    `json:"feels_like_f,omitempty"`
	Wind         *string `json:"wind,omitempty"`
	CloudPercent *int    `json:"cloud_percent,omitempty"`
}

// HourlySeries is an aligned forecast of at most MaxHorizon points.
type HourlySeries []HourlyPoint

// Limit returns the first n points of the series (all of them if n <= 0).
func (s HourlySeries) Limit(n int) HourlySeries {
	if n <= 0 || n >= len(s) {
		return s
	}
	return s[:n]
}

// Record is the structured result of one scrape.
type Record struct {
	Snow       SnowSummary       `json:"snow"`
	Current    CurrentConditions `json:"current"`
	Hourly     HourlySeries      `json:"hourly,omitempty"`
	CapturedAt time.Time         `json:"captured_at"`
}

// NewRecord builds a Record. The hourly slice is copied so the record does
// not share backing storage with the caller.
func NewRecord(snow SnowSummary, current CurrentConditions, hourly HourlySeries, capturedAt time.Time) Record {
	var h HourlySeries
	if len(hourly) > 0 {
		h = make(HourlySeries, len(hourly))
		copy(h, hourly)
	}
	return Record{
		Snow:       snow,
		Current:    current,
		Hourly:     h,
		CapturedAt: capturedAt,
	}
}

// IsEmpty reports whether the record carries no extracted data at all.
func (r Record) IsEmpty() bool {
	return r.Snow.IsEmpty() && r.Current.IsEmpty() && len(r.Hourly) == 0
}

// FieldCount returns how many scalar values the record carries, counting
// each populated hourly cell once.
func (r Record) FieldCount() int {
	n := 0
	for _, p := range []*int{r.Snow.Last24hInches, r.Snow.Next5DayInches,
		r.Current.TempF, r.Current.FeelsLikeF, r.Current.WindMPH, r.Current.GustMPH} {
		if p != nil {
			n++
		}
	}
	for _, p := range []*string{r.Current.Sky, r.Current.WindDir} {
		if p != nil {
			n++
		}
	}
	for _, pt := range r.Hourly {
		n++ // time label
		if pt.TempF != nil {
			n++
		}
		if pt.FeelsLikeF != nil {
			n++
		}
		if pt.Wind != nil {
			n++
		}
		if pt.CloudPercent != nil {
			n++
		}
	}
	return n
}

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
