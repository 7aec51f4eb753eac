package conditions

// RawHourly holds the parallel sequences produced by the independent hourly
// extraction rules. The sequences may have different lengths.
type RawHourly struct {
	Times     []string
	Temps     []int
	FeelsLike []int
	Wind      []string
	Cloud     []int
}

// Align reconciles the parallel sequences into a single series.
//
// The horizon is min(MaxHorizon, len(Times), len(Temps)); a forecast without
// a time axis or temperature is not displayable, so either being empty yields
// an empty series. Optional fields are taken strictly by position and are nil
// where their own sequence is too short.
func Align(raw RawHourly) HourlySeries {
	horizon := min(MaxHorizon, len(raw.Times), len(raw.Temps))
	if horizon == 0 {
		return HourlySeries{}
	}

	series := make(HourlySeries, horizon)
	for i := 0; i < horizon; i++ {
		pt := HourlyPoint{
			TimeLabel: raw.Times[i],
			TempF:     Int(raw.Temps[i]),
		}
		if i < len(raw.FeelsLike) {
			pt.FeelsLikeF = Int(raw.FeelsLike[i])
		}
		if i < len(raw.Wind) {
			pt.Wind = String(raw.Wind[i])
		}
		if i < len(raw.Cloud) {
			pt.CloudPercent = Int(raw.Cloud[i])
		}
		series[i] = pt
	}
	return series
}
