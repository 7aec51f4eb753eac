// Package conditions provides the data model for one ski conditions bulletin.
//
// A Record aggregates the snow summary, the current "right now" conditions and
// the hourly forecast scraped from the snow report for a single run. Every field
// is optional: a nil pointer means the value could not be extracted, which is
// never an error. The package also aligns parallel forecast sequences into a
// bounded HourlySeries and formats the display date used in captions.
package conditions
