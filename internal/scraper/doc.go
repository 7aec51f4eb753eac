// Package scraper fetches the snow report page and extracts conditions from it.
//
// The page is fetched over HTTP and reduced to its visible text, with one space
// between text nodes. Extraction is a set of independent pattern rules: each rule
// either yields a value or yields nothing, and a non-match is absence rather than
// an error. Hourly rules only look inside the text between two adjacent section
// headers so that repeated numbers elsewhere on the page are never picked up.
package scraper
