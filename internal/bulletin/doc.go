// Package bulletin runs one ski report: it fetches the conditions page and
// the grooming map concurrently, extracts a conditions record, composes a
// caption per channel and dispatches the map to every enabled channel.
//
// A missing or changed conditions page degrades the bulletin to a title-only
// caption. A missing grooming map is fatal because there is nothing to post.
package bulletin
