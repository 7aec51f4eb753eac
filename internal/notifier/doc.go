// Package notifier provides the delivery channels for ski bulletins.
//
// Each Channel posts the grooming map image and its caption to one platform:
// a Telegram channel, a Twitter post, or SMS recipients reached through an
// e-mail gateway. A channel whose credentials are missing is never built, so
// it counts as disabled rather than failed. Every channel declares the caption
// variant it needs (length limits, hashtags, fewer hourly points).
package notifier
