// Package dispatch delivers one bulletin to every enabled channel.
//
// Channels are independent: a failing or panicking channel is recorded in its
// Result and never stops the others. Sends run concurrently up to a limit,
// optionally spaced by a rate limiter, and each send has its own timeout.
// Results are returned in channel order.
package dispatch
