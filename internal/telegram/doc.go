// Package telegram provides a minimal Telegram Bot API client for posting bulletins.
//
// The client uploads the grooming map with sendPhoto and can post plain text
// messages with sendMessage (used for operator alerts). Requests are built with
// the standard library; authentication requires a bot token (from @BotFather)
// and a chat ID or @channel username.
package telegram
