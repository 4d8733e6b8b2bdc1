// Package telegram adapts the platform-agnostic pagination core to Telegram
// via telebot: pages render as one edited message with an inline keyboard,
// trigger presses arrive as callback updates, and jump replies as plain text
// messages. A single Router per bot fans inbound updates out to the active
// sessions.
package telegram
