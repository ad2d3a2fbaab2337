// Package notify formats price updates and delivers them to a Telegram
// chat or channel.
package notify
