// Middleware stages composed around every command handler: allow-list
// filtering, request logging, and error notification.
package bot

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"squash-booking-bot/internal/config"
)

// WhitelistMiddleware drops messages from chats outside the allow-list.
func WhitelistMiddleware(cfg *config.Config) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			chat := c.Chat()
			if chat == nil {
				return nil
			}
			if !cfg.IsChatAllowed(chat.ID) {
				log.Debug().
					Int64("chat_id", chat.ID).
					Msg("Ignoring message from non-whitelisted chat")
				return nil
			}
			return next(c)
		}
	}
}

// LoggingMiddleware logs all incoming messages.
func LoggingMiddleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			logEvent := log.Debug()
			if sender := c.Sender(); sender != nil {
				logEvent = logEvent.
					Int64("user_id", sender.ID).
					Str("username", sender.Username)
			}
			if chat := c.Chat(); chat != nil {
				logEvent = logEvent.Int64("chat_id", chat.ID)
			}
			logEvent.Str("text", c.Text()).Msg("Received message")

			return next(c)
		}
	}
}

// NotifyErrorMiddleware turns handler errors and panics into a reply in
// the chat. Nothing inside a single command may crash the bot process.
func NotifyErrorMiddleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			defer func() {
				if r := recover(); r != nil {
					log.Error().
						Interface("panic", r).
						Str("text", c.Text()).
						Msg("Recovered from panic in handler")
					_ = c.Send(fmt.Sprintf("Error in %s: internal error", CommandWord(c.Text())))
				}
			}()

			if err := next(c); err != nil {
				log.Error().Err(err).Str("text", c.Text()).Msg("Error in handler")
				return c.Send(fmt.Sprintf("Error in %s: %v", CommandWord(c.Text()), err))
			}
			return nil
		}
	}
}

// CommandWord extracts the leading command keyword from message text.
func CommandWord(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "handler"
	}
	return strings.ToLower(fields[0])
}
