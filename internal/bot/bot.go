// Package bot provides the Telegram bot initialization and command routing.
package bot

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"squash-booking-bot/internal/config"
	"squash-booking-bot/internal/handler"
	"squash-booking-bot/internal/service"
)

// Bot wraps the telebot instance with the command handlers.
type Bot struct {
	bot *tele.Bot
	cfg *config.Config

	ping      *handler.PingHandler
	timeslots *handler.TimeslotsHandler
	book      *handler.BookHandler
	aliases   *handler.AliasesHandler
	history   *handler.HistoryHandler
}

// Dependencies holds everything the bot handlers need. History may be
// nil when the booking history feature is disabled.
type Dependencies struct {
	Config  *config.Config
	Booking *service.BookingService
	History handler.HistoryStore
}

// New creates a Bot with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	teleBot, err := tele.NewBot(tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot:       teleBot,
		cfg:       deps.Config,
		ping:      handler.NewPingHandler(),
		timeslots: handler.NewTimeslotsHandler(deps.Booking),
		book:      handler.NewBookHandler(deps.Booking, deps.Config.Facility.Aliases),
		aliases:   handler.NewAliasesHandler(deps.Config.Facility.Aliases),
	}
	if deps.History != nil {
		b.history = handler.NewHistoryHandler(deps.History, deps.Config.History.Limit)
	}

	b.bot.Use(WhitelistMiddleware(deps.Config), LoggingMiddleware(), NotifyErrorMiddleware())
	b.bot.Handle(tele.OnText, b.route)

	return b, nil
}

// route dispatches a message by its leading keyword. Commands are plain
// words, not slash commands, so the bot reads naturally in a group chat.
func (b *Bot) route(c tele.Context) error {
	switch CommandWord(c.Text()) {
	case "ping":
		return b.ping.Handle(c)
	case "timeslots":
		return b.timeslots.Handle(c)
	case "book":
		return b.book.Handle(c)
	case "aliases":
		return b.aliases.Handle(c)
	case "history":
		if b.history == nil {
			return c.Send("Booking history is not enabled")
		}
		return b.history.Handle(c)
	default:
		log.Debug().Str("text", c.Text()).Msg("Ignoring unrelated message")
		return nil
	}
}

// Start starts the bot polling loop.
func (b *Bot) Start() {
	log.Info().Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}
