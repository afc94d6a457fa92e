package handler

import (
	"fmt"
	"os"
	"time"

	tele "gopkg.in/telebot.v3"

	"squash-booking-bot/internal/pkg/dates"
)

// Version is the bot release reported by the ping command.
const Version = "1.2.0"

// PingHandler answers liveness checks.
type PingHandler struct{}

// NewPingHandler creates a new PingHandler.
func NewPingHandler() *PingHandler {
	return &PingHandler{}
}

// Handle replies with the current facility-local time, the host the bot
// runs on and its version.
func (h *PingHandler) Handle(c tele.Context) error {
	now := time.Now().In(dates.Amsterdam).Format(time.RFC3339)
	return c.Send(fmt.Sprintf("Pong %s - %s - v%s", now, hostname(), Version))
}

// hostname prefers the HOSTNAME env var (the pod name when deployed)
// over the OS hostname.
func hostname() string {
	if h := os.Getenv("HOSTNAME"); h != "" {
		return h
	}
	if h, err := os.Hostname(); err == nil && h != "" {
		return h
	}
	return "unknown"
}
