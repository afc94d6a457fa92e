package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"

	"squash-booking-bot/internal/pkg/dates"
	"squash-booking-bot/internal/repository"
)

// HistoryStore reads back recorded booking outcomes.
type HistoryStore interface {
	Recent(ctx context.Context, limit int) ([]repository.BookingRecord, error)
}

// HistoryHandler lists recent booking attempts.
type HistoryHandler struct {
	store        HistoryStore
	defaultLimit int
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(store HistoryStore, defaultLimit int) *HistoryHandler {
	if defaultLimit < 1 {
		defaultLimit = 10
	}
	return &HistoryHandler{store: store, defaultLimit: defaultLimit}
}

// Handle replies with the latest booking records; an optional numeric
// argument overrides how many.
func (h *HistoryHandler) Handle(c tele.Context) error {
	limit := h.defaultLimit
	fields := strings.Fields(c.Text())
	if len(fields) > 1 {
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 1 {
			return c.Send(fmt.Sprintf("Invalid count %q\nUsage: history <count?>", fields[1]))
		}
		limit = n
	}

	records, err := h.store.Recent(context.Background(), limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return c.Send("No bookings recorded yet")
	}

	var b strings.Builder
	b.WriteString("Recent bookings:")
	for _, rec := range records {
		fmt.Fprintf(&b, "\n- [%s] %s",
			rec.CreatedAt.In(dates.Amsterdam).Format("2006-01-02 15:04"), rec.Message)
	}
	return c.Send(b.String())
}
