package handler

import (
	"context"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"squash-booking-bot/internal/pkg/dates"
	"squash-booking-bot/internal/service"
)

const timeslotsUsage = "Usage: timeslots <date?>\n" +
	"Without a date the listing covers 6 days from now, when new slots are released."

// slotsReleaseDays is how far ahead the facility publishes slots.
const slotsReleaseDays = 6

// TimeslotsHandler lists available slots for a day.
type TimeslotsHandler struct {
	svc *service.BookingService
}

// NewTimeslotsHandler creates a new TimeslotsHandler.
func NewTimeslotsHandler(svc *service.BookingService) *TimeslotsHandler {
	return &TimeslotsHandler{svc: svc}
}

// Handle replies with the grouped availability for the requested day.
func (h *TimeslotsHandler) Handle(c tele.Context) error {
	fields := strings.Fields(c.Text())
	dateText := strings.Join(fields[1:], " ")

	var day time.Time
	if dateText == "" {
		day = time.Now().In(dates.Amsterdam).AddDate(0, 0, slotsReleaseDays)
	} else {
		parsed, ok := dates.Parse(dateText, time.Now())
		if !ok {
			return c.Send("Invalid date format.\n" + timeslotsUsage)
		}
		day = parsed
	}

	out, err := h.svc.Timeslots(context.Background(), day)
	if err != nil {
		return err
	}
	return c.Send(out, tele.ModeMarkdown)
}
