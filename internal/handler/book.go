// Package handler implements the bot's chat commands.
package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/shlex"
	tele "gopkg.in/telebot.v3"

	"squash-booking-bot/internal/booking"
	"squash-booking-bot/internal/pkg/dates"
	"squash-booking-bot/internal/service"
)

const bookUsage = "Usage: book [--dry-run] <courts> <date> <time> <member...>\n" +
	"Members are emails or configured aliases; quote names with spaces.\n" +
	"Example: book 2 2025-03-20 17:30 john sarah alice@usc.nl bob@usc.nl"

// BookRequest is the parsed form of a book command.
type BookRequest struct {
	Courts  int
	Date    string
	Time    string
	Members []string
	DryRun  bool
}

// ParseBookCommand parses the raw command text. A nil request with a nil
// error means a help flag was present: show usage and do nothing else.
func ParseBookCommand(text string) (*BookRequest, error) {
	words, err := shlex.Split(text)
	if err != nil {
		return nil, fmt.Errorf("invalid command syntax: %w", err)
	}
	if len(words) == 0 || !strings.EqualFold(words[0], "book") {
		return nil, errors.New("not a book command")
	}

	req := &BookRequest{}
	positional := make([]string, 0, len(words)-1)
	for _, w := range words[1:] {
		switch w {
		case "--help", "-h":
			return nil, nil
		case "--dry-run":
			req.DryRun = true
		default:
			positional = append(positional, w)
		}
	}

	if len(positional) < 4 {
		return nil, errors.New("expected <courts> <date> <time> and at least one member")
	}
	courts, err := strconv.Atoi(positional[0])
	if err != nil || courts < 1 {
		return nil, fmt.Errorf("invalid court count %q", positional[0])
	}
	req.Courts = courts
	req.Date = positional[1]
	req.Time = positional[2]
	req.Members = positional[3:]

	if req.Courts > len(req.Members) {
		return nil, fmt.Errorf("requested %d courts for only %d players", req.Courts, len(req.Members))
	}
	return req, nil
}

// BookHandler handles the book command.
type BookHandler struct {
	svc     *service.BookingService
	aliases map[string]string
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(svc *service.BookingService, aliases map[string]string) *BookHandler {
	return &BookHandler{svc: svc, aliases: aliases}
}

// Handle parses, allocates and books. Allocation errors go back to the
// user verbatim; per-group booking failures are reported inline by the
// aggregated result.
func (h *BookHandler) Handle(c tele.Context) error {
	req, err := ParseBookCommand(c.Text())
	if err != nil {
		return c.Send("Invalid message format: " + err.Error() + "\n" + bookUsage)
	}
	if req == nil {
		return c.Send(bookUsage)
	}

	when, ok := dates.Parse(req.Date+" "+req.Time, time.Now())
	if !ok {
		return c.Send(fmt.Sprintf("Could not understand the date %q\n%s", req.Date+" "+req.Time, bookUsage))
	}

	participants := booking.ResolveAll(req.Members, h.aliases)
	groups, err := booking.Allocate(participants, req.Courts, h.svc.Members())
	if err != nil {
		return c.Send(err.Error())
	}

	results := h.svc.Book(context.Background(), service.BookRequest{Date: when, DryRun: req.DryRun}, groups)
	return c.Send(service.Report(results, req.DryRun), tele.ModeMarkdown)
}
