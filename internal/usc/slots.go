package usc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"squash-booking-bot/internal/pkg/dates"
)

// ErrNoSlot is returned when no available slot matches a requested time.
var ErrNoSlot = errors.New("no available slot")

// SlotGroup summarizes the slots sharing one start time.
type SlotGroup struct {
	StartDate string
	EndDate   string
	Available int
}

// GroupSlots groups available slots by start time, preserving the order
// in which start times first appear.
func GroupSlots(slots []Slot) []SlotGroup {
	index := make(map[string]int)
	groups := make([]SlotGroup, 0)
	for _, s := range slots {
		if !s.IsAvailable {
			continue
		}
		i, ok := index[s.StartDate]
		if !ok {
			index[s.StartDate] = len(groups)
			groups = append(groups, SlotGroup{StartDate: s.StartDate, EndDate: s.EndDate})
			i = len(groups) - 1
		}
		groups[i].Available++
	}
	return groups
}

// ParseSlotTime parses a slot timestamp as returned by the API.
func ParseSlotTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// FormatSlotTime renders a slot timestamp in the facility's local time.
func FormatSlotTime(s string) string {
	t, err := ParseSlotTime(s)
	if err != nil {
		return s
	}
	return t.In(dates.Amsterdam).Format("15:04")
}

// startsAt reports whether the slot begins at the given instant.
func startsAt(s Slot, at time.Time) bool {
	t, err := ParseSlotTime(s.StartDate)
	if err != nil {
		return false
	}
	return t.Equal(at)
}

// MatchingSlot finds the first available slot starting at the given time.
func (c *Client) MatchingSlot(ctx context.Context, date time.Time) (*Slot, error) {
	resp, err := c.Slots(ctx, date)
	if err != nil {
		return nil, err
	}
	for _, s := range resp.Data {
		if s.IsAvailable && startsAt(s, date) {
			return &s, nil
		}
	}
	return nil, fmt.Errorf("%w found on %s", ErrNoSlot, date.In(dates.Amsterdam).Format("2006-01-02 15:04"))
}

// SlotsForBooking returns count distinct available slots starting at the
// given time, one per booking group. It fails when fewer are available.
func (c *Client) SlotsForBooking(ctx context.Context, date time.Time, count int) ([]Slot, error) {
	resp, err := c.Slots(ctx, date)
	if err != nil {
		return nil, err
	}
	matching := make([]Slot, 0, count)
	for _, s := range resp.Data {
		if s.IsAvailable && startsAt(s, date) {
			matching = append(matching, s)
			if len(matching) == count {
				return matching, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: found %d available slots on %s, need %d",
		ErrNoSlot, len(matching), date.In(dates.Amsterdam).Format("2006-01-02 15:04"), count)
}
