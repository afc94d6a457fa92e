// Package service orchestrates booking flows against the facility API.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"squash-booking-bot/internal/booking"
	"squash-booking-bot/internal/pkg/dates"
	"squash-booking-bot/internal/repository"
	"squash-booking-bot/internal/usc"
)

// ErrNoMembers is returned when no facility credentials are configured.
var ErrNoMembers = errors.New("no booking members configured")

// Client is the facility API surface the orchestrator needs. One client
// instance represents one member session.
type Client interface {
	Authenticate(ctx context.Context, username, password string) (*usc.Auth, error)
	Slots(ctx context.Context, date time.Time) (*usc.SlotsResponse, error)
	SlotsForBooking(ctx context.Context, date time.Time, count int) ([]usc.Slot, error)
	Member(ctx context.Context) (*usc.MemberInfo, error)
	BookSlot(ctx context.Context, data usc.BookingData) error
}

// ClientFactory creates a fresh session; each booking group gets its own.
type ClientFactory func() Client

// Recorder persists booking outcomes. Nil disables history.
type Recorder interface {
	Record(ctx context.Context, rec repository.BookingRecord) error
}

// BookRequest carries the slot time and mode for one book command.
type BookRequest struct {
	Date   time.Time
	DryRun bool
}

// GroupResult is the outcome for a single booking group. Failures stay
// inside the group they belong to.
type GroupResult struct {
	Leader  string
	Members []string
	Slot    *usc.Slot
	DryRun  bool
	Err     error
}

// Message renders the user-facing line for this group.
func (r GroupResult) Message() string {
	if r.Err != nil {
		return fmt.Sprintf("Booking failed with %s: %v", r.Leader, r.Err)
	}
	window := ""
	if r.Slot != nil {
		window = fmt.Sprintf(" at %s - %s", usc.FormatSlotTime(r.Slot.StartDate), usc.FormatSlotTime(r.Slot.EndDate))
	}
	verb := "Booking successful"
	if r.DryRun {
		verb = "Would book"
	}
	if len(r.Members) == 0 {
		return fmt.Sprintf("%s with %s%s", verb, r.Leader, window)
	}
	return fmt.Sprintf("%s with %s%s for members %s", verb, r.Leader, window, strings.Join(r.Members, ", "))
}

// BookingService coordinates one concurrent booking per allocated group.
type BookingService struct {
	newClient ClientFactory
	members   []booking.Member
	history   Recorder
}

// NewBookingService creates a BookingService. history may be nil.
func NewBookingService(factory ClientFactory, members []booking.Member, history Recorder) *BookingService {
	return &BookingService{newClient: factory, members: members, history: history}
}

// Members returns the configured credentialed members in priority order.
func (s *BookingService) Members() []booking.Member {
	return s.members
}

// Book runs one booking task per group. All tasks run concurrently and
// results come back in allocation order regardless of completion order.
// A failed group never aborts its siblings.
func (s *BookingService) Book(ctx context.Context, req BookRequest, groups []booking.Group) []GroupResult {
	slots, slotErr := s.claimSlots(ctx, req.Date, groups)

	results := make([]GroupResult, len(groups))
	var wg sync.WaitGroup
	for i := range groups {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var slot *usc.Slot
			if slotErr == nil {
				slot = &slots[i]
			}
			results[i] = s.bookGroup(ctx, req, groups[i], slot, slotErr)
		}(i)
	}
	wg.Wait()

	s.recordResults(ctx, results)
	return results
}

// claimSlots fetches one slot per group up front, through the first
// leader's session. A failure here surfaces as a per-group error later.
func (s *BookingService) claimSlots(ctx context.Context, date time.Time, groups []booking.Group) ([]usc.Slot, error) {
	if len(groups) == 0 {
		return nil, nil
	}
	c := s.newClient()
	leader := groups[0].Leader
	if _, err := c.Authenticate(ctx, leader.Username, leader.Password); err != nil {
		return nil, err
	}
	return c.SlotsForBooking(ctx, date, len(groups))
}

func (s *BookingService) bookGroup(ctx context.Context, req BookRequest, g booking.Group, slot *usc.Slot, slotErr error) GroupResult {
	res := GroupResult{Leader: g.Leader.Username, Members: g.Members, DryRun: req.DryRun}

	c := s.newClient()
	if _, err := c.Authenticate(ctx, g.Leader.Username, g.Leader.Password); err != nil {
		res.Err = err
		return res
	}
	if slotErr != nil {
		res.Err = slotErr
		return res
	}
	res.Slot = slot

	info, err := c.Member(ctx)
	if err != nil {
		res.Err = err
		return res
	}

	data := usc.NewBookingData(info.ID, g.Members, *slot)
	if req.DryRun {
		return res
	}
	if err := c.BookSlot(ctx, data); err != nil {
		res.Err = err
	}
	return res
}

func (s *BookingService) recordResults(ctx context.Context, results []GroupResult) {
	if s.history == nil {
		return
	}
	for _, r := range results {
		rec := repository.BookingRecord{
			Leader:  r.Leader,
			Members: r.Members,
			DryRun:  r.DryRun,
			Success: r.Err == nil,
			Message: r.Message(),
		}
		if r.Slot != nil {
			if t, err := usc.ParseSlotTime(r.Slot.StartDate); err == nil {
				rec.SlotStart = t
			}
			if t, err := usc.ParseSlotTime(r.Slot.EndDate); err == nil {
				rec.SlotEnd = t
			}
			rec.ProductID = r.Slot.BookableProductID
		}
		if err := s.history.Record(ctx, rec); err != nil {
			log.Warn().Err(err).Str("leader", r.Leader).Msg("Failed to record booking history")
		}
	}
}

// Report aggregates per-group outcomes into one multi-line response.
func Report(results []GroupResult, dryRun bool) string {
	var b strings.Builder
	if dryRun {
		b.WriteString("[DRY RUN] ")
	}
	b.WriteString("Booking results:")
	for _, r := range results {
		b.WriteString("\n- ")
		b.WriteString(r.Message())
	}
	return b.String()
}

// Timeslots lists grouped availability for a day, authenticated as the
// first configured member.
func (s *BookingService) Timeslots(ctx context.Context, date time.Time) (string, error) {
	if len(s.members) == 0 {
		return "", ErrNoMembers
	}

	c := s.newClient()
	if _, err := c.Authenticate(ctx, s.members[0].Username, s.members[0].Password); err != nil {
		return "", err
	}
	resp, err := c.Slots(ctx, date)
	if err != nil {
		return "", err
	}

	day := dates.DayString(date)
	groups := usc.GroupSlots(resp.Data)
	if len(groups) == 0 {
		return fmt.Sprintf("No available slots found for **%s**", day), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Available slots for **%s**:", day)
	for _, g := range groups {
		fmt.Fprintf(&b, "\n- %s - %s - **%d slots available**",
			usc.FormatSlotTime(g.StartDate), usc.FormatSlotTime(g.EndDate), g.Available)
	}
	return b.String(), nil
}
