// Package booking contains the court allocation core: pure functions
// that partition requested participants into per-court groups, each led
// by a member whose facility credentials the bot holds.
package booking

import "fmt"

// MaxGroupSize is the court occupancy limit: one leader plus up to
// three co-participants.
const MaxGroupSize = 4

// Member is a person the bot can authenticate as against the facility.
type Member struct {
	Username string
	Password string
}

// Group is one court's worth of participants. Members holds the
// co-participant emails and never includes the leader.
type Group struct {
	Leader  Member
	Members []string
}

// InsufficientCourtsError is returned when the requested court count
// cannot fit all participants.
type InsufficientCourtsError struct {
	Requested int
	Needed    int
	Players   int
}

func (e *InsufficientCourtsError) Error() string {
	return fmt.Sprintf("Requested %d courts, but at least %d are needed for %d players",
		e.Requested, e.Needed, e.Players)
}

// InsufficientLeadersError is returned when fewer credentialed members
// are among the participants than courts to book.
type InsufficientLeadersError struct {
	Courts int
}

func (e *InsufficientLeadersError) Error() string {
	return fmt.Sprintf("Not enough authenticated booking members available to book %d squash courts",
		e.Courts)
}

// Allocate partitions participants into one group per court. Leaders are
// the first credentialed participants in the priority order of members
// (the configured credential order), and every leader books for themself:
// a leader is never placed in another leader's group. Groups are filled
// by scanning the remaining participants in input order, so identical
// inputs always produce the identical allocation.
//
// Every participant lands in exactly one group. The requested court count
// is honored as a floor: asking for more courts than strictly needed
// spreads the participants thinner across them.
func Allocate(participants []string, courts int, members []Member) ([]Group, error) {
	n := len(participants)
	minCourts := (n + MaxGroupSize - 1) / MaxGroupSize
	if courts < minCourts {
		return nil, &InsufficientCourtsError{Requested: courts, Needed: minCourts, Players: n}
	}
	use := courts
	if use < minCourts {
		use = minCourts
	}

	requested := make(map[string]bool, n)
	for _, p := range participants {
		requested[p] = true
	}

	// Credentialed participants in configured priority order.
	credentialed := make([]Member, 0, len(members))
	for _, m := range members {
		if requested[m.Username] {
			credentialed = append(credentialed, m)
		}
	}
	if len(credentialed) < use {
		return nil, &InsufficientLeadersError{Courts: use}
	}

	leaders := credentialed[:use]
	leaderSet := make(map[string]bool, use)
	for _, l := range leaders {
		leaderSet[l.Username] = true
	}

	// Spread all participants (leaders included) evenly across the
	// courts; the leader occupies one spot in each group.
	perGroup := (n+use-1)/use - 1

	pool := make([]string, n)
	copy(pool, participants)

	groups := make([]Group, 0, use)
	for _, leader := range leaders {
		pool = removeFirst(pool, leader.Username)
		grp := make([]string, 0, perGroup)
		for i := 0; len(grp) < perGroup && i < len(pool); {
			if leaderSet[pool[i]] {
				// Reserved for its own group.
				i++
				continue
			}
			grp = append(grp, pool[i])
			pool = append(pool[:i], pool[i+1:]...)
		}
		groups = append(groups, Group{Leader: leader, Members: grp})
	}
	return groups, nil
}

// removeFirst removes the first occurrence of s, preserving order.
func removeFirst(pool []string, s string) []string {
	for i, p := range pool {
		if p == s {
			return append(pool[:i], pool[i+1:]...)
		}
	}
	return pool
}
