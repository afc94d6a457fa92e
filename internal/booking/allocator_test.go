package booking

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testMembers returns the credentialed members used across the tests,
// in priority order.
func testMembers() []Member {
	return []Member{
		{Username: "john@usc.nl", Password: "pass_john"},
		{Username: "sarah@usc.nl", Password: "pass_sarah"},
		{Username: "mike@usc.nl", Password: "pass_mike"},
	}
}

// flatten reduces an allocation to (leader, members) pairs for assertions.
func flatten(groups []Group) [][]string {
	out := make([][]string, 0, len(groups))
	for _, g := range groups {
		pair := append([]string{g.Leader.Username}, g.Members...)
		out = append(out, pair)
	}
	return out
}

func TestAllocateNoCredentialedParticipant(t *testing.T) {
	_, err := Allocate([]string{"alice@usc.nl"}, 1, testMembers())
	require.Error(t, err)

	var lerr *InsufficientLeadersError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, "Not enough authenticated booking members available to book 1 squash courts", err.Error())
}

func TestAllocateLeaderAlone(t *testing.T) {
	groups, err := Allocate([]string{"john@usc.nl"}, 1, testMembers())
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"john@usc.nl"}}, flatten(groups))
}

func TestAllocateLeaderWithGuest(t *testing.T) {
	groups, err := Allocate([]string{"john@usc.nl", "alice@usc.nl"}, 1, testMembers())
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"john@usc.nl", "alice@usc.nl"}}, flatten(groups))
}

func TestAllocateFullCourt(t *testing.T) {
	// Four people on one court, at the occupancy limit. Sarah is the
	// only credentialed participant and leads.
	groups, err := Allocate([]string{"alice@usc.nl", "bob@usc.nl", "sarah@usc.nl", "henk@usc.nl"}, 1, testMembers())
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"sarah@usc.nl", "alice@usc.nl", "bob@usc.nl", "henk@usc.nl"},
	}, flatten(groups))
}

func TestAllocateTooFewCourts(t *testing.T) {
	_, err := Allocate([]string{"alice@usc.nl", "bob@usc.nl", "sarah@usc.nl", "henk@usc.nl", "bert@usc.nl"}, 1, testMembers())
	require.Error(t, err)

	var cerr *InsufficientCourtsError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "Requested 1 courts, but at least 2 are needed for 5 players", err.Error())
}

func TestAllocateSpreadAcrossRequestedCourts(t *testing.T) {
	// Six players over three courts: more courts than strictly needed,
	// so groups get thinner but no court stays empty.
	groups, err := Allocate(
		[]string{"alice@usc.nl", "bob@usc.nl", "sarah@usc.nl", "john@usc.nl", "mike@usc.nl", "henk@usc.nl"},
		3, testMembers(),
	)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"john@usc.nl", "alice@usc.nl"},
		{"sarah@usc.nl", "bob@usc.nl"},
		{"mike@usc.nl", "henk@usc.nl"},
	}, flatten(groups))
}

func TestAllocateCredentialedCoParticipant(t *testing.T) {
	// Sarah holds credentials but john fills the single leader slot
	// first, so sarah joins as an ordinary co-participant.
	groups, err := Allocate([]string{"john@usc.nl", "sarah@usc.nl", "alice@usc.nl"}, 1, testMembers())
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"john@usc.nl", "sarah@usc.nl", "alice@usc.nl"},
	}, flatten(groups))
}

func TestAllocateTwoCourts(t *testing.T) {
	groups, err := Allocate(
		[]string{"john@usc.nl", "alice@usc.nl", "sarah@usc.nl", "bob@usc.nl", "henk@usc.nl"},
		2, testMembers(),
	)
	require.NoError(t, err)
	// ceil(5/2)-1 = 2 co-participants per court.
	assert.Equal(t, [][]string{
		{"john@usc.nl", "alice@usc.nl", "bob@usc.nl"},
		{"sarah@usc.nl", "henk@usc.nl"},
	}, flatten(groups))
}

func TestAllocateMoreCourtsThanLeaders(t *testing.T) {
	_, err := Allocate([]string{"john@usc.nl", "alice@usc.nl"}, 2, testMembers())
	require.Error(t, err)

	var lerr *InsufficientLeadersError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, 2, lerr.Courts)
}
