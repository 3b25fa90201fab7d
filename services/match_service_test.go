package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"matchday_server/models"
)

type fakeMatchStore struct {
	mu      sync.Mutex
	matches map[string]models.Match
}

func newFakeMatchStore() *fakeMatchStore {
	return &fakeMatchStore{matches: make(map[string]models.Match)}
}

func copyMatch(m models.Match) models.Match {
	m.TeamA = append([]string{}, m.TeamA...)
	m.TeamB = append([]string{}, m.TeamB...)
	return m
}

func (s *fakeMatchStore) GetMatch(ctx context.Context, matchID string) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[matchID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, matchID)
	}
	m = copyMatch(m)
	return &m, nil
}

func (s *fakeMatchStore) PutMatch(ctx context.Context, match *models.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[match.MatchID] = copyMatch(*match)
	return nil
}

func (s *fakeMatchStore) DeleteMatch(ctx context.Context, matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.matches, matchID)
	return nil
}

func (s *fakeMatchStore) ListByStatus(ctx context.Context, statuses []string) ([]models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Match
	for _, m := range s.matches {
		for _, status := range statuses {
			if m.Status == status {
				out = append(out, copyMatch(m))
				break
			}
		}
	}
	sortMatchesNewestFirst(out)
	return out, nil
}

func (s *fakeMatchStore) ListEndedByUser(ctx context.Context, userID string) ([]models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Match
	for _, m := range s.matches {
		if m.Status == models.StatusEnded && (&m).HasParticipant(userID) {
			out = append(out, copyMatch(m))
		}
	}
	sortMatchesNewestFirst(out)
	return out, nil
}

type fakeStats struct {
	mu      sync.Mutex
	played  map[string]int
	wins    map[string]int
	losses  map[string]int
	failure error
}

func newFakeStats() *fakeStats {
	return &fakeStats{played: map[string]int{}, wins: map[string]int{}, losses: map[string]int{}}
}

func (s *fakeStats) RecordResult(ctx context.Context, userID string, outcome Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure != nil {
		return s.failure
	}
	s.played[userID]++
	switch outcome {
	case OutcomeWin:
		s.wins[userID]++
	case OutcomeLoss:
		s.losses[userID]++
	}
	return nil
}

type fakeNames struct{}

func (fakeNames) GetDisplayName(ctx context.Context, userID string) (string, error) {
	return "name of " + userID, nil
}

type fakePurger struct {
	mu     sync.Mutex
	purged []string
}

func (p *fakePurger) PurgeRoom(ctx context.Context, matchID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.purged = append(p.purged, matchID)
	return nil
}

func newTestService() (*MatchService, *fakeMatchStore, *fakeStats, *fakePurger) {
	store := newFakeMatchStore()
	stats := newFakeStats()
	purger := &fakePurger{}
	svc := &MatchService{Store: store, Stats: stats, Names: fakeNames{}, Rooms: purger}
	return svc, store, stats, purger
}

func TestCreateMatch(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	match, pin, err := svc.CreateMatch(ctx, "host-1", "Friday Five-a-side", "football")
	if err != nil {
		t.Fatalf("CreateMatch returned error: %v", err)
	}
	if match.Status != models.StatusPending {
		t.Errorf("new match status = %q, want pending", match.Status)
	}
	if len(pin) != 4 {
		t.Errorf("plaintext PIN %q is not 4 digits", pin)
	}
	if match.PinHash == "" || match.PinHash == pin {
		t.Error("match must store a hash, not the plaintext PIN")
	}
	if !VerifyPIN(pin, match.PinHash) {
		t.Error("stored hash does not verify against the returned PIN")
	}
	if match.MatchID == "" || match.CreatedAt == "" {
		t.Error("match id and creation timestamp must be set")
	}
}

func TestCreateMatchValidation(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	if _, _, err := svc.CreateMatch(ctx, "host-1", "", "football"); !errors.Is(err, ErrValidation) {
		t.Errorf("missing name: got %v, want ErrValidation", err)
	}
	if _, _, err := svc.CreateMatch(ctx, "host-1", "Derby", "  "); !errors.Is(err, ErrValidation) {
		t.Errorf("blank sport: got %v, want ErrValidation", err)
	}
}

func TestJoinMatch(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	match, _, _ := svc.CreateMatch(ctx, "host-1", "Derby", "football")

	if _, err := svc.JoinMatch(ctx, "no-such-match", "user-1", models.TeamA); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown match: got %v, want ErrNotFound", err)
	}

	updated, err := svc.JoinMatch(ctx, match.MatchID, "user-1", models.TeamA)
	if err != nil {
		t.Fatalf("JoinMatch returned error: %v", err)
	}
	if len(updated.TeamA) != 1 || updated.TeamA[0] != "user-1" {
		t.Errorf("team A roster = %v, want [user-1]", updated.TeamA)
	}

	// same user on the other team must be rejected
	if _, err := svc.JoinMatch(ctx, match.MatchID, "user-1", models.TeamB); !errors.Is(err, ErrAlreadyJoined) {
		t.Errorf("duplicate join on team B: got %v, want ErrAlreadyJoined", err)
	}
}

func TestJoinMatchWrongState(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	match, pin, _ := svc.CreateMatch(ctx, "host-1", "Derby", "football")
	if _, err := svc.StartMatch(ctx, match.MatchID, "host-1", pin); err != nil {
		t.Fatalf("StartMatch returned error: %v", err)
	}

	if _, err := svc.JoinMatch(ctx, match.MatchID, "user-1", models.TeamA); !errors.Is(err, ErrInvalidState) {
		t.Errorf("join after start: got %v, want ErrInvalidState", err)
	}
}

func TestConcurrentDuplicateJoin(t *testing.T) {
	svc, store, _, _ := newTestService()
	ctx := context.Background()
	match, _, _ := svc.CreateMatch(ctx, "host-1", "Derby", "football")

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.JoinMatch(ctx, match.MatchID, "user-1", models.TeamA)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var okCount, dupCount int
	for err := range errs {
		switch {
		case err == nil:
			okCount++
		case errors.Is(err, ErrAlreadyJoined):
			dupCount++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if okCount != 1 || dupCount != 1 {
		t.Errorf("got %d successes and %d duplicates, want exactly 1 of each", okCount, dupCount)
	}

	final, _ := store.GetMatch(ctx, match.MatchID)
	seen := 0
	for _, id := range final.TeamA {
		if id == "user-1" {
			seen++
		}
	}
	if seen != 1 || len(final.TeamB) != 0 {
		t.Errorf("user appears %d times in team A (teamB=%v), want exactly once", seen, final.TeamB)
	}
}

func TestStartMatch(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	match, pin, _ := svc.CreateMatch(ctx, "host-1", "Derby", "football")

	if _, err := svc.StartMatch(ctx, match.MatchID, "not-the-host", pin); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-host start: got %v, want ErrForbidden", err)
	}

	wrong := "0000"
	if wrong == pin {
		wrong = "0001"
	}
	if _, err := svc.StartMatch(ctx, match.MatchID, "host-1", wrong); !errors.Is(err, ErrInvalidPin) {
		t.Errorf("wrong PIN: got %v, want ErrInvalidPin", err)
	}

	started, err := svc.StartMatch(ctx, match.MatchID, "host-1", pin)
	if err != nil {
		t.Fatalf("StartMatch returned error: %v", err)
	}
	if started.Status != models.StatusStarted || started.StartedAt == "" {
		t.Errorf("started match = %+v, want status started with timestamp", started)
	}

	if _, err := svc.StartMatch(ctx, match.MatchID, "host-1", pin); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second start: got %v, want ErrInvalidState", err)
	}
}

func TestUpdateScore(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	match, pin, _ := svc.CreateMatch(ctx, "host-1", "Derby", "football")
	svc.JoinMatch(ctx, match.MatchID, "user-1", models.TeamA)

	if _, err := svc.UpdateScore(ctx, match.MatchID, "user-1", models.TeamA, 1); !errors.Is(err, ErrInvalidState) {
		t.Errorf("score before start: got %v, want ErrInvalidState", err)
	}

	svc.StartMatch(ctx, match.MatchID, "host-1", pin)

	if _, err := svc.UpdateScore(ctx, match.MatchID, "stranger", models.TeamA, 1); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-participant score: got %v, want ErrForbidden", err)
	}
	if _, err := svc.UpdateScore(ctx, match.MatchID, "user-1", models.Team("C"), 1); !errors.Is(err, ErrInvalidTeam) {
		t.Errorf("bad team: got %v, want ErrInvalidTeam", err)
	}

	updated, err := svc.UpdateScore(ctx, match.MatchID, "user-1", models.TeamB, 3)
	if err != nil {
		t.Fatalf("UpdateScore returned error: %v", err)
	}
	if updated.ScoreB != 3 || updated.ScoreA != 0 {
		t.Errorf("scores = (%d,%d), want (0,3)", updated.ScoreA, updated.ScoreB)
	}

	// negative deltas are applied as supplied
	updated, err = svc.UpdateScore(ctx, match.MatchID, "user-1", models.TeamB, -5)
	if err != nil {
		t.Fatalf("UpdateScore with negative delta returned error: %v", err)
	}
	if updated.ScoreB != -2 {
		t.Errorf("score after -5 = %d, want -2", updated.ScoreB)
	}
}

func startedMatch(t *testing.T, svc *MatchService, scoreA, scoreB int) *models.Match {
	t.Helper()
	ctx := context.Background()
	match, pin, err := svc.CreateMatch(ctx, "host-1", "Derby", "football")
	if err != nil {
		t.Fatalf("CreateMatch returned error: %v", err)
	}
	if _, err := svc.JoinMatch(ctx, match.MatchID, "alice", models.TeamA); err != nil {
		t.Fatalf("JoinMatch returned error: %v", err)
	}
	if _, err := svc.JoinMatch(ctx, match.MatchID, "bob", models.TeamB); err != nil {
		t.Fatalf("JoinMatch returned error: %v", err)
	}
	if _, err := svc.StartMatch(ctx, match.MatchID, "host-1", pin); err != nil {
		t.Fatalf("StartMatch returned error: %v", err)
	}
	if scoreA != 0 {
		if _, err := svc.UpdateScore(ctx, match.MatchID, "alice", models.TeamA, scoreA); err != nil {
			t.Fatalf("UpdateScore returned error: %v", err)
		}
	}
	if scoreB != 0 {
		if _, err := svc.UpdateScore(ctx, match.MatchID, "bob", models.TeamB, scoreB); err != nil {
			t.Fatalf("UpdateScore returned error: %v", err)
		}
	}
	return match
}

func TestEndMatchWinnerComputation(t *testing.T) {
	cases := []struct {
		scoreA, scoreB int
		winner         string
	}{
		{5, 3, models.WinnerTeamA},
		{2, 2, models.WinnerDraw},
		{0, 4, models.WinnerTeamB},
	}

	for _, tc := range cases {
		svc, _, stats, purger := newTestService()
		ctx := context.Background()
		match := startedMatch(t, svc, tc.scoreA, tc.scoreB)

		ended, err := svc.EndMatch(ctx, match.MatchID, "host-1")
		if err != nil {
			t.Fatalf("EndMatch(%d,%d) returned error: %v", tc.scoreA, tc.scoreB, err)
		}
		if ended.Winner != tc.winner {
			t.Errorf("winner for (%d,%d) = %q, want %q", tc.scoreA, tc.scoreB, ended.Winner, tc.winner)
		}
		if ended.Status != models.StatusEnded || ended.EndedAt == "" {
			t.Errorf("ended match = %+v, want status ended with timestamp", ended)
		}

		if stats.played["alice"] != 1 || stats.played["bob"] != 1 {
			t.Errorf("matchesPlayed alice=%d bob=%d, want 1 each", stats.played["alice"], stats.played["bob"])
		}
		switch tc.winner {
		case models.WinnerTeamA:
			if stats.wins["alice"] != 1 || stats.losses["bob"] != 1 {
				t.Errorf("stats for A win: %+v", stats)
			}
		case models.WinnerTeamB:
			if stats.wins["bob"] != 1 || stats.losses["alice"] != 1 {
				t.Errorf("stats for B win: %+v", stats)
			}
		default:
			if stats.wins["alice"]+stats.wins["bob"]+stats.losses["alice"]+stats.losses["bob"] != 0 {
				t.Errorf("stats for draw: %+v", stats)
			}
		}

		if len(purger.purged) != 1 || purger.purged[0] != match.MatchID {
			t.Errorf("purged rooms = %v, want [%s]", purger.purged, match.MatchID)
		}
	}
}

func TestEndMatchAuthorizationAndIdempotence(t *testing.T) {
	svc, _, stats, _ := newTestService()
	ctx := context.Background()
	match := startedMatch(t, svc, 1, 0)

	if _, err := svc.EndMatch(ctx, match.MatchID, "not-the-host"); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-host end: got %v, want ErrForbidden", err)
	}

	if _, err := svc.EndMatch(ctx, match.MatchID, "host-1"); err != nil {
		t.Fatalf("EndMatch returned error: %v", err)
	}

	// ending twice must fail and must not double-increment stats
	if _, err := svc.EndMatch(ctx, match.MatchID, "host-1"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second end: got %v, want ErrInvalidState", err)
	}
	if stats.played["alice"] != 1 || stats.wins["alice"] != 1 {
		t.Errorf("stats after double end = %+v, want single increments", stats)
	}

	// and score updates are locked out
	if _, err := svc.UpdateScore(ctx, match.MatchID, "alice", models.TeamA, 1); !errors.Is(err, ErrInvalidState) {
		t.Errorf("score after end: got %v, want ErrInvalidState", err)
	}
}

func TestDeleteMatch(t *testing.T) {
	svc, _, _, purger := newTestService()
	ctx := context.Background()
	match, _, _ := svc.CreateMatch(ctx, "host-1", "Derby", "football")

	if err := svc.DeleteMatch(ctx, match.MatchID, "not-the-host"); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-host delete: got %v, want ErrForbidden", err)
	}

	if err := svc.DeleteMatch(ctx, match.MatchID, "host-1"); err != nil {
		t.Fatalf("DeleteMatch returned error: %v", err)
	}
	if _, err := svc.GetMatch(ctx, match.MatchID); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after delete: got %v, want ErrNotFound", err)
	}
	if len(purger.purged) != 1 || purger.purged[0] != match.MatchID {
		t.Errorf("purged rooms = %v, want [%s]", purger.purged, match.MatchID)
	}

	// only pending matches can be deleted
	match2 := startedMatch(t, svc, 0, 0)
	if err := svc.DeleteMatch(ctx, match2.MatchID, "host-1"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("delete started match: got %v, want ErrInvalidState", err)
	}
}

func TestListMatches(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	pending, _, _ := svc.CreateMatch(ctx, "host-1", "Pending game", "football")
	started := startedMatch(t, svc, 0, 0)
	ended := startedMatch(t, svc, 1, 0)
	if _, err := svc.EndMatch(ctx, ended.MatchID, "host-1"); err != nil {
		t.Fatalf("EndMatch returned error: %v", err)
	}

	defaulted, err := svc.ListMatches(ctx, nil)
	if err != nil {
		t.Fatalf("ListMatches returned error: %v", err)
	}
	ids := map[string]bool{}
	for _, m := range defaulted {
		ids[m.MatchID] = true
		if m.Status == models.StatusEnded {
			t.Errorf("default listing contains ended match %s", m.MatchID)
		}
	}
	if !ids[pending.MatchID] || !ids[started.MatchID] {
		t.Errorf("default listing = %v, want pending and started matches", ids)
	}

	endedOnly, err := svc.ListMatches(ctx, []string{models.StatusEnded})
	if err != nil {
		t.Fatalf("ListMatches returned error: %v", err)
	}
	if len(endedOnly) != 1 || endedOnly[0].MatchID != ended.MatchID {
		t.Errorf("ended listing = %v, want only %s", endedOnly, ended.MatchID)
	}

	if _, err := svc.ListMatches(ctx, []string{"bogus"}); !errors.Is(err, ErrValidation) {
		t.Errorf("bogus status filter: got %v, want ErrValidation", err)
	}
}

func TestGetMatchResolvesDisplayNames(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	match, _, _ := svc.CreateMatch(ctx, "host-1", "Derby", "football")
	svc.JoinMatch(ctx, match.MatchID, "alice", models.TeamA)
	svc.JoinMatch(ctx, match.MatchID, "bob", models.TeamB)

	detail, err := svc.GetMatch(ctx, match.MatchID)
	if err != nil {
		t.Fatalf("GetMatch returned error: %v", err)
	}
	if len(detail.TeamAMembers) != 1 || detail.TeamAMembers[0].DisplayName != "name of alice" {
		t.Errorf("team A members = %v", detail.TeamAMembers)
	}
	if len(detail.TeamBMembers) != 1 || detail.TeamBMembers[0].DisplayName != "name of bob" {
		t.Errorf("team B members = %v", detail.TeamBMembers)
	}
}

func TestGetUserMatches(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	ended := startedMatch(t, svc, 1, 0)
	svc.EndMatch(ctx, ended.MatchID, "host-1")
	startedMatch(t, svc, 0, 0) // still running, must not appear

	matches, err := svc.GetUserMatches(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserMatches returned error: %v", err)
	}
	if len(matches) != 1 || matches[0].MatchID != ended.MatchID {
		t.Errorf("user matches = %v, want only %s", matches, ended.MatchID)
	}

	none, err := svc.GetUserMatches(ctx, "stranger")
	if err != nil {
		t.Fatalf("GetUserMatches returned error: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("stranger matches = %v, want empty", none)
	}
}

func TestEndToEndScenario(t *testing.T) {
	svc, _, stats, purger := newTestService()
	ctx := context.Background()

	match, pin, err := svc.CreateMatch(ctx, "host-1", "Derby", "football")
	if err != nil {
		t.Fatalf("CreateMatch returned error: %v", err)
	}

	if _, err := svc.JoinMatch(ctx, match.MatchID, "user-b", models.TeamA); err != nil {
		t.Fatalf("JoinMatch returned error: %v", err)
	}

	started, err := svc.StartMatch(ctx, match.MatchID, "host-1", pin)
	if err != nil {
		t.Fatalf("StartMatch returned error: %v", err)
	}
	if started.Status != models.StatusStarted {
		t.Fatalf("status after start = %q, want started", started.Status)
	}

	scored, err := svc.UpdateScore(ctx, match.MatchID, "user-b", models.TeamA, 1)
	if err != nil {
		t.Fatalf("UpdateScore returned error: %v", err)
	}
	if scored.ScoreA != 1 {
		t.Fatalf("team A tally = %d, want 1", scored.ScoreA)
	}

	ended, err := svc.EndMatch(ctx, match.MatchID, "host-1")
	if err != nil {
		t.Fatalf("EndMatch returned error: %v", err)
	}
	if ended.Winner != models.WinnerTeamA {
		t.Errorf("winner = %q, want A", ended.Winner)
	}
	if stats.played["user-b"] != 1 || stats.wins["user-b"] != 1 {
		t.Errorf("user-b stats = played %d wins %d, want 1 and 1", stats.played["user-b"], stats.wins["user-b"])
	}
	if len(purger.purged) != 1 || purger.purged[0] != match.MatchID {
		t.Errorf("chat purge = %v, want [%s]", purger.purged, match.MatchID)
	}
}

func TestStatsFailureSurfaces(t *testing.T) {
	svc, _, stats, _ := newTestService()
	ctx := context.Background()
	match := startedMatch(t, svc, 1, 0)

	stats.failure = fmt.Errorf("%w: dynamo down", ErrStoreUnavailable)
	if _, err := svc.EndMatch(ctx, match.MatchID, "host-1"); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("stats failure: got %v, want ErrStoreUnavailable", err)
	}
}

func TestPinHashNeverSerialized(t *testing.T) {
	svc, _, _, _ := newTestService()
	match, _, _ := svc.CreateMatch(context.Background(), "host-1", "Derby", "football")

	payload := marshalForTest(t, match)
	if strings.Contains(payload, "pinHash") || strings.Contains(payload, match.PinHash) {
		t.Errorf("serialized match leaks the PIN hash: %s", payload)
	}
}
