package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"matchday_server/models"

	"github.com/google/uuid"
)

// RoomPurger tears down a match's chat room and its persisted messages.
// Implemented by the socket room registry.
type RoomPurger interface {
	PurgeRoom(ctx context.Context, matchID string) error
}

// MatchService owns every state transition and authorization check for a
// match: pending --start(valid PIN)--> started --end--> ended, plus
// host-initiated deletion while pending. All mutations on one match id run
// under that match's lock; different matches never block each other.
type MatchService struct {
	Store MatchStore
	Stats StatsSink
	Names ProfileDirectory
	Rooms RoomPurger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (ms *MatchService) lockMatch(matchID string) func() {
	ms.mu.Lock()
	if ms.locks == nil {
		ms.locks = make(map[string]*sync.Mutex)
	}
	l, ok := ms.locks[matchID]
	if !ok {
		l = &sync.Mutex{}
		ms.locks[matchID] = l
	}
	ms.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// CreateMatch creates a pending match hosted by hostID and returns it
// together with the plaintext PIN. This is the only code path that ever
// discloses the PIN; only its bcrypt hash is stored.
func (ms *MatchService) CreateMatch(ctx context.Context, hostID, name, sport string) (*models.Match, string, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(sport) == "" {
		return nil, "", fmt.Errorf("%w: name and sport are required", ErrValidation)
	}

	pin, err := GeneratePIN()
	if err != nil {
		return nil, "", err
	}
	pinHash, err := HashPIN(pin)
	if err != nil {
		return nil, "", err
	}

	match := &models.Match{
		MatchID:   uuid.New().String(),
		HostID:    hostID,
		Name:      strings.TrimSpace(name),
		Sport:     strings.TrimSpace(sport),
		Status:    models.StatusPending,
		TeamA:     []string{},
		TeamB:     []string{},
		PinHash:   pinHash,
		CreatedAt: now(),
	}

	if err := ms.Store.PutMatch(ctx, match); err != nil {
		return nil, "", err
	}

	log.Printf("🏟️ Match %s created by host %s\n", match.MatchID, hostID)
	return match, pin, nil
}

// JoinMatch appends userID to the requested roster of a pending match. A
// user can sit on at most one roster per match.
func (ms *MatchService) JoinMatch(ctx context.Context, matchID, userID string, team models.Team) (*models.Match, error) {
	unlock := ms.lockMatch(matchID)
	defer unlock()

	match, err := ms.Store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status != models.StatusPending {
		return nil, fmt.Errorf("%w: cannot join, match already started or ended", ErrInvalidState)
	}
	if match.HasParticipant(userID) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyJoined, userID)
	}

	switch team {
	case models.TeamA:
		match.TeamA = append(match.TeamA, userID)
	case models.TeamB:
		match.TeamB = append(match.TeamB, userID)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidTeam, team)
	}

	if err := ms.Store.PutMatch(ctx, match); err != nil {
		return nil, err
	}

	log.Printf("👥 User %s joined team %s of match %s\n", userID, team, matchID)
	return match, nil
}

// StartMatch transitions a pending match to started once the host proves
// possession of the PIN.
func (ms *MatchService) StartMatch(ctx context.Context, matchID, hostID, pinAttempt string) (*models.Match, error) {
	unlock := ms.lockMatch(matchID)
	defer unlock()

	match, err := ms.Store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.HostID != hostID {
		return nil, fmt.Errorf("%w: only the host can start the match", ErrForbidden)
	}
	if match.Status != models.StatusPending {
		return nil, fmt.Errorf("%w: match is %s", ErrInvalidState, match.Status)
	}
	if !VerifyPIN(pinAttempt, match.PinHash) {
		return nil, ErrInvalidPin
	}

	match.Status = models.StatusStarted
	match.StartedAt = now()

	if err := ms.Store.PutMatch(ctx, match); err != nil {
		return nil, err
	}

	log.Printf("🚀 Match %s started\n", matchID)
	return match, nil
}

// UpdateScore adds delta to the given team's tally. Any roster member may
// score; the delta is applied as supplied, negatives included.
func (ms *MatchService) UpdateScore(ctx context.Context, matchID, userID string, team models.Team, delta int) (*models.Match, error) {
	unlock := ms.lockMatch(matchID)
	defer unlock()

	match, err := ms.Store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status != models.StatusStarted {
		return nil, fmt.Errorf("%w: match not active", ErrInvalidState)
	}
	if !match.HasParticipant(userID) {
		return nil, fmt.Errorf("%w: not a participant", ErrForbidden)
	}

	switch team {
	case models.TeamA:
		match.ScoreA += delta
	case models.TeamB:
		match.ScoreB += delta
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidTeam, team)
	}

	if err := ms.Store.PutMatch(ctx, match); err != nil {
		return nil, err
	}
	return match, nil
}

// EndMatch transitions a started match to ended: stamps the end time,
// computes the winner by strict tally comparison, records a win/loss/draw
// for every participant through the stats sink, and purges the chat room.
func (ms *MatchService) EndMatch(ctx context.Context, matchID, hostID string) (*models.Match, error) {
	unlock := ms.lockMatch(matchID)
	defer unlock()

	match, err := ms.Store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.HostID != hostID {
		return nil, fmt.Errorf("%w: only the host can end the match", ErrForbidden)
	}
	if match.Status != models.StatusStarted {
		return nil, fmt.Errorf("%w: match is %s", ErrInvalidState, match.Status)
	}

	match.Status = models.StatusEnded
	match.EndedAt = now()
	switch {
	case match.ScoreA > match.ScoreB:
		match.Winner = models.WinnerTeamA
	case match.ScoreB > match.ScoreA:
		match.Winner = models.WinnerTeamB
	default:
		match.Winner = models.WinnerDraw
	}

	if err := ms.Store.PutMatch(ctx, match); err != nil {
		return nil, err
	}

	teamAOutcome, teamBOutcome := OutcomeDraw, OutcomeDraw
	if match.Winner == models.WinnerTeamA {
		teamAOutcome, teamBOutcome = OutcomeWin, OutcomeLoss
	} else if match.Winner == models.WinnerTeamB {
		teamAOutcome, teamBOutcome = OutcomeLoss, OutcomeWin
	}
	for _, userID := range match.TeamA {
		if err := ms.Stats.RecordResult(ctx, userID, teamAOutcome); err != nil {
			return nil, err
		}
	}
	for _, userID := range match.TeamB {
		if err := ms.Stats.RecordResult(ctx, userID, teamBOutcome); err != nil {
			return nil, err
		}
	}

	if err := ms.Rooms.PurgeRoom(ctx, matchID); err != nil {
		return nil, err
	}

	log.Printf("🏁 Match %s ended, winner: %s\n", matchID, match.Winner)
	return match, nil
}

// DeleteMatch removes a pending match and cascades deletion of its chat
// messages.
func (ms *MatchService) DeleteMatch(ctx context.Context, matchID, hostID string) error {
	unlock := ms.lockMatch(matchID)
	defer unlock()

	match, err := ms.Store.GetMatch(ctx, matchID)
	if err != nil {
		return err
	}
	if match.HostID != hostID {
		return fmt.Errorf("%w: only the host can delete the match", ErrForbidden)
	}
	if match.Status != models.StatusPending {
		return fmt.Errorf("%w: match is %s", ErrInvalidState, match.Status)
	}

	if err := ms.Store.DeleteMatch(ctx, matchID); err != nil {
		return err
	}
	if err := ms.Rooms.PurgeRoom(ctx, matchID); err != nil {
		return err
	}

	log.Printf("🗑️ Match %s deleted by host %s\n", matchID, hostID)
	return nil
}

// ListMatches returns matches in any of the requested statuses, newest
// first. With no filter it returns pending and started matches.
func (ms *MatchService) ListMatches(ctx context.Context, statuses []string) ([]models.Match, error) {
	if len(statuses) == 0 {
		statuses = []string{models.StatusPending, models.StatusStarted}
	}
	for _, status := range statuses {
		switch status {
		case models.StatusPending, models.StatusStarted, models.StatusEnded:
		default:
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
		}
	}
	return ms.Store.ListByStatus(ctx, statuses)
}

// GetMatch returns the full match detail with rosters resolved to display
// names.
func (ms *MatchService) GetMatch(ctx context.Context, matchID string) (*models.MatchDetail, error) {
	match, err := ms.Store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	detail := &models.MatchDetail{
		Match:        *match,
		TeamAMembers: []models.Participant{},
		TeamBMembers: []models.Participant{},
	}
	for _, userID := range match.TeamA {
		name, err := ms.Names.GetDisplayName(ctx, userID)
		if err != nil {
			return nil, err
		}
		detail.TeamAMembers = append(detail.TeamAMembers, models.Participant{UserID: userID, DisplayName: name})
	}
	for _, userID := range match.TeamB {
		name, err := ms.Names.GetDisplayName(ctx, userID)
		if err != nil {
			return nil, err
		}
		detail.TeamBMembers = append(detail.TeamBMembers, models.Participant{UserID: userID, DisplayName: name})
	}
	return detail, nil
}

// GetUserMatches returns the ended matches that userID took part in,
// newest first.
func (ms *MatchService) GetUserMatches(ctx context.Context, userID string) ([]models.Match, error) {
	return ms.Store.ListEndedByUser(ctx, userID)
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
