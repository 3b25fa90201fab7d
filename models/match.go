package models

// MatchesTable is the DynamoDB table name for match documents
const MatchesTable = "Matches"

// Match statuses
const (
	StatusPending = "pending"
	StatusStarted = "started"
	StatusEnded   = "ended"
)

// Winner values, set exactly once when a match ends
const (
	WinnerTeamA = "A"
	WinnerTeamB = "B"
	WinnerDraw  = "draw"
)

// Team is the closed two-team discriminator. Anything that is not TeamA or
// TeamB must be rejected at the boundary via ParseTeam.
type Team string

const (
	TeamA Team = "A"
	TeamB Team = "B"
)

// ParseTeam converts the wire discriminator into a Team.
func ParseTeam(s string) (Team, bool) {
	switch Team(s) {
	case TeamA, TeamB:
		return Team(s), true
	default:
		return "", false
	}
}

// Match is the persisted match document. PinHash is excluded from every
// JSON projection; the plaintext PIN is only ever disclosed once, inside
// the creation response.
type Match struct {
	MatchID   string   `dynamodbav:"matchId" json:"matchId"`
	HostID    string   `dynamodbav:"hostId" json:"hostId"`
	Name      string   `dynamodbav:"name" json:"name"`
	Sport     string   `dynamodbav:"sport" json:"sport"`
	Status    string   `dynamodbav:"status" json:"status"` // pending, started, ended
	TeamA     []string `dynamodbav:"teamA" json:"teamA"`
	TeamB     []string `dynamodbav:"teamB" json:"teamB"`
	ScoreA    int      `dynamodbav:"scoreA" json:"scoreA"`
	ScoreB    int      `dynamodbav:"scoreB" json:"scoreB"`
	Winner    string   `dynamodbav:"winner,omitempty" json:"winner,omitempty"` // A, B, draw; empty until ended
	PinHash   string   `dynamodbav:"pinHash" json:"-"`
	CreatedAt string   `dynamodbav:"createdAt" json:"createdAt"`
	StartedAt string   `dynamodbav:"startedAt,omitempty" json:"startedAt,omitempty"`
	EndedAt   string   `dynamodbav:"endedAt,omitempty" json:"endedAt,omitempty"`
}

// HasParticipant reports whether userID is on either roster.
func (m *Match) HasParticipant(userID string) bool {
	for _, id := range m.TeamA {
		if id == userID {
			return true
		}
	}
	for _, id := range m.TeamB {
		if id == userID {
			return true
		}
	}
	return false
}

// Participant pairs a roster user id with its resolved display name.
type Participant struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

// MatchDetail is the full match projection with rosters resolved to
// display names.
type MatchDetail struct {
	Match
	TeamAMembers []Participant `json:"teamAMembers"`
	TeamBMembers []Participant `json:"teamBMembers"`
}
