package bracket

// Match pairs two team slots. Slots stay nil until a team is known, and
// Winner stays nil until the match is decided. All three are always
// serialized so a null survives a round trip.
type Match struct {
	MatchID int     `json:"match_id"`
	Team1   *string `json:"team1"`
	Team2   *string `json:"team2"`
	Winner  *string `json:"winner"`
}

type Round struct {
	RoundNumber int     `json:"round_number"`
	Matches     []Match `json:"matches"`
}

func (m *Match) IsDecided() bool {
	return m.Winner != nil
}

// HasTeam reports whether teamID occupies either slot.
func (m *Match) HasTeam(teamID string) bool {
	return (m.Team1 != nil && *m.Team1 == teamID) || (m.Team2 != nil && *m.Team2 == teamID)
}

// Loser returns the other team once the match is decided.
func (m *Match) Loser() *string {
	if m.Winner == nil || m.Team1 == nil || m.Team2 == nil {
		return nil
	}
	if *m.Winner == *m.Team1 {
		return m.Team2
	}
	return m.Team1
}
