package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AdamBeresnev/tournament-tracker/internal/bracket"
	"github.com/AdamBeresnev/tournament-tracker/internal/store"
	"github.com/AdamBeresnev/tournament-tracker/internal/utils"
)

type RosterService struct {
	refs *store.ReferenceStore
}

func NewRosterService(refs *store.ReferenceStore) *RosterService {
	return &RosterService{refs: refs}
}

// ParseRoster turns newline separated entries into bracket teams, seeded in
// the order given. An entry matching a team id or abbreviation in the
// league's reference data is linked to it; anything else is kept as a plain
// name.
func (s *RosterService) ParseRoster(ctx context.Context, league string, entries string) ([]bracket.Team, error) {
	var teams []bracket.Team
	linked := map[string]bool{}

	for _, line := range strings.Split(entries, "\n") {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}

		seed := len(teams) + 1
		team := bracket.Team{
			ID:   fmt.Sprintf("team_%d", seed),
			Name: name,
			Seed: utils.Ptr(seed),
		}

		ref, err := s.refs.FindTeam(ctx, league, name)
		switch {
		case err == nil:
			if linked[ref.TeamID] {
				return nil, &ValidationError{Field: "roster", Err: fmt.Errorf("team %s listed twice", ref.TeamID)}
			}
			linked[ref.TeamID] = true
			team.Name = ref.Location + " " + ref.Nickname
			team.TeamRef = utils.Ptr(ref.TeamID)
		case !errors.Is(err, store.ErrNotFound):
			return nil, fmt.Errorf("parse roster: %w", err)
		}

		teams = append(teams, team)
	}

	if len(teams) == 0 {
		return nil, &ValidationError{Field: "roster", Err: ErrFieldBlank}
	}
	return teams, nil
}
