package service

import (
	"context"
	"fmt"

	"github.com/AdamBeresnev/tournament-tracker/internal/bracket"
)

// RecordMatchWinner loads a tournament, sets the winner of one match and
// writes it back guarded by the loaded revision, so a concurrent edit makes
// this fail with ErrConflict instead of being overwritten. A created
// tournament moves to in_progress. The winner is not carried into later
// rounds.
func (s *TournamentService) RecordMatchWinner(ctx context.Context, tournamentID int64, matchID int, teamID string) (*bracket.Tournament, error) {
	t, err := s.LoadTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	if t.Status == bracket.StatusFinished {
		return nil, fmt.Errorf("record winner: %w: tournament %d is finished", bracket.ErrInvalidTransition, tournamentID)
	}

	doc := t.Data.Clone()
	match := doc.Match(matchID)
	if match == nil {
		return nil, &ValidationError{Field: "match_id", Err: fmt.Errorf("match %d not found", matchID)}
	}
	if match.Winner != nil && *match.Winner != teamID {
		return nil, &ValidationError{Field: "winner", Err: fmt.Errorf("match %d already won by %q", matchID, *match.Winner)}
	}
	if err := doc.SetWinner(matchID, teamID); err != nil {
		return nil, &ValidationError{Field: "winner", Err: err}
	}

	status := t.Status
	if status == bracket.StatusCreated {
		status = bracket.StatusInProgress
	}

	return s.UpdateTournamentIfRevision(ctx, tournamentID, t.Revision, doc, status)
}
