package bracket

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/AdamBeresnev/tournament-tracker/internal/utils"
)

var ErrInvalidDocument = errors.New("invalid bracket document")

// Document is the bracket payload stored with each tournament.
type Document struct {
	Teams  []Team  `json:"teams"`
	Rounds []Round `json:"rounds"`
}

func NewDocument() Document {
	return Document{Teams: []Team{}, Rounds: []Round{}}
}

// Normalize replaces nil slices with empty ones so an encoded document
// always has arrays where a decoded one will.
func (d *Document) Normalize() {
	if d.Teams == nil {
		d.Teams = []Team{}
	}
	if d.Rounds == nil {
		d.Rounds = []Round{}
	}
	for i := range d.Rounds {
		if d.Rounds[i].Matches == nil {
			d.Rounds[i].Matches = []Match{}
		}
	}
}

func (d Document) Validate() error {
	teams := make(map[string]bool, len(d.Teams))
	for i, t := range d.Teams {
		if t.ID == "" {
			return fmt.Errorf("%w: team %d has an empty id", ErrInvalidDocument, i)
		}
		if teams[t.ID] {
			return fmt.Errorf("%w: duplicate team id %q", ErrInvalidDocument, t.ID)
		}
		teams[t.ID] = true
	}

	rounds := make(map[int]bool, len(d.Rounds))
	matches := make(map[int]bool)
	for _, r := range d.Rounds {
		if r.RoundNumber <= 0 {
			return fmt.Errorf("%w: round number %d must be positive", ErrInvalidDocument, r.RoundNumber)
		}
		if rounds[r.RoundNumber] {
			return fmt.Errorf("%w: duplicate round number %d", ErrInvalidDocument, r.RoundNumber)
		}
		rounds[r.RoundNumber] = true

		for _, m := range r.Matches {
			if matches[m.MatchID] {
				return fmt.Errorf("%w: duplicate match id %d", ErrInvalidDocument, m.MatchID)
			}
			matches[m.MatchID] = true

			for _, slot := range []*string{m.Team1, m.Team2} {
				if slot != nil && !teams[*slot] {
					return fmt.Errorf("%w: match %d references unknown team %q", ErrInvalidDocument, m.MatchID, *slot)
				}
			}
			if m.Winner != nil && !m.HasTeam(*m.Winner) {
				return fmt.Errorf("%w: match %d winner %q is not in the match", ErrInvalidDocument, m.MatchID, *m.Winner)
			}
		}
	}
	return nil
}

// Encode validates and serializes a normalized copy of the document.
func (d Document) Encode() ([]byte, error) {
	c := d.Clone()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(c)
}

// DecodeDocument parses stored JSON strictly: unknown keys, trailing data
// and shape errors are all rejected, then the result is validated.
func DecodeDocument(data []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var d Document
	if err := dec.Decode(&d); err != nil {
		return Document{}, fmt.Errorf("decode bracket document: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Document{}, fmt.Errorf("decode bracket document: trailing data")
	}
	if d.Teams == nil || d.Rounds == nil {
		return Document{}, fmt.Errorf("%w: teams and rounds are required", ErrInvalidDocument)
	}
	d.Normalize()
	if err := d.Validate(); err != nil {
		return Document{}, err
	}
	return d, nil
}

// Match returns the match with the given id, or nil.
func (d *Document) Match(matchID int) *Match {
	for i := range d.Rounds {
		for j := range d.Rounds[i].Matches {
			if d.Rounds[i].Matches[j].MatchID == matchID {
				return &d.Rounds[i].Matches[j]
			}
		}
	}
	return nil
}

// SetWinner records teamID as the winner of a match. It does not move the
// team into a later round; that is left to whoever builds the bracket.
func (d *Document) SetWinner(matchID int, teamID string) error {
	m := d.Match(matchID)
	if m == nil {
		return fmt.Errorf("%w: match %d not found", ErrInvalidDocument, matchID)
	}
	if !m.HasTeam(teamID) {
		return fmt.Errorf("%w: team %q is not part of match %d", ErrInvalidDocument, teamID, matchID)
	}
	winner := teamID
	m.Winner = &winner
	return nil
}

// Clone returns a normalized deep copy, so callers can edit a loaded
// document without touching the original.
func (d Document) Clone() Document {
	out := Document{
		Teams:  make([]Team, len(d.Teams)),
		Rounds: make([]Round, len(d.Rounds)),
	}
	for i, t := range d.Teams {
		out.Teams[i] = Team{ID: t.ID, Name: t.Name, Seed: utils.Clone(t.Seed), TeamRef: utils.Clone(t.TeamRef)}
	}
	for i, r := range d.Rounds {
		matches := make([]Match, len(r.Matches))
		for j, m := range r.Matches {
			matches[j] = Match{
				MatchID: m.MatchID,
				Team1:   utils.Clone(m.Team1),
				Team2:   utils.Clone(m.Team2),
				Winner:  utils.Clone(m.Winner),
			}
		}
		out.Rounds[i] = Round{RoundNumber: r.RoundNumber, Matches: matches}
	}
	return out
}
