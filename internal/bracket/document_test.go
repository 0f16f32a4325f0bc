package bracket

import (
	"testing"

	"github.com/AdamBeresnev/tournament-tracker/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fourTeamDocument() Document {
	return Document{
		Teams: []Team{
			{ID: "team_1", Name: "Team A"},
			{ID: "team_2", Name: "Team B"},
			{ID: "team_3", Name: "Team C"},
			{ID: "team_4", Name: "Team D", Seed: utils.Ptr(4), TeamRef: utils.Ptr("2023_mlb_nyy")},
		},
		Rounds: []Round{
			{
				RoundNumber: 1,
				Matches: []Match{
					{MatchID: 1, Team1: utils.Ptr("team_1"), Team2: utils.Ptr("team_4")},
					{MatchID: 2, Team1: utils.Ptr("team_2"), Team2: utils.Ptr("team_3")},
				},
			},
			{
				RoundNumber: 2,
				Matches:     []Match{{MatchID: 3}},
			},
		},
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	doc := fourTeamDocument()

	data, err := doc.Encode()
	require.NoError(t, err)

	decoded, err := DecodeDocument(data)
	require.NoError(t, err)
	assert.Equal(t, doc, decoded)
}

func TestEncodeKeepsNulls(t *testing.T) {
	data, err := fourTeamDocument().Encode()
	require.NoError(t, err)

	assert.Contains(t, string(data), `{"match_id":3,"team1":null,"team2":null,"winner":null}`)
	assert.NotContains(t, string(data), `"seed":null`)
}

func TestEncodeNormalizesEmptyDocument(t *testing.T) {
	data, err := Document{}.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"teams":[],"rounds":[]}`, string(data))

	decoded, err := DecodeDocument(data)
	require.NoError(t, err)
	assert.Equal(t, NewDocument(), decoded)
}

func TestEncodeDoesNotMutateInput(t *testing.T) {
	doc := Document{Rounds: []Round{{RoundNumber: 1}}}
	_, err := doc.Encode()
	require.NoError(t, err)

	assert.Nil(t, doc.Teams)
	assert.Nil(t, doc.Rounds[0].Matches)
}

func TestValidateRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *Document)
	}{
		{"empty team id", func(d *Document) { d.Teams[0].ID = "" }},
		{"duplicate team id", func(d *Document) { d.Teams[1].ID = "team_1" }},
		{"zero round number", func(d *Document) { d.Rounds[0].RoundNumber = 0 }},
		{"duplicate round number", func(d *Document) { d.Rounds[1].RoundNumber = 1 }},
		{"duplicate match id", func(d *Document) { d.Rounds[1].Matches[0].MatchID = 1 }},
		{"unknown team", func(d *Document) { d.Rounds[0].Matches[0].Team2 = utils.Ptr("team_9") }},
		{"winner not in match", func(d *Document) { d.Rounds[0].Matches[0].Winner = utils.Ptr("team_2") }},
		{"winner in empty match", func(d *Document) { d.Rounds[1].Matches[0].Winner = utils.Ptr("team_1") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := fourTeamDocument()
			tt.mutate(&doc)

			err := doc.Validate()
			assert.ErrorIs(t, err, ErrInvalidDocument)

			_, err = doc.Encode()
			assert.ErrorIs(t, err, ErrInvalidDocument)
		})
	}
}

func TestDecodeDocumentRejectsMalformed(t *testing.T) {
	inputs := map[string]string{
		"not json":       `{not json`,
		"wrong shape":    `{"teams": 5, "rounds": []}`,
		"unknown field":  `{"teams": [], "rounds": [], "bonus": true}`,
		"missing rounds": `{"teams": []}`,
		"trailing data":  `{"teams": [], "rounds": []} {}`,
		"invalid winner": `{"teams": [{"id": "a", "name": "A"}], "rounds": [{"round_number": 1, "matches": [{"match_id": 1, "team1": "a", "team2": null, "winner": "b"}]}]}`,
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeDocument([]byte(input))
			assert.Error(t, err)
		})
	}
}

func TestSetWinner(t *testing.T) {
	doc := fourTeamDocument()

	require.NoError(t, doc.SetWinner(1, "team_1"))
	m := doc.Match(1)
	require.NotNil(t, m)
	assert.True(t, m.IsDecided())
	assert.Equal(t, "team_1", *m.Winner)
	assert.Equal(t, "team_4", *m.Loser())

	assert.ErrorIs(t, doc.SetWinner(1, "team_2"), ErrInvalidDocument)
	assert.ErrorIs(t, doc.SetWinner(42, "team_1"), ErrInvalidDocument)
}

func TestCloneIsDeep(t *testing.T) {
	doc := fourTeamDocument()
	c := doc.Clone()

	require.NoError(t, c.SetWinner(2, "team_3"))
	*c.Teams[3].Seed = 1

	assert.Nil(t, doc.Match(2).Winner)
	assert.Equal(t, 4, *doc.Teams[3].Seed)
}
