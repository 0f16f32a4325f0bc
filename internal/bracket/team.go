package bracket

// Team is one participant listed in a bracket document. TeamRef, when set,
// matches a Teams.team_id row by convention only.
type Team struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Seed    *int    `json:"seed,omitempty"`
	TeamRef *string `json:"team_ref,omitempty"`
}
