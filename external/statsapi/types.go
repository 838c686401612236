package statsapi

// TeamForm summarizes recent results for one team, newest first.
type TeamForm struct {
	TeamID      string   `json:"team_id"`
	Results     []string `json:"results"` // "W", "D", "L"
	GoalsFor    int      `json:"goals_for"`
	GoalsAgainst int     `json:"goals_against"`
	Unavailable []string `json:"unavailable,omitempty"` // injured or suspended players
}

// HeadToHead is the meeting history between two teams.
type HeadToHead struct {
	TeamA     string `json:"team_a"`
	TeamB     string `json:"team_b"`
	Played    int    `json:"played"`
	WinsA     int    `json:"wins_a"`
	WinsB     int    `json:"wins_b"`
	Draws     int    `json:"draws"`
	LastScore string `json:"last_score,omitempty"`
}

// Standing is one league-table row.
type Standing struct {
	TeamID         string `json:"team_id"`
	League         string `json:"league"`
	Season         string `json:"season"`
	Position       int    `json:"position"`
	Played         int    `json:"played"`
	Points         int    `json:"points"`
	GoalDifference int    `json:"goal_difference"`
}

type formEnvelope struct {
	Data TeamForm `json:"data"`
}

type headToHeadEnvelope struct {
	Data HeadToHead `json:"data"`
}

type standingEnvelope struct {
	Data Standing `json:"data"`
}
