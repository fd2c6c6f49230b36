package model

// Team status values.
const (
	TeamAvailable = "disponível"
	TeamOnMission = "em missão"
)

// Team is one response unit with a fixed home base.
type Team struct {
	ID     int    `json:"id"`
	Name   string `json:"nome"`
	Base   string `json:"base"`
	Status string `json:"status"`
}

// Available reports whether the team can take a new assignment.
func (t Team) Available() bool { return t.Status == TeamAvailable }

// ActionHistoryEntry is one recorded action of a team. Entries arrive from
// the backend most recent first and are never re-sorted by the client.
type ActionHistoryEntry struct {
	TeamID      int    `json:"team_id"`
	EmergencyID int    `json:"emergency_id"`
	Action      string `json:"action"`
	Timestamp   string `json:"timestamp"`
}
