package types

import (
	"slices"
	"time"
)

// Team is a named group of users with a leader. The leader is always one of
// the members.
type Team struct {
	TeamID      string     `json:"teamId"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	LeaderID    string     `json:"leaderId"`
	MemberIDs   []string   `json:"memberIds"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

func (t Team) EntityID() string { return t.TeamID }

func (t Team) WithEntityID(id string) Team {
	t.TeamID = id
	return t
}

// HasMember reports whether userID is in the member list.
func (t Team) HasMember(userID string) bool {
	return slices.Contains(t.MemberIDs, userID)
}
