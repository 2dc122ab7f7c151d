package types

import "time"

// WorkspaceMember links a user to a workspace with a role.
type WorkspaceMember struct {
	UserID   string    `json:"userId"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Workspace groups tasks and the users allowed to work on them.
type Workspace struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	OwnerID     string            `json:"ownerId"`
	Members     []WorkspaceMember `json:"members"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func (w Workspace) EntityID() string { return w.ID }

func (w Workspace) WithEntityID(id string) Workspace {
	w.ID = id
	return w
}

// HasMember reports whether userID is in the member list.
func (w Workspace) HasMember(userID string) bool {
	for _, m := range w.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// MemberIDs returns the member user IDs in list order.
func (w Workspace) MemberIDs() []string {
	ids := make([]string, len(w.Members))
	for i, m := range w.Members {
		ids[i] = m.UserID
	}
	return ids
}
