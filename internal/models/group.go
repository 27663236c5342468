package models

// Group is the scope that owns members, expenses and settlements.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Goa Trip").
	Name string

	// OwnerID is the user who created the group. Only the owner can read or
	// change it.
	OwnerID string

	// Members is the list of members in this group, ordered by creation.
	Members []Member

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Member is a participant in a group.
type Member struct {
	// ID is the unique identifier for the member (UUID format).
	ID string

	// GroupID is the group this member belongs to.
	GroupID string

	// DisplayName is the name shown for this member. Not required to be unique.
	DisplayName string

	// CreatedAt is the Unix timestamp when the member was added.
	CreatedAt int64
}

// MemberIDs returns the IDs of the group's members in order.
func (g *Group) MemberIDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.ID
	}
	return ids
}

// HasMember reports whether memberID belongs to the group.
func (g *Group) HasMember(memberID string) bool {
	for _, m := range g.Members {
		if m.ID == memberID {
			return true
		}
	}
	return false
}

// MemberNames maps member ID to display name.
func (g *Group) MemberNames() map[string]string {
	names := make(map[string]string, len(g.Members))
	for _, m := range g.Members {
		names[m.ID] = m.DisplayName
	}
	return names
}
