package models

// Member is a participant in a group.
// Members are immutable once created; a member may belong to several groups.
type Member struct {
	// ID is unique within a group. Registered users use their user ID.
	ID string

	// Name is the display name.
	Name string
}

// Group represents a set of members who share expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Weekend Trip").
	Name string

	// Description is an optional free-form description.
	Description string

	// Category is an optional label such as "Travel" or "Home".
	Category string

	// Members is the ordered member list. Insertion order is membership order.
	Members []Member

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// HasMember reports whether id belongs to one of the group's members.
func (g *Group) HasMember(id string) bool {
	_, ok := g.Member(id)
	return ok
}

// Member returns the member with the given id.
func (g *Group) Member(id string) (Member, bool) {
	for _, m := range g.Members {
		if m.ID == id {
			return m, true
		}
	}
	return Member{}, false
}

// MemberIDs returns member identifiers in membership order.
func (g *Group) MemberIDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.ID
	}
	return ids
}
