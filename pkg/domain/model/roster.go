package model

// SlackBotID is the well-known member ID of the built-in slackbot.
// Slack reports it as a regular member (is_bot is false on it), so it has
// to be excluded by ID.
const SlackBotID = "USLACKBOT"

// PresenceActive is the presence value reported for members currently online
const PresenceActive = "active"

// OrgProfile holds the displayable identity of the organization.
// LogoURL is empty when the workspace uses the default icon.
type OrgProfile struct {
	Name    string
	LogoURL string
}

// RosterSnapshot is an immutable view of the computed roster counts at a
// point in time. It is replaced wholesale, never mutated in place.
type RosterSnapshot struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}

// Member is a transient representation of one organization member within a
// single poll cycle. Members are not retained beyond the cycle that
// fetched them.
type Member struct {
	ID       string
	IsBot    bool
	Deleted  bool
	Presence string
}

// Countable reports whether the member counts toward the roster. Bots,
// deleted members and slackbot are excluded.
func (m Member) Countable() bool {
	return m.ID != SlackBotID && !m.IsBot && !m.Deleted
}

// CountMembers filters the member list and computes the roster snapshot
func CountMembers(members []Member) RosterSnapshot {
	var snapshot RosterSnapshot
	for _, m := range members {
		if !m.Countable() {
			continue
		}
		snapshot.Total++
		if m.Presence == PresenceActive {
			snapshot.Active++
		}
	}
	return snapshot
}

// Channel represents one entry of the organization's channel listing
type Channel struct {
	ID   string
	Name string
}

// ChannelDirectory maps channel names (case-sensitive, unique) to channel
// IDs. A directory is built once from a full listing and replaced
// wholesale so readers never observe a half-built map.
type ChannelDirectory map[string]string

// NewChannelDirectory builds a directory from a full channel listing
func NewChannelDirectory(channels []Channel) ChannelDirectory {
	dir := make(ChannelDirectory, len(channels))
	for _, ch := range channels {
		dir[ch.Name] = ch.ID
	}
	return dir
}

// ID looks up a channel ID by name. A missing name is not an error.
func (d ChannelDirectory) ID(name string) (string, bool) {
	id, ok := d[name]
	return id, ok
}
