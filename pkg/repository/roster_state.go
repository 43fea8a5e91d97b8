package repository

import (
	"sync/atomic"

	"github.com/doorbell-dev/doorbell/pkg/domain/model"
)

// RosterState is the in-memory store of organization state. The roster
// synchronizer goroutine is the sole writer; all values are replaced
// wholesale through atomic pointers so readers never need a lock and
// never observe a partial update.
type RosterState struct {
	snapshot  atomic.Pointer[model.RosterSnapshot]
	profile   atomic.Pointer[model.OrgProfile]
	directory atomic.Pointer[model.ChannelDirectory]
}

// NewRosterState creates an empty roster state
func NewRosterState() *RosterState {
	return &RosterState{}
}

// Snapshot returns the current roster snapshot, zero before the first
// successful poll cycle
func (s *RosterState) Snapshot() model.RosterSnapshot {
	if p := s.snapshot.Load(); p != nil {
		return *p
	}
	return model.RosterSnapshot{}
}

// ReplaceSnapshot installs a new roster snapshot
func (s *RosterState) ReplaceSnapshot(snapshot model.RosterSnapshot) {
	s.snapshot.Store(&snapshot)
}

// Profile returns the current organization profile, zero until the
// team-info fetch succeeds
func (s *RosterState) Profile() model.OrgProfile {
	if p := s.profile.Load(); p != nil {
		return *p
	}
	return model.OrgProfile{}
}

// ReplaceProfile installs a new organization profile
func (s *RosterState) ReplaceProfile(profile model.OrgProfile) {
	s.profile.Store(&profile)
}

// ChannelID resolves a channel name against the directory. It returns
// false both when the directory was never populated and when the name is
// absent; the caller distinguishes those using its own restriction
// configuration.
func (s *RosterState) ChannelID(name string) (string, bool) {
	dir := s.directory.Load()
	if dir == nil {
		return "", false
	}
	return dir.ID(name)
}

// DirectoryLoaded reports whether a channel directory fetch has completed
func (s *RosterState) DirectoryLoaded() bool {
	return s.directory.Load() != nil
}

// ReplaceDirectory installs a new channel directory
func (s *RosterState) ReplaceDirectory(dir model.ChannelDirectory) {
	s.directory.Store(&dir)
}
