package session

import (
	"sync"

	"github.com/kbukum/rpckit/channel"
)

// Settings is a mutable holder for per-project client defaults. Safe for
// concurrent use.
type Settings struct {
	mu sync.RWMutex

	project      string
	profile      string
	callLogPath  string
	extraOptions []channel.Option
}

// NewSettings creates a settings holder for the given project.
func NewSettings(project string) *Settings {
	return &Settings{project: project}
}

// Project returns the active project name.
func (s *Settings) Project() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.project
}

// SetProject sets the active project name without touching other defaults.
func (s *Settings) SetProject(project string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.project = project
}

// Profile returns the default channel profile name.
func (s *Settings) Profile() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// SetProfile sets the default channel profile name.
func (s *Settings) SetProfile(profile string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = profile
}

// CallLogPath returns the default call log destination.
func (s *Settings) CallLogPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.callLogPath
}

// SetCallLogPath sets the default call log destination.
func (s *Settings) SetCallLogPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callLogPath = path
}

// ExtraOptions returns a copy of the default extra channel options.
func (s *Settings) ExtraOptions() []channel.Option {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]channel.Option, len(s.extraOptions))
	copy(out, s.extraOptions)
	return out
}

// SetExtraOptions replaces the default extra channel options.
func (s *Settings) SetExtraOptions(opts []channel.Option) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extraOptions = append([]channel.Option(nil), opts...)
}

// ResetTo switches the session to project, clearing all stored defaults.
// Resetting to the project already active is a no-op: every default is
// preserved.
func (s *Settings) ResetTo(project string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == project {
		return
	}
	s.project = project
	s.profile = ""
	s.callLogPath = ""
	s.extraOptions = nil
}
