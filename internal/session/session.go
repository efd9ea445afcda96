// Package session holds the per-process shell session and the controller
// driving the signup, login and logout flows against the credential store.
package session

import (
	"github.com/google/uuid"
)

// State is the authentication state of a [Session].
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// Session is the mutable state of one interactive shell. It is created once
// per process and handed to every command explicitly.
type Session struct {
	id      string
	user    string
	cwd     string
	home    string
	showDir bool
}

// New returns a pointer to a new anonymous [Session] starting in cwd.
func New(cwd, home string) *Session {
	return &Session{
		id:   uuid.NewString(),
		cwd:  cwd,
		home: home,
	}
}

// ID returns the unique identifier of the session, used in logs.
func (s *Session) ID() string {
	return s.id
}

// State returns the current authentication state.
func (s *Session) State() State {
	if s.user == "" {
		return Anonymous
	}

	return Authenticated
}

// User returns the name of the authenticated user, if any.
func (s *Session) User() (string, bool) {
	return s.user, s.user != ""
}

// Cwd returns the current working directory of the session.
func (s *Session) Cwd() string {
	return s.cwd
}

// Chdir replaces the current working directory. Only the `cd` command calls it.
func (s *Session) Chdir(path string) {
	s.cwd = path
}

// Home returns the home directory of the session.
func (s *Session) Home() string {
	return s.home
}

// ShowDir reports whether the prompt includes the working directory.
func (s *Session) ShowDir() bool {
	return s.showDir
}

// SetShowDir sets whether the prompt includes the working directory.
func (s *Session) SetShowDir(show bool) {
	s.showDir = show
}

func (s *Session) authenticate(username string) {
	s.user = username
}

func (s *Session) clear() {
	s.user = ""
}
