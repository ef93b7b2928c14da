package review

// Repository persists review sessions and the profile they are evaluated
// against. Sessions are stored one self-contained document per session and
// replaced wholesale on every write, so recovery only ever needs to read the
// latest document.
type Repository interface {
	SaveSession(session *Session) error
	LoadSession(id string) (*Session, error)
	ListSessions() ([]string, error)
	// ArchiveSession moves a completed or abandoned session out of the
	// active set. Archived sessions are kept, never deleted.
	ArchiveSession(id string) error

	SaveProfile(p *Profile) error
	LoadProfile() (*Profile, error)
}
