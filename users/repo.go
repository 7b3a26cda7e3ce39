package users

// KnownUsersRepo is the process-wide cache of users seen since startup, keyed by subject id.
type KnownUsersRepo interface {
	Upsert(profile *UserProfile) error
	Get(subjectID string) (*UserProfile, error)
	Delete(subjectID string) error
	Count() int
}
