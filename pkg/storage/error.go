package storage

// NotFoundError is returned when a user record doesn't exist in the store.
type NotFoundError struct {
	UserID string
}

func (e NotFoundError) Error() string {
	if e.UserID == "" {
		return "user record not found"
	}

	return "user record not found: " + e.UserID
}
