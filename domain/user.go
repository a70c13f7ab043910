package domain

// User is the durable identity attached to a live connection at
// authentication time.
type User struct {
	ID   string
	Name string
}
