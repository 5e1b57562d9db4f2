package user

// User represents a user entity in the system.
type User struct {
	ID       string `json:"id"`       // ID is the server-generated identifier, immutable once set
	Name     string `json:"name"`     // Name is the full name of the user
	Email    string `json:"email"`    // Email is the unique email address of the user
	Password string `json:"password"` // Password is stored as provided
}

// TypeName is the entity type reported in not-found messages.
const TypeName = "User"

// HasID reports whether the user has been assigned an identifier by the store.
func (u *User) HasID() bool {
	return u != nil && u.ID != ""
}

// Clone returns a shallow copy of the user.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
