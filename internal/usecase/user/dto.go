package user

// UserRequest represents the request payload for creating or updating a user.
// Fields are pointers so an absent field (nil) can be told apart from a
// present one during a partial update.
type UserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// UserResponse represents a user DTO for API responses.
type UserResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
