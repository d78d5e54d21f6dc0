package model

// User is the account returned by the backend after registration.
type User struct {
	ID       *int64 `json:"id,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
