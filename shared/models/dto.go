package models

// CreateUserRequest is the body of /users/register and /users/login.
// Login ignores phone and email.
type CreateUserRequest struct {
	Username string  `json:"username" binding:"required"`
	Password string  `json:"password" binding:"required"`
	Phone    *string `json:"phone,omitempty"`
	Email    *string `json:"email,omitempty"`
}

// Certificate is a (username, token) pair proving an active session.
type Certificate struct {
	Username string `json:"username" binding:"required"`
	Token    string `json:"token" binding:"required"`
}
