package auth

import "github.com/fmastery/admin-console/internal/core/common/validation"

// LoginDTO is the transport shape used by the console and the CLI to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate runs the same checks as the login form; failures never reach the network.
func (d LoginDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("email", d.Email).Named("Email").Required().Email()
	v.Field("password", d.Password).Named("Password").Required().MinLength(6)
	return v.Err()
}

// loginRequest is the body the backend expects, with its capitalised keys.
type loginRequest struct {
	Email    string `json:"Email"`
	Password string `json:"Password"`
}
