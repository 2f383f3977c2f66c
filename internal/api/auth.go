package api

import "context"

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Login exchanges credentials for a bearer token. Storing and refreshing
// the token is the caller's concern.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	req, err := c.NewRequest(ctx, "POST", "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return LoginResponse{}, err
	}
	var resp LoginResponse
	if err := c.Do(req, &resp); err != nil {
		return LoginResponse{}, err
	}
	return resp, nil
}
