package rest

import "context"

type Credentials struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

type User struct {
	ID          int    `json:"id"`
	PhoneNumber string `json:"phone_number"`
	UserType    string `json:"user_type"`
	FullName    string `json:"full_name,omitempty"`
	Email       string `json:"email,omitempty"`
}

// BootstrapCSRF primes the cookie jar with a csrftoken before the first
// mutating request. The backend sets the cookie on this read.
func (c *Client) BootstrapCSRF(ctx context.Context) error {
	return c.get(ctx, "/accounts/api/csrf/", nil, nil)
}

func (c *Client) Login(ctx context.Context, creds Credentials) (User, error) {
	var user User
	if err := c.post(ctx, "/accounts/api/login/", creds, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.post(ctx, "/accounts/api/logout/", nil, nil)
}

func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	var user User
	if err := c.get(ctx, "/accounts/api/me/", nil, &user); err != nil {
		return User{}, err
	}
	return user, nil
}
