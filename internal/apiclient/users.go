package apiclient

import (
	"context"
	"net/url"
)

// User is a directory entry as the backend reports it.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Status    string `json:"status"` // CONFIRMED | UNCONFIRMED
	CreatedAt string `json:"createdAt,omitempty"`
}

// CreateUserInput is the admin user creation payload.
type CreateUserInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
}

// ListUsers returns the directory (administrators only).
func (c *Client) ListUsers(ctx context.Context, opts ...CallOption) ([]User, error) {
	var users []User
	if err := c.Get(ctx, "/admin/users", &users, opts...); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser returns one directory entry.
func (c *Client) GetUser(ctx context.Context, id string, opts ...CallOption) (User, error) {
	var user User
	err := c.Get(ctx, "/admin/users/"+url.PathEscape(id), &user, opts...)
	return user, err
}

// CreateUser provisions an account.
func (c *Client) CreateUser(ctx context.Context, in CreateUserInput, opts ...CallOption) (User, error) {
	var user User
	err := c.Post(ctx, "/admin/users", in, &user, opts...)
	return user, err
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id string, opts ...CallOption) error {
	return c.Delete(ctx, "/admin/users/"+url.PathEscape(id), nil, opts...)
}

// ResetUserPassword triggers an administrative password reset.
func (c *Client) ResetUserPassword(ctx context.Context, username string, opts ...CallOption) error {
	return c.Post(ctx, "/admin/users/"+url.PathEscape(username)+"/reset-password", nil, nil, opts...)
}
