package sos

import "context"

// Login attempts to authenticate with the credentials in data
func (c *Client) Login(ctx context.Context, function string, data any) (map[string]any, error) {
	return c.Call(ctx, "login", function, data)
}

// Logout ends the remote session. It carries no payload.
func (c *Client) Logout(ctx context.Context) (map[string]any, error) {
	return c.get(ctx, "logout")
}

// Classification retrieves grades
func (c *Client) Classification(ctx context.Context, function string, data any) (map[string]any, error) {
	return c.Call(ctx, "classification", function, data)
}

// Inout retrieves building entry records
func (c *Client) Inout(ctx context.Context, function string, data any) (map[string]any, error) {
	return c.Call(ctx, "inout", function, data)
}

// St retrieves attendance
func (c *Client) St(ctx context.Context, function string, data any) (map[string]any, error) {
	return c.Call(ctx, "st", function, data)
}

// Tp retrieves attendance summaries
func (c *Client) Tp(ctx context.Context, function string, data any) (map[string]any, error) {
	return c.Call(ctx, "tp", function, data)
}

// Info looks up a user by card id
func (c *Client) Info(ctx context.Context, function string, data any) (map[string]any, error) {
	return c.Call(ctx, "info", function, data)
}

func (c *Client) Classbook(ctx context.Context, function string, data any) (map[string]any, error) {
	return c.Call(ctx, "classbook", function, data)
}
