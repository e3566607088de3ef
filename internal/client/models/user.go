// Package models defines the client-side data models exchanged with the shop
// API and cached locally.
package models

import "strings"

// User is the authenticated account's profile as returned by
// GET /api/users/profile/ and, optionally, by the login endpoint.
type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Role        string `json:"role,omitempty"`
	IsStaff     bool   `json:"is_staff,omitempty"`
	IsSuperuser bool   `json:"is_superuser,omitempty"`
	IsActive    bool   `json:"is_active,omitempty"`
}

// DisplayName returns "First Last (username)" or just the username when no
// name is set.
func (u *User) DisplayName() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full == "" {
		return u.Username
	}
	return full + " (" + u.Username + ")"
}
