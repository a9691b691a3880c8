// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"strings"
	"time"
)

// User is a marketplace account. The ID is the identity provider UID and doubles
// as the document key of the profile.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Phone        string    `json:"phone"`
	VesselIMO    string    `json:"vesselIMO"`
	VesselMMSI   string    `json:"vesselMMSI"`
	Role         Role      `json:"role"`
	ProfilePhoto string    `json:"profilePhoto"` // download URL
	Ports        []Port    `json:"ports"`        // first one is primary
	FCMTokens    []string  `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// DisplayName returns the user's full name, falling back to the email.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name == "" {
		return u.Email
	}

	return name
}

// PrimaryPort returns the first associated port.
func (u *User) PrimaryPort() (Port, bool) {
	if len(u.Ports) == 0 {
		return Port{}, false
	}

	return u.Ports[0], true
}

// HasPort reports whether the user is associated with the given port.
func (u *User) HasPort(portID string) bool {
	for _, p := range u.Ports {
		if p.ID == portID {
			return true
		}
	}

	return false
}

// Clone returns a deep copy of the user.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}

	cp := *u
	cp.Ports = append([]Port(nil), u.Ports...)
	cp.FCMTokens = append([]string(nil), u.FCMTokens...)

	return &cp
}
