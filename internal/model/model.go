// Package model defines domain entities used by services and repositories.
package model

import "time"

// Status is the lifecycle state of a reported issue.
type Status string

// Issue lifecycle states, in workflow order.
const (
	StatusNew                 Status = "new"
	StatusResolving           Status = "resolving"
	StatusResolved            Status = "resolved"
	StatusVerified            Status = "verified"
	StatusResolvedByAuthority Status = "resolved-by-authority"
)

// Account represents a registered resident or council worker.
// The password is stored only as a one-way hash.
type Account struct {
	ID        int64  // assigned by the store, immutable
	Username  string // unique
	PwdHash   []byte // bcrypt hash, never plaintext
	Email     string // unique
	Worker    bool   // council worker flag
	CreatedAt time.Time
}

// Issue is a reported civic problem with a location and lifecycle status.
type Issue struct {
	ID          int64  // assigned by the store, immutable
	Title       string // unique
	Location    string // postal/area code used as a geocoding key
	Description string
	Status      Status
	Image       string // opaque stored-file reference
	Author      string // username of the reporter
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IssueSubmission carries the caller-supplied fields of a new issue.
type IssueSubmission struct {
	Title       string
	Location    string
	Description string
	Status      Status
	Image       string
	Author      string
}
