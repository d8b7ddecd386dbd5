// Package domain contains entity without logic, just meta-data
package domain

import "errors"

const MaxUserIDLen = 64

var ErrUserIDEmpty = errors.New("user id empty")

// UserID is the identity the client supplies on authenticate. The relay
// trusts it as-is; real authorization lives in the hosted backend.
type UserID string

// ConnID identifies one live transport connection. Assigned by the
// transport adapter on upgrade, never by the client.
type ConnID string

func (id UserID) Validate() error {
	if id == "" {
		return ErrUserIDEmpty
	}
	if len(id) > MaxUserIDLen {
		return errors.New("user id too long")
	}
	return nil
}
