// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package auth provides authentication for the modmcp bridge: a JWT bearer
// authenticator, the Identity type it produces, and the HTTP middleware that
// gates inbound requests.
package auth

import (
	"fmt"
	"slices"
)

// Identity represents the authenticated principal associated with a request.
// It is created by an Authenticator from validated credentials and is never
// constructed downstream. An Identity is immutable and lives for one request.
type Identity struct {
	// ID is the unique identifier for the principal.
	ID string

	// Kind classifies the principal (e.g. "user", "service").
	Kind string

	// Roles are the roles granted to this identity, in claim order.
	Roles []string

	// Attrs carries extra claims copied verbatim from the credential.
	Attrs map[string]any
}

// HasRole reports whether the identity carries the given role.
func (i *Identity) HasRole(role string) bool {
	return i != nil && slices.Contains(i.Roles, role)
}

// String returns a representation safe for logging; attribute values are
// never included since they may carry credential material.
func (i *Identity) String() string {
	if i == nil {
		return "<nil>"
	}
	return fmt.Sprintf("Identity{ID:%q, Kind:%q}", i.ID, i.Kind)
}
