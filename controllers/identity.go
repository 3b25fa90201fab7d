package controllers

import (
	"net/http"
)

// Identity is the authenticated caller as asserted by the upstream
// identity gateway. The gateway terminates credentials and forwards the
// verified user as headers; this server never sees passwords or tokens.
type Identity struct {
	UserID      string
	DisplayName string
}

// IdentityFromRequest extracts the caller identity placed by the identity
// gateway. ok is false when the request carries no user id.
func IdentityFromRequest(r *http.Request) (Identity, bool) {
	id := Identity{
		UserID:      r.Header.Get("X-User-Id"),
		DisplayName: r.Header.Get("X-User-Name"),
	}
	if id.UserID == "" {
		return Identity{}, false
	}
	if id.DisplayName == "" {
		id.DisplayName = id.UserID
	}
	return id, true
}
