package domain

// User is the opaque handle the identity provider hands out for a signed-in shopper.
type User struct {
	UID    string         `json:"uid"`
	Email  string         `json:"email"`
	Claims map[string]any `json:"claims,omitempty"`
}

// ClaimTrue reports whether any of the named token claims is set to true.
func (u *User) ClaimTrue(names ...string) bool {
	if u == nil {
		return false
	}
	for _, name := range names {
		if v, ok := u.Claims[name].(bool); ok && v {
			return true
		}
	}
	return false
}
