package model

import "time"

// User is the identity record. The verification code fields are transient
// state shared by the register, resend, forgot-password and reset-password
// flows: a non-nil code always carries a non-nil expiry.
type User struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"` // never JSON-encode
	Roles            []string   `json:"roles"`
	IsVerified       bool       `json:"is_verified"`
	VerificationCode *string    `json:"-"`
	CodeExpiresAt    *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// HasRole reports whether the user's role set intersects the given roles.
func (u *User) HasRole(roles ...string) bool {
	for _, want := range roles {
		for _, have := range u.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Sanitized returns the response-safe view of the user: the password hash,
// verification code and code expiry are never serialized into a body.
func (u *User) Sanitized() map[string]any {
	return map[string]any{
		"id":          u.ID,
		"name":        u.Name,
		"email":       u.Email,
		"roles":       u.Roles,
		"is_verified": u.IsVerified,
		"created_at":  u.CreatedAt,
		"updated_at":  u.UpdatedAt,
	}
}

// CachedUser is the serializable snapshot stored in the cache. Time fields
// round-trip through RFC 3339 JSON, so a cache hit re-hydrates fully typed
// values without manual reconstruction.
type CachedUser struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"password_hash"`
	Roles            []string   `json:"roles"`
	IsVerified       bool       `json:"is_verified"`
	VerificationCode *string    `json:"verification_code"`
	CodeExpiresAt    *time.Time `json:"code_expires_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// ToCached converts the user into its cache snapshot form.
func (u *User) ToCached() CachedUser {
	return CachedUser(*u)
}

// ToUser converts a cache snapshot back into the domain record.
func (c CachedUser) ToUser() *User {
	u := User(c)
	return &u
}
