package domain

import "context"

// Principal is the identity established for a single request.
type Principal struct {
	ID          int64    `json:"id"`
	Username    string   `json:"username"`
	FullName    string   `json:"fullName"`
	Authorities []string `json:"authorities"`
}

// NewPrincipal derives the request principal from a stored user.
func NewPrincipal(u *User) *Principal {
	return &Principal{
		ID:          u.ID,
		Username:    u.Username,
		FullName:    u.FullName,
		Authorities: Authorities(u.Roles),
	}
}

// HasAuthority reports whether the principal was granted the given role.
// The role may be passed with or without the ROLE_ prefix.
func (p *Principal) HasAuthority(role string) bool {
	if p == nil {
		return false
	}
	want := Authorities([]string{role})
	if len(want) == 0 {
		return false
	}
	for _, a := range p.Authorities {
		if a == want[0] {
			return true
		}
	}
	return false
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal set for this request, or nil
// when the request is anonymous.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}
