package middleware

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/huertohogar/storefront-api/internal/core/domain"
)

// Access is the requirement a rule places on a request.
type Access int

const (
	// Authenticated is the zero value, so a rule without an explicit access
	// level requires a principal.
	Authenticated Access = iota
	Public
	RoleRequired
)

func (a Access) String() string {
	switch a {
	case Public:
		return "public"
	case RoleRequired:
		return "role"
	default:
		return "authenticated"
	}
}

// Decision is the outcome of evaluating a request against a Policy.
type Decision int

const (
	Allow Decision = iota
	Unauthenticated
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	default:
		return "allow"
	}
}

// Rule grants access to requests matching Method and Pattern. An empty
// Method matches every verb. Pattern segments are literals, "*" for exactly
// one segment, or a trailing "**" for zero or more segments.
type Rule struct {
	Method  string
	Pattern string
	Access  Access
	Role    string
}

type compiledRule struct {
	Rule
	segments  []string
	literals  int
	stars     int
	tail      bool
	declOrder int
}

// Policy is an ordered set of access rules. The most specific matching rule
// decides; a request no rule matches requires authentication.
type Policy struct {
	rules []compiledRule
}

// NewPolicy compiles rules, rejecting malformed patterns.
func NewPolicy(rules ...Rule) (*Policy, error) {
	p := &Policy{rules: make([]compiledRule, 0, len(rules))}
	for i, r := range rules {
		cr, err := compileRule(r, i)
		if err != nil {
			return nil, err
		}
		p.rules = append(p.rules, cr)
	}
	return p, nil
}

// MustPolicy is NewPolicy for static tables; it panics on a bad pattern.
func MustPolicy(rules ...Rule) *Policy {
	p, err := NewPolicy(rules...)
	if err != nil {
		panic(err)
	}
	return p
}

// DefaultPolicy is the access table of the storefront API.
func DefaultPolicy() *Policy {
	return MustPolicy(
		Rule{Pattern: "/swagger/**", Access: Public},
		Rule{Pattern: "/health", Access: Public},
		Rule{Pattern: "/health/**", Access: Public},
		Rule{Pattern: "/metrics", Access: Public},

		Rule{Method: "POST", Pattern: "/api/auth/register", Access: Public},
		Rule{Method: "POST", Pattern: "/api/auth/login", Access: Public},
		Rule{Method: "POST", Pattern: "/api/auth/signin", Access: Public},
		Rule{Pattern: "/api/auth/me", Access: Authenticated},

		Rule{Method: "GET", Pattern: "/api/products", Access: Public},
		Rule{Method: "GET", Pattern: "/api/products/**", Access: Public},
		Rule{Method: "POST", Pattern: "/api/products", Access: Authenticated},
		Rule{Method: "PUT", Pattern: "/api/products/**", Access: Authenticated},
		Rule{Method: "DELETE", Pattern: "/api/products/**", Access: RoleRequired, Role: domain.RoleAdmin},

		Rule{Pattern: "/api/cart", Access: Authenticated},
		Rule{Pattern: "/api/cart/**", Access: Authenticated},
	)
}

func compileRule(r Rule, order int) (compiledRule, error) {
	if !strings.HasPrefix(r.Pattern, "/") {
		return compiledRule{}, fmt.Errorf("policy pattern %q must start with /", r.Pattern)
	}
	if r.Access == RoleRequired && strings.TrimSpace(r.Role) == "" {
		return compiledRule{}, fmt.Errorf("policy pattern %q requires a role", r.Pattern)
	}
	cr := compiledRule{Rule: r, declOrder: order}
	cr.Method = strings.ToUpper(strings.TrimSpace(r.Method))
	cr.segments = splitPattern(r.Pattern)
	for i, seg := range cr.segments {
		switch seg {
		case "**":
			if i != len(cr.segments)-1 {
				return compiledRule{}, fmt.Errorf("policy pattern %q: ** must be the last segment", r.Pattern)
			}
			cr.tail = true
		case "*":
			cr.stars++
		default:
			cr.literals++
		}
	}
	if cr.tail {
		cr.segments = cr.segments[:len(cr.segments)-1]
	}
	return cr, nil
}

// splitPattern normalizes a rule pattern into segments.
func splitPattern(p string) []string {
	p = path.Clean("/" + p)
	if p == "/" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(p, "/"), "/")
}

// splitRequestPath splits the path exactly as the router sees it. Dot
// segments are not resolved, so they can never move a request onto a
// different rule than the route that serves it.
func splitRequestPath(p string) []string {
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// RoutedPath returns the path echo dispatches on: the escaped form when the
// request carried one, the decoded path otherwise.
func RoutedPath(req *http.Request) string {
	if req.URL.RawPath != "" {
		return req.URL.RawPath
	}
	return req.URL.Path
}

func (r *compiledRule) matches(method string, segs []string) bool {
	if r.Method != "" && r.Method != method {
		return false
	}
	if len(segs) < len(r.segments) || (!r.tail && len(segs) != len(r.segments)) {
		return false
	}
	for i, want := range r.segments {
		if want != "*" && want != segs[i] {
			return false
		}
	}
	return true
}

// moreSpecific reports whether a should win over b.
func moreSpecific(a, b *compiledRule) bool {
	if a.literals != b.literals {
		return a.literals > b.literals
	}
	if a.tail != b.tail {
		return !a.tail
	}
	if a.stars != b.stars {
		return a.stars < b.stars
	}
	if (a.Method != "") != (b.Method != "") {
		return a.Method != ""
	}
	return a.declOrder < b.declOrder
}

// Match returns the rule governing the request, if any. requestPath must be
// the path the router matched on; see RoutedPath.
func (p *Policy) Match(method, requestPath string) (Rule, bool) {
	method = strings.ToUpper(method)
	segs := splitRequestPath(requestPath)

	var best *compiledRule
	for i := range p.rules {
		r := &p.rules[i]
		if !r.matches(method, segs) {
			continue
		}
		if best == nil || moreSpecific(r, best) {
			best = r
		}
	}
	if best == nil {
		return Rule{}, false
	}
	return best.Rule, true
}

// IsPublic reports whether the request needs no identity at all.
func (p *Policy) IsPublic(method, requestPath string) bool {
	r, ok := p.Match(method, requestPath)
	return ok && r.Access == Public
}

// Decide evaluates the request against the table. principal is nil for
// anonymous requests.
func (p *Policy) Decide(method, requestPath string, principal *domain.Principal) Decision {
	r, ok := p.Match(method, requestPath)
	if !ok {
		r = Rule{Access: Authenticated}
	}
	switch r.Access {
	case Public:
		return Allow
	case RoleRequired:
		if principal == nil {
			return Unauthenticated
		}
		if !principal.HasAuthority(r.Role) {
			return Forbidden
		}
		return Allow
	default:
		if principal == nil {
			return Unauthenticated
		}
		return Allow
	}
}
