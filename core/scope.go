package core

import (
	"regexp"
	"strings"
)

// scopeGrant is the compiled form of a granted scope entry. Grants come
// in two shapes: a plain entry ("read", "admin.*") compiled as a regular
// expression that must cover the whole requested scope, and a
// "/pattern/flags" entry tested unanchored like a regex literal.
type scopeGrant struct {
	pattern   *regexp.Regexp
	fullMatch bool
}

func (g scopeGrant) matches(requested string) bool {
	if g.pattern == nil {
		return false
	}
	if !g.fullMatch {
		return g.pattern.MatchString(requested)
	}
	loc := g.pattern.FindStringIndex(requested)
	return loc != nil && loc[0] == 0 && loc[1] == len(requested)
}

// parseScopeGrant compiles a granted scope entry. Plain entries are
// compiled as-is, so regex metacharacters in a "literal" scope are live
// pattern syntax. That permits wildcard-like grants ("billing\..*") and
// is relied upon by existing grants; do not anchor or escape here.
func parseScopeGrant(grant string) (scopeGrant, error) {
	if !strings.HasPrefix(grant, "/") {
		pattern, err := regexp.Compile(grant)
		if err != nil {
			return scopeGrant{}, err
		}
		return scopeGrant{pattern: pattern, fullMatch: true}, nil
	}

	segments := strings.Split(grant, "/")
	flags := segments[len(segments)-1]
	body := strings.Join(segments[1:len(segments)-1], "/")
	if inline := inlineFlags(flags); inline != "" {
		body = "(?" + inline + ")" + body
	}
	pattern, err := regexp.Compile(body)
	if err != nil {
		return scopeGrant{}, err
	}
	return scopeGrant{pattern: pattern}, nil
}

// inlineFlags maps the flag characters of a "/pattern/flags" grant onto
// Go inline flag groups. Flags with no Go equivalent are ignored.
func inlineFlags(flags string) string {
	var out strings.Builder
	for _, flag := range flags {
		switch flag {
		case 'i', 'm', 's':
			out.WriteRune(flag)
		}
	}
	return out.String()
}

// ScopeMatches reports whether any granted scope covers the requested
// scope. The first positive grant wins; grants that fail to compile are
// skipped. An empty grant list matches nothing.
func ScopeMatches(granted []string, requested string) bool {
	for _, grant := range granted {
		compiled, err := parseScopeGrant(grant)
		if err != nil {
			continue
		}
		if compiled.matches(requested) {
			return true
		}
	}
	return false
}

// PartitionScopes splits the requested scopes into those covered by the
// user grant or the client grant and those covered by neither. Empty
// entries are skipped entirely.
func PartitionScopes(requested []string, userGrant []string, clientGrant []string) (authorized []string, unauthorized []string) {
	authorized = []string{}
	unauthorized = []string{}
	for _, scope := range requested {
		if scope == "" {
			continue
		}
		if ScopeMatches(userGrant, scope) || ScopeMatches(clientGrant, scope) {
			authorized = append(authorized, scope)
			continue
		}
		unauthorized = append(unauthorized, scope)
	}
	return authorized, unauthorized
}

// CheckScopes partitions the requested scopes and fails when any of them
// is not covered by either grant. The returned error carries the
// offending scopes.
func CheckScopes(requested []string, userGrant []string, clientGrant []string) ([]string, error) {
	authorized, unauthorized := PartitionScopes(requested, userGrant, clientGrant)
	if len(unauthorized) > 0 {
		return nil, scopeNotAuthorizedError(unauthorized)
	}
	return authorized, nil
}
