// Package session carries the bearer credential explicitly through every
// remote operation instead of reading it from ambient storage.
package session

// AnonymousToken is the literal sent as the bearer value when no token is
// cached. The API rejects it; requests are still attempted with it.
const AnonymousToken = "null"

// Session is an immutable snapshot of the caller's credential. The zero
// value is the anonymous session.
type Session struct {
	token string
}

// Anonymous returns the session used before login and after logout.
func Anonymous() Session { return Session{} }

// New returns an authenticated session for token. An empty token yields
// the anonymous session.
func New(token string) Session { return Session{token: token} }

// Authenticated reports whether the session holds a token.
func (s Session) Authenticated() bool { return s.token != "" }

// Token returns the raw token, or "" when anonymous.
func (s Session) Token() string { return s.token }

// Bearer returns the Authorization header value for this session.
func (s Session) Bearer() string {
	if s.token == "" {
		return "Bearer " + AnonymousToken
	}
	return "Bearer " + s.token
}
