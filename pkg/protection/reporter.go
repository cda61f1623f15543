package protection

import (
	"context"
	"errors"
	"strings"
)

const adminRole = "ADMIN"

// Session describes the authenticated browser session the reporter serves.
type Session struct {
	Token string
	Role  string
	Path  string
}

// Admin pages and the sign-in/sign-up flow are never protected.
var defaultExcludedPrefixes = []string{"/admin", "/auth"}

// Reporter wires detected interactions to the ingestion endpoint and feeds
// the outcome to the session guard. Detection handlers stay synchronous; the
// network call is fire-and-forget.
type Reporter struct {
	client   *Client
	guard    *SessionGuard
	excluded []string
	onError  func(error)
}

func NewReporter(client *Client, guard *SessionGuard, onError func(error)) *Reporter {
	return &Reporter{
		client:   client,
		guard:    guard,
		excluded: defaultExcludedPrefixes,
		onError:  onError,
	}
}

// Active reports whether protection applies to the session: authenticated,
// not an admin, and not on an excluded page.
func (r *Reporter) Active(sess Session) bool {
	if sess.Token == "" || sess.Role == adminRole {
		return false
	}
	for _, prefix := range r.excluded {
		if strings.HasPrefix(sess.Path, prefix) {
			return false
		}
	}
	return true
}

// HandleEvent classifies ev and, when it is a protected interaction,
// dispatches the report asynchronously. It returns true when the event's
// default UI action must be suppressed.
func (r *Reporter) HandleEvent(sess Session, ev InputEvent) bool {
	if !r.Active(sess) {
		return false
	}

	rep, ok := Classify(ev)
	if !ok {
		return false
	}

	go r.Report(context.Background(), sess, rep)
	return true
}

// Report submits synchronously. A 401/403 means the account is already
// blocked: credentials are dropped on the spot via the guard. Any other
// failure is surfaced and otherwise swallowed; a lost report is an accepted
// loss, never retried.
func (r *Reporter) Report(ctx context.Context, sess Session, rep Report) {
	res, err := r.client.Submit(ctx, sess.Token, rep)
	if err != nil {
		if errors.Is(err, ErrBlocked) {
			r.guard.ForceSignOut()
			return
		}
		if r.onError != nil {
			r.onError(err)
		}
		return
	}
	r.guard.Apply(res)
}
