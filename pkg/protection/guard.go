package protection

import (
	"fmt"
	"sync"
	"time"
)

// GuardState tracks the session's standing with the blocking policy.
type GuardState int

const (
	StateActive GuardState = iota
	StateWarning
	StateBlocked
)

func (s GuardState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateWarning:
		return "warning"
	case StateBlocked:
		return "blocked"
	}
	return "unknown"
}

// Notice is surfaced to the UI layer whenever the guard changes state.
type Notice struct {
	State          GuardState
	ViolationCount int64
	Remaining      int
	FinalWarning   bool
	Message        string
}

// DefaultSignOutDelay gives the user time to read the blocked notice before
// the forced sign-out fires.
const DefaultSignOutDelay = 5 * time.Second

type GuardConfig struct {
	SignOutDelay time.Duration
	Notify       func(Notice)
	SignOut      func()
}

// SessionGuard reacts to accumulator verdicts: warnings below the threshold,
// a delayed forced sign-out once the account is blocked. Blocked is terminal
// for the session; Reset models a fresh sign-in.
type SessionGuard struct {
	mu      sync.Mutex
	state   GuardState
	delay   time.Duration
	notify  func(Notice)
	signOut func()
	timer   *time.Timer
}

func NewSessionGuard(cfg GuardConfig) *SessionGuard {
	delay := cfg.SignOutDelay
	if delay <= 0 {
		delay = DefaultSignOutDelay
	}
	return &SessionGuard{
		state:   StateActive,
		delay:   delay,
		notify:  cfg.Notify,
		signOut: cfg.SignOut,
	}
}

func (g *SessionGuard) State() GuardState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Apply transitions the guard based on the server's verdict.
func (g *SessionGuard) Apply(res *SubmitResult) {
	if res == nil {
		return
	}

	g.mu.Lock()
	if g.state == StateBlocked {
		g.mu.Unlock()
		return
	}

	var notice Notice
	if res.ShouldBlock {
		g.state = StateBlocked
		notice = Notice{
			State:          StateBlocked,
			ViolationCount: res.ViolationCount,
			Message:        "Your account has been blocked due to repeated security violations. Contact an administrator to regain access.",
		}
		if g.signOut != nil {
			g.timer = time.AfterFunc(g.delay, g.signOut)
		}
	} else {
		g.state = StateWarning
		remaining := res.Threshold - int(res.ViolationCount)
		if remaining < 0 {
			remaining = 0
		}
		final := remaining <= 1
		message := fmt.Sprintf("Security violation recorded. %d more violation(s) will block your account.", remaining)
		if final {
			message = "Final warning: one more security violation will block your account."
		}
		notice = Notice{
			State:          StateWarning,
			ViolationCount: res.ViolationCount,
			Remaining:      remaining,
			FinalWarning:   final,
			Message:        message,
		}
	}
	notify := g.notify
	g.mu.Unlock()

	if notify != nil {
		notify(notice)
	}
}

// ForceSignOut is the immediate path, used when the backend already refuses
// the session (401/403 on a report).
func (g *SessionGuard) ForceSignOut() {
	g.mu.Lock()
	g.state = StateBlocked
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	signOut := g.signOut
	g.mu.Unlock()

	if signOut != nil {
		signOut()
	}
}

// Reset returns the guard to Active after a fresh sign-in.
func (g *SessionGuard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	g.state = StateActive
}
