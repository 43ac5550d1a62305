package access

import (
	"net/url"
	"slices"

	domainauth "github.com/campushub/eventhub/internal/domain/auth"
)

// State is the classification a request reaches in the decision sequence.
type State string

const (
	StatePublic               State = "PUBLIC"
	StateUnauthenticated      State = "UNAUTHENTICATED"
	StateIncomplete           State = "AUTHENTICATED_INCOMPLETE"
	StateCompleteUnauthorized State = "AUTHENTICATED_COMPLETE_UNAUTHORIZED"
	StateAuthorized           State = "AUTHORIZED"
	StateStatic               State = "STATIC"
)

// Outcome is the terminal result of a decision.
type Outcome string

const (
	Allow    Outcome = "ALLOW"
	Redirect Outcome = "REDIRECT"
)

// Decision is what the gate concluded for one request.
type Decision struct {
	State   State
	Outcome Outcome
	// Target is set when Outcome is Redirect.
	Target string
}

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool { return d.Outcome == Allow }

// Cause maps a redirecting decision to the error taxonomy. Allowed decisions return nil.
func (d Decision) Cause() error {
	if d.Outcome == Allow {
		return nil
	}
	switch d.State {
	case StateUnauthenticated:
		return domainauth.ErrUnauthenticated
	case StateIncomplete:
		return domainauth.ErrIncompleteProfile
	case StateCompleteUnauthorized:
		return domainauth.ErrUnauthorized
	default:
		return nil
	}
}

// Gate decides access for request paths against a validated RouteTable.
type Gate struct {
	routes RouteTable
}

// NewGate validates the table and returns a Gate.
func NewGate(routes RouteTable) (*Gate, error) {
	if err := routes.Validate(); err != nil {
		return nil, err
	}
	return &Gate{routes: routes}, nil
}

// Routes returns the table the gate was built with.
func (g *Gate) Routes() RouteTable { return g.routes }

// Decide runs the decision sequence for a request path. tok is nil when the
// request carries no valid session token. The result depends only on its inputs.
func (g *Gate) Decide(reqPath string, tok *domainauth.Token) Decision {
	if g.routes.IsStatic(reqPath) {
		return Decision{State: StateStatic, Outcome: Allow}
	}

	p := normalizePath(reqPath)
	if g.routes.isPublic(p) {
		return Decision{State: StatePublic, Outcome: Allow}
	}

	if tok == nil {
		// Never redirect the sign-in page to itself.
		if matchPrefix(p, SignupPath) {
			return Decision{State: StateUnauthenticated, Outcome: Allow}
		}
		return Decision{State: StateUnauthenticated, Outcome: Redirect, Target: SignupRedirect(reqPath)}
	}

	if !tok.IsProfileComplete && !g.routes.isCompletionExempt(p) {
		return Decision{State: StateIncomplete, Outcome: Redirect, Target: CompletePath}
	}

	if roles := g.routes.RequiredRoles(p); roles != nil && !slices.Contains(roles, tok.Role) {
		return Decision{State: StateCompleteUnauthorized, Outcome: Redirect, Target: ForbiddenPath}
	}

	return Decision{State: StateAuthorized, Outcome: Allow}
}

// SignupRedirect builds the sign-in redirect that returns the user to callback afterwards.
func SignupRedirect(callback string) string {
	if callback == "" || callback == "/" {
		return SignupPath
	}
	return SignupPath + "?" + url.Values{"callbackUrl": {callback}}.Encode()
}
