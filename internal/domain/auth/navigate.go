package auth

import "strings"

// Route surface shared by the edge guard and the session gate.
const (
	RootPath         = "/"
	SignInPath       = "/login"
	UnauthorizedPath = "/unauthorized"

	AdminPrefix      = "/admin"
	OperationsPrefix = "/operations"

	AdminLandingPath      = "/admin/dashboard"
	OperationsLandingPath = "/operations/dashboard"
)

// roleLanding is the fixed role-to-route table. Every role the identity
// service issues must have an entry; an unmapped role routes to sign-in.
var roleLanding = map[Role]string{
	RoleSuperAdmin: AdminLandingPath,
	RoleAdmin:      AdminLandingPath,
	RoleBuyer:      AdminLandingPath,
	RoleOperation:  OperationsLandingPath,
}

// LandingPath returns the default landing page for a role.
// Roles missing from the table land on the sign-in path.
func LandingPath(r Role) string {
	if p, ok := roleLanding[r]; ok {
		return p
	}
	return SignInPath
}

// publicPaths are reachable without a session.
var publicPaths = []string{SignInPath, UnauthorizedPath}

// IsPublicPath reports whether the path is on the public-route allowlist.
func IsPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// Status is the session resolution state seen by navigation logic.
// loading is the only initial state; it resolves to exactly one of the
// terminal states, and authenticated can only fall back to unauthenticated.
type Status string

const (
	StatusLoading         Status = "loading"
	StatusAuthenticated   Status = "authenticated"
	StatusUnauthenticated Status = "unauthenticated"
)

// Action tags a navigation decision.
type Action string

const (
	// ActionProceed renders the requested path.
	ActionProceed Action = "proceed"
	// ActionRedirect navigates to Decision.Target.
	ActionRedirect Action = "redirect"
	// ActionHold suspends rendering until the session status resolves.
	ActionHold Action = "hold"
)

// DecideInput carries everything the navigation decision depends on.
type DecideInput struct {
	Status          Status
	Path            string
	Role            Role
	RefreshFailed   bool
	PendingRedirect string
}

// Decision is the pure outcome of a navigation check. Executing it twice
// with unchanged input produces the same single navigation; all side
// effects (cookie writes, pending-redirect consumption) are described by
// fields and performed by the caller.
type Decision struct {
	Action Action
	Target string

	// PersistPending asks the caller to remember this path before
	// redirecting, so it can be restored after re-authentication.
	PersistPending string

	// ConsumePending is set when Target came from the pending redirect;
	// the caller must clear the stored value (read-once semantics).
	ConsumePending bool
}

func proceed() Decision           { return Decision{Action: ActionProceed} }
func redirect(to string) Decision { return Decision{Action: ActionRedirect, Target: to} }

// Decide computes the navigation outcome for a request or status change.
// It is the single authorization-decision implementation behind both the
// edge guard and the session gate.
func Decide(in DecideInput) Decision {
	switch in.Status {
	case StatusLoading:
		return Decision{Action: ActionHold}

	case StatusUnauthenticated:
		return decideUnauthenticated(in)

	case StatusAuthenticated:
		if in.RefreshFailed || !in.Role.Known() {
			// Unrecoverable refresh or a role since removed from the
			// landing table forces re-login.
			return decideUnauthenticated(in)
		}
		return decideAuthenticated(in)

	default:
		return decideUnauthenticated(in)
	}
}

func decideUnauthenticated(in DecideInput) Decision {
	if IsPublicPath(in.Path) {
		return proceed()
	}
	d := redirect(SignInPath)
	if in.Path != RootPath {
		d.PersistPending = in.Path
	}
	return d
}

func decideAuthenticated(in DecideInput) Decision {
	switch {
	case in.Path == RootPath:
		return redirect(LandingPath(in.Role))

	case IsPublicPath(in.Path):
		// Send signed-in visitors away from sign-in: restore the pending
		// destination when one exists, otherwise the role's landing page.
		if in.PendingRedirect != "" {
			d := redirect(in.PendingRedirect)
			d.ConsumePending = true
			return d
		}
		return redirect(LandingPath(in.Role))

	case strings.HasPrefix(in.Path, AdminPrefix):
		if in.Role.IsAdminFamily() {
			return proceed()
		}
		if in.Role.IsOperations() {
			return redirect(OperationsLandingPath)
		}
		return redirect(UnauthorizedPath)

	case strings.HasPrefix(in.Path, OperationsPrefix):
		if in.Role.IsOperations() {
			return proceed()
		}
		if in.Role.IsAdminFamily() {
			return redirect(AdminLandingPath)
		}
		return redirect(UnauthorizedPath)

	default:
		return proceed()
	}
}
