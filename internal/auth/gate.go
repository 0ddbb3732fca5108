package auth

// Access is the single view state derived from a session and profile snapshot.
// Every surface (member area, admin back-office, API guards) switches on the
// same value, so the gating rules live in exactly one place.
type Access int

const (
	AccessAnonymous Access = iota
	AccessNeedsCompletion
	AccessPendingApproval
	AccessProfileError
	AccessMember
)

func (a Access) String() string {
	switch a {
	case AccessAnonymous:
		return "anonymous"
	case AccessNeedsCompletion:
		return "needs_completion"
	case AccessPendingApproval:
		return "pending_approval"
	case AccessProfileError:
		return "profile_error"
	case AccessMember:
		return "member"
	}
	return "unknown"
}

// Evaluate selects exactly one access state. Admins bypass the completion and
// approval gates so a mis-flagged admin account cannot lock itself out.
func Evaluate(loggedIn bool, p *Profile, profileErr bool) Access {
	if !loggedIn {
		return AccessAnonymous
	}
	if profileErr || p == nil {
		return AccessProfileError
	}
	if !p.IsProfileCompleted && p.Role != RoleAdmin {
		return AccessNeedsCompletion
	}
	if !p.Approved && p.Role != RoleAdmin {
		return AccessPendingApproval
	}
	return AccessMember
}
