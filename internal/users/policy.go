package users

// Lead-mutation policy, applied to stage updates and every other lead
// mutation. The lock on a lead is advisory: it gates BD Executives
// but never Admins or Managers. The full table:
//
//	role          lead unlocked   lead locked by actor   lead locked by other
//	Admin         allow           allow                  allow
//	Manager       allow           allow                  allow
//	BD Executive  allow           allow                  deny
//
// Inactive users are denied everything regardless of role.

// MutationDecision is the outcome of a policy check.
type MutationDecision struct {
	Allowed bool
	Reason  string
}

// CanMutateLead applies the policy table above.
func CanMutateLead(actor *User, locked bool, lockedBy string) MutationDecision {
	if !actor.Active() {
		return MutationDecision{Reason: "user is inactive"}
	}
	switch actor.Role {
	case RoleAdmin, RoleManager:
		return MutationDecision{Allowed: true}
	case RoleBDExecutive:
		if locked && lockedBy != actor.ID {
			return MutationDecision{Reason: "lead is locked by another user"}
		}
		return MutationDecision{Allowed: true}
	default:
		return MutationDecision{Reason: "unknown role"}
	}
}

// CanDeleteLead restricts lead deletion to Admins.
func CanDeleteLead(actor *User) bool {
	return actor.Active() && actor.Role == RoleAdmin
}

// CanDeleteRemark allows Admins to delete any remark and BD Executives
// to delete only remarks they authored.
func CanDeleteRemark(actor *User, authorID string) bool {
	if !actor.Active() {
		return false
	}
	switch actor.Role {
	case RoleAdmin:
		return true
	case RoleBDExecutive:
		return actor.ID == authorID
	default:
		return false
	}
}
