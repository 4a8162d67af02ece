package user

import "github.com/google/uuid"

// Capability is a named, independently assignable authorization unit.
// A user holds a capability either through their role grant bundle or
// through a fine-grained per-user grant.
type Capability string

const (
	// Reports
	CapReportsView         Capability = "reports.view"
	CapReportsCreate       Capability = "reports.create"
	CapReportsEditOwn      Capability = "reports.edit_own"
	CapReportsEditAll      Capability = "reports.edit_all"
	CapReportsDeleteOwn    Capability = "reports.delete_own"
	CapReportsDeleteAll    Capability = "reports.delete_all"
	CapReportsAssign       Capability = "reports.assign"
	CapReportsChangeStatus Capability = "reports.change_status"

	// Comments
	CapCommentsCreate    Capability = "comments.create"
	CapCommentsDeleteOwn Capability = "comments.delete_own"
	CapCommentsDeleteAll Capability = "comments.delete_all"

	// Votes
	CapVotesCast Capability = "votes.cast"

	// Administration
	CapUsersManage Capability = "users.manage"
	CapAuditView   Capability = "audit.view"
	CapStatsView   Capability = "stats.view"
)

// RoleCapabilities maps roles to their implicit capability bundle.
// Admin is not listed: it holds every capability (see Identity.Can).
var RoleCapabilities = map[Role][]Capability{
	RoleCitizen: {
		CapReportsView, CapReportsCreate, CapReportsEditOwn, CapReportsDeleteOwn,
		CapCommentsCreate, CapCommentsDeleteOwn,
		CapVotesCast,
	},
	RoleStaff: {
		CapReportsView, CapReportsCreate, CapReportsEditAll, CapReportsChangeStatus,
		CapCommentsCreate, CapCommentsDeleteAll,
		CapVotesCast,
		CapAuditView, CapStatsView,
	},
}

// Identity is the acting principal threaded through every core
// operation. Grants holds the fine-grained capabilities assigned to
// this user independently of their role.
type Identity struct {
	ID     uuid.UUID
	Name   string
	Email  string
	Role   Role
	Grants []Capability
}

// Can resolves a capability against both permission models: the coarse
// role bundle and the fine-grained grant set. Admin implicitly holds
// everything. Nil identity (anonymous request) holds nothing.
func (i *Identity) Can(c Capability) bool {
	if i == nil {
		return false
	}
	if i.Role == RoleAdmin {
		return true
	}
	for _, granted := range RoleCapabilities[i.Role] {
		if granted == c {
			return true
		}
	}
	for _, granted := range i.Grants {
		if granted == c {
			return true
		}
	}
	return false
}

// Summary returns the public projection of this identity
func (i *Identity) Summary() *Summary {
	if i == nil {
		return nil
	}
	return &Summary{ID: i.ID, Name: i.Name, Email: i.Email}
}
