package user

import (
	"testing"

	"github.com/google/uuid"
)

func TestCitizenRoleBundle(t *testing.T) {
	citizen := &Identity{ID: uuid.New(), Role: RoleCitizen}

	allowed := []Capability{
		CapReportsView, CapReportsCreate, CapReportsDeleteOwn,
		CapCommentsCreate, CapCommentsDeleteOwn, CapVotesCast,
	}
	for _, c := range allowed {
		if !citizen.Can(c) {
			t.Errorf("citizen should hold %s", c)
		}
	}

	denied := []Capability{
		CapReportsAssign, CapReportsChangeStatus, CapReportsDeleteAll,
		CapCommentsDeleteAll, CapAuditView, CapUsersManage,
	}
	for _, c := range denied {
		if citizen.Can(c) {
			t.Errorf("citizen should not hold %s", c)
		}
	}
}

func TestStaffRoleBundle(t *testing.T) {
	staff := &Identity{ID: uuid.New(), Role: RoleStaff}

	if !staff.Can(CapReportsChangeStatus) {
		t.Error("staff should hold reports.change_status")
	}
	if !staff.Can(CapCommentsDeleteAll) {
		t.Error("staff should hold comments.delete_all")
	}
	if staff.Can(CapReportsAssign) {
		t.Error("staff should not hold reports.assign by role alone")
	}
	if staff.Can(CapReportsDeleteAll) {
		t.Error("staff should not hold reports.delete_all by role alone")
	}
}

func TestAdminHoldsEverything(t *testing.T) {
	admin := &Identity{ID: uuid.New(), Role: RoleAdmin}

	all := []Capability{
		CapReportsView, CapReportsCreate, CapReportsEditOwn, CapReportsEditAll,
		CapReportsDeleteOwn, CapReportsDeleteAll, CapReportsAssign, CapReportsChangeStatus,
		CapCommentsCreate, CapCommentsDeleteOwn, CapCommentsDeleteAll,
		CapVotesCast, CapUsersManage, CapAuditView, CapStatsView,
	}
	for _, c := range all {
		if !admin.Can(c) {
			t.Errorf("admin should hold %s", c)
		}
	}
}

func TestFineGrainedGrantIndependentOfRole(t *testing.T) {
	// A citizen granted reports.assign directly can assign even though
	// the citizen bundle does not include it.
	trusted := &Identity{
		ID:     uuid.New(),
		Role:   RoleCitizen,
		Grants: []Capability{CapReportsAssign},
	}

	if !trusted.Can(CapReportsAssign) {
		t.Error("fine-grained grant should resolve independently of role")
	}
	if trusted.Can(CapReportsDeleteAll) {
		t.Error("grant must not leak into other capabilities")
	}
}

func TestNilIdentityHoldsNothing(t *testing.T) {
	var anonymous *Identity
	if anonymous.Can(CapReportsView) {
		t.Error("nil identity must not hold any capability")
	}
}
