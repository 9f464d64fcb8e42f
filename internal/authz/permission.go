package authz

import "kejani/internal/domain"

// Action is an operation subject to the role/action permission table.
type Action string

const (
	ActionCreateProperty   Action = "create_property"
	ActionUpdateProperty   Action = "update_property"
	ActionDeleteProperty   Action = "delete_property"
	ActionManageCaretakers Action = "manage_caretakers"
	ActionCreateUnit       Action = "create_unit"
	ActionUpdateUnit       Action = "update_unit"
	ActionAssignTenant     Action = "assign_tenant"
	ActionRecordPayment    Action = "record_payment"
	ActionViewPayments     Action = "view_payments"
	ActionViewOwnPayments  Action = "view_own_payments"
	ActionCreateNotice     Action = "create_notice"
	ActionUpdateNotice     Action = "update_notice"
	ActionViewReadReport   Action = "view_read_report"
	ActionMarkNoticeRead   Action = "mark_notice_read"
	ActionViewFeed         Action = "view_feed"
	ActionCreateUser       Action = "create_user"
)

// Permissions is the coarse role/action grid. Scope (WHICH property or unit)
// is checked separately; a "true" here only says the role may attempt the
// action at all. User creation is not in the grid, it goes through
// CanCreateRole because the answer depends on the target role.
var Permissions = map[domain.Role]map[Action]bool{
	domain.RoleLandlord: {
		ActionCreateProperty:   true,
		ActionUpdateProperty:   true,
		ActionDeleteProperty:   true,
		ActionManageCaretakers: true,
		ActionCreateUnit:       true,
		ActionUpdateUnit:       true,
		ActionAssignTenant:     true,
		ActionRecordPayment:    true,
		ActionViewPayments:     true,
		ActionCreateNotice:     true,
		ActionUpdateNotice:     true,
		ActionViewReadReport:   true,
		ActionCreateUser:       true,
	},
	domain.RoleCaretaker: {
		ActionCreateUnit:     true,
		ActionUpdateUnit:     true,
		ActionAssignTenant:   true,
		ActionRecordPayment:  true,
		ActionViewPayments:   true,
		ActionCreateNotice:   true,
		ActionUpdateNotice:   true,
		ActionViewReadReport: true,
		ActionCreateUser:     true,
	},
	domain.RoleTenant: {
		ActionViewOwnPayments: true,
		ActionMarkNoticeRead:  true,
		ActionViewFeed:        true,
	},
}

// Check evaluates the coarse grid. Nil means allowed.
func Check(id *Identity, action Action) *Denial {
	if perms, ok := Permissions[id.Role]; ok && perms[action] {
		return nil
	}
	return Deny(DenyRoleNotPermitted, action)
}

// CheckProperty evaluates the grid and then requires the target property to
// be inside the caller's managed set. The scope failure reads as not-found.
func CheckProperty(id *Identity, action Action, propertyID uint) *Denial {
	if d := Check(id, action); d != nil {
		return d
	}
	if !id.Manages(propertyID) {
		return Deny(DenyOutOfScope, action)
	}
	return nil
}

// CheckCreateUser consults the role hierarchy. The denial is always
// ROLE_NOT_PERMITTED: role policy is safe to reveal, unlike scope.
func CheckCreateUser(id *Identity, target domain.Role) *Denial {
	if !CanCreateRole(id.Role, target) {
		return Deny(DenyRoleNotPermitted, ActionCreateUser)
	}
	return nil
}
