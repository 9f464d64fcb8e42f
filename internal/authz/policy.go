package authz

import "kejani/internal/domain"

// creatableRoles encodes which role may provision accounts of which other
// role. Landlord is absent from every value set on purpose: landlord accounts
// are created out of band (kejanictl), never through the API, no matter who
// asks.
var creatableRoles = map[domain.Role]map[domain.Role]bool{
	domain.RoleLandlord: {
		domain.RoleCaretaker: true,
		domain.RoleTenant:    true,
	},
	domain.RoleCaretaker: {
		domain.RoleTenant: true,
	},
	domain.RoleTenant: {},
}

// CanCreateRole is a pure lookup into the hierarchy, no state, no storage.
func CanCreateRole(creator, target domain.Role) bool {
	allowed, ok := creatableRoles[creator]
	if !ok {
		return false
	}
	return allowed[target]
}
