package domain

// Role is the closed set of account roles. Landlord accounts are provisioned
// out-of-band (kejanictl); the API can never create one.
type Role string

const (
	RoleLandlord  Role = "landlord"
	RoleCaretaker Role = "caretaker"
	RoleTenant    Role = "tenant"
)

func ValidRole(r Role) bool {
	return r == RoleLandlord || r == RoleCaretaker || r == RoleTenant
}

func (r Role) IsLandlord() bool  { return r == RoleLandlord }
func (r Role) IsCaretaker() bool { return r == RoleCaretaker }
func (r Role) IsTenant() bool    { return r == RoleTenant }

// UnitStatus tracks occupancy. Assignment forces occupied; unassignment
// returns the unit to available.
type UnitStatus string

const (
	UnitAvailable   UnitStatus = "available"
	UnitOccupied    UnitStatus = "occupied"
	UnitMaintenance UnitStatus = "maintenance"
	UnitReserved    UnitStatus = "reserved"
)

func ValidUnitStatus(s UnitStatus) bool {
	switch s {
	case UnitAvailable, UnitOccupied, UnitMaintenance, UnitReserved:
		return true
	}
	return false
}

const (
	PaymentTypeRent        = "rent"
	PaymentTypeDeposit     = "deposit"
	PaymentTypeService     = "service"
	PaymentTypeLateFee     = "late_fee"
	PaymentTypeMaintenance = "maintenance"
	PaymentTypeOther       = "other"
)

const (
	PaymentMethodCash         = "cash"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodMobileMoney  = "mobile_money"
	PaymentMethodCheck        = "check"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Priority orders notices in tenant feeds: urgent > high > normal > low.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// PriorityRank maps priorities to sortable weights.
var PriorityRank = map[Priority]int{
	PriorityLow:    1,
	PriorityNormal: 2,
	PriorityHigh:   3,
	PriorityUrgent: 4,
}

func ValidPriority(p Priority) bool {
	_, ok := PriorityRank[p]
	return ok
}

// AudienceType selects how a notice's recipients are resolved.
// AudienceAllTenants and AudiencePropertyTenants are evaluated lazily at read
// time; AudienceSpecificUnits and AudienceSpecificTenants freeze their
// recipient set when the notice is created.
type AudienceType string

const (
	AudienceAllTenants      AudienceType = "all_tenants"
	AudiencePropertyTenants AudienceType = "property_tenants"
	AudienceSpecificUnits   AudienceType = "specific_units"
	AudienceSpecificTenants AudienceType = "specific_tenants"
)

func (a AudienceType) Frozen() bool {
	return a == AudienceSpecificUnits || a == AudienceSpecificTenants
}

func ValidAudienceType(a AudienceType) bool {
	switch a {
	case AudienceAllTenants, AudiencePropertyTenants, AudienceSpecificUnits, AudienceSpecificTenants:
		return true
	}
	return false
}
