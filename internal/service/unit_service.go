package service

import (
	"errors"

	"kejani/internal/authz"
	"kejani/internal/domain"
	"kejani/internal/models"
	"kejani/internal/repository"

	"gorm.io/gorm"
)

// conflictRetries bounds transparent retries of assignment transactions that
// lost a race. After that the conflict surfaces to the caller.
const conflictRetries = 3

func retryConflict(op func() error) error {
	var err error
	for i := 0; i < conflictRetries; i++ {
		err = op()
		if !errors.Is(err, domain.ErrConflict) {
			return err
		}
	}
	return err
}

type UnitService struct {
	unitRepo     *repository.UnitRepository
	propertyRepo *repository.PropertyRepository
	userRepo     *repository.UserRepository
}

func NewUnitService(unitRepo *repository.UnitRepository, propertyRepo *repository.PropertyRepository, userRepo *repository.UserRepository) *UnitService {
	return &UnitService{unitRepo: unitRepo, propertyRepo: propertyRepo, userRepo: userRepo}
}

type UnitInput struct {
	PropertyID  uint
	UnitNumber  string
	Bedrooms    int
	Bathrooms   float64
	RentCents   int64
	Status      string
	Description string
}

func (s *UnitService) Create(id *authz.Identity, in UnitInput) (*models.Unit, error) {
	if d := authz.CheckProperty(id, authz.ActionCreateUnit, in.PropertyID); d != nil {
		return nil, d
	}
	taken, err := s.unitRepo.NumberTaken(in.PropertyID, in.UnitNumber)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.Constraint(domain.InvariantDuplicateUnitNumber, in.UnitNumber)
	}
	status := in.Status
	if status == "" {
		status = string(domain.UnitAvailable)
	}
	if !domain.ValidUnitStatus(domain.UnitStatus(status)) {
		return nil, domain.Constraint(domain.InvariantInvalidStatus, status)
	}
	if status == string(domain.UnitOccupied) {
		return nil, domain.Constraint(domain.InvariantInvalidStatus, "occupied requires an assigned tenant")
	}
	u := &models.Unit{
		PropertyID:  in.PropertyID,
		UnitNumber:  in.UnitNumber,
		Bedrooms:    in.Bedrooms,
		Bathrooms:   in.Bathrooms,
		RentCents:   in.RentCents,
		Status:      status,
		Description: in.Description,
	}
	if err := s.unitRepo.Create(u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.Constraint(domain.InvariantDuplicateUnitNumber, in.UnitNumber)
		}
		return nil, err
	}
	if err := s.propertyRepo.RefreshUnitCount(in.PropertyID); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UnitService) List(id *authz.Identity, status string, limit, offset int) ([]models.Unit, error) {
	return s.unitRepo.ListScoped(authz.UnitScope(id), status, limit, offset)
}

func (s *UnitService) Get(id *authz.Identity, unitID uint) (*models.Unit, error) {
	return s.unitRepo.GetScoped(authz.UnitScope(id), unitID)
}

type UnitUpdate struct {
	UnitNumber  *string
	Bedrooms    *int
	Bathrooms   *float64
	RentCents   *int64
	Status      *string
	Description *string
}

// Update edits unit fields. Occupancy cannot be faked through here: status
// may only be occupied while a tenant is assigned, and only the assignment
// paths flip it.
func (s *UnitService) Update(id *authz.Identity, unitID uint, in UnitUpdate) (*models.Unit, error) {
	if d := authz.Check(id, authz.ActionUpdateUnit); d != nil {
		return nil, d
	}
	u, err := s.unitRepo.GetScoped(authz.UnitScope(id), unitID)
	if err != nil {
		return nil, err
	}
	if in.UnitNumber != nil && *in.UnitNumber != u.UnitNumber {
		taken, err := s.unitRepo.NumberTaken(u.PropertyID, *in.UnitNumber)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, domain.Constraint(domain.InvariantDuplicateUnitNumber, *in.UnitNumber)
		}
		u.UnitNumber = *in.UnitNumber
	}
	if in.Status != nil && *in.Status != u.Status {
		if !domain.ValidUnitStatus(domain.UnitStatus(*in.Status)) {
			return nil, domain.Constraint(domain.InvariantInvalidStatus, *in.Status)
		}
		if *in.Status == string(domain.UnitOccupied) {
			return nil, domain.Constraint(domain.InvariantInvalidStatus, "occupied requires an assigned tenant")
		}
		if u.TenantID != nil {
			return nil, domain.Constraint(domain.InvariantInvalidStatus, "unassign the tenant first")
		}
		u.Status = *in.Status
	}
	if in.Bedrooms != nil {
		u.Bedrooms = *in.Bedrooms
	}
	if in.Bathrooms != nil {
		u.Bathrooms = *in.Bathrooms
	}
	if in.RentCents != nil {
		u.RentCents = *in.RentCents
	}
	if in.Description != nil {
		u.Description = *in.Description
	}
	if err := s.unitRepo.Update(u); err != nil {
		return nil, err
	}
	return u, nil
}

// requireTenant loads the assignment target and confirms it is a tenant
// account. A missing user reads as not-found, a wrong role is a constraint.
func (s *UnitService) requireTenant(userID uint) (*models.User, error) {
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authz.Deny(authz.DenyTargetNotFound, authz.ActionAssignTenant)
		}
		return nil, err
	}
	if !u.IsTenant() {
		return nil, domain.Constraint(domain.InvariantNotTenant, u.Username)
	}
	return u, nil
}

// AssignTenant places a tenant into a unit inside the caller's scope. A
// tenant already holding a unit is refused; use TransferTenant to move them.
func (s *UnitService) AssignTenant(id *authz.Identity, unitID, tenantID uint) (*models.Unit, error) {
	if d := authz.Check(id, authz.ActionAssignTenant); d != nil {
		return nil, d
	}
	if _, err := s.unitRepo.GetScoped(authz.UnitScope(id), unitID); err != nil {
		return nil, err
	}
	if _, err := s.requireTenant(tenantID); err != nil {
		return nil, err
	}
	if err := retryConflict(func() error { return s.unitRepo.AssignTenant(unitID, tenantID) }); err != nil {
		return nil, err
	}
	return s.unitRepo.GetScoped(authz.UnitScope(id), unitID)
}

func (s *UnitService) UnassignTenant(id *authz.Identity, unitID uint) (*models.Unit, error) {
	if d := authz.Check(id, authz.ActionAssignTenant); d != nil {
		return nil, d
	}
	if _, err := s.unitRepo.GetScoped(authz.UnitScope(id), unitID); err != nil {
		return nil, err
	}
	if err := retryConflict(func() error { return s.unitRepo.UnassignTenant(unitID) }); err != nil {
		return nil, err
	}
	return s.unitRepo.GetScoped(authz.UnitScope(id), unitID)
}

// TransferTenant moves a tenant from their current unit to another one, both
// within the caller's scope, atomically.
func (s *UnitService) TransferTenant(id *authz.Identity, toUnitID, tenantID uint) (*models.Unit, error) {
	if d := authz.Check(id, authz.ActionAssignTenant); d != nil {
		return nil, d
	}
	if _, err := s.unitRepo.GetScoped(authz.UnitScope(id), toUnitID); err != nil {
		return nil, err
	}
	if _, err := s.requireTenant(tenantID); err != nil {
		return nil, err
	}
	current, err := s.unitRepo.UnitOfTenant(tenantID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.Constraint(domain.InvariantTenantNotInUnit, "tenant holds no unit to transfer from")
	}
	if !id.Manages(current.PropertyID) {
		return nil, authz.Deny(authz.DenyOutOfScope, authz.ActionAssignTenant)
	}
	if err := retryConflict(func() error { return s.unitRepo.TransferTenant(tenantID, toUnitID) }); err != nil {
		return nil, err
	}
	return s.unitRepo.GetScoped(authz.UnitScope(id), toUnitID)
}
