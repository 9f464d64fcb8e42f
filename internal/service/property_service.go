package service

import (
	"errors"

	"kejani/internal/authz"
	"kejani/internal/domain"
	"kejani/internal/models"
	"kejani/internal/repository"

	"gorm.io/gorm"
)

type PropertyService struct {
	propertyRepo *repository.PropertyRepository
	userRepo     *repository.UserRepository
}

func NewPropertyService(propertyRepo *repository.PropertyRepository, userRepo *repository.UserRepository) *PropertyService {
	return &PropertyService{propertyRepo: propertyRepo, userRepo: userRepo}
}

type PropertyInput struct {
	Name        string
	Address     string
	Description string
}

func (s *PropertyService) Create(id *authz.Identity, in PropertyInput) (*models.Property, error) {
	if d := authz.Check(id, authz.ActionCreateProperty); d != nil {
		return nil, d
	}
	p := &models.Property{
		Name:        in.Name,
		Address:     in.Address,
		Description: in.Description,
		LandlordID:  id.UserID,
	}
	if err := s.propertyRepo.Create(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PropertyService) List(id *authz.Identity, limit, offset int) ([]models.Property, error) {
	return s.propertyRepo.ListScoped(authz.PropertyScope(id), limit, offset)
}

// Get returns a property visible to the caller, with its units and caretaker
// links. Anything outside scope is a not-found.
func (s *PropertyService) Get(id *authz.Identity, propertyID uint) (*models.Property, []models.User, error) {
	p, err := s.propertyRepo.GetScoped(authz.PropertyScope(id), propertyID)
	if err != nil {
		return nil, nil, err
	}
	caretakers, err := s.propertyRepo.ListCaretakers(p.ID)
	if err != nil {
		return nil, nil, err
	}
	return p, caretakers, nil
}

type PropertyUpdate struct {
	Name        *string
	Address     *string
	Description *string
}

// Update edits property fields. Ownership is immutable: there is no way to
// move a property to another landlord through this path.
func (s *PropertyService) Update(id *authz.Identity, propertyID uint, in PropertyUpdate) (*models.Property, error) {
	if d := authz.Check(id, authz.ActionUpdateProperty); d != nil {
		return nil, d
	}
	p, err := s.propertyRepo.GetScoped(authz.PropertyScope(id), propertyID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Address != nil {
		p.Address = *in.Address
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if err := s.propertyRepo.Update(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PropertyService) Delete(id *authz.Identity, propertyID uint) error {
	if d := authz.Check(id, authz.ActionDeleteProperty); d != nil {
		return d
	}
	if _, err := s.propertyRepo.GetScoped(authz.PropertyScope(id), propertyID); err != nil {
		return err
	}
	return s.propertyRepo.DeleteCascade(propertyID)
}

// LinkCaretaker attaches a caretaker account to a property the landlord
// owns. Linking twice is a no-op.
func (s *PropertyService) LinkCaretaker(id *authz.Identity, propertyID, userID uint) error {
	if d := authz.CheckProperty(id, authz.ActionManageCaretakers, propertyID); d != nil {
		return d
	}
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return authz.Deny(authz.DenyTargetNotFound, authz.ActionManageCaretakers)
		}
		return err
	}
	if !u.IsCaretaker() {
		return domain.Constraint(domain.InvariantNotCaretaker, u.Username)
	}
	linked, err := s.propertyRepo.IsCaretaker(propertyID, userID)
	if err != nil {
		return err
	}
	if linked {
		return nil
	}
	return s.propertyRepo.LinkCaretaker(propertyID, userID)
}

func (s *PropertyService) UnlinkCaretaker(id *authz.Identity, propertyID, userID uint) error {
	if d := authz.CheckProperty(id, authz.ActionManageCaretakers, propertyID); d != nil {
		return d
	}
	return s.propertyRepo.UnlinkCaretaker(propertyID, userID)
}
