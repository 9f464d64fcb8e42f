package service

import (
	"time"

	"kejani/internal/authz"
	"kejani/internal/domain"
	"kejani/internal/models"
	"kejani/internal/repository"

	"github.com/google/uuid"
)

type PaymentService struct {
	paymentRepo *repository.PaymentRepository
	unitRepo    *repository.UnitRepository
}

func NewPaymentService(paymentRepo *repository.PaymentRepository, unitRepo *repository.UnitRepository) *PaymentService {
	return &PaymentService{paymentRepo: paymentRepo, unitRepo: unitRepo}
}

type PaymentInput struct {
	UnitID      uint
	TenantID    uint
	AmountCents int64
	PaymentType string
	Method      string
	PeriodMonth int
	PeriodYear  int
	Notes       string
}

// Record stores a payment against a unit-tenant pair that is valid right
// now. Cash, bank transfer and check complete immediately; mobile money
// stays pending until confirmed out of band. The receipt reference is
// generated server side.
func (s *PaymentService) Record(id *authz.Identity, in PaymentInput) (*models.Payment, error) {
	if d := authz.Check(id, authz.ActionRecordPayment); d != nil {
		return nil, d
	}
	unit, err := s.unitRepo.GetScoped(authz.UnitScope(id), in.UnitID)
	if err != nil {
		return nil, err
	}
	if unit.TenantID == nil || *unit.TenantID != in.TenantID {
		return nil, domain.Constraint(domain.InvariantTenantNotInUnit, "tenant is not assigned to this unit")
	}

	p := &models.Payment{
		UnitID:      in.UnitID,
		TenantID:    in.TenantID,
		AmountCents: in.AmountCents,
		PaymentType: in.PaymentType,
		Method:      in.Method,
		Status:      domain.PaymentStatusCompleted,
		Reference:   uuid.NewString(),
		RecordedBy:  id.UserID,
		PaidAt:      time.Now(),
		Notes:       in.Notes,
	}
	if in.Method == domain.PaymentMethodMobileMoney {
		p.Status = domain.PaymentStatusPending
	}
	if in.PaymentType == domain.PaymentTypeRent && (in.PeriodMonth == 0 || in.PeriodYear == 0) {
		return nil, domain.Constraint(domain.InvariantInvalidPeriod, "rent requires a period")
	}
	if in.PeriodMonth != 0 || in.PeriodYear != 0 {
		if err := validPeriod(in.PeriodMonth, in.PeriodYear); err != nil {
			return nil, err
		}
		p.PeriodMonth = &in.PeriodMonth
		p.PeriodYear = &in.PeriodYear
	}
	if err := s.paymentRepo.Create(p); err != nil {
		return nil, err
	}
	return p, nil
}

// validPeriod accepts months 1-12 and years within one of the current year.
// Rent far in the past or future is a recording mistake, not a payment.
func validPeriod(month, year int) error {
	if month < 1 || month > 12 {
		return domain.Constraint(domain.InvariantInvalidPeriod, "month must be 1-12")
	}
	current := time.Now().Year()
	if year < current-1 || year > current+1 {
		return domain.Constraint(domain.InvariantInvalidPeriod, "year out of range")
	}
	return nil
}

func (s *PaymentService) List(id *authz.Identity, f repository.PaymentFilter, limit, offset int) ([]models.Payment, error) {
	if d := authz.Check(id, authz.ActionViewPayments); d != nil {
		return nil, d
	}
	return s.paymentRepo.ListScoped(authz.PaymentScope(id), f, limit, offset)
}

func (s *PaymentService) Get(id *authz.Identity, paymentID uint) (*models.Payment, error) {
	return s.paymentRepo.GetScoped(authz.PaymentScope(id), paymentID)
}

// TenantHistory lists the caller's own payments. The payment scope already
// pins tenants to tenant_id = caller.
func (s *PaymentService) TenantHistory(id *authz.Identity, f repository.PaymentFilter, limit, offset int) ([]models.Payment, error) {
	if d := authz.Check(id, authz.ActionViewOwnPayments); d != nil {
		return nil, d
	}
	return s.paymentRepo.ListScoped(authz.PaymentScope(id), f, limit, offset)
}

// Summary reports per-unit rent balances for one period across everything
// the caller manages. Defaults to the current month.
func (s *PaymentService) Summary(id *authz.Identity, month, year int) ([]repository.UnitBalance, error) {
	if d := authz.Check(id, authz.ActionViewPayments); d != nil {
		return nil, d
	}
	if !id.IsManager() {
		return nil, authz.Deny(authz.DenyRoleNotPermitted, authz.ActionViewPayments)
	}
	now := time.Now()
	if month == 0 {
		month = int(now.Month())
	}
	if year == 0 {
		year = now.Year()
	}
	// Older periods stay viewable; the recording-time year window does not
	// apply to reads.
	if month < 1 || month > 12 {
		return nil, domain.Constraint(domain.InvariantInvalidPeriod, "month must be 1-12")
	}
	return s.paymentRepo.UnitBalances(id.ManagedPropertyIDs, month, year)
}

// MonthlyReport aggregates collected totals per period, newest first.
// Landlord only.
func (s *PaymentService) MonthlyReport(id *authz.Identity, months int) ([]repository.MonthTotal, error) {
	if !id.Role.IsLandlord() {
		return nil, authz.Deny(authz.DenyRoleNotPermitted, authz.ActionViewPayments)
	}
	if months <= 0 {
		months = 6
	}
	if months > 24 {
		months = 24
	}
	return s.paymentRepo.MonthlyTotals(id.ManagedPropertyIDs, months)
}
