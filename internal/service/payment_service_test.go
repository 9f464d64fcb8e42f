package service_test

import (
	"testing"
	"time"

	"kejani/internal/authz"
	"kejani/internal/domain"
	"kejani/internal/repository"
	"kejani/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func thisPeriod() (int, int) {
	now := time.Now()
	return int(now.Month()), now.Year()
}

func rentInput(unitID, tenantID uint, amount int64) service.PaymentInput {
	month, year := thisPeriod()
	return service.PaymentInput{
		UnitID:      unitID,
		TenantID:    tenantID,
		AmountCents: amount,
		PaymentType: domain.PaymentTypeRent,
		Method:      domain.PaymentMethodCash,
		PeriodMonth: month,
		PeriodYear:  year,
	}
}

func TestRecordPayment(t *testing.T) {
	e := newEnv(t)
	landlord := e.user(t, "landlord", domain.RoleLandlord)
	tenant := e.user(t, "tenant", domain.RoleTenant)
	p := e.propertyOf(t, landlord.ID, "Sunrise")
	u := e.unitIn(t, p.ID, "A1")
	e.assign(t, u.ID, tenant.ID)

	got, err := e.payment.Record(e.identity(t, landlord.ID), rentInput(u.ID, tenant.ID, 2000000))
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, got.Status)
	assert.NotEmpty(t, got.Reference)
	assert.Equal(t, landlord.ID, got.RecordedBy)
	require.NotNil(t, got.PeriodMonth)
	month, year := thisPeriod()
	assert.Equal(t, month, *got.PeriodMonth)
	assert.Equal(t, year, *got.PeriodYear)
}

func TestRecordPaymentTenantNotInUnit(t *testing.T) {
	e := newEnv(t)
	landlord := e.user(t, "landlord", domain.RoleLandlord)
	t1 := e.user(t, "tenant1", domain.RoleTenant)
	t2 := e.user(t, "tenant2", domain.RoleTenant)
	p := e.propertyOf(t, landlord.ID, "Sunrise")
	u1 := e.unitIn(t, p.ID, "A1")
	u2 := e.unitIn(t, p.ID, "A2")
	e.assign(t, u1.ID, t1.ID)
	id := e.identity(t, landlord.ID)

	// Vacant unit.
	_, err := e.payment.Record(id, rentInput(u2.ID, t1.ID, 2000000))
	ce, ok := domain.AsConstraint(err)
	require.True(t, ok)
	assert.Equal(t, domain.InvariantTenantNotInUnit, ce.Invariant)

	// Occupied unit, wrong tenant.
	_, err = e.payment.Record(id, rentInput(u1.ID, t2.ID, 2000000))
	ce, ok = domain.AsConstraint(err)
	require.True(t, ok)
	assert.Equal(t, domain.InvariantTenantNotInUnit, ce.Invariant)
}

func TestRecordRentRequiresPeriod(t *testing.T) {
	e := newEnv(t)
	landlord := e.user(t, "landlord", domain.RoleLandlord)
	tenant := e.user(t, "tenant", domain.RoleTenant)
	p := e.propertyOf(t, landlord.ID, "Sunrise")
	u := e.unitIn(t, p.ID, "A1")
	e.assign(t, u.ID, tenant.ID)

	in := rentInput(u.ID, tenant.ID, 2000000)
	in.PeriodMonth, in.PeriodYear = 0, 0
	_, err := e.payment.Record(e.identity(t, landlord.ID), in)
	ce, ok := domain.AsConstraint(err)
	require.True(t, ok)
	assert.Equal(t, domain.InvariantInvalidPeriod, ce.Invariant)
}

func TestRecordPaymentPeriodBounds(t *testing.T) {
	e := newEnv(t)
	landlord := e.user(t, "landlord", domain.RoleLandlord)
	tenant := e.user(t, "tenant", domain.RoleTenant)
	p := e.propertyOf(t, landlord.ID, "Sunrise")
	u := e.unitIn(t, p.ID, "A1")
	e.assign(t, u.ID, tenant.ID)
	id := e.identity(t, landlord.ID)

	in := rentInput(u.ID, tenant.ID, 2000000)
	in.PeriodMonth = 13
	_, err := e.payment.Record(id, in)
	ce, ok := domain.AsConstraint(err)
	require.True(t, ok)
	assert.Equal(t, domain.InvariantInvalidPeriod, ce.Invariant)

	in = rentInput(u.ID, tenant.ID, 2000000)
	in.PeriodYear = time.Now().Year() - 5
	_, err = e.payment.Record(id, in)
	ce, ok = domain.AsConstraint(err)
	require.True(t, ok)
	assert.Equal(t, domain.InvariantInvalidPeriod, ce.Invariant)
}

func TestRecordMobileMoneyStaysPending(t *testing.T) {
	e := newEnv(t)
	landlord := e.user(t, "landlord", domain.RoleLandlord)
	tenant := e.user(t, "tenant", domain.RoleTenant)
	p := e.propertyOf(t, landlord.ID, "Sunrise")
	u := e.unitIn(t, p.ID, "A1")
	e.assign(t, u.ID, tenant.ID)

	in := rentInput(u.ID, tenant.ID, 2000000)
	in.Method = domain.PaymentMethodMobileMoney
	got, err := e.payment.Record(e.identity(t, landlord.ID), in)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, got.Status)
}

func TestRecordDepositWithoutPeriod(t *testing.T) {
	e := newEnv(t)
	landlord := e.user(t, "landlord", domain.RoleLandlord)
	tenant := e.user(t, "tenant", domain.RoleTenant)
	p := e.propertyOf(t, landlord.ID, "Sunrise")
	u := e.unitIn(t, p.ID, "A1")
	e.assign(t, u.ID, tenant.ID)

	got, err := e.payment.Record(e.identity(t, landlord.ID), service.PaymentInput{
		UnitID:      u.ID,
		TenantID:    tenant.ID,
		AmountCents: 4000000,
		PaymentType: domain.PaymentTypeDeposit,
		Method:      domain.PaymentMethodBankTransfer,
	})
	require.NoError(t, err)
	assert.Nil(t, got.PeriodMonth)
	assert.Nil(t, got.PeriodYear)
}

func TestRecordPaymentScope(t *testing.T) {
	e := newEnv(t)
	landlord := e.user(t, "landlord", domain.RoleLandlord)
	caretaker := e.user(t, "caretaker", domain.RoleCaretaker)
	tenant := e.user(t, "tenant", domain.RoleTenant)
	p := e.propertyOf(t, landlord.ID, "Sunrise")
	u := e.unitIn(t, p.ID, "A1")
	e.assign(t, u.ID, tenant.ID)

	// Unlinked caretaker cannot even see the unit.
	_, err := e.payment.Record(e.identity(t, caretaker.ID), rentInput(u.ID, tenant.ID, 2000000))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	e.linkCaretaker(t, p.ID, caretaker.ID)
	_, err = e.payment.Record(e.identity(t, caretaker.ID), rentInput(u.ID, tenant.ID, 2000000))
	assert.NoError(t, err)

	// Tenants do not record payments.
	_, err = e.payment.Record(e.identity(t, tenant.ID), rentInput(u.ID, tenant.ID, 2000000))
	d, ok := authz.AsDenial(err)
	require.True(t, ok)
	assert.Equal(t, authz.DenyRoleNotPermitted, d.Reason)
}

func TestTenantHistoryOwnOnly(t *testing.T) {
	e := newEnv(t)
	landlord := e.user(t, "landlord", domain.RoleLandlord)
	t1 := e.user(t, "tenant1", domain.RoleTenant)
	t2 := e.user(t, "tenant2", domain.RoleTenant)
	p := e.propertyOf(t, landlord.ID, "Sunrise")
	u1 := e.unitIn(t, p.ID, "A1")
	u2 := e.unitIn(t, p.ID, "A2")
	e.assign(t, u1.ID, t1.ID)
	e.assign(t, u2.ID, t2.ID)
	id := e.identity(t, landlord.ID)

	pay1, err := e.payment.Record(id, rentInput(u1.ID, t1.ID, 2000000))
	require.NoError(t, err)
	pay2, err := e.payment.Record(id, rentInput(u2.ID, t2.ID, 2000000))
	require.NoError(t, err)

	history, err := e.payment.TenantHistory(e.identity(t, t1.ID), repository.PaymentFilter{}, 50, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, pay1.ID, history[0].ID)

	// The other tenant's payment reads as missing.
	_, err = e.payment.Get(e.identity(t, t1.ID), pay2.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	own, err := e.payment.Get(e.identity(t, t1.ID), pay1.ID)
	require.NoError(t, err)
	assert.Equal(t, pay1.ID, own.ID)
}

func TestListPaymentsScopedToManagedProperties(t *testing.T) {
	e := newEnv(t)
	landlord1 := e.user(t, "landlord1", domain.RoleLandlord)
	landlord2 := e.user(t, "landlord2", domain.RoleLandlord)
	t1 := e.user(t, "tenant1", domain.RoleTenant)
	p1 := e.propertyOf(t, landlord1.ID, "Sunrise")
	u1 := e.unitIn(t, p1.ID, "A1")
	e.assign(t, u1.ID, t1.ID)

	_, err := e.payment.Record(e.identity(t, landlord1.ID), rentInput(u1.ID, t1.ID, 2000000))
	require.NoError(t, err)

	mine, err := e.payment.List(e.identity(t, landlord1.ID), repository.PaymentFilter{}, 50, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := e.payment.List(e.identity(t, landlord2.ID), repository.PaymentFilter{}, 50, 0)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func TestPaymentSummary(t *testing.T) {
	e := newEnv(t)
	landlord := e.user(t, "landlord", domain.RoleLandlord)
	t1 := e.user(t, "tenant1", domain.RoleTenant)
	t2 := e.user(t, "tenant2", domain.RoleTenant)
	p := e.propertyOf(t, landlord.ID, "Sunrise")
	u1 := e.unitIn(t, p.ID, "A1")
	u2 := e.unitIn(t, p.ID, "A2")
	e.unitIn(t, p.ID, "A3") // vacant, stays out of the summary
	e.assign(t, u1.ID, t1.ID)
	e.assign(t, u2.ID, t2.ID)
	id := e.identity(t, landlord.ID)

	// t1 pays in full, t2 pays half.
	_, err := e.payment.Record(id, rentInput(u1.ID, t1.ID, 2000000))
	require.NoError(t, err)
	_, err = e.payment.Record(id, rentInput(u2.ID, t2.ID, 1000000))
	require.NoError(t, err)

	month, year := thisPeriod()
	rows, err := e.payment.Summary(id, month, year)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byUnit := map[uint]repository.UnitBalance{}
	for _, row := range rows {
		byUnit[row.UnitID] = row
	}
	assert.EqualValues(t, 2000000, byUnit[u1.ID].PaidCents)
	assert.EqualValues(t, 0, byUnit[u1.ID].BalanceCents)
	assert.EqualValues(t, 1000000, byUnit[u2.ID].PaidCents)
	assert.EqualValues(t, 1000000, byUnit[u2.ID].BalanceCents)
}

// Pending mobile money does not count toward the balance.
func TestPaymentSummaryExcludesPending(t *testing.T) {
	e := newEnv(t)
	landlord := e.user(t, "landlord", domain.RoleLandlord)
	tenant := e.user(t, "tenant", domain.RoleTenant)
	p := e.propertyOf(t, landlord.ID, "Sunrise")
	u := e.unitIn(t, p.ID, "A1")
	e.assign(t, u.ID, tenant.ID)
	id := e.identity(t, landlord.ID)

	in := rentInput(u.ID, tenant.ID, 2000000)
	in.Method = domain.PaymentMethodMobileMoney
	_, err := e.payment.Record(id, in)
	require.NoError(t, err)

	month, year := thisPeriod()
	rows, err := e.payment.Summary(id, month, year)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 0, rows[0].PaidCents)
	assert.EqualValues(t, 2000000, rows[0].BalanceCents)
}

func TestMonthlyReport(t *testing.T) {
	e := newEnv(t)
	landlord := e.user(t, "landlord", domain.RoleLandlord)
	caretaker := e.user(t, "caretaker", domain.RoleCaretaker)
	tenant := e.user(t, "tenant", domain.RoleTenant)
	p := e.propertyOf(t, landlord.ID, "Sunrise")
	u := e.unitIn(t, p.ID, "A1")
	e.linkCaretaker(t, p.ID, caretaker.ID)
	e.assign(t, u.ID, tenant.ID)
	id := e.identity(t, landlord.ID)

	_, err := e.payment.Record(id, rentInput(u.ID, tenant.ID, 2000000))
	require.NoError(t, err)
	_, err = e.payment.Record(id, rentInput(u.ID, tenant.ID, 500000))
	require.NoError(t, err)

	report, err := e.payment.MonthlyReport(id, 6)
	require.NoError(t, err)
	require.Len(t, report, 1)
	month, year := thisPeriod()
	assert.Equal(t, month, report[0].Month)
	assert.Equal(t, year, report[0].Year)
	assert.EqualValues(t, 2500000, report[0].TotalCents)
	assert.EqualValues(t, 2, report[0].Count)

	// Landlord only.
	_, err = e.payment.MonthlyReport(e.identity(t, caretaker.ID), 6)
	d, ok := authz.AsDenial(err)
	require.True(t, ok)
	assert.Equal(t, authz.DenyRoleNotPermitted, d.Reason)
}
