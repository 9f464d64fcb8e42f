package service_test

import (
	"testing"
	"time"

	"kejani/config"
	"kejani/internal/authz"
	"kejani/internal/database"
	"kejani/internal/domain"
	"kejani/internal/models"
	"kejani/internal/repository"
	"kejani/internal/service"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// env bundles a fresh in-memory database with the full service stack, the
// way the server wires it.
type env struct {
	db       *gorm.DB
	cfg      *config.Config
	resolver *authz.Resolver

	users      *repository.UserRepository
	properties *repository.PropertyRepository
	units      *repository.UnitRepository

	auth     *service.AuthService
	property *service.PropertyService
	unit     *service.UnitService
	payment  *service.PaymentService
	notice   *service.NoticeService
}

func newEnv(t *testing.T) *env {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	cfg := &config.Config{
		JWT: config.JWTConfig{
			AccessSecret:  "test-access",
			RefreshSecret: "test-refresh",
			AccessExpiry:  time.Minute,
			RefreshExpiry: time.Hour,
			Issuer:        "kejani-test",
		},
	}

	userRepo := repository.NewUserRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)
	unitRepo := repository.NewUnitRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	noticeRepo := repository.NewNoticeRepository(db)

	return &env{
		db:         db,
		cfg:        cfg,
		resolver:   authz.NewResolver(db),
		users:      userRepo,
		properties: propertyRepo,
		units:      unitRepo,
		auth:       service.NewAuthService(cfg, userRepo),
		property:   service.NewPropertyService(propertyRepo, userRepo),
		unit:       service.NewUnitService(unitRepo, propertyRepo, userRepo),
		payment:    service.NewPaymentService(paymentRepo, unitRepo),
		notice:     service.NewNoticeService(noticeRepo, unitRepo, userRepo),
	}
}

var testHash = func() string {
	h, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	return string(h)
}()

func (e *env) user(t *testing.T, username string, role domain.Role) *models.User {
	u := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: testHash,
		Role:         string(role),
		IsVerified:   true,
	}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *env) identity(t *testing.T, userID uint) *authz.Identity {
	id, err := e.resolver.Resolve(userID)
	require.NoError(t, err)
	return id
}

func (e *env) propertyOf(t *testing.T, landlordID uint, name string) *models.Property {
	p := &models.Property{Name: name, Address: name + " road", LandlordID: landlordID}
	require.NoError(t, e.db.Create(p).Error)
	return p
}

func (e *env) unitIn(t *testing.T, propertyID uint, number string) *models.Unit {
	u := &models.Unit{
		PropertyID: propertyID,
		UnitNumber: number,
		RentCents:  2000000,
		Status:     string(domain.UnitAvailable),
	}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *env) linkCaretaker(t *testing.T, propertyID, userID uint) {
	require.NoError(t, e.db.Create(&models.PropertyCaretaker{PropertyID: propertyID, UserID: userID}).Error)
}

func (e *env) assign(t *testing.T, unitID, tenantID uint) {
	require.NoError(t, e.units.AssignTenant(unitID, tenantID))
}
