package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"kejani/config"
	"kejani/internal/database"
	"kejani/internal/domain"
	"kejani/internal/models"
	"kejani/internal/repository"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "kejanictl",
		Short: "Kejani administration tool",
	}

	rootCmd.AddCommand(
		MigrateCmd(),
		LandlordCmd(),
		SeedCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func getDB() (*gorm.DB, error) {
	cfg := config.Load()
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}
	return db, nil
}

func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := getDB()
			if err != nil {
				return err
			}
			if err := database.AutoMigrate(db); err != nil {
				return fmt.Errorf("failed to migrate: %v", err)
			}
			fmt.Println("Schema up to date")
			return nil
		},
	}
}

// LandlordCmd creates a landlord account. There is no API route for this:
// the register endpoint refuses landlord targets regardless of caller, so
// the CLI is the only way a landlord comes into existence.
func LandlordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "landlord",
		Short: "Create a landlord account",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			firstName, _ := cmd.Flags().GetString("first-name")
			lastName, _ := cmd.Flags().GetString("last-name")
			phone, _ := cmd.Flags().GetString("phone")

			if len(password) < 8 {
				return fmt.Errorf("password must be at least 8 characters")
			}

			db, err := getDB()
			if err != nil {
				return err
			}
			users := repository.NewUserRepository(db)

			email = strings.ToLower(strings.TrimSpace(email))
			taken, err := users.EmailTaken(email)
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("email %s is already in use", email)
			}
			taken, err = users.UsernameTaken(username)
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("username %s is already in use", username)
			}

			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			u := &models.User{
				Username:     username,
				Email:        email,
				PasswordHash: string(hash),
				Role:         string(domain.RoleLandlord),
				FirstName:    firstName,
				LastName:     lastName,
				Phone:        phone,
				IsVerified:   true,
			}
			if err := users.Create(u); err != nil {
				return fmt.Errorf("failed to create landlord: %v", err)
			}
			fmt.Printf("Created landlord %s (id=%d)\n", u.Email, u.ID)
			return nil
		},
	}

	cmd.Flags().String("email", "", "Email address")
	cmd.Flags().String("username", "", "Username")
	cmd.Flags().String("password", "", "Password (min 8 characters)")
	cmd.Flags().String("first-name", "", "First name")
	cmd.Flags().String("last-name", "", "Last name")
	cmd.Flags().String("phone", "", "Phone number")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

// SeedCmd loads a small demo dataset: one landlord with a property, a linked
// caretaker, two tenants in units, a couple of payments and a notice.
// All demo accounts use the password "password123".
func SeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load a demo dataset for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := getDB()
			if err != nil {
				return err
			}
			if err := database.AutoMigrate(db); err != nil {
				return fmt.Errorf("failed to migrate: %v", err)
			}

			hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			user := func(username, role string) *models.User {
				return &models.User{
					Username:     username,
					Email:        username + "@kejani.local",
					PasswordHash: string(hash),
					Role:         role,
					IsVerified:   true,
				}
			}

			landlord := user("demo-landlord", string(domain.RoleLandlord))
			caretaker := user("demo-caretaker", string(domain.RoleCaretaker))
			tenantA := user("demo-tenant-a", string(domain.RoleTenant))
			tenantB := user("demo-tenant-b", string(domain.RoleTenant))
			for _, u := range []*models.User{landlord, caretaker, tenantA, tenantB} {
				if err := db.Create(u).Error; err != nil {
					return fmt.Errorf("failed to seed users (already seeded?): %v", err)
				}
			}

			property := &models.Property{
				Name:       "Sunrise Court",
				Address:    "Riverside Drive, Nairobi",
				LandlordID: landlord.ID,
				TotalUnits: 4,
			}
			if err := db.Create(property).Error; err != nil {
				return err
			}
			if err := db.Create(&models.PropertyCaretaker{
				PropertyID: property.ID,
				UserID:     caretaker.ID,
			}).Error; err != nil {
				return err
			}

			units := []*models.Unit{
				{PropertyID: property.ID, UnitNumber: "A1", Bedrooms: 2, Bathrooms: 1, RentCents: 3500000, Status: string(domain.UnitOccupied), TenantID: &tenantA.ID},
				{PropertyID: property.ID, UnitNumber: "A2", Bedrooms: 2, Bathrooms: 1, RentCents: 3500000, Status: string(domain.UnitOccupied), TenantID: &tenantB.ID},
				{PropertyID: property.ID, UnitNumber: "B1", Bedrooms: 1, Bathrooms: 1, RentCents: 2500000, Status: string(domain.UnitAvailable)},
				{PropertyID: property.ID, UnitNumber: "B2", Bedrooms: 3, Bathrooms: 2, RentCents: 5000000, Status: string(domain.UnitMaintenance)},
			}
			for _, u := range units {
				if err := db.Create(u).Error; err != nil {
					return err
				}
			}

			now := time.Now()
			month, year := int(now.Month()), now.Year()
			payments := []*models.Payment{
				{UnitID: units[0].ID, TenantID: tenantA.ID, AmountCents: 3500000, PaymentType: domain.PaymentTypeRent, Method: domain.PaymentMethodBankTransfer, Status: domain.PaymentStatusCompleted, PeriodMonth: &month, PeriodYear: &year, Reference: uuid.NewString(), RecordedBy: caretaker.ID, PaidAt: now},
				{UnitID: units[1].ID, TenantID: tenantB.ID, AmountCents: 2000000, PaymentType: domain.PaymentTypeRent, Method: domain.PaymentMethodMobileMoney, Status: domain.PaymentStatusPending, PeriodMonth: &month, PeriodYear: &year, Reference: uuid.NewString(), RecordedBy: caretaker.ID, PaidAt: now},
			}
			for _, p := range payments {
				if err := db.Create(p).Error; err != nil {
					return err
				}
			}

			notice := &models.Notice{
				AuthorID:     landlord.ID,
				Title:        "Water maintenance on Saturday",
				Body:         "Water will be off from 9am to noon while the pump is serviced.",
				Priority:     string(domain.PriorityHigh),
				AudienceType: string(domain.AudienceAllTenants),
				Published:    true,
			}
			if err := db.Create(notice).Error; err != nil {
				return err
			}

			fmt.Println("Seeded demo data:")
			fmt.Printf("  landlord  %s\n", landlord.Email)
			fmt.Printf("  caretaker %s\n", caretaker.Email)
			fmt.Printf("  tenants   %s, %s\n", tenantA.Email, tenantB.Email)
			fmt.Println("  password  password123")
			return nil
		},
	}
}
