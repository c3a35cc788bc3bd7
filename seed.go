package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"clinic-booking-server/internal/models"
)

var specialties = []string{
	"General Practice",
	"Cardiology",
	"Dermatology",
	"Pediatrics",
	"Orthopedics",
	"Neurology",
	"Psychiatry",
	"Ophthalmology",
	"ENT",
}

type seedOptions struct {
	doctors       int
	patients      int
	adminEmail    string
	adminPassword string
	seed          uint64
}

func seedCmd() *cobra.Command {
	var opts seedOptions
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with a bootstrap admin and fake doctors and patients",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			if err := models.AutoMigrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			return runSeed(db, log, opts)
		},
	}
	cmd.Flags().IntVar(&opts.doctors, "doctors", 20, "number of doctors to create")
	cmd.Flags().IntVar(&opts.patients, "patients", 200, "number of patients to create")
	cmd.Flags().StringVar(&opts.adminEmail, "admin-email", "admin@clinic.local", "bootstrap admin email")
	cmd.Flags().StringVar(&opts.adminPassword, "admin-password", "", "bootstrap admin password (required)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "faker seed, 0 for random")
	return cmd
}

func runSeed(db *gorm.DB, log zerolog.Logger, opts seedOptions) error {
	if len(opts.adminPassword) < 8 {
		return errors.New("--admin-password must be at least 8 characters")
	}

	if err := seedAdmin(db, opts.adminEmail, opts.adminPassword); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	log.Info().Str("email", opts.adminEmail).Msg("admin ready")

	faker := gofakeit.New(opts.seed)

	doctors := make([]models.Doctor, 0, opts.doctors)
	for _, email := range uniqueEmails(faker, opts.doctors) {
		doctors = append(doctors, models.Doctor{
			FirstName:     faker.FirstName(),
			LastName:      faker.LastName(),
			Email:         email,
			PhoneNumber:   faker.Phone(),
			Specialty:     specialties[faker.Number(0, len(specialties)-1)],
			LicenseNumber: faker.Numerify("MD-#######"),
			IsActive:      true,
		})
	}
	created, err := insertIgnoringDuplicates(db, doctors)
	if err != nil {
		return fmt.Errorf("seed doctors: %w", err)
	}
	log.Info().Int64("created", created).Msg("doctors seeded")

	oldest := time.Now().AddDate(-90, 0, 0)
	youngest := time.Now().AddDate(-1, 0, 0)
	patients := make([]models.Patient, 0, opts.patients)
	for _, email := range uniqueEmails(faker, opts.patients) {
		dob := faker.DateRange(oldest, youngest).UTC().Truncate(24 * time.Hour)
		patients = append(patients, models.Patient{
			FirstName:   faker.FirstName(),
			LastName:    faker.LastName(),
			Email:       email,
			PhoneNumber: faker.Phone(),
			DateOfBirth: &dob,
			Address:     faker.Address().Address,
			IsActive:    true,
		})
	}
	created, err = insertIgnoringDuplicates(db, patients)
	if err != nil {
		return fmt.Errorf("seed patients: %w", err)
	}
	log.Info().Int64("created", created).Msg("patients seeded")
	return nil
}

func seedAdmin(db *gorm.DB, email, password string) error {
	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	admin := models.User{
		Email:     email,
		FirstName: "Clinic",
		LastName:  "Admin",
		Role:      models.RoleAdmin,
		IsActive:  true,
	}
	if err := admin.SetPassword(password); err != nil {
		return err
	}
	return db.Create(&admin).Error
}

// insertIgnoringDuplicates makes seeding re-runnable: rows whose email is
// already present are skipped.
func insertIgnoringDuplicates[T any](db *gorm.DB, rows []T) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(rows, 100)
	return res.RowsAffected, res.Error
}

func uniqueEmails(faker *gofakeit.Faker, n int) []string {
	seen := make(map[string]struct{}, n)
	out := make([]string, 0, n)
	for len(out) < n {
		email := strings.ToLower(faker.Email())
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		out = append(out, email)
	}
	return out
}
