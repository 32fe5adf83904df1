package main

import (
	"context"
	"flag"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/rs/zerolog/log"

	"github.com/medisched/scheduler-api/internal/config"
	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/internal/repository"
	"github.com/medisched/scheduler-api/internal/repository/postgres"
	"github.com/medisched/scheduler-api/pkg/security"
)

var specializations = []string{
	"Dermatology",
	"Cardiology",
	"General Practice",
	"Orthopedics",
	"Endocrinology",
	"Neurology",
	"Pediatrics",
	"Psychiatry",
}

func main() {
	doctors := flag.Int("doctors", 20, "number of doctors to seed")
	patients := flag.Int("patients", 200, "number of patients to seed")
	staff := flag.Int("staff", 5, "number of staff members to seed")
	days := flag.Int("days", 7, "days of slots to publish per doctor")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	base := postgres.NewBaseRepository(db)
	doctorRepo := postgres.NewDoctorRepository(base)
	patientRepo := postgres.NewPatientRepository(base)
	staffRepo := postgres.NewStaffRepository(base)
	slotRepo := postgres.NewSlotRepository(base)

	gofakeit.Seed(time.Now().UnixNano())
	hasher := security.NewBcryptHasher(10)

	// Every seeded account shares one password for local testing.
	hash, err := hasher.Hash("password123")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to hash seed password")
	}

	ctx := context.Background()

	seeded, err := seedDoctors(ctx, doctorRepo, *doctors, hash)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed doctors")
	}
	log.Info().Int("count", len(seeded)).Msg("doctors seeded")

	if err := seedPatients(ctx, patientRepo, *patients, hash); err != nil {
		log.Fatal().Err(err).Msg("failed to seed patients")
	}
	log.Info().Int("count", *patients).Msg("patients seeded")

	if err := seedStaff(ctx, staffRepo, *staff, hash); err != nil {
		log.Fatal().Err(err).Msg("failed to seed staff")
	}
	log.Info().Int("count", *staff).Msg("staff seeded")

	slots, err := seedSlots(ctx, slotRepo, seeded, *days)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed slots")
	}
	log.Info().Int("count", slots).Msg("slots seeded")
}

func seedDoctors(ctx context.Context, repo repository.DoctorRepository, count int, hash string) ([]*model.Doctor, error) {
	doctors := make([]*model.Doctor, 0, count)
	for i := 0; i < count; i++ {
		doctor := &model.Doctor{
			Name:           gofakeit.Name(),
			Specialization: specializations[gofakeit.Number(0, len(specializations)-1)],
			Email:          gofakeit.Email(),
			PasswordHash:   hash,
		}
		if err := repo.Create(ctx, doctor); err != nil {
			return nil, err
		}
		doctors = append(doctors, doctor)
	}
	return doctors, nil
}

func seedPatients(ctx context.Context, repo repository.PatientRepository, count int, hash string) error {
	for i := 0; i < count; i++ {
		patient := &model.Patient{
			Name:         gofakeit.Name(),
			Email:        gofakeit.Email(),
			Phone:        gofakeit.Phone(),
			PasswordHash: hash,
		}
		if err := repo.Create(ctx, patient); err != nil {
			return err
		}
	}
	return nil
}

func seedStaff(ctx context.Context, repo repository.StaffRepository, count int, hash string) error {
	for i := 0; i < count; i++ {
		member := &model.Staff{
			Name:         gofakeit.Name(),
			Email:        gofakeit.Email(),
			PasswordHash: hash,
		}
		if err := repo.Create(ctx, member); err != nil {
			return err
		}
	}
	return nil
}

// seedSlots publishes a 9-to-5 grid of 30 minute slots per doctor per day,
// starting tomorrow.
func seedSlots(ctx context.Context, repo repository.SlotRepository, doctors []*model.Doctor, days int) (int, error) {
	total := 0
	start := time.Now().AddDate(0, 0, 1).Truncate(24 * time.Hour)

	for _, doctor := range doctors {
		for d := 0; d < days; d++ {
			day := start.AddDate(0, 0, d)
			for hour := 9; hour < 17; hour++ {
				for _, minute := range []int{0, 30} {
					slotStart := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC)
					slot := &model.Slot{
						DoctorID:  doctor.ID,
						Date:      day,
						StartTime: slotStart,
						EndTime:   slotStart.Add(30 * time.Minute),
						Status:    model.SlotStatusAvailable,
					}
					if err := repo.Create(ctx, slot); err != nil {
						return total, err
					}
					total++
				}
			}
		}
	}
	return total, nil
}
