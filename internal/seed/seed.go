// Package seed creates the demo accounts and catalog a fresh installation
// starts with. Every step is idempotent, so seeding can run on each deploy.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AlagappanMk24/Gymunity/internal/config"
	packagecommands "github.com/AlagappanMk24/Gymunity/modules/packages/application/commands"
	programcommands "github.com/AlagappanMk24/Gymunity/modules/programs/application/commands"
	programdomain "github.com/AlagappanMk24/Gymunity/modules/programs/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
	trainerdomain "github.com/AlagappanMk24/Gymunity/modules/trainers/domain"
)

// Demo account emails.
const (
	AdminEmail   = "admin@gymunity.com"
	TrainerEmail = "trainer@gymunity.com"
	ClientEmail  = "client@gymunity.com"
)

// Accounts is implemented by the identity module.
type Accounts interface {
	EnsureAccount(ctx context.Context, role types.Role, userName, email, fullName, password string) (types.UserID, bool, error)
}

// Trainers is implemented by the trainers module.
type Trainers interface {
	EnsureProfile(ctx context.Context, userID types.UserID, handle string, details trainerdomain.ProfileDetails, verified bool) (types.TrainerID, bool, error)
}

// Programs is implemented by the programs module.
type Programs interface {
	EnsureExercise(ctx context.Context, details programdomain.ExerciseDetails) (types.ExerciseID, bool, error)
	EnsureProgram(ctx context.Context, trainerUserID types.UserID, tmpl programcommands.ProgramTemplate) (types.ProgramID, bool, error)
}

// Packages is implemented by the packages module.
type Packages interface {
	EnsurePackage(ctx context.Context, trainerUserID types.UserID, in packagecommands.PackageInput) (types.PackageID, bool, error)
}

// Seeder writes the demo data through the modules' public APIs.
type Seeder struct {
	accounts  Accounts
	trainers  Trainers
	programs  Programs
	packages  Packages
	passwords config.SeedConfig
	logger    *slog.Logger
}

func New(accounts Accounts, trainers Trainers, programs Programs, packages Packages, passwords config.SeedConfig, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		accounts:  accounts,
		trainers:  trainers,
		programs:  programs,
		packages:  packages,
		passwords: passwords,
		logger:    logger.With("component", "seed"),
	}
}

// Result identifies the seeded records.
type Result struct {
	AdminID          types.UserID
	TrainerUserID    types.UserID
	TrainerID        types.TrainerID
	ClientID         types.UserID
	ProgramID        types.ProgramID
	PackageID        types.PackageID
	ExercisesCreated int
}

// Run seeds everything that is missing.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	var (
		res Result
		err error
	)
	if res.AdminID, err = s.account(ctx, types.RoleAdmin, "admin", AdminEmail, "Gymunity Admin", s.passwords.AdminPassword); err != nil {
		return res, err
	}
	if res.TrainerUserID, err = s.account(ctx, types.RoleTrainer, "trainer", TrainerEmail, "Demo Trainer", s.passwords.TrainerPassword); err != nil {
		return res, err
	}
	if res.ClientID, err = s.account(ctx, types.RoleClient, "client", ClientEmail, "Demo Client", s.passwords.ClientPassword); err != nil {
		return res, err
	}

	trainerID, created, err := s.trainers.EnsureProfile(ctx, res.TrainerUserID, "demotrainer", trainerdomain.ProfileDetails{
		Bio:             "Certified strength coach helping beginners build a solid base.",
		BrandingColors:  "#1E3A8A,#F59E0B",
		YearsExperience: 5,
	}, true)
	if err != nil {
		return res, fmt.Errorf("seeding trainer profile: %w", err)
	}
	res.TrainerID = trainerID
	s.logStep(ctx, "trainer profile", created)

	for _, ex := range exerciseLibrary {
		_, created, err := s.programs.EnsureExercise(ctx, ex)
		if err != nil {
			return res, fmt.Errorf("seeding exercise %q: %w", ex.Name, err)
		}
		if created {
			res.ExercisesCreated++
		}
	}
	s.logger.InfoContext(ctx, "exercise library seeded", slog.Int("created", res.ExercisesCreated))

	programID, created, err := s.programs.EnsureProgram(ctx, res.TrainerUserID, beginnerStrength)
	if err != nil {
		return res, fmt.Errorf("seeding program: %w", err)
	}
	res.ProgramID = programID
	s.logStep(ctx, "program", created)

	packageID, created, err := s.packages.EnsurePackage(ctx, res.TrainerUserID, packagecommands.PackageInput{
		Name:              "Starter Pack",
		Description:       "Everything a beginner needs for the first two months.",
		PriceMonthlyCents: 2999_00,
		Currency:          "EGP",
		FeaturesJSON:      `{"allPrograms":true,"formChecksPerWeek":1,"priorityMessaging":false}`,
		PromoCode:         "STARTER6",
		ProgramIDs:        []types.ProgramID{programID},
	})
	if err != nil {
		return res, fmt.Errorf("seeding package: %w", err)
	}
	res.PackageID = packageID
	s.logStep(ctx, "package", created)

	return res, nil
}

func (s *Seeder) account(ctx context.Context, role types.Role, userName, email, fullName, password string) (types.UserID, error) {
	id, created, err := s.accounts.EnsureAccount(ctx, role, userName, email, fullName, password)
	if err != nil {
		return types.UserID{}, fmt.Errorf("seeding %s account: %w", role, err)
	}
	s.logStep(ctx, role.String()+" account", created)
	return id, nil
}

func (s *Seeder) logStep(ctx context.Context, what string, created bool) {
	if created {
		s.logger.InfoContext(ctx, "seeded", slog.String("record", what))
		return
	}
	s.logger.DebugContext(ctx, "already present", slog.String("record", what))
}
