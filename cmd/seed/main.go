// seed loads or wipes the development data set.
//
//	go run ./cmd/seed --import --file data/seed.yaml
//	go run ./cmd/seed --delete
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/njprem/TourBook_APP_BackEnd/internal/domain"
	"github.com/njprem/TourBook_APP_BackEnd/internal/logging"
	"github.com/njprem/TourBook_APP_BackEnd/internal/repository/postgres"
	"github.com/njprem/TourBook_APP_BackEnd/internal/service"
	"github.com/njprem/TourBook_APP_BackEnd/internal/util"
)

type seedUser struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
	Photo    string `yaml:"photo"`
}

type seedTour struct {
	domain.TourFields `yaml:",inline"`
	GuideEmails       []string `yaml:"guide_emails"`
}

type seedReview struct {
	Tour   string `yaml:"tour"`
	User   string `yaml:"user"`
	Review string `yaml:"review"`
	Rating int    `yaml:"rating"`
}

type seedFile struct {
	Users   []seedUser   `yaml:"users"`
	Tours   []seedTour   `yaml:"tours"`
	Reviews []seedReview `yaml:"reviews"`
}

func main() {
	_ = godotenv.Load()

	var (
		importData bool
		deleteData bool
		file       string
		dsn        string
		cost       int
	)
	flags := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	flags.BoolVar(&importData, "import", false, "load the seed file into the database")
	flags.BoolVar(&deleteData, "delete", false, "remove all users, tours and reviews")
	flags.StringVarP(&file, "file", "f", "data/seed.yaml", "seed file to import")
	flags.StringVar(&dsn, "database-url", os.Getenv("DATABASE_URL"), "postgres connection string")
	flags.IntVar(&cost, "bcrypt-cost", util.DefaultBcryptCost, "bcrypt cost for seeded passwords")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	logger, cleanup, err := logging.New(logging.Options{})
	if err != nil {
		logging.Fallback().Fatal("init logger", zap.Error(err))
	}
	defer cleanup()

	if importData == deleteData {
		logger.Fatal("pass exactly one of --import or --delete")
	}
	if dsn == "" {
		logger.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	db, err := postgres.New(dsn)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db.DB); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}

	if deleteData {
		if err := postgres.Purge(ctx, db); err != nil {
			logger.Fatal("delete data", zap.Error(err))
		}
		logger.Info("data successfully deleted")
		return
	}

	data, err := readSeed(file)
	if err != nil {
		logger.Fatal("read seed file", zap.String("file", file), zap.Error(err))
	}

	users := postgres.NewUserRepo(db)
	tours := postgres.NewTourRepo(db)
	reviews := postgres.NewReviewRepo(db)
	s := &seeder{
		users:   users,
		tours:   service.NewTourService(tours, users, reviews, nil, service.TourServiceConfig{}),
		reviews: service.NewReviewService(reviews, tours),
		cost:    cost,
		byEmail: map[string]uuid.UUID{},
		byTour:  map[string]uuid.UUID{},
	}
	if err := s.run(ctx, data); err != nil {
		logger.Fatal("import data", zap.Error(err))
	}
	logger.Info("data successfully loaded",
		zap.Int("users", len(data.Users)),
		zap.Int("tours", len(data.Tours)),
		zap.Int("reviews", len(data.Reviews)),
	)
}

func readSeed(path string) (*seedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data seedFile
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

type seeder struct {
	users   *postgres.UserRepository
	tours   *service.TourService
	reviews *service.ReviewService
	cost    int
	byEmail map[string]uuid.UUID
	byTour  map[string]uuid.UUID
}

func (s *seeder) run(ctx context.Context, data *seedFile) error {
	for _, u := range data.Users {
		if err := s.createUser(ctx, u); err != nil {
			return fmt.Errorf("user %s: %w", u.Email, err)
		}
	}
	for _, t := range data.Tours {
		if err := s.createTour(ctx, t); err != nil {
			return fmt.Errorf("tour %s: %w", deref(t.Name), err)
		}
	}
	for i, r := range data.Reviews {
		if err := s.createReview(ctx, r); err != nil {
			return fmt.Errorf("review %d: %w", i, err)
		}
	}
	return nil
}

func (s *seeder) createUser(ctx context.Context, u seedUser) error {
	role := domain.RoleUser
	if u.Role != "" {
		parsed, ok := domain.ParseRole(u.Role)
		if !ok {
			return fmt.Errorf("unknown role %q", u.Role)
		}
		role = parsed
	}
	if err := util.ValidatePassword(u.Password); err != nil {
		return err
	}
	hash, err := util.HashPassword(u.Password, s.cost)
	if err != nil {
		return err
	}
	email := strings.ToLower(strings.TrimSpace(u.Email))
	created, err := s.users.Create(ctx, domain.NewUser{
		Name:         strings.TrimSpace(u.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		return err
	}
	if u.Photo != "" {
		photo := u.Photo
		if _, err := s.users.Update(ctx, created.ID, domain.UserUpdate{Photo: &photo}); err != nil {
			return err
		}
	}
	s.byEmail[email] = created.ID
	return nil
}

func (s *seeder) createTour(ctx context.Context, t seedTour) error {
	fields := t.TourFields
	if len(t.GuideEmails) > 0 {
		guides := make([]uuid.UUID, 0, len(t.GuideEmails))
		for _, email := range t.GuideEmails {
			id, ok := s.byEmail[strings.ToLower(email)]
			if !ok {
				return fmt.Errorf("unknown guide %q", email)
			}
			guides = append(guides, id)
		}
		fields.Guides = &guides
	}
	tour, err := s.tours.CreateTour(ctx, fields, nil)
	if err != nil {
		return err
	}
	s.byTour[tour.Name] = tour.ID
	return nil
}

func (s *seeder) createReview(ctx context.Context, r seedReview) error {
	tourID, ok := s.byTour[r.Tour]
	if !ok {
		return fmt.Errorf("unknown tour %q", r.Tour)
	}
	userID, ok := s.byEmail[strings.ToLower(r.User)]
	if !ok {
		return fmt.Errorf("unknown user %q", r.User)
	}
	_, _, err := s.reviews.CreateReview(ctx, userID, service.ReviewInput{
		TourID: tourID,
		Review: r.Review,
		Rating: r.Rating,
	})
	return err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
