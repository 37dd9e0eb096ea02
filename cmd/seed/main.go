package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"

	"golang.org/x/crypto/bcrypt"

	"openmart/internal/config"
	"openmart/internal/db"
	"openmart/internal/model"
	"openmart/internal/repository"
	"openmart/internal/service"
)

func main() {
	staffUsername := flag.String("staff-username", "", "create a staff account with this username")
	staffEmail := flag.String("staff-email", "", "email of the staff account")
	staffPassword := flag.String("staff-password", "", "password of the staff account")
	flag.Parse()

	cfg := config.Load()
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	log.Info("starting seed script")

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	log.Info("database migrations completed")

	ctx := context.Background()
	categories := service.NewCategoryService(repository.NewCategoryRepository(gormDB), nil)
	defaults := model.DefaultCategories()
	created, err := categories.Seed(ctx, defaults)
	if err != nil {
		log.Error("failed to seed categories", "error", err)
		os.Exit(1)
	}
	log.Info("categories seeded", "created", created, "existing", len(defaults)-created)

	if *staffUsername != "" {
		if err := createStaff(ctx, repository.NewUserRepository(gormDB), *staffUsername, *staffEmail, *staffPassword); err != nil {
			log.Error("failed to create staff account", "error", err)
			os.Exit(1)
		}
		log.Info("staff account created", "username", *staffUsername)
	}

	log.Info("seed completed successfully")
}

// createStaff inserts a verified staff user with a profile.
func createStaff(ctx context.Context, users repository.UserRepository, username, email, password string) error {
	if email == "" || len(password) < 8 {
		return errors.New("staff account needs -staff-email and a -staff-password of at least 8 characters")
	}
	exists, err := users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return err
	}
	if exists {
		return errors.New("username or email already taken")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := &model.User{
		Username:      username,
		Email:         email,
		PasswordHash:  string(hash),
		IsStaff:       true,
		IsVerified:    true,
		EmailVerified: true,
	}
	return users.CreateWithProfile(ctx, user, &model.UserProfile{PreferredContact: model.ContactChat})
}
