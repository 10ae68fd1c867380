package bootstrap

import (
	"fmt"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/logger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Account{},
		&entity.Follow{},
		&entity.Post{},
		&entity.Comment{},
		&entity.Reaction{},
		&entity.Report{},
		&entity.AuditEntry{},
		&entity.Notification{},
	)
}

// SeedAdminAccount creates the first administrator when no active admin
// exists, so the last-admin invariant holds from the first boot.
func SeedAdminAccount(db *gorm.DB, email, password string) error {
	var count int64
	if err := db.Model(&entity.Account{}).
		Where("role = ? AND active = ?", entity.RoleAdmin, true).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("Admin account already exists, skipping seed")
		return nil
	}

	if password == "" {
		return fmt.Errorf("SEED_ADMIN_PASSWORD is required to seed the first admin account")
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := entity.Account{
		Username:     "admin",
		Email:        email,
		PasswordHash: string(hashedPasswordBytes),
		DisplayName:  "Administrator",
		Role:         entity.RoleAdmin,
		Active:       true,
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	logger.Info("Admin account seeded: %s", email)
	return nil
}
