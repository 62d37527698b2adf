package services

import (
	"fmt"
	"net/mail"
	"strings"

	"git.solsynth.dev/hypernet/forum/pkg/internal/database"
	"git.solsynth.dev/hypernet/forum/pkg/internal/models"
	"git.solsynth.dev/hypernet/forum/pkg/internal/sec"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

type UserInput struct {
	Email     string
	Username  string
	Password  string
	FirstName string
	LastName  string
	Avatar    *string
	Role      string
	IsActive  *bool
}

type UserPatch struct {
	Email     *string
	Username  *string
	Password  *string
	FirstName *string
	LastName  *string
	Avatar    *string
	Role      *string
	IsActive  *bool
}

func ListUsers(take, offset int, probe, role string) ([]models.User, int64, error) {
	tx := database.C.Model(&models.User{})
	if len(probe) > 0 {
		probe = "%" + strings.ToLower(probe) + "%"
		tx = tx.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(username) LIKE ? OR LOWER(email) LIKE ?",
			probe, probe, probe, probe,
		)
	}
	if len(role) > 0 {
		tx = tx.Where("role = ?", role)
	}

	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := tx.Order("created_at DESC").Offset(offset).Limit(take).Find(&users).Error
	return users, count, err
}

func GetUserWithID(id uint) (models.User, error) {
	var user models.User
	if err := database.C.Where("id = ?", id).First(&user).Error; err != nil {
		return user, wrapQueryError(err, "user")
	}
	return user, nil
}

func validateUserRole(role string) error {
	if !lo.Contains(models.UserRoles, role) {
		return ValidationError("role must be one of %s", strings.Join(models.UserRoles, ", "))
	}
	return nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return email, ValidationError("invalid email address %q", email)
	}
	return email, nil
}

func checkUserUnique(tx *gorm.DB, column, value string, excludeID uint) error {
	query := tx.Model(&models.User{}).Where(column+" = ?", value)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return err
	} else if count > 0 {
		return ConflictError("user with %s %q already exists", column, value)
	}
	return nil
}

func NewUser(input UserInput) (models.User, error) {
	var user models.User

	email, err := normalizeEmail(input.Email)
	if err != nil {
		return user, err
	}
	username := strings.TrimSpace(input.Username)
	if len(username) == 0 {
		return user, ValidationError("username is required")
	}
	role := lo.Ternary(len(input.Role) > 0, input.Role, models.UserRoleUser)
	if err := validateUserRole(role); err != nil {
		return user, err
	}
	if len(input.Password) < 8 {
		return user, ValidationError("password must be at least 8 characters long")
	}

	hashed, err := sec.HashPassword(input.Password)
	if err != nil {
		return user, fmt.Errorf("unable to hash password: %v", err)
	}

	err = database.C.Transaction(func(tx *gorm.DB) error {
		if err := checkUserUnique(tx, "email", email, 0); err != nil {
			return err
		}
		if err := checkUserUnique(tx, "username", username, 0); err != nil {
			return err
		}

		user = models.User{
			Email:     email,
			Username:  username,
			Password:  hashed,
			FirstName: input.FirstName,
			LastName:  input.LastName,
			Avatar:    input.Avatar,
			Role:      role,
			IsActive:  lo.FromPtrOr(input.IsActive, true),
		}
		return wrapQueryError(tx.Create(&user).Error, "user")
	})

	return user, err
}

func EditUser(id uint, patch UserPatch) (models.User, error) {
	var user models.User

	err := database.C.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&user).Error; err != nil {
			return wrapQueryError(err, "user")
		}

		if patch.Email != nil {
			email, err := normalizeEmail(*patch.Email)
			if err != nil {
				return err
			}
			if err := checkUserUnique(tx, "email", email, user.ID); err != nil {
				return err
			}
			user.Email = email
		}
		if patch.Username != nil {
			username := strings.TrimSpace(*patch.Username)
			if len(username) == 0 {
				return ValidationError("username is required")
			}
			if err := checkUserUnique(tx, "username", username, user.ID); err != nil {
				return err
			}
			user.Username = username
		}
		if patch.Password != nil {
			if len(*patch.Password) < 8 {
				return ValidationError("password must be at least 8 characters long")
			}
			hashed, err := sec.HashPassword(*patch.Password)
			if err != nil {
				return fmt.Errorf("unable to hash password: %v", err)
			}
			user.Password = hashed
		}
		if patch.Role != nil {
			if err := validateUserRole(*patch.Role); err != nil {
				return err
			}
			user.Role = *patch.Role
		}
		if patch.FirstName != nil {
			user.FirstName = *patch.FirstName
		}
		if patch.LastName != nil {
			user.LastName = *patch.LastName
		}
		if patch.Avatar != nil {
			user.Avatar = patch.Avatar
		}
		if patch.IsActive != nil {
			user.IsActive = *patch.IsActive
		}

		if err := tx.Omit("post_count").Save(&user).Error; err != nil {
			return wrapQueryError(err, "user")
		}
		if patch.Password != nil || !user.IsActive {
			return revokeUserTokens(tx, user.ID)
		}
		return nil
	})

	return user, err
}

// DeleteUser keeps the user's posts, they point at a missing author afterwards.
func DeleteUser(id uint) error {
	return database.C.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ?", id).First(&user).Error; err != nil {
			return wrapQueryError(err, "user")
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
}

// EnsureBootstrapAdmin creates the first administrator from settings on an empty user table.
func EnsureBootstrapAdmin() error {
	email := viper.GetString("bootstrap.admin_email")
	password := viper.GetString("bootstrap.admin_password")
	if len(email) == 0 || len(password) == 0 {
		return nil
	}

	var count int64
	if err := database.C.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	} else if count > 0 {
		return nil
	}

	user, err := NewUser(UserInput{
		Email:     email,
		Username:  lo.Ternary(viper.IsSet("bootstrap.admin_username"), viper.GetString("bootstrap.admin_username"), "admin"),
		Password:  password,
		FirstName: "Forum",
		LastName:  "Administrator",
		Role:      models.UserRoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("unable to create bootstrap admin: %v", err)
	}

	log.Info().Uint("user", user.ID).Str("email", user.Email).Msg("Bootstrap administrator created.")
	return nil
}
