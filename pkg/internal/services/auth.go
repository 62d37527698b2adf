package services

import (
	"fmt"
	"time"

	"git.solsynth.dev/hypernet/forum/pkg/internal/database"
	"git.solsynth.dev/hypernet/forum/pkg/internal/models"
	"git.solsynth.dev/hypernet/forum/pkg/internal/sec"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

const defaultRefreshTTL = 30 * 24 * time.Hour

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	ExpiresIn    int64     `json:"expires_in"`
}

func refreshTTL() time.Duration {
	if ttl := viper.GetDuration("security.refresh_ttl"); ttl > 0 {
		return ttl
	}
	return defaultRefreshTTL
}

func issueTokenPair(tx *gorm.DB, issuer *sec.TokenIssuer, user models.User, meta RequestMeta) (TokenPair, error) {
	access, expiresAt, err := issuer.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return TokenPair{}, err
	}

	refresh := uuid.NewString()
	record := models.RefreshToken{
		TokenHash: sec.HashToken(refresh),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(refreshTTL()),
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
	}
	if err := tx.Create(&record).Error; err != nil {
		return TokenPair{}, fmt.Errorf("unable to persist refresh token: %v", err)
	}

	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresAt:    expiresAt,
		ExpiresIn:    int64(issuer.TTL().Seconds()),
	}, nil
}

func Login(issuer *sec.TokenIssuer, email, password string, meta RequestMeta) (models.User, TokenPair, error) {
	var user models.User
	var pair TokenPair

	email, err := normalizeEmail(email)
	if err != nil {
		return user, pair, UnauthorizedError("invalid email or password")
	}

	err = database.C.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", email).First(&user).Error; err != nil {
			return UnauthorizedError("invalid email or password")
		}
		if !sec.VerifyPassword(user.Password, password) {
			return UnauthorizedError("invalid email or password")
		}
		if !user.IsActive {
			return ForbiddenError("account is disabled")
		}

		var err error
		if pair, err = issueTokenPair(tx, issuer, user, meta); err != nil {
			return err
		}

		now := time.Now()
		user.LastLoginAt = &now
		if err := tx.Model(&user).UpdateColumn("last_login_at", now).Error; err != nil {
			return err
		}

		RecordActivity(tx, user.ID, ActivityLogin, "", meta)
		return nil
	})

	return user, pair, err
}

// RefreshSession rotates a refresh token, the presented one is revoked.
func RefreshSession(issuer *sec.TokenIssuer, refresh string, meta RequestMeta) (TokenPair, error) {
	var pair TokenPair

	err := database.C.Transaction(func(tx *gorm.DB) error {
		var record models.RefreshToken
		if err := tx.Where("token_hash = ?", sec.HashToken(refresh)).First(&record).Error; err != nil {
			return UnauthorizedError("invalid refresh token")
		}
		if record.RevokedAt != nil || time.Now().After(record.ExpiresAt) {
			return UnauthorizedError("refresh token expired or revoked")
		}

		var user models.User
		if err := tx.Where("id = ?", record.UserID).First(&user).Error; err != nil {
			return UnauthorizedError("invalid refresh token")
		}
		if !user.IsActive {
			return ForbiddenError("account is disabled")
		}

		if err := tx.Model(&record).UpdateColumn("revoked_at", time.Now()).Error; err != nil {
			return err
		}

		var err error
		pair, err = issueTokenPair(tx, issuer, user, meta)
		return err
	})

	return pair, err
}

func Logout(userID uint, refresh string, meta RequestMeta) error {
	return database.C.Transaction(func(tx *gorm.DB) error {
		query := tx.Model(&models.RefreshToken{}).Where("user_id = ? AND revoked_at IS NULL", userID)
		if len(refresh) > 0 {
			query = query.Where("token_hash = ?", sec.HashToken(refresh))
		}
		if err := query.UpdateColumn("revoked_at", time.Now()).Error; err != nil {
			return err
		}

		RecordActivity(tx, userID, ActivityLogout, "", meta)
		return nil
	})
}

func ChangePassword(userID uint, current, next string, meta RequestMeta) error {
	if len(next) < 8 {
		return ValidationError("password must be at least 8 characters long")
	}

	return database.C.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
			return wrapQueryError(err, "user")
		}
		if !sec.VerifyPassword(user.Password, current) {
			return UnauthorizedError("current password is incorrect")
		}

		hashed, err := sec.HashPassword(next)
		if err != nil {
			return fmt.Errorf("unable to hash password: %v", err)
		}
		if err := tx.Model(&user).Update("password", hashed).Error; err != nil {
			return err
		}
		if err := revokeUserTokens(tx, user.ID); err != nil {
			return err
		}

		RecordActivity(tx, user.ID, ActivityPassword, "", meta)
		return nil
	})
}

func revokeUserTokens(tx *gorm.DB, userID uint) error {
	return tx.Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		UpdateColumn("revoked_at", time.Now()).Error
}

// AuthenticateToken resolves an access token into an active local user.
func AuthenticateToken(issuer *sec.TokenIssuer, token string) (models.User, error) {
	var user models.User

	claims, err := issuer.Verify(token)
	if err != nil {
		return user, UnauthorizedError("invalid access token")
	}
	id, err := claims.UserID()
	if err != nil {
		return user, UnauthorizedError("invalid access token")
	}

	if user, err = GetUserWithID(id); err != nil {
		log.Debug().Uint("user", id).Msg("Access token refers to a missing user.")
		return user, UnauthorizedError("invalid access token")
	}
	if !user.IsActive {
		return user, ForbiddenError("account is disabled")
	}
	return user, nil
}

// PurgeExpiredRefreshTokens drops refresh tokens that can no longer be used.
func PurgeExpiredRefreshTokens() (int64, error) {
	result := database.C.
		Where("expires_at < ? OR revoked_at < ?", time.Now(), time.Now().Add(-refreshTTL())).
		Delete(&models.RefreshToken{})
	return result.RowsAffected, result.Error
}
