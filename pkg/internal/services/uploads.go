package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.solsynth.dev/hypernet/forum/pkg/internal/database"
	"git.solsynth.dev/hypernet/forum/pkg/internal/models"
	"git.solsynth.dev/hypernet/forum/pkg/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

const defaultUploadRetention = 24 * time.Hour

// FileStorage is where finished uploads end up.
type FileStorage interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64, metadata map[string]string) (string, error)
	Delete(ctx context.Context, key string) error
}

type UploadedFile struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Profile     string `json:"profile"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

func uploadTempDir() string {
	if dir := viper.GetString("uploads.temp_dir"); len(dir) > 0 {
		return dir
	}
	return filepath.Join(os.TempDir(), "forum-uploads")
}

var uploadExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// StoreUpload spools src to disk, checks it against the profile and hands it to the storage.
func StoreUpload(ctx context.Context, files FileStorage, profileName string, uploaderID uint, src io.Reader) (UploadedFile, error) {
	var out UploadedFile

	profile, ok := storage.GetProfile(profileName)
	if !ok {
		return out, ValidationError("unknown upload profile %q", profileName)
	}
	if files == nil {
		return out, UpstreamError(nil, "file storage is not configured")
	}

	dir := uploadTempDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return out, fmt.Errorf("unable to prepare upload directory: %v", err)
	}
	spool, err := os.CreateTemp(dir, "upload-*")
	if err != nil {
		return out, fmt.Errorf("unable to spool upload: %v", err)
	}
	defer func() {
		_ = spool.Close()
		if err := os.Remove(spool.Name()); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", spool.Name()).Msg("Unable to remove spooled upload...")
		}
	}()

	size, err := io.Copy(spool, io.LimitReader(src, profile.MaxSize+1))
	if err != nil {
		return out, fmt.Errorf("unable to spool upload: %v", err)
	}
	if size == 0 {
		return out, ValidationError("uploaded file is empty")
	}
	if size > profile.MaxSize {
		return out, ValidationError("file is larger than the %d bytes allowed for %s uploads", profile.MaxSize, profile.Name)
	}

	head := make([]byte, 512)
	if _, err := spool.Seek(0, io.SeekStart); err != nil {
		return out, err
	}
	read, _ := io.ReadFull(spool, head)
	contentType := strings.Split(http.DetectContentType(head[:read]), ";")[0]
	if !lo.Contains(profile.MimeTypes, contentType) {
		return out, ValidationError("%s uploads do not accept %s", profile.Name, contentType)
	}
	if _, err := spool.Seek(0, io.SeekStart); err != nil {
		return out, err
	}

	key := fmt.Sprintf("%s/%s%s", profile.Name, uuid.NewString(), uploadExtensions[contentType])
	url, err := files.Put(ctx, key, contentType, spool, size, profile.Metadata())
	if err != nil {
		return out, UpstreamError(err, "unable to store the uploaded file")
	}

	record := models.Upload{
		Key:         key,
		Profile:     profile.Name,
		ContentType: contentType,
		Size:        size,
		UserID:      uploaderID,
	}
	if err := database.C.Create(&record).Error; err != nil {
		if err := files.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Unable to roll back stored upload...")
		}
		return out, fmt.Errorf("unable to record upload: %v", err)
	}

	log.Debug().Str("key", key).Int64("size", size).Msg("Upload stored.")
	return UploadedFile{
		ID:          key,
		URL:         url,
		Profile:     profile.Name,
		ContentType: contentType,
		Size:        size,
	}, nil
}

// checkUploadKey accepts only keys StoreUpload could have produced, <profile>/<uuid><ext>.
func checkUploadKey(key string) error {
	profile, name, ok := strings.Cut(key, "/")
	if !ok {
		return ValidationError("upload id %q is malformed", key)
	}
	if _, ok := storage.GetProfile(profile); !ok {
		return ValidationError("upload id %q does not belong to an upload profile", key)
	}
	ext := filepath.Ext(name)
	if !lo.Contains(lo.Values(uploadExtensions), ext) {
		return ValidationError("upload id %q is malformed", key)
	}
	if _, err := uuid.Parse(strings.TrimSuffix(name, ext)); err != nil {
		return ValidationError("upload id %q is malformed", key)
	}
	return nil
}

// DeleteUpload removes an upload owned by user, administrators may remove any.
// Once the record is gone storage failures are only logged.
func DeleteUpload(ctx context.Context, files FileStorage, key string, user models.User) error {
	if err := checkUploadKey(key); err != nil {
		return err
	}

	var record models.Upload
	if err := database.C.Where("object_key = ?", key).First(&record).Error; err != nil {
		return wrapQueryError(err, "upload")
	}
	if record.UserID != user.ID && !user.IsAdmin() {
		return ForbiddenError("you can only delete your own uploads")
	}

	if err := database.C.Delete(&record).Error; err != nil {
		return err
	}

	if files == nil {
		log.Warn().Str("key", key).Msg("File storage is not configured, stored object left behind...")
		return nil
	}
	if err := files.Delete(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Unable to delete upload, ignored...")
	}
	return nil
}

// CleanupTempUploads removes spooled files older than the retention window.
func CleanupTempUploads(dir string, retention time.Duration) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	deadline := time.Now().Add(-retention)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(deadline) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			log.Warn().Err(err).Str("file", entry.Name()).Msg("Unable to remove stale upload...")
			continue
		}
		removed++
	}

	return removed, nil
}

func DoAutoUploadCleanup() {
	retention := viper.GetDuration("uploads.retention")
	if retention <= 0 {
		retention = defaultUploadRetention
	}

	log.Debug().Dur("retention", retention).Msg("Now cleaning up stale uploads...")
	removed, err := CleanupTempUploads(uploadTempDir(), retention)
	if err != nil {
		log.Error().Err(err).Msg("An error occurred when cleaning up stale uploads...")
		return
	}

	log.Info().Int("count", removed).Msg("Cleaned up stale uploads.")
}
