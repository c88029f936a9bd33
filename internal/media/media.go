package media

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/berlinbruno/podpirate/internal/apperr"
	"github.com/berlinbruno/podpirate/internal/storage"
)

// Service mediates between the content services and the blob store. Documents
// only carry object path strings; every URL handed to a client is signed here.
type Service struct {
	blobs storage.BlobStore
}

// NewService creates a media service over the given blob store.
func NewService(blobs storage.BlobStore) *Service {
	return &Service{blobs: blobs}
}

// DownloadURL signs a read URL for path, or returns "" for an empty path.
func (s *Service) DownloadURL(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "", nil
	}
	return s.blobs.SignedDownloadURL(ctx, path)
}

// UploadURL signs a write URL for path.
func (s *Service) UploadURL(ctx context.Context, path string) (string, error) {
	return s.blobs.SignedUploadURL(ctx, path)
}

// RequireUploaded verifies the blob behind path actually exists in storage.
// A recorded path whose object is missing fails as an incomplete upload.
func (s *Service) RequireUploaded(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	ok, err := s.blobs.Exists(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to verify upload: %w", err)
	}
	if !ok {
		return apperr.ErrFileUploadIncomplete
	}
	return nil
}

// DeleteIfSet removes the blob behind path. Empty paths and already-absent
// blobs are no-ops, so cascades can be retried safely.
func (s *Service) DeleteIfSet(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	return s.blobs.Delete(ctx, path)
}

// Replace validates the new blob and releases the old one when the reference
// changed. Used by partial updates that swap a media path.
func (s *Service) Replace(ctx context.Context, newPath, oldPath string) error {
	if err := s.RequireUploaded(ctx, newPath); err != nil {
		return err
	}
	if oldPath != "" && oldPath != newPath {
		return s.DeleteIfSet(ctx, oldPath)
	}
	return nil
}

// Blob path builders. Object names embed a fresh UUID so re-uploads never
// collide with a cached object.

func ProfileImagePath(accountID, ext string) string {
	return fmt.Sprintf("media/accounts/%s/profile/%s.%s", accountID, uuid.New().String(), ext)
}

func PodcastCoverPath(podcastID, ext string) string {
	return fmt.Sprintf("media/podcasts/%s/cover/%s.%s", podcastID, uuid.New().String(), ext)
}

func PodcastBannerPath(podcastID, ext string) string {
	return fmt.Sprintf("media/podcasts/%s/banner/%s.%s", podcastID, uuid.New().String(), ext)
}

func EpisodeImagePath(podcastID string, episodeIndex int, ext string) string {
	return fmt.Sprintf("media/podcasts/%s/episodes/%d/image/%s.%s", podcastID, episodeIndex, uuid.New().String(), ext)
}

func EpisodeAudioPath(podcastID string, episodeIndex int, ext string) string {
	return fmt.Sprintf("media/podcasts/%s/episodes/%d/audio/%s.%s", podcastID, episodeIndex, uuid.New().String(), ext)
}
