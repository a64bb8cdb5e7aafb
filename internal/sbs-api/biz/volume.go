package biz

import (
	"context"
	"errors"

	"github.com/kart-io/sbs-x/internal/model"
	"github.com/kart-io/sbs-x/internal/sbs-api/store"
)

// VolumeService serves volumes and their annotations.
type VolumeService struct {
	store store.Factory
}

// NewVolumeService creates a VolumeService.
func NewVolumeService(f store.Factory) *VolumeService {
	return &VolumeService{store: f}
}

// List returns every volume summary ascending by volume.
func (s *VolumeService) List(ctx context.Context) ([]model.VolumeSummary, error) {
	list, err := s.store.Volumes().List(ctx)
	if err != nil {
		return nil, ErrStoreUnavailable.WithCause(err)
	}
	if list == nil {
		list = []model.VolumeSummary{}
	}
	return list, nil
}

// Get returns one volume.
func (s *VolumeService) Get(ctx context.Context, volume int) (*model.Volume, error) {
	if volume <= 0 {
		return nil, ErrInvalidVolume
	}
	v, err := s.store.Volumes().Get(ctx, volume)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrVolumeNotFound
		}
		return nil, ErrStoreUnavailable.WithCause(err)
	}
	return v, nil
}

// GetTags returns the annotations of one volume.
func (s *VolumeService) GetTags(ctx context.Context, volume int) (*model.VolumeTags, error) {
	if volume <= 0 {
		return nil, ErrInvalidVolume
	}
	t, err := s.store.Tags().Get(ctx, volume)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrVolumeTagsNotFound
		}
		return nil, ErrStoreUnavailable.WithCause(err)
	}
	return t, nil
}

// Tags returns every distinct tag, sorted.
func (s *VolumeService) Tags(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, model.FieldTags)
}

// Characters returns every distinct character, sorted.
func (s *VolumeService) Characters(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, model.FieldCharacters)
}

func (s *VolumeService) distinct(ctx context.Context, field model.TagField) ([]string, error) {
	values, err := s.store.Tags().Distinct(ctx, field)
	if err != nil {
		return nil, ErrStoreUnavailable.WithCause(err)
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}

// Ping reports whether the store answers.
func (s *VolumeService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
