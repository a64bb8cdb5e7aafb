package biz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/sbs-x/internal/model"
	"github.com/kart-io/sbs-x/internal/pkg/sbstest"
	"github.com/kart-io/sbs-x/pkg/errors"
)

func TestVolumeService(t *testing.T) {
	ctx := context.Background()
	vols, tags := sbstest.Series(1, 3)
	svc := NewVolumeService(newFactory(vols, tags[:2]))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.VolumeSummary{
		{Volume: 1, Summary: "Volume 1"},
		{Volume: 2, Summary: "Volume 2"},
		{Volume: 3, Summary: "Volume 3"},
	}, list)

	v, err := svc.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, vols[1], *v)

	_, err = svc.Get(ctx, 4)
	assert.ErrorIs(t, err, ErrVolumeNotFound)
	_, err = svc.Get(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidVolume)

	tg, err := svc.GetTags(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, tg.Volume)

	_, err = svc.GetTags(ctx, 3)
	assert.ErrorIs(t, err, ErrVolumeTagsNotFound)
	_, err = svc.GetTags(ctx, -1)
	assert.ErrorIs(t, err, ErrInvalidVolume)

	all, err := svc.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"cooking", "food"}, all)

	chars, err := svc.Characters(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Luffy", "Sanji"}, chars)

	require.NoError(t, svc.Ping(ctx))
}

func TestVolumeServiceEmptyStore(t *testing.T) {
	svc := NewVolumeService(newFactory(nil, nil))

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	tags, err := svc.Tags(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tags)
}

func TestVolumeServiceStoreFailure(t *testing.T) {
	ctx := context.Background()
	svc := NewVolumeService(brokenFactory{})

	_, err := svc.List(ctx)
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = svc.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = svc.GetTags(ctx, 1)
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = svc.Characters(ctx)
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	e := errors.FromError(err)
	assert.Equal(t, 500, e.HTTPStatus())
	assert.NotContains(t, e.Message("en"), "10.0.0.7")
}

func TestErrorCodes(t *testing.T) {
	assert.Equal(t, 400, ErrEmptyTerm.HTTPStatus())
	assert.Equal(t, 400, ErrInvalidVolume.HTTPStatus())
	assert.Equal(t, 404, ErrVolumeNotFound.HTTPStatus())
	assert.Equal(t, 404, ErrVolumeTagsNotFound.HTTPStatus())
	assert.Equal(t, errors.MakeCode(errors.ServiceSBS, errors.CategoryResource, 1), ErrVolumeNotFound.Code)

	name, ok := errors.GetServiceName(errors.ServiceSBS)
	require.True(t, ok)
	assert.Equal(t, "sbs", name)
}
