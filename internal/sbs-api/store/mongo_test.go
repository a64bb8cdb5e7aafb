package store

import (
	"context"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/sbs-x/internal/model"
	"github.com/kart-io/sbs-x/internal/pkg/sbstest"
	mongodbopts "github.com/kart-io/sbs-x/pkg/options/mongodb"
)

func TestLiteralEscapesMetacharacters(t *testing.T) {
	re := literal("Luffy (D.)*")
	assert.Equal(t, "i", re.Options)

	compiled := regexp.MustCompile("(?i)" + re.Pattern)
	assert.True(t, compiled.MatchString("monkey luffy (d.)* here"))
	assert.False(t, compiled.MatchString("Luffy DDD"))
}

// newMongoFactory connects to a local MongoDB or skips the test.
func newMongoFactory(t *testing.T) *MongoFactory {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping MongoDB integration test in short mode")
	}

	opts := mongodbopts.NewOptions()
	if uri := os.Getenv("SBS_TEST_MONGODB_URI"); uri != "" {
		opts.URI = uri
	}
	opts.Database = "sbs_test_" + time.Now().Format("150405")
	opts.ConnectAttempts = 1
	opts.ConnectTimeout = 2 * time.Second
	opts.ServerSelectionTimeout = 2 * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	f, err := NewMongoFactory(ctx, opts)
	if err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}
	t.Cleanup(func() {
		_ = f.client.Database().Drop(context.Background())
		_ = f.Close()
	})
	return f
}

func TestMongoStore(t *testing.T) {
	f := newMongoFactory(t)
	ctx := context.Background()

	vols, tags := sbstest.Series(1, 3)
	for i := range vols {
		_, err := f.volumes.coll.InsertOne(ctx, vols[i])
		require.NoError(t, err)
		_, err = f.tags.coll.InsertOne(ctx, tags[i])
		require.NoError(t, err)
	}

	list, err := f.Volumes().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, 1, list[0].Volume)

	v, err := f.Volumes().Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, vols[1], *v)

	_, err = f.Volumes().Get(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	found, err := f.Volumes().SearchText(ctx, "volume 3?")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, 3, found[0].Volume)

	found, err = f.Volumes().SearchText(ctx, "(")
	require.NoError(t, err)
	assert.Empty(t, found)

	byChar, err := f.Tags().SearchByField(ctx, model.FieldCharacters, "sanji")
	require.NoError(t, err)
	assert.Len(t, byChar, 3)

	distinct, err := f.Tags().Distinct(ctx, model.FieldTags)
	require.NoError(t, err)
	assert.Equal(t, []string{"cooking", "food"}, distinct)

	_, err = f.volumes.coll.InsertOne(ctx, vols[0])
	assert.Error(t, err, "volume index must be unique")
}
