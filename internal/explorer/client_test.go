package explorer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/sbs-x/internal/model"
	"github.com/kart-io/sbs-x/internal/pkg/sbstest"
	"github.com/kart-io/sbs-x/internal/sbs-api/biz"
	"github.com/kart-io/sbs-x/internal/sbs-api/handler"
	"github.com/kart-io/sbs-x/internal/sbs-api/router"
	"github.com/kart-io/sbs-x/internal/sbs-api/store"
	"github.com/kart-io/sbs-x/pkg/infra/server"
	"github.com/kart-io/sbs-x/pkg/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestClient(t *testing.T, h http.Handler, opts ...ClientOption) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts = append([]ClientOption{WithRetry(3, time.Millisecond)}, opts...)
	return NewClient(srv.URL+"/api/sbs/", opts...)
}

func TestClientVolume(t *testing.T) {
	var clientID atomic.Value
	r := gin.New()
	r.GET("/api/sbs/volumes/:volume", func(c *gin.Context) {
		clientID.Store(c.GetHeader(HeaderClientID))
		c.JSON(http.StatusOK, sbstest.Volume107())
	})

	c := newTestClient(t, r, WithClientID("cli-1"))
	v, err := c.Volume(context.Background(), 107)
	require.NoError(t, err)
	assert.Equal(t, 107, v.Volume)
	assert.Equal(t, "107-Q3", v.Chapters[0].Sections[0].ID)
	assert.Equal(t, "cli-1", clientID.Load())
}

func TestClientNotFound(t *testing.T) {
	r := gin.New()
	r.GET("/api/sbs/volumes/:volume", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"code": 1330001, "message": "Volume not found"})
	})

	_, err := newTestClient(t, r).Volume(context.Background(), 9)
	require.ErrorIs(t, err, ErrNotFound)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, 1330001, apiErr.Code)
	assert.Equal(t, "Volume not found", apiErr.Message)
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	r := gin.New()
	r.GET("/api/sbs/volumes", func(c *gin.Context) {
		if calls.Add(1) < 3 {
			c.JSON(http.StatusServiceUnavailable, gin.H{"message": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, []model.VolumeSummary{{Volume: 1}, {Volume: 2}})
	})

	got, err := newTestClient(t, r).Volumes(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.EqualValues(t, 3, calls.Load())
}

func TestClientGivesUpAfterAttempts(t *testing.T) {
	var calls atomic.Int32
	r := gin.New()
	r.GET("/api/sbs/tags", func(c *gin.Context) {
		calls.Add(1)
		c.Status(http.StatusBadGateway)
	})

	_, err := newTestClient(t, r).Tags(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
	assert.EqualValues(t, 3, calls.Load())
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	r := gin.New()
	r.GET("/api/sbs/search/text/:term", func(c *gin.Context) {
		calls.Add(1)
		c.JSON(http.StatusBadRequest, gin.H{"code": 1330001, "message": "Search term must not be empty"})
	})

	_, err := newTestClient(t, r).Search(context.Background(), "x", model.SearchText)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.EqualValues(t, 1, calls.Load())
}

func TestClientEscapesTerm(t *testing.T) {
	var term atomic.Value
	r := gin.New()
	r.UseRawPath = true
	r.UnescapePathValues = true
	r.GET("/api/sbs/search/character/:name", func(c *gin.Context) {
		term.Store(c.Param("name"))
		c.JSON(http.StatusOK, []model.MatchResult{})
	})

	got, err := newTestClient(t, r).Search(context.Background(), "Monkey D. Luffy/?#", model.SearchCharacter)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, "Monkey D. Luffy/?#", term.Load())
}

func TestClientContextCancel(t *testing.T) {
	r := gin.New()
	r.GET("/api/sbs/characters", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestClient(t, r).Characters(ctx)
	require.Error(t, err)
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(DefaultBaseURL + "/")
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.NotEmpty(t, c.ClientID())
	assert.NotEqual(t, c.ClientID(), NewClient(DefaultBaseURL).ClientID())
}

// TestSessionAgainstServer runs a session against the real router over a
// memory store.
func TestSessionAgainstServer(t *testing.T) {
	vols, tags := sbstest.Series(1, 5)
	ds := &store.Dataset{}
	for i := range vols {
		ds.Volumes = append(ds.Volumes, &vols[i])
		ds.Tags = append(ds.Tags, &tags[i])
	}
	f := store.NewMemoryFactoryFromDataset(ds)

	validator.Install(validator.Global())
	volumes := biz.NewVolumeService(f)
	mgr := server.NewManager(server.WithMode("test"))
	require.NoError(t, router.Register(mgr,
		handler.NewSBSHandler(volumes, biz.NewSearchService(f, nil)),
		handler.NewHealthHandler(volumes),
	))

	c := newTestClient(t, mgr.Engine())
	s, err := NewSession(c)
	require.NoError(t, err)
	defer s.Close()

	out, err := s.Search(context.Background(), "luffy", model.SearchCharacter)
	require.NoError(t, err)
	assert.Equal(t, 5, out.Stats.VolumeCount)
	assert.Equal(t, 10, out.Stats.TotalMatches)
	require.Len(t, out.Groups, 3)

	hits := out.Groups[0].Chapters[0].Sections
	require.Len(t, hits, 2)
	assert.Equal(t, model.ProvenanceTagged, hits[0].Provenance)
	assert.Equal(t, model.ProvenanceMention, hits[1].Provenance)
	assert.Equal(t, "1-Q1", hits[1].Section.ID)

	require.NoError(t, s.LoadMore(context.Background()))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, volumesOf(s.Groups()))
	assert.False(t, s.HasMore())

	got, err := c.Search(context.Background(), "luffy/zoro", model.SearchText)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = c.VolumeTags(context.Background(), 3)
	require.NoError(t, err)
	_, err = c.Volume(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}
