package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/gorilla/websocket"
	"github.com/linskybing/regscan/internal/api/handlers"
	"github.com/linskybing/regscan/internal/api/routes"
	"github.com/linskybing/regscan/internal/application"
	"github.com/linskybing/regscan/internal/config"
	"github.com/linskybing/regscan/internal/config/db"
	"github.com/linskybing/regscan/internal/domain/image"
	"github.com/linskybing/regscan/internal/domain/repo"
	"github.com/linskybing/regscan/internal/progress"
	"github.com/linskybing/regscan/internal/registry/mock_registry"
	"github.com/linskybing/regscan/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router *gin.Engine
	h      *handlers.Handlers
	svc    *application.Services
	repos  *repository.Repos
	bus    *progress.Bus
	client *mock_registry.MockClient
	pager  *mock_registry.MockRepositoryPager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := db.Open(&config.Config{
		DBDriver: config.DriverSQLite,
		DBPath:   filepath.Join(t.TempDir(), "ecr-repos.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(conn) })

	ctrl := gomock.NewController(t)
	ts := &testServer{
		repos:  repository.NewRepositories(conn),
		bus:    progress.NewBus(),
		client: mock_registry.NewMockClient(ctrl),
		pager:  mock_registry.NewMockRepositoryPager(ctrl),
	}
	ts.svc = application.New(ts.repos, ts.client, ts.bus, nil, 20)
	ts.router = gin.New()
	ts.router.UseRawPath = true
	ts.h = handlers.New(ts.svc, ts.bus, "default", ts.router)
	routes.RegisterRoutes(ts.router, ts.h)
	t.Cleanup(ts.h.Hub.Close)
	t.Cleanup(ts.svc.Scan.Shutdown)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) seed(t *testing.T, name string, images int) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, ts.repos.Repository.Upsert(ctx, &repo.Repository{
		RepositoryName: name,
		RepositoryURI:  "uri/" + name,
		CreatedAt:      "2024-01-01T00:00:00.000Z",
		LastUpdated:    "2024-06-01T00:00:00.000Z",
		Region:         "us-east-1",
	}))
	for i := 0; i < images; i++ {
		require.NoError(t, ts.repos.Image.Upsert(ctx, &image.Image{
			RepositoryName:   name,
			ImageDigest:      name + "-" + string(rune('a'+i)),
			ImageTags:        "dev-" + string(rune('a'+i)),
			ImageSizeInBytes: 100,
		}))
	}
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var body struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NoError(t, json.Unmarshal(body.Data, out))
}

func TestRepositoryRoutes(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t, "app", 2)
	ts.seed(t, "team/api", 1)

	w := ts.do(t, http.MethodGet, "/repositories", "")
	require.Equal(t, http.StatusOK, w.Code)
	var listed []repo.RepositoryWithCount
	decodeData(t, w, &listed)
	require.Len(t, listed, 2)
	assert.EqualValues(t, 2, listed[0].ImageCount)

	w = ts.do(t, http.MethodGet, "/repositories/team%2Fapi", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"repository_name":"team/api"`)

	w = ts.do(t, http.MethodGet, "/repositories/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodGet, "/repositories/stats?top=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		Repositories int64 `json:"totalRepositories"`
		TopBySize    []any `json:"topBySize"`
	}
	decodeData(t, w, &stats)
	assert.EqualValues(t, 2, stats.Repositories)
	assert.Len(t, stats.TopBySize, 1)

	w = ts.do(t, http.MethodGet, "/repositories/stats?top=zero", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/repositories/analysis?repository=app", "")
	require.Equal(t, http.StatusOK, w.Code)
	var groups []image.TagGroupCount
	decodeData(t, w, &groups)
	assert.Equal(t, []image.TagGroupCount{{RepositoryName: "app", Group: "dev", Count: 2}}, groups)

	w = ts.do(t, http.MethodGet, "/repositories/analysis?repository=nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodGet, "/repositories/never-pulled?repository=team/api", "")
	require.Equal(t, http.StatusOK, w.Code)
	var never []image.NeverPulledSummary
	decodeData(t, w, &never)
	require.Len(t, never, 1)
	assert.Equal(t, "team/api", never[0].RepositoryName)
}

func TestScanRoutes(t *testing.T) {
	ts := newTestServer(t)

	release := make(chan struct{})
	ts.client.EXPECT().ListRepositories(gomock.Any(), "default", "us-east-1").Return(ts.pager, nil)
	ts.pager.EXPECT().More().DoAndReturn(func() bool {
		<-release
		return false
	})

	w := ts.do(t, http.MethodPost, "/repositories/scan", `{"region":"us-east-1"}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	var started struct {
		ID      uint   `json:"id"`
		Profile string `json:"profile"`
		Status  string `json:"status"`
	}
	decodeData(t, w, &started)
	assert.Equal(t, "default", started.Profile)
	assert.Equal(t, "pending", started.Status)

	w = ts.do(t, http.MethodPost, "/repositories/scan", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	close(release)
	ts.svc.Scan.Wait()

	w = ts.do(t, http.MethodGet, "/repositories/scans", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"success"`)

	w = ts.do(t, http.MethodGet, "/repositories/scans/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = ts.do(t, http.MethodGet, "/repositories/scans/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodPost, "/repositories/scan", `{"region":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "regscan_images_saved_total")
}

func TestScanWebsocketRelaysEvents(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/scan"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return ts.h.Hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, ts.bus.Emit(progress.Progress("app", 0)))
	require.NoError(t, ts.bus.Emit(progress.Complete()))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"progress","repositoryName":"app","progress":0}`, string(raw))

	_, raw, err = conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"complete"}`, string(raw))
}
