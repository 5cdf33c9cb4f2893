package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/courtside/internal/predictions"
)

const feedBody = `{"metadata": {"model": "xgb", "game_count": 1}, "games": [
	{"date": "2030-01-05",
	 "teams": {"home": {"name": "Boston Celtics", "abbreviation": "BOS", "win_probability": 0.6},
	           "away": {"name": "Miami Heat", "abbreviation": "MIA", "win_probability": 0.4}},
	 "prediction": {"winner_name": "Boston Celtics"}}]}`

type stubResolver struct{}

func (stubResolver) Abbreviation(name string, _ time.Time) string { return strings.ToUpper(name[:3]) }
func (stubResolver) LogoURL(abbr string) string { return "logos/" + abbr + ".svg" }

type recordingPublisher struct {
	mu    sync.Mutex
	feeds int
}

func (p *recordingPublisher) PublishPredictionFeed(context.Context, interface{}) error {
	p.mu.Lock()
	p.feeds++
	p.mu.Unlock()
	return nil
}

func (p *recordingPublisher) PublishImport(context.Context, interface{}) error { return nil }

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.feeds
}

func readSnapshot(t *testing.T, conn *websocket.Conn) Snapshot {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var snap Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	return snap
}

func TestPredictionsStream(t *testing.T) {
	dir := t.TempDir()
	store := predictions.NewStore(dir)
	pub := &recordingPublisher{}

	srv := NewServer(store, func(context.Context) predictions.Resolver { return stubResolver{} }, pub)
	srv.now = func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Run(ctx)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/predictions"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// empty feed on connect
	snap := readSnapshot(t, conn)
	assert.Equal(t, "predictions", snap.Type)
	assert.Empty(t, snap.Table)
	assert.Nil(t, snap.Next)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "p.json"), []byte(feedBody), 0644))
	store.Reload()

	snap = readSnapshot(t, conn)
	assert.Equal(t, "p.json", snap.Source)
	require.Len(t, snap.Table, 1)
	require.NotNil(t, snap.Next)
	assert.Equal(t, "logos/BOS.svg", snap.Next.HomeLogoURL)
	assert.Eventually(t, func() bool { return pub.count() == 1 }, time.Second, 10*time.Millisecond)
}

func TestHealth(t *testing.T) {
	srv := NewServer(predictions.NewStore(t.TempDir()), func(context.Context) predictions.Resolver { return stubResolver{} }, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/ws/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "healthy", "clients": 0}`, rec.Body.String())
}
