package audit

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/auth_service/internal/models"
)

type fakeES struct {
	mu     sync.Mutex
	paths  []string
	bodies []map[string]any
	status int
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, _ := io.ReadAll(r.Body)
	var doc map[string]any
	_ = json.Unmarshal(raw, &doc)
	f.paths = append(f.paths, r.Method+" "+r.URL.Path)
	f.bodies = append(f.bodies, doc)

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(f.status)
	_, _ = w.Write([]byte(`{"result":"created"}`))
}

func TestNewESIndexer_Disabled(t *testing.T) {
	t.Parallel()

	idx, err := NewESIndexer(Config{})
	require.NoError(t, err)
	_, ok := idx.(Nop)
	assert.True(t, ok)
	assert.NoError(t, idx.IndexSession(context.Background(), models.Session{}))
}

func TestESIndexer_IndexSession(t *testing.T) {
	t.Parallel()

	fake := &fakeES{status: http.StatusCreated}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	idx, err := NewESIndexer(Config{URL: srv.URL, Index: "auth-sessions"})
	require.NoError(t, err)

	s := models.Session{
		Identity:  models.Identity{ID: uuid.New()},
		UserID:    uuid.New(),
		UserAgent: "curl/8",
		Action:    models.ActionLogin,
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, idx.IndexSession(context.Background(), s))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Len(t, fake.paths, 1)
	assert.Equal(t, "PUT /auth-sessions/_doc/"+s.ID.String(), fake.paths[0])
	assert.Equal(t, "login", fake.bodies[0]["action"])
	assert.Equal(t, s.UserID.String(), fake.bodies[0]["user_id"])
}

func TestESIndexer_ErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(&fakeES{status: http.StatusBadRequest})
	defer srv.Close()

	idx, err := NewESIndexer(Config{URL: srv.URL, Index: "auth-sessions"})
	require.NoError(t, err)

	err = idx.IndexSession(context.Background(), models.Session{Identity: models.Identity{ID: uuid.New()}})
	require.Error(t, err)
}
