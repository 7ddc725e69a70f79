package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Skotchmaster/auth_service/internal/audit"
	"github.com/Skotchmaster/auth_service/internal/events"
	"github.com/Skotchmaster/auth_service/internal/hash"
	"github.com/Skotchmaster/auth_service/internal/kv"
	"github.com/Skotchmaster/auth_service/internal/models"
	"github.com/Skotchmaster/auth_service/internal/repo"
	"github.com/Skotchmaster/auth_service/internal/revocation"
	"github.com/Skotchmaster/auth_service/internal/testenv"
	"github.com/Skotchmaster/auth_service/internal/tokens"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type testEnv struct {
	Repo     *repo.GormRepo
	KV       *kv.Store
	MR       *miniredis.Miniredis
	Codec    *tokens.Codec
	Auth     *AuthService
	Roles    *RoleService
	Sessions *SessionLedger
	Users    *UserService
	Events   *recordingPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	rp := repo.New(testenv.InitTestDB(t), time.Second)
	store, mr := testenv.InitTestKV(t)
	codec, err := tokens.NewCodec([]byte("test-jwt-secret"), "HS256")
	require.NoError(t, err)
	hasher := hash.NewHasher(bcrypt.MinCost)
	pub := &recordingPublisher{}

	sessions := &SessionLedger{
		Repo:         rp,
		Cache:        store,
		CacheTTL:     time.Hour,
		Indexer:      audit.Nop{},
		ActiveWindow: 24 * time.Hour,
	}
	auth := &AuthService{
		Repo:       rp,
		Hasher:     hasher,
		Codec:      codec,
		Revoked:    revocation.New(store),
		Sessions:   sessions,
		Events:     pub,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	}

	return &testEnv{
		Repo:     rp,
		KV:       store,
		MR:       mr,
		Codec:    codec,
		Auth:     auth,
		Roles:    &RoleService{Repo: rp},
		Sessions: sessions,
		Users:    &UserService{Repo: rp, Hasher: hasher, Auth: auth},
		Events:   pub,
	}
}

func (env *testEnv) signup(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := env.Auth.Signup(context.Background(), SignupInput{
		Email:    name + "@example.com",
		Username: name,
		Password: "Secret123",
		FullName: name,
	})
	require.NoError(t, err)
	return u
}

func (env *testEnv) login(t *testing.T, name string) *TokenPair {
	t.Helper()
	pair, err := env.Auth.Login(context.Background(), name+"@example.com", "Secret123", "go-test")
	require.NoError(t, err)
	return pair
}
