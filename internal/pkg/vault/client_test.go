package vault

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeVault는 Vault HTTP API 중 사용하는 엔드포인트만 흉내냅니다
func fakeVault(t *testing.T, reads *int32) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}

	mux.HandleFunc("/v1/auth/token/lookup-self", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Vault-Token") != "root" {
			w.WriteHeader(http.StatusForbidden)
			writeJSON(w, map[string]interface{}{"errors": []string{"permission denied"}})
			return
		}
		writeJSON(w, map[string]interface{}{"data": map[string]interface{}{"id": "root"}})
	})
	mux.HandleFunc("/v1/database/creds/academy-backoffice", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(reads, 1)
		writeJSON(w, map[string]interface{}{
			"lease_id":       "database/creds/academy-backoffice/abc",
			"lease_duration": 3600,
			"renewable":      true,
			"data":           map[string]interface{}{"username": "v-academy", "password": "s3cret"},
		})
	})
	mux.HandleFunc("/v1/secret/data/academy-backoffice", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(reads, 1)
		writeJSON(w, map[string]interface{}{
			"data": map[string]interface{}{
				"data":     map[string]interface{}{"jwt_secret": "from-vault"},
				"metadata": map[string]interface{}{"version": 1},
			},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, reads *int32) *Client {
	t.Helper()
	srv := fakeVault(t, reads)

	cfg := DefaultConfig()
	cfg.Address = srv.URL
	cfg.Token = "root"

	c, err := NewClient(context.Background(), cfg)
	require.NoError(t, err)
	return c
}

func TestNewClient_RejectsBadToken(t *testing.T) {
	var reads int32
	srv := fakeVault(t, &reads)

	cfg := DefaultConfig()
	cfg.Address = srv.URL
	cfg.Token = "wrong"

	_, err := NewClient(context.Background(), cfg)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.Validate(), "token auth without token")

	cfg.AuthMethod = "approle"
	cfg.RoleID = "role"
	assert.Error(t, cfg.Validate())

	cfg.SecretID = "secret"
	assert.NoError(t, cfg.Validate())

	cfg.AuthMethod = "kubernetes"
	assert.Error(t, cfg.Validate())
}

func TestClient_GetMongoDBCredentials(t *testing.T) {
	var reads int32
	c := newTestClient(t, &reads)

	user, pass, err := c.GetMongoDBCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v-academy", user)
	assert.Equal(t, "s3cret", pass)
}

func TestClient_GetJWTSecret_UnwrapsKV2AndCaches(t *testing.T) {
	var reads int32
	c := newTestClient(t, &reads)
	ctx := context.Background()

	secret, err := c.GetJWTSecret(ctx)
	require.NoError(t, err)
	assert.Equal(t, "from-vault", secret)

	_, err = c.GetJWTSecret(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&reads))
}

func TestSecretMetadata_IsExpired(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	leased := &SecretMetadata{LeaseDuration: 60, CreatedAt: created}
	assert.False(t, leased.IsExpired(created.Add(30*time.Second), time.Second))
	assert.True(t, leased.IsExpired(created.Add(61*time.Second), time.Hour))

	static := &SecretMetadata{CreatedAt: created}
	assert.True(t, static.IsExpired(created.Add(2*time.Minute), time.Minute))
	assert.False(t, static.IsExpired(created.Add(2*time.Minute), 0))
}
