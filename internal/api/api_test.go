package api_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/brightwave/profiler/internal/api"
	"github.com/brightwave/profiler/internal/authz"
	"github.com/brightwave/profiler/internal/catalog"
	"github.com/brightwave/profiler/internal/staff"
	"github.com/brightwave/profiler/internal/token"
)

const profilerDefinition = `{
	"questions": [
		{"question": "Focuses well in class", "domain": "attention", "practice": "p1"},
		{"question": "Sleeps through the night", "domain": "regulation", "practice": ["p1", "p2"]},
		{"question": "Enjoys group work", "domain": "social"}
	],
	"answerOptions": ["Never", "Sometimes", "Often", "Always"],
	"practice_source": ["practices"]
}`

const practiceTree = `[
	{
		"name": "Classroom",
		"children": [
			{"id": "p1", "name": "Movement breaks", "children": [{"text": "Short walks"}, {"text": "Stretching"}]},
			{"id": "p2", "name": "Quiet corner", "children": [{"text": "Reading nook"}]}
		]
	}
]`

var (
	testKey     *rsa.PrivateKey
	testKeyOnce sync.Once
)

func signingKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	testKeyOnce.Do(func() {
		var err error
		testKey, err = rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			t.Fatalf("generating test key: %v", err)
		}
	})
	return testKey
}

type testEnv struct {
	server       *httptest.Server
	codec        *token.Codec
	staffRepo    *memStaffRepo
	staffService *staff.Service
	groups       *memGroupRepo
	profiles     *memProfileRepo
	types        *memTypeRepo
	settings     *memSettingsRepo

	adminToken   string
	teacherToken string
}

type okPinger struct{}

func (okPinger) Ping(_ context.Context) error { return nil }

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	profilersDir := t.TempDir()
	practiceDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(profilersDir, "neuro.json"), []byte(profilerDefinition), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(practiceDir, "practices.json"), []byte(practiceTree), 0o600))

	store := catalog.NewStore(profilersDir, practiceDir)
	codec := token.New(signingKey(t))

	staffRepo := newMemStaffRepo()
	profiles := newMemProfileRepo()
	groups := newMemGroupRepo(profiles)
	types := newMemTypeRepo()
	settingsRepo := newMemSettingsRepo()

	ctx := context.Background()
	require.NoError(t, types.Upsert(ctx, &catalog.ProfilerType{Name: "neuro", Filename: "neuro.json"}))

	staffService := staff.NewService(staffRepo, codec, bcrypt.MinCost, time.Hour)
	gate := authz.NewGate(codec, staffService)

	router := api.NewRouter(api.RouterDeps{
		DB:              okPinger{},
		Version:         "0.1.0-test",
		Gate:            gate,
		Codec:           codec,
		StaffRepo:       staffRepo,
		StaffService:    staffService,
		Groups:          groups,
		Profiles:        profiles,
		ProfilerTypes:   types,
		Catalog:         store,
		Settings:        settingsRepo,
		ProfileTokenTTL: time.Hour,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	env := &testEnv{
		server:       server,
		codec:        codec,
		staffRepo:    staffRepo,
		staffService: staffService,
		groups:       groups,
		profiles:     profiles,
		types:        types,
		settings:     settingsRepo,
	}

	env.adminToken = env.createAccount(t, "admin@school.test", true)
	env.teacherToken = env.createAccount(t, "teacher@school.test", false)

	return env
}

// createAccount registers a staff account with a known password and an
// already-completed first password change, then returns a session token.
func (env *testEnv) createAccount(t *testing.T, email string, superuser bool) string {
	t.Helper()

	ctx := context.Background()
	account, _, err := env.staffService.CreateAccount(ctx, email, superuser)
	require.NoError(t, err)
	require.NoError(t, env.staffService.ChangePassword(ctx, account.ID, "known-password"))

	tok, _, err := env.staffService.Login(ctx, email, "known-password")
	require.NoError(t, err)
	return tok
}

// doRequest performs an HTTP request against the test server and decodes
// the response envelope.
func (env *testEnv) doRequest(t *testing.T, method, path string, body any, bearer string) (*http.Response, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, env.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return resp, nil
	}

	var result map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return resp, result
}

func errorCode(t *testing.T, result map[string]any) string {
	t.Helper()
	errObj, ok := result["error"].(map[string]any)
	require.True(t, ok, "expected an error object, got %v", result)
	return errObj["code"].(string)
}

func dataObject(t *testing.T, result map[string]any) map[string]any {
	t.Helper()
	data, ok := result["data"].(map[string]any)
	require.True(t, ok, "expected a data object, got %v", result)
	return data
}
