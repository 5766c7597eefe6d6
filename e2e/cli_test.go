package e2e_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/charsheet-go/internal/api"
	"github.com/mcoot/charsheet-go/internal/factory"
	"github.com/mcoot/charsheet-go/internal/services/token"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(projectRoot, "bin", "charsheet-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/charsheet")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	// Create temp token file
	tokenFile := filepath.Join(t.TempDir(), "token")

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  tokenFile,
	}
}

// withTokenFile returns a runner sharing the binary but keeping its own token
func (r *cliRunner) withTokenFile(t *testing.T) *cliRunner {
	return &cliRunner{
		binaryPath: r.binaryPath,
		serverURL:  r.serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token"),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (r *cliRunner) runWithToken(tok string, args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token", tok,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	addr     string
	app      *factory.App
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	app, err := factory.New(factory.Config{
		Logger: logger,
		TokenConfig: token.Config{
			Secret: base64.StdEncoding.EncodeToString([]byte("e2e-signing-key")),
		},
	})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:              logger,
		AuthService:         app.AuthService,
		TokenService:        app.TokenService,
		CharacterController: app.CharacterController,
	})
	server := api.NewServer(router, api.DefaultServerConfig(), logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, listener) }()

	serverURL := "http://" + listener.Addr().String()
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		addr: serverURL,
		app:  app,
		shutdown: func() {
			cancel()
			if err := <-done; err != nil {
				t.Logf("server error: %v", err)
			}
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type authResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

type characterResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ControlUser *struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"control_user"`
	IsKnown bool `json:"is_known"`
	Height  *int `json:"height"`
}

type characterListResponse struct {
	Characters []characterResponse `json:"characters"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func registerViaCLI(t *testing.T, cli *cliRunner, name, email string) authResponse {
	t.Helper()

	output, err := cli.run("auth", "register", "--name", name, "--email", email, "--pass", "password123")
	require.NoError(t, err, "output: %s", output)

	var resp authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	return resp
}

func listNames(t *testing.T, cli *cliRunner) []string {
	t.Helper()

	output, err := cli.run("character", "list")
	require.NoError(t, err, "output: %s", output)

	var list characterListResponse
	require.NoError(t, json.Unmarshal([]byte(output), &list))
	names := make([]string, 0, len(list.Characters))
	for _, c := range list.Characters {
		names = append(names, c.Name)
	}
	return names
}

func gmList(t *testing.T, cli *cliRunner) []characterResponse {
	t.Helper()

	output, err := cli.run("character", "list")
	require.NoError(t, err, "output: %s", output)

	var list characterListResponse
	require.NoError(t, json.Unmarshal([]byte(output), &list))
	return list.Characters
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_AuthCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	auth := registerViaCLI(t, cli, "Alice", "alice@example.com")
	assert.Equal(t, "Alice", auth.User.Name)
	assert.Equal(t, "PLAYER", auth.User.Role)
	assert.NotEmpty(t, auth.Token)

	// Get me (token should be saved in token file)
	output, err := cli.run("auth", "me")
	require.NoError(t, err, "output: %s", output)

	var me userResponse
	require.NoError(t, json.Unmarshal([]byte(output), &me))
	assert.Equal(t, auth.User, me)

	// Bad password
	output, err = cli.run("auth", "login", "--email", "alice@example.com", "--pass", "wrong-password")
	assert.Error(t, err)
	assert.Contains(t, output, "INVALID_CREDENTIALS")
}

func TestCLI_RejectsForgedToken(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.runWithToken("not.a.token", "auth", "me")
	assert.Error(t, err)
	assert.Contains(t, output, "INVALID_TOKEN")
}

func TestCLI_CharacterCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	alice := newCLIRunner(t, ts.addr)
	bob := alice.withTokenFile(t)
	gm := alice.withTokenFile(t)

	registerViaCLI(t, alice, "Alice", "alice@example.com")
	registerViaCLI(t, bob, "Bob", "bob@example.com")

	_, err := ts.app.AuthService.EnsureMaster(context.Background(), "GM", "gm@example.com", "password123")
	require.NoError(t, err)
	output, err := gm.run("auth", "login", "--email", "gm@example.com", "--pass", "password123")
	require.NoError(t, err, "output: %s", output)

	// Alice creates a character she controls
	output, err = alice.run("character", "create", "--name", "Zed", "--height", "180")
	require.NoError(t, err, "output: %s", output)
	var zed characterResponse
	require.NoError(t, json.Unmarshal([]byte(output), &zed))
	require.NotNil(t, zed.ControlUser)
	assert.Equal(t, "Alice", zed.ControlUser.Name)
	assert.Equal(t, 180, *zed.Height)

	output, err = bob.run("character", "create", "--name", "Anna")
	require.NoError(t, err, "output: %s", output)

	output, err = gm.run("character", "create", "--name", "Mia", "--known")
	require.NoError(t, err, "output: %s", output)
	output, err = gm.run("character", "create", "--name", "Bea")
	require.NoError(t, err, "output: %s", output)

	// Tier order: own, private to others, known and unowned
	assert.Equal(t, []string{"Zed", "Anna", "Mia"}, listNames(t, alice))
	assert.Equal(t, []string{"Anna", "Zed", "Bea", "Mia"}, listNames(t, gm))

	// Invalid values are rejected before reaching storage
	output, err = alice.run("character", "create", "--name", "Bad", "--path-focus", "5")
	assert.Error(t, err)
	assert.Contains(t, output, "INVALID_REQUEST")

	// Alice renames her character; Bob may not
	output, err = alice.run("character", "update", zed.ID, "--name", "Zeke", "--weight", "70")
	require.NoError(t, err, "output: %s", output)
	assert.Contains(t, output, "Zeke")

	output, err = bob.run("character", "update", zed.ID, "--name", "Stolen")
	assert.Error(t, err)
	assert.Contains(t, output, "FORBIDDEN")
	output, err = alice.run("character", "update", zed.ID, "--name", "Zed")
	require.NoError(t, err, "output: %s", output)

	// Only the master hands characters out
	var bea characterResponse
	for _, c := range gmList(t, gm) {
		if c.Name == "Bea" {
			bea = c
		}
	}
	require.NotEmpty(t, bea.ID)
	output, err = alice.run("character", "assign", bea.ID, "--user", zed.ControlUser.ID)
	assert.Error(t, err)
	assert.Contains(t, output, "FORBIDDEN")
	output, err = gm.run("character", "assign", bea.ID, "--user", zed.ControlUser.ID)
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, []string{"Bea", "Zed", "Anna", "Mia"}, listNames(t, alice))

	// Get
	output, err = bob.run("character", "get", zed.ID)
	require.NoError(t, err, "output: %s", output)
	var got characterResponse
	require.NoError(t, json.Unmarshal([]byte(output), &got))
	assert.Equal(t, "Zed", got.Name)

	// Bob cannot delete Alice's character, Alice can
	output, err = bob.run("character", "delete", zed.ID)
	assert.Error(t, err)
	assert.Contains(t, output, "FORBIDDEN")

	output, err = alice.run("character", "delete", zed.ID)
	require.NoError(t, err, "output: %s", output)
	var msg messageResponse
	require.NoError(t, json.Unmarshal([]byte(output), &msg))
	assert.Contains(t, msg.Message, "Deleted character")

	output, err = alice.run("character", "get", zed.ID)
	assert.Error(t, err)
	assert.Contains(t, output, "CHARACTER_NOT_FOUND")
}
