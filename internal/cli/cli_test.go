package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/config"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/rpc"
	"github.com/dezmenn/Konfem-RSVP-sub001/pkg/logging"
)

const seedFile = `
event:
  id: ev-1
  name: Ana & Luis
tables:
  - {id: t1, name: Table 1, capacity: 4}
  - {id: t2, name: Table 2, capacity: 4}
guests:
  - {id: f1, name: Fer, relationship: Friend, side: bride}
  - {id: f2, name: Gabi, relationship: Friend, side: bride}
  - {id: f3, name: Hugo, relationship: Friend, side: bride, additional_guests: 1}
  - {id: p1, name: Rosa, relationship: Parent, side: groom}
`

// run executes the root command with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func setup(t *testing.T) (dbPath string) {
	t.Helper()
	dir := t.TempDir()
	dbPath = filepath.Join(dir, "seating.db")
	seedPath := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(seedPath, []byte(seedFile), 0o600))

	out, err := run(t, "--db", dbPath, "import", seedPath)
	require.NoError(t, err)
	assert.Equal(t, "Imported event ev-1: 4 guests, 2 tables, 0 seated\n", out)
	return dbPath
}

func TestCLI_ArrangeValidateChart(t *testing.T) {
	db := setup(t)

	out, err := run(t, "--db", db, "arrange", "ev-1")
	require.NoError(t, err)
	assert.Contains(t, out, "State:    complete")
	assert.Contains(t, out, "Score:    1.00")
	assert.Contains(t, out, "Table 1")

	out, err = run(t, "--db", db, "validate", "ev-1")
	require.NoError(t, err)
	assert.Equal(t, "Seating is consistent.\n", out)

	out, err = run(t, "--db", db, "chart", "ev-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Event: Ana & Luis (ev-1)")
	assert.Contains(t, out, "Seats: 5 of 8")
	assert.Contains(t, out, "Hugo (+1)")
	assert.NotContains(t, out, "Unassigned")
}

func TestCLI_JSONOutput(t *testing.T) {
	db := setup(t)

	out, err := run(t, "--db", db, "--format", "json", "arrange", "ev-1")
	require.NoError(t, err)

	var result struct {
		Success        bool
		State          string
		ArrangedGuests int
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Success)
	assert.Equal(t, "complete", result.State)
	assert.Equal(t, 4, result.ArrangedGuests)
}

func TestCLI_ManualCommands(t *testing.T) {
	db := setup(t)

	out, err := run(t, "--db", db, "assign", "ev-1", "p1", "t2")
	require.NoError(t, err)
	assert.Equal(t, "Guest p1 seated at table t2\n", out)

	out, err = run(t, "--db", db, "lock", "ev-1", "t2")
	require.NoError(t, err)
	assert.Equal(t, "Table t2 locked\n", out)

	_, err = run(t, "--db", db, "arrange", "ev-1")
	require.NoError(t, err)

	out, err = run(t, "--db", db, "--format", "json", "chart", "ev-1")
	require.NoError(t, err)
	var chart struct {
		Tables []struct {
			Table  struct{ ID string }
			Guests []struct{ ID string }
		}
	}
	require.NoError(t, json.Unmarshal([]byte(out), &chart))
	require.Len(t, chart.Tables, 2)
	assert.Len(t, chart.Tables[0].Guests, 3, "friends land at the free table")
	require.Len(t, chart.Tables[1].Guests, 1, "the locked table keeps its guest")
	assert.Equal(t, "p1", chart.Tables[1].Guests[0].ID)

	out, err = run(t, "--db", db, "unassign", "ev-1", "p1")
	require.NoError(t, err)
	assert.Equal(t, "Guest p1 unassigned\n", out)

	out, err = run(t, "--db", db, "lock", "--unlock", "ev-1", "t2")
	require.NoError(t, err)
	assert.Equal(t, "Table t2 unlocked\n", out)
}

func TestCLI_Errors(t *testing.T) {
	db := setup(t)

	_, err := run(t, "--db", db, "arrange", "--preset", "gala", "ev-1")
	assert.ErrorContains(t, err, `unknown preset "gala"`)

	_, err = run(t, "--db", db, "validate", "ev-404")
	assert.ErrorContains(t, err, "event not found")

	_, err = run(t, "--db", db, "--format", "yaml", "chart", "ev-1")
	assert.ErrorContains(t, err, "invalid format")

	_, err = run(t, "--db", db, "assign", "ev-1", "p1")
	assert.Error(t, err)
}

func TestRunServe(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = config.DriverMemory
	cfg.Server.Address = "127.0.0.1:0"
	opts := &RootOptions{Config: cfg, Logger: logging.Discard()}

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	done := make(chan error, 1)
	go func() { done <- runServe(ctx, opts, ready) }()

	var addr string
	select {
	case addr = <-ready:
	case err := <-done:
		t.Fatalf("server exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	resp, err := http.Get("http://" + addr + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	client := rpc.NewSeatingServiceClient(http.DefaultClient, "http://"+addr)
	_, err = client.Validate(context.Background(), connect.NewRequest(&rpc.ValidateRequest{EventID: "missing"}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
