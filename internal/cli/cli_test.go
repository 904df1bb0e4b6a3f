package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"timecard/internal/config"
	"timecard/internal/tracker"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type harness struct {
	t          *testing.T
	dataDir    string
	configPath string
	backend    string
}

func newHarness(t *testing.T, backend string) *harness {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	t.Setenv(config.EnvBackend, "")
	t.Setenv(config.EnvDataDir, "")
	return &harness{
		t:          t,
		dataDir:    filepath.Join(dir, "data"),
		configPath: filepath.Join(dir, "config.yaml"),
		backend:    backend,
	}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	a := &app{}
	cmd := a.rootCommand()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	flags := []string{"--config", h.configPath, "--data-dir", h.dataDir}
	if h.backend != "" {
		flags = append(flags, "--backend", h.backend)
	}
	cmd.SetArgs(append(flags, args...))

	err := cmd.Execute()
	a.close()
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, out)
	return out
}

func TestWorkflow(t *testing.T) {
	for _, backend := range []string{config.BackendSQLite, config.BackendJSON} {
		t.Run(backend, func(t *testing.T) {
			h := newHarness(t, backend)

			out := h.mustRun("create", "website")
			assert.Contains(t, out, "Created project website.")
			assert.Contains(t, out, "website is now the current project.")

			out = h.mustRun("create", "garden")
			assert.NotContains(t, out, "now the current project")

			out = h.mustRun("checkout")
			assert.Contains(t, out, "Checked out website")

			out = h.mustRun("status")
			assert.Contains(t, out, "Current project: website")
			assert.Contains(t, out, "Checked out since")

			out = h.mustRun("checkin")
			assert.Contains(t, out, "Checked in website after 0:00:0")

			h.mustRun("switch", "garden")
			out = h.mustRun("list")
			lines := strings.Split(strings.TrimSpace(out), "\n")
			require.Len(t, lines, 4)
			assert.True(t, strings.HasPrefix(lines[2], "* garden"), lines[2])
			assert.True(t, strings.HasPrefix(lines[3], "  website"), lines[3])

			out = h.mustRun("log", "website")
			assert.Contains(t, out, "website")
			assert.Contains(t, out, "DURATION")

			out = h.mustRun("delete", "website")
			assert.Contains(t, out, "Deleted project website.")

			out = h.mustRun("log")
			assert.Contains(t, out, "website", "records survive deletion")
		})
	}
}

func TestRejectedTransitions(t *testing.T) {
	h := newHarness(t, config.BackendJSON)

	_, err := h.run("checkout")
	assert.ErrorIs(t, err, tracker.ErrNoCurrentProject)

	h.mustRun("create", "website")

	_, err = h.run("checkin")
	assert.ErrorIs(t, err, tracker.ErrNotCheckedOut)

	_, err = h.run("create", "website")
	assert.ErrorIs(t, err, tracker.ErrProjectExists)

	_, err = h.run("delete", "ghost")
	assert.ErrorIs(t, err, tracker.ErrProjectNotFound)

	_, err = h.run("switch", "ghost")
	assert.ErrorIs(t, err, tracker.ErrProjectNotFound)

	h.mustRun("checkout")
	_, err = h.run("checkout")
	assert.ErrorIs(t, err, tracker.ErrAlreadyCheckedOut)

	_, err = h.run("create")
	assert.Error(t, err, "create needs a name")
}

func TestEmptyListings(t *testing.T) {
	h := newHarness(t, config.BackendSQLite)

	assert.Contains(t, h.mustRun("list"), "No projects yet.")
	assert.Contains(t, h.mustRun("status"), "You do not have a current project.")
	assert.Contains(t, h.mustRun("log"), "No records.")
}

func TestConfigCommands(t *testing.T) {
	h := newHarness(t, config.BackendJSON)

	out := h.mustRun("config")
	assert.Contains(t, out, "backend: json")
	assert.NoDirExists(t, h.dataDir, "config does not open a store")

	h.mustRun("config", "init")
	cfg, err := config.Load(h.configPath)
	require.NoError(t, err)
	assert.Equal(t, config.BackendJSON, cfg.Backend)
	assert.Equal(t, h.dataDir, cfg.DataDir)

	_, err = h.run("config", "init")
	assert.ErrorContains(t, err, "already exists")
	h.mustRun("config", "init", "--force")
}

func TestBackendFlagOverridesFileAndEnv(t *testing.T) {
	h := newHarness(t, "JSON")
	require.NoError(t, os.WriteFile(h.configPath, []byte("backend: postgres\n"), 0640))

	out := h.mustRun("list")
	assert.Contains(t, out, "No projects yet.")
	assert.DirExists(t, filepath.Join(h.dataDir, "records"), "json store was selected")
	assert.NoFileExists(t, filepath.Join(h.dataDir, "timecard.db"))

	t.Setenv(config.EnvBackend, "bogus")
	h.mustRun("create", "website")

	h.backend = ""
	_, err := h.run("list")
	assert.ErrorContains(t, err, `unknown backend "bogus"`)

	t.Setenv(config.EnvBackend, "")
	_, err = h.run("list")
	assert.ErrorContains(t, err, `unknown backend "postgres"`)

	// A bad file can be rewritten once a flag supplies a valid backend.
	h.backend = config.BackendJSON
	h.mustRun("config", "init", "--force")
	h.backend = ""
	out = h.mustRun("list")
	assert.Contains(t, out, "website")
}

func TestBuiltinCommandsSkipStore(t *testing.T) {
	h := newHarness(t, config.BackendSQLite)
	require.NoError(t, os.WriteFile(h.configPath, []byte("backend: [broken"), 0640))

	out := h.mustRun("completion", "bash")
	assert.Contains(t, out, "bash completion")

	h.mustRun("help")
	assert.NoDirExists(t, h.dataDir)
}
