package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petal-labs/f1mcp/config"
)

func newTestRoot() *cobra.Command {
	return NewRootCmd("test")
}

// executeCommand runs a cobra command with the given args and captures stdout/stderr.
func executeCommand(root *cobra.Command, args ...string) (stdout, stderr string, err error) {
	var outBuf, errBuf bytes.Buffer
	root.SetOut(&outBuf)
	root.SetErr(&errBuf)
	root.SetArgs(args)
	err = root.Execute()
	return outBuf.String(), errBuf.String(), err
}

// isolate keeps config discovery and env overrides away from the developer's machine.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{config.EnvBaseURL, config.EnvTimeout, config.EnvLogLevel, config.EnvHealthSchedule, config.EnvOTLPEndpoint} {
		t.Setenv(key, "")
	}
}

type upstream struct {
	*httptest.Server
	hits     atomic.Int32
	lastPath atomic.Value
}

func newUpstream(t *testing.T, status int, body string) *upstream {
	t.Helper()
	u := &upstream{}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.hits.Add(1)
		u.lastPath.Store(r.URL.RequestURI())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(u.Close)
	return u
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "error %v is not an ExitError", err)
	return exitErr.Code
}

func TestVersionFlag(t *testing.T) {
	stdout, _, err := executeCommand(newTestRoot(), "--version")
	require.NoError(t, err)
	assert.Equal(t, "f1mcp version test\n", stdout)
}

func TestToolsList(t *testing.T) {
	isolate(t)
	stdout, _, err := executeCommand(newTestRoot(), "tools", "list", "--no-color")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 9)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.True(t, strings.HasPrefix(lines[1], "get_all_drivers"))
	assert.Contains(t, stdout, "search_teams")
	assert.Contains(t, stdout, "driverId")
}

func TestToolsDescribe(t *testing.T) {
	isolate(t)
	stdout, _, err := executeCommand(newTestRoot(), "tools", "describe", "search_drivers", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Search for Formula 1 drivers by name or surname")
	assert.Contains(t, stdout, "PARAM")
	assert.Regexp(t, `limit\s+integer\s+false\s+30`, stdout)

	stdout, _, err = executeCommand(newTestRoot(), "tools", "describe", "get_team_by_id", "--json")
	require.NoError(t, err)
	var desc map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &desc))
	assert.Equal(t, "get_team_by_id", desc["name"])

	_, _, err = executeCommand(newTestRoot(), "tools", "describe", "nope")
	assert.Equal(t, exitValidation, exitCode(t, err))
}

func TestToolsCallHitsUpstreamOnce(t *testing.T) {
	isolate(t)
	api := newUpstream(t, http.StatusOK, `{"drivers":[{"driverId":"norris"}]}`)

	stdout, _, err := executeCommand(newTestRoot(), "tools", "call", "get_all_drivers", "--arg", "limit=2", "--base-url", api.URL+"/api")
	require.NoError(t, err)
	assert.JSONEq(t, `{"drivers":[{"driverId":"norris"}]}`, stdout)
	assert.Equal(t, int32(1), api.hits.Load())
	assert.Equal(t, "/api/drivers?limit=2&offset=0", api.lastPath.Load())
}

func TestToolsCallJSONArguments(t *testing.T) {
	isolate(t)
	api := newUpstream(t, http.StatusOK, `[]`)
	t.Setenv(config.EnvBaseURL, api.URL)

	_, _, err := executeCommand(newTestRoot(), "tools", "call", "search_teams", "--json", `{"q":"mclaren","offset":3}`)
	require.NoError(t, err)
	assert.Equal(t, "/teams/search?q=mclaren&limit=30&offset=3", api.lastPath.Load())
}

func TestToolsCallMissingParameter(t *testing.T) {
	isolate(t)
	api := newUpstream(t, http.StatusOK, `{}`)

	_, stderr, err := executeCommand(newTestRoot(), "tools", "call", "search_drivers", "--base-url", api.URL)
	assert.Equal(t, exitToolFailed, exitCode(t, err))
	assert.Contains(t, stderr, "MISSING_PARAMETER")
	assert.Zero(t, api.hits.Load())
}

func TestToolsCallRemoteFailure(t *testing.T) {
	isolate(t)
	api := newUpstream(t, http.StatusInternalServerError, `{"error":"boom"}`)

	_, stderr, err := executeCommand(newTestRoot(), "tools", "call", "get_all_teams", "--base-url", api.URL)
	assert.Equal(t, exitToolFailed, exitCode(t, err))
	assert.Contains(t, stderr, "REMOTE_STATUS(500)")
}

func TestToolsCallBadArgs(t *testing.T) {
	isolate(t)
	_, _, err := executeCommand(newTestRoot(), "tools", "call", "get_all_teams", "--arg", "limit")
	assert.Equal(t, exitValidation, exitCode(t, err))

	_, _, err = executeCommand(newTestRoot(), "tools", "call", "get_all_teams", "--arg", "limit=ten")
	assert.Equal(t, exitValidation, exitCode(t, err))

	_, _, err = executeCommand(newTestRoot(), "tools", "call", "unknown_tool")
	assert.Equal(t, exitValidation, exitCode(t, err))
}

func TestProbeUpstream(t *testing.T) {
	isolate(t)
	api := newUpstream(t, http.StatusOK, `{"drivers":[]}`)

	stdout, _, err := executeCommand(newTestRoot(), "probe", "--base-url", api.URL, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, stdout, "upstream "+api.URL)
	assert.Equal(t, "/drivers?limit=1", api.lastPath.Load())

	down := newUpstream(t, http.StatusServiceUnavailable, `{}`)
	_, _, err = executeCommand(newTestRoot(), "probe", "--base-url", down.URL)
	assert.Equal(t, exitUpstream, exitCode(t, err))
}

func TestInvalidConfiguration(t *testing.T) {
	isolate(t)
	_, _, err := executeCommand(newTestRoot(), "tools", "list", "--base-url", "ftp://example.com")
	assert.Equal(t, exitConfig, exitCode(t, err))

	_, _, err = executeCommand(newTestRoot(), "tools", "list", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, exitConfig, exitCode(t, err))

	t.Setenv(config.EnvTimeout, "eventually")
	_, _, err = executeCommand(newTestRoot(), "tools", "list")
	assert.Equal(t, exitConfig, exitCode(t, err))
}

func TestNewLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.LogConfig{Level: "debug", Format: "json"})
	logger.Debug("hello", "tool", "get_all_drivers")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "get_all_drivers", record["tool"])

	buf.Reset()
	logger = newLogger(&buf, config.LogConfig{Level: "error", Format: "text"})
	logger.Warn("dropped")
	assert.Empty(t, buf.String())

	assert.Equal(t, slog.LevelWarn, parseLevel("WARNING"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}

func TestLooseValue(t *testing.T) {
	assert.Equal(t, json.Number("5"), looseValue("5"))
	assert.Equal(t, true, looseValue("true"))
	assert.Equal(t, "max", looseValue("max"))
	assert.Equal(t, "5 6", looseValue("5 6"))
	assert.Equal(t, `"quoted"`, looseValue(`"quoted"`))
}
