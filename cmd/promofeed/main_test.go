package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promofeed/internal/api"
	"promofeed/pkg/models"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseCommand_Stdin(t *testing.T) {
	out, err := run(t, `[{'code': 'SAVE10', 'message': 'ten off'}]`, "parse", "-")
	require.NoError(t, err)

	var res models.ParsedResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Messages, 1)
	assert.Equal(t, "SAVE10", res.Messages[0].Code)
	assert.Equal(t, "ten off", res.Messages[0].Message)
}

func TestParseCommand_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"statusCode": 200, "body": "No new comments"}`), 0o600))

	out, err := run(t, "", "parse", path)
	require.NoError(t, err)

	var res models.ParsedResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.False(t, res.HasNewMessages)
	assert.Equal(t, "No new comments", res.Message)
}

func TestParseCommand_EmptyInput(t *testing.T) {
	_, err := run(t, "  ", "parse")
	assert.Error(t, err)
}

func TestExtractCommand(t *testing.T) {
	out, err := run(t, `{"statusCode": 200, "body": {"code": "BOGO"}}`, "extract")
	require.NoError(t, err)

	var res models.ParsedResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Messages, 1)
	assert.Equal(t, "BOGO", res.Messages[0].Code)
	assert.Equal(t, "Found 1 new message", res.Message)
}

func TestFetchCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/all-comments", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"statusCode": 200, "body": "[{\"code\": \"FREE\"}]"}`))
	}))
	defer srv.Close()

	t.Setenv("CONFIG_FILE", "")
	t.Setenv("UPSTREAM_BASE_URL", srv.URL)

	out, err := run(t, "", "fetch", "--timeframe", "all")
	require.NoError(t, err)

	var res models.ParsedResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Messages, 1)
	assert.Equal(t, "FREE", res.Messages[0].Code)
}

func TestFetchCommand_UnknownFrame(t *testing.T) {
	_, err := run(t, "", "fetch", "--timeframe", "month")
	assert.Error(t, err)
}

func TestServeCommand_RequiresConfig(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	_, err := run(t, "", "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file is required")
}

func TestSwaggerDocIsRegistered(t *testing.T) {
	cfg, log, err := (&rootOptions{}).load(false)
	require.NoError(t, err)

	handler := api.NewHandler(nil, newExtractor(cfg.Extraction, log), log)
	router := api.NewRouter(handler, log, api.RouterOptions{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/messages/refresh")
}
