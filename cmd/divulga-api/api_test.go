package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getdivulga/divulga/pkg/cmd"
	"github.com/getdivulga/divulga/pkg/persistence/file"
)

func TestAPI_App(t *testing.T) {
	api := NewAPI(
		slog.Default(),
		file.NewPersistence(t.TempDir()),
		cmd.NewPlatformRegistry(slog.Default()),
		nil,
	)

	app := api.App()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Divulga API", string(body))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
