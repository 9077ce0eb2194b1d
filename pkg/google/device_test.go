package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestServer(t *testing.T, tokenBody string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/device/code", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"device_code":"dev-123","user_code":"ABCD-EFGH","verification_url":"https://www.google.com/device","expires_in":600,"interval":1}`))
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "dev-123", r.PostForm.Get("device_code"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(tokenBody))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testFlow(server *httptest.Server) *DeviceFlow {
	return newDeviceFlow("client-id", "client-secret", oauth2.Endpoint{
		DeviceAuthURL: server.URL + "/device/code",
		TokenURL:      server.URL + "/token",
		AuthStyle:     oauth2.AuthStyleInParams,
	})
}

func TestDeviceFlow_ReturnsIDToken(t *testing.T) {
	server := newTestServer(t, `{"access_token":"access","token_type":"Bearer","expires_in":3600,"id_token":"google-id-token"}`)

	var shownURL, shownCode string
	idToken, err := testFlow(server).Credential(context.Background(), func(url, code string) {
		shownURL, shownCode = url, code
	})

	require.NoError(t, err)
	assert.Equal(t, "google-id-token", idToken)
	assert.Equal(t, "https://www.google.com/device", shownURL)
	assert.Equal(t, "ABCD-EFGH", shownCode)
}

func TestDeviceFlow_MissingIDToken(t *testing.T) {
	server := newTestServer(t, `{"access_token":"access","token_type":"Bearer","expires_in":3600}`)

	_, err := testFlow(server).Credential(context.Background(), func(string, string) {})

	assert.ErrorIs(t, err, ErrNoIDToken)
}

func TestNewDeviceFlow_UsesGoogleEndpoints(t *testing.T) {
	flow := NewDeviceFlow("id", "secret")

	assert.Equal(t, deviceAuthURL, flow.config.Endpoint.DeviceAuthURL)
	assert.Contains(t, flow.config.Scopes, "openid")
}
