package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func doCORS(t *testing.T, origins []string, method, origin string) *httptest.ResponseRecorder {
	t.Helper()
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	req := httptest.NewRequest(method, "/", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	CORS(origins)(next).ServeHTTP(rec, req)
	return rec
}

func TestCORS_WildcardEchoesOrigin(t *testing.T) {
	rec := doCORS(t, []string{"*"}, http.MethodGet, "https://umerali.dev")
	require.Equal(t, http.StatusTeapot, rec.Code)
	require.Equal(t, "https://umerali.dev", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_ExplicitOriginAllowsCredentials(t *testing.T) {
	rec := doCORS(t, []string{"https://umerali.dev"}, http.MethodGet, "https://umerali.dev")
	require.Equal(t, "https://umerali.dev", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	rec := doCORS(t, []string{"https://umerali.dev"}, http.MethodGet, "https://evil.example")
	require.Equal(t, http.StatusTeapot, rec.Code, "request still reaches the handler")
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_NoOriginHeaderSetsNothing(t *testing.T) {
	rec := doCORS(t, []string{"*"}, http.MethodGet, "")
	require.Equal(t, http.StatusTeapot, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	rec := doCORS(t, []string{"*"}, http.MethodOptions, "https://umerali.dev")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}
