package restyutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

type memoryOutput struct {
	mutex    sync.Mutex
	messages map[string]string
}

func (o *memoryOutput) Write(id string, contents string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	if o.messages == nil {
		o.messages = map[string]string{}
	}
	o.messages[id] = contents
}

func TestInstrumentClientDumpsMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "_appcast_session", Value: "secret-session"})
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))
	defer server.Close()

	output := &memoryOutput{}
	client := resty.New()
	InstrumentClient(client, nil, output)

	_, err := client.R().
		SetHeader("cookie", "_appcast_session=secret-cookie").
		SetFormData(map[string]string{
			"email":              "ops@example.com",
			"password":           "hunter2",
			"authenticity_token": "tok1",
		}).
		Post(server.URL + "/user_sessions")
	require.NoError(t, err)

	_, err = client.R().Get(server.URL + "/again")
	require.NoError(t, err)

	require.Len(t, output.messages, 2)
	first := output.messages["1"]
	require.Contains(t, first, "POST "+server.URL+"/user_sessions")
	require.Contains(t, first, "email=ops%40example.com")
	require.NotContains(t, first, "hunter2")
	require.NotContains(t, first, "tok1")
	require.Contains(t, first, "password=%3Cmasked")
	require.Contains(t, first, "418 ")
	require.Contains(t, first, "short and stout")
	require.Contains(t, first, "Cookie: <masked")
	require.NotContains(t, first, "secret-cookie")
	require.NotContains(t, first, "secret-session")

	require.Contains(t, output.messages["2"], "GET "+server.URL+"/again")
}

func TestFormatRequestBodyWithoutBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/user_sessions/new", nil)
	req.GetBody = func() (io.ReadCloser, error) { return nil, nil }
	require.Equal(t, "", formatRequestBody(req))

	req.GetBody = nil
	require.Equal(t, "", formatRequestBody(req))
}

func TestFormatRequestBodyKeepsOtherBodies(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/hook", strings.NewReader(`{"password":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(`{"password":"x"}`)), nil
	}
	require.Equal(t, `{"password":"x"}`, formatRequestBody(req))
}

func TestInstrumentClientWithoutOutput(t *testing.T) {
	client := resty.New()
	InstrumentClient(client, nil, nil)

	// nothing listens on this port once the server is closed
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := client.R().Get(url)
	require.Error(t, err)
}

func TestFilesystemOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dumps")
	require.NoError(t, os.MkdirAll(dir, 0777))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.txt"), []byte("old"), 0600))

	output, err := NewFilesystemOutput(dir)
	require.NoError(t, err)
	output.Write("7", "hello")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	contents, err := os.ReadFile(filepath.Join(dir, "7.txt"))
	require.NoError(t, err)
	require.Equal(t, "hello", string(contents))
}
