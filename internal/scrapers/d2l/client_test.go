package d2l

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"brightspace-helper/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

func TestClientFetchText(t *testing.T) {
	var cookies []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookies = append(cookies, r.Header.Get("cookie"))
		switch r.URL.Path {
		case "/d2l/home":
			w.Write([]byte(`<html><body>home</body></html>`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	tel := &telemetry.Recorder{}
	client, err := NewClient(ClientOptions{
		BaseUrl:           server.URL,
		Cookie:            "d2lSessionVal=abc",
		RequestsPerSecond: 100,
	}, tel)
	require.NoError(t, err)

	ctx := context.Background()

	text, err := client.FetchText(ctx, HomePath)
	require.NoError(t, err)
	require.Equal(t, `<html><body>home</body></html>`, text)

	doc, err := client.FetchDocument(ctx, HomePath)
	require.NoError(t, err)
	require.Equal(t, 1, doc.Find("body").Length())

	_, err = client.FetchText(ctx, GradesPath("6606"))
	var httpErr *HttpError
	require.True(t, errors.As(err, &httpErr))
	require.Equal(t, http.StatusNotFound, httpErr.Status)
	require.Equal(t, GradesPath("6606"), httpErr.Url)

	require.Equal(t, []string{"d2lSessionVal=abc", "d2lSessionVal=abc", "d2lSessionVal=abc"}, cookies)
	require.Len(t, tel.Reports("warning"), 1)
}

func TestNewClientRejectsRelativeUrl(t *testing.T) {
	_, err := NewClient(ClientOptions{BaseUrl: "school.example.com"}, &telemetry.Recorder{})
	require.Error(t, err)
}

func TestPaths(t *testing.T) {
	require.Equal(t, "/d2l/lms/grades/my_grades/main.d2l?ou=6606", GradesPath("6606"))
	require.Equal(t, "/d2l/le/calendar/6606/home/list", CalendarPath("6606"))
}
