package waas

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"waas-extractor/lib/scrapers/ycauth"
	"waas-extractor/lib/telemetry"

	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	calls   int
	session ycauth.Session
	err     error
}

func (f *fakeAuth) AcquireSession(ctx context.Context) (ycauth.Session, error) {
	f.calls++
	if f.err != nil {
		return ycauth.Session{}, f.err
	}
	return f.session, nil
}

type capturedFetch struct {
	calls  int
	header http.Header
	ids    []int64
}

func newPortalServer(t *testing.T, status int, response string) (*httptest.Server, *capturedFetch) {
	captured := &capturedFetch{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/companies/fetch_data", r.URL.Path)

		captured.calls++
		captured.header = r.Header.Clone()

		var body struct {
			Ids []int64 `json:"ids"`
		}
		err := json.NewDecoder(r.Body).Decode(&body)
		require.NoError(t, err)
		captured.ids = body.Ids

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, response)
	}))
	t.Cleanup(server.Close)
	return server, captured
}

func TestFetchCompanies(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/waas")
	defer cleanup()

	server, captured := newPortalServer(
		t, http.StatusOK,
		`{"companies":[{"id":1,"name":"Initech"},{"id":2,"name":"Hooli"}]}`,
	)
	auth := &fakeAuth{session: ycauth.Session{Cookies: "a=1; b=2", CsrfToken: "portal-token"}}
	client := NewClient(auth, ClientOptions{BaseUrl: server.URL})

	companies, err := client.FetchCompanies(context.Background(), []int64{1, 2})
	require.NoError(t, err)
	require.Len(t, companies, 2)
	require.Equal(t, "Initech", *companies[0].Name)
	require.Equal(t, "Hooli", *companies[1].Name)

	require.Equal(t, []int64{1, 2}, captured.ids)
	require.Equal(t, "a=1; b=2", captured.header.Get("Cookie"))
	require.Equal(t, "portal-token", captured.header.Get("X-Csrf-Token"))
}

func TestFetchCompaniesReusesSession(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/waas")
	defer cleanup()

	server, captured := newPortalServer(t, http.StatusOK, `{"companies":[]}`)
	auth := &fakeAuth{session: ycauth.Session{Cookies: "a=1", CsrfToken: "tok"}}
	client := NewClient(auth, ClientOptions{BaseUrl: server.URL})

	_, err := client.FetchCompanies(context.Background(), []int64{1})
	require.NoError(t, err)
	_, err = client.FetchCompanies(context.Background(), []int64{2})
	require.NoError(t, err)

	require.Equal(t, 1, auth.calls, "the session should be acquired once per run")
	require.Equal(t, 2, captured.calls)
}

func TestFetchCompaniesAuthFailure(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/waas")
	defer cleanup()

	server, captured := newPortalServer(t, http.StatusOK, `{"companies":[]}`)
	authErr := &ycauth.AuthError{Step: "login page", Err: ycauth.ErrMissingCsrfToken}
	client := NewClient(&fakeAuth{err: authErr}, ClientOptions{BaseUrl: server.URL})

	_, err := client.FetchCompanies(context.Background(), []int64{1})

	var gotAuthErr *ycauth.AuthError
	require.ErrorAs(t, err, &gotAuthErr)
	require.Equal(t, 0, captured.calls, "no fetch should happen without a session")
}

func TestFetchCompaniesMissingField(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/waas")
	defer cleanup()

	server, _ := newPortalServer(t, http.StatusOK, `{}`)
	auth := &fakeAuth{session: ycauth.Session{Cookies: "a=1"}}
	client := NewClient(auth, ClientOptions{BaseUrl: server.URL})

	companies, err := client.FetchCompanies(context.Background(), []int64{1})
	require.NoError(t, err)
	require.NotNil(t, companies)
	require.Empty(t, companies)
}

func TestFetchCompaniesRequestFailure(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/waas")
	defer cleanup()

	server, _ := newPortalServer(t, http.StatusBadGateway, `{}`)
	auth := &fakeAuth{session: ycauth.Session{Cookies: "a=1"}}
	client := NewClient(auth, ClientOptions{BaseUrl: server.URL})

	_, err := client.FetchCompanies(context.Background(), []int64{1})

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
}
