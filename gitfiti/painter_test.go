package gitfiti

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/gitfiti/internal/errors"
	"github.com/jrsteele09/gitfiti/provider"
	"github.com/stretchr/testify/require"
)

type apiCall struct {
	method provider.Method
	route  string
	body   any
}

type fakeAPI struct {
	calls     []apiCall
	repoFound bool
	emptyRepo bool
	failOn    string
	commitSeq int
}

func (f *fakeAPI) CallAPI(_ context.Context, method provider.Method, route, accessToken string, body any) (json.RawMessage, error) {
	f.calls = append(f.calls, apiCall{method: method, route: route, body: body})
	key := string(method) + " " + route
	if key == f.failOn {
		return nil, &provider.APIError{Method: method, Route: route, Status: http.StatusUnprocessableEntity, Body: json.RawMessage(`{"message":"Validation Failed"}`)}
	}
	if accessToken != "abc123" {
		return nil, &provider.APIError{Method: method, Route: route, Status: http.StatusUnauthorized}
	}

	switch key {
	case "GET repos/octocat/gitfiti":
		if !f.repoFound {
			return nil, &provider.APIError{Method: method, Route: route, Status: http.StatusNotFound, Body: json.RawMessage(`{"message":"Not Found"}`)}
		}
		return json.RawMessage(`{"name":"gitfiti","full_name":"octocat/gitfiti","default_branch":"main"}`), nil
	case "POST user/repos":
		return json.RawMessage(`{"name":"gitfiti","full_name":"octocat/gitfiti","default_branch":"main"}`), nil
	case "GET repos/octocat/gitfiti/git/ref/heads/main":
		if f.emptyRepo {
			return nil, &provider.APIError{Method: method, Route: route, Status: http.StatusConflict, Body: json.RawMessage(`{"message":"Git Repository is empty."}`)}
		}
		return json.RawMessage(`{"ref":"refs/heads/main","object":{"sha":"base"}}`), nil
	case "GET repos/octocat/gitfiti/git/commits/base":
		return json.RawMessage(`{"sha":"base","tree":{"sha":"tree0"}}`), nil
	case "PUT repos/octocat/gitfiti/contents/README.md":
		return json.RawMessage(`{"content":{"path":"README.md"},"commit":{"sha":"seed","tree":{"sha":"tree1"}}}`), nil
	case "POST repos/octocat/gitfiti/git/commits":
		f.commitSeq++
		return json.RawMessage(fmt.Sprintf(`{"sha":"c%d","tree":{"sha":"tree0"}}`, f.commitSeq)), nil
	case "PATCH repos/octocat/gitfiti/git/refs/heads/main":
		return json.RawMessage(`{"ref":"refs/heads/main"}`), nil
	}
	return nil, &provider.APIError{Method: method, Route: route, Status: http.StatusNotFound}
}

var (
	testNow  = time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)
	testUser = provider.User{ID: 583231, Login: "octocat", Name: "The Octocat"}
)

func newTestPainter(api APICaller) *Painter {
	p := NewPainter(api, "gitfiti")
	p.now = func() time.Time { return testNow }
	return p
}

func TestPaint_ExistingRepository(t *testing.T) {
	api := &fakeAPI{repoFound: true}
	plan := Plan{Commits: []Commit{
		{Date: time.Date(2025, 6, 2, 23, 0, 0, 0, time.UTC), Count: 1},
		{Date: time.Date(2025, 6, 1, 5, 0, 0, 0, time.UTC), Count: 2},
		{Date: time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), Count: 0},
	}}

	res, err := newTestPainter(api).Paint(context.Background(), "abc123", testUser, plan)
	require.NoError(t, err)
	require.Equal(t, Result{Repository: "octocat/gitfiti", Branch: "main", Head: "c3", Commits: 3}, res)

	var routes []string
	for _, c := range api.calls {
		routes = append(routes, string(c.method)+" "+c.route)
	}
	require.Equal(t, []string{
		"GET repos/octocat/gitfiti",
		"GET repos/octocat/gitfiti/git/ref/heads/main",
		"GET repos/octocat/gitfiti/git/commits/base",
		"POST repos/octocat/gitfiti/git/commits",
		"POST repos/octocat/gitfiti/git/commits",
		"POST repos/octocat/gitfiti/git/commits",
		"PATCH repos/octocat/gitfiti/git/refs/heads/main",
	}, routes)

	// Oldest day first, each commit chained on the previous one.
	first := api.calls[3].body.(createCommitRequest)
	require.Equal(t, []string{"base"}, first.Parents)
	require.Equal(t, "tree0", first.Tree)
	require.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), first.Author.Date)
	require.Equal(t, "583231+octocat@users.noreply.github.com", first.Author.Email)
	require.Equal(t, "The Octocat", first.Committer.Name)

	second := api.calls[4].body.(createCommitRequest)
	require.Equal(t, []string{"c1"}, second.Parents)

	third := api.calls[5].body.(createCommitRequest)
	require.Equal(t, []string{"c2"}, third.Parents)
	require.Equal(t, time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC), third.Author.Date)

	require.Equal(t, map[string]any{"sha": "c3"}, api.calls[6].body)
}

func TestPaint_CreatesMissingRepository(t *testing.T) {
	api := &fakeAPI{}
	plan := Plan{Commits: []Commit{{Date: testNow, Count: 1}}}

	res, err := newTestPainter(api).Paint(context.Background(), "abc123", testUser, plan)
	require.NoError(t, err)
	require.Equal(t, 1, res.Commits)

	require.Equal(t, provider.MethodPost, api.calls[1].method)
	require.Equal(t, "user/repos", api.calls[1].route)
	require.Equal(t, map[string]any{
		"name":        "gitfiti",
		"description": "Drawn with gitfiti",
		"auto_init":   true,
	}, api.calls[1].body)
}

func TestPaint_FailureLeavesBranchUntouched(t *testing.T) {
	api := &fakeAPI{repoFound: true, failOn: "POST repos/octocat/gitfiti/git/commits"}
	plan := Plan{Commits: []Commit{{Date: testNow, Count: 2}}}

	_, err := newTestPainter(api).Paint(context.Background(), "abc123", testUser, plan)
	require.Error(t, err)

	var apiErr *provider.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)

	for _, c := range api.calls {
		require.NotEqual(t, provider.MethodPatch, c.method)
	}
}

func TestPaint_EmptyRepositoryIsInitialised(t *testing.T) {
	api := &fakeAPI{repoFound: true, emptyRepo: true}
	plan := Plan{Commits: []Commit{{Date: testNow, Count: 2}}}

	res, err := newTestPainter(api).Paint(context.Background(), "abc123", testUser, plan)
	require.NoError(t, err)
	require.Equal(t, Result{Repository: "octocat/gitfiti", Branch: "main", Head: "c2", Commits: 2}, res)

	var routes []string
	for _, c := range api.calls {
		routes = append(routes, string(c.method)+" "+c.route)
	}
	require.Equal(t, []string{
		"GET repos/octocat/gitfiti",
		"GET repos/octocat/gitfiti/git/ref/heads/main",
		"PUT repos/octocat/gitfiti/contents/README.md",
		"POST repos/octocat/gitfiti/git/commits",
		"POST repos/octocat/gitfiti/git/commits",
		"PATCH repos/octocat/gitfiti/git/refs/heads/main",
	}, routes)

	seed := api.calls[2].body.(map[string]any)
	require.Equal(t, "main", seed["branch"])
	require.Equal(t, base64.StdEncoding.EncodeToString([]byte(readmeContent)), seed["content"])

	first := api.calls[3].body.(createCommitRequest)
	require.Equal(t, []string{"seed"}, first.Parents)
	require.Equal(t, "tree1", first.Tree)
}

func TestPaint_EmptyRepositoryInitialisationFails(t *testing.T) {
	api := &fakeAPI{repoFound: true, emptyRepo: true, failOn: "PUT repos/octocat/gitfiti/contents/README.md"}
	plan := Plan{Commits: []Commit{{Date: testNow, Count: 1}}}

	_, err := newTestPainter(api).Paint(context.Background(), "abc123", testUser, plan)
	require.ErrorContains(t, err, "initialise empty repository on main")
	var apiErr *provider.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)

	for _, c := range api.calls {
		require.NotEqual(t, provider.MethodPost, c.method)
		require.NotEqual(t, provider.MethodPatch, c.method)
	}
}

func TestPaint_RevokedToken(t *testing.T) {
	api := &fakeAPI{repoFound: true}
	plan := Plan{Commits: []Commit{{Date: testNow, Count: 1}}}

	_, err := newTestPainter(api).Paint(context.Background(), "revoked", testUser, plan)
	var apiErr *provider.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Len(t, api.calls, 1)
}

func TestPaint_InvalidPlans(t *testing.T) {
	tests := []struct {
		name string
		plan Plan
	}{
		{name: "no commits", plan: Plan{}},
		{name: "all empty days", plan: Plan{Commits: []Commit{{Date: testNow, Count: 0}}}},
		{name: "count above bracket", plan: Plan{Commits: []Commit{{Date: testNow, Count: MaxCountPerDay + 1}}}},
		{name: "negative count", plan: Plan{Commits: []Commit{{Date: testNow, Count: -1}}}},
		{name: "missing date", plan: Plan{Commits: []Commit{{Count: 1}}}},
		{name: "future date", plan: Plan{Commits: []Commit{{Date: testNow.Add(48 * time.Hour), Count: 1}}}},
		{name: "too many commits", plan: func() Plan {
			var p Plan
			for i := 0; i < 50; i++ {
				p.Commits = append(p.Commits, Commit{Date: testNow.AddDate(0, 0, -i), Count: MaxCountPerDay})
			}
			return p
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{repoFound: true}
			_, err := newTestPainter(api).Paint(context.Background(), "abc123", testUser, tt.plan)
			require.ErrorIs(t, err, apperrors.ErrInvalidPlan)
			require.Empty(t, api.calls)
		})
	}
}

func TestPlan_DecodesCanvasPayload(t *testing.T) {
	payload := `{"commits":[{"date":"2025-06-01T10:11:12.345Z","count":5},{"date":"2025-06-01T20:00:00.000Z","count":1}]}`

	var plan Plan
	require.NoError(t, json.Unmarshal([]byte(payload), &plan))
	require.NoError(t, plan.Validate(testNow))
	require.Equal(t, 6, plan.Total())

	days := plan.days()
	require.Len(t, days, 1)
	require.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), days[0].Date)
	require.Equal(t, 6, days[0].Count)
}
