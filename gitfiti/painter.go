package gitfiti

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/jrsteele09/gitfiti/internal/errors"
	"github.com/jrsteele09/gitfiti/provider"
	"github.com/rs/zerolog/log"
)

// APICaller is the subset of provider.Exchanger the painter needs.
type APICaller interface {
	CallAPI(ctx context.Context, method provider.Method, route, accessToken string, body any) (json.RawMessage, error)
}

// Result summarises a completed push.
type Result struct {
	Repository string `json:"repository"`
	Branch     string `json:"branch"`
	Head       string `json:"head"`
	Commits    int    `json:"commits"`
}

// Painter draws on a user's contribution graph by creating back-dated empty
// commits in a dedicated repository through the Git Data API.
type Painter struct {
	api      APICaller
	repoName string
	now      func() time.Time
}

func NewPainter(api APICaller, repoName string) *Painter {
	return &Painter{
		api:      api,
		repoName: repoName,
		now:      time.Now,
	}
}

const (
	readmePath    = "README.md"
	readmeContent = "# gitfiti\n\nDrawn with gitfiti.\n"
)

type repository struct {
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	DefaultBranch string `json:"default_branch"`
}

type gitRef struct {
	Object struct {
		SHA string `json:"sha"`
	} `json:"object"`
}

type gitCommit struct {
	SHA  string `json:"sha"`
	Tree struct {
		SHA string `json:"sha"`
	} `json:"tree"`
}

type signature struct {
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Date  time.Time `json:"date"`
}

type createCommitRequest struct {
	Message   string    `json:"message"`
	Tree      string    `json:"tree"`
	Parents   []string  `json:"parents"`
	Author    signature `json:"author"`
	Committer signature `json:"committer"`
}

// Paint pushes plan to the user's gitfiti repository, creating it on first
// use. The branch ref is moved only after every commit has been created, so a
// failure part-way leaves the branch where it was.
func (p *Painter) Paint(ctx context.Context, accessToken string, user provider.User, plan Plan) (Result, error) {
	if err := plan.Validate(p.now()); err != nil {
		return Result{}, err
	}
	if user.Login == "" {
		return Result{}, apperrors.Wrapf(apperrors.ErrInvalidResponse, "user profile has no login")
	}

	repo, err := p.ensureRepository(ctx, accessToken, user)
	if err != nil {
		return Result{}, err
	}
	repoRoute := fmt.Sprintf("repos/%s/%s", url.PathEscape(user.Login), url.PathEscape(repo.Name))
	branch := repo.DefaultBranch
	if branch == "" {
		branch = "main"
	}

	parent, tree, err := p.branchHead(ctx, accessToken, repoRoute, branch)
	if err != nil {
		return Result{}, err
	}
	created := 0

	for _, d := range plan.days() {
		at := d.Date.Add(12 * time.Hour)
		for i := 1; i <= d.Count; i++ {
			sig := signature{Name: user.DisplayName(), Email: user.NoreplyEmail(), Date: at}
			var commit gitCommit
			err := p.call(ctx, provider.MethodPost, repoRoute+"/git/commits", accessToken, createCommitRequest{
				Message:   fmt.Sprintf("gitfiti %s (%d/%d)", d.Date.Format(time.DateOnly), i, d.Count),
				Tree:      tree,
				Parents:   []string{parent},
				Author:    sig,
				Committer: sig,
			}, &commit)
			if err != nil {
				return Result{}, fmt.Errorf("create commit for %s: %w", d.Date.Format(time.DateOnly), err)
			}
			parent = commit.SHA
			created++
		}
	}

	if err := p.call(ctx, provider.MethodPatch, repoRoute+"/git/refs/heads/"+branch, accessToken, map[string]any{"sha": parent}, nil); err != nil {
		return Result{}, fmt.Errorf("update branch %s: %w", branch, err)
	}

	log.Info().Str("repository", repo.FullName).Int("commits", created).Msg("gitfiti pushed")
	return Result{
		Repository: repo.FullName,
		Branch:     branch,
		Head:       parent,
		Commits:    created,
	}, nil
}

// branchHead returns the commit and tree at the tip of branch. A repository
// with no commits yet is first given a README through the contents API, since
// the Git Data API refuses to write to an empty repository.
func (p *Painter) branchHead(ctx context.Context, accessToken, repoRoute, branch string) (commitSHA, treeSHA string, err error) {
	var ref gitRef
	err = p.call(ctx, provider.MethodGet, repoRoute+"/git/ref/heads/"+branch, accessToken, nil, &ref)
	if isEmptyRepository(err) {
		return p.seedRepository(ctx, accessToken, repoRoute, branch)
	}
	if err != nil {
		return "", "", fmt.Errorf("read branch %s: %w", branch, err)
	}

	var head gitCommit
	if err := p.call(ctx, provider.MethodGet, repoRoute+"/git/commits/"+ref.Object.SHA, accessToken, nil, &head); err != nil {
		return "", "", fmt.Errorf("read head commit: %w", err)
	}
	if head.SHA == "" {
		head.SHA = ref.Object.SHA
	}
	return head.SHA, head.Tree.SHA, nil
}

// GitHub answers 409 for refs of an empty repository and 404 when the branch
// has never been written.
func isEmptyRepository(err error) bool {
	var apiErr *provider.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusConflict || apiErr.Status == http.StatusNotFound
}

func (p *Painter) seedRepository(ctx context.Context, accessToken, repoRoute, branch string) (commitSHA, treeSHA string, err error) {
	var created struct {
		Commit gitCommit `json:"commit"`
	}
	err = p.call(ctx, provider.MethodPut, repoRoute+"/contents/"+readmePath, accessToken, map[string]any{
		"message": "Initialise gitfiti",
		"content": base64.StdEncoding.EncodeToString([]byte(readmeContent)),
		"branch":  branch,
	}, &created)
	if err != nil {
		return "", "", fmt.Errorf("initialise empty repository on %s: %w", branch, err)
	}
	if created.Commit.SHA == "" || created.Commit.Tree.SHA == "" {
		return "", "", apperrors.Wrapf(apperrors.ErrInvalidResponse, "initial commit on %s has no sha", branch)
	}
	log.Info().Str("branch", branch).Msg("empty gitfiti repository initialised")
	return created.Commit.SHA, created.Commit.Tree.SHA, nil
}

func (p *Painter) ensureRepository(ctx context.Context, accessToken string, user provider.User) (repository, error) {
	var repo repository
	route := fmt.Sprintf("repos/%s/%s", url.PathEscape(user.Login), url.PathEscape(p.repoName))
	err := p.call(ctx, provider.MethodGet, route, accessToken, nil, &repo)
	if err == nil {
		return repo, nil
	}

	var apiErr *provider.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		return repository{}, fmt.Errorf("look up repository %s: %w", p.repoName, err)
	}

	err = p.call(ctx, provider.MethodPost, "user/repos", accessToken, map[string]any{
		"name":        p.repoName,
		"description": "Drawn with gitfiti",
		"auto_init":   true,
	}, &repo)
	if err != nil {
		return repository{}, fmt.Errorf("create repository %s: %w", p.repoName, err)
	}
	log.Info().Str("repository", repo.FullName).Msg("gitfiti repository created")
	return repo, nil
}

func (p *Painter) call(ctx context.Context, method provider.Method, route, accessToken string, body, out any) error {
	raw, err := p.api.CallAPI(ctx, method, route, accessToken, body)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.Wrapf(apperrors.ErrInvalidResponse, "decode %s %s: %v", method, route, err)
	}
	return nil
}
