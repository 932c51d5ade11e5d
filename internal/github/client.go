// Package github is the repository fact source: it verifies submitted
// repositories and builds profile facts from a public GitHub account.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/sakif/shadow-rank/internal/model"
)

var (
	// ErrInvalidURL means the submitted string is not a GitHub repository URL.
	ErrInvalidURL = errors.New("github: invalid repository url")
	// ErrNotFound means the repository or user is missing or private.
	ErrNotFound = errors.New("github: not found")
	// ErrUnavailable covers timeouts, 5xx and rate limiting. Retryable.
	ErrUnavailable = errors.New("github: unavailable")
)

const defaultBaseURL = "https://api.github.com"

type Config struct {
	BaseURL string        // empty uses api.github.com
	Token   string        // optional; raises the API rate limit
	Timeout time.Duration // per request
	RPS     float64       // client-side throttle, <= 0 disables it
}

// Client talks to the GitHub REST API v3.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}

	httpClient := &http.Client{}
	if cfg.Token != "" && !strings.Contains(cfg.Token, "your_") {
		// oauth2.NewClient wraps the default transport and adds the
		// Authorization header to every request.
		httpClient = oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}))
	}
	httpClient.Timeout = cfg.Timeout
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), max(1, int(cfg.RPS)))
	}

	return &Client{baseURL: base, http: httpClient, limiter: limiter, logger: logger}
}

type repoResponse struct {
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"`
	Description string    `json:"description"`
	HTMLURL     string    `json:"html_url"`
	PushedAt    time.Time `json:"pushed_at"`
	CreatedAt   time.Time `json:"created_at"`
	Language    string    `json:"language"`
	Stars       int       `json:"stargazers_count"`
	Private     bool      `json:"private"`
}

// VerifyRepository resolves rawURL to a public repository. The returned
// fact's URL is GitHub's canonical html_url, which is the dedup key.
func (c *Client) VerifyRepository(ctx context.Context, rawURL string) (*model.RepositoryFact, error) {
	ref, ok := ParseRepoURL(rawURL)
	if !ok {
		return nil, ErrInvalidURL
	}

	var repo repoResponse
	path := "/repos/" + url.PathEscape(ref.Owner) + "/" + url.PathEscape(ref.Repo)
	if err := c.getJSON(ctx, path, &repo); err != nil {
		c.logger.Info("repository verification failed", "repo", ref.String(), "error", err)
		return nil, err
	}
	if repo.Private || repo.HTMLURL == "" {
		return nil, ErrNotFound
	}

	language := repo.Language
	if language == "" {
		language = "Unknown"
	}
	return &model.RepositoryFact{
		Name:        repo.Name,
		FullName:    repo.FullName,
		Description: repo.Description,
		URL:         repo.HTMLURL,
		PushedAt:    repo.PushedAt,
		CreatedAt:   repo.CreatedAt,
		Language:    language,
		Stars:       repo.Stars,
	}, nil
}

type userResponse struct {
	Login   string `json:"login"`
	Company string `json:"company"`
	Bio     string `json:"bio"`
}

type userRepo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Language    string `json:"language"`
	HTMLURL     string `json:"html_url"`
}

// FetchProfile builds resume-like facts from a public GitHub account: the
// languages of the ten most recently updated repositories, the first five
// of them as projects and the company as current experience.
func (c *Client) FetchProfile(ctx context.Context, username string) (*model.ResumeData, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.ContainsAny(username, "/?# ") {
		return nil, ErrNotFound
	}

	var user userResponse
	if err := c.getJSON(ctx, "/users/"+url.PathEscape(username), &user); err != nil {
		return nil, err
	}

	// A failed repo listing still yields a usable profile.
	var repos []userRepo
	if err := c.getJSON(ctx, "/users/"+url.PathEscape(username)+"/repos?sort=updated&per_page=10", &repos); err != nil {
		c.logger.Warn("listing github repos failed", "user", username, "error", err)
		repos = nil
	}

	data := &model.ResumeData{
		Source:     model.SourceGitHub,
		Skills:     []string{},
		Experience: []model.Experience{},
		Projects:   []model.Project{},
		Education:  []model.Education{},
		Languages:  []string{},
	}

	seen := map[string]bool{}
	for _, r := range repos {
		if r.Language != "" && !seen[r.Language] {
			seen[r.Language] = true
			data.Languages = append(data.Languages, r.Language)
		}
	}
	data.Skills = append(data.Skills, data.Languages...)

	for i, r := range repos {
		if i == 5 {
			break
		}
		techs := []string{}
		if r.Language != "" {
			techs = append(techs, r.Language)
		}
		data.Projects = append(data.Projects, model.Project{
			Name:         r.Name,
			Description:  r.Description,
			Technologies: techs,
			URL:          r.HTMLURL,
		})
	}

	if user.Company != "" {
		data.Experience = append(data.Experience, model.Experience{
			Title:       "Developer",
			Company:     user.Company,
			Duration:    "Current",
			Description: user.Bio,
		})
	}
	return data, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("github: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0",
		resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	default:
		// 404 for missing and private repositories, 451 for blocked ones
		return fmt.Errorf("%w: status %d", ErrNotFound, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return fmt.Errorf("%w: reading body: %v", ErrUnavailable, err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("github: decoding %s: %w", path, err)
	}
	return nil
}
