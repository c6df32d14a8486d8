// Package github stores the order document in a GitHub repository through
// the contents API. The blob sha returned on read is the version token.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v66/github"

	"orderdesk/pkg/order"
)

// Options configures a Store.
type Options struct {
	Token  string
	Owner  string
	Repo   string
	Branch string
	Path   string
	// BaseURL overrides the API endpoint, e.g. for GitHub Enterprise.
	BaseURL    string
	HTTPClient *http.Client
}

// Store reads and writes a single file on a branch.
type Store struct {
	client *gh.Client
	owner  string
	repo   string
	branch string
	path   string
}

// New creates a contents API store.
func New(opts Options) (*Store, error) {
	client := gh.NewClient(opts.HTTPClient).WithAuthToken(opts.Token)
	if opts.BaseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parse github base url: %w", err)
		}
		client.BaseURL = u
	}
	return &Store{
		client: client,
		owner:  opts.Owner,
		repo:   opts.Repo,
		branch: opts.Branch,
		path:   opts.Path,
	}, nil
}

// Fetch gets the file content and blob sha on the configured branch.
func (s *Store) Fetch(ctx context.Context) (order.Snapshot, error) {
	file, _, resp, err := s.client.Repositories.GetContents(ctx, s.owner, s.repo, s.path,
		&gh.RepositoryContentGetOptions{Ref: s.branch})
	if err != nil {
		return order.Snapshot{}, storeError(order.OpFetch, resp, err)
	}
	if file == nil {
		return order.Snapshot{}, &order.StoreError{
			Op:  order.OpFetch,
			Err: fmt.Errorf("%s is a directory", s.path),
		}
	}
	content, err := file.GetContent()
	if err != nil {
		return order.Snapshot{}, &order.StoreError{Op: order.OpFetch, Err: fmt.Errorf("decode content: %w", err)}
	}
	return order.Snapshot{Content: []byte(content), Version: file.GetSHA()}, nil
}

// Write commits content to the branch. GitHub rejects the commit when
// version is not the sha of the file's current blob.
func (s *Store) Write(ctx context.Context, content []byte, version, message string) error {
	_, resp, err := s.client.Repositories.UpdateFile(ctx, s.owner, s.repo, s.path,
		&gh.RepositoryContentFileOptions{
			Message: gh.String(message),
			Content: content,
			SHA:     gh.String(version),
			Branch:  gh.String(s.branch),
		})
	if err != nil {
		return storeError(order.OpWrite, resp, err)
	}
	return nil
}

func storeError(op string, resp *gh.Response, err error) error {
	status := 0
	if resp != nil && resp.Response != nil {
		status = resp.StatusCode
	}
	if status == 0 {
		return &order.StoreError{Op: op, Err: err}
	}

	body := err.Error()
	var ge *gh.ErrorResponse
	if errors.As(err, &ge) {
		raw, mErr := json.Marshal(struct {
			Message          string     `json:"message"`
			Errors           []gh.Error `json:"errors,omitempty"`
			DocumentationURL string     `json:"documentation_url,omitempty"`
		}{ge.Message, ge.Errors, ge.DocumentationURL})
		if mErr == nil {
			body = string(raw)
		}
	}
	return &order.StoreError{Op: op, Status: status, Body: body, Err: err}
}
