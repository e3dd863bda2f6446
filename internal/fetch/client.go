// Copyright 2025 Greenetwork contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

// Package fetch is the remote fetch client: a single HTTP GET with a
// caller-supplied User-Agent header and a hard deadline. Every distinct
// failure point carries its own stage code so failures are diagnosable
// without additional context.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/Greenetwork/offchain-worker/internal/logservice"
)

// Stage identifies the failure point of a fetch attempt.
type Stage string

const (
	StageEndpoint     Stage = "endpoint"      // configured target is not a valid URL
	StageHeaderValue  Stage = "header-value"  // User-Agent value empty or not valid UTF-8
	StageBuildRequest Stage = "build-request" // request construction failed
	StageSend         Stage = "send"          // request could not be issued
	StageDeadline     Stage = "deadline"      // no response within the deadline
	StageStatus       Stage = "status"        // HTTP status other than 200
	StageReadBody     Stage = "read-body"     // transport error while reading the body
	StageDecodeUTF8   Stage = "decode-utf8"   // body is not valid UTF-8
	StageDecodeJSON   Stage = "decode-json"   // body is not the expected JSON shape
	StageMissingField Stage = "missing-field" // a required field is absent
)

// Error is a staged fetch failure.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch failed at stage %s", e.Stage)
	}
	return fmt.Sprintf("fetch failed at stage %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StageOf extracts the stage from err, or "" if err is not a fetch error.
func StageOf(err error) Stage {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Stage
	}
	return ""
}

func staged(stage Stage, err error) *Error {
	if logservice.LS != nil {
		_ = logservice.LS.Log("error", (&Error{Stage: stage, Err: err}).Error(), "worker", "fetch")
	}
	return &Error{Stage: stage, Err: err}
}

// GithubInfo is the parsed fetch result. All three fields are required.
type GithubInfo struct {
	Login       string `json:"login"`
	Blog        string `json:"blog"`
	PublicRepos uint32 `json:"public_repos"`
}

func (g GithubInfo) String() string {
	return fmt.Sprintf("{ login: %s, blog: %s, public_repos: %d }", g.Login, g.Blog, g.PublicRepos)
}

// Client issues the remote GET against a fixed configured endpoint.
type Client struct {
	endpoint string
	timeout  time.Duration
	http     *http.Client
}

// NewClient creates a fetch client. timeout is the hard deadline measured from
// request issuance, 3000 ms in the stock configuration.
func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		timeout:  timeout,
		http:     &http.Client{},
	}
}

// FetchAndParse performs the GET with the given User-Agent value and parses
// the response body. It blocks the calling goroutine for at most the client
// timeout; the ledger execution domain is never involved.
func (c *Client) FetchAndParse(ctx context.Context, userAgent string) (*GithubInfo, error) {
	if _, err := url.ParseRequestURI(c.endpoint); err != nil {
		return nil, staged(StageEndpoint, err)
	}
	if userAgent == "" || !utf8.ValidString(userAgent) {
		return nil, staged(StageHeaderValue, fmt.Errorf("unusable User-Agent value %q", userAgent))
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, staged(StageBuildRequest, err)
	}
	req.Header.Set("User-Agent", userAgent)

	if logservice.LS != nil {
		_ = logservice.LS.Log("info",
			fmt.Sprintf("sending request to %s with agent %q", c.endpoint, userAgent),
			"worker", "fetch")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, staged(StageDeadline, err)
		}
		return nil, staged(StageSend, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, staged(StageStatus, fmt.Errorf("unexpected status code %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, staged(StageDeadline, err)
		}
		return nil, staged(StageReadBody, err)
	}

	return parseInfo(body)
}

// parseInfo decodes the body as UTF-8 JSON into GithubInfo, requiring login,
// blog and public_repos to all be present.
func parseInfo(body []byte) (*GithubInfo, error) {
	if !utf8.Valid(body) {
		return nil, staged(StageDecodeUTF8, errors.New("response body is not valid UTF-8"))
	}

	var raw struct {
		Login       *string `json:"login"`
		Blog        *string `json:"blog"`
		PublicRepos *uint32 `json:"public_repos"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, staged(StageDecodeJSON, err)
	}
	if raw.Login == nil || raw.Blog == nil || raw.PublicRepos == nil {
		return nil, staged(StageMissingField, errors.New("login, blog and public_repos are all required"))
	}

	return &GithubInfo{
		Login:       *raw.Login,
		Blog:        *raw.Blog,
		PublicRepos: *raw.PublicRepos,
	}, nil
}
