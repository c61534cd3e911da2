// Package client is a typed HTTP client for the anime API, used by the CLI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/deppfellow/anime-api/internal/errs"
	"github.com/deppfellow/anime-api/internal/model"
)

const (
	DefaultBaseURL = "http://localhost:8080"
	animesPath     = "/api/v1/animes"
)

// Client calls the API with HTTP Basic credentials. Failed calls return an
// *errs.HTTPError carrying the server's error body.
type Client struct {
	baseURL    string
	httpClient *http.Client
	username   string
	password   string
}

func New(baseURL string, httpClient *http.Client, username, password string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		username:   username,
		password:   password,
	}
}

// List fetches one page. Zero size and empty sort use the server defaults.
func (c *Client) List(ctx context.Context, page, size int, sort string) (*model.Page[model.Anime], error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	if size > 0 {
		query.Set("size", strconv.Itoa(size))
	}
	if sort != "" {
		query.Set("sort", sort)
	}

	var result model.Page[model.Anime]
	if err := c.do(ctx, http.MethodGet, animesPath+"?"+query.Encode(), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListAll(ctx context.Context) ([]model.Anime, error) {
	var animes []model.Anime
	if err := c.do(ctx, http.MethodGet, animesPath+"/all", nil, &animes); err != nil {
		return nil, err
	}
	return animes, nil
}

func (c *Client) Get(ctx context.Context, id int64) (*model.Anime, error) {
	var anime model.Anime
	if err := c.do(ctx, http.MethodGet, animesPath+"/"+strconv.FormatInt(id, 10), nil, &anime); err != nil {
		return nil, err
	}
	return &anime, nil
}

func (c *Client) FindByName(ctx context.Context, name string) ([]model.Anime, error) {
	var animes []model.Anime
	path := animesPath + "/find?" + url.Values{"name": {name}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &animes); err != nil {
		return nil, err
	}
	return animes, nil
}

func (c *Client) Create(ctx context.Context, name string) (*model.Anime, error) {
	var anime model.Anime
	body := model.CreateAnimeRequest{Name: name}
	if err := c.do(ctx, http.MethodPost, animesPath, body, &anime); err != nil {
		return nil, err
	}
	return &anime, nil
}

func (c *Client) Replace(ctx context.Context, id int64, name string) error {
	body := model.ReplaceAnimeRequest{ID: id, Name: name}
	return c.do(ctx, http.MethodPut, animesPath, body, nil)
}

// Delete needs admin credentials.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, animesPath+"/admin/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "failed to encode request")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response")
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp.StatusCode, raw)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrap(err, "failed to decode response")
	}
	return nil
}

func decodeError(status int, raw []byte) *errs.HTTPError {
	var httpErr errs.HTTPError
	if err := json.Unmarshal(raw, &httpErr); err == nil && httpErr.Code != "" {
		httpErr.Status = status
		return &httpErr
	}

	message := strings.TrimSpace(string(raw))
	if message == "" {
		message = http.StatusText(status)
	}

	return &errs.HTTPError{
		Code:    errs.MakeUpperCaseWithUnderscores(http.StatusText(status)),
		Message: message,
		Status:  status,
	}
}
