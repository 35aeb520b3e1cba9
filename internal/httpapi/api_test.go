package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"iamgate.org/internal/iam"
	"iamgate.org/internal/token"
)

type apiClient struct {
	baseURL string
	client  *http.Client
	codec   *token.Codec
	t       *testing.T
}

func newTestAPI(t *testing.T, store iam.Store) *apiClient {
	t.Helper()

	codec, err := token.NewCodec("test-secret", "iamgate-test")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	api := New(store, codec, ReadyProbe{}, "test")

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &apiClient{
		baseURL: srv.URL,
		client:  srv.Client(),
		codec:   codec,
		t:       t,
	}
}

// accessTokenFor mints an access token the way a real login would, without
// going through the credential flow.
func (c *apiClient) accessTokenFor(u *iam.User) string {
	c.t.Helper()
	raw, _, err := c.codec.IssueAccess(u.Identity())
	if err != nil {
		c.t.Fatalf("issue access token: %v", err)
	}
	return raw
}

func (c *apiClient) do(method, path string, body any, headers map[string]string) *http.Response {
	c.t.Helper()
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
		payload = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.baseURL+path, payload)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("do request: %v", err)
	}
	return resp
}

func (c *apiClient) post(path string, body any, headers map[string]string) *http.Response {
	return c.do(http.MethodPost, path, body, headers)
}

func (c *apiClient) put(path string, body any, headers map[string]string) *http.Response {
	return c.do(http.MethodPut, path, body, headers)
}

func (c *apiClient) del(path string, headers map[string]string) *http.Response {
	return c.do(http.MethodDelete, path, nil, headers)
}

func (c *apiClient) get(path string, params url.Values, headers map[string]string) *http.Response {
	c.t.Helper()
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		c.t.Fatalf("parse url: %v", err)
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}
	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("get request: %v", err)
	}
	return resp
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func decode[T any](t *testing.T, r *http.Response) T {
	t.Helper()
	defer r.Body.Close()
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func readBody(t *testing.T, r *http.Response) string {
	t.Helper()
	defer r.Body.Close()
	data, err := io.ReadAll(r.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(data)
}

// userWith builds a user whose single group carries the given permissions.
func userWith(id, username string, perms ...string) *iam.User {
	resolved := make([]iam.Permission, 0, len(perms))
	for i, name := range perms {
		resolved = append(resolved, iam.Permission{ID: string(rune('a' + i)), Name: name})
	}
	return &iam.User{
		ID:       id,
		Active:   true,
		Username: username,
		Name:     username,
		Groups:   []iam.Group{{ID: "g-" + id, Name: "staff", Permissions: resolved}},
	}
}

func TestHealthzIsPublic(t *testing.T) {
	api := newTestAPI(t, &stubStore{})
	resp := api.get("/healthz", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	payload := decode[map[string]any](t, resp)
	if payload["status"] != "ok" {
		t.Fatalf("unexpected healthz payload: %v", payload)
	}
}
