package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/harrylevesque/stillwater/internal/models"
)

// sessionMessage mirrors the server's breathing session payload.
type sessionMessage struct {
	ID    string                `json:"id"`
	State models.BreathingState `json:"state"`
	View  models.BreathingView  `json:"view"`
}

// apiClient talks to a stillwater server with a bearer token.
type apiClient struct {
	Base  string
	Token string
	HTTP  *http.Client
}

func (c *apiClient) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.Base+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)

	// A redirect to the login page means the token was rejected.
	httpc := *c.HTTP
	httpc.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	resp, err := httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusFound:
		return fmt.Errorf("%s %s: not authenticated (redirected to %s)", method, path, resp.Header.Get("Location"))
	case resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, strings.TrimSpace(string(body)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *apiClient) Mount(ctx context.Context) (sessionMessage, error) {
	var s sessionMessage
	err := c.do(ctx, http.MethodPost, "/breathing/sessions", &s)
	return s, err
}

func (c *apiClient) Start(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/breathing/sessions/"+id+"/start", nil)
}

func (c *apiClient) Stop(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/breathing/sessions/"+id+"/stop", nil)
}

func (c *apiClient) Unmount(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/breathing/sessions/"+id, nil)
}

// Stream dials the session websocket.
func (c *apiClient) Stream(ctx context.Context, id string) (*websocket.Conn, error) {
	u, err := url.Parse(c.Base)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/breathing/sessions/" + id + "/ws"

	header := http.Header{"Authorization": []string{"Bearer " + c.Token}}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u.Redacted(), err)
	}
	return conn, nil
}
