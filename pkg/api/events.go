package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/getmockd/regdesk/pkg/apperr"
	"github.com/getmockd/regdesk/pkg/domain"
	"github.com/getmockd/regdesk/pkg/session"
)

// Events subscribes to the backend change stream.
type Events struct {
	c *Client
}

// URL returns the WebSocket URL of the change stream.
func (e *Events) URL() string {
	u := e.c.baseURL + PathEvents
	switch {
	case strings.HasPrefix(u, "https://"):
		return "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		return "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u
}

// Watch calls fn for every notification until ctx is done or the backend
// closes the stream. A normal close and a cancelled ctx return nil.
func (e *Events) Watch(ctx context.Context, fn func(domain.Notification)) error {
	headers := http.Header{}
	if token := session.Token(e.c.session); token != "" {
		headers.Set("Authorization", "Bearer "+token)
	}

	conn, resp, err := websocket.Dial(ctx, e.URL(), &websocket.DialOptions{
		HTTPHeader: headers,
	})
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	if err != nil {
		if resp != nil && resp.StatusCode >= 400 {
			return e.c.handleError(http.MethodGet, PathEvents, resp.StatusCode, nil)
		}
		return &apperr.NetworkError{Op: "watch events", Err: err}
	}
	defer func() { _ = conn.CloseNow() }()

	for {
		var n domain.Notification
		if err := wsjson.Read(ctx, conn, &n); err != nil {
			if ctx.Err() != nil || websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil
			}
			return fmt.Errorf("event stream: %w", err)
		}
		fn(n)
	}
}
