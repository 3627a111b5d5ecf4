package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	gorillawebsocket "github.com/gorilla/websocket"
)

// URL turns an http(s) base URL into the ws(s) URL of the /ws endpoint
// mounted under path.
func URL(baseURL, path string, topics ...string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + path + "/ws")
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if len(topics) > 0 {
		q := u.Query()
		q.Set("topics", strings.Join(topics, ","))
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Watch connects to wsURL and calls fn for every event until ctx is done or
// the connection fails. ready, when non-nil, is closed once the connection
// is established.
func Watch(ctx context.Context, wsURL string, header http.Header, ready chan<- struct{}, fn func(Event)) error {
	ws, _, err := gorillawebsocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer ws.Close()
	if ready != nil {
		close(ready)
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			ws.Close()
		case <-stop:
		}
	}()

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || gorillawebsocket.IsCloseError(err, gorillawebsocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("read event: %w", err)
		}
		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			continue
		}
		fn(ev)
	}
}
