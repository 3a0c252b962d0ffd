package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session events delivered to subscribers.
const (
	EventSignedIn       = "signed_in"
	EventSignedOut      = "signed_out"
	EventTokenRefreshed = "token_refreshed"
)

// Session is an authenticated session with the remote store.
type Session struct {
	AccessToken  string
	RefreshToken string
	UserID       string
	Email        string
	ExpiresAt    time.Time
}

// SessionFunc receives session-change events. The session is nil on
// sign-out.
type SessionFunc func(event string, session *Session)

// Subscription is a handle to a session-change subscription.
// Unsubscribe is idempotent and must be called on shutdown.
type Subscription struct {
	once   sync.Once
	cancel func()
}

func (s *Subscription) Unsubscribe() {
	s.once.Do(s.cancel)
}

type sessionState struct {
	mu      sync.RWMutex
	current *Session
	subs    map[int64]SessionFunc
	nextID  int64
}

// Session returns the current session, or nil if signed out.
func (c *Client) Session() *Session {
	c.sessions.mu.RLock()
	defer c.sessions.mu.RUnlock()
	if c.sessions.current == nil {
		return nil
	}
	s := *c.sessions.current
	return &s
}

// Subscribe registers fn for session-change events.
func (c *Client) Subscribe(fn SessionFunc) *Subscription {
	c.sessions.mu.Lock()
	if c.sessions.subs == nil {
		c.sessions.subs = make(map[int64]SessionFunc)
	}
	id := c.sessions.nextID
	c.sessions.nextID++
	c.sessions.subs[id] = fn
	c.sessions.mu.Unlock()

	return &Subscription{cancel: func() {
		c.sessions.mu.Lock()
		delete(c.sessions.subs, id)
		c.sessions.mu.Unlock()
	}}
}

func (c *Client) setSession(event string, s *Session) {
	c.sessions.mu.Lock()
	c.sessions.current = s
	subs := make([]SessionFunc, 0, len(c.sessions.subs))
	for _, fn := range c.sessions.subs {
		subs = append(subs, fn)
	}
	c.sessions.mu.Unlock()

	for _, fn := range subs {
		fn(event, s)
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// SignUp registers a new user. A session is established when the store
// confirms the account immediately.
func (c *Client) SignUp(ctx context.Context, email, password string) error {
	tok, err := c.authRequest(ctx, "/auth/v1/signup", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return fmt.Errorf("sign up: %w", err)
	}
	if tok.AccessToken != "" {
		c.setSession(EventSignedIn, sessionFromToken(tok))
	}
	return nil
}

// SignIn authenticates with email and password.
func (c *Client) SignIn(ctx context.Context, email, password string) error {
	tok, err := c.authRequest(ctx, "/auth/v1/token?grant_type=password", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return fmt.Errorf("sign in: %w", err)
	}
	c.setSession(EventSignedIn, sessionFromToken(tok))
	return nil
}

// RefreshSession exchanges the refresh token for a new access token.
func (c *Client) RefreshSession(ctx context.Context) error {
	sess := c.Session()
	if sess == nil {
		return ErrNoSession
	}
	tok, err := c.authRequest(ctx, "/auth/v1/token?grant_type=refresh_token", map[string]string{
		"refresh_token": sess.RefreshToken,
	})
	if err != nil {
		return fmt.Errorf("refresh session: %w", err)
	}
	c.setSession(EventTokenRefreshed, sessionFromToken(tok))
	return nil
}

// SignOut revokes the session remotely and clears it locally. The local
// session is cleared even when the remote revocation fails.
func (c *Client) SignOut(ctx context.Context) error {
	sess := c.Session()
	if sess == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/v1/logout", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+sess.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err == nil {
		resp.Body.Close()
	}

	c.setSession(EventSignedOut, nil)

	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

func (c *Client) authRequest(ctx context.Context, path string, payload map[string]string) (*tokenResponse, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("auth endpoint returned %d", resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	return &tok, nil
}

// sessionFromToken builds a Session, preferring the access token's own
// claims for the user id and expiry over the response envelope.
func sessionFromToken(tok *tokenResponse) *Session {
	s := &Session{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		UserID:       tok.User.ID,
		Email:        tok.User.Email,
		ExpiresAt:    time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second),
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tok.AccessToken, claims); err == nil {
		if sub, err := claims.GetSubject(); err == nil && sub != "" {
			s.UserID = sub
		}
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			s.ExpiresAt = exp.Time
		}
	}

	return s
}
