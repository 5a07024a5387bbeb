// Package gateway is the HTTP boundary to the watchroom API. It owns the
// cross-cutting request concerns (bearer attachment, request ids, pacing)
// so the state layer never touches a raw http.Request.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/watchroom/client-go/internal/credentials"
	"github.com/watchroom/client-go/internal/types"
	"golang.org/x/time/rate"
)

const (
	loginPath    = "/auth/login"
	registerPath = "/auth/register"
	roomsPath    = "/rooms"
	usersPath    = "/User/Users"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest covers both observed registration shapes: the minimal
// variant sends username, the extended one first and last name. Empty
// fields are omitted so either payload stays wire-compatible.
type RegisterRequest struct {
	Username  string `json:"username,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type LoginResponse struct {
	User  types.Identity `json:"user"`
	Token string         `json:"token"`
}

// API is the surface the state layer depends on. Kept as an interface so
// tests can substitute a mock.
type API interface {
	Login(ctx context.Context, email, password string) (LoginResponse, error)
	Register(ctx context.Context, req RegisterRequest) (types.User, error)
	CreateRoom(ctx context.Context, draft types.RoomDraft) (types.Room, error)
	ListRooms(ctx context.Context) ([]types.Room, error)
	ListUsers(ctx context.Context) ([]types.User, error)
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
	limiter *rate.Limiter
}

type Options struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

func NewClient(baseURL string, creds credentials.Store, logger *log.Logger, opts Options) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 5
	}
	if opts.Burst < 1 {
		opts.Burst = 5
	}

	return &Client{
		baseURL: u,
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: newBearerTransport(creds, logger, nil),
		},
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
	}, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	var resp LoginResponse
	err := c.do(ctx, http.MethodPost, loginPath, LoginRequest{Email: email, Password: password}, &resp)
	return resp, err
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (types.User, error) {
	var user types.User
	err := c.do(ctx, http.MethodPost, registerPath, req, &user)
	return user, err
}

func (c *Client) CreateRoom(ctx context.Context, draft types.RoomDraft) (types.Room, error) {
	var room types.Room
	err := c.do(ctx, http.MethodPost, roomsPath, draft, &room)
	return room, err
}

func (c *Client) ListRooms(ctx context.Context) ([]types.Room, error) {
	var rooms []types.Room
	err := c.do(ctx, http.MethodGet, roomsPath, nil, &rooms)
	return rooms, err
}

func (c *Client) ListUsers(ctx context.Context) ([]types.User, error) {
	var users []types.User
	err := c.do(ctx, http.MethodGet, usersPath, nil, &users)
	return users, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	u := c.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, u.String(), payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
