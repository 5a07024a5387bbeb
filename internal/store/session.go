package store

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/watchroom/client-go/internal/credentials"
	"github.com/watchroom/client-go/internal/gateway"
	"github.com/watchroom/client-go/internal/types"
)

// Route is a navigation signal returned to the presentation layer after a
// successful auth operation. The store never navigates itself.
type Route string

const (
	RouteRooms Route = "/rooms"
	RouteLogin Route = "/login"
)

// SessionState is a snapshot of the auth slice.
type SessionState struct {
	User            *types.Identity
	Token           string
	IsAuthenticated bool
	Loading         bool
	Error           string
}

// RegisterParams covers both registration variants. The minimal variant
// fills Username; the extended one FirstName and LastName. Presence of
// either name field selects the extended variant.
type RegisterParams struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
	Password  string
}

func (p RegisterParams) extended() bool {
	return p.FirstName != "" || p.LastName != ""
}

// requiredFields returns the validation order for the variant. The first
// empty field blocks submission; later fields are not reported.
func (p RegisterParams) requiredFields() []struct{ name, value string } {
	if p.extended() {
		return []struct{ name, value string }{
			{"firstName", p.FirstName},
			{"lastName", p.LastName},
			{"email", p.Email},
			{"password", p.Password},
		}
	}
	return []struct{ name, value string }{
		{"username", p.Username},
		{"email", p.Email},
		{"password", p.Password},
	}
}

// SessionManager owns the authentication identity and its lifecycle. It is
// the only writer of the persisted token.
type SessionManager struct {
	mu    sync.Mutex
	state SessionState

	gw       gateway.API
	creds    credentials.Store
	tokenTTL time.Duration
	log      *log.Logger
	now      func() time.Time
}

func newSessionManager(logger *log.Logger, gw gateway.API, creds credentials.Store, tokenTTL time.Duration) *SessionManager {
	return &SessionManager{
		gw:       gw,
		creds:    creds,
		tokenTTL: tokenTTL,
		log:      logger,
		now:      time.Now,
	}
}

// State returns a snapshot of the session slice.
func (m *SessionManager) State() SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

// Identity returns the signed-in principal, if any.
func (m *SessionManager) Identity() (types.Identity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.IsAuthenticated || m.state.User == nil {
		return types.Identity{}, false
	}
	return *m.state.User, true
}

// begin moves the session into the authenticating phase: the in-flight
// guard is taken and any prior error is cleared.
func (m *SessionManager) begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Loading {
		return ErrOperationInFlight
	}
	m.state.Loading = true
	m.state.Error = ""
	return nil
}

func (m *SessionManager) fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.Loading = false
	m.state.Error = err.Error()
}

// Login authenticates with the server. Empty fields short-circuit with a
// field-level validation error before any network call. On success the
// token is persisted and the caller is told to navigate to the rooms route.
func (m *SessionManager) Login(ctx context.Context, email, password string) (Route, error) {
	if email == "" {
		return "", &ValidationError{Field: "email"}
	}
	if password == "" {
		return "", &ValidationError{Field: "password"}
	}

	if err := m.begin(); err != nil {
		return "", err
	}

	resp, err := m.gw.Login(ctx, email, password)
	if err != nil {
		m.fail(err)
		return "", err
	}

	expiry := m.tokenExpiry(resp.Token)
	if err := m.creds.Write(credentials.Record{
		Token:     resp.Token,
		Identity:  &resp.User,
		ExpiresAt: expiry,
	}); err != nil {
		// State still authenticates in memory; only durability is lost.
		m.log.Printf("persist token: %v", err)
	}

	m.mu.Lock()
	user := resp.User
	m.state = SessionState{
		User:            &user,
		Token:           resp.Token,
		IsAuthenticated: true,
	}
	m.mu.Unlock()

	return RouteRooms, nil
}

// Register creates an account. Registration does not authenticate; on
// success the caller is told to navigate to the login route.
func (m *SessionManager) Register(ctx context.Context, params RegisterParams) (Route, error) {
	for _, f := range params.requiredFields() {
		if f.value == "" {
			return "", &ValidationError{Field: f.name}
		}
	}

	if err := m.begin(); err != nil {
		return "", err
	}

	_, err := m.gw.Register(ctx, gateway.RegisterRequest{
		Username:  params.Username,
		FirstName: params.FirstName,
		LastName:  params.LastName,
		Email:     params.Email,
		Password:  params.Password,
	})
	if err != nil {
		m.fail(err)
		return "", err
	}

	m.mu.Lock()
	m.state.Loading = false
	m.state.Error = ""
	m.mu.Unlock()

	return RouteLogin, nil
}

// Logout clears the session and removes the persisted token. Idempotent.
func (m *SessionManager) Logout() error {
	m.mu.Lock()
	m.state = SessionState{}
	m.mu.Unlock()

	if err := m.creds.Clear(); err != nil {
		m.log.Printf("clear credentials: %v", err)
		return err
	}
	return nil
}

// Restore re-reads the persisted token at process start. It never calls
// the network: identity comes from the stored record, or from the token's
// own claims when the record predates identity storage. Without a usable
// token the session stays anonymous.
func (m *SessionManager) Restore() error {
	rec, ok, err := m.creds.Read()
	if err != nil {
		m.log.Printf("restore session: %v", err)
		return err
	}
	if !ok {
		return nil
	}

	ident := rec.Identity
	if ident == nil {
		ident, _ = identityFromToken(rec.Token)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.Token = rec.Token
	if ident != nil {
		m.state.User = ident
		m.state.IsAuthenticated = true
	}
	return nil
}

// tokenExpiry picks the persisted expiry: the configured TTL, capped at
// the token's own exp claim when it is a JWT that expires sooner.
func (m *SessionManager) tokenExpiry(token string) time.Time {
	expiry := m.now().Add(m.tokenTTL)
	if _, claimExp := identityFromToken(token); !claimExp.IsZero() && claimExp.Before(expiry) {
		expiry = claimExp
	}
	return expiry
}

// identityFromToken inspects a JWT bearer token without verifying it; the
// client has no signing key and only wants the public claims. Opaque
// tokens yield (nil, zero).
func identityFromToken(token string) (*types.Identity, time.Time) {
	claims := jwt.MapClaims{}
	parser := &jwt.Parser{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, time.Time{}
	}

	var expiry time.Time
	if exp, ok := claims["exp"].(float64); ok {
		expiry = time.Unix(int64(exp), 0)
	}

	userID, _ := claims["userId"].(string)
	if userID == "" {
		userID, _ = claims["sub"].(string)
	}
	email, _ := claims["email"].(string)

	if userID == "" {
		return nil, expiry
	}
	return &types.Identity{Email: email, UserID: userID}, expiry
}
