package gateway

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/watchroom/client-go/internal/credentials"
)

const headerRequestID = "X-Request-ID"

// bearerTransport decorates every outgoing request: JSON content type, a
// request id for server-side correlation, and the bearer token when one is
// present in durable storage. A missing or unreadable credential is never
// fatal here; the request simply goes out unauthenticated.
type bearerTransport struct {
	creds credentials.Store
	log   *log.Logger
	base  http.RoundTripper
}

func newBearerTransport(creds credentials.Store, logger *log.Logger, base http.RoundTripper) *bearerTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &bearerTransport{creds: creds, log: logger, base: base}
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())

	r.Header.Set("Content-Type", "application/json")
	if r.Header.Get(headerRequestID) == "" {
		r.Header.Set(headerRequestID, uuid.NewString())
	}

	if t.creds != nil {
		rec, ok, err := t.creds.Read()
		if err != nil {
			t.log.Printf("read credentials: %v", err)
		} else if ok {
			r.Header.Set("Authorization", "Bearer "+rec.Token)
		}
	}

	return t.base.RoundTrip(r)
}
