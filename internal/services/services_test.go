package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"esgishoma-backend-go/internal/blob"
	"esgishoma-backend-go/internal/store"

	"github.com/stretchr/testify/require"
)

// testClock lets tests move time forward without sleeping.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type sentMail struct {
	to, name, subject, text string
}

type stubMailer struct {
	fail bool
	sent []sentMail
}

func (m *stubMailer) SendReply(to, name, subject, text string) error {
	if m.fail {
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, sentMail{to, name, subject, text})
	return nil
}

type stubSuggester struct {
	reply string
	err   error
}

func (s *stubSuggester) Suggest(ctx context.Context, inquiry string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

type testEnv struct {
	clock  *testClock
	store  *store.Store
	blobs  *blob.Store
	auth   *AuthService
	reg    *Registry
	mailer *stubMailer
}

// newTestEnv wires the full registry against in-memory stores, with delays
// zeroed and the clock injected so nothing sleeps or drifts.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	blobs, err := blob.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = blobs.Close() })

	clk := newTestClock()
	tokens := TokenService{
		Secret: []byte("test-secret"),
		Issuer: "test",
		TTL:    time.Hour,
		Now:    clk.Now,
	}
	auth := &AuthService{
		Store:         st,
		Tokens:        tokens,
		Threshold:     5,
		LockoutWindow: 15 * time.Minute,
		Sleep:         func(time.Duration) {},
	}
	mailer := &stubMailer{}
	reg := NewRegistry(st, blobs, RegistryOptions{
		Tokens:    tokens,
		Auth:      auth,
		Mailer:    mailer,
		Suggester: &stubSuggester{reply: "Thank you for reaching out."},
		DiskPath:  "/",
	})
	return &testEnv{clock: clk, store: st, blobs: blobs, auth: auth, reg: reg, mailer: mailer}
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	result, err := e.auth.Login("admin", "school2026", "")
	require.NoError(t, err)
	return result.Token
}
