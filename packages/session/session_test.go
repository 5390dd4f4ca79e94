package session

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	smmhttp "github.com/canterburyairpatrol/smm-asset/packages/http"
)

func TestConnect_Success(t *testing.T) {
	fake := newFake(func(req *smmhttp.Request, n int) reply {
		return loginReply(req, "XYZ123", true)
	})

	sess := Connect("https://smm.test", "alice", "secret", WithTransport(fake.factory()))
	defer sess.Close()

	assert.Equal(t, StateConnected, sess.State())
	post := fake.last(smmhttp.MethodPost, LoginPath)
	require.NotNil(t, post)
	assert.Equal(t, "https://smm.test/accounts/login/", post.URL)
	assert.Equal(t, "csrfmiddlewaretoken=XYZ123&username=alice&password=secret", post.Body)
}

func TestConnect_TrailingSlashOnHost(t *testing.T) {
	fake := newFake(func(req *smmhttp.Request, n int) reply {
		return loginReply(req, "XYZ123", true)
	})

	sess := Connect("https://smm.test/", "alice", "secret", WithTransport(fake.factory()))
	defer sess.Close()

	assert.Equal(t, StateConnected, sess.State())
	assert.Equal(t, "https://smm.test", sess.Host())
	post := fake.last(smmhttp.MethodPost, LoginPath)
	require.NotNil(t, post)
	assert.Equal(t, "https://smm.test/accounts/login/", post.URL)
}

func TestConnect_CredentialsRejected(t *testing.T) {
	fake := newFake(func(req *smmhttp.Request, n int) reply {
		return loginReply(req, "XYZ123", false)
	})

	sess := Connect("https://smm.test", "alice", "wrong", WithTransport(fake.factory()))

	assert.Equal(t, StateAuthenticationFailure, sess.State())
	assert.False(t, sess.Login())
	assert.Equal(t, StateAuthenticationFailure, sess.State())
	assert.Equal(t, 2, fake.count(smmhttp.MethodPost, LoginPath))
}

func TestConnect_NoTokenLeavesStateUnchanged(t *testing.T) {
	fake := newFake(func(req *smmhttp.Request, n int) reply {
		return reply{status: 200, contentType: "text/html", body: "<html><body>maintenance</body></html>"}
	})

	sess := Connect("https://smm.test", "alice", "secret", WithTransport(fake.factory()))

	assert.Equal(t, StateUnknown, sess.State())
	assert.Equal(t, 0, fake.count(smmhttp.MethodPost, LoginPath))
}

func TestConnect_LoginPageErrorLeavesStateUnchanged(t *testing.T) {
	fake := newFake(func(req *smmhttp.Request, n int) reply {
		return reply{status: 500}
	})

	sess := Connect("https://smm.test", "alice", "secret", WithTransport(fake.factory()))

	assert.Equal(t, StateUnknown, sess.State())
	assert.Equal(t, 1, fake.count(smmhttp.MethodGet, LoginPath))
}

func TestConnect_Unreachable(t *testing.T) {
	fake := newFake(func(req *smmhttp.Request, n int) reply {
		return reply{err: errRefused}
	})

	sess := Connect("https://smm.test", "alice", "secret", WithTransport(fake.factory()))

	assert.Equal(t, StateNoHostConnection, sess.State())
}

func TestConnect_HostValidation(t *testing.T) {
	fake := newFake(func(req *smmhttp.Request, n int) reply {
		t.Fatalf("unexpected request to %s", req.URL)
		return reply{}
	})

	sess := Connect("smm.test", "alice", "secret", WithTransport(fake.factory()), WithHostValidation())

	assert.Equal(t, StateHostInvalid, sess.State())
	assert.Empty(t, fake.requests)
}

func TestConnect_UpgradesDuringLogin(t *testing.T) {
	fake := newFake(func(req *smmhttp.Request, n int) reply {
		if hostOf(req.URL) == "http://smm.test" {
			return reply{status: 301, redirect: "https://smm.test" + pathOf(req.URL)}
		}
		return loginReply(req, "tok", true)
	})

	sess := Connect("http://smm.test", "alice", "secret", WithTransport(fake.factory()))

	assert.Equal(t, StateConnected, sess.State())
	assert.Equal(t, "https://smm.test", sess.Host())
}

func TestLogin_FormEncoding(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want string
	}{
		{
			name: "verbatim",
			want: "csrfmiddlewaretoken=a+b&username=bob&password=p&ss=1",
		},
		{
			name: "encoded",
			opts: []Option{WithFormEncoding()},
			want: "csrfmiddlewaretoken=a%2Bb&password=p%26ss%3D1&username=bob",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFake(func(req *smmhttp.Request, n int) reply {
				return loginReply(req, "a+b", true)
			})
			opts := append([]Option{WithTransport(fake.factory())}, tt.opts...)

			Connect("https://smm.test", "bob", "p&ss=1", opts...)

			post := fake.last(smmhttp.MethodPost, LoginPath)
			require.NotNil(t, post)
			assert.Equal(t, tt.want, post.Body)
		})
	}
}

func TestSession_StateIsIdempotent(t *testing.T) {
	fake := newFake(func(req *smmhttp.Request, n int) reply {
		return loginReply(req, "tok", true)
	})
	sess := Connect("https://smm.test", "alice", "secret", WithTransport(fake.factory()))

	first := sess.State()
	second := sess.State()
	assert.Equal(t, first, second)
	assert.Len(t, fake.requests, 2)
}

func TestSession_TransportIsLazy(t *testing.T) {
	created := 0
	fake := newFake(func(req *smmhttp.Request, n int) reply {
		return reply{status: 200}
	})
	sess := New("https://smm.test", "alice", "secret", WithTransport(func() Transport {
		created++
		return fake
	}))

	assert.Equal(t, 0, created)
	assert.Equal(t, StateUnknown, sess.State())

	_, err := sess.Get("/a/", nil)
	require.NoError(t, err)
	_, err = sess.Get("/b/", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, created)
}

func TestSession_Close(t *testing.T) {
	fake := newFake(func(req *smmhttp.Request, n int) reply {
		return loginReply(req, "tok", true)
	})
	sess := Connect("https://smm.test", "alice", "secret", WithTransport(fake.factory()))
	require.Equal(t, StateConnected, sess.State())

	require.NoError(t, sess.Close())
	assert.Equal(t, 1, fake.closed)
	assert.Nil(t, sess.token)

	res, err := sess.Get("/assets/mine/json/", nil)
	assert.ErrorIs(t, err, ErrClosed)
	require.NotNil(t, res)
	assert.False(t, res.Succeeded)
	assert.False(t, sess.Login())

	require.NoError(t, sess.Close())
	assert.Equal(t, 1, fake.closed)
}

func TestSession_SerializesConcurrentFetches(t *testing.T) {
	fake := newFake(func(req *smmhttp.Request, n int) reply {
		time.Sleep(time.Millisecond)
		if pathOf(req.URL) == LoginPath {
			return loginReply(req, "tok", true)
		}
		// every other request finds the session expired
		if n%2 == 1 {
			return reply{status: 302, redirect: "https://smm.test/accounts/login/?next=/x/"}
		}
		return reply{status: 200, body: "ok"}
	})
	sess := New("https://smm.test", "alice", "secret", WithTransport(fake.factory()))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var buf bytes.Buffer
			_, err := sess.Get("/x/", &buf)
			assert.NoError(t, err)
			_ = sess.State()
		}()
	}
	wg.Wait()

	assert.False(t, fake.overlap.Load(), "transport was entered concurrently")
	assert.Equal(t, StateConnected, sess.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "connected", StateConnected.String())
	assert.Equal(t, "authentication failure", StateAuthenticationFailure.String())
	assert.Equal(t, "no host connection", StateNoHostConnection.String())
	assert.Equal(t, "invalid", State(42).String())
}
