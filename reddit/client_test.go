package reddit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorded struct {
	Method string
	Path   string
	Query  string
	Form   map[string]string
	Auth   string
}

func testServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *[]recorded) {
	var mu sync.Mutex
	reqs := []recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Error(err)
		}
		form := map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		mu.Lock()
		reqs = append(reqs, recorded{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Form: form, Auth: r.Header.Get("Authorization")})
		mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Credentials{ClientID: "cid", ClientSecret: "secret", Username: "roohelper", Password: "hunter2"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.Host = srv.URL
	c.AuthHost = srv.URL
	c.ReadClient = srv.Client()
	c.ActionClient = srv.Client()
	c.Limiter = nil
	return c, &reqs
}

func TestLogin(t *testing.T) {
	assert := assert.New(t)

	c, reqs := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(ok)
		assert.Equal("cid", user)
		assert.Equal("secret", pass)
		w.Write([]byte(`{"access_token":"tok123","token_type":"bearer","expires_in":3600}`))
	})
	assert.NoError(c.Login(context.Background()))
	assert.Equal("/api/v1/access_token", (*reqs)[0].Path)
	assert.Equal("password", (*reqs)[0].Form["grant_type"])
	assert.Equal("hunter2", (*reqs)[0].Form["password"])

	// token is used on subsequent requests
	_ = c.Remove(context.Background(), "abc")
	assert.Equal("bearer tok123", (*reqs)[1].Auth)
}

func TestLoginBadCredentials(t *testing.T) {
	assert := assert.New(t)

	c, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"invalid_grant"}`))
	})
	err := c.Login(context.Background())
	var ae *APIError
	assert.True(errors.As(err, &ae))
	assert.Equal("invalid_grant", ae.Body)
}

func TestSubmission(t *testing.T) {
	assert := assert.New(t)

	c, reqs := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"kind":"Listing","data":{"children":[{"kind":"t3","data":{"id":"abc","name":"t3_abc","permalink":"/r/switcharoo/comments/abc/ahh/","url":"https://www.reddit.com/r/x/comments/y/_/z/?context=3","over_18":true}}]}}`))
	})
	sub, err := c.Submission(context.Background(), "abc")
	assert.NoError(err)
	assert.Equal("/by_id/t3_abc", (*reqs)[0].Path)
	assert.Equal("GET", (*reqs)[0].Method)
	assert.Equal("/r/switcharoo/comments/abc/ahh/", sub.Permalink)
	assert.True(sub.Over18)
	assert.Nil(sub.RemovedByCategory)
}

func TestSubmissionNotFound(t *testing.T) {
	assert := assert.New(t)

	c, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"kind":"Listing","data":{"children":[]}}`))
	})
	_, err := c.Submission(context.Background(), "t3_gone")
	assert.True(errors.Is(err, ErrNotFound))
}

func TestComment(t *testing.T) {
	assert := assert.New(t)

	c, reqs := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"kind":"Listing","data":{"children":[{"kind":"t1","data":{"id":"z","author":"[deleted]","body":"[deleted]","link_id":"t3_y"}}]}}`))
	})
	cmt, err := c.Comment(context.Background(), "z")
	assert.NoError(err)
	assert.Equal("/api/info", (*reqs)[0].Path)
	assert.Equal("id=t1_z", (*reqs)[0].Query)
	assert.True(cmt.Deleted())
}

func TestModerationActions(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	c, reqs := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/comment":
			w.Write([]byte(`{"json":{"errors":[],"data":{"things":[{"kind":"t1","data":{"id":"new1","name":"t1_new1"}}]}}}`))
		default:
			w.Write([]byte(`{"json":{"errors":[]}}`))
		}
	})

	cmt, err := c.Reply(ctx, "t3_abc", "Hi!\n\nmessage")
	assert.NoError(err)
	assert.Equal("new1", cmt.ID)
	assert.NoError(c.Distinguish(ctx, cmt.ID))
	assert.NoError(c.Remove(ctx, "abc"))
	mm := Modmail{Client: c, Subreddit: "switcharoo"}
	assert.NoError(mm.Notify(ctx, "subject", "https://example.com"))

	r := *reqs
	assert.Equal(4, len(r))
	assert.Equal("/api/comment", r[0].Path)
	assert.Equal("t3_abc", r[0].Form["thing_id"])
	assert.Equal("Hi!\n\nmessage", r[0].Form["text"])
	assert.Equal("/api/distinguish", r[1].Path)
	assert.Equal("t1_new1", r[1].Form["id"])
	assert.Equal("yes", r[1].Form["how"])
	_, sticky := r[1].Form["sticky"]
	assert.False(sticky)
	assert.Equal("/api/remove", r[2].Path)
	assert.Equal("t3_abc", r[2].Form["id"])
	assert.Equal("false", r[2].Form["spam"])
	assert.Equal("/api/compose", r[3].Path)
	assert.Equal("/r/switcharoo", r[3].Form["to"])
}

func TestActionErrors(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	calls := 0
	c, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		switch r.URL.Path {
		case "/api/comment":
			w.Write([]byte(`{"json":{"errors":[["RATELIMIT","you are doing that too much","ratelimit"]]}}`))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("try again later"))
		}
	})

	_, err := c.Reply(ctx, "t3_abc", "text")
	var ae *APIError
	assert.True(errors.As(err, &ae))
	assert.Contains(ae.Body, "RATELIMIT")

	err = c.Remove(ctx, "abc")
	assert.True(errors.As(err, &ae))
	assert.Equal(http.StatusServiceUnavailable, ae.StatusCode)
	// actions are not retried
	assert.Equal(2, calls)
}
