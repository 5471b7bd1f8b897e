package rest_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/inbucket/mimetpl/pkg/config"
	"github.com/inbucket/mimetpl/pkg/interpreter"
	"github.com/inbucket/mimetpl/pkg/rest"
	"github.com/inbucket/mimetpl/pkg/server/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const alternative = `From: from@localhost
Subject: Hi
Content-Type: multipart/alternative; boundary="alt"

--alt
Content-Type: text/plain; charset=utf-8

Hello
--alt
Content-Type: text/html; charset=utf-8

<p>Hello</p>
--alt--
`

const mixed = `Content-Type: multipart/mixed; boundary="m"

--m
Content-Type: text/plain; charset=utf-8

body
--m--
`

const attached = `Content-Type: application/octet-stream
Content-Disposition: attachment; filename="attachment.txt"
Content-Transfer-Encoding: base64

SGVsbG8sIHdvcmxkIQ==
`

const encrypted = `From: alice@localhost
To: bob@localhost
Content-Type: multipart/encrypted; protocol="application/pgp-encrypted"; boundary="enc"

--enc
Content-Type: application/pgp-encrypted

Version: 1
--enc
Content-Type: application/octet-stream

ciphertext
--enc--
`

type failingDelegate struct{}

func (failingDelegate) Decrypt(context.Context, []byte) ([]byte, error) {
	return nil, errors.New("no secret key")
}

func (failingDelegate) Verify(context.Context, []byte) error {
	return errors.New("bad signature")
}

func setupServer(maxBytes int64, opts ...interpreter.Option) http.Handler {
	env := &web.Env{Interpreter: interpreter.New(opts...), MaxBytes: maxBytes}
	s := web.NewServer(config.Web{}, make(chan bool), env)
	rest.SetupRoutes(s.Router.PathPrefix("/api/").Subrouter())
	return s.Handler()
}

func post(h http.Handler, query, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/v1/interpret"+query, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestInterpretV1(t *testing.T) {
	testCases := []struct {
		name, query, body, want string
	}{
		{"server defaults", "", alternative,
			"From: from@localhost\nSubject: Hi\nContent-Type: multipart/alternative; boundary=\"alt\"\n\nHello\n"},
		{"headers", "?headers=Subject", alternative, "Subject: Hi\n\nHello\n"},
		{"no headers", "?headers=none", alternative, "Hello\n"},
		{"filter", "?headers=none&filter=only:text/html", alternative, "<p>Hello</p>\n"},
		{"multiparts", "?headers=none&multiparts=true", mixed,
			"<#multipart type=mixed>\n\nbody\n\n<#/multipart>\n"},
		{"bare multiparts", "?headers=none&multiparts", mixed,
			"<#multipart type=mixed>\n\nbody\n\n<#/multipart>\n"},
		{"multiparts off", "?headers=none&multiparts=false", mixed, "body\n"},
		{"strip signature", "?headers=none&stripsignature=1",
			"Content-Type: text/plain\n\nHi\n-- \nsig\n", "Hi\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := post(setupServer(0), tc.query, tc.body)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
			assert.Equal(t, tc.want, w.Body.String())
		})
	}
}

func TestInterpretV1BadRequest(t *testing.T) {
	testCases := []struct {
		name, query, body string
	}{
		{"unknown filter", "?filter=some:text/plain", alternative},
		{"only needs one type", "?filter=only:", alternative},
		{"multiparts", "?multiparts=maybe", alternative},
		{"stripsignature", "?stripsignature=perhaps", alternative},
		{"unparsable message", "", " leading space\n\nbody"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := post(setupServer(0), tc.query, tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestInterpretV1TooLarge(t *testing.T) {
	w := post(setupServer(16), "", alternative)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestInterpretV1MethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/interpret", nil)
	w := httptest.NewRecorder()
	setupServer(0).ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestInterpretV1NeverSavesAttachments(t *testing.T) {
	dir := t.TempDir()
	h := setupServer(0,
		interpreter.WithAttachmentDir(dir),
		interpreter.WithSaveAttachments(true))

	w := post(h, "?headers=none", attached)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	path := filepath.Join(dir, "attachment.txt")
	assert.Equal(t, "<#part type=application/octet-stream filename=\""+path+"\">\n", w.Body.String())
	assert.NoFileExists(t, path)
}

func TestInterpretV1DelegateFailure(t *testing.T) {
	h := setupServer(0, interpreter.WithDelegate(failingDelegate{}))
	w := post(h, "", encrypted)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "cannot decrypt email part")
}

func TestInterpretV1Metrics(t *testing.T) {
	h := setupServer(0)
	post(h, "?headers=none", alternative)
	post(h, "?filter=bogus", alternative)

	req := httptest.NewRequest("GET", "/debug/vars", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"interpret": {`)
	assert.Contains(t, w.Body.String(), `"RequestsHist"`)
}
