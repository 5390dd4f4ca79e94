package csrf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func parse(t *testing.T, doc string) *html.Node {
	t.Helper()
	root, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	return root
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		want    string
		wantHit bool
	}{
		{
			name: "second input carries token",
			doc: `<html><body><form method="post">
				<input name="foo" value="bar">
				<input type="hidden" name="csrfmiddlewaretoken" value="XYZ123">
			</form></body></html>`,
			want:    "XYZ123",
			wantHit: true,
		},
		{
			name:    "no matching input",
			doc:     `<html><body><form><input name="username" value="alice"></form></body></html>`,
			wantHit: false,
		},
		{
			name: "first of two tokens wins",
			doc: `<form><input name="csrfmiddlewaretoken" value="first"></form>
				<form><input name="csrfmiddlewaretoken" value="second"></form>`,
			want:    "first",
			wantHit: true,
		},
		{
			name: "nested deep in the tree",
			doc: `<html><body><div><div><table><tr><td><form>
				<input type="hidden" name="csrfmiddlewaretoken" value="deep">
			</form></td></tr></table></div></div></body></html>`,
			want:    "deep",
			wantHit: true,
		},
		{
			name:    "value before name is not matched",
			doc:     `<input value="early" name="csrfmiddlewaretoken">`,
			wantHit: false,
		},
		{
			name:    "value passed through untrimmed",
			doc:     `<input name="csrfmiddlewaretoken" value=" a+b/c= ">`,
			want:    " a+b/c= ",
			wantHit: true,
		},
		{
			name:    "token name on a non-input element is ignored",
			doc:     `<meta name="csrfmiddlewaretoken" value="meta"><input name="csrfmiddlewaretoken" value="input">`,
			want:    "input",
			wantHit: true,
		},
		{
			name:    "matching input without value",
			doc:     `<input name="csrfmiddlewaretoken"><input name="csrfmiddlewaretoken" value="later">`,
			want:    "later",
			wantHit: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Extract(parse(t, tt.doc))
			assert.Equal(t, tt.wantHit, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_NilRoot(t *testing.T) {
	got, ok := Extract(nil)
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestFromReader(t *testing.T) {
	token, ok, err := FromReader(strings.NewReader(`<form><input name="csrfmiddlewaretoken" value="abc"></form>`))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	_, ok, err = FromReader(strings.NewReader(""))
	require.NoError(t, err)
	assert.False(t, ok)
}
