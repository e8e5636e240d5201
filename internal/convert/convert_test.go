package convert

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_FormatFor(t *testing.T) {
	r := NewRegistry(Options{External: map[string][]string{".rst": {"pandoc", "-f", "rst"}}})

	cases := map[string]string{
		"post.md":       FormatMarkdown,
		"POST.MARKDOWN": FormatMarkdown,
		"page.html":     FormatHTML,
		"draft.editml":  FormatEditML,
		"notes.txt":     FormatText,
		"garden.biff":   FormatStory,
		"guide.rst":     "rst",
	}
	for name, want := range cases {
		got, ok := r.FormatFor(name)
		require.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	_, ok := r.FormatFor("photo.png")
	assert.False(t, ok)
	assert.False(t, r.IsPageFile("archive.zip"))
	assert.Contains(t, r.Extensions(), ".rst")
}

func TestRegistry_UnsupportedFormat(t *testing.T) {
	r := NewRegistry(Options{})
	_, err := r.Convert(context.Background(), []byte("x"), "docx")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConversion))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	var convErr *Error
	require.True(t, errors.As(err, &convErr))
	assert.Equal(t, "docx", convErr.Format)
}

func TestRegistry_RejectsInvalidUTF8(t *testing.T) {
	r := NewRegistry(Options{})
	_, err := r.Convert(context.Background(), []byte{0xff, 0xfe, 'a'}, FormatMarkdown)
	require.ErrorIs(t, err, ErrConversion)
	assert.Contains(t, err.Error(), "UTF-8")
}

func TestRegistry_SanitizesUnlessUnsafe(t *testing.T) {
	src := []byte("# Hi\n\n<script>alert(1)</script>\n")

	safe, err := NewRegistry(Options{}).Convert(context.Background(), src, FormatMarkdown)
	require.NoError(t, err)
	assert.NotContains(t, safe.HTML, "<script")
	assert.Contains(t, safe.HTML, "Hi</h1>")

	unsafe, err := NewRegistry(Options{Unsafe: true}).Convert(context.Background(), src, FormatMarkdown)
	require.NoError(t, err)
	assert.Contains(t, unsafe.HTML, "<script>alert(1)</script>")
}

func TestRegistry_CustomConverter(t *testing.T) {
	r := NewRegistry(Options{Unsafe: true})
	r.Register("shout", ConverterFunc(func(_ context.Context, src []byte) (Result, error) {
		if len(src) == 0 {
			return Result{}, errors.New("empty")
		}
		return Result{HTML: "  <p>" + string(src) + "!</p>\n"}, nil
	}), ".shout")

	res, err := r.Convert(context.Background(), []byte("hey"), "shout")
	require.NoError(t, err)
	assert.Equal(t, "<p>hey!</p>", res.HTML)
	assert.Nil(t, res.Meta)

	_, err = r.Convert(context.Background(), nil, "shout")
	require.ErrorIs(t, err, ErrConversion)
}

func TestTextConverter_Escapes(t *testing.T) {
	res, err := NewRegistry(Options{}).Convert(context.Background(), []byte("a < b & c"), FormatText)
	require.NoError(t, err)
	assert.Equal(t, "<pre>a &lt; b &amp; c</pre>", res.HTML)
	assert.Nil(t, res.Meta)
}

func TestExecConverter_PipesThroughCommand(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}
	r := NewRegistry(Options{External: map[string][]string{".rst": {"cat"}}})

	res, err := r.Convert(context.Background(), []byte("<p>from rst</p>\n"), "rst")
	require.NoError(t, err)
	assert.Equal(t, "<p>from rst</p>", res.HTML)
	assert.Nil(t, res.Meta, "external converters never report metadata")
}

func TestExecConverter_AcceptsBinarySource(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}
	r := NewRegistry(Options{Unsafe: true, External: map[string][]string{".docx": {"cat"}}})
	src := []byte("PK\x03\x04\xff\xfe")

	res, err := r.Convert(context.Background(), src, "docx")
	require.NoError(t, err)
	assert.Equal(t, string(src), res.HTML)

	_, err = r.Convert(context.Background(), src, FormatText)
	require.ErrorIs(t, err, ErrConversion, "built-in formats still want UTF-8")
}

func TestExecConverter_FailureIsConversionError(t *testing.T) {
	r := NewRegistry(Options{External: map[string][]string{".ipynb": {"folio-no-such-binary"}}})
	_, err := r.Convert(context.Background(), []byte("{}"), "ipynb")
	require.ErrorIs(t, err, ErrConversion)
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   any
		want time.Time
		ok   bool
	}{
		{"2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"2024-03-01 08:30:00", time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC), true},
		{"2024-03-01T08:30:00", time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC), true},
		{"2024-03-01T08:30:00+02:00", time.Date(2024, 3, 1, 6, 30, 0, 0, time.UTC), true},
		{time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC), time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC), true},
		{"last tuesday", time.Time{}, false},
		{42, time.Time{}, false},
		{time.Time{}, time.Time{}, false},
	}
	for _, tc := range cases {
		got, ok := ParseDate(tc.in)
		assert.Equal(t, tc.ok, ok, "%v", tc.in)
		assert.True(t, tc.want.Equal(got), "%v: got %v", tc.in, got)
	}
}
