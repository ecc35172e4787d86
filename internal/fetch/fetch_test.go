package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"geodigest/internal/logger"
)

const testHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Mapping Floods</title>
    <style>body { color: red; }</style>
    <script>var tracking = true;</script>
</head>
<body>
    <header>Site Header</header>
    <nav>Home | About</nav>
    <main>
        <h1>Flood   mapping</h1>
        <p>Deep learning models
           segment satellite imagery.</p>
    </main>
    <aside>Related posts</aside>
    <footer>Copyright</footer>
</body>
</html>`

func newExtractor(maxLength int, timeout time.Duration) *Extractor {
	return NewExtractor(NewClient(""), timeout, maxLength, logger.Discard())
}

func TestExtractTextStripsNonContent(t *testing.T) {
	text, err := ExtractText([]byte(testHTML))
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}

	expected := "Mapping Floods Flood mapping Deep learning models segment satellite imagery."
	if text != expected {
		t.Errorf("Expected %q, got %q", expected, text)
	}

	for _, unwanted := range []string{"Site Header", "Home", "Related posts", "Copyright", "tracking", "color"} {
		if strings.Contains(text, unwanted) {
			t.Errorf("Expected %q to be stripped, got %q", unwanted, text)
		}
	}
}

func TestTruncate(t *testing.T) {
	testCases := []struct {
		name     string
		text     string
		n        int
		expected string
	}{
		{"shorter", "short text", 250, "short text"},
		{"exact", "abcde", 5, "abcde"},
		{"longer", "abcdefgh", 5, "abcde..."},
		{"runes", "géospatial", 3, "géo..."},
		{"no bound", "abc", 0, "abc"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Truncate(tc.text, tc.n); got != tc.expected {
				t.Errorf("Truncate(%q, %d) = %q, expected %q", tc.text, tc.n, got, tc.expected)
			}
		})
	}
}

func TestExtractSuccess(t *testing.T) {
	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(testHTML))
	}))
	defer server.Close()

	excerpt := newExtractor(250, time.Second).Extract(context.Background(), server.URL)
	if !excerpt.OK() {
		t.Fatalf("Expected success, got error %v", excerpt.Err)
	}
	if excerpt.Truncated {
		t.Error("Short page should not be truncated")
	}
	if !strings.HasPrefix(excerpt.Text, "Mapping Floods") {
		t.Errorf("Unexpected excerpt %q", excerpt.Text)
	}
	if userAgent != DefaultUserAgent {
		t.Errorf("Expected browser-like user agent, got %q", userAgent)
	}
}

func TestExtractTruncatesLongPages(t *testing.T) {
	long := "<html><body><p>" + strings.Repeat("geospatial ", 100) + "</p></body></html>"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(long))
	}))
	defer server.Close()

	for _, bound := range []int{250, 350} {
		excerpt := newExtractor(bound, time.Second).Extract(context.Background(), server.URL)
		if !excerpt.Truncated {
			t.Errorf("Expected truncation at bound %d", bound)
		}
		if got := len([]rune(excerpt.Text)); got != bound+len(Ellipsis) {
			t.Errorf("Expected length %d, got %d", bound+len(Ellipsis), got)
		}
		if !strings.HasSuffix(excerpt.Text, Ellipsis) {
			t.Errorf("Expected ellipsis suffix, got %q", excerpt.Text)
		}
	}
}

func TestExtractFallbacks(t *testing.T) {
	notFound := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer notFound.Close()

	binary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 0x50, 0x4e, 0x47})
	}))
	defer binary.Close()

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer slow.Close()

	extractor := newExtractor(250, 100*time.Millisecond)

	testCases := []struct {
		name string
		url  string
	}{
		{"http error", notFound.URL},
		{"non-text", binary.URL},
		{"timeout", slow.URL},
		{"invalid url", "invalid-url"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			excerpt := extractor.Extract(context.Background(), tc.url)
			if excerpt.OK() {
				t.Fatal("Expected extraction failure")
			}
			if excerpt.Text != FallbackText {
				t.Errorf("Expected fallback text, got %q", excerpt.Text)
			}
		})
	}
}

func TestClientStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := NewClient("test-agent").Get(context.Background(), server.URL, time.Second)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Expected StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", statusErr.Code)
	}
	if !strings.Contains(err.Error(), "status code 403") {
		t.Errorf("Expected error to mention status code 403, got: %v", err)
	}
}

func TestResponseIsText(t *testing.T) {
	testCases := map[string]bool{
		"":                          true,
		"text/html; charset=utf-8":  true,
		"application/rss+xml":       true,
		"application/xhtml+xml":     true,
		"application/pdf":           false,
		"image/jpeg":                false,
		"this is not a media type;": false,
	}

	for contentType, expected := range testCases {
		r := &Response{ContentType: contentType}
		if got := r.IsText(); got != expected {
			t.Errorf("IsText(%q) = %v, expected %v", contentType, got, expected)
		}
	}
}
