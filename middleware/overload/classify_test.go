package overload

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"overload-gateway/middleware/overload/domain"
)

func TestUserAgentClassifier(t *testing.T) {
	tests := []struct {
		ua   string
		want domain.UserType
	}{
		{browserUA, domain.Guest},
		{"Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)", domain.Bot},
		{"curl/8.5.0", domain.Bot},
		{"python-requests/2.31", domain.Bot},
		{"Mozilla/5.0 HeadlessChrome/120.0", domain.Bot},
		{"", domain.Bot},
	}

	c := UserAgentClassifier{}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
		r.Header.Set("User-Agent", tt.ua)
		if got := c.Classify(r); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.ua, got, tt.want)
		}
	}
}

func TestUserAgentClassifier_CustomKeywords(t *testing.T) {
	c := UserAgentClassifier{Keywords: []string{"internal-probe"}}

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.Header.Set("User-Agent", "Internal-Probe/1.0")
	if got := c.Classify(r); got != domain.Bot {
		t.Fatalf("expected bot, got %s", got)
	}

	r.Header.Set("User-Agent", "curl/8.5.0")
	if got := c.Classify(r); got != domain.Guest {
		t.Fatalf("expected guest with custom keywords, got %s", got)
	}
}

func TestClassifierFunc(t *testing.T) {
	c := ClassifierFunc(func(*http.Request) domain.UserType { return domain.Bot })
	if got := c.Classify(httptest.NewRequest(http.MethodGet, "http://example/", nil)); got != domain.Bot {
		t.Fatalf("expected bot, got %s", got)
	}
}

func TestIsSubRequest(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		headers map[string]string
		want    bool
	}{
		{"page navigation", "/", nil, false},
		{"document fetch", "/about", map[string]string{"Sec-Fetch-Dest": "document"}, false},
		{"xhr", "/api/items", map[string]string{"X-Requested-With": "XMLHttpRequest"}, true},
		{"script fetch", "/bundle", map[string]string{"Sec-Fetch-Dest": "script"}, true},
		{"asset by extension", "/static/site.CSS", nil, true},
		{"image", "/img/logo.png", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "http://example"+tt.path, nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := IsSubRequest(r); got != tt.want {
				t.Fatalf("IsSubRequest(%s) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
