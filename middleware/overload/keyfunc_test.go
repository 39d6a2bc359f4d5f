package overload

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDefaultAddrFunc_TrustXForwardedForUsesFirstIP(t *testing.T) {
	fn := DefaultAddrFunc(true)

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "10.0.0.9:5555"
	r.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8")

	if got := fn(r); got != "1.2.3.4" {
		t.Fatalf("expected first XFF ip, got %q", got)
	}
}

func TestDefaultAddrFunc_IgnoresXForwardedForWhenUntrusted(t *testing.T) {
	fn := DefaultAddrFunc(false)

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "10.0.0.9:5555"
	r.Header.Set("X-Forwarded-For", "1.2.3.4")

	if got := fn(r); got != "10.0.0.9" {
		t.Fatalf("expected remote host, got %q", got)
	}
}

func TestDefaultAddrFunc_FallbacksToRawRemoteAddr(t *testing.T) {
	fn := DefaultAddrFunc(false)

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "no-port"

	if got := fn(r); got != "no-port" {
		t.Fatalf("expected raw remote addr, got %q", got)
	}
}
