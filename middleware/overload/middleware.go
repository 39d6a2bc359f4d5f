package overload

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"overload-gateway/middleware/overload/domain"
)

// Engine é o que o middleware precisa do motor de decisão
// (implementado por *application.Protector).
type Engine interface {
	Evaluate(userType domain.UserType, id *domain.Identity) domain.Verdict
	ForbidNewGuest(rc *domain.RequestContext) bool
}

// AddrFunc extrai o endereço do cliente, usado só para preencher domain.Identity.
type AddrFunc func(r *http.Request) string

type Options struct {
	Engine     Engine
	Stats      domain.StatsStore
	Classifier Classifier
	// SubRequest decide se o request é secundário (AJAX, asset...). Padrão: IsSubRequest.
	SubRequest func(r *http.Request) bool
	// Authenticated marca requests de usuários autenticados, que não passam pelo motor.
	Authenticated func(r *http.Request) bool
	// SessionCookie é o cookie da sessão de convidado. Request de guest sem ele
	// criaria um convidado novo e passa pela regra ForbidNewGuest. Vazio desliga a regra.
	SessionCookie string

	AddrFn             AddrFunc
	TrustXForwardedFor bool
	RejectStatus       int
	RetryAfter         time.Duration
	AddOverloadHeaders bool
	Logger             *slog.Logger
}

func DefaultAddrFunc(trustXFF bool) AddrFunc {
	return func(r *http.Request) string {
		if trustXFF {
			// pega o primeiro IP do X-Forwarded-For (cliente original)
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				parts := strings.Split(xff, ",")
				if ip := strings.TrimSpace(parts[0]); ip != "" {
					return ip
				}
			}
		}

		// fallback: RemoteAddr
		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
}

func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.Engine == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusTooManyRequests
	}
	if opts.RetryAfter == 0 {
		opts.RetryAfter = 1 * time.Second
	}
	if opts.Classifier == nil {
		opts.Classifier = UserAgentClassifier{}
	}
	if opts.SubRequest == nil {
		opts.SubRequest = IsSubRequest
	}
	if opts.AddrFn == nil {
		opts.AddrFn = DefaultAddrFunc(opts.TrustXForwardedFor)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if opts.Authenticated != nil && opts.Authenticated(r) {
				next.ServeHTTP(w, r)
				return
			}

			userType := opts.Classifier.Classify(r)
			id := &domain.Identity{UserAgent: r.UserAgent(), RemoteAddr: opts.AddrFn(r)}

			v := opts.Engine.Evaluate(userType, id)
			ev := domain.StatsEvent{
				UserType: userType,
				Allowed:  !v.Denied,
				Scope:    v.Scope,
				Tier:     v.Tier,
				Method:   r.Method,
				Path:     r.URL.Path,
				At:       time.Now(),
			}
			if v.Denied {
				ev.Reason = domain.ReasonLimit
			} else if userType == domain.Guest && opts.isNewGuest(r) {
				rc := &domain.RequestContext{SubRequest: opts.SubRequest(r), Path: r.URL.Path}
				if opts.Engine.ForbidNewGuest(rc) {
					ev.Allowed = false
					ev.Reason = domain.ReasonNewGuest
				}
			}

			if opts.Stats != nil {
				if err := opts.Stats.Record(r.Context(), ev); err != nil {
					opts.Logger.Debug("overload stats record failed", slog.Any("error", err))
				}
			}

			if opts.AddOverloadHeaders {
				w.Header().Set("X-Overload-User-Type", userType.String())
				if v.Denied {
					w.Header().Set("X-Overload-Limit", string(v.Tier)+"/"+string(v.Scope))
				}
			}

			if !ev.Allowed {
				if ev.Reason == domain.ReasonLimit {
					w.Header().Set("Retry-After", formatInt(int(opts.RetryAfter.Seconds())))
				}
				http.Error(w, http.StatusText(opts.RejectStatus), opts.RejectStatus)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (o Options) isNewGuest(r *http.Request) bool {
	if o.SessionCookie == "" {
		return false
	}
	c, err := r.Cookie(o.SessionCookie)
	return err != nil || c.Value == ""
}
