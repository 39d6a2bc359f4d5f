package application

import (
	"log/slog"

	"overload-gateway/middleware/overload/domain"
)

func scopeAttr(s domain.Scope) slog.Attr       { return slog.String("scope", string(s)) }
func tierAttr(t domain.Tier) slog.Attr         { return slog.String("tier", string(t)) }
func userTypeAttr(u domain.UserType) slog.Attr { return slog.String("user_type", u.String()) }
func subRequestAttr(b bool) slog.Attr          { return slog.Bool("sub_request", b) }

// pathAttr devolve Attr vazio para path vazio; slog descarta Attr vazio.
func pathAttr(p string) slog.Attr {
	if p == "" {
		return slog.Attr{}
	}
	return slog.String("path", p)
}
