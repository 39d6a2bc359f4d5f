package overload

import (
	"net/http"
	"path"
	"strings"

	"overload-gateway/middleware/overload/domain"
)

// Classifier decide se o request vem de um convidado ou de um bot.
// O motor de decisão trata o resultado como opaco.
type Classifier interface {
	Classify(r *http.Request) domain.UserType
}

type ClassifierFunc func(r *http.Request) domain.UserType

func (f ClassifierFunc) Classify(r *http.Request) domain.UserType { return f(r) }

var defaultBotKeywords = []string{
	"bot", "crawl", "spider", "slurp", "scrape", "fetch",
	"curl", "wget", "python-requests", "go-http-client", "httpclient",
	"headless", "phantomjs", "facebookexternalhit", "embedly", "preview",
}

// UserAgentClassifier classifica por palavras-chave no User-Agent.
// User-Agent vazio conta como bot.
type UserAgentClassifier struct {
	// Keywords substitui a lista padrão quando não vazia (comparação em minúsculas).
	Keywords []string
}

func (c UserAgentClassifier) Classify(r *http.Request) domain.UserType {
	ua := strings.ToLower(strings.TrimSpace(r.UserAgent()))
	if ua == "" {
		return domain.Bot
	}
	keywords := c.Keywords
	if len(keywords) == 0 {
		keywords = defaultBotKeywords
	}
	for _, k := range keywords {
		if strings.Contains(ua, k) {
			return domain.Bot
		}
	}
	return domain.Guest
}

var assetExtensions = map[string]struct{}{
	".js": {}, ".mjs": {}, ".css": {}, ".map": {}, ".json": {},
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".svg": {}, ".webp": {}, ".ico": {},
	".woff": {}, ".woff2": {}, ".ttf": {},
}

// IsSubRequest reconhece requests secundários: AJAX, fetch que não é navegação
// de documento, ou assets estáticos pela extensão.
func IsSubRequest(r *http.Request) bool {
	if strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest") {
		return true
	}
	if dest := r.Header.Get("Sec-Fetch-Dest"); dest != "" && !strings.EqualFold(dest, "document") {
		return true
	}
	_, ok := assetExtensions[strings.ToLower(path.Ext(r.URL.Path))]
	return ok
}
