package imageproxy

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wildpark/wildpark/pkg/httputil"
	"github.com/wildpark/wildpark/pkg/logging"
)

// DefaultAllowedHosts are the upstream hostnames the proxy will fetch from.
var DefaultAllowedHosts = []string{
	"lh3.googleusercontent.com",
	"avatars.githubusercontent.com",
	"gravatar.com",
	"www.gravatar.com",
	"secure.gravatar.com",
}

const maxImageBytes = 10 << 20

// Proxy serves profile images fetched from an allow-listed set of upstream
// hosts, caching bytes and content type for the cache TTL.
type Proxy struct {
	cache   *Cache
	client  *http.Client
	allowed map[string]struct{}
	logger  *logging.Service
}

func NewProxy(cache *Cache, allowedHosts []string, logger *logging.Service) *Proxy {
	if len(allowedHosts) == 0 {
		allowedHosts = DefaultAllowedHosts
	}
	allowed := make(map[string]struct{}, len(allowedHosts))
	for _, host := range allowedHosts {
		allowed[strings.ToLower(host)] = struct{}{}
	}
	return &Proxy{
		cache:   cache,
		client:  &http.Client{Timeout: 15 * time.Second},
		allowed: allowed,
		logger:  logger,
	}
}

// ServeImage handles GET /api/profile-image/proxy?url=.
func (p *Proxy) ServeImage(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		httputil.WriteBadRequest(w, r, "url query parameter is required")
		return
	}
	parsed, err := url.Parse(raw)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Hostname() == "" {
		httputil.WriteBadRequest(w, r, "url must be an absolute http or https URL")
		return
	}
	if _, ok := p.allowed[strings.ToLower(parsed.Hostname())]; !ok {
		httputil.WriteForbidden(w, r, fmt.Sprintf("host %q is not an allowed image source", parsed.Hostname()))
		return
	}

	key := Key(raw)
	if data, contentType, ok := p.cache.Get(key); ok {
		p.write(w, data, contentType, "HIT")
		return
	}

	data, contentType, err := p.fetch(r, raw)
	if err != nil {
		p.logger.Warn(logging.CategoryAPI, "image fetch failed", logging.Fields{
			"url":   raw,
			"error": err.Error(),
		})
		httputil.WriteErrorMessage(w, r, http.StatusBadGateway, "upstream image fetch failed")
		return
	}
	if err := p.cache.Put(key, data, contentType); err != nil {
		p.logger.Warn(logging.CategoryAPI, "image cache write failed", logging.Fields{
			"key":   key,
			"error": err.Error(),
		})
	}
	p.write(w, data, contentType, "MISS")
}

// Cleanup handles POST /api/profile-image/cleanup.
func (p *Proxy) Cleanup(w http.ResponseWriter, r *http.Request) {
	removed, err := p.cache.Cleanup()
	if err != nil {
		httputil.WriteAppError(w, r, err, false)
		return
	}
	p.logger.Info(logging.CategorySystem, "image cache cleanup", logging.Fields{
		"removed": removed,
	})
	httputil.WriteSuccess(w, map[string]interface{}{"removed": removed})
}

func (p *Proxy) fetch(r *http.Request, raw string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, raw, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("upstream returned %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", err
	}
	if len(data) > maxImageBytes {
		return nil, "", fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}

func (p *Proxy) write(w http.ResponseWriter, data []byte, contentType, cacheState string) {
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("X-Cache", cacheState)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
