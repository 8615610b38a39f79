package httputil

import (
	"crypto/tls"
	"net/http"
	"net/url"
	"time"

	"carfinder/config"
	"carfinder/logging"
)

type Clients struct {
	Scraping *http.Client // optionally proxied, for classifieds sites
	API      *http.Client // direct, for the carfinder backend
}

// NewClients builds the outbound clients. Scraping goes through the proxy
// when one is configured and follows redirects, since search pages
// routinely bounce to a regional host.
func NewClients(proxyCfg config.ProxyConfig) *Clients {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		ForceAttemptHTTP2:   false,
		TLSNextProto:        make(map[string]func(string, *tls.Conn) http.RoundTripper),
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}
	if proxyCfg.URL != "" {
		proxyURL, err := url.Parse(proxyCfg.URL)
		if err != nil {
			logging.Logf(logging.LevelWarn, "http", "ignoring invalid PROXY_URL: %v", err)
		} else {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	scraping := &http.Client{
		Timeout:   15 * time.Second,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}

	return &Clients{
		Scraping: scraping,
		API:      &http.Client{Timeout: 90 * time.Second},
	}
}
