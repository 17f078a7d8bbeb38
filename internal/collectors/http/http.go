package http

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"hy2ctl/internal/collectors"
	"hy2ctl/internal/link"
	"hy2ctl/internal/logger"
)

const maxBody = 10 << 20

// URLCollector downloads a subscription body and extracts the hysteria2
// links in it. Plain and base64 bodies are both accepted.
type URLCollector struct{}

func (c *URLCollector) Collect(config map[string]interface{}) ([]string, error) {
	// 1. Target
	targetURL, _ := config["url"].(string)
	if targetURL == "" {
		return nil, fmt.Errorf("missing 'url' in collector config")
	}

	// 2. Client, optionally through a proxy (e.g. the local socks5 listener)
	timeout := 30 * time.Second
	if s, ok := config["timeout"].(string); ok {
		if d, err := time.ParseDuration(s); err == nil {
			timeout = d
		}
	}
	client := &http.Client{Timeout: timeout}

	if proxyStr, ok := config["proxy"].(string); ok && proxyStr != "" {
		pURL, err := url.Parse(proxyStr)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url: %w", err)
		}
		client.Transport = &http.Transport{Proxy: http.ProxyURL(pURL)}
		logger.Log.Debugf("HTTP collector using proxy: %s", proxyStr)
	}

	// 3. Fetch
	logger.Log.Debugf("Fetching URL: %s", targetURL)
	req, err := http.NewRequest(http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if ua, ok := config["user_agent"].(string); ok && ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-200 status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	links := link.ExtractLinks(string(body))
	logger.Log.Debugf("HTTP collector found %d links at %s", len(links), targetURL)
	return links, nil
}

func init() {
	collectors.Register("http", func() collectors.Collector {
		return &URLCollector{}
	})
}
