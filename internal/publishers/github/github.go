package github

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hy2ctl/internal/logger"
	"hy2ctl/internal/profile"
	"hy2ctl/internal/publishers"
)

// Publisher commits the payload to a file through the GitHub contents API.
type Publisher struct{}

type fileRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Sha     string `json:"sha,omitempty"`
	Branch  string `json:"branch,omitempty"`
}

type fileResponse struct {
	Sha string `json:"sha"`
}

type target struct {
	client  *http.Client
	apiURL  string
	token   string
	branch  string
	retries int
}

func (p *Publisher) Publish(profiles []profile.Profile, config map[string]interface{}) error {
	// 1. Content
	payload, err := publishers.GenerateSubscriptionPayload(profiles, config)
	if err != nil {
		return err
	}

	// 2. Params
	token, _ := config["token"].(string)
	owner, _ := config["owner"].(string)
	repo, _ := config["repo"].(string)
	path, _ := config["path"].(string)
	branch, _ := config["branch"].(string)
	msg, _ := config["message"].(string)
	apiBase, _ := config["api_url"].(string)

	if token == "" || owner == "" || repo == "" || path == "" {
		return fmt.Errorf("github publisher requires token, owner, repo, and path")
	}
	if apiBase == "" {
		apiBase = "https://api.github.com"
	}
	if msg == "" {
		msg = "Update hysteria2 share links [hy2ctl]"
	}

	t := target{
		client:  &http.Client{Timeout: 30 * time.Second},
		apiURL:  fmt.Sprintf("%s/repos/%s/%s/contents/%s", strings.TrimRight(apiBase, "/"), owner, repo, strings.TrimPrefix(path, "/")),
		token:   token,
		branch:  branch,
		retries: intParam(config, "retries"),
	}

	if proxyStr, ok := config["proxy"].(string); ok && proxyStr != "" {
		u, err := url.Parse(proxyStr)
		if err != nil {
			return fmt.Errorf("invalid proxy url: %w", err)
		}
		t.client.Transport = &http.Transport{Proxy: http.ProxyURL(u)}
		logger.Log.Debugf("GitHub publisher using proxy: %s", proxyStr)
	}

	// 3. Current blob sha, empty when the file does not exist yet
	sha, err := t.currentSha()
	if err != nil {
		return err
	}

	// 4. Upload
	body, err := json.Marshal(fileRequest{
		Message: msg,
		Content: base64.StdEncoding.EncodeToString([]byte(payload)),
		Sha:     sha,
		Branch:  branch,
	})
	if err != nil {
		return err
	}
	return t.upload(body)
}

func (t target) newRequest(method string, body []byte) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, t.apiURL, r)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+t.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (t target) currentSha() (string, error) {
	var sha string
	err := t.retry("fetch", func() error {
		req, err := t.newRequest(http.MethodGet, nil)
		if err != nil {
			return err
		}
		if t.branch != "" {
			q := req.URL.Query()
			q.Set("ref", t.branch)
			req.URL.RawQuery = q.Encode()
		}

		resp, err := t.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusOK:
			var existing fileResponse
			if err := json.NewDecoder(resp.Body).Decode(&existing); err != nil {
				return fmt.Errorf("failed to parse github response: %w", err)
			}
			sha = existing.Sha
			logger.Log.Debugf("GitHub: file exists (sha %s), updating", sha)
			return nil
		case http.StatusNotFound:
			logger.Log.Debugf("GitHub: file not found, creating")
			return nil
		default:
			return fmt.Errorf("status %d", resp.StatusCode)
		}
	})
	return sha, err
}

func (t target) upload(body []byte) error {
	return t.retry("upload", func() error {
		req, err := t.newRequest(http.MethodPut, body)
		if err != nil {
			return err
		}
		resp, err := t.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return fmt.Errorf("status %d: %s", resp.StatusCode, string(msg))
		}
		return nil
	})
}

func (t target) retry(op string, fn func() error) error {
	var err error
	for i := 0; i <= t.retries; i++ {
		logger.Log.Debugf("GitHub: %s (attempt %d/%d)", op, i+1, t.retries+1)
		if err = fn(); err == nil {
			return nil
		}
		if i < t.retries {
			time.Sleep(time.Second)
		}
	}
	return fmt.Errorf("github %s failed after retries: %w", op, err)
}

// yaml decodes numbers as int; accept float64 too for JSON-sourced params.
func intParam(config map[string]interface{}, key string) int {
	switch v := config[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

func init() {
	publishers.Register("github", func() publishers.Publisher { return &Publisher{} })
}
