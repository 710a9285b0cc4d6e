package adminapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// レスポンスの上限（4MB）
const maxBodyBytes = 4 << 20

// 上流が読めない形を返した
var ErrMalformedResponse = errors.New("malformed response")

// 上流の2xx以外、またはエンベロープのcodeが失敗
type APIError struct {
	Status  int
	Code    int64
	Message string
	Path    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream %s: %d: %s", e.Path, e.Status, e.Message)
}

func AsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	ok := errors.As(err, &ae)
	return ae, ok
}

// Client は上流EC APIへの薄いHTTPラッパー。
// {data: ...} で包まれていても素のままでも受け付ける。
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	token   string
	log     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// 秒間rps件まで。0以下なら制限なし。
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// contextにトークンが無いときに使う
func WithDefaultToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type accessTokenKey struct{}

// リクエストごとのBearerトークン（管理者のトークンをそのまま上流へ渡す）
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, accessTokenKey{}, token)
}

func accessTokenFrom(ctx context.Context) string {
	tok, _ := ctx.Value(accessTokenKey{}).(string)
	return tok
}

// do は1往復。outがnilなら本文は読まない。
// 本文が空ならoutはそのまま（呼び出し側の既定値）。
func (c *Client) do(ctx context.Context, method string, path string, query url.Values, body any, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token := accessTokenFrom(ctx)
	if token == "" {
		token = c.token
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("upstream request failed",
			zap.String("method", method), zap.String("path", path), zap.Error(err))
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return err
	}

	c.log.Debug("upstream request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(data, resp.StatusCode), Path: path}
	}

	payload, err := unwrap(data, resp.StatusCode, path)
	if err != nil {
		return err
	}
	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedResponse, path, err)
	}
	return nil
}

// unwrap はエンベロープを外す。
// {data: x} なら x、dataが無い/nullなら全体、オブジェクト以外はそのまま。
func unwrap(body []byte, status int, path string) ([]byte, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] != '{' {
		return trimmed, nil
	}

	var env map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, path, err)
	}

	//200でもcodeが失敗を示すことがある
	if raw, ok := env["code"]; ok {
		var code int64
		if err := json.Unmarshal(raw, &code); err == nil && code != 0 && code != 200 {
			return nil, &APIError{Status: status, Code: code, Message: errorMessage(trimmed, status), Path: path}
		}
	}

	if data, ok := env["data"]; ok {
		d := bytes.TrimSpace(data)
		if len(d) > 0 && !bytes.Equal(d, []byte("null")) {
			return d, nil
		}
	}
	return trimmed, nil
}

// エラー本文から message / msg / error を拾う
func errorMessage(body []byte, status int) string {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(body, &m); err == nil {
		for _, key := range []string{"message", "msg", "error"} {
			raw, ok := m[key]
			if !ok {
				continue
			}
			var s string
			if err := json.Unmarshal(raw, &s); err == nil && s != "" {
				return s
			}
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "upstream error"
}
