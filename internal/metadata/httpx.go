package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrUnexpectedStatus wraps non-2xx responses that are not a plain miss.
var ErrUnexpectedStatus = errors.New("unexpected status")

// ClassifyResponse maps an HTTP exchange onto the provider outcome. It returns ok=true
// only for 200 responses, whose body the caller should decode. Otherwise the body is
// drained and closed and the returned Result describes the failure:
// 404 and other 4xx are NotFound, 429 and 5xx are Transient (with Retry-After honored),
// and transport errors are Transient.
func ClassifyResponse(resp *http.Response, err error) (Result, bool) {
	if err != nil {
		return Transient(fmt.Errorf("executing request: %w", err), 0), false
	}
	if resp.StatusCode == http.StatusOK {
		return Result{}, true
	}

	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return Transient(
			fmt.Errorf("%w %d: rate limited", ErrUnexpectedStatus, resp.StatusCode),
			ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
		), false
	case resp.StatusCode >= 500:
		return Transient(
			fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(body))),
			ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
		), false
	default:
		return NotFound(), false
	}
}

// DecodeJSON decodes a 200 body and closes it. Decode failures are Transient: a proxy
// or an overloaded upstream can answer 200 with an HTML page.
func DecodeJSON(resp *http.Response, out interface{}) (Result, bool) {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return Transient(fmt.Errorf("decoding response: %w", err), 0), false
	}
	return Result{}, true
}

// FetchJSON performs req with hc and decodes a 200 body into out.
func FetchJSON(hc *http.Client, req *http.Request, out interface{}) (Result, bool) {
	resp, err := hc.Do(req)
	if res, ok := ClassifyResponse(resp, err); !ok {
		return res, false
	}
	return DecodeJSON(resp, out)
}

// ParseRetryAfter reads a Retry-After header given in seconds or as an HTTP date.
func ParseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
