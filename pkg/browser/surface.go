package browser

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-rod/rod"

	"xscraper/pkg/logger"
)

// DefaultNavigationTimeout bounds navigation and waits when the config
// leaves them unset.
const DefaultNavigationTimeout = 60 * time.Second

// Surface wraps one rod page behind the capability interfaces the
// collector and materializer consume. A surface belongs to exactly one
// run and is closed by whoever opened it.
type Surface struct {
	page *rod.Page
	log  logger.Logger
}

// Eval runs js in the page and unmarshals its JSON string result into
// out. Extraction scripts return JSON.stringify output so the DOM
// shape crosses the process boundary as plain data.
func (s *Surface) Eval(ctx context.Context, js string, out any) error {
	res, err := s.page.Context(ctx).Eval(js)
	if err != nil {
		return fmt.Errorf("page eval failed: %w", err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal([]byte(res.Value.Str()), out); err != nil {
		return fmt.Errorf("unexpected eval result: %w", err)
	}
	return nil
}

// Has reports whether the selector matches anything right now
func (s *Surface) Has(ctx context.Context, selector string) (bool, error) {
	has, _, err := s.page.Context(ctx).Has(selector)
	if err != nil {
		return false, fmt.Errorf("selector probe failed: %w", err)
	}
	return has, nil
}

// WaitVisible blocks until the selector matches a visible element or
// the timeout passes
func (s *Surface) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultNavigationTimeout
	}

	page := s.page.Context(ctx).Timeout(timeout)
	el, err := page.Element(selector)
	if err != nil {
		return fmt.Errorf("selector %s never appeared: %w", selector, err)
	}
	if err := el.WaitVisible(); err != nil {
		return fmt.Errorf("selector %s never became visible: %w", selector, err)
	}
	return nil
}

// ScrollToBottom jumps the viewport to the end of the document,
// triggering the feed's next lazy-loaded batch
func (s *Surface) ScrollToBottom(ctx context.Context) error {
	_, err := s.page.Context(ctx).Eval(`() => window.scrollTo(0, document.body.scrollHeight)`)
	if err != nil {
		return fmt.Errorf("scroll failed: %w", err)
	}
	return nil
}

// fetchScript downloads a resource from inside the page so the request
// carries the session's cookies and referer. The body travels as
// base64 because eval results must round-trip through JSON.
const fetchScript = `async (url) => {
	const res = await fetch(url, { credentials: "include" });
	if (!res.ok) {
		return JSON.stringify({ ok: false, status: res.status });
	}
	const buf = await res.arrayBuffer();
	const bytes = new Uint8Array(buf);
	let binary = "";
	const chunk = 0x8000;
	for (let i = 0; i < bytes.length; i += chunk) {
		binary += String.fromCharCode.apply(null, bytes.subarray(i, i + chunk));
	}
	return JSON.stringify({ ok: true, status: res.status, body: btoa(binary) });
}`

type fetchReply struct {
	OK     bool   `json:"ok"`
	Status int    `json:"status"`
	Body   string `json:"body"`
}

// FetchResource downloads url through the page within the given
// timeout and returns the raw bytes
func (s *Surface) FetchResource(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	if timeout <= 0 {
		timeout = DefaultNavigationTimeout
	}

	res, err := s.page.Context(ctx).Timeout(timeout).Eval(fetchScript, url)
	if err != nil {
		return nil, fmt.Errorf("in-page fetch failed: %w", err)
	}
	return decodeFetchReply(res.Value.Str())
}

// decodeFetchReply unpacks the JSON envelope the fetch script returns
func decodeFetchReply(raw string) ([]byte, error) {
	var reply fetchReply
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		return nil, fmt.Errorf("unexpected fetch reply: %w", err)
	}
	if !reply.OK {
		return nil, fmt.Errorf("fetch returned status %d", reply.Status)
	}

	data, err := base64.StdEncoding.DecodeString(reply.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode fetch body: %w", err)
	}
	return data, nil
}

// navigate loads pageURL and waits for the load event. A slow load
// event alone is not fatal; readiness is enforced by the selector wait
// that follows.
func (s *Surface) navigate(ctx context.Context, pageURL string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultNavigationTimeout
	}

	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	page := s.page.Context(navCtx)
	if err := page.Navigate(pageURL); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", pageURL, err)
	}
	if err := page.WaitLoad(); err != nil {
		s.log.WithField("url", pageURL).WithError(err).Warn("Page load wait timed out")
	}
	return nil
}

// Close releases the page. Safe to call more than once.
func (s *Surface) Close() error {
	if s.page == nil {
		return nil
	}
	err := s.page.Close()
	s.page = nil
	return err
}
