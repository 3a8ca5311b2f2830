// Package browser drives the headless browser used to fetch source-site
// pages. Browser resources are scoped per operation: NewPage acquires a
// fresh driven tab seeded with the operator's session cookies and the
// returned release func must run on every exit path.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"salespilot/prospector-service/internal/model"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0 Safari/537.36"

// Page is the driven-page surface the extractors consume. Implementations
// other than the chromedp one exist only for tests.
type Page interface {
	// Navigate loads url and waits for the body to be ready, bounded by
	// the launcher's navigation timeout.
	Navigate(ctx context.Context, url string) error

	// Location returns the page's current URL.
	Location(ctx context.Context) (string, error)

	// Eval runs a JS expression in the page and unmarshals its result
	// into out.
	Eval(ctx context.Context, js string, out any) error

	// WaitVisible blocks until the selector matches a visible node or the
	// timeout elapses.
	WaitVisible(ctx context.Context, sel string, timeout time.Duration) error

	// Click clicks the first node matching the selector.
	Click(ctx context.Context, sel string) error
}

// Opener acquires one driven page per operation. Implemented by Launcher and
// by test fakes.
type Opener interface {
	NewPage(ctx context.Context, sess *model.Session) (Page, func(), error)
}

// Launcher builds chromedp contexts for driven operations.
type Launcher struct {
	Headless   bool
	ChromePath string
	UserAgent  string
	NavTimeout time.Duration
}

// NewLauncher returns a Launcher with the given settings.
func NewLauncher(headless bool, chromePath string, navTimeout time.Duration) *Launcher {
	return &Launcher{
		Headless:   headless,
		ChromePath: chromePath,
		UserAgent:  defaultUserAgent,
		NavTimeout: navTimeout,
	}
}

// NewPage starts a browser tab seeded with the session's cookies. The
// returned release func tears down the whole allocator chain; callers must
// defer it immediately.
func (l *Launcher) NewPage(ctx context.Context, sess *model.Session) (Page, func(), error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", l.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(l.UserAgent),
	)
	if l.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(l.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	release := func() {
		tabCancel()
		allocCancel()
	}

	if err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		setCookies(sess),
		maskAutomationFingerprint(),
	); err != nil {
		release()
		return nil, nil, fmt.Errorf("start browser tab: %w", err)
	}

	return &chromePage{ctx: tabCtx, navTimeout: l.NavTimeout}, release, nil
}

// setCookies injects the operator's session cookies before any source-site
// navigation happens.
func setCookies(sess *model.Session) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if sess == nil {
			return nil
		}
		expires := cdp.TimeSinceEpoch(sess.ExpiresAt)
		for _, c := range sess.Cookies {
			p := network.SetCookie(c.Name, c.Value).
				WithDomain(c.Domain).
				WithPath(c.Path).
				WithHTTPOnly(c.HTTPOnly).
				WithSecure(c.Secure).
				WithExpires(&expires)
			if c.SameSite != "" {
				p = p.WithSameSite(network.CookieSameSite(c.SameSite))
			}
			if err := p.Do(ctx); err != nil {
				return fmt.Errorf("set cookie %s: %w", c.Name, err)
			}
		}
		return nil
	})
}

// maskAutomationFingerprint hides the most common automation tells before
// site scripts run.
func maskAutomationFingerprint() chromedp.Action {
	const js = `(() => {
		Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
		window.chrome = window.chrome || { runtime: {} };
		Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });
		return true;
	})()`
	return chromedp.ActionFunc(func(ctx context.Context) error {
		var ok bool
		return chromedp.EvaluateAsDevTools(js, &ok).Do(ctx)
	})
}

// chromePage implements Page on a chromedp tab context.
type chromePage struct {
	ctx        context.Context
	navTimeout time.Duration
}

func (p *chromePage) Navigate(ctx context.Context, url string) error {
	runCtx, cancel := p.bounded(ctx)
	defer cancel()
	return chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (p *chromePage) Location(ctx context.Context) (string, error) {
	runCtx, cancel := p.bounded(ctx)
	defer cancel()
	var loc string
	if err := chromedp.Run(runCtx, chromedp.Location(&loc)); err != nil {
		return "", err
	}
	return loc, nil
}

func (p *chromePage) Eval(ctx context.Context, js string, out any) error {
	runCtx, cancel := p.bounded(ctx)
	defer cancel()
	return chromedp.Run(runCtx, chromedp.EvaluateAsDevTools(js, out))
}

func (p *chromePage) WaitVisible(_ context.Context, sel string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()
	return chromedp.Run(waitCtx, chromedp.WaitVisible(sel, chromedp.ByQuery))
}

func (p *chromePage) Click(ctx context.Context, sel string) error {
	runCtx, cancel := p.bounded(ctx)
	defer cancel()
	return chromedp.Run(runCtx,
		chromedp.ScrollIntoView(sel, chromedp.ByQuery),
		chromedp.Click(sel, chromedp.ByQuery),
	)
}

// bounded limits one driven step to the navigation timeout. The tab context
// already descends from the operation context passed to NewPage, so caller
// cancellation tears the whole chain down.
func (p *chromePage) bounded(_ context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(p.ctx, p.navTimeout)
}
