package browser

import (
	"context"
	"fmt"
	"net/url"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"xscraper/pkg/config"
	"xscraper/pkg/logger"
	"xscraper/pkg/twitter"
)

// Credentials is the session cookie pair installed into the browser
type Credentials struct {
	AuthToken string
	CSRFToken string
}

// Session owns a Chromium instance bound to an authenticated cookie
// context. Collection and fetch pages derive from it; Close tears the
// browser and launcher down.
type Session struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	cfg      config.BrowserConfig
	log      logger.Logger
}

// NewSession launches Chromium, or attaches to cfg.ControlURL when
// set, and installs the session cookies for the configured platform
// host.
func NewSession(ctx context.Context, cfg config.BrowserConfig, creds Credentials, log logger.Logger) (*Session, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	wsURL := cfg.ControlURL
	var lnch *launcher.Launcher
	if wsURL == "" {
		lnch = launcher.New().
			Headless(cfg.Headless).
			Set("disable-blink-features", "AutomationControlled")
		u, err := lnch.Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		wsURL = u
		log.WithField("headless", cfg.Headless).Debug("Launched browser")
	} else {
		log.WithField("control_url", wsURL).Debug("Attaching to running browser")
	}

	b := rod.New().ControlURL(wsURL).Context(ctx)
	if err := b.Connect(); err != nil {
		if lnch != nil {
			lnch.Cleanup()
		}
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	s := &Session{
		browser:  b,
		launcher: lnch,
		cfg:      cfg,
		log:      log,
	}

	if err := s.installCookies(creds); err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}

// OpenFeed opens a fresh page navigated to the author's feed. The
// caller owns the returned surface and must close it.
func (s *Session) OpenFeed(ctx context.Context, authorID string) (*Surface, error) {
	surface, err := s.openPage()
	if err != nil {
		return nil, err
	}

	feedURL := twitter.FeedURL(s.cfg.BaseURL, authorID)
	if err := surface.navigate(ctx, feedURL, s.cfg.NavigationTimeout); err != nil {
		surface.Close()
		return nil, err
	}
	return surface, nil
}

// OpenFetcher opens a page parked on the platform origin so in-page
// fetches run same-origin with the session's cookies.
func (s *Session) OpenFetcher(ctx context.Context) (*Surface, error) {
	surface, err := s.openPage()
	if err != nil {
		return nil, err
	}

	if err := surface.navigate(ctx, s.cfg.BaseURL, s.cfg.NavigationTimeout); err != nil {
		surface.Close()
		return nil, err
	}
	return surface, nil
}

// Close tears down the browser and the launcher. Safe to call more
// than once.
func (s *Session) Close() error {
	var closeErr error
	if s.browser != nil {
		closeErr = s.browser.Close()
		s.browser = nil
	}
	if s.launcher != nil {
		s.launcher.Cleanup()
		s.launcher = nil
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close browser: %w", closeErr)
	}
	return nil
}

// openPage creates a page with stealth, user agent, and resource
// blocking applied
func (s *Session) openPage() (*Surface, error) {
	var page *rod.Page
	var err error
	if s.cfg.Stealth {
		page, err = stealth.Page(s.browser)
	} else {
		page, err = s.browser.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	if s.cfg.UserAgent != "" {
		override := proto.NetworkSetUserAgentOverride{UserAgent: s.cfg.UserAgent}
		if err := override.Call(page); err != nil {
			s.log.WithError(err).Warn("User agent override failed")
		}
	}

	if len(s.cfg.BlockResources) > 0 {
		if err := blockResources(page, s.cfg.BlockResources); err != nil {
			s.log.WithError(err).Warn("Resource blocking failed")
		}
	}

	return &Surface{page: page, log: s.log}, nil
}

// installCookies sets the auth cookie pair on the browser context
func (s *Session) installCookies(creds Credentials) error {
	if creds.AuthToken == "" {
		return nil
	}

	domain, err := cookieDomain(s.cfg.BaseURL)
	if err != nil {
		return err
	}

	if err := s.browser.SetCookies(sessionCookies(domain, creds)); err != nil {
		return fmt.Errorf("failed to install session cookies: %w", err)
	}
	return nil
}

// sessionCookies builds the cookie params a platform login would set.
// auth_token is the HTTP-only session cookie; ct0 stays readable by
// page scripts because the platform's own code sends it as the CSRF
// header.
func sessionCookies(domain string, creds Credentials) []*proto.NetworkCookieParam {
	cookies := []*proto.NetworkCookieParam{
		{
			Name:     "auth_token",
			Value:    creds.AuthToken,
			Domain:   domain,
			Path:     "/",
			Secure:   true,
			HTTPOnly: true,
		},
	}
	if creds.CSRFToken != "" {
		cookies = append(cookies, &proto.NetworkCookieParam{
			Name:   "ct0",
			Value:  creds.CSRFToken,
			Domain: domain,
			Path:   "/",
			Secure: true,
		})
	}
	return cookies
}

// cookieDomain derives the cookie scope from the base URL. The leading
// dot covers subdomains the way the platform's login flow scopes its
// own cookies.
func cookieDomain(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Hostname() == "" {
		return "", fmt.Errorf("cannot derive cookie domain from %q", baseURL)
	}
	return "." + u.Hostname(), nil
}
