// Package roddriver implements driver.Driver on a headless Chrome
// controlled through go-rod, with stealth patches applied so the portal
// does not serve its bot-wall variant of the markup.
package roddriver

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"patsearch-backend/lib/driver"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

type Options struct {
	// RemoteURL is the websocket URL of an already running Chrome.
	// Empty launches a local headless instance.
	RemoteURL string
	// NavigateTimeout bounds Navigate plus the load wait. Default 30s.
	NavigateTimeout time.Duration
}

type Session struct {
	browser  *rod.Browser
	lnch     *launcher.Launcher
	page     *rod.Page
	navLimit time.Duration
}

func New(opts Options) (*Session, error) {
	if opts.NavigateTimeout <= 0 {
		opts.NavigateTimeout = 30 * time.Second
	}

	var lnch *launcher.Launcher
	controlURL := opts.RemoteURL
	if controlURL == "" {
		lnch = launcher.New().Headless(true)
		u, err := lnch.Launch()
		if err != nil {
			return nil, fmt.Errorf("roddriver: launch chrome: %w", err)
		}
		controlURL = u
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		if lnch != nil {
			lnch.Cleanup()
		}
		return nil, fmt.Errorf("roddriver: connect: %w", err)
	}

	page, err := stealth.Page(browser)
	if err != nil {
		browser.Close()
		if lnch != nil {
			lnch.Cleanup()
		}
		return nil, fmt.Errorf("roddriver: create page: %w", err)
	}

	return &Session{
		browser:  browser,
		lnch:     lnch,
		page:     page,
		navLimit: opts.NavigateTimeout,
	}, nil
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, s.navLimit)
	defer cancel()

	page := s.page.Context(navCtx)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("roddriver: navigate %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		slog.WarnContext(ctx, "wait load timed out", "url", url, "err", err)
	}
	return nil
}

func (s *Session) CurrentDocument(ctx context.Context) (*goquery.Document, error) {
	res, err := s.page.Context(ctx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return nil, fmt.Errorf("roddriver: read dom: %w", err)
	}
	return goquery.NewDocumentFromReader(bytes.NewBufferString(res.Value.Str()))
}

func (s *Session) Locate(ctx context.Context, selector string) (driver.Element, bool) {
	elements, err := s.page.Context(ctx).Elements(selector)
	if err != nil || len(elements) == 0 {
		return nil, false
	}
	return element{el: elements.First()}, true
}

func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	return s.page.Context(ctx).Screenshot(false, nil)
}

func (s *Session) Close() error {
	var err error
	if s.page != nil {
		err = s.page.Close()
	}
	if s.browser != nil {
		if cerr := s.browser.Close(); err == nil {
			err = cerr
		}
	}
	if s.lnch != nil {
		s.lnch.Cleanup()
	}
	return err
}

type element struct {
	el *rod.Element
}

func (e element) Click(ctx context.Context) error {
	return e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1)
}

func (e element) TypeText(ctx context.Context, text string) error {
	el := e.el.Context(ctx)
	if err := el.SelectAllText(); err != nil {
		return err
	}
	return el.Input(text)
}
