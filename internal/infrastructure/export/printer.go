package export

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"
)

const defaultPrintTimeout = 30 * time.Second

// PrinterConfig selects the browser used for printing. ControlURL attaches
// to a running browser; otherwise one is launched from Bin (or the binary
// rod downloads when Bin is empty).
type PrinterConfig struct {
	Bin        string
	ControlURL string
	Timeout    time.Duration
}

// RodPrinter prints HTML to PDF through a headless Chromium. The browser is
// started on first use and shared by later calls; every call gets its own tab.
type RodPrinter struct {
	cfg PrinterConfig
	log zerolog.Logger

	mu       sync.Mutex
	browser  *rod.Browser
	launched *launcher.Launcher
	release  func(*rod.Browser, *launcher.Launcher)
}

func NewRodPrinter(cfg PrinterConfig, log zerolog.Logger) *RodPrinter {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultPrintTimeout
	}
	return &RodPrinter{cfg: cfg, log: log, release: releaseBrowser}
}

func releaseBrowser(b *rod.Browser, l *launcher.Launcher) {
	if b != nil {
		_ = b.Close()
	}
	if l != nil {
		l.Kill()
	}
}

func (p *RodPrinter) connect() (*rod.Browser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.browser != nil {
		return p.browser, nil
	}

	controlURL := p.cfg.ControlURL
	if controlURL == "" {
		l := launcher.New().Headless(true)
		if p.cfg.Bin != "" {
			l = l.Bin(p.cfg.Bin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		p.launched = l
		controlURL = u
	}

	// The browser outlives this request, so it is not bound to ctx.
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	p.browser = browser
	p.log.Info().Str("control_url", controlURL).Msg("pdf browser connected")
	return browser, nil
}

// Print renders html in a fresh tab and returns the complete PDF.
func (p *RodPrinter) Print(ctx context.Context, html, footer string) ([]byte, error) {
	browser, err := p.connect()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		p.reset()
		return nil, fmt.Errorf("open tab: %w", err)
	}
	defer func() { _ = page.Close() }()

	if err := page.SetDocumentContent(html); err != nil {
		p.resetUnlessCanceled(ctx)
		return nil, fmt.Errorf("set content: %w", err)
	}

	stream, err := page.PDF(&proto.PagePrintToPDF{
		Landscape:           true,
		PrintBackground:     true,
		DisplayHeaderFooter: true,
		HeaderTemplate:      "<span></span>",
		FooterTemplate:      footer,
		MarginTop:           ptr(0.4),
		MarginBottom:        ptr(0.6),
		MarginLeft:          ptr(0.4),
		MarginRight:         ptr(0.4),
	})
	if err != nil {
		p.resetUnlessCanceled(ctx)
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	data, err := io.ReadAll(stream)
	if err != nil {
		p.resetUnlessCanceled(ctx)
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	return data, nil
}

// reset drops a browser that stopped answering so the next call reconnects.
func (p *RodPrinter) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.browser == nil && p.launched == nil {
		return
	}
	p.release(p.browser, p.launched)
	p.browser, p.launched = nil, nil
}

// resetUnlessCanceled drops the browser after a failure the caller did not
// cause. A timed-out or canceled request says nothing about browser health.
func (p *RodPrinter) resetUnlessCanceled(ctx context.Context) {
	if ctx.Err() == nil {
		p.reset()
	}
}

// Close shuts the browser down.
func (p *RodPrinter) Close() error {
	p.reset()
	return nil
}

func ptr[T any](v T) *T { return &v }
