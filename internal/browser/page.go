package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

const (
	viewportWidth  = 1280
	viewportHeight = 800

	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/120.0.0.0 Safari/537.36"
)

// Page drives one headless Chrome tab. With remoteWS set it attaches to a
// Browserless instance; otherwise it launches a local browser.
type Page struct {
	ctx     context.Context
	cancels []context.CancelFunc
}

// NewPage opens a browser tab. Callers must Close it.
func NewPage(ctx context.Context, remoteWS string) (*Page, error) {
	var cancels []context.CancelFunc

	allocCtx := ctx
	if remoteWS != "" {
		var cancel context.CancelFunc
		allocCtx, cancel = chromedp.NewRemoteAllocator(ctx, remoteWS)
		cancels = append(cancels, cancel)
	} else {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.NoSandbox,
			chromedp.UserAgent(userAgent),
		)
		var cancel context.CancelFunc
		allocCtx, cancel = chromedp.NewExecAllocator(ctx, opts...)
		cancels = append(cancels, cancel)
	}

	tabCtx, cancel := chromedp.NewContext(allocCtx)
	cancels = append(cancels, cancel)

	if err := chromedp.Run(tabCtx, chromedp.EmulateViewport(viewportWidth, viewportHeight)); err != nil {
		for i := len(cancels) - 1; i >= 0; i-- {
			cancels[i]()
		}
		return nil, fmt.Errorf("open browser tab: %w", err)
	}

	return &Page{ctx: tabCtx, cancels: cancels}, nil
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	return p.run(ctx, chromedp.Navigate(url))
}

func (p *Page) Click(ctx context.Context, x, y int) error {
	return p.run(ctx, chromedp.MouseClickXY(float64(x), float64(y)))
}

// Type sends keystrokes to the currently focused element.
func (p *Page) Type(ctx context.Context, text string) error {
	return p.run(ctx, chromedp.KeyEvent(text))
}

// ScrollBy scrolls the window by dy pixels (negative scrolls up).
func (p *Page) ScrollBy(ctx context.Context, dy int) error {
	return p.run(ctx, chromedp.Evaluate(fmt.Sprintf("window.scrollBy(0, %d)", dy), nil))
}

func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := p.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, err
	}
	return buf, nil
}

func (p *Page) Sleep(ctx context.Context, d time.Duration) error {
	return p.run(ctx, chromedp.Sleep(d))
}

func (p *Page) Close() {
	for i := len(p.cancels) - 1; i >= 0; i-- {
		p.cancels[i]()
	}
}

func (p *Page) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(p.ctx, actions...)
}
