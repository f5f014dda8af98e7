package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/presenter/html"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/presenter/models"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/log"
)

const DefaultTimeout = time.Minute

// Config controls the headless browser used to print the HTML report.
type Config struct {
	ChromePath string        // empty means chromedp looks the browser up itself
	Timeout    time.Duration // zero means DefaultTimeout
	Landscape  bool
}

type printFunc func(ctx context.Context, document []byte, cfg Config) ([]byte, error)

// Presenter prints the HTML report to PDF with a headless Chrome/Chromium.
type Presenter struct {
	document models.Document
	config   Config
	print    printFunc
}

func NewPresenter(doc models.Document, cfg Config) *Presenter {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Presenter{
		document: doc,
		config:   cfg,
		print:    printToPDF,
	}
}

func (p *Presenter) Present(output io.Writer) error {
	var rendered bytes.Buffer
	if err := html.NewPresenter(p.document).Present(&rendered); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.config.Timeout)
	defer cancel()

	data, err := p.print(ctx, rendered.Bytes(), p.config)
	if err != nil {
		return fmt.Errorf("unable to print PDF report (a Chrome or Chromium browser is required, the html format needs none): %w", err)
	}

	_, err = output.Write(data)
	return err
}

func printToPDF(ctx context.Context, document []byte, cfg Config) ([]byte, error) {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ChromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(log.Debugf))
	defer cancelBrowser()

	var out []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, string(document)).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithLandscape(cfg.Landscape).
				Do(ctx)
			if err != nil {
				return err
			}
			out = data
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}
