// Package htmlpdf renders match reports to PDF with a headless Chrome.
package htmlpdf

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/smart-resume-matcher/internal/domain"
)

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"percent": func(v float64) string { return fmt.Sprintf("%.2f/100", v*100) },
}).Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>Job Match Report</title>
<style>
body { font-family: Arial, Helvetica, sans-serif; margin: 32px; color: #222; }
h1 { text-align: center; font-size: 20px; }
h2 { font-size: 14px; margin: 20px 0 6px; border-bottom: 1px solid #ccc; }
p, li { font-size: 12px; }
</style></head>
<body>
<h1>Job Match Report</h1>
<h2>Job Title</h2><p>{{.JobTitle}}</p>
<h2>Match Score</h2><p>{{percent .Score}}</p>
<h2>Skill Gaps</h2>
{{if .SkillGap}}<p>{{range $i, $s := .SkillGap}}{{if $i}}, {{end}}{{$s}}{{end}}</p>{{else}}<p>No skill gap</p>{{end}}
<h2>Training Recommendations</h2>
{{if .Trainings}}<ul>{{range .Trainings}}<li>{{.}}</li>{{end}}</ul>{{else}}<p>No trainings recommended.</p>{{end}}
</body></html>
`))

// RenderHTML renders the report body. Values are HTML escaped.
func RenderHTML(r domain.MatchReport) (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, r); err != nil {
		return "", fmt.Errorf("op=htmlpdf.render_html: %w", err)
	}
	return buf.String(), nil
}

// Renderer implements domain.ReportRenderer.
type Renderer struct {
	chromePath string
	timeout    time.Duration
}

// New builds a renderer. An empty chromePath lets chromedp find the browser.
func New(chromePath string, timeout time.Duration) *Renderer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Renderer{chromePath: chromePath, timeout: timeout}
}

func (r *Renderer) RenderMatchReport(ctx domain.Context, rep domain.MatchReport) ([]byte, error) {
	tracer := otel.Tracer("report.htmlpdf")
	ctx, span := tracer.Start(ctx, "htmlpdf.RenderMatchReport")
	defer span.End()

	html, err := RenderHTML(rep)
	if err != nil {
		return nil, err
	}
	pdf, err := r.htmlToPDF(ctx, html)
	if err != nil {
		span.RecordError(err)
		if ctx.Err() != nil {
			return nil, fmt.Errorf("op=htmlpdf.render: %w: %w", domain.ErrUpstreamTimeout, err)
		}
		return nil, fmt.Errorf("op=htmlpdf.render: %w: %w", domain.ErrDependency, err)
	}
	return pdf, nil
}

func (r *Renderer) htmlToPDF(ctx context.Context, html string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if r.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.chromePath))
	}
	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()
	cctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()
	runCtx, cancelRun := context.WithTimeout(cctx, r.timeout)
	defer cancelRun()

	tmpDir, err := os.MkdirTemp("", "match-report-")
	if err != nil {
		return nil, err
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()
	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o600); err != nil {
		return nil, err
	}

	var pdfBuf []byte
	err = chromedp.Run(runCtx,
		chromedp.Navigate("file://"+htmlPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// A4 in inches
			pdfBuf, _, err = page.PrintToPDF().WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuf, nil
}
