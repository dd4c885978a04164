package service

import (
	"AI-Content-Creator-Backend/internal/logging"
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-pdf/fpdf"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

const (
	ContentPlaceholder = "{{GENERATED_CONTENT}}"
	FreeWatermark      = `<div class="watermark">نسخة مجانية</div>`
	bodyFont           = "body"
)

const DefaultPDFTemplate = `<!DOCTYPE html>
<html lang="ar" dir="rtl">
<head><meta charset="utf-8"><title>content</title></head>
<body>
` + FreeWatermark + `
<div class="content">` + ContentPlaceholder + `</div>
</body>
</html>`

var blankLines = regexp.MustCompile(`\n\s*\n+`)

type PDFService struct {
	template string
	fontPath string
	policy   *bluemonday.Policy
}

// NewPDFService loads the HTML template from templatePath, falling back to
// DefaultPDFTemplate when the file does not exist. fontPath names a UTF-8 TTF
// font; without it the core Arial font is used, which cannot draw Arabic.
func NewPDFService(templatePath, fontPath string) (*PDFService, error) {
	log := logging.Named("pdf")
	tmpl := DefaultPDFTemplate
	if templatePath != "" {
		data, err := os.ReadFile(templatePath)
		switch {
		case err == nil:
			tmpl = string(data)
		case os.IsNotExist(err):
			log.Warn("pdf template not found, using built-in template", zap.String("path", templatePath))
		default:
			return nil, fmt.Errorf("read pdf template '%s': %w", templatePath, err)
		}
	}
	if !strings.Contains(tmpl, ContentPlaceholder) {
		return nil, fmt.Errorf("pdf template has no %s placeholder", ContentPlaceholder)
	}
	if fontPath != "" {
		if _, err := os.Stat(fontPath); err != nil {
			log.Error("pdf font not available, falling back to Arial; Arabic text will not render",
				zap.String("path", fontPath), zap.Error(err))
			fontPath = ""
		}
	} else {
		log.Error("no pdf font configured, using Arial; Arabic text will not render")
	}
	return &PDFService{template: tmpl, fontPath: fontPath, policy: bluemonday.UGCPolicy()}, nil
}

// ComposeHTML places sanitized content into the template. Paid documents
// lose the free-version watermark.
func (s *PDFService) ComposeHTML(content string, free bool) string {
	html := strings.Replace(s.template, ContentPlaceholder, s.policy.Sanitize(content), 1)
	if !free {
		html = strings.ReplaceAll(html, FreeWatermark, "")
	}
	return html
}

// HTMLToText extracts the visible body text of an HTML document.
func HTMLToText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	doc.Find("head, script, style").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, h1, h2, h3, h4, h5, h6").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})

	text := strings.ReplaceAll(doc.Text(), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(text), nil
}

func (s *PDFService) Render(content string, free bool) ([]byte, error) {
	text, err := HTMLToText(s.ComposeHTML(content, free))
	if err != nil {
		return nil, fmt.Errorf("%w: extract text: %v", ErrRender, err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	if s.fontPath != "" {
		pdf.AddUTF8Font(bodyFont, "", s.fontPath)
		pdf.RTL()
		pdf.AddPage()
		pdf.SetFont(bodyFont, "", 12)
	} else {
		pdf.AddPage()
		pdf.SetFont("Arial", "", 12)
	}
	pdf.MultiCell(0, 10, text, "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	return buf.Bytes(), nil
}
