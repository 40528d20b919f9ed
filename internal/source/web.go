package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	readability "github.com/go-shiori/go-readability"
	"github.com/pfrederiksen/activity-intake/internal/logger"
)

// minArticleChars is the shortest readability result preferred over the
// whole page body
const minArticleChars = 200

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.code)
}

type webClient struct {
	client *http.Client
	cfg    Config
}

func newWebClient(cfg Config) *webClient {
	return &webClient{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
	}
}

type page struct {
	body        []byte
	contentType string
	finalURL    *url.URL
}

// get fetches u, retrying transport failures and 5xx responses with
// exponential backoff. The body is cut at MaxBodySize.
func (w *webClient) get(ctx context.Context, u string) (*page, error) {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = w.cfg.RetryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(w.cfg.MaxRetries)), ctx)

	var p *page
	err := backoff.Retry(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("User-Agent", UserAgent)

		resp, err := w.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			serr := &statusError{code: resp.StatusCode}
			if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
				return serr
			}
			return backoff.Permanent(serr)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, w.cfg.MaxBodySize))
		if err != nil {
			return fmt.Errorf("reading body: %w", err)
		}
		p = &page{
			body:        body,
			contentType: resp.Header.Get("Content-Type"),
			finalURL:    resp.Request.URL,
		}
		return nil
	}, policy)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (e *Extractor) extractURL(ctx context.Context, u string) (*Result, error) {
	pageURL, err := url.Parse(u)
	if err != nil {
		return nil, &Error{Kind: KindURL, Source: u, Op: "parse", Err: err}
	}

	p, err := e.web.get(ctx, u)
	if err != nil {
		return nil, &Error{Kind: KindURL, Source: u, Op: "fetch", Err: err}
	}
	if p.finalURL != nil {
		pageURL = p.finalURL
	}

	res := &Result{Kind: KindURL, SourceURL: u}
	res.Metadata.ContentType = p.contentType
	res.Metadata.Size = int64(len(p.body))

	if !isHTML(p.contentType) {
		res.Text = clipRunes(cleanText(string(p.body)), e.cfg.MaxTextLength)
		return res, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(p.body))
	if err != nil {
		return nil, &Error{Kind: KindURL, Source: u, Op: "parse", Err: fmt.Errorf("parsing HTML: %w", err)}
	}

	res.Metadata.Title = pageTitle(doc)
	res.Metadata.Description = strings.TrimSpace(doc.Find(`meta[name="description"]`).AttrOr("content", ""))
	res.Images = imageURLs(doc, pageURL)

	text := articleText(p.body, pageURL)
	if len([]rune(text)) < minArticleChars {
		doc.Find("script, style, noscript").Remove()
		body := doc.Find("body")
		if body.Length() == 0 {
			body = doc.Selection
		}
		text = cleanText(body.Text())
	}

	if e.ocr != nil || e.cfg.EnableQR {
		ocrText, codes := e.scanImages(ctx, res.Images)
		if ocrText != "" {
			text = text + "\n" + ocrText
		}
		res.QRCodes = codes
	}

	res.Text = clipRunes(text, e.cfg.MaxTextLength)
	return res, nil
}

// articleText returns the readability main content of a page, or "" when
// readability finds none
func articleText(body []byte, pageURL *url.URL) string {
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil || article.Node == nil {
		return ""
	}
	return cleanText(goquery.NewDocumentFromNode(article.Node).Text())
}

func pageTitle(doc *goquery.Document) string {
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

// imageURLs returns the distinct absolute image URLs of the page in
// document order
func imageURLs(doc *goquery.Document, base *url.URL) []string {
	var out []string
	seen := make(map[string]bool)
	doc.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
		src := strings.TrimSpace(sel.AttrOr("src", ""))
		if src == "" || strings.HasPrefix(src, "data:") {
			return
		}
		ref, err := url.Parse(src)
		if err != nil {
			return
		}
		abs := ref.String()
		if base != nil {
			abs = base.ResolveReference(ref).String()
		}
		if !seen[abs] {
			seen[abs] = true
			out = append(out, abs)
		}
	})
	return out
}

// scanImages downloads up to MaxImages images once each, returning their
// recognized text and decoded QR payloads. Failures are logged and skipped.
func (e *Extractor) scanImages(ctx context.Context, images []string) (string, []string) {
	if len(images) > e.cfg.MaxImages {
		images = images[:e.cfg.MaxImages]
	}

	var (
		parts []string
		codes []string
	)
	for _, img := range images {
		p, err := e.web.get(ctx, img)
		if err != nil {
			e.log.Warn("image download skipped", logger.Fields{"image": img, "error": err.Error()})
			continue
		}

		if e.cfg.EnableQR {
			codes = append(codes, e.decodeQR(img, bytes.NewReader(p.body))...)
		}
		if e.ocr == nil {
			continue
		}
		text, err := e.ocrBytes(ctx, p.body)
		if err != nil {
			e.log.Warn("image ocr skipped", logger.Fields{"image": img, "error": err.Error()})
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n"), codes
}

// ocrBytes writes an image to a temp file for the OCR engine
func (e *Extractor) ocrBytes(ctx context.Context, body []byte) (string, error) {
	f, err := os.CreateTemp("", "activity-intake-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(body); err != nil {
		f.Close()
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	return e.ocr.Recognize(ctx, f.Name())
}

func isHTML(contentType string) bool {
	ct := strings.ToLower(contentType)
	return ct == "" || strings.Contains(ct, "html") || strings.Contains(ct, "xml")
}

// cleanText trims every line, splits phrases on double spaces and drops
// empty chunks
func cleanText(s string) string {
	var chunks []string
	for _, line := range strings.Split(s, "\n") {
		for _, phrase := range strings.Split(strings.TrimSpace(line), "  ") {
			if phrase = strings.TrimSpace(phrase); phrase != "" {
				chunks = append(chunks, phrase)
			}
		}
	}
	return strings.Join(chunks, "\n")
}

func clipRunes(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n])
}
