package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"issue-classifier/internal/domain/entity"
	"issue-classifier/internal/domain/port"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.5-flash"
)

const promptTemplate = `You are helping citizens report municipal issues.
Analyze this image showing a %s and write a brief, clear description (2-3 sentences) that would help municipal workers understand and locate the issue.

Include:
- What the issue looks like (size, severity if visible)
- Any notable details that would help workers identify or fix it
- Keep it factual and objective

Do NOT include:
- Location details (those are captured separately)
- Speculation about causes
- Demands or complaints

Just provide the description text, no quotes or prefixes.`

// Options configures the Gemini describer.
type Options struct {
	APIKey           string
	BaseURL          string
	Model            string
	Timeout          time.Duration
	Retries          uint64
	MaxResponseBytes int64
}

// Describer calls the Gemini generateContent API with the photo inlined.
type Describer struct {
	apiKey           string
	baseURL          string
	model            string
	client           *http.Client
	retries          uint64
	backoff          time.Duration
	maxResponseBytes int64
}

// New creates a describer. It returns nil when no API key is configured,
// which disables description generation.
func New(opts Options) *Describer {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxResponseBytes <= 0 {
		opts.MaxResponseBytes = 1 << 20
	}
	return &Describer{
		apiKey:           opts.APIKey,
		baseURL:          strings.TrimRight(opts.BaseURL, "/"),
		model:            opts.Model,
		client:           &http.Client{Timeout: opts.Timeout},
		retries:          opts.Retries,
		backoff:          500 * time.Millisecond,
		maxResponseBytes: opts.MaxResponseBytes,
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Describe asks the model for a short description of the photo.
func (d *Describer) Describe(ctx context.Context, img *entity.SourceImage, issue entity.IssueType) (string, error) {
	if d == nil {
		return "", entity.ErrDescriberDisabled
	}
	if img == nil || len(img.Data) == 0 {
		return "", fmt.Errorf("%w: empty image", entity.ErrImageDecode)
	}

	mimeType := img.ContentType
	if mimeType == "" {
		mimeType = http.DetectContentType(img.Data)
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: fmt.Sprintf(promptTemplate, issue.Label())},
				{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(img.Data)}},
			},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal gemini request: %w", err)
	}

	var text string
	b := retry.WithMaxRetries(d.retries, retry.NewExponential(d.backoff))
	err = retry.Do(ctx, b, func(ctx context.Context) error {
		t, err := d.generate(ctx, body)
		if err != nil {
			return err
		}
		text = t
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", entity.ErrDescriberUpstream, err)
	}
	return text, nil
}

func (d *Describer) generate(ctx context.Context, body []byte) (string, error) {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", d.baseURL, url.PathEscape(d.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", d.apiKey)

	resp, err := d.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("call gemini: %w", err)
		}
		return "", retry.RetryableError(fmt.Errorf("call gemini: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, d.maxResponseBytes+1))
	if err != nil {
		return "", fmt.Errorf("read gemini response: %w", err)
	}
	if int64(len(respBody)) > d.maxResponseBytes {
		return "", fmt.Errorf("gemini response exceeded limit (%d bytes)", d.maxResponseBytes)
	}

	if resp.StatusCode >= 400 {
		var errBody errorResponse
		msg := resp.Status
		if json.Unmarshal(respBody, &errBody) == nil && errBody.Error.Message != "" {
			msg = fmt.Sprintf("%s (status=%s)", errBody.Error.Message, errBody.Error.Status)
		}
		err := fmt.Errorf("gemini error: %s", msg)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", retry.RetryableError(err)
		}
		return "", err
	}

	var out generateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}

	var sb strings.Builder
	for _, c := range out.Candidates {
		for _, p := range c.Content.Parts {
			sb.WriteString(p.Text)
		}
		if sb.Len() > 0 {
			break
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("gemini response had no text")
	}
	return text, nil
}

var _ port.IssueDescriber = (*Describer)(nil)
