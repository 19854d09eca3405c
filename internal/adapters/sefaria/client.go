package sefaria

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"nach-yomi-bot/internal/adapters/kolhalashon"
	"nach-yomi-bot/internal/domain"
	"nach-yomi-bot/internal/infra/metrics"
)

// DefaultBaseURL — публичный API Sefaria.
const DefaultBaseURL = "https://www.sefaria.org"

const (
	userAgent = "NachYomiBot/1.0"
	cacheTTL  = 24 * time.Hour
)

// ErrNotFound возвращается, если Sefaria не знает главу.
var ErrNotFound = errors.New("sefaria: chapter not found")

// Client получает тексты глав из Sefaria.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      domain.Cache
	logger     zerolog.Logger
}

// Option настраивает клиент.
type Option func(*Client)

// WithHTTPClient подменяет HTTP-клиент.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL подменяет адрес API.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimSuffix(baseURL, "/")
		}
	}
}

// WithCache включает кэш ответов на сутки.
func WithCache(cache domain.Cache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// New создаёт клиент Sefaria.
func New(logger zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type textResponse struct {
	Ref     string          `json:"ref"`
	Book    string          `json:"book"`
	HeTitle string          `json:"heTitle"`
	He      json.RawMessage `json:"he"`
	Text    json.RawMessage `json:"text"`
	Error   string          `json:"error"`
}

// Chapter возвращает текст главы на иврите и английском без HTML-разметки.
func (c *Client) Chapter(ctx context.Context, book string, chapter int) (domain.ChapterText, error) {
	ref := fmt.Sprintf("%s.%d", kolhalashon.SefariaRef(book), chapter)
	cacheKey := "sefaria:" + ref

	if c.cache != nil {
		if raw, err := c.cache.Get(cacheKey); err == nil && len(raw) > 0 {
			var cached domain.ChapterText
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	start := time.Now()
	text, err := c.fetch(ctx, ref)
	metrics.ObserveNetworkRequest("sefaria", "texts", "sefaria", start, err)
	if err != nil {
		return domain.ChapterText{}, err
	}
	if text.Ref == "" {
		text.Ref = fmt.Sprintf("%s %d", book, chapter)
	}

	if c.cache != nil {
		if raw, err := json.Marshal(text); err == nil {
			if err := c.cache.Set(cacheKey, raw, cacheTTL); err != nil {
				c.logger.Warn().Err(err).Str("ref", ref).Msg("не удалось сохранить главу в кэш")
			}
		}
	}
	return text, nil
}

func (c *Client) fetch(ctx context.Context, ref string) (domain.ChapterText, error) {
	endpoint := fmt.Sprintf("%s/api/texts/%s?context=0&pad=0", c.baseURL, ref)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.ChapterText{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.ChapterText{}, fmt.Errorf("sefaria request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return domain.ChapterText{}, ErrNotFound
	}
	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.ChapterText{}, fmt.Errorf("sefaria error: status=%d message=%s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var body textResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.ChapterText{}, fmt.Errorf("decode response: %w", err)
	}
	if body.Error != "" {
		return domain.ChapterText{}, fmt.Errorf("%w: %s", ErrNotFound, body.Error)
	}

	hebrew, err := verses(body.He)
	if err != nil {
		return domain.ChapterText{}, fmt.Errorf("decode hebrew: %w", err)
	}
	english, err := verses(body.Text)
	if err != nil {
		return domain.ChapterText{}, fmt.Errorf("decode english: %w", err)
	}
	if len(hebrew) == 0 && len(english) == 0 {
		return domain.ChapterText{}, ErrNotFound
	}
	return domain.ChapterText{
		Ref:         body.Ref,
		HebrewTitle: body.HeTitle,
		Hebrew:      hebrew,
		English:     english,
	}, nil
}

// verses разворачивает строку или вложенные массивы строк в плоский список стихов.
func verses(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if clean := StripHTML(single); clean != "" {
			return []string{clean}, nil
		}
		return nil, nil
	}
	var nested []json.RawMessage
	if err := json.Unmarshal(raw, &nested); err != nil {
		return nil, err
	}
	var out []string
	for _, item := range nested {
		part, err := verses(item)
		if err != nil {
			return nil, err
		}
		out = append(out, part...)
	}
	return out, nil
}

// StripHTML убирает разметку и сноски Sefaria и схлопывает пробелы.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	doc.Find("sup.footnote-marker, i.footnote").Remove()
	doc.Find("br").ReplaceWithHtml(" ")
	return strings.Join(strings.Fields(doc.Text()), " ")
}

var _ domain.TextProvider = (*Client)(nil)
