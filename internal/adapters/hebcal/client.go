package hebcal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"nach-yomi-bot/internal/domain"
	"nach-yomi-bot/internal/infra/metrics"
)

// DefaultBaseURL — конвертер дат Hebcal.
const DefaultBaseURL = "https://www.hebcal.com"

// ErrEmptyDate возвращается, если Hebcal не вернул дату.
var ErrEmptyDate = errors.New("hebcal: empty hebrew date")

// Client переводит григорианскую дату в еврейскую.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New создаёт клиент. Пустой baseURL означает публичный Hebcal.
func New(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimSuffix(baseURL, "/"), httpClient: httpClient}
}

// HebrewDate возвращает дату вида «כ״ח שְׁבָט תשפ״ו».
func (c *Client) HebrewDate(ctx context.Context, date domain.Date) (string, error) {
	start := time.Now()
	out, err := c.convert(ctx, date)
	metrics.ObserveNetworkRequest("hebcal", "converter", "hebcal", start, err)
	return out, err
}

func (c *Client) convert(ctx context.Context, date domain.Date) (string, error) {
	q := url.Values{}
	q.Set("cfg", "json")
	q.Set("gy", strconv.Itoa(date.Year))
	q.Set("gm", strconv.Itoa(int(date.Month)))
	q.Set("gd", strconv.Itoa(date.Day))
	q.Set("g2h", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/converter?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("hebcal request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("hebcal error: status=%d", resp.StatusCode)
	}

	var body struct {
		Hebrew string `json:"hebrew"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if strings.TrimSpace(body.Hebrew) == "" {
		return "", ErrEmptyDate
	}
	return body.Hebrew, nil
}

var _ domain.CalendarProvider = (*Client)(nil)
