package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/ivlev/price2video/internal/model"
)

const (
	defaultLimit   = 1000
	defaultTimeout = 30 * time.Second
	pricesPath     = "/api/prices"
)

// HTTPFetcher reads records from the price API with trend data enabled.
type HTTPFetcher struct {
	BaseURL string
	Limit   int
	Client  *http.Client
}

func NewHTTPFetcher(baseURL string) *HTTPFetcher {
	return &HTTPFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Limit:   defaultLimit,
		Client:  &http.Client{Timeout: defaultTimeout},
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, q Query) ([]model.PriceRecord, error) {
	reqURL, err := f.buildURL(q)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("price api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("price api status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var items []apiRecord
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode price api response: %w", err)
	}

	recs := toRecords(items, q)
	logx.WithContext(ctx).Infof("source: fetched %d/%d records date=%q category=%q", len(recs), len(items), q.Date, q.Category)
	if len(recs) == 0 {
		return nil, ErrNoData
	}
	return recs, nil
}

func (f *HTTPFetcher) buildURL(q Query) (string, error) {
	u, err := url.Parse(f.BaseURL + pricesPath)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	v := url.Values{}
	v.Set("trending", "true")
	v.Set("limit", strconv.Itoa(limit))
	if q.Date != "" {
		v.Set("date_from", q.Date)
		v.Set("date_to", q.Date)
	}
	if q.Category != "" {
		v.Set("prod_cat", q.Category)
	}
	u.RawQuery = v.Encode()
	return u.String(), nil
}
