package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ivlev/price2video/internal/model"
)

// FileFetcher reads a saved price API response from disk.
type FileFetcher struct {
	Path string
}

func NewFileFetcher(path string) *FileFetcher {
	return &FileFetcher{Path: path}
}

func (f *FileFetcher) Fetch(ctx context.Context, q Query) ([]model.PriceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read price file: %w", err)
	}

	var items []apiRecord
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse price file %s: %w", f.Path, err)
	}

	recs := toRecords(items, q)
	if len(recs) == 0 {
		return nil, ErrNoData
	}
	return recs, nil
}
