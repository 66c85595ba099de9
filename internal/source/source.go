package source

import (
	"context"
	"errors"
	"strings"

	"github.com/ivlev/price2video/internal/model"
)

// ErrNoData means the query succeeded but matched no records.
var ErrNoData = errors.New("no price records for query")

// Query filters records by exact publication day and exact category.
type Query struct {
	Date     string // YYYY-MM-DD, empty for any day
	Category string // empty for all categories
}

// Fetcher acquires the ordered record list for one video.
type Fetcher interface {
	Fetch(ctx context.Context, q Query) ([]model.PriceRecord, error)
}

// apiRecord is one item of the price API response.
type apiRecord struct {
	ID        int64     `json:"id"`
	ProdName  string    `json:"prod_name"`
	ProdCat   *string   `json:"prod_cat"`
	AvgPrice  *float64  `json:"avg_price"`
	UnitInfo  *string   `json:"unit_info"`
	PubDate   *string   `json:"pub_date"`
	TrendData *apiTrend `json:"trend_data"`
}

type apiTrend struct {
	Change1D *float64 `json:"change_1d"`
	Change7D *float64 `json:"change_7d"`
}

func (a apiRecord) matches(q Query) bool {
	if q.Date != "" {
		if a.PubDate == nil || !strings.HasPrefix(*a.PubDate, q.Date) {
			return false
		}
	}
	if q.Category != "" {
		if a.ProdCat == nil || *a.ProdCat != q.Category {
			return false
		}
	}
	return true
}

// toRecords keeps input order and drops rows without a name or average price.
func toRecords(items []apiRecord, q Query) []model.PriceRecord {
	out := make([]model.PriceRecord, 0, len(items))
	for _, it := range items {
		name := strings.TrimSpace(it.ProdName)
		if name == "" || it.AvgPrice == nil || !it.matches(q) {
			continue
		}
		rec := model.PriceRecord{
			Name:         name,
			AveragePrice: *it.AvgPrice,
		}
		if it.UnitInfo != nil {
			rec.Unit = strings.TrimSpace(*it.UnitInfo)
		}
		if it.TrendData != nil {
			rec.ChangeOneDay = it.TrendData.Change1D
			rec.ChangeSevenDay = it.TrendData.Change7D
		}
		out = append(out, rec)
	}
	return out
}
