package composition

import (
	"github.com/shopspring/decimal"

	"github.com/ivlev/price2video/internal/model"
)

// Row is a record formatted for display on a data page.
type Row struct {
	Name      string `json:"name"`
	Price     string `json:"price"`
	Unit      string `json:"unit,omitempty"`
	OneDay    string `json:"oneDay"`
	SevenDay  string `json:"sevenDay"`
	Direction int    `json:"direction"`
}

const missingChange = "--"

// Rows formats the records of a page. Prices and changes use two decimals.
func Rows(p model.Page) []Row {
	rows := make([]Row, 0, len(p.Records))
	for _, r := range p.Records {
		rows = append(rows, FormatRecord(r))
	}
	return rows
}

func FormatRecord(r model.PriceRecord) Row {
	return Row{
		Name:      r.Name,
		Price:     decimal.NewFromFloat(r.AveragePrice).StringFixed(2),
		Unit:      r.Unit,
		OneDay:    formatChange(r.ChangeOneDay),
		SevenDay:  formatChange(r.ChangeSevenDay),
		Direction: direction(r.ChangeOneDay),
	}
}

func formatChange(v *float64) string {
	if v == nil {
		return missingChange
	}
	d := decimal.NewFromFloat(*v).Round(2)
	if d.IsPositive() {
		return "+" + d.StringFixed(2)
	}
	return d.StringFixed(2)
}

func direction(v *float64) int {
	if v == nil {
		return 0
	}
	return decimal.NewFromFloat(*v).Round(2).Sign()
}
