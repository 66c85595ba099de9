package model

// PriceRecord is one row of the daily price list. Order as received defines page order.
type PriceRecord struct {
	Name           string   `json:"name" yaml:"name"`
	AveragePrice   float64  `json:"averagePrice" yaml:"averagePrice"`
	ChangeOneDay   *float64 `json:"changeOneDay,omitempty" yaml:"changeOneDay,omitempty"`
	ChangeSevenDay *float64 `json:"changeSevenDay,omitempty" yaml:"changeSevenDay,omitempty"`
	Unit           string   `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// Page is a non-empty, ordered chunk of records shown on one data page.
type Page struct {
	Index   int           `json:"index"`
	Records []PriceRecord `json:"records"`
}
