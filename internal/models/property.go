package models

import "time"

// Record types stored in the properties table.
const (
	RecordTypeSale    = "sale"
	RecordTypeListing = "listing"
)

// PropertyRecord is a single row of either dataset: a historical sale or a
// current listing. SaleDate is only set for sales; AreaSqm is set when the
// source row carried a usable area or one could be extracted from the
// listing text.
type PropertyRecord struct {
	ID           int64      `json:"id"`
	RecordType   string     `json:"record_type"`
	Address      string     `json:"address"`
	Suburb       string     `json:"suburb"`
	Postcode     string     `json:"postcode"`
	Price        float64    `json:"price"`
	AreaSqm      *float64   `json:"area_sqm"`
	Bedrooms     *int       `json:"bedrooms"`
	Bathrooms    *int       `json:"bathrooms"`
	Parking      *int       `json:"parking"`
	PropertyType string     `json:"property_type"`
	SaleDate     *time.Time `json:"sale_date"`
	Source       string     `json:"source"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TableName maps the record onto the shared properties table.
func (PropertyRecord) TableName() string {
	return "properties"
}

// HasValidPrice reports whether the record may contribute to price
// aggregates. Records without a positive price never enter a mean or median,
// not even as a count.
func (p *PropertyRecord) HasValidPrice() bool {
	return p.Price > 0
}

// PricePerSqm returns the derived price per square meter. The second return
// is false when the record has no usable price or area.
func (p *PropertyRecord) PricePerSqm() (float64, bool) {
	if !p.HasValidPrice() || p.AreaSqm == nil || *p.AreaSqm <= 0 {
		return 0, false
	}
	return p.Price / *p.AreaSqm, true
}

// District is a named group of suburbs used to slice reports, e.g. the
// beachside suburbs vs. the harbour suburbs.
type District struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Suburbs []string `json:"suburbs"`
}
