package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RemoteMenuEntry is one menu entry as it arrives over the wire.
// Price is a decimal-formatted string such as "12.50".
type RemoteMenuEntry struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Price string `json:"price"`
}

// MenuRecord is the persisted and displayed form of a menu entry
type MenuRecord struct {
	ID    int64   `gorm:"primaryKey;column:id;autoIncrement:false" json:"id"`
	Title string  `gorm:"column:title;type:text;not null" json:"title"`
	Price float64 `gorm:"column:price;not null" json:"price"`
}

// TableName returns the table name for MenuRecord
func (MenuRecord) TableName() string {
	return "menu_items"
}

// FormattedPrice renders the price with two decimals
func (r MenuRecord) FormattedPrice() string {
	return fmt.Sprintf("%.2f", r.Price)
}

// ParseError reports a wire price that is not a decimal number
type ParseError struct {
	ID    int64
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid price %q for menu item %d: %v", e.Value, e.ID, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ToRecord normalizes the entry into a MenuRecord.
// The price is parsed independently of the host locale: '.' is the only
// decimal separator accepted.
func (e RemoteMenuEntry) ToRecord() (MenuRecord, error) {
	d, err := decimal.NewFromString(e.Price)
	if err != nil {
		return MenuRecord{}, &ParseError{ID: e.ID, Value: e.Price, Err: err}
	}
	price, _ := d.Float64()
	return MenuRecord{
		ID:    e.ID,
		Title: e.Title,
		Price: price,
	}, nil
}

// ToRecords maps entries in order and stops at the first unparsable price
func ToRecords(entries []RemoteMenuEntry) ([]MenuRecord, error) {
	records := make([]MenuRecord, 0, len(entries))
	for _, e := range entries {
		r, err := e.ToRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}
