package sales

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var displayPrinter = message.NewPrinter(language.English)

// FormatAmount renders a money amount with thousand separators and two
// decimals for report and receipt strings.
func FormatAmount(v float64) string {
	return displayPrinter.Sprintf("%v", number.Decimal(Round2(v), number.Scale(2)))
}

// Report summarizes the sale history over a date range.
type Report struct {
	Sales       []Sale  `json:"sales"`
	SaleCount   int     `json:"saleCount"`
	TotalAmount float64 `json:"totalAmount"`
	Average     float64 `json:"average"`
	// Display strings, preformatted for the summary cards.
	TotalDisplay   string `json:"totalDisplay"`
	AverageDisplay string `json:"averageDisplay"`
}

// Report builds the date-filtered sales report. Zero bounds are open.
// Sales are listed newest first.
func (s *Service) Report(from, to time.Time) Report {
	matched := s.repo.Between(from, to)

	total := 0.0
	for _, sale := range matched {
		total += sale.Total
	}
	average := 0.0
	if len(matched) > 0 {
		average = total / float64(len(matched))
	}

	// Newest first for the listing.
	reversed := make([]Sale, len(matched))
	for i, sale := range matched {
		reversed[len(matched)-1-i] = sale
	}

	return Report{
		Sales:          reversed,
		SaleCount:      len(matched),
		TotalAmount:    Round2(total),
		Average:        Round2(average),
		TotalDisplay:   FormatAmount(total),
		AverageDisplay: FormatAmount(average),
	}
}
