package sales

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballbuild/pos/internal/catalog"
	"github.com/ballbuild/pos/internal/users"
)

func productFixture() catalog.Product {
	return catalog.Product{ID: 3, Name: "Roof Sheet", BoxQty: 12, RetailPrice: 60, WholesalePrice: 50}
}

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestReportDateRange(t *testing.T) {
	repo := NewRepository([]Sale{
		{ID: 1, Date: day("2025-03-01"), Total: 100},
		{ID: 2, Date: day("2025-03-05"), Total: 250},
		{ID: 3, Date: day("2025-03-20"), Total: 50},
	}, nil)
	service := &Service{cart: NewCart(), repo: repo}

	report := service.Report(day("2025-03-02"), day("2025-03-10"))
	assert.Equal(t, 1, report.SaleCount)
	assert.Equal(t, 250.0, report.TotalAmount)

	report = service.Report(time.Time{}, time.Time{})
	assert.Equal(t, 3, report.SaleCount)
	assert.Equal(t, 400.0, report.TotalAmount)
	assert.InDelta(t, 133.33, report.Average, 0.01)
	assert.Equal(t, "400.00", report.TotalDisplay)

	// Newest first.
	require.Len(t, report.Sales, 3)
	assert.Equal(t, 3, report.Sales[0].ID)
}

func TestReceiptRendering(t *testing.T) {
	sale := Sale{
		ID:   7,
		Date: day("2025-03-05"),
		Items: []Line{
			line(productFixture(), 2, UnitBox, TierWholesale, 10),
		},
		Total:  1080,
		Seller: users.User{FullName: "Sales Staff", Username: "user"}.View(),
	}

	receipt := Receipt("Ball Build Supply", sale)
	assert.Contains(t, receipt, "Receipt #7")
	assert.Contains(t, receipt, "Sales Staff")
	assert.Contains(t, receipt, "[wholesale]")
	assert.Contains(t, receipt, "-10%")
	assert.Contains(t, receipt, "TOTAL: 1,080.00")
}
