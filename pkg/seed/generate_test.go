package seed

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorIsDeterministic(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	a := NewGenerator(salesOrders, 42, start, end).Batch(25)
	b := NewGenerator(salesOrders, 42, start, end).Batch(25)
	assert.Equal(t, a, b)

	c := NewGenerator(salesOrders, 43, start, end).Batch(25)
	assert.NotEqual(t, a, c)
}

func TestGeneratorOmitsSerialColumns(t *testing.T) {
	rec := NewGenerator(contacts, 1, time.Time{}, time.Time{}).Record()

	assert.NotContains(t, rec, "id")
	assert.Len(t, rec, len(contacts.Fields)-1)
}

func TestGeneratorTimeFieldWithinRange(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	gen := NewGenerator(salesOrders, 7, start, end)

	for _, rec := range gen.Batch(100) {
		orderDate, ok := rec["order_date"].(time.Time)
		require.True(t, ok)
		assert.False(t, orderDate.Before(start))
		assert.True(t, orderDate.Before(end))

		// other timestamps trail the time field by up to 30 days
		created, ok := rec["created_at"].(time.Time)
		require.True(t, ok)
		assert.False(t, created.Before(orderDate))
		assert.True(t, created.Before(orderDate.AddDate(0, 0, 31)))

		if rec["ship_date"] != nil {
			ship, ok := rec["ship_date"].(time.Time)
			require.True(t, ok)
			assert.False(t, ship.Before(orderDate))
		}
	}
}

func TestGeneratorNullableColumns(t *testing.T) {
	gen := NewGenerator(invoices, 11, time.Time{}, time.Time{})

	nulls := 0
	for _, rec := range gen.Batch(200) {
		if rec["payment_date"] == nil {
			nulls++
		}
		assert.NotNil(t, rec["invoice_number"])
		assert.NotNil(t, rec["invoice_date"])
	}
	assert.Greater(t, nulls, 0)
	assert.Less(t, nulls, 200)
}

func TestGeneratorDefaultRangeIsLastYear(t *testing.T) {
	now := time.Now()
	rec := NewGenerator(contacts, 9, time.Time{}, time.Time{}).Record()

	created, ok := rec["created_at"].(time.Time)
	require.True(t, ok)
	assert.True(t, created.After(now.AddDate(0, 0, -366)))
	assert.True(t, created.Before(now.Add(time.Minute)))
}

func TestGeneratorFieldFormats(t *testing.T) {
	rec := NewGenerator(salesOrders, 3, time.Time{}, time.Time{}).Record()

	assert.Regexp(t, `^ORD-[0-9A-F]{12}$`, rec["order_number"])
	assert.Regexp(t, `^\(\d{3}\) \d{3}-\d{4}$`, rec["customer_phone"])
	assert.Regexp(t, `^\d{5}$`, rec["shipping_postal_code"])
	assert.Contains(t, rec["customer_email"], "@")
	assert.Contains(t, orderStatuses, rec["status"])

	subtotal, ok := rec["subtotal"].(float64)
	require.True(t, ok)
	assert.GreaterOrEqual(t, subtotal, 10.0)
	assert.LessOrEqual(t, subtotal, 1000.0)

	mfg := NewGenerator(manufacturingOrders, 3, time.Time{}, time.Time{}).Record()
	assert.Regexp(t, `^WO-[0-9A-F]{12}$`, mfg["work_order_number"])
	assert.Regexp(t, `^SKU-[0-9A-F]{10}$`, mfg["product_sku"])
	assert.Regexp(t, `^WC-\d{2}$`, mfg["work_center"])
}

func TestGeneratorLineItems(t *testing.T) {
	rec := NewGenerator(invoices, 5, time.Time{}, time.Time{}).Record()

	raw, ok := rec["line_items_json"].(string)
	require.True(t, ok)

	var items []struct {
		ItemID      string  `json:"item_id"`
		Description string  `json:"description"`
		Quantity    int     `json:"quantity"`
		UnitPrice   float64 `json:"unit_price"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &items))
	require.NotEmpty(t, items)
	assert.LessOrEqual(t, len(items), 5)
	for _, item := range items {
		assert.Regexp(t, `^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`, item.ItemID)
		assert.NotEmpty(t, item.Description)
		assert.Greater(t, item.Quantity, 0)
		assert.Greater(t, item.UnitPrice, 0.0)
	}
}
