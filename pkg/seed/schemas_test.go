package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamesAndSchemas(t *testing.T) {
	assert.Equal(t, []string{"contacts", "sales_orders", "manufacturing_orders", "products", "invoices"}, Names())
	assert.Len(t, Schemas(), 5)
}

func TestGet(t *testing.T) {
	s, err := Get("manufacturing_orders")
	require.NoError(t, err)
	assert.Equal(t, "manufacturing_orders", s.TableName)
	assert.Equal(t, "scheduled_start", s.TimeField)

	_, err = Get("widgets")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown dataset")
	assert.Contains(t, err.Error(), "sales_orders")
}

func TestSchemaShapes(t *testing.T) {
	for _, s := range Schemas() {
		assert.Equal(t, "id", s.Fields[0].Name, s.Name)
		assert.True(t, s.Fields[0].IsSerial(), s.Name)
		assert.Contains(t, s.FieldNames(), s.TimeField, s.Name)

		for _, f := range s.Fields {
			if f.IsSerial() || f.IsTimestamp() {
				continue
			}
			assert.NotNil(t, f.Generate, "%s.%s has no generator", s.Name, f.Name)
		}
	}
}

func TestInsertColumnsSwapsDimensions(t *testing.T) {
	flat := salesOrders.InsertColumns(false)
	assert.NotContains(t, flat, "id")
	assert.Contains(t, flat, "customer_email")
	assert.Len(t, flat, len(salesOrders.Fields)-1)

	norm := salesOrders.InsertColumns(true)
	assert.NotContains(t, norm, "customer_name")
	assert.NotContains(t, norm, "customer_email")
	assert.NotContains(t, norm, "customer_phone")
	assert.Equal(t, "customer_id", norm[len(norm)-1])

	mfg := manufacturingOrders.InsertColumns(true)
	assert.NotContains(t, mfg, "product_name")
	assert.NotContains(t, mfg, "product_sku")
	assert.Equal(t, "product_id", mfg[len(mfg)-1])
}

func TestNormalizedTableName(t *testing.T) {
	assert.Equal(t, "invoices_normalized", invoices.NormalizedTableName())
}

func TestInsertColumnsPassthroughDatasets(t *testing.T) {
	// contacts and products have no dimension swap, so normalized mode
	// changes nothing
	assert.Equal(t, contacts.InsertColumns(false), contacts.InsertColumns(true))
	assert.Equal(t, products.InsertColumns(false), products.InsertColumns(true))
}
