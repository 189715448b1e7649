// Package seed generates demo business data for the stack's analytics
// databases: five relational datasets with deterministic, seedable record
// generation, a flat Postgres write path, and an optional normalized mode
// that extracts customer and product dimension tables.
package seed

import (
	"fmt"
	"math/rand"
	"strings"

	cerr "github.com/cockroachdb/errors"
)

// FieldDef describes one column: its SQL type and how to generate a value.
// Timestamp fields leave Generate nil; the generator fills them relative to
// the schema's time field.
type FieldDef struct {
	Name     string
	SQLType  string
	Nullable bool
	Generate func(r *rand.Rand) any
}

// IsSerial reports whether the column is auto-incremented and therefore
// never generated or inserted.
func (f FieldDef) IsSerial() bool {
	return strings.Contains(f.SQLType, "SERIAL")
}

// IsTimestamp reports whether the generator should derive the value from
// the record's time field.
func (f FieldDef) IsTimestamp() bool {
	return f.SQLType == "TIMESTAMP"
}

// Schema is one seedable dataset.
type Schema struct {
	Name        string
	TableName   string
	Description string
	// TimeField anchors the record in the requested date range; other
	// timestamp columns are offset from it.
	TimeField string
	Fields    []FieldDef
}

// FieldNames returns all column names in definition order.
func (s *Schema) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}

// InsertColumns returns the column order for INSERT statements, excluding
// auto-increment ids. In normalized mode the denormalized dimension columns
// are replaced by the foreign key.
func (s *Schema) InsertColumns(normalized bool) []string {
	drop, fk := dimensionSwap(s.Name)
	dropped := make(map[string]bool, len(drop))
	if normalized {
		for _, name := range drop {
			dropped[name] = true
		}
	}

	cols := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f.IsSerial() || dropped[f.Name] {
			continue
		}
		cols = append(cols, f.Name)
	}
	if normalized && fk != "" {
		cols = append(cols, fk)
	}
	return cols
}

// NormalizedTableName is the fact-table name used in normalized mode.
func (s *Schema) NormalizedTableName() string {
	return s.TableName + "_normalized"
}

// dimensionSwap returns the denormalized columns a dataset sheds in
// normalized mode and the foreign key that replaces them.
func dimensionSwap(dataset string) (drop []string, fk string) {
	switch dataset {
	case "sales_orders", "invoices":
		return []string{"customer_name", "customer_email", "customer_phone"}, "customer_id"
	case "manufacturing_orders":
		return []string{"product_name", "product_sku"}, "product_id"
	}
	return nil, ""
}

var contacts = &Schema{
	Name:        "contacts",
	TableName:   "contacts",
	Description: "Customer and business contacts",
	TimeField:   "created_at",
	Fields: []FieldDef{
		{Name: "id", SQLType: "SERIAL PRIMARY KEY"},
		{Name: "first_name", SQLType: "VARCHAR(100)", Generate: func(r *rand.Rand) any { return firstName(r) }},
		{Name: "last_name", SQLType: "VARCHAR(100)", Generate: func(r *rand.Rand) any { return lastName(r) }},
		{Name: "email", SQLType: "VARCHAR(255)", Generate: func(r *rand.Rand) any { return email(r) }},
		{Name: "phone", SQLType: "VARCHAR(50)", Generate: func(r *rand.Rand) any { return phone(r) }},
		{Name: "company", SQLType: "VARCHAR(255)", Generate: func(r *rand.Rand) any { return company(r) }},
		{Name: "job_title", SQLType: "VARCHAR(255)", Generate: func(r *rand.Rand) any { return jobTitle(r) }},
		{Name: "address", SQLType: "VARCHAR(255)", Generate: func(r *rand.Rand) any { return streetAddress(r) }},
		{Name: "city", SQLType: "VARCHAR(100)", Generate: func(r *rand.Rand) any { return city(r) }},
		{Name: "state", SQLType: "VARCHAR(50)", Generate: func(r *rand.Rand) any { return stateAbbr(r) }},
		{Name: "postal_code", SQLType: "VARCHAR(20)", Generate: func(r *rand.Rand) any { return postcode(r) }},
		{Name: "country", SQLType: "VARCHAR(100)", Generate: func(r *rand.Rand) any { return country(r) }},
		{Name: "created_at", SQLType: "TIMESTAMP"},
		{Name: "updated_at", SQLType: "TIMESTAMP"},
	},
}

var salesOrders = &Schema{
	Name:        "sales_orders",
	TableName:   "sales_orders",
	Description: "Sales order records",
	TimeField:   "order_date",
	Fields: []FieldDef{
		{Name: "id", SQLType: "SERIAL PRIMARY KEY"},
		{Name: "order_number", SQLType: "VARCHAR(50) UNIQUE", Generate: func(r *rand.Rand) any { return "ORD-" + hexToken(r, 12) }},
		{Name: "customer_name", SQLType: "VARCHAR(255)", Generate: func(r *rand.Rand) any { return fullName(r) }},
		{Name: "customer_email", SQLType: "VARCHAR(255)", Generate: func(r *rand.Rand) any { return email(r) }},
		{Name: "customer_phone", SQLType: "VARCHAR(50)", Generate: func(r *rand.Rand) any { return phone(r) }},
		{Name: "order_date", SQLType: "TIMESTAMP"},
		{Name: "ship_date", SQLType: "TIMESTAMP", Nullable: true},
		{Name: "status", SQLType: "VARCHAR(50)", Generate: func(r *rand.Rand) any { return pick(r, orderStatuses) }},
		{Name: "subtotal", SQLType: "DECIMAL(12,2)", Generate: func(r *rand.Rand) any { return randFloat(r, 10, 1000, 2) }},
		{Name: "tax", SQLType: "DECIMAL(12,2)", Generate: func(r *rand.Rand) any { return randFloat(r, 1, 100, 2) }},
		{Name: "shipping", SQLType: "DECIMAL(12,2)", Generate: func(r *rand.Rand) any { return randFloat(r, 5, 50, 2) }},
		{Name: "total", SQLType: "DECIMAL(12,2)", Generate: func(r *rand.Rand) any { return randFloat(r, 20, 1200, 2) }},
		{Name: "shipping_address", SQLType: "VARCHAR(255)", Generate: func(r *rand.Rand) any { return streetAddress(r) }},
		{Name: "shipping_city", SQLType: "VARCHAR(100)", Generate: func(r *rand.Rand) any { return city(r) }},
		{Name: "shipping_state", SQLType: "VARCHAR(50)", Generate: func(r *rand.Rand) any { return stateAbbr(r) }},
		{Name: "shipping_postal_code", SQLType: "VARCHAR(20)", Generate: func(r *rand.Rand) any { return postcode(r) }},
		{Name: "payment_method", SQLType: "VARCHAR(50)", Generate: func(r *rand.Rand) any { return pick(r, paymentMethods) }},
		{Name: "notes", SQLType: "TEXT", Nullable: true, Generate: func(r *rand.Rand) any { return text(r, 200) }},
		{Name: "created_at", SQLType: "TIMESTAMP"},
	},
}

var manufacturingOrders = &Schema{
	Name:        "manufacturing_orders",
	TableName:   "manufacturing_orders",
	Description: "Production work orders",
	TimeField:   "scheduled_start",
	Fields: []FieldDef{
		{Name: "id", SQLType: "SERIAL PRIMARY KEY"},
		{Name: "work_order_number", SQLType: "VARCHAR(50) UNIQUE", Generate: func(r *rand.Rand) any { return "WO-" + hexToken(r, 12) }},
		{Name: "product_name", SQLType: "VARCHAR(255)", Generate: func(r *rand.Rand) any { return catchPhrase(r) }},
		{Name: "product_sku", SQLType: "VARCHAR(50)", Generate: func(r *rand.Rand) any { return "SKU-" + hexToken(r, 10) }},
		{Name: "quantity", SQLType: "INTEGER", Generate: func(r *rand.Rand) any { return randInt(r, 1, 1000) }},
		{Name: "unit_of_measure", SQLType: "VARCHAR(50)", Generate: func(r *rand.Rand) any { return pick(r, unitsOfMeasure) }},
		{Name: "scheduled_start", SQLType: "TIMESTAMP"},
		{Name: "scheduled_end", SQLType: "TIMESTAMP"},
		{Name: "actual_start", SQLType: "TIMESTAMP", Nullable: true},
		{Name: "actual_end", SQLType: "TIMESTAMP", Nullable: true},
		{Name: "status", SQLType: "VARCHAR(50)", Generate: func(r *rand.Rand) any { return pick(r, manufacturingStatuses) }},
		{Name: "priority", SQLType: "VARCHAR(20)", Generate: func(r *rand.Rand) any { return pick(r, priorities) }},
		{Name: "assigned_to", SQLType: "VARCHAR(255)", Generate: func(r *rand.Rand) any { return fullName(r) }},
		{Name: "work_center", SQLType: "VARCHAR(50)", Generate: func(r *rand.Rand) any { return workCenter(r) }},
		{Name: "notes", SQLType: "TEXT", Nullable: true, Generate: func(r *rand.Rand) any { return text(r, 200) }},
		{Name: "created_at", SQLType: "TIMESTAMP"},
	},
}

var products = &Schema{
	Name:        "products",
	TableName:   "products",
	Description: "Product catalog and inventory",
	TimeField:   "created_at",
	Fields: []FieldDef{
		{Name: "id", SQLType: "SERIAL PRIMARY KEY"},
		{Name: "sku", SQLType: "VARCHAR(50) UNIQUE", Generate: func(r *rand.Rand) any { return "SKU-" + hexToken(r, 10) }},
		{Name: "name", SQLType: "VARCHAR(255)", Generate: func(r *rand.Rand) any { return catchPhrase(r) }},
		{Name: "description", SQLType: "TEXT", Generate: func(r *rand.Rand) any { return text(r, 500) }},
		{Name: "category", SQLType: "VARCHAR(100)", Generate: func(r *rand.Rand) any { return pick(r, productCategories) }},
		{Name: "unit_price", SQLType: "DECIMAL(12,2)", Generate: func(r *rand.Rand) any { return randFloat(r, 5, 500, 2) }},
		{Name: "cost_price", SQLType: "DECIMAL(12,2)", Generate: func(r *rand.Rand) any { return randFloat(r, 2, 300, 2) }},
		{Name: "quantity_on_hand", SQLType: "INTEGER", Generate: func(r *rand.Rand) any { return randInt(r, 0, 1000) }},
		{Name: "reorder_level", SQLType: "INTEGER", Generate: func(r *rand.Rand) any { return randInt(r, 5, 100) }},
		{Name: "supplier_name", SQLType: "VARCHAR(255)", Generate: func(r *rand.Rand) any { return company(r) }},
		{Name: "supplier_contact", SQLType: "VARCHAR(255)", Generate: func(r *rand.Rand) any { return email(r) }},
		{Name: "is_active", SQLType: "BOOLEAN", Generate: func(r *rand.Rand) any { return r.Intn(100) < 90 }},
		{Name: "created_at", SQLType: "TIMESTAMP"},
		{Name: "updated_at", SQLType: "TIMESTAMP"},
	},
}

var invoices = &Schema{
	Name:        "invoices",
	TableName:   "invoices",
	Description: "Financial invoices and payments",
	TimeField:   "invoice_date",
	Fields: []FieldDef{
		{Name: "id", SQLType: "SERIAL PRIMARY KEY"},
		{Name: "invoice_number", SQLType: "VARCHAR(50) UNIQUE", Generate: func(r *rand.Rand) any { return "INV-" + hexToken(r, 12) }},
		{Name: "customer_name", SQLType: "VARCHAR(255)", Generate: func(r *rand.Rand) any { return fullName(r) }},
		{Name: "customer_email", SQLType: "VARCHAR(255)", Generate: func(r *rand.Rand) any { return email(r) }},
		{Name: "invoice_date", SQLType: "TIMESTAMP"},
		{Name: "due_date", SQLType: "TIMESTAMP"},
		{Name: "status", SQLType: "VARCHAR(50)", Generate: func(r *rand.Rand) any { return pick(r, invoiceStatuses) }},
		{Name: "line_items_json", SQLType: "TEXT", Generate: func(r *rand.Rand) any { return lineItemsJSON(r) }},
		{Name: "subtotal", SQLType: "DECIMAL(12,2)", Generate: func(r *rand.Rand) any { return randFloat(r, 50, 5000, 2) }},
		{Name: "tax_rate", SQLType: "DECIMAL(5,4)", Generate: func(r *rand.Rand) any { return randFloat(r, 0, 0.15, 4) }},
		{Name: "tax_amount", SQLType: "DECIMAL(12,2)", Generate: func(r *rand.Rand) any { return randFloat(r, 5, 500, 2) }},
		{Name: "total", SQLType: "DECIMAL(12,2)", Generate: func(r *rand.Rand) any { return randFloat(r, 55, 5500, 2) }},
		{Name: "payment_date", SQLType: "TIMESTAMP", Nullable: true},
		{Name: "payment_method", SQLType: "VARCHAR(50)", Nullable: true, Generate: func(r *rand.Rand) any { return pick(r, paymentMethods) }},
		{Name: "notes", SQLType: "TEXT", Nullable: true, Generate: func(r *rand.Rand) any { return text(r, 200) }},
		{Name: "created_at", SQLType: "TIMESTAMP"},
	},
}

func workCenter(r *rand.Rand) string {
	return fmt.Sprintf("WC-%02d", randInt(r, 1, 20))
}

// Datasets in presentation order.
var datasets = []*Schema{contacts, salesOrders, manufacturingOrders, products, invoices}

// Schemas returns every seedable dataset in presentation order.
func Schemas() []*Schema {
	return append([]*Schema(nil), datasets...)
}

// Names returns the dataset names in presentation order.
func Names() []string {
	names := make([]string, 0, len(datasets))
	for _, s := range datasets {
		names = append(names, s.Name)
	}
	return names
}

// Get looks up a dataset by name.
func Get(name string) (*Schema, error) {
	for _, s := range datasets {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, cerr.Newf("unknown dataset %q (available: %s)", name, strings.Join(Names(), ", "))
}
