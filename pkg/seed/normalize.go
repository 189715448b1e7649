package seed

// Customer is an extracted dimension row, keyed by email across the run.
type Customer struct {
	ID    int
	Name  string
	Email string
	Phone string
}

// Product is an extracted dimension row, keyed by SKU across the run.
type Product struct {
	ID   int
	SKU  string
	Name string
}

// Normalizer turns flat records into fact rows referencing extracted
// customer and product dimensions. IDs are assigned in first-seen order.
type Normalizer struct {
	byEmail   map[string]*Customer
	bySKU     map[string]*Product
	customers []*Customer
	products  []*Product
}

func NewNormalizer() *Normalizer {
	return &Normalizer{
		byEmail: make(map[string]*Customer),
		bySKU:   make(map[string]*Product),
	}
}

// Normalize copies the record, swapping denormalized dimension columns for
// foreign keys. Records of datasets without a dimension swap pass through
// unchanged.
func (n *Normalizer) Normalize(dataset string, rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}

	switch dataset {
	case "sales_orders", "invoices":
		if id, ok := n.extractCustomer(rec); ok {
			out["customer_id"] = id
			delete(out, "customer_name")
			delete(out, "customer_email")
			delete(out, "customer_phone")
		}
	case "manufacturing_orders":
		if id, ok := n.extractProduct(rec); ok {
			out["product_id"] = id
			delete(out, "product_name")
			delete(out, "product_sku")
		}
	}
	return out
}

func (n *Normalizer) extractCustomer(rec Record) (int, bool) {
	email, _ := rec["customer_email"].(string)
	if email == "" {
		return 0, false
	}
	if c, ok := n.byEmail[email]; ok {
		return c.ID, true
	}

	name, _ := rec["customer_name"].(string)
	phone, _ := rec["customer_phone"].(string)
	c := &Customer{
		ID:    len(n.customers) + 1,
		Name:  name,
		Email: email,
		Phone: phone,
	}
	n.byEmail[email] = c
	n.customers = append(n.customers, c)
	return c.ID, true
}

func (n *Normalizer) extractProduct(rec Record) (int, bool) {
	sku, _ := rec["product_sku"].(string)
	if sku == "" {
		sku, _ = rec["sku"].(string)
	}
	if sku == "" {
		return 0, false
	}
	if p, ok := n.bySKU[sku]; ok {
		return p.ID, true
	}

	name, _ := rec["product_name"].(string)
	if name == "" {
		name, _ = rec["name"].(string)
	}
	p := &Product{
		ID:   len(n.products) + 1,
		SKU:  sku,
		Name: name,
	}
	n.bySKU[sku] = p
	n.products = append(n.products, p)
	return p.ID, true
}

// Customers returns the extracted dimension rows in first-seen order.
func (n *Normalizer) Customers() []*Customer {
	return append([]*Customer(nil), n.customers...)
}

// Products returns the extracted dimension rows in first-seen order.
func (n *Normalizer) Products() []*Product {
	return append([]*Product(nil), n.products...)
}

// Reset clears all extracted state.
func (n *Normalizer) Reset() {
	n.byEmail = make(map[string]*Customer)
	n.bySKU = make(map[string]*Product)
	n.customers = nil
	n.products = nil
}
