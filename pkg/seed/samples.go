package seed

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/google/uuid"
)

// Curated sample pools for record generation. Values are drawn with the
// generator's seeded source, so a fixed --seed reproduces identical data.

var firstNames = []string{
	"James", "Mary", "Robert", "Patricia", "John", "Jennifer", "Michael",
	"Linda", "David", "Elizabeth", "William", "Barbara", "Richard", "Susan",
	"Joseph", "Jessica", "Thomas", "Sarah", "Charles", "Karen", "Daniel",
	"Lisa", "Matthew", "Nancy", "Anthony", "Betty", "Mark", "Margaret",
	"Amara", "Wei", "Priya", "Hiroshi", "Fatima", "Lars", "Ingrid", "Diego",
	"Chloe", "Ahmed", "Yuki", "Olga",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller",
	"Davis", "Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez",
	"Wilson", "Anderson", "Thomas", "Taylor", "Moore", "Jackson", "Martin",
	"Lee", "Perez", "Thompson", "White", "Harris", "Sanchez", "Clark",
	"Nguyen", "Okafor", "Tanaka", "Larsen", "Kowalski", "Silva", "Haddad",
}

var companyWords = []string{
	"Acme", "Apex", "Atlas", "Beacon", "Cascade", "Cobalt", "Crestline",
	"Driftwood", "Everbright", "Foundry", "Granite", "Harbor", "Ironwood",
	"Keystone", "Lakeshore", "Meridian", "Northwind", "Oakfield", "Pinnacle",
	"Quarry", "Redwood", "Summit", "Tidewater", "Vanguard", "Westbrook",
}

var companySuffixes = []string{
	"Industries", "Logistics", "Manufacturing", "Holdings", "Supply Co",
	"Group", "Partners", "Works", "Trading", "Labs", "Systems", "Dynamics",
}

var jobTitles = []string{
	"Operations Manager", "Account Executive", "Procurement Specialist",
	"Supply Chain Analyst", "Production Supervisor", "Quality Engineer",
	"Warehouse Coordinator", "Sales Director", "Financial Controller",
	"Logistics Planner", "Customer Success Manager", "Plant Manager",
	"Inventory Analyst", "Field Technician", "Regional Buyer",
}

var streetNames = []string{
	"Maple", "Oak", "Cedar", "Elm", "Pine", "Washington", "Lake", "Hill",
	"Park", "Main", "Church", "High", "Mill", "Walnut", "Spring", "River",
}

var streetTypes = []string{"St", "Ave", "Rd", "Blvd", "Ln", "Dr", "Way", "Ct"}

var cities = []string{
	"Springfield", "Riverton", "Fairview", "Kingston", "Burlington",
	"Clayton", "Georgetown", "Salem", "Bristol", "Ashland", "Dover",
	"Hudson", "Milton", "Newport", "Oxford", "Clinton", "Dayton", "Auburn",
	"Lexington", "Madison", "Franklin", "Chester", "Marion", "Troy",
}

var stateAbbrs = []string{
	"AL", "AZ", "CA", "CO", "FL", "GA", "IL", "IN", "MA", "MD", "MI", "MN",
	"MO", "NC", "NJ", "NV", "NY", "OH", "OR", "PA", "TN", "TX", "UT", "VA",
	"WA", "WI",
}

var countries = []string{
	"United States", "Canada", "United Kingdom", "Germany", "France",
	"Australia", "Japan", "Brazil", "Mexico", "Netherlands", "Sweden",
	"Spain", "Italy", "Poland", "Ireland", "New Zealand", "Singapore",
	"South Korea", "Norway", "Denmark",
}

var emailDomains = []string{
	"example.com", "example.org", "example.net", "mail.example.com",
	"corp.example.com",
}

// Buzzword pools in the classic adjective/descriptor/noun arrangement.
var phraseAdjectives = []string{
	"Adaptive", "Balanced", "Compact", "Digitized", "Ergonomic", "Focused",
	"Integrated", "Modular", "Optimized", "Polarized", "Reactive", "Robust",
	"Seamless", "Streamlined", "Synergistic", "Universal", "Versatile",
}

var phraseDescriptors = []string{
	"composite", "contextual", "dedicated", "dynamic", "encompassing",
	"grid-enabled", "high-level", "hybrid", "incremental", "logistical",
	"modular", "multi-state", "national", "regional", "scalable",
	"systematic", "zero-defect",
}

var phraseNouns = []string{
	"alliance", "architecture", "array", "capability", "circuit", "concept",
	"framework", "hardware", "infrastructure", "installation", "interface",
	"matrix", "paradigm", "pricing structure", "solution", "throughput",
	"workforce",
}

var loremWords = []string{
	"inventory", "shipment", "forecast", "quarterly", "review", "priority",
	"customer", "requested", "expedited", "delivery", "pending", "approval",
	"warehouse", "transfer", "scheduled", "confirmed", "backorder",
	"supplier", "quote", "follow", "up", "required", "invoice", "terms",
	"net", "thirty", "standard", "packaging", "fragile", "handle", "care",
	"dock", "receiving", "hours", "weekday", "mornings", "only", "contact",
	"before", "dispatch",
}

var orderStatuses = []string{"pending", "processing", "shipped", "delivered", "cancelled"}

var manufacturingStatuses = []string{"planned", "in_progress", "completed", "on_hold", "cancelled"}

var invoiceStatuses = []string{"draft", "sent", "paid", "overdue", "cancelled"}

var priorities = []string{"low", "medium", "high", "urgent"}

var paymentMethods = []string{"credit_card", "debit_card", "bank_transfer", "paypal", "check", "cash"}

var unitsOfMeasure = []string{"each", "box", "case", "pallet", "kg", "lb", "liter", "gallon"}

var productCategories = []string{
	"Electronics", "Clothing", "Home & Garden", "Sports", "Automotive",
	"Books", "Toys", "Health", "Food & Beverage", "Office Supplies",
}

func pick(r *rand.Rand, options []string) string {
	return options[r.Intn(len(options))]
}

// randInt returns a uniform int in [min, max].
func randInt(r *rand.Rand, min, max int) int {
	return min + r.Intn(max-min+1)
}

// randFloat returns a uniform float in [min, max) rounded to digits places.
func randFloat(r *rand.Rand, min, max float64, digits int) float64 {
	pow := math.Pow10(digits)
	v := min + r.Float64()*(max-min)
	return math.Round(v*pow) / pow
}

// hexToken returns n uppercase hex characters, in the style of a UUID
// prefix.
func hexToken(r *rand.Rand, n int) string {
	const hexDigits = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(hexDigits[r.Intn(len(hexDigits))])
	}
	return b.String()
}

func firstName(r *rand.Rand) string { return pick(r, firstNames) }
func lastName(r *rand.Rand) string  { return pick(r, lastNames) }

func fullName(r *rand.Rand) string {
	return firstName(r) + " " + lastName(r)
}

func email(r *rand.Rand) string {
	return fmt.Sprintf("%s.%s%d@%s",
		strings.ToLower(firstName(r)),
		strings.ToLower(lastName(r)),
		randInt(r, 1, 999),
		pick(r, emailDomains))
}

func phone(r *rand.Rand) string {
	return fmt.Sprintf("(%03d) %03d-%04d", randInt(r, 200, 999), randInt(r, 200, 999), r.Intn(10000))
}

func company(r *rand.Rand) string {
	return pick(r, companyWords) + " " + pick(r, companySuffixes)
}

func jobTitle(r *rand.Rand) string { return pick(r, jobTitles) }

func streetAddress(r *rand.Rand) string {
	return fmt.Sprintf("%d %s %s", randInt(r, 1, 9999), pick(r, streetNames), pick(r, streetTypes))
}

func city(r *rand.Rand) string      { return pick(r, cities) }
func stateAbbr(r *rand.Rand) string { return pick(r, stateAbbrs) }

func postcode(r *rand.Rand) string {
	return fmt.Sprintf("%05d", randInt(r, 1000, 99999))
}

func country(r *rand.Rand) string { return pick(r, countries) }

func catchPhrase(r *rand.Rand) string {
	return pick(r, phraseAdjectives) + " " + pick(r, phraseDescriptors) + " " + pick(r, phraseNouns)
}

// text builds a short note capped at maxChars characters.
func text(r *rand.Rand, maxChars int) string {
	var b strings.Builder
	for b.Len() < maxChars {
		word := pick(r, loremWords)
		if b.Len()+len(word)+2 > maxChars {
			break
		}
		if b.Len() == 0 {
			word = strings.ToUpper(word[:1]) + word[1:]
		} else {
			b.WriteByte(' ')
		}
		b.WriteString(word)
	}
	b.WriteByte('.')
	return b.String()
}

// lineItemsJSON renders 1-5 invoice line items as a JSON array string. Item
// ids come from the seeded source so runs stay reproducible.
func lineItemsJSON(r *rand.Rand) string {
	type lineItem struct {
		ItemID      string  `json:"item_id"`
		Description string  `json:"description"`
		Quantity    int     `json:"quantity"`
		UnitPrice   float64 `json:"unit_price"`
	}
	items := make([]lineItem, randInt(r, 1, 5))
	for i := range items {
		items[i] = lineItem{
			ItemID:      itemID(r),
			Description: catchPhrase(r),
			Quantity:    randInt(r, 1, 10),
			UnitPrice:   randFloat(r, 10, 500, 2),
		}
	}
	out, _ := json.Marshal(items)
	return string(out)
}

// itemID draws a v4 UUID from the deterministic source.
func itemID(r *rand.Rand) string {
	id, err := uuid.NewRandomFromReader(r)
	if err != nil {
		return "ITEM-" + hexToken(r, 12)
	}
	return id.String()
}
