package seed

import (
	"math/rand"
	"time"
)

// Record is one generated row, keyed by column name. Column order for
// inserts comes from the schema, not the map.
type Record map[string]any

// Generator produces records for one schema from a seeded source: the same
// seed, schema and date range always yield the same data.
type Generator struct {
	schema *Schema
	rng    *rand.Rand
	start  time.Time
	end    time.Time
}

// NewGenerator builds a generator. Zero start/end default to the last 365
// days.
func NewGenerator(schema *Schema, seed int64, start, end time.Time) *Generator {
	now := time.Now()
	if start.IsZero() {
		start = now.AddDate(0, 0, -365)
	}
	if end.IsZero() {
		end = now
	}
	return &Generator{
		schema: schema,
		rng:    rand.New(rand.NewSource(seed)),
		start:  start,
		end:    end,
	}
}

// Record generates a single row. The schema's time field lands uniformly in
// the configured range; other timestamp columns trail it by up to 30 days.
// Nullable columns go null roughly a fifth of the time.
func (g *Generator) Record() Record {
	rec := make(Record, len(g.schema.Fields))
	var base time.Time

	for _, f := range g.schema.Fields {
		if f.IsSerial() {
			continue
		}

		switch {
		case f.Name == g.schema.TimeField:
			base = g.timeInRange()
			rec[f.Name] = base
		case f.IsTimestamp():
			if !base.IsZero() {
				rec[f.Name] = base.AddDate(0, 0, randInt(g.rng, 0, 30))
			} else {
				rec[f.Name] = g.timeInRange()
			}
		default:
			rec[f.Name] = f.Generate(g.rng)
		}

		if f.Nullable && randInt(g.rng, 1, 10) <= 2 {
			rec[f.Name] = nil
		}
	}
	return rec
}

// Batch generates n records.
func (g *Generator) Batch(n int) []Record {
	records := make([]Record, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, g.Record())
	}
	return records
}

func (g *Generator) timeInRange() time.Time {
	span := g.end.Sub(g.start)
	if span <= 0 {
		return g.start
	}
	return g.start.Add(time.Duration(g.rng.Int63n(int64(span))))
}
