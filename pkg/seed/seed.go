package seed

import (
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_io"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/shared"
)

const (
	// DefaultCount is the number of records generated when none is given.
	DefaultCount = 1000

	// DefaultBatchSize is the number of records per insert transaction.
	DefaultBatchSize = 100
)

// Options configures a seeding run.
type Options struct {
	Dataset   string
	Count     int
	BatchSize int
	Seed      int64
	Start     time.Time
	End       time.Time
	Normalize bool
	Clear     bool
	Config    ConnectionConfig
}

// Summary reports what a seeding run accomplished.
type Summary struct {
	Dataset   string
	Table     string
	Requested int
	Inserted  int64
	Total     int64
	Customers int
	Products  int
	Config    ConnectionConfig
}

// Run generates records for one dataset and loads them into Postgres. In
// normalized mode the customer and product dimensions are extracted and
// inserted before the fact rows that reference them.
func Run(rc *metis_io.RuntimeContext, opts Options) (*Summary, error) {
	logger := otelzap.Ctx(rc.Ctx)

	schema, err := Get(opts.Dataset)
	if err != nil {
		return nil, err
	}
	if opts.Count <= 0 {
		opts.Count = DefaultCount
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if !opts.Start.IsZero() && !opts.End.IsZero() && !opts.End.After(opts.Start) {
		return nil, cerr.New("end date must be after start date")
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	cfg := opts.Config
	if cfg == (ConnectionConfig{}) {
		cfg = ConfigFromEnv()
	}

	table := schema.TableName
	if opts.Normalize {
		table = schema.NormalizedTableName()
	}

	logger.Info("Seeding dataset",
		zap.String("dataset", schema.Name),
		zap.String("table", table),
		zap.Int("count", opts.Count),
		zap.Bool("normalize", opts.Normalize))

	pg, err := Open(rc, cfg)
	if err != nil {
		return nil, err
	}
	defer shared.SafeClose(rc.Log, pg)

	if opts.Clear {
		clearTables(rc, pg, table, opts.Normalize)
	}

	var dims *Dimensions
	if opts.Normalize {
		dims, err = OpenDimensions(rc.Ctx, cfg)
		if err != nil {
			return nil, err
		}
		defer shared.SafeClose(rc.Log, dims)

		if err := dims.Migrate(); err != nil {
			return nil, err
		}
	}

	if err := pg.CreateTable(rc.Ctx, schema, opts.Normalize); err != nil {
		return nil, err
	}

	gen := NewGenerator(schema, seed, opts.Start, opts.End)
	summary := &Summary{
		Dataset:   schema.Name,
		Table:     table,
		Requested: opts.Count,
		Config:    cfg,
	}

	if opts.Normalize {
		if err := runNormalized(rc, pg, dims, gen, schema, opts, summary); err != nil {
			return nil, err
		}
	} else {
		if err := runFlat(rc, pg, gen, schema, opts, summary); err != nil {
			return nil, err
		}
	}

	total, err := pg.Count(rc.Ctx, table)
	if err != nil {
		return nil, err
	}
	summary.Total = total

	logger.Info("Seed complete",
		zap.String("table", table),
		zap.Int64("inserted", summary.Inserted),
		zap.Int64("total", total))
	return summary, nil
}

// clearTables drops the target table, plus the dimension tables in
// normalized mode. Missing tables are not an error.
func clearTables(rc *metis_io.RuntimeContext, pg *Postgres, table string, normalized bool) {
	logger := otelzap.Ctx(rc.Ctx)
	logger.Info("Clearing existing data", zap.String("table", table))

	tables := []string{table}
	if normalized {
		tables = append(tables, "customers", "products_normalized")
	}
	for _, t := range tables {
		if err := pg.Drop(rc.Ctx, t); err != nil {
			logger.Debug("Drop failed", zap.String("table", t), zap.Error(err))
		}
	}
}

// runFlat generates and inserts batches in a single streaming pass.
func runFlat(rc *metis_io.RuntimeContext, pg *Postgres, gen *Generator, schema *Schema, opts Options, summary *Summary) error {
	logger := otelzap.Ctx(rc.Ctx)

	for produced := 0; produced < opts.Count; {
		n := opts.BatchSize
		if remaining := opts.Count - produced; remaining < n {
			n = remaining
		}
		inserted, err := pg.InsertBatch(rc.Ctx, schema, gen.Batch(n), false)
		if err != nil {
			return err
		}
		produced += n
		summary.Inserted += inserted
		logger.Debug("Batch inserted",
			zap.Int("produced", produced),
			zap.Int64("inserted", summary.Inserted))
	}
	return nil
}

// runNormalized generates everything up front so the dimensions are complete
// before any fact row that references them is written.
func runNormalized(rc *metis_io.RuntimeContext, pg *Postgres, dims *Dimensions, gen *Generator, schema *Schema, opts Options, summary *Summary) error {
	logger := otelzap.Ctx(rc.Ctx)
	norm := NewNormalizer()

	var batches [][]Record
	for produced := 0; produced < opts.Count; {
		n := opts.BatchSize
		if remaining := opts.Count - produced; remaining < n {
			n = remaining
		}
		batch := gen.Batch(n)
		for i, rec := range batch {
			batch[i] = norm.Normalize(schema.Name, rec)
		}
		batches = append(batches, batch)
		produced += n
	}

	customers := norm.Customers()
	products := norm.Products()
	if err := dims.Insert(customers, products); err != nil {
		return err
	}
	summary.Customers = len(customers)
	summary.Products = len(products)
	logger.Info("Inserted dimension rows",
		zap.Int("customers", len(customers)),
		zap.Int("products", len(products)))

	for _, batch := range batches {
		inserted, err := pg.InsertBatch(rc.Ctx, schema, batch, true)
		if err != nil {
			return err
		}
		summary.Inserted += inserted
		logger.Debug("Batch inserted", zap.Int64("inserted", summary.Inserted))
	}
	return nil
}
