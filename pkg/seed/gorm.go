package seed

import (
	"context"
	"time"

	cerr "github.com/cockroachdb/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// CustomerRow is the customers dimension table.
type CustomerRow struct {
	ID    int    `gorm:"primaryKey"`
	Name  string `gorm:"type:varchar(255)"`
	Email string `gorm:"type:varchar(255);uniqueIndex"`
	Phone string `gorm:"type:varchar(50)"`
}

// TableName implements gorm's Tabler.
func (CustomerRow) TableName() string { return "customers" }

// ProductRow is the products dimension table. It lives alongside the flat
// products dataset, so the table carries a suffix.
type ProductRow struct {
	ID   int    `gorm:"primaryKey"`
	SKU  string `gorm:"column:sku;type:varchar(50);uniqueIndex"`
	Name string `gorm:"type:varchar(255)"`
}

// TableName implements gorm's Tabler.
func (ProductRow) TableName() string { return "products_normalized" }

// Dimensions manages the normalized dimension tables that fact tables
// reference.
type Dimensions struct {
	db *gorm.DB
}

// OpenDimensions establishes a GORM session against the same database the
// flat writer uses.
func OpenDimensions(ctx context.Context, cfg ConnectionConfig) (*Dimensions, error) {
	database, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, cerr.Wrap(err, "open dimension session")
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, cerr.Wrap(err, "dimension connection pool")
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)

	return &Dimensions{db: database.WithContext(ctx)}, nil
}

// Migrate creates or updates the dimension tables. It must run before the
// fact table DDL so its foreign keys have something to reference.
func (d *Dimensions) Migrate() error {
	if err := d.db.AutoMigrate(&CustomerRow{}, &ProductRow{}); err != nil {
		return cerr.Wrap(err, "migrate dimension tables")
	}
	return nil
}

// Insert writes the extracted dimension rows with their assigned ids.
// Rows already present from earlier runs are skipped.
func (d *Dimensions) Insert(customers []*Customer, products []*Product) error {
	if len(customers) > 0 {
		rows := make([]CustomerRow, 0, len(customers))
		for _, c := range customers {
			rows = append(rows, CustomerRow{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone})
		}
		if err := d.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
			return cerr.Wrap(err, "insert customers")
		}
	}

	if len(products) > 0 {
		rows := make([]ProductRow, 0, len(products))
		for _, p := range products {
			rows = append(rows, ProductRow{ID: p.ID, SKU: p.SKU, Name: p.Name})
		}
		if err := d.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
			return cerr.Wrap(err, "insert products")
		}
	}
	return nil
}

// Close releases the underlying sql.DB resources.
func (d *Dimensions) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
