package likes

import (
	"context"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Like is one recorded like in the SQL ledger.
type Like struct {
	gorm.Model
	Widget    string    `gorm:"size:64;index"`
	SessionID string    `gorm:"size:64;index"`
	LikedAt   time.Time `gorm:"index"`
}

// GormLedger writes one Like row per event.
type GormLedger struct {
	db *gorm.DB
}

// OpenMySQL opens a gorm connection to MySQL and applies pool limits.
func OpenMySQL(dsn string, maxIdle, maxOpen int) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if maxIdle > 0 {
		sqlDB.SetMaxIdleConns(maxIdle)
	}
	if maxOpen > 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// NewGormLedger creates a ledger on db.
func NewGormLedger(db *gorm.DB) *GormLedger {
	return &GormLedger{db: db}
}

// Migrate creates or updates the likes table.
func (l *GormLedger) Migrate(ctx context.Context) error {
	return l.db.WithContext(ctx).AutoMigrate(&Like{})
}

// Record inserts a row for ev.
func (l *GormLedger) Record(ctx context.Context, ev Event) error {
	return l.db.WithContext(ctx).Create(newLike(ev)).Error
}

// Count returns the number of rows recorded for widget.
func (l *GormLedger) Count(ctx context.Context, widget string) (int64, error) {
	var n int64
	err := l.db.WithContext(ctx).Model(&Like{}).Where("widget = ?", widget).Count(&n).Error
	return n, err
}

func newLike(ev Event) *Like {
	return &Like{Widget: ev.Widget, SessionID: ev.SessionID, LikedAt: ev.LikedAt}
}
