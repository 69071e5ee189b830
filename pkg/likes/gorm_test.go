package likes

import (
	"context"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// dryRunDB returns a gorm handle that builds SQL without a server.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "user:pass@tcp(127.0.0.1:3306)/sputnik?parseTime=true",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	if err != nil {
		t.Fatalf("gorm.Open() = %v", err)
	}
	return db
}

func TestLikeModelSQL(t *testing.T) {
	db := dryRunDB(t)
	like := newLike(Event{Widget: "login", SessionID: "s1", LikedAt: time.Now()})

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return tx.Create(like)
	})
	for _, want := range []string{"INSERT INTO `likes`", "`widget`", "`session_id`", "`liked_at`", "'login'", "'s1'"} {
		if !strings.Contains(sql, want) {
			t.Errorf("insert SQL missing %q:\n%s", want, sql)
		}
	}

	count := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var n int64
		return tx.Model(&Like{}).Where("widget = ?", "login").Count(&n)
	})
	if !strings.Contains(count, "SELECT count(*) FROM `likes`") || !strings.Contains(count, "widget = 'login'") {
		t.Errorf("count SQL = %s", count)
	}
}

func TestGormLedgerCountDryRun(t *testing.T) {
	ledger := NewGormLedger(dryRunDB(t))
	n, err := ledger.Count(context.Background(), "login")
	if err != nil || n != 0 {
		t.Errorf("Count() on a dry-run handle = %d, %v", n, err)
	}
}
