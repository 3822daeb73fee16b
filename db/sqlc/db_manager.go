package sqlc

import (
	"context"
	"database/sql"
	"time"
)

const (
	QuerierCtxTimeout = time.Second * 10
)

type DbManager struct {
	Analytics *AnalyticsManager
	db        *sql.DB
}

func NewDbManager(db *sql.DB) DbManager {
	return DbManager{
		Analytics: NewAnalyticsManager(New(db)),
		db:        db,
	}
}

func (d DbManager) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

// QuerierContext bounds a single query; callers must call cancel.
func QuerierContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, QuerierCtxTimeout)
}
