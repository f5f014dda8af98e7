package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/protalal11-ops/apk-forensic-toolkit/internal/log"
)

type logAdapter struct {
	debug         bool
	slowThreshold time.Duration
}

func (l *logAdapter) LogMode(logger.LogLevel) logger.Interface {
	return l
}

func (l *logAdapter) Info(_ context.Context, fmt string, v ...interface{}) {
	if l.debug {
		log.Infof("gorm: "+fmt, v...)
	}
}

func (l *logAdapter) Warn(_ context.Context, fmt string, v ...interface{}) {
	log.Warnf("gorm: "+fmt, v...)
}

func (l *logAdapter) Error(_ context.Context, fmt string, v ...interface{}) {
	log.Errorf("gorm: "+fmt, v...)
}

func (l *logAdapter) Trace(_ context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, _ := fc()
		log.Debugf("gorm: query failed (%s): %+v", sql, err)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold:
		sql, rows := fc()
		log.Debugf("gorm: slow query (%s, rows=%d): %s", elapsed, rows, sql)
	case l.debug:
		sql, rows := fc()
		log.Tracef("gorm: (%s, rows=%d): %s", elapsed, rows, sql)
	}
}
