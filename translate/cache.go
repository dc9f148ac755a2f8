package translate

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/glebarez/sqlite"
	"github.com/ristryder/ts2ass/interfaces"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// TranslationEntry is one cached translation.
type TranslationEntry struct {
	CreatedAt      time.Time
	SourceLanguage string `gorm:"primaryKey;size:16"`
	SourceText     string `gorm:"primaryKey"`
	TargetLanguage string `gorm:"primaryKey;size:16"`
	TranslatedText string `gorm:"not null"`
}

// Cache remembers translations in a SQLite database so reruns over the same
// recording, and repeated lines within it, do not hit the translator again.
type Cache struct {
	db         *gorm.DB
	from       string
	hits       atomic.Int64
	logger     *slog.Logger
	misses     atomic.Int64
	to         string
	translator interfaces.Translator
}

// OpenCache opens or creates the cache database at path. ":memory:" keeps the
// cache for the lifetime of the process only.
func OpenCache(path string, from string, to string, translator interfaces.Translator, log *slog.Logger) (*Cache, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	db, openErr := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if openErr != nil {
		return nil, errors.Wrapf(openErr, "failed to open translation cache %s", path)
	}

	sqlDB, sqlErr := db.DB()
	if sqlErr != nil {
		return nil, errors.Wrap(sqlErr, "failed to get translation cache connection")
	}

	//A single connection keeps in-memory databases shared and serializes writers
	sqlDB.SetMaxOpenConns(1)

	if migrateErr := db.AutoMigrate(&TranslationEntry{}); migrateErr != nil {
		_ = sqlDB.Close()

		return nil, errors.Wrap(migrateErr, "failed to migrate translation cache")
	}

	return &Cache{
		db:         db,
		from:       from,
		logger:     log.With(slog.String("cache", path)),
		to:         to,
		translator: translator,
	}, nil
}

func (c *Cache) Close() error {
	sqlDB, sqlErr := c.db.DB()
	if sqlErr != nil {
		return errors.Wrap(sqlErr, "failed to get translation cache connection")
	}

	c.logger.Debug("translation cache closed",
		slog.Int64("hits", c.hits.Load()),
		slog.Int64("misses", c.misses.Load()),
	)

	return sqlDB.Close()
}

func (c *Cache) Stats() (hits int64, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Translate returns the cached translation or asks the wrapped translator.
// Failed translations are not cached. Cache errors are logged and bypassed.
func (c *Cache) Translate(ctx context.Context, text string) (string, error) {
	var entry TranslationEntry

	findErr := c.db.WithContext(ctx).
		Where(map[string]any{"source_language": c.from, "source_text": text, "target_language": c.to}).
		Take(&entry).Error
	if findErr == nil {
		c.hits.Add(1)

		return entry.TranslatedText, nil
	}

	if !errors.Is(findErr, gorm.ErrRecordNotFound) {
		c.logger.Warn("translation cache lookup failed", slog.String("error", findErr.Error()))
	}

	c.misses.Add(1)

	translated, translateErr := c.translator.Translate(ctx, text)
	if translateErr != nil {
		return "", translateErr
	}

	entry = TranslationEntry{SourceLanguage: c.from, SourceText: text, TargetLanguage: c.to, TranslatedText: translated}
	if createErr := c.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error; createErr != nil {
		c.logger.Warn("failed to store translation", slog.String("error", createErr.Error()))
	}

	return translated, nil
}
