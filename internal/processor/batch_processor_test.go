package processor

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"eastlens/server/config"
	"eastlens/server/internal/models"
	"eastlens/server/internal/queue"
)

func testDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&models.PropertyRecord{}))
	return db
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.BatchProcessing.ProcessorCount = 2
	cfg.BatchProcessing.MaxRetries = 2
	cfg.BatchProcessing.RetryDelay = 0
	return cfg
}

func TestNewBatchProcessor(t *testing.T) {
	db := testDB(t)
	q := queue.NewRecordQueue(10, logrus.New())
	cfg := testConfig()
	log := logrus.New()

	p := NewBatchProcessor(db, q, cfg, log)

	assert.NotNil(t, p)
	assert.Equal(t, db, p.db)
	assert.Equal(t, q, p.queue)
	assert.Equal(t, cfg, p.config)
	assert.Equal(t, log, p.logger)
}

func TestBatchProcessor_ProcessBatch(t *testing.T) {
	db := testDB(t)
	q := queue.NewRecordQueue(10, logrus.New())
	p := NewBatchProcessor(db, q, testConfig(), logrus.New())

	batch := []*models.PropertyRecord{
		{RecordType: models.RecordTypeSale, Postcode: "2026", Suburb: "Bondi", Price: 1500000},
		{RecordType: models.RecordTypeListing, Postcode: "2031", Suburb: "Coogee", Price: 1200000},
	}

	err := p.processBatch(batch)
	assert.NoError(t, err)

	var count int64
	db.Model(&models.PropertyRecord{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestBatchProcessor_ProcessBatchRetriesThenFails(t *testing.T) {
	// A database without the properties table makes every attempt fail.
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	assert.NoError(t, err)

	q := queue.NewRecordQueue(10, logrus.New())
	p := NewBatchProcessor(db, q, testConfig(), logrus.New())

	batch := []*models.PropertyRecord{{Postcode: "2026", Price: 1}}
	err = p.processBatch(batch)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to process batch after 2 attempts")
}

func TestBatchProcessor_EndToEnd(t *testing.T) {
	db := testDB(t)
	log := logrus.New()
	q := queue.NewRecordQueue(10, log)
	p := NewBatchProcessor(db, q, testConfig(), log)

	p.Start()
	q.Start()

	err := q.Push([]*models.PropertyRecord{
		{RecordType: models.RecordTypeSale, Postcode: "2026", Price: 1400000},
	})
	assert.NoError(t, err)

	assert.Eventually(t, func() bool {
		var count int64
		db.Model(&models.PropertyRecord{}).Count(&count)
		return count == 1
	}, 2*time.Second, 20*time.Millisecond)

	p.Stop()
	assert.NoError(t, q.Close())
}
