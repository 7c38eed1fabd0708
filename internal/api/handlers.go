package api

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"eastlens/server/config"
	"eastlens/server/internal/analysis"
	"eastlens/server/internal/cache"
	"eastlens/server/internal/chatbot"
	"eastlens/server/internal/database"
	"eastlens/server/internal/export"
	"eastlens/server/internal/importer"
	"eastlens/server/internal/models"
	"eastlens/server/internal/queue"
	"eastlens/server/internal/telegram"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	db              *database.Database
	logger          *logrus.Logger
	cfg             *config.Config
	store           *cache.Store
	engine          *analysis.Engine
	bot             *chatbot.Bot
	importer        *importer.Importer
	telegramService *telegram.Service
}

type RecordQuery struct {
	Type     string `form:"type"`
	Postcode string `form:"postcode"`
	Suburb   string `form:"suburb"`
}

type ChatRequest struct {
	Question string `json:"question" binding:"required"`
}

func NewHandler(db *database.Database, cfg *config.Config, q *queue.RecordQueue, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		db:              db,
		logger:          logger,
		cfg:             cfg,
		store:           cache.NewStore(time.Duration(cfg.Analysis.CacheTTLHours)*time.Hour, logger),
		engine:          analysis.NewEngine(logger, cfg.Analysis.RecentWindowYears),
		bot:             chatbot.NewBot(logger),
		importer:        importer.NewImporter(q, cfg.BatchProcessing.MaxBatchSize, cfg.Analysis.HistoricalYears, logger),
		telegramService: telegram.NewService(cfg, logger),
	}
}

// GetRecords returns raw property records, optionally filtered by type,
// postcode or suburb.
func (h *Handler) GetRecords(c *gin.Context) {
	var query RecordQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.logger.WithError(err).Error("Failed to parse record query")
	}

	records, err := h.db.GetRecords(database.RecordFilter{
		RecordType: query.Type,
		Postcode:   query.Postcode,
		Suburb:     query.Suburb,
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to get records")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get records"})
		return
	}

	c.JSON(http.StatusOK, records)
}

// GetReport returns the comparison report. ?district=Name narrows both
// datasets to the district's suburbs (computed fresh, never cached).
func (h *Handler) GetReport(c *gin.Context) {
	district := c.Query("district")
	if district != "" {
		h.getDistrictReport(c, district)
		return
	}

	report, err := h.report()
	if err != nil {
		h.logger.WithError(err).Error("Failed to build comparison report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build comparison report"})
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *Handler) getDistrictReport(c *gin.Context, district string) {
	suburbs, err := h.db.GetSuburbsInDistrict(district)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get district suburbs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get district"})
		return
	}
	if len(suburbs) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "District not found"})
		return
	}

	current, historical, err := h.datasets()
	if err != nil {
		h.logger.WithError(err).Error("Failed to load datasets")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load datasets"})
		return
	}

	report := h.engine.Compare(
		filterBySuburbs(current, suburbs),
		filterBySuburbs(historical, suburbs),
	)
	c.JSON(http.StatusOK, gin.H{"district": district, "report": report})
}

// ExportReport streams the comparison report as a CSV download.
func (h *Handler) ExportReport(c *gin.Context) {
	report, err := h.report()
	if err != nil {
		h.logger.WithError(err).Error("Failed to build comparison report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build comparison report"})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="price_comparison.csv"`)
	if err := export.WriteReport(c.Writer, report); err != nil {
		h.logger.WithError(err).Error("Failed to write report CSV")
	}
}

// GetStats returns headline dataset numbers.
func (h *Handler) GetStats(c *gin.Context) {
	current, historical, err := h.datasets()
	if err != nil {
		h.logger.WithError(err).Error("Failed to load datasets")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load datasets"})
		return
	}

	stats := gin.H{
		"historical_count":        len(historical),
		"current_count":           len(current),
		"historical_median_price": analysis.Median(validPrices(historical)),
		"current_median_price":    analysis.Median(validPrices(current)),
		"suburbs":                 countSuburbs(historical, current),
	}
	if earliest, latest, ok := saleDateRange(historical); ok {
		stats["earliest_sale"] = earliest.Format("2006-01-02")
		stats["latest_sale"] = latest.Format("2006-01-02")
	}

	c.JSON(http.StatusOK, stats)
}

// GetPostcodeStats returns the report row for one postcode.
func (h *Handler) GetPostcodeStats(c *gin.Context) {
	postcode := c.Param("postcode")
	if !config.IsEasternPostcode(postcode) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Postcode outside coverage area"})
		return
	}

	report, err := h.report()
	if err != nil {
		h.logger.WithError(err).Error("Failed to build comparison report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build comparison report"})
		return
	}

	for _, row := range report.ByPostcode {
		if row.Postcode == postcode {
			c.JSON(http.StatusOK, row)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "No comparison data for postcode"})
}

// Chat answers a natural-language question about the datasets.
func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Invalid chat request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Question is required"})
		return
	}

	// Make sure the bot sees current data before answering.
	if _, err := h.report(); err != nil {
		h.logger.WithError(err).Error("Failed to prepare chatbot data")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to prepare data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"answer":      h.bot.Answer(req.Question),
		"suggestions": h.bot.Suggestions(),
	})
}

// GetSuggestions returns example chatbot questions.
func (h *Handler) GetSuggestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"suggestions": h.bot.Suggestions()})
}

// ImportData reimports both CSV datasets and rebuilds the cached report.
func (h *Handler) ImportData(c *gin.Context) {
	currentCount, historicalCount, err := h.Refresh()
	if err != nil {
		h.logger.WithError(err).Error("Import failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Import failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":             "success",
		"current_records":    currentCount,
		"historical_records": historicalCount,
	})
}

// Refresh reloads both CSVs, replaces the persisted records, rebuilds the
// cached report, writes the CSV export and sends the Telegram summary.
// Shared by the import endpoint and the scheduler.
func (h *Handler) Refresh() (currentCount, historicalCount int, err error) {
	current, err := h.importer.ReadCurrent(h.cfg.Data.CurrentCSV)
	if err != nil {
		return 0, 0, err
	}
	historical, err := h.importer.ReadHistorical(h.cfg.Data.HistoricalCSV)
	if err != nil {
		return 0, 0, err
	}

	// Replace persisted rows; the queue writes the new ones in the
	// background while the cache serves the fresh in-memory data.
	if err := h.db.ClearRecords(models.RecordTypeListing); err != nil {
		return 0, 0, err
	}
	if err := h.db.ClearRecords(models.RecordTypeSale); err != nil {
		return 0, 0, err
	}
	if err := h.importer.Enqueue(current); err != nil {
		return 0, 0, err
	}
	if err := h.importer.Enqueue(historical); err != nil {
		return 0, 0, err
	}

	h.store.Invalidate()
	h.store.SetDatasets(current, historical)
	report := h.engine.Compare(current, historical)
	h.store.SetReport(report)
	h.bot.SetData(current, historical)

	exportPath := filepath.Join(h.cfg.Data.ExportDir, "price_comparison.csv")
	if err := export.WriteReportFile(exportPath, report); err != nil {
		h.logger.WithError(err).Warn("Failed to write report export")
	}

	if h.telegramService.Enabled() {
		if err := h.telegramService.NotifyMarketSummary(report); err != nil {
			h.logger.WithError(err).Warn("Failed to send Telegram summary")
		}
	}

	return len(current), len(historical), nil
}

// RefreshJob adapts Refresh for the scheduler.
func (h *Handler) RefreshJob() error {
	_, _, err := h.Refresh()
	return err
}

// report returns the cached comparison report, building it from the
// database when the cache is cold.
func (h *Handler) report() (*models.ComparisonReport, error) {
	if report, ok := h.store.Report(); ok {
		return report, nil
	}

	current, historical, err := h.datasets()
	if err != nil {
		return nil, err
	}

	report := h.engine.Compare(current, historical)
	h.store.SetReport(report)
	h.bot.SetData(current, historical)
	return report, nil
}

func (h *Handler) datasets() (current, historical []models.PropertyRecord, err error) {
	if current, historical, ok := h.store.Datasets(); ok {
		return current, historical, nil
	}

	current, historical, err = h.db.GetDatasets()
	if err != nil {
		return nil, nil, err
	}
	h.store.SetDatasets(current, historical)
	return current, historical, nil
}

func filterBySuburbs(records []models.PropertyRecord, suburbs []string) []models.PropertyRecord {
	wanted := make(map[string]bool, len(suburbs))
	for _, s := range suburbs {
		wanted[config.NormalizeSuburb(s)] = true
	}

	var out []models.PropertyRecord
	for i := range records {
		if wanted[config.NormalizeSuburb(records[i].Suburb)] {
			out = append(out, records[i])
		}
	}
	return out
}

func validPrices(records []models.PropertyRecord) []float64 {
	var prices []float64
	for i := range records {
		if records[i].HasValidPrice() {
			prices = append(prices, records[i].Price)
		}
	}
	return prices
}

func countSuburbs(historical, current []models.PropertyRecord) int {
	seen := make(map[string]bool)
	for _, records := range [][]models.PropertyRecord{historical, current} {
		for i := range records {
			if s := config.NormalizeSuburb(records[i].Suburb); s != "" {
				seen[s] = true
			}
		}
	}
	return len(seen)
}

func saleDateRange(historical []models.PropertyRecord) (earliest, latest time.Time, ok bool) {
	for i := range historical {
		d := historical[i].SaleDate
		if d == nil {
			continue
		}
		if !ok {
			earliest, latest, ok = *d, *d, true
			continue
		}
		if d.Before(earliest) {
			earliest = *d
		}
		if d.After(latest) {
			latest = *d
		}
	}
	return earliest, latest, ok
}
