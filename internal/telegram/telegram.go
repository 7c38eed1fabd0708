package telegram

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"eastlens/server/config"
	"eastlens/server/internal/models"

	"github.com/sirupsen/logrus"
)

// Service posts market summaries to a Telegram chat after scheduled
// refreshes. Disabled unless configured via environment.
type Service struct {
	logger *logrus.Logger
	client *http.Client
	config config.Config
}

func NewService(cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		logger: logger,
		config: *cfg,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Enabled reports whether notifications are switched on.
func (s *Service) Enabled() bool {
	return s.config.Telegram.Enabled
}

// SendMessage sends a message to the configured Telegram chat
func (s *Service) SendMessage(message string) error {
	if !s.config.Telegram.Enabled {
		return nil
	}

	if s.config.Telegram.BotToken == "" {
		return errors.New("Telegram bot token is not configured")
	}

	if s.config.Telegram.ChatID == "" {
		return errors.New("Telegram chat ID is not configured")
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.config.Telegram.BotToken)
	payload := map[string]interface{}{
		"chat_id":    s.config.Telegram.ChatID,
		"text":       message,
		"parse_mode": "HTML",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message payload: %v", err)
	}

	resp, err := s.client.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send message to Telegram API: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return errors.New("invalid bot token - please check your token from @BotFather")
		case http.StatusBadRequest:
			return fmt.Errorf("invalid chat ID or message format: %s", string(body))
		case http.StatusForbidden:
			return errors.New("bot was blocked by the user or chat")
		case http.StatusNotFound:
			return errors.New("bot not found - please check your token from @BotFather")
		default:
			return fmt.Errorf("Telegram API error (status %d): %s", resp.StatusCode, string(body))
		}
	}

	return nil
}

// NotifyMarketSummary sends the headline numbers of a fresh comparison
// report: overall movement plus the strongest postcodes on both ends.
func (s *Service) NotifyMarketSummary(report *models.ComparisonReport) error {
	if !s.config.Telegram.Enabled {
		return nil
	}
	if report == nil {
		return errors.New("no report to notify about")
	}

	message := "<b>Eastern Suburbs Market Update</b>\n\n"

	if report.Overall.Price.Available {
		message += fmt.Sprintf(
			"💰 Current median: $%.0f\n📊 vs historical median: %+.1f%%\n",
			report.Overall.Price.CurrentMedian,
			report.Overall.Price.MedianDiffPct,
		)
	} else {
		message += "Not enough data for an overall comparison.\n"
	}

	if report.RecentVsCurrent.Price.Available {
		message += fmt.Sprintf("🕒 vs recent sales: %+.1f%%\n", report.RecentVsCurrent.Price.MedianDiffPct)
	}

	message += fmt.Sprintf(
		"\n🔺 Postcodes above historical median: %d\n🔻 Postcodes below: %d\n",
		report.Insights.Overvalued,
		report.Insights.Undervalued,
	)

	if top, bottom, ok := extremes(report.ByPostcode); ok {
		message += fmt.Sprintf(
			"\n📈 Strongest: %s %s (%+.1f%%)\n📉 Weakest: %s %s (%+.1f%%)",
			top.Postcode, top.Suburb, top.Price.MedianDiffPct,
			bottom.Postcode, bottom.Suburb, bottom.Price.MedianDiffPct,
		)
	}

	if err := s.SendMessage(message); err != nil {
		s.logger.WithError(err).Error("Failed to send market summary")
		return err
	}
	return nil
}

// extremes returns the rows with the highest and lowest median movement.
func extremes(rows []models.PostcodeComparison) (top, bottom models.PostcodeComparison, ok bool) {
	for _, row := range rows {
		if !row.Price.Available {
			continue
		}
		if !ok {
			top, bottom, ok = row, row, true
			continue
		}
		if row.Price.MedianDiffPct > top.Price.MedianDiffPct {
			top = row
		}
		if row.Price.MedianDiffPct < bottom.Price.MedianDiffPct {
			bottom = row
		}
	}
	return top, bottom, ok
}
