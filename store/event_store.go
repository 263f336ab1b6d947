package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/rs/zerolog/log"

	"chatdesk/api/models"
	"chatdesk/api/utils"
)

// EventStore keeps the raw widget event stream in ClickHouse.
type EventStore struct {
	conn clickhouse.Conn
}

func NewEventStore(conn clickhouse.Conn) *EventStore {
	return &EventStore{conn: conn}
}

// EnsureSchema creates the widget_events table when missing.
func (s *EventStore) EnsureSchema(ctx context.Context) error {
	err := s.conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS widget_events (
			event_id String,
			event_type LowCardinality(String),
			business_id String,
			visitor_id String,
			conversation_id String,
			timestamp DateTime64(3, 'UTC'),
			question String,
			response_ms Int64,
			page_url String,
			user_agent String,
			ip_address String
		)
		ENGINE = MergeTree
		PARTITION BY toYYYYMM(timestamp)
		ORDER BY (business_id, event_type, timestamp)
	`)
	if err != nil {
		return fmt.Errorf("failed to create widget_events table: %w", err)
	}
	return nil
}

func (s *EventStore) InsertWidgetEvents(ctx context.Context, events []models.WidgetEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO widget_events (
			event_id, event_type, business_id, visitor_id, conversation_id, timestamp,
			question, response_ms, page_url, user_agent, ip_address
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}

	for _, event := range events {
		err := batch.Append(
			event.EventID,
			event.EventType,
			event.BusinessID,
			event.VisitorID,
			event.ConversationID,
			event.Timestamp,
			event.Question,
			event.ResponseMs,
			event.PageURL,
			event.UserAgent,
			event.IPAddress,
		)
		if err != nil {
			_ = batch.Abort()
			return fmt.Errorf("failed to append event %s to batch: %w", event.EventID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	log.Debug().Int("count", len(events)).Msg("Inserted widget events")
	return nil
}

func (s *EventStore) GetEventCountsOverTime(ctx context.Context, businessID, interval string, start, end time.Time, eventTypeFilter string) ([]models.TimeBucketCount, error) {
	if !utils.IsValidInterval(interval) {
		return nil, fmt.Errorf("invalid interval: %s", interval)
	}

	args := []any{businessID, start, end}
	selectCols := fmt.Sprintf("toStartOf%s(timestamp) AS time_bucket, count() AS total_events", interval)
	groupByCols := "time_bucket"
	whereClause := "WHERE business_id = ? AND timestamp >= ? AND timestamp <= ?"
	orderByCols := "time_bucket ASC"
	isFilteringByType := eventTypeFilter != ""

	if isFilteringByType {
		selectCols += ", event_type"
		groupByCols += ", event_type"
		whereClause += " AND event_type = ?"
		args = append(args, eventTypeFilter)
		orderByCols += ", event_type ASC"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM widget_events
		%s
		GROUP BY %s
		ORDER BY %s
	`, selectCols, whereClause, groupByCols, orderByCols)

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query event counts over time: %w", err)
	}
	defer rows.Close()

	results := []models.TimeBucketCount{}
	for rows.Next() {
		var (
			timeBucket time.Time
			count      uint64
			eventType  string
			result     models.TimeBucketCount
		)
		if isFilteringByType {
			if err := rows.Scan(&timeBucket, &count, &eventType); err != nil {
				log.Warn().Err(err).Msg("Error scanning event count row")
				continue
			}
			result.EventType = &eventType
		} else if err := rows.Scan(&timeBucket, &count); err != nil {
			log.Warn().Err(err).Msg("Error scanning event count row")
			continue
		}
		result.Time = timeBucket
		result.Count = count
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during event counts over time query: %w", err)
	}
	return results, nil
}

func (s *EventStore) GetUniqueVisitorsOverTime(ctx context.Context, businessID, interval string, start, end time.Time) ([]models.TimeBucketCount, error) {
	if !utils.IsValidInterval(interval) {
		return nil, fmt.Errorf("invalid interval: %s", interval)
	}

	query := fmt.Sprintf(`
		SELECT toStartOf%s(timestamp) AS time_bucket, uniq(visitor_id) AS unique_visitors
		FROM widget_events
		WHERE business_id = ? AND visitor_id != '' AND timestamp >= ? AND timestamp <= ?
		GROUP BY time_bucket
		ORDER BY time_bucket ASC
	`, interval)

	rows, err := s.conn.Query(ctx, query, businessID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query unique visitors over time: %w", err)
	}
	defer rows.Close()

	results := []models.TimeBucketCount{}
	for rows.Next() {
		var timeBucket time.Time
		var visitors uint64
		if err := rows.Scan(&timeBucket, &visitors); err != nil {
			log.Warn().Err(err).Msg("Error scanning unique visitor row")
			continue
		}
		results = append(results, models.TimeBucketCount{Time: timeBucket, Count: visitors})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows for unique visitors: %w", err)
	}
	return results, nil
}

// GetAverageResponseTime returns the mean model response time in
// milliseconds across chat_message events.
func (s *EventStore) GetAverageResponseTime(ctx context.Context, businessID string, start, end time.Time) (float64, error) {
	query := `
		SELECT avg(response_ms)
		FROM widget_events
		WHERE business_id = ? AND event_type = ? AND timestamp >= ? AND timestamp <= ?
	`
	var avg float64
	err := s.conn.QueryRow(ctx, query, businessID, models.EventChatMessage, start, end).Scan(&avg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to query average response time: %w", err)
	}
	// avg() over zero rows is NaN, which JSON cannot encode.
	if math.IsNaN(avg) {
		return 0, nil
	}
	return avg, nil
}

func (s *EventStore) GetTopQuestions(ctx context.Context, businessID string, start, end time.Time, limit uint64) ([]models.TopQuestion, error) {
	if limit == 0 {
		limit = 10
	}

	query := `
		SELECT lower(trimBoth(question)) AS q, count() AS asked
		FROM widget_events
		WHERE business_id = ? AND event_type = ? AND question != '' AND timestamp >= ? AND timestamp <= ?
		GROUP BY q
		ORDER BY asked DESC
		LIMIT ?
	`
	rows, err := s.conn.Query(ctx, query, businessID, models.EventChatMessage, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top questions: %w", err)
	}
	defer rows.Close()

	results := []models.TopQuestion{}
	for rows.Next() {
		var q models.TopQuestion
		if err := rows.Scan(&q.Question, &q.Count); err != nil {
			log.Warn().Err(err).Msg("Error scanning top question row")
			continue
		}
		results = append(results, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows for top questions: %w", err)
	}
	return results, nil
}
