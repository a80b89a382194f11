package repository

import (
	"time"

	"modulehost/internal/database"
	"modulehost/internal/model"
)

type RequestLogRepository struct{}

func NewRequestLogRepository() *RequestLogRepository {
	return &RequestLogRepository{}
}

// Insert writes one audit row.
func (r *RequestLogRepository) Insert(entry model.RequestLog) error {
	db := database.GetDB()
	_, err := db.Exec(`
		INSERT INTO request_logs (id, request_id, created_at, status, latency_ms, prompt_tokens, completion_tokens, error_text)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.RequestID,
		entry.CreatedAt.UTC().Format(time.RFC3339Nano),
		string(entry.Status),
		entry.LatencyMs,
		entry.PromptTokens,
		entry.CompletionTokens,
		entry.ErrorText,
	)
	return err
}

// InsertBatch writes rows in one transaction. Used by the async log
// writer to amortize sqlite's single-writer lock.
func (r *RequestLogRepository) InsertBatch(entries []model.RequestLog) error {
	if len(entries) == 0 {
		return nil
	}
	db := database.GetDB()
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`
		INSERT INTO request_logs (id, request_id, created_at, status, latency_ms, prompt_tokens, completion_tokens, error_text)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, entry := range entries {
		if _, err := stmt.Exec(
			entry.ID,
			entry.RequestID,
			entry.CreatedAt.UTC().Format(time.RFC3339Nano),
			string(entry.Status),
			entry.LatencyMs,
			entry.PromptTokens,
			entry.CompletionTokens,
			entry.ErrorText,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// ListRecent returns the newest rows, newest first. Limit is clamped
// to [1, 500] with a default of 50.
func (r *RequestLogRepository) ListRecent(limit int) ([]model.RequestLog, error) {
	if limit < 1 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}

	db := database.GetDB()
	rows, err := db.Query(`
		SELECT id, request_id, created_at, status, latency_ms, prompt_tokens, completion_tokens, error_text
		FROM request_logs
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []model.RequestLog
	for rows.Next() {
		var entry model.RequestLog
		var createdAt string
		var status string
		if err := rows.Scan(
			&entry.ID,
			&entry.RequestID,
			&createdAt,
			&status,
			&entry.LatencyMs,
			&entry.PromptTokens,
			&entry.CompletionTokens,
			&entry.ErrorText,
		); err != nil {
			return nil, err
		}
		entry.Status = model.RequestLogStatus(status)
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			entry.CreatedAt = t
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
