package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modguard/promptgate/internal/models"
	"github.com/rs/zerolog/log"
)

// Append inserts one audit log record. Records are append-only; nothing
// updates a row after insert.
func (db *DB) Append(ctx context.Context, record models.LogRecord) error {
	reasons, err := json.Marshal(record.Reasons)
	if err != nil {
		return fmt.Errorf("Failed to serialize reasons. Error: %w", err)
	}

	query := `
	INSERT INTO logs (prompt, status, reasons, timestamp, redacted_prompt, downstream_response)
	VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = db.Pool.Exec(ctx, query,
		record.Prompt,
		string(record.Status),
		reasons,
		record.Timestamp,
		record.RedactedPrompt,
		record.DownstreamResponse,
	)
	if err != nil {
		return fmt.Errorf("Failed to insert log record. Error: %w", err)
	}

	return nil
}

// List returns every audit log record, newest first.
func (db *DB) List(ctx context.Context) ([]models.LogRecord, error) {
	query := `
	SELECT id, prompt, status, reasons, timestamp, redacted_prompt, downstream_response
	FROM logs
	ORDER BY id DESC`

	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("Unable to fetch log records from DB. Error: %w", err)
	}

	defer rows.Close()

	var records []models.LogRecord

	for rows.Next() {
		var record models.LogRecord
		var reasons []byte

		if err := rows.Scan(
			&record.ID,
			&record.Prompt,
			&record.Status,
			&reasons,
			&record.Timestamp,
			&record.RedactedPrompt,
			&record.DownstreamResponse,
		); err != nil {
			return nil, fmt.Errorf("Failed to scan log record: %w", err)
		}

		if err := json.Unmarshal(reasons, &record.Reasons); err != nil {
			return nil, fmt.Errorf("Failed to deserialize reasons for record %d: %w", record.ID, err)
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// Clear deletes all audit log records. This is the only delete path.
func (db *DB) Clear(ctx context.Context) error {
	result, err := db.Pool.Exec(ctx, `DELETE FROM logs`)
	if err != nil {
		return fmt.Errorf("Failed to clear log records. Error: %w", err)
	}

	log.Info().Int64("deleted", result.RowsAffected()).Msg("Audit log cleared")

	return nil
}
