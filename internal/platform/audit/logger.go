package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Entry struct {
	ID           string                 `json:"id"`
	TeamID       string                 `json:"team_id"`
	AdminID      string                 `json:"admin_id"`
	Action       string                 `json:"action"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   string                 `json:"resource_id"`
	Metadata     map[string]interface{} `json:"metadata"`
	CreatedAt    int64                  `json:"created_at"`
}

type Logger struct {
	db *sql.DB
}

func NewLogger(db *sql.DB) *Logger {
	return &Logger{db: db}
}

// Log appends a best-effort audit record. The insert runs on its own
// goroutine and any failure is logged and swallowed; it must never change
// the outcome of the request that produced it.
func (l *Logger) Log(ctx context.Context, teamID, adminID, action, resourceType, resourceID string, metadata map[string]interface{}) {
	metaJSON, _ := json.Marshal(metadata)

	entry := &Entry{
		ID:           "audit_" + uuid.NewString(),
		TeamID:       teamID,
		AdminID:      adminID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Metadata:     metadata,
		CreatedAt:    time.Now().Unix(),
	}

	go func() {
		query := `
			INSERT INTO activity_logs (id, team_id, admin_id, action, resource_type, resource_id, metadata, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`
		if _, err := l.db.Exec(query, entry.ID, entry.TeamID, entry.AdminID, entry.Action, entry.ResourceType, entry.ResourceID, string(metaJSON), entry.CreatedAt); err != nil {
			log.Warn().Err(err).Str("action", action).Msg("audit insert failed")
		}
	}()
}

// ListByTeam returns the most recent audit entries for a team.
func (l *Logger) ListByTeam(teamID string, limit int) ([]*Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	rows, err := l.db.Query(`
		SELECT id, team_id, admin_id, action, resource_type, resource_id, metadata, created_at
		FROM activity_logs WHERE team_id = ? ORDER BY created_at DESC LIMIT ?
	`, teamID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry := &Entry{}
		var metaStr string
		if err := rows.Scan(&entry.ID, &entry.TeamID, &entry.AdminID, &entry.Action, &entry.ResourceType, &entry.ResourceID, &metaStr, &entry.CreatedAt); err != nil {
			return nil, err
		}
		json.Unmarshal([]byte(metaStr), &entry.Metadata)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
