package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"helpdesk/internal/domain/queue"
)

const (
	bucketSynced  = "synced"
	bucketOffline = "offline"

	keySyncInProgress = "sync_in_progress"
)

// SQLitePersister stores the ticket slice in a local sqlite file.
type SQLitePersister struct {
	db *sql.DB
}

func NewSQLitePersister(path string) (*SQLitePersister, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// sqlite allows a single writer.
	db.SetMaxOpenConns(1)

	p := &SQLitePersister{db: db}
	if err := p.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init tables: %w", err)
	}

	return p, nil
}

func (p *SQLitePersister) initTables() error {
	_, err := p.db.Exec(`
		CREATE TABLE IF NOT EXISTS queue_items (
			bucket TEXT NOT NULL,
			position INTEGER NOT NULL,
			id TEXT NOT NULL,
			kind TEXT NOT NULL,
			payload TEXT NOT NULL,
			sync_status TEXT NOT NULL,
			is_offline BOOLEAN NOT NULL DEFAULT 1,
			attempts INTEGER NOT NULL DEFAULT 0,
			last_error TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			synced_at TEXT,
			PRIMARY KEY (bucket, position)
		);

		CREATE TABLE IF NOT EXISTS sync_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	return err
}

// Save replaces everything stored with state in one transaction.
func (p *SQLitePersister) Save(ctx context.Context, state State) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM queue_items`); err != nil {
		return fmt.Errorf("clear items: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO queue_items (bucket, position, id, kind, payload, sync_status,
		                         is_offline, attempts, last_error, created_at, synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	buckets := []struct {
		name  string
		items []queue.Item
	}{
		{bucketSynced, state.Tickets},
		{bucketOffline, state.OfflineTickets},
	}
	for _, b := range buckets {
		for pos, it := range b.items {
			payload, err := json.Marshal(it.Payload)
			if err != nil {
				return fmt.Errorf("encode payload of %s: %w", it.ID, err)
			}

			var syncedAt sql.NullString
			if it.SyncedAt != nil {
				syncedAt = sql.NullString{String: it.SyncedAt.Format(time.RFC3339Nano), Valid: true}
			}

			if _, err := stmt.ExecContext(ctx,
				b.name, pos, it.ID, string(it.Kind), string(payload), string(it.SyncStatus),
				it.IsOffline, it.Attempts, it.LastError,
				it.CreatedAt.Format(time.RFC3339Nano), syncedAt,
			); err != nil {
				return fmt.Errorf("insert item %s: %w", it.ID, err)
			}
		}
	}

	inProgress := "0"
	if state.SyncInProgress {
		inProgress = "1"
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sync_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, keySyncInProgress, inProgress); err != nil {
		return fmt.Errorf("save sync state: %w", err)
	}

	return tx.Commit()
}

func (p *SQLitePersister) Load(ctx context.Context) (State, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT bucket, id, kind, payload, sync_status, is_offline, attempts,
		       last_error, created_at, synced_at
		FROM queue_items
		ORDER BY bucket, position
	`)
	if err != nil {
		return State{}, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var state State
	for rows.Next() {
		var (
			bucket, kind, payload, status, createdAt string
			syncedAt                                 sql.NullString
			it                                       queue.Item
		)
		if err := rows.Scan(&bucket, &it.ID, &kind, &payload, &status, &it.IsOffline,
			&it.Attempts, &it.LastError, &createdAt, &syncedAt); err != nil {
			return State{}, fmt.Errorf("scan item: %w", err)
		}

		it.Kind = queue.Kind(kind)
		it.SyncStatus = queue.SyncStatus(status)
		if err := it.SyncStatus.Validate(); err != nil {
			return State{}, fmt.Errorf("item %s: %w", it.ID, err)
		}
		if it.Payload, err = queue.DecodePayload(it.Kind, []byte(payload)); err != nil {
			return State{}, fmt.Errorf("item %s: %w", it.ID, err)
		}
		if it.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return State{}, fmt.Errorf("item %s created_at: %w", it.ID, err)
		}
		if syncedAt.Valid {
			t, err := time.Parse(time.RFC3339Nano, syncedAt.String)
			if err != nil {
				return State{}, fmt.Errorf("item %s synced_at: %w", it.ID, err)
			}
			it.SyncedAt = &t
		}

		switch bucket {
		case bucketSynced:
			state.Tickets = append(state.Tickets, it)
		case bucketOffline:
			state.OfflineTickets = append(state.OfflineTickets, it)
		}
	}
	if err := rows.Err(); err != nil {
		return State{}, fmt.Errorf("iterate items: %w", err)
	}

	var inProgress string
	err = p.db.QueryRowContext(ctx, `SELECT value FROM sync_state WHERE key = ?`, keySyncInProgress).Scan(&inProgress)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return State{}, fmt.Errorf("load sync state: %w", err)
	default:
		state.SyncInProgress = inProgress == "1"
	}

	return state, nil
}

func (p *SQLitePersister) Close() error {
	return p.db.Close()
}
