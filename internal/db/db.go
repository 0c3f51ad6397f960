package db

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"prognosis-rag/internal/config"
)

// Document mirrors one chunk with its embedding for pgvector search.
type Document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`
	ID            int64     `bun:"id,pk,autoincrement"`
	ChunkID       string    `bun:"chunk_id,notnull,unique"`
	Content       string    `bun:"content,notnull"`
	SectionType   string    `bun:"section_type,notnull"`
	PageNum       int       `bun:"page_num,notnull"`
	SourceFile    string    `bun:"source_file,notnull"`
	Embedding     []float32 `bun:"embedding,notnull,type:vector(768)"`
}

// Prescreen is the intake record consulted during diagnosis validation.
type Prescreen struct {
	bun.BaseModel `bun:"table:prescreens,alias:p"`
	ID            int64             `bun:"id,pk,autoincrement"`
	UserID        string            `bun:"user_id,notnull"`
	Symptoms      []string          `bun:"symptoms,type:jsonb"`
	Duration      string            `bun:"duration"`
	Severity      string            `bun:"severity"`
	History       map[string]any    `bun:"medical_history,type:jsonb"`
	VitalSigns    map[string]string `bun:"vital_signs,type:jsonb"`
	RecordedAt    time.Time         `bun:"recorded_at,notnull,default:current_timestamp"`
}

// ConnectDB opens the Postgres connection. The returned handle is owned
// by the caller and passed explicitly to collaborators; there is no
// process-wide singleton.
func ConnectDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	dsn := cfg.URL + "?sslmode=disable"
	return sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn), pgdriver.WithPassword(cfg.Key))), nil
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

// Ping is the health check used by the server's /health endpoint.
func Ping(ctx context.Context, db *bun.DB) error {
	return db.PingContext(ctx)
}

func InitDB(ctx context.Context, db *bun.DB) error {
	for _, model := range []any{(*Document)(nil), (*Prescreen)(nil)} {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

// StoreDocuments batch-inserts chunk rows.
func StoreDocuments(ctx context.Context, db *bun.DB, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := db.NewInsert().Model(&docs).Exec(ctx)
	return err
}

// SearchDocuments orders by embedding distance using the pgvector
// operator.
func SearchDocuments(ctx context.Context, db *bun.DB, queryEmbedding []float32, limit int) ([]Document, error) {
	var docs []Document
	err := db.NewSelect().
		Model(&docs).
		Column("id", "chunk_id", "content", "section_type", "page_num", "source_file").
		OrderExpr("embedding <-> ?", queryEmbedding).
		Limit(limit).
		Scan(ctx)
	return docs, err
}

// LatestPrescreen returns the most recent intake record for a user.
func LatestPrescreen(ctx context.Context, db *bun.DB, userID string) (*Prescreen, error) {
	ps := new(Prescreen)
	err := db.NewSelect().
		Model(ps).
		Where("user_id = ?", userID).
		OrderExpr("recorded_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return ps, nil
}

func StorePrescreen(ctx context.Context, db *bun.DB, ps *Prescreen) error {
	_, err := db.NewInsert().Model(ps).Exec(ctx)
	return err
}

// drop table documents

func DropDocuments(ctx context.Context, db *bun.DB) error {
	_, err := db.NewDropTable().Model((*Document)(nil)).IfExists().Exec(ctx)
	return err
}
