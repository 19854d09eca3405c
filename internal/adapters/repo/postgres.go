package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nach-yomi-bot/internal/domain"
	"nach-yomi-bot/internal/infra/metrics"
)

// Postgres хранит подписчиков и отметки рассылок в Postgres.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const schema = `
CREATE TABLE IF NOT EXISTS nach_subscribers (
    chat_id    BIGINT PRIMARY KEY,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS nach_broadcasts (
    broadcast_date DATE PRIMARY KEY,
    sent_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func (p *Postgres) connCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

// EnsureSchema создаёт таблицы, если их нет.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, schema)
	metrics.ObserveNetworkRequest("postgres", "ensure_schema", "nach_subscribers", start, err)
	return err
}

// List возвращает подписчиков в порядке подписки.
func (p *Postgres) List(ctx context.Context) ([]int64, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `SELECT chat_id FROM nach_subscribers ORDER BY created_at, chat_id`)
	metrics.ObserveNetworkRequest("postgres", "subscribers_list", "nach_subscribers", start, err)
	if err != nil {
		return nil, err
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Add добавляет подписчика. false означает, что он уже был.
func (p *Postgres) Add(ctx context.Context, chatID int64) (bool, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `INSERT INTO nach_subscribers (chat_id) VALUES ($1) ON CONFLICT (chat_id) DO NOTHING`, chatID)
	metrics.ObserveNetworkRequest("postgres", "subscribers_add", "nach_subscribers", start, err)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Remove удаляет подписчика. false означает, что его не было.
func (p *Postgres) Remove(ctx context.Context, chatID int64) (bool, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `DELETE FROM nach_subscribers WHERE chat_id=$1`, chatID)
	metrics.ObserveNetworkRequest("postgres", "subscribers_remove", "nach_subscribers", start, err)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// WasSentOn проверяет отметку рассылки за день.
func (p *Postgres) WasSentOn(ctx context.Context, date domain.Date) (bool, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	var one int
	start := time.Now()
	err := p.pool.QueryRow(ctx, `SELECT 1 FROM nach_broadcasts WHERE broadcast_date=$1`, sqlDate(date)).Scan(&one)
	metrics.ObserveNetworkRequest("postgres", "broadcasts_was_sent", "nach_broadcasts", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// MarkSent записывает отметку рассылки за день.
func (p *Postgres) MarkSent(ctx context.Context, date domain.Date) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO nach_broadcasts (broadcast_date) VALUES ($1)
ON CONFLICT (broadcast_date) DO UPDATE SET sent_at = now()
`, sqlDate(date))
	metrics.ObserveNetworkRequest("postgres", "broadcasts_mark_sent", "nach_broadcasts", start, err)
	return err
}

func sqlDate(d domain.Date) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

var (
	_ domain.SubscriberStore = (*Postgres)(nil)
	_ domain.BroadcastMarker = (*Postgres)(nil)
)
