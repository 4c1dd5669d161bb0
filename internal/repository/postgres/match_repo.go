package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/seawolf-games/battleship-server/internal/board"
	"github.com/seawolf-games/battleship-server/internal/errs"
	"github.com/seawolf-games/battleship-server/internal/model"
)

// Physical table names per logical partition. Table names cannot be bound as
// query parameters, so every dynamic name must come from these maps.
var shipTables = map[model.Table]string{
	model.TableSelfShips:  "self_ships",
	model.TableRivalShips: "rival_ships",
}

var boardTables = map[model.Table]string{
	model.TableSelfBoard:  "self_board",
	model.TableRivalBoard: "rival_board",
}

// MatchRepo implements MatchRepository using PostgreSQL.
type MatchRepo struct{ db *DB }

// NewMatchRepo constructs a match repository.
func NewMatchRepo(db *DB) *MatchRepo { return &MatchRepo{db: db} }

// SaveMatch writes the match row plus all four row partitions in one
// transaction. The match id is minted inside the call, so no two writers can
// ever race on the same id; a failure anywhere rolls the whole match back.
// The service validates the full payload before calling; the summary fields
// are re-checked here so a bypassing caller cannot persist a defaulted row.
func (r *MatchRepo) SaveMatch(
	ctx context.Context, userID uuid.UUID, in model.SaveMatchInput, now time.Time,
) (matchID uuid.UUID, err error) {
	if in.TotalHits == nil {
		return uuid.Nil, fmt.Errorf("%w: missing totalHits", errs.ErrValidation)
	}
	matchID, err = uuid.NewV4()
	if err != nil {
		return uuid.Nil, err
	}

	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return uuid.Nil, classify(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			err = classify(err)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = classify(e)
		}
	}()

	const insMatch = `
INSERT INTO matches (id, user_id, name, game_date, fire_direction, total_hits, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err = tx.Exec(ctx, insMatch, matchID, userID, in.Name, in.Date, in.FireDirection, *in.TotalHits, now); err != nil {
		return uuid.Nil, err
	}

	if err = insertShips(ctx, tx, shipTables[model.TableSelfShips], matchID, model.SideSelf, in.SelfShips); err != nil {
		return uuid.Nil, err
	}
	if err = insertShips(ctx, tx, shipTables[model.TableRivalShips], matchID, model.SideRival, in.RivalShips); err != nil {
		return uuid.Nil, err
	}
	if err = insertBoard(ctx, tx, boardTables[model.TableSelfBoard], matchID, model.SideSelf, in.SelfBoard); err != nil {
		return uuid.Nil, err
	}
	if err = insertBoard(ctx, tx, boardTables[model.TableRivalBoard], matchID, model.SideRival, in.RivalBoard); err != nil {
		return uuid.Nil, err
	}
	return matchID, nil
}

func insertShips(ctx context.Context, tx pgx.Tx, table string, matchID uuid.UUID, side model.Side, ships []model.ShipInput) error {
	q := fmt.Sprintf(`INSERT INTO %s (match_id, ship_id, x, y, hit) VALUES ($1, $2, $3, $4, $5)`, table)
	for _, s := range ships {
		for _, c := range s.Cells {
			row := board.EncodeShipCell(matchID, s.ShipID, side, c)
			if _, err := tx.Exec(ctx, q, row.MatchID, row.ShipID, row.X, row.Y, row.Hit); err != nil {
				return err
			}
		}
	}
	return nil
}

func insertBoard(ctx context.Context, tx pgx.Tx, table string, matchID uuid.UUID, side model.Side, cells []model.BoardCellInput) error {
	q := fmt.Sprintf(`INSERT INTO %s (match_id, x, y, marker) VALUES ($1, $2, $3, $4)`, table)
	for _, in := range cells {
		row := board.EncodeBoardCell(matchID, side, in)
		if _, err := tx.Exec(ctx, q, row.MatchID, row.X, row.Y, row.Marker); err != nil {
			return err
		}
	}
	return nil
}

// SaveGameDetail inserts one post-game summary row. A vanished owner surfaces
// through the foreign key as ErrNotFound.
func (r *MatchRepo) SaveGameDetail(ctx context.Context, userID uuid.UUID, in model.GameDetailInput, now time.Time) error {
	if in.TotalHits == nil {
		return fmt.Errorf("%w: missing totalHits", errs.ErrValidation)
	}
	const q = `
INSERT INTO game_details (user_id, username, total_hits, time_consumed, result, game_date, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Pool.Exec(ctx, q, userID, in.Username, *in.TotalHits, in.TimeConsumed, in.Result, in.Date, now)
	if err != nil {
		if isForeignKeyViolation(err) {
			return errs.ErrNotFound
		}
		return classify(err)
	}
	return nil
}

// FindMatchesByUser returns the user's matches ordered most recent first.
func (r *MatchRepo) FindMatchesByUser(ctx context.Context, userID uuid.UUID) ([]model.Match, error) {
	const q = `
SELECT id, user_id, name, game_date, fire_direction, total_hits, created_at
FROM matches
WHERE user_id=$1
ORDER BY created_at DESC`
	rows, err := r.db.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var out []model.Match
	for rows.Next() {
		var m model.Match
		if err = rows.Scan(&m.ID, &m.UserID, &m.Name, &m.Date, &m.FireDirection, &m.TotalHits, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, classify(rows.Err())
}

// FindMatchByUserAndID returns the match only when it belongs to userID.
// This is the single owner-scoping check relied on by the service layer.
func (r *MatchRepo) FindMatchByUserAndID(ctx context.Context, userID, matchID uuid.UUID) (*model.Match, error) {
	const q = `
SELECT id, user_id, name, game_date, fire_direction, total_hits, created_at
FROM matches
WHERE id=$1 AND user_id=$2`
	row := r.db.Pool.QueryRow(ctx, q, matchID, userID)
	var m model.Match
	if err := row.Scan(&m.ID, &m.UserID, &m.Name, &m.Date, &m.FireDirection, &m.TotalHits, &m.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, classify(err)
	}
	return &m, nil
}

// FindShipRows returns the stored ship rows of one logical ship partition in
// insertion order, which preserves the first-seen ship ordering.
func (r *MatchRepo) FindShipRows(ctx context.Context, matchID uuid.UUID, table model.Table) ([]model.ShipRow, error) {
	name, ok := shipTables[table]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a ship partition", errs.ErrInvalidTable, table)
	}
	q := fmt.Sprintf(`SELECT match_id, ship_id, x, y, hit FROM %s WHERE match_id=$1 ORDER BY id`, name)
	rows, err := r.db.Pool.Query(ctx, q, matchID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	side := table.Side()
	var out []model.ShipRow
	for rows.Next() {
		var sr model.ShipRow
		if err = rows.Scan(&sr.MatchID, &sr.ShipID, &sr.X, &sr.Y, &sr.Hit); err != nil {
			return nil, err
		}
		sr.Side = side
		out = append(out, sr)
	}
	return out, classify(rows.Err())
}

// FindBoardRows returns the stored board rows of one logical board partition.
func (r *MatchRepo) FindBoardRows(ctx context.Context, matchID uuid.UUID, table model.Table) ([]model.BoardRow, error) {
	name, ok := boardTables[table]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a board partition", errs.ErrInvalidTable, table)
	}
	q := fmt.Sprintf(`SELECT match_id, x, y, marker FROM %s WHERE match_id=$1 ORDER BY id`, name)
	rows, err := r.db.Pool.Query(ctx, q, matchID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	side := table.Side()
	var out []model.BoardRow
	for rows.Next() {
		var br model.BoardRow
		if err = rows.Scan(&br.MatchID, &br.X, &br.Y, &br.Marker); err != nil {
			return nil, err
		}
		br.Side = side
		out = append(out, br)
	}
	return out, classify(rows.Err())
}
