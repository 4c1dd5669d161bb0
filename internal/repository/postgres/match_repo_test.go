package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/seawolf-games/battleship-server/internal/errs"
	"github.com/seawolf-games/battleship-server/internal/model"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

func intPtr(v int) *int { return &v }

func saveInput() model.SaveMatchInput {
	return model.SaveMatchInput{
		Name:          "evening skirmish",
		Date:          "2024-03-01",
		FireDirection: "horizontal",
		TotalHits:     intPtr(3),
		SelfShips: []model.ShipInput{
			{ShipID: 1, Cells: []model.Cell{{X: 0, Y: 0}, {X: 0, Y: 1}}},
		},
		RivalShips: []model.ShipInput{
			{ShipID: 2, Cells: []model.Cell{{X: 5, Y: 5, Hit: true}}},
		},
		SelfBoard:  []model.BoardCellInput{{X: 0, Y: 0, Marker: "ship"}},
		RivalBoard: []model.BoardCellInput{{X: 5, Y: 5, Marker: "hit"}},
	}
}

func TestMatchRepo_SaveMatch_OK(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewMatchRepo(db)

	ctx := context.Background()
	userID := uuid.Must(uuid.NewV4())
	now := time.Now().UTC()
	in := saveInput()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO matches \(id, user_id, name, game_date, fire_direction, total_hits, created_at\)`).
		WithArgs(pgxmock.AnyArg(), userID, in.Name, in.Date, in.FireDirection, 3, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO self_ships \(match_id, ship_id, x, y, hit\)`).
		WithArgs(pgxmock.AnyArg(), int64(1), 0, 0, false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO self_ships \(match_id, ship_id, x, y, hit\)`).
		WithArgs(pgxmock.AnyArg(), int64(1), 0, 1, false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO rival_ships \(match_id, ship_id, x, y, hit\)`).
		WithArgs(pgxmock.AnyArg(), int64(2), 5, 5, true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO self_board \(match_id, x, y, marker\)`).
		WithArgs(pgxmock.AnyArg(), 0, 0, "ship").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO rival_board \(match_id, x, y, marker\)`).
		WithArgs(pgxmock.AnyArg(), 5, 5, "hit").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	matchID, err := r.SaveMatch(ctx, userID, in, now)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, matchID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchRepo_SaveMatch_RollsBackOnMidWriteFailure(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewMatchRepo(db)

	ctx := context.Background()
	userID := uuid.Must(uuid.NewV4())
	now := time.Now().UTC()
	in := saveInput()

	// Failure while writing the rival board: everything before it must be
	// rolled back, nothing committed.
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO matches`).
		WithArgs(pgxmock.AnyArg(), userID, in.Name, in.Date, in.FireDirection, 3, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO self_ships`).
		WithArgs(pgxmock.AnyArg(), int64(1), 0, 0, false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO self_ships`).
		WithArgs(pgxmock.AnyArg(), int64(1), 0, 1, false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO rival_ships`).
		WithArgs(pgxmock.AnyArg(), int64(2), 5, 5, true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO self_board`).
		WithArgs(pgxmock.AnyArg(), 0, 0, "ship").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO rival_board`).
		WithArgs(pgxmock.AnyArg(), 5, 5, "hit").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := r.SaveMatch(ctx, userID, in, now)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchRepo_SaveMatch_NilTotalHitsIsRejected(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewMatchRepo(db)

	in := saveInput()
	in.TotalHits = nil

	// Rejected before any transaction is opened.
	_, err := r.SaveMatch(context.Background(), uuid.Must(uuid.NewV4()), in, time.Now())
	require.ErrorIs(t, err, errs.ErrValidation)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchRepo_SaveMatch_BeginErr(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewMatchRepo(db)

	mock.ExpectBegin().WillReturnError(errors.New("boom"))
	_, err := r.SaveMatch(context.Background(), uuid.Must(uuid.NewV4()), saveInput(), time.Now())
	require.Error(t, err)
}

func TestMatchRepo_SaveMatch_CommitErr(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewMatchRepo(db)

	userID := uuid.Must(uuid.NewV4())
	now := time.Now().UTC()
	in := saveInput()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO matches`).
		WithArgs(pgxmock.AnyArg(), userID, in.Name, in.Date, in.FireDirection, 3, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO self_ships`).
		WithArgs(pgxmock.AnyArg(), int64(1), 0, 0, false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO self_ships`).
		WithArgs(pgxmock.AnyArg(), int64(1), 0, 1, false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO rival_ships`).
		WithArgs(pgxmock.AnyArg(), int64(2), 5, 5, true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO self_board`).
		WithArgs(pgxmock.AnyArg(), 0, 0, "ship").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO rival_board`).
		WithArgs(pgxmock.AnyArg(), 5, 5, "hit").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit().WillReturnError(errors.New("commit-fail"))

	_, err := r.SaveMatch(context.Background(), userID, in, now)
	require.Error(t, err)
}

func TestMatchRepo_SaveGameDetail(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewMatchRepo(db)

	userID := uuid.Must(uuid.NewV4())
	now := time.Now().UTC()
	in := model.GameDetailInput{
		Username:     "ahab",
		TotalHits:    intPtr(17),
		TimeConsumed: "04:21",
		Result:       "won",
		Date:         "2024-03-01",
	}

	mock.ExpectExec(`INSERT INTO game_details \(user_id, username, total_hits, time_consumed, result, game_date, created_at\)`).
		WithArgs(userID, "ahab", 17, "04:21", "won", "2024-03-01", now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, r.SaveGameDetail(context.Background(), userID, in, now))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchRepo_SaveGameDetail_MissingUserIsNotFound(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewMatchRepo(db)

	userID := uuid.Must(uuid.NewV4())
	now := time.Now().UTC()
	in := model.GameDetailInput{
		Username:     "ahab",
		TotalHits:    intPtr(17),
		TimeConsumed: "04:21",
		Result:       "lost",
		Date:         "2024-03-01",
	}

	mock.ExpectExec(`INSERT INTO game_details`).
		WithArgs(userID, "ahab", 17, "04:21", "lost", "2024-03-01", now).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	err := r.SaveGameDetail(context.Background(), userID, in, now)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestMatchRepo_FindMatchByUserAndID_OwnerScoped(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewMatchRepo(db)

	ctx := context.Background()
	userID := uuid.Must(uuid.NewV4())
	matchID := uuid.Must(uuid.NewV4())
	ts := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, user_id, name, game_date, fire_direction, total_hits, created_at FROM matches WHERE id=\$1 AND user_id=\$2`).
		WithArgs(matchID, userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "name", "game_date", "fire_direction", "total_hits", "created_at"}).
			AddRow(matchID, userID, "m", "2024-03-01", "horizontal", 3, ts))

	m, err := r.FindMatchByUserAndID(ctx, userID, matchID)
	require.NoError(t, err)
	require.Equal(t, matchID, m.ID)
	require.Equal(t, userID, m.UserID)

	// A match owned by someone else yields no row, never the data.
	mock.ExpectQuery(`SELECT id, user_id, name, game_date, fire_direction, total_hits, created_at FROM matches WHERE id=\$1 AND user_id=\$2`).
		WithArgs(matchID, userID).
		WillReturnError(pgx.ErrNoRows)

	_, err = r.FindMatchByUserAndID(ctx, userID, matchID)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestMatchRepo_FindMatchesByUser(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewMatchRepo(db)

	userID := uuid.Must(uuid.NewV4())
	newer := uuid.Must(uuid.NewV4())
	older := uuid.Must(uuid.NewV4())
	ts := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, user_id, name, game_date, fire_direction, total_hits, created_at FROM matches WHERE user_id=\$1 ORDER BY created_at DESC`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "name", "game_date", "fire_direction", "total_hits", "created_at"}).
			AddRow(newer, userID, "second", "2024-03-02", "vertical", 5, ts).
			AddRow(older, userID, "first", "2024-03-01", "horizontal", 3, ts.Add(-time.Hour)))

	out, err := r.FindMatchesByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, newer, out[0].ID)
	require.Equal(t, older, out[1].ID)
}

func TestMatchRepo_FindShipRows(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewMatchRepo(db)

	matchID := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT match_id, ship_id, x, y, hit FROM rival_ships WHERE match_id=\$1 ORDER BY id`).
		WithArgs(matchID).
		WillReturnRows(pgxmock.NewRows([]string{"match_id", "ship_id", "x", "y", "hit"}).
			AddRow(matchID, int64(2), 5, 5, true))

	rows, err := r.FindShipRows(context.Background(), matchID, model.TableRivalShips)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, model.SideRival, rows[0].Side)
	require.Equal(t, int64(2), rows[0].ShipID)
}

func TestMatchRepo_FindShipRows_InvalidTable(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewMatchRepo(db)

	matchID := uuid.Must(uuid.NewV4())

	_, err := r.FindShipRows(context.Background(), matchID, model.Table("torpedoes"))
	require.ErrorIs(t, err, errs.ErrInvalidTable)

	// Board partitions are not ship partitions.
	_, err = r.FindShipRows(context.Background(), matchID, model.TableSelfBoard)
	require.ErrorIs(t, err, errs.ErrInvalidTable)
}

func TestMatchRepo_FindBoardRows(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewMatchRepo(db)

	matchID := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT match_id, x, y, marker FROM self_board WHERE match_id=\$1 ORDER BY id`).
		WithArgs(matchID).
		WillReturnRows(pgxmock.NewRows([]string{"match_id", "x", "y", "marker"}).
			AddRow(matchID, 0, 0, "ship").
			AddRow(matchID, 1, 0, "miss"))

	rows, err := r.FindBoardRows(context.Background(), matchID, model.TableSelfBoard)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, model.SideSelf, rows[0].Side)
	require.Equal(t, "miss", rows[1].Marker)

	_, err = r.FindBoardRows(context.Background(), matchID, model.TableSelfShips)
	require.ErrorIs(t, err, errs.ErrInvalidTable)
}
