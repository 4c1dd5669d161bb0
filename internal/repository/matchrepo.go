package repository

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/seawolf-games/battleship-server/internal/model"
)

// MatchRepository persists completed matches and serves their row partitions.
type MatchRepository interface {
	// SaveMatch writes the match row and all four row-sets (self/rival ships,
	// self/rival boards) as a single transaction and returns the freshly
	// minted match id. Partial writes must never become visible.
	SaveMatch(ctx context.Context, userID uuid.UUID, in model.SaveMatchInput, now time.Time) (uuid.UUID, error)

	// FindMatchesByUser returns the user's matches, most recent first.
	FindMatchesByUser(ctx context.Context, userID uuid.UUID) ([]model.Match, error)

	// FindMatchByUserAndID returns a match only if it belongs to userID.
	FindMatchByUserAndID(ctx context.Context, userID, matchID uuid.UUID) (*model.Match, error)

	// FindShipRows returns the stored ship rows of one logical partition.
	FindShipRows(ctx context.Context, matchID uuid.UUID, table model.Table) ([]model.ShipRow, error)

	// FindBoardRows returns the stored board rows of one logical partition.
	FindBoardRows(ctx context.Context, matchID uuid.UUID, table model.Table) ([]model.BoardRow, error)

	// SaveGameDetail records a post-game summary (outcome, time consumed)
	// for the user. A missing user is reported as not found.
	SaveGameDetail(ctx context.Context, userID uuid.UUID, in model.GameDetailInput, now time.Time) error
}
