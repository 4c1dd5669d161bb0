// Package service contains application services for authentication and match history.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/seawolf-games/battleship-server/internal/errs"
	"github.com/seawolf-games/battleship-server/internal/fleet"
	"github.com/seawolf-games/battleship-server/internal/model"
	"github.com/seawolf-games/battleship-server/internal/repository"
)

// HistoryService defines operations over completed matches.
type HistoryService interface {
	// SaveMatch validates the payload and persists a completed match atomically.
	SaveMatch(ctx context.Context, userID uuid.UUID, in model.SaveMatchInput) (uuid.UUID, error)
	// GetMatchDetail returns one match with both reconstructed fleets and boards.
	GetMatchDetail(ctx context.Context, userID, matchID uuid.UUID) (*model.MatchDetail, error)
	// GetMatchHistory returns the user's match summaries, most recent first.
	GetMatchHistory(ctx context.Context, userID uuid.UUID) ([]model.Match, error)
	// SaveGameDetail validates and records a post-game summary for the user.
	SaveGameDetail(ctx context.Context, userID uuid.UUID, in model.GameDetailInput) error
}

type HistoryServiceImpl struct {
	matches repository.MatchRepository
	log     *zap.Logger
}

// NewHistoryService constructs HistoryService with required dependencies.
func NewHistoryService(matches repository.MatchRepository, log *zap.Logger) *HistoryServiceImpl {
	return &HistoryServiceImpl{matches: matches, log: log}
}

// SaveMatch validates required summary fields and both fleets, then delegates
// the atomic write to the repository. Nothing is written on validation failure.
func (s *HistoryServiceImpl) SaveMatch(ctx context.Context, userID uuid.UUID, in model.SaveMatchInput) (uuid.UUID, error) {
	if userID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: empty userID", errs.ErrValidation)
	}
	if in.Name == "" {
		return uuid.Nil, fmt.Errorf("%w: missing name", errs.ErrValidation)
	}
	if in.Date == "" {
		return uuid.Nil, fmt.Errorf("%w: missing date", errs.ErrValidation)
	}
	if in.FireDirection == "" {
		return uuid.Nil, fmt.Errorf("%w: missing fireDirection", errs.ErrValidation)
	}
	if in.TotalHits == nil {
		return uuid.Nil, fmt.Errorf("%w: missing totalHits", errs.ErrValidation)
	}
	if len(in.SelfShips) == 0 || len(in.RivalShips) == 0 {
		return uuid.Nil, fmt.Errorf("%w: both fleets must have at least one ship", errs.ErrValidation)
	}
	return s.matches.SaveMatch(ctx, userID, in, time.Now().UTC())
}

// GetMatchDetail fetches the owner-scoped match, its four row partitions, and
// runs the fleet reconstructor over both ship partitions. A match whose ship
// partitions are empty is reported as not found, matching the write invariant
// that a match never exists without ships on both sides.
func (s *HistoryServiceImpl) GetMatchDetail(ctx context.Context, userID, matchID uuid.UUID) (*model.MatchDetail, error) {
	m, err := s.matches.FindMatchByUserAndID(ctx, userID, matchID)
	if err != nil {
		return nil, err
	}

	selfRows, err := s.matches.FindShipRows(ctx, matchID, model.TableSelfShips)
	if err != nil {
		return nil, err
	}
	rivalRows, err := s.matches.FindShipRows(ctx, matchID, model.TableRivalShips)
	if err != nil {
		return nil, err
	}
	selfBoard, err := s.matches.FindBoardRows(ctx, matchID, model.TableSelfBoard)
	if err != nil {
		return nil, err
	}
	rivalBoard, err := s.matches.FindBoardRows(ctx, matchID, model.TableRivalBoard)
	if err != nil {
		return nil, err
	}

	if len(selfRows) == 0 || len(rivalRows) == 0 {
		// One side present without the other points at corrupt data, not a
		// missing match; surface it in the logs before answering not-found.
		if len(selfRows) != len(rivalRows) {
			s.log.Warn("match has ship rows on only one side",
				zap.String("matchID", matchID.String()),
				zap.Int("selfRows", len(selfRows)),
				zap.Int("rivalRows", len(rivalRows)),
			)
		}
		return nil, errs.ErrNotFound
	}

	selfFleet, err := fleet.Reconstruct(selfRows)
	if err != nil {
		s.log.Error("self fleet reconstruction failed",
			zap.String("matchID", matchID.String()), zap.Error(err))
		return nil, err
	}
	rivalFleet, err := fleet.Reconstruct(rivalRows)
	if err != nil {
		s.log.Error("rival fleet reconstruction failed",
			zap.String("matchID", matchID.String()), zap.Error(err))
		return nil, err
	}

	return &model.MatchDetail{
		Match:      *m,
		Ships:      [2][]model.Ship{selfFleet, rivalFleet},
		SelfBoard:  selfBoard,
		RivalBoard: rivalBoard,
	}, nil
}

// SaveGameDetail validates the post-game summary and records it. Every field
// must be present; nothing is written on validation failure.
func (s *HistoryServiceImpl) SaveGameDetail(ctx context.Context, userID uuid.UUID, in model.GameDetailInput) error {
	if userID == uuid.Nil {
		return fmt.Errorf("%w: empty userID", errs.ErrValidation)
	}
	if in.Username == "" {
		return fmt.Errorf("%w: missing username", errs.ErrValidation)
	}
	if in.TotalHits == nil {
		return fmt.Errorf("%w: missing totalHits", errs.ErrValidation)
	}
	if in.TimeConsumed == "" {
		return fmt.Errorf("%w: missing timeConsumed", errs.ErrValidation)
	}
	if in.Result == "" {
		return fmt.Errorf("%w: missing result", errs.ErrValidation)
	}
	if in.Date == "" {
		return fmt.Errorf("%w: missing date", errs.ErrValidation)
	}
	return s.matches.SaveGameDetail(ctx, userID, in, time.Now().UTC())
}

// GetMatchHistory lists the user's matches; an empty history is not found.
func (s *HistoryServiceImpl) GetMatchHistory(ctx context.Context, userID uuid.UUID) ([]model.Match, error) {
	matches, err := s.matches.FindMatchesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, errs.ErrNotFound
	}
	return matches, nil
}
