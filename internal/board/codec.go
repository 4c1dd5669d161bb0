// Package board converts between in-memory cells and their normalized storage rows.
package board

import (
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/seawolf-games/battleship-server/internal/errs"
	"github.com/seawolf-games/battleship-server/internal/model"
)

// Size is the fixed board extent. Valid coordinates are [0, Size) on both axes.
const Size = 10

// InRange reports whether (x, y) lies on the board.
func InRange(x, y int) bool {
	return x >= 0 && x < Size && y >= 0 && y < Size
}

// EncodeShipCell maps an in-memory ship cell to its normalized row shape.
// Pure and total for well-typed input.
func EncodeShipCell(matchID uuid.UUID, shipID int64, side model.Side, c model.Cell) model.ShipRow {
	return model.ShipRow{
		MatchID: matchID,
		ShipID:  shipID,
		X:       c.X,
		Y:       c.Y,
		Hit:     c.Hit,
		Side:    side,
	}
}

// EncodeBoardCell maps an in-memory board cell to its normalized row shape.
func EncodeBoardCell(matchID uuid.UUID, side model.Side, in model.BoardCellInput) model.BoardRow {
	return model.BoardRow{
		MatchID: matchID,
		X:       in.X,
		Y:       in.Y,
		Marker:  in.Marker,
		Side:    side,
	}
}

// DecodeShipRow extracts the cell from a stored ship row, validating that the
// coordinates fit the board extent.
func DecodeShipRow(r model.ShipRow) (model.Cell, error) {
	if !InRange(r.X, r.Y) {
		return model.Cell{}, fmt.Errorf("%w: ship cell (%d,%d) outside %dx%d board", errs.ErrMalformedRow, r.X, r.Y, Size, Size)
	}
	return model.Cell{X: r.X, Y: r.Y, Hit: r.Hit}, nil
}

// DecodeBoardRow validates a stored board row against the board extent.
func DecodeBoardRow(r model.BoardRow) (model.BoardRow, error) {
	if !InRange(r.X, r.Y) {
		return model.BoardRow{}, fmt.Errorf("%w: board cell (%d,%d) outside %dx%d board", errs.ErrMalformedRow, r.X, r.Y, Size, Size)
	}
	return r, nil
}
