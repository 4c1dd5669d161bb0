// Package fleet rebuilds structured ships from their normalized storage rows.
package fleet

import (
	"fmt"
	"sort"

	"github.com/seawolf-games/battleship-server/internal/board"
	"github.com/seawolf-games/battleship-server/internal/errs"
	"github.com/seawolf-games/battleship-server/internal/model"
)

// Reconstruct groups stored ship rows into structured ships.
//
// Grouping is stable: the output ship order matches the order ship ids first
// appear in the input, since downstream pairing of self/rival fleets is
// position-sensitive. Cells within a ship are put in canonical order, sorted
// by (y, x) ascending, regardless of storage row order.
//
// Pure function; never touches storage.
func Reconstruct(rows []model.ShipRow) ([]model.Ship, error) {
	groups := make(map[int64][]model.Cell)
	var order []int64
	var side model.Side

	for _, r := range rows {
		c, err := board.DecodeShipRow(r)
		if err != nil {
			return nil, fmt.Errorf("ship %d: %w", r.ShipID, err)
		}
		if _, seen := groups[r.ShipID]; !seen {
			order = append(order, r.ShipID)
		}
		groups[r.ShipID] = append(groups[r.ShipID], c)
		side = r.Side
	}

	ships := make([]model.Ship, 0, len(order))
	for _, id := range order {
		cells := groups[id]
		sort.Slice(cells, func(i, j int) bool {
			if cells[i].Y != cells[j].Y {
				return cells[i].Y < cells[j].Y
			}
			return cells[i].X < cells[j].X
		})

		orient, err := classify(cells)
		if err != nil {
			return nil, fmt.Errorf("ship %d: %w", id, err)
		}

		ships = append(ships, model.Ship{
			ShipID:      id,
			Side:        side,
			Cells:       cells,
			Length:      len(cells),
			Orientation: orient,
			Sunk:        allHit(cells),
		})
	}
	return ships, nil
}

// classify derives the orientation and validates that the cells form a single
// straight contiguous line. Cells must already be in canonical order.
func classify(cells []model.Cell) (model.Orientation, error) {
	if len(cells) == 1 {
		return model.OrientationSingle, nil
	}

	horizontal := true
	vertical := true
	for i := 1; i < len(cells); i++ {
		if cells[i].Y != cells[0].Y {
			horizontal = false
		}
		if cells[i].X != cells[0].X {
			vertical = false
		}
	}

	switch {
	case horizontal:
		for i := 1; i < len(cells); i++ {
			if cells[i].X != cells[i-1].X+1 {
				return "", fmt.Errorf("%w: cells not contiguous", errs.ErrInvalidShipLayout)
			}
		}
		return model.OrientationHorizontal, nil
	case vertical:
		for i := 1; i < len(cells); i++ {
			if cells[i].Y != cells[i-1].Y+1 {
				return "", fmt.Errorf("%w: cells not contiguous", errs.ErrInvalidShipLayout)
			}
		}
		return model.OrientationVertical, nil
	default:
		return "", fmt.Errorf("%w: cells not co-linear", errs.ErrInvalidShipLayout)
	}
}

func allHit(cells []model.Cell) bool {
	for _, c := range cells {
		if !c.Hit {
			return false
		}
	}
	return true
}
