// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Side distinguishes whose ships/board a row belongs to.
type Side string

const (
	SideSelf  Side = "self"
	SideRival Side = "rival"
)

// Table names one of the four logical row partitions stored per match.
type Table string

const (
	TableSelfShips  Table = "self_ships"
	TableRivalShips Table = "rival_ships"
	TableSelfBoard  Table = "self_board"
	TableRivalBoard Table = "rival_board"
)

// Side reports which side the partition belongs to.
func (t Table) Side() Side {
	if t == TableRivalShips || t == TableRivalBoard {
		return SideRival
	}
	return SideSelf
}

// Orientation of a reconstructed ship, derived from its cell layout.
type Orientation string

const (
	OrientationHorizontal Orientation = "horizontal"
	OrientationVertical   Orientation = "vertical"
	OrientationSingle     Orientation = "single"
)

// User represents an account stored on the server.
type User struct {
	ID        uuid.UUID // PK
	Username  string    // unique
	Email     string
	PwdHash   []byte // bcrypt
	CreatedAt time.Time
}

// Match is one completed, persisted game session. Immutable once created.
type Match struct {
	ID            uuid.UUID
	UserID        uuid.UUID // FK -> users.id
	Name          string
	Date          string // client-reported play date, stored verbatim
	FireDirection string
	TotalHits     int
	CreatedAt     time.Time
}

// Cell is one occupied board position with its hit state.
type Cell struct {
	X   int
	Y   int
	Hit bool
}

// ShipRow is the normalized stored shape: one row per occupied ship cell.
// Rows sharing a ShipID within a (match, side) partition compose one logical ship.
type ShipRow struct {
	MatchID uuid.UUID
	ShipID  int64
	X       int
	Y       int
	Hit     bool
	Side    Side
}

// BoardRow is one stored grid cell of the full self/rival board state,
// including misses, independent of ship grouping. Returned verbatim.
type BoardRow struct {
	MatchID uuid.UUID
	X       int
	Y       int
	Marker  string
	Side    Side
}

// Ship is the reconstructed in-memory view of one logical ship.
// Sunk is true iff every cell has been hit.
type Ship struct {
	ShipID      int64
	Side        Side
	Cells       []Cell // canonical order: sorted by (y, x) ascending
	Length      int
	Orientation Orientation
	Sunk        bool
}

// ShipInput is one ship of an incoming save payload.
type ShipInput struct {
	ShipID int64
	Cells  []Cell
}

// BoardCellInput is one board cell of an incoming save payload.
type BoardCellInput struct {
	X      int
	Y      int
	Marker string
}

// SaveMatchInput is the validated save-match payload. TotalHits is a pointer
// so an absent field is distinguishable from an explicit zero.
type SaveMatchInput struct {
	Name          string
	Date          string
	FireDirection string
	TotalHits     *int
	SelfShips     []ShipInput
	RivalShips    []ShipInput
	SelfBoard     []BoardCellInput
	RivalBoard    []BoardCellInput
}

// GameDetailInput is the post-game summary payload: who played, the outcome,
// and how long the game took. TotalHits is a pointer so an absent field is
// distinguishable from an explicit zero.
type GameDetailInput struct {
	Username     string
	TotalHits    *int
	TimeConsumed string
	Result       string // "won" / "lost", stored verbatim
	Date         string // client-reported play date, stored verbatim
}

// MatchDetail is the full read-side view of one match: both reconstructed
// fleets (index 0 self, index 1 rival) plus the raw board rows.
type MatchDetail struct {
	Match      Match
	Ships      [2][]Ship
	SelfBoard  []BoardRow
	RivalBoard []BoardRow
}
