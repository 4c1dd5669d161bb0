package httpserver

import (
	"time"

	"github.com/seawolf-games/battleship-server/internal/model"
)

// Request bodies use pointer fields where the API distinguishes an absent
// field from a zero value, so presence is checked once at the boundary.

type signupRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type loginRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

type changePasswordRequest struct {
	OldPassword *string `json:"oldPassword"`
	NewPassword *string `json:"newPassword"`
}

type cellPayload struct {
	X   int  `json:"x"`
	Y   int  `json:"y"`
	Hit bool `json:"hit"`
}

type shipPayload struct {
	ShipID int64         `json:"shipId"`
	Cells  []cellPayload `json:"cells"`
}

type boardCellPayload struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Marker string `json:"marker"`
}

type saveMatchRequest struct {
	Name          *string            `json:"name"`
	Date          *string            `json:"date"`
	FireDirection *string            `json:"fireDirection"`
	TotalHits     *int               `json:"totalHits"`
	SelfShips     []shipPayload      `json:"selfShips"`
	RivalShips    []shipPayload      `json:"rivalShips"`
	SelfBoard     []boardCellPayload `json:"selfBoard"`
	RivalBoard    []boardCellPayload `json:"rivalBoard"`
}

type gameDetailRequest struct {
	Username     *string `json:"username"`
	TotalHits    *int    `json:"totalHits"`
	TimeConsumed *string `json:"timeConsumed"`
	Result       *string `json:"result"`
	Date         *string `json:"date"`
}

func (r gameDetailRequest) toGameDetailInput() model.GameDetailInput {
	return model.GameDetailInput{
		Username:     deref(r.Username),
		TotalHits:    r.TotalHits,
		TimeConsumed: deref(r.TimeConsumed),
		Result:       deref(r.Result),
		Date:         deref(r.Date),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// toSaveMatchInput maps the wire payload onto the domain input. Absent string
// fields become empty strings; the service treats both as missing.
func (r saveMatchRequest) toSaveMatchInput() model.SaveMatchInput {
	return model.SaveMatchInput{
		Name:          deref(r.Name),
		Date:          deref(r.Date),
		FireDirection: deref(r.FireDirection),
		TotalHits:     r.TotalHits,
		SelfShips:     toShipInputs(r.SelfShips),
		RivalShips:    toShipInputs(r.RivalShips),
		SelfBoard:     toBoardInputs(r.SelfBoard),
		RivalBoard:    toBoardInputs(r.RivalBoard),
	}
}

func toShipInputs(in []shipPayload) []model.ShipInput {
	out := make([]model.ShipInput, 0, len(in))
	for _, s := range in {
		cells := make([]model.Cell, 0, len(s.Cells))
		for _, c := range s.Cells {
			cells = append(cells, model.Cell{X: c.X, Y: c.Y, Hit: c.Hit})
		}
		out = append(out, model.ShipInput{ShipID: s.ShipID, Cells: cells})
	}
	return out
}

func toBoardInputs(in []boardCellPayload) []model.BoardCellInput {
	out := make([]model.BoardCellInput, 0, len(in))
	for _, c := range in {
		out = append(out, model.BoardCellInput{X: c.X, Y: c.Y, Marker: c.Marker})
	}
	return out
}

// Response shapes.

type shipResponse struct {
	ShipID      int64         `json:"shipId"`
	Side        string        `json:"side"`
	Cells       []cellPayload `json:"cells"`
	Length      int           `json:"length"`
	Orientation string        `json:"orientation"`
	Sunk        bool          `json:"sunk"`
}

type boardRowResponse struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Marker string `json:"marker"`
}

type matchResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Date          string `json:"date"`
	FireDirection string `json:"fireDirection"`
	TotalHits     int    `json:"totalHits"`
	CreatedAt     string `json:"createdAt"`
}

type matchDetailResponse struct {
	Match      matchResponse      `json:"match"`
	Ships      [2][]shipResponse  `json:"ships"`
	SelfBoard  []boardRowResponse `json:"selfBoard"`
	RivalBoard []boardRowResponse `json:"rivalBoard"`
}

func toShipResponses(ships []model.Ship) []shipResponse {
	out := make([]shipResponse, 0, len(ships))
	for _, s := range ships {
		cells := make([]cellPayload, 0, len(s.Cells))
		for _, c := range s.Cells {
			cells = append(cells, cellPayload{X: c.X, Y: c.Y, Hit: c.Hit})
		}
		out = append(out, shipResponse{
			ShipID:      s.ShipID,
			Side:        string(s.Side),
			Cells:       cells,
			Length:      s.Length,
			Orientation: string(s.Orientation),
			Sunk:        s.Sunk,
		})
	}
	return out
}

func toBoardResponses(rows []model.BoardRow) []boardRowResponse {
	out := make([]boardRowResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, boardRowResponse{X: r.X, Y: r.Y, Marker: r.Marker})
	}
	return out
}

func toMatchResponse(m model.Match) matchResponse {
	return matchResponse{
		ID:            m.ID.String(),
		Name:          m.Name,
		Date:          m.Date,
		FireDirection: m.FireDirection,
		TotalHits:     m.TotalHits,
		CreatedAt:     m.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toMatchDetailResponse(d *model.MatchDetail) matchDetailResponse {
	return matchDetailResponse{
		Match:      toMatchResponse(d.Match),
		Ships:      [2][]shipResponse{toShipResponses(d.Ships[0]), toShipResponses(d.Ships[1])},
		SelfBoard:  toBoardResponses(d.SelfBoard),
		RivalBoard: toBoardResponses(d.RivalBoard),
	}
}
