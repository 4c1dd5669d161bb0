// Package httpserver exposes the battleship REST API over Fiber.
package httpserver

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/seawolf-games/battleship-server/internal/service"
)

// Server wires services into HTTP handlers.
type Server struct {
	auth    service.AuthService
	history service.HistoryService
	signKey []byte
	log     *zap.Logger
}

// New constructs an HTTP server with injected services.
func New(auth service.AuthService, history service.HistoryService, signKey []byte, log *zap.Logger) *Server {
	return &Server{auth: auth, history: history, signKey: signKey, log: log}
}

// Register mounts all routes on the app.
func (s *Server) Register(app *fiber.App) {
	users := app.Group("/api/users")
	users.Post("/signup", s.handleSignup)
	users.Post("/login", s.handleLogin)
	users.Get("/:username", s.handleGetUser)

	secured := users.Group("/:userID", RequireAuth(s.signKey))
	secured.Patch("/password", s.handleChangePassword)
	secured.Delete("/", s.handleDeleteUser)
	secured.Post("/matches", s.handleSaveMatch)
	secured.Get("/matches", s.handleMatchHistory)
	secured.Get("/matches/:matchID", s.handleMatchDetail)
	secured.Post("/history", s.handleSaveGameDetail)
}

func (s *Server) handleSignup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad request body"})
	}
	if req.Username == nil || req.Email == nil || req.Password == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username, email and password are required"})
	}

	userID, err := s.auth.Register(c.Context(), *req.Username, *req.Email, *req.Password)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "user created",
		"userId":  userID.String(),
	})
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad request body"})
	}
	if req.Username == nil || req.Password == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username and password are required"})
	}

	tok, u, err := s.auth.LoginWithIP(c.Context(), *req.Username, *req.Password, c.IP())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"token":     tok.AccessToken,
		"expiresAt": tok.ExpiresAt.UTC(),
		"userId":    u.ID.String(),
	})
}

func (s *Server) handleGetUser(c *fiber.Ctx) error {
	u, err := s.auth.Lookup(c.Context(), c.Params("username"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"username": u.Username})
}

func (s *Server) handleChangePassword(c *fiber.Ctx) error {
	userID, err := s.pathUserID(c)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "token does not match user"})
	}
	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad request body"})
	}
	if req.OldPassword == nil || req.NewPassword == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "oldPassword and newPassword are required"})
	}

	if err := s.auth.ChangePassword(c.Context(), userID, *req.OldPassword, *req.NewPassword); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "password updated"})
}

func (s *Server) handleDeleteUser(c *fiber.Ctx) error {
	userID, err := s.pathUserID(c)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "token does not match user"})
	}
	if err := s.auth.DeleteAccount(c.Context(), userID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "user deleted"})
}

func (s *Server) handleSaveMatch(c *fiber.Ctx) error {
	userID, err := s.pathUserID(c)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "token does not match user"})
	}
	var req saveMatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad request body"})
	}

	matchID, err := s.history.SaveMatch(c.Context(), userID, req.toSaveMatchInput())
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "match saved",
		"matchId": matchID.String(),
	})
}

func (s *Server) handleSaveGameDetail(c *fiber.Ctx) error {
	userID, err := s.pathUserID(c)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "token does not match user"})
	}
	var req gameDetailRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad request body"})
	}

	if err := s.history.SaveGameDetail(c.Context(), userID, req.toGameDetailInput()); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "game details created"})
}

func (s *Server) handleMatchHistory(c *fiber.Ctx) error {
	userID, err := s.pathUserID(c)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "token does not match user"})
	}
	matches, err := s.history.GetMatchHistory(c.Context(), userID)
	if err != nil {
		return fail(c, err)
	}
	out := make([]matchResponse, 0, len(matches))
	for _, m := range matches {
		out = append(out, toMatchResponse(m))
	}
	return c.JSON(out)
}

func (s *Server) handleMatchDetail(c *fiber.Ctx) error {
	userID, err := s.pathUserID(c)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "token does not match user"})
	}
	matchID, err := uuid.FromString(c.Params("matchID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad match id"})
	}

	detail, err := s.history.GetMatchDetail(c.Context(), userID, matchID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(toMatchDetailResponse(detail))
}

// pathUserID parses the :userID path param and requires it to match the
// authenticated token subject, so a valid token never unlocks another account.
func (s *Server) pathUserID(c *fiber.Ctx) (uuid.UUID, error) {
	pathID, err := uuid.FromString(c.Params("userID"))
	if err != nil {
		return uuid.Nil, err
	}
	tokenID, ok := c.Locals(localsUserID).(uuid.UUID)
	if !ok || tokenID != pathID {
		return uuid.Nil, errMismatchedUser
	}
	return pathID, nil
}

var errMismatchedUser = fiber.NewError(fiber.StatusForbidden, "token does not match user")
