package api

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/creatormem/pkg/memory"
	"github.com/papercomputeco/creatormem/pkg/record"
)

// Write actions accepted by POST /api/user-memory.
const (
	ActionAddFact           = "addFact"
	ActionEvolveProfile     = "evolveProfile"
	ActionRecordInteraction = "recordInteraction"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// GetResponse is the body of GET /api/user-memory.
type GetResponse struct {
	User            *record.UserRecord      `json:"user"`
	Recommendations []record.Recommendation `json:"recommendations"`
}

// WriteResponse is the body of a successful POST /api/user-memory.
type WriteResponse struct {
	Success bool               `json:"success"`
	User    *record.UserRecord `json:"user"`
}

// WriteRequest is the body of POST /api/user-memory. Which fields are read
// depends on Action.
type WriteRequest struct {
	Action string `json:"action"`
	UserID string `json:"userId"`

	// addFact
	Category string  `json:"category,omitempty"`
	Fact     any     `json:"fact,omitempty"`
	Source   *string `json:"source,omitempty"`

	// evolveProfile
	Updates json.RawMessage `json:"updates,omitempty"`

	// recordInteraction
	Type string `json:"type,omitempty"`
	Data any    `json:"data,omitempty"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleUserMemory dispatches /api/user-memory on the request method.
func (s *Server) handleUserMemory(c *fiber.Ctx) error {
	switch c.Method() {
	case fiber.MethodGet:
		return s.handleGetUser(c)
	case fiber.MethodPost:
		return s.handleWrite(c)
	default:
		return s.writeError(c, memory.ErrUnsupportedMethod)
	}
}

// handleGetUser returns the record and recommendations for ?userId=.
func (s *Server) handleGetUser(c *fiber.Ctx) error {
	userID := memory.NormalizeUserID(c.Query("userId"))

	user, err := s.manager.Get(c.Context(), userID)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(GetResponse{
		User:            user,
		Recommendations: memory.Recommend(user.Profile),
	})
}

// handleWrite applies one write action from the request body.
func (s *Server) handleWrite(c *fiber.Ctx) error {
	var req WriteRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return s.writeError(c, &memory.InternalError{Op: "decode", Err: err})
	}

	ctx := c.Context()
	userID := memory.NormalizeUserID(req.UserID)

	var (
		user *record.UserRecord
		err  error
	)
	switch req.Action {
	case ActionAddFact:
		user, err = s.manager.AddFact(ctx, userID, req.Category, req.Fact, req.Source)

	case ActionEvolveProfile:
		var updates record.ProfileUpdate
		updates, err = record.ParseProfileUpdate(req.Updates)
		if err != nil {
			err = &memory.InternalError{Op: ActionEvolveProfile, UserID: userID, Err: err}
			break
		}
		user, err = s.manager.EvolveProfile(ctx, userID, updates)

	case ActionRecordInteraction:
		user, err = s.manager.RecordInteraction(ctx, userID, req.Type, req.Data)

	default:
		err = memory.ErrInvalidAction
	}
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(WriteResponse{Success: true, User: user})
}

// writeError maps err onto the status and message of the error taxonomy.
func (s *Server) writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, memory.ErrInvalidAction):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Unknown action"})
	case errors.Is(err, memory.ErrUnsupportedMethod):
		return c.Status(fiber.StatusMethodNotAllowed).JSON(ErrorResponse{Error: "Method not allowed"})
	}

	s.logger.Error("user memory request failed",
		"method", c.Method(),
		"path", c.Path(),
		"error", err,
	)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: internalMessage(err)})
}

// internalMessage returns the message of the innermost cause of err.
func internalMessage(err error) string {
	var ie *memory.InternalError
	if errors.As(err, &ie) {
		return ie.Err.Error()
	}
	return err.Error()
}

// errorHandler renders errors returned from handlers, e.g. unmatched routes,
// as JSON.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(ErrorResponse{Error: err.Error()})
}
