package server

import (
	"errors"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/efeborasaglam/studyflow-thinknest/internal/ics"
	"github.com/efeborasaglam/studyflow-thinknest/internal/logger"
	"github.com/efeborasaglam/studyflow-thinknest/internal/scheduler"
)

// eventRequest mirrors the JSON body of the calendar client: event fields
// plus the study plan parameters sent alongside an exam.
type eventRequest struct {
	Title           string    `json:"title"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	BackgroundColor string    `json:"backgroundColor"`
	IsCompleted     bool      `json:"isCompleted"`
	IsExam          bool      `json:"isExam"`
	Importance      int       `json:"importance"`
	DaysBefore      int       `json:"daysBefore"`
	StudyDuration   int       `json:"studyDuration"` // minutes
	StudyEventColor string    `json:"studyEventColor"`
}

func (r *eventRequest) input() scheduler.EventInput {
	return scheduler.EventInput{
		Title:       r.Title,
		Start:       r.Start,
		End:         r.End,
		Color:       r.BackgroundColor,
		IsCompleted: r.IsCompleted,
		IsExam:      r.IsExam,
		Importance:  r.Importance,
	}
}

func (r *eventRequest) plan() scheduler.PlanParams {
	return scheduler.PlanParams{
		LeadDays:        r.DaysBefore,
		SessionDuration: time.Duration(r.StudyDuration) * time.Minute,
		SessionColor:    r.StudyEventColor,
	}
}

func (s *Server) listEvents(c *fiber.Ctx) error {
	events, err := s.engine.ListEvents(c.UserContext())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "events": events})
}

func (s *Server) createEvent(c *fiber.Ctx) error {
	req := new(eventRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	event, err := s.engine.CreateEvent(c.UserContext(), req.input(), req.plan())
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "event": event})
}

func (s *Server) updateEvent(c *fiber.Ctx) error {
	req := new(eventRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	event, err := s.engine.UpdateEvent(c.UserContext(), c.Params("id"), req.input(), req.plan())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "event": event})
}

func (s *Server) toggleCompleted(c *fiber.Ctx) error {
	event, err := s.engine.ToggleCompleted(c.UserContext(), c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "event": event})
}

func (s *Server) deleteEvent(c *fiber.Ctx) error {
	if err := s.engine.DeleteEvent(c.UserContext(), c.Params("id")); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) deleteAllEvents(c *fiber.Ctx) error {
	if err := s.engine.DeleteAllEvents(c.UserContext()); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) uploadICS(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("icsFile")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "icsFile is required",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return s.fail(c, err)
	}
	defer file.Close()

	body, err := io.ReadAll(file)
	if err != nil {
		return s.fail(c, err)
	}

	events, err := ics.Parse(body, time.Now())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid ICS file",
		})
	}

	inserted, skipped, err := s.engine.ImportEvents(c.UserContext(), events)
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"inserted": inserted,
		"skipped":  skipped,
	})
}

func (s *Server) chat(c *fiber.Ctx) error {
	if s.assistant == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"error":   "Assistant is not configured",
		})
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil || req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "message is required",
		})
	}

	reply, err := s.assistant.Reply(c.UserContext(), req.Message)
	if err != nil {
		logger.Error("assistant reply failed", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"success": false,
			"error":   "Assistant is unavailable, try again later",
		})
	}
	return c.JSON(fiber.Map{"success": true, "reply": reply})
}

// fail maps engine errors onto HTTP status codes.
func (s *Server) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, scheduler.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error()})
	case errors.Is(err, scheduler.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": err.Error()})
	case errors.Is(err, scheduler.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "error": err.Error()})
	case errors.Is(err, scheduler.ErrSchedulingExhausted):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"success": false, "error": err.Error()})
	default:
		logger.Error("request failed", err, "path", c.Path())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Internal server error",
		})
	}
}
