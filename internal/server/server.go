package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"

	"github.com/efeborasaglam/studyflow-thinknest/internal/assistant"
	"github.com/efeborasaglam/studyflow-thinknest/internal/scheduler"
)

// Server is the HTTP transport over the scheduling engine. It carries no
// scheduling logic of its own.
type Server struct {
	app       *fiber.App
	engine    *scheduler.Engine
	assistant *assistant.Client // nil when no API key is configured
}

func New(engine *scheduler.Engine, ai *assistant.Client) *Server {
	app := fiber.New(fiber.Config{
		AppName: "studyflow-thinknest",
	})
	app.Use(cors.New())
	app.Use(fiberlogger.New())

	s := &Server{
		app:       app,
		engine:    engine,
		assistant: ai,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.app.Group("/api")

	api.Get("/events", s.listEvents)
	api.Post("/events", s.createEvent)
	api.Put("/events/toggle-completed/:id", s.toggleCompleted)
	api.Put("/events/:id", s.updateEvent)
	api.Delete("/events/:id", s.deleteEvent)
	api.Delete("/events", s.deleteAllEvents)
	api.Post("/upload-ics", s.uploadICS)
	api.Post("/chat", s.chat)
}

func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
