package server

import (
	"github.com/gofiber/fiber/v2"

	"consolidated-orderbook/internal/database"
	"consolidated-orderbook/internal/display"
)

type FiberServer struct {
	*fiber.App

	db      database.Service
	display *display.Service
	hub     *BookHub
}

func New(displayService *display.Service) *FiberServer {
	server := &FiberServer{
		App: fiber.New(fiber.Config{
			ServerHeader: "consolidated-orderbook",
			AppName:      "consolidated-orderbook",
		}),

		db:      database.New(),
		display: displayService,
		hub:     NewBookHub(),
	}

	// Every redisplay pass streams into the hub; completed passes fan out to
	// the connected websocket clients.
	displayService.AttachRenderer(server.hub)
	displayService.OnRedisplay(server.hub.Flush)

	return server
}
