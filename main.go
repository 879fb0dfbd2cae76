package main

import (
	"context"
	"log"
	"sync"

	"github.com/gin-gonic/gin"

	sessionRoutes "sessioncore/server/modules/session/interfaces/http/routes"
	taskRoutes "sessioncore/server/modules/task/interfaces/http/routes"
	txServices "sessioncore/server/modules/transcription/application/services"
	txRoutes "sessioncore/server/modules/transcription/interfaces/http/routes"

	"sessioncore/server/seedwork/application/middleware"
	"sessioncore/server/seedwork/infrastructure/container"
)

func main() {
	c, err := container.NewContainer()
	if err != nil {
		log.Fatalf("failed to build container: %v", err)
	}

	engine := gin.New()
	engine.Use(middleware.Logger(), middleware.CORS(), middleware.ErrorHandler())
	engine.Use(middleware.InternalServiceAuth(c.Config.Internal.ServiceToken))

	var ingestMu sync.Mutex
	ingesting := make(map[string]bool)

	engine.GET("/media/:room", func(ctx *gin.Context) {
		room := ctx.Param("room")

		ingestMu.Lock()
		if !ingesting[room] {
			ingesting[room] = true
			ingestMu.Unlock()
			startIngest(c, room)
		} else {
			ingestMu.Unlock()
		}

		if err := c.MediaRouter.HandleConnection(ctx, room, 16000); err != nil {
			log.Printf("media connection closed with error: %v", err)
		}
	})

	api := engine.Group("/api/v1")
	sessionRoutes.NewSessionRoutes(c.SessionHandlers).Setup(api)
	taskRoutes.NewTaskRoutes(c.TaskHandlers).Setup(api)
	txRoutes.NewPipelineRoutes(c.PipelineHandlers).Setup(api)

	addr := ":" + c.Config.Server.Port
	log.Printf("listening on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

// startIngest spins up the Realtime Ingest Adapter (spec §4.C) for room's
// session and drains it in the background for the lifetime of the process;
// it is safe to call at most once per room, which the /media/:room handler
// enforces.
func startIngest(c *container.Container, room string) {
	sessionID, err := txServices.RoomSessionID(room)
	if err != nil {
		log.Printf("ingest: cannot derive session id from room %q: %v", room, err)
		return
	}

	frames, err := c.MediaRouter.Frames(room)
	if err != nil {
		log.Printf("ingest: cannot open frame source for room %q: %v", room, err)
		return
	}

	adapter := txServices.NewIngestAdapter(sessionID, room, 16000, c.EphemeralStore, c.STTClient, c.MediaRouter)
	go adapter.Consume(context.Background(), frames)
}
