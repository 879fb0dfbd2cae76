package container

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	sessionInfra "sessioncore/server/modules/session/infrastructure/repositories"
	sessionHandlers "sessioncore/server/modules/session/interfaces/http/handlers"

	sessionServices "sessioncore/server/modules/session/application/services"

	taskServices "sessioncore/server/modules/task/application/services"
	taskInfra "sessioncore/server/modules/task/infrastructure/repositories"
	taskHandlers "sessioncore/server/modules/task/interfaces/http/handlers"

	txCommands "sessioncore/server/modules/transcription/application/commands"
	txServices "sessioncore/server/modules/transcription/application/services"
	"sessioncore/server/modules/transcription/domain/services"
	txInfra "sessioncore/server/modules/transcription/infrastructure/ephemeral"
	txRepos "sessioncore/server/modules/transcription/infrastructure/repositories"

	"sessioncore/server/modules/transcription/infrastructure/providers"
	txHandlers "sessioncore/server/modules/transcription/interfaces/http/handlers"

	"sessioncore/server/seedwork/infrastructure/config"
	"sessioncore/server/seedwork/infrastructure/database"
	"sessioncore/server/seedwork/infrastructure/events"
)

// Container holds every dependency this process wires up at startup. Per
// the design decision recorded in DESIGN.md, everything is constructed
// explicitly here and handed to its consumers — there are no package-level
// singletons anywhere in the module.
type Container struct {
	Config *config.Config

	EventBus events.EventBus

	RegistryService        *sessionServices.RegistryService
	Tracker                *taskServices.Tracker
	FinalizationPipeline   *txServices.FinalizationPipeline
	RetranscriptionService *txServices.RetranscriptionService
	MediaRouter            *providers.WSMediaRouter
	EphemeralStore         services.EphemeralStore
	STTClient              services.STTClient

	SessionHandlers  *sessionHandlers.SessionHandlers
	TaskHandlers     *taskHandlers.TaskHandlers
	PipelineHandlers *txHandlers.PipelineHandlers
}

// NewContainer loads configuration and wires every module's infrastructure,
// application and HTTP layers.
func NewContainer() (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Ephemeral.Addr,
		Password: cfg.Ephemeral.Password,
		DB:       cfg.Ephemeral.DB,
	})
	store := txInfra.NewRedisStore(redisClient, cfg.Ephemeral.TTL)

	eventBus := events.NewMemoryEventBus()

	// Repositories
	sessionRepo := sessionInfra.NewGormSessionRepository(db)
	audioRepo := txRepos.NewGormAudioFileRepository(db)
	transcriptRepo := txRepos.NewGormTranscriptRepository(db)
	taskRepo := taskInfra.NewGormTaskRepository(db)

	// External collaborators
	var objectStore services.ObjectStore
	gcsStore, err := providers.NewGCSObjectStore(context.Background(), cfg.Object.Bucket, cfg.Object.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("construct object store: %w", err)
	}
	objectStore = gcsStore

	sttClient := providers.NewSTTHTTPClient(cfg.STT.Endpoint, cfg.STT.Timeout)
	diarizationClient := providers.NewDiarizationHTTPClient(cfg.Diarize.Endpoint, cfg.Diarize.Timeout)
	codec := providers.NewInProcessAudioCodec()
	mediaRouter := providers.NewWSMediaRouter()

	// Application services
	registry := sessionServices.NewRegistryService(sessionRepo, audioRepo, objectStore)
	tracker := taskServices.NewTracker(taskRepo)
	finalization := txServices.NewFinalizationPipeline(registry, store, audioRepo, transcriptRepo, codec, objectStore)
	retranscription := txServices.NewRetranscriptionService(
		registry, audioRepo, transcriptRepo, objectStore, diarizationClient, sttClient, codec, tracker,
	)

	// Commands
	finalizeHandler := txCommands.NewFinalizeSessionHandler(finalization, eventBus)
	retranscribeHandler := txCommands.NewRetranscribeSessionHandler(tracker, retranscription, eventBus)

	// HTTP layer
	sessionHTTP := sessionHandlers.NewSessionHandlers(registry)
	taskHTTP := taskHandlers.NewTaskHandlers(tracker)
	pipelineHTTP := txHandlers.NewPipelineHandlers(finalizeHandler, retranscribeHandler)

	return &Container{
		Config:                 cfg,
		EventBus:               eventBus,
		RegistryService:        registry,
		Tracker:                tracker,
		FinalizationPipeline:   finalization,
		RetranscriptionService: retranscription,
		MediaRouter:            mediaRouter,
		EphemeralStore:         store,
		STTClient:              sttClient,
		SessionHandlers:        sessionHTTP,
		TaskHandlers:           taskHTTP,
		PipelineHandlers:       pipelineHTTP,
	}, nil
}

// GetConfig returns the configuration.
func (c *Container) GetConfig() *config.Config {
	return c.Config
}
