package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/cipher-chat/config"
	"github.com/xenn00/cipher-chat/internal/presence"
	message_repo "github.com/xenn00/cipher-chat/internal/repo/message"
	"github.com/xenn00/cipher-chat/internal/routers"
	"github.com/xenn00/cipher-chat/internal/sweeper"
	message_service "github.com/xenn00/cipher-chat/internal/use-case/message-case"
	presence_service "github.com/xenn00/cipher-chat/internal/use-case/presence-case"
	"github.com/xenn00/cipher-chat/internal/websocket"
	"github.com/xenn00/cipher-chat/internal/worker"
	"github.com/xenn00/cipher-chat/state"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// initialize the application
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appState, err := state.InitAppState(ctx, stop)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application state")
	}
	defer appState.Close()

	dispatcher := websocket.NewDispatcher()
	wsHub := websocket.NewHub(dispatcher)
	log.Info().Msg("Websocket hub initialized")

	registry := presence.NewRegistry()

	messageSvc := message_service.NewMessageService(appState, registry, wsHub, config.Conf.ENGINE.UnsafeKeywords)
	presenceSvc := presence_service.NewPresenceService(appState, registry, wsHub, wsHub)

	messageSvc.RegisterWSHandlers(dispatcher, registry)
	presenceSvc.RegisterWSHandlers(dispatcher)

	wsHub.OnDisconnect(func(ctx context.Context, connID string) {
		presenceSvc.Disconnect(ctx, connID)
	})

	sweep := sweeper.NewSweeper(messageSvc.Repo, wsHub, config.Conf.ENGINE.SweepInterval)
	sweep.Start(ctx)

	reactionHandler := worker.NewReactionJobHandler(message_repo.NewMessageRepo(appState), wsHub)
	workerPool := worker.NewWorkerPool(appState.Redis, 5, reactionHandler)
	workerPool.Start(ctx)
	workerPool.StartDLQWorker(ctx, appState.Mongo)

	r := routers.NewRouter(appState, config.Conf, wsHub, registry, messageSvc)

	server := &http.Server{
		Addr:         config.Conf.App.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// serve the application
	go func() {
		log.Info().Msgf("Starting server on http://localhost%s", config.Conf.App.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(fmt.Sprintf("ListenAndServe failed: %v", err))
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutdown initiated...")
	// gracefully shutdown the application
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		fmt.Printf("Graceful shutdown failed: %v\n", err)
	} else {
		fmt.Println("Server exited gracefully.")
	}

	sweep.Stop()
	wsHub.Close()
	workerPool.Wait()
}
