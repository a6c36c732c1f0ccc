package routers

import (
	"github.com/go-chi/chi/v5"
	"github.com/xenn00/cipher-chat/config"
	"github.com/xenn00/cipher-chat/internal/handlers"
	upload_handler "github.com/xenn00/cipher-chat/internal/handlers/upload-handler"
)

func UploadRouter(r chi.Router, cfg *config.AppConfig) {
	uploadHandler := upload_handler.NewUploadHandler(cfg.ENGINE.UploadDir, cfg.ENGINE.AllowedFileTypes)

	r.Post("/api/v1/uploads", handlers.WrapHandler(uploadHandler.UploadFile))
	r.Post("/api/v1/uploads/chunk", handlers.WrapHandler(uploadHandler.UploadChunk))
	r.Post("/api/v1/uploads/complete", handlers.WrapHandler(uploadHandler.CompleteUpload))
	r.Get("/uploads/{filename}", handlers.WrapHandler(uploadHandler.ServeFile))
}
