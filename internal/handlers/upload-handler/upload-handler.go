package upload_handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/cipher-chat/internal/dtos/room_dto"
	app_error "github.com/xenn00/cipher-chat/internal/errors"
	"github.com/xenn00/cipher-chat/internal/handlers"
	"github.com/xenn00/cipher-chat/internal/utils"
)

const maxUploadSize = 32 << 20 // 32 MB

// UploadHandler stores encrypted attachments on local disk. Files are opaque
// ciphertext; the server never inspects content, only extension and size.
// Large files arrive as base64 chunks keyed by a client-chosen file id and
// are stitched together on completion.
type UploadHandler struct {
	Dir          string
	AllowedTypes []string
	Validate     *validator.Validate
}

func NewUploadHandler(dir string, allowedTypes []string) *UploadHandler {
	return &UploadHandler{
		Dir:          dir,
		AllowedTypes: allowedTypes,
		Validate:     validator.New(),
	}
}

func (h *UploadHandler) UploadFile(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return app_error.NewAppError(http.StatusBadRequest, "Invalid multipart form", "body")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return app_error.NewAppError(http.StatusBadRequest, "Missing file field", "file")
	}
	defer file.Close()

	name := utils.SecureFilename(header.Filename)
	if name == "" || !utils.AllowedFile(name, h.AllowedTypes) {
		return app_error.NewAppError(http.StatusBadRequest, "File type not allowed", "file")
	}

	// Prefix with a uuid so concurrent uploads of the same name never clash.
	stored := uuid.NewString() + "_" + name

	if err := os.MkdirAll(h.Dir, 0o755); err != nil {
		return app_error.StorageFailure("failed to prepare upload directory")
	}

	dst, err := os.Create(filepath.Join(h.Dir, stored))
	if err != nil {
		return app_error.StorageFailure("failed to create upload file")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return app_error.StorageFailure("failed to write upload file")
	}

	log.Info().Str("filename", stored).Msg("upload: file stored")

	handlers.WriteResponse(w, r, "file uploaded", room_dto.UploadResponse{
		URL:      "/uploads/" + stored,
		Filename: stored,
	})
	return nil
}

func (h *UploadHandler) UploadChunk(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	var req room_dto.ChunkUploadRequest
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return app_error.NewAppError(http.StatusBadRequest, "Invalid JSON", "body")
	}

	if err := h.Validate.Struct(req); err != nil {
		return app_error.NewAppError(http.StatusBadRequest, fmt.Sprintf("Invalid fields: %v", err), "validation")
	}

	chunkDir := filepath.Join(h.Dir, "chunks", utils.SecureFilename(req.FileID))
	if err := os.MkdirAll(chunkDir, 0o755); err != nil {
		return app_error.StorageFailure("failed to prepare chunk directory")
	}

	// Each chunk keeps its own IV so the client can decrypt piecewise.
	record, err := json.Marshal(map[string]string{"iv": req.IV, "chunk": req.Chunk})
	if err != nil {
		return app_error.StorageFailure("failed to encode chunk")
	}

	chunkPath := filepath.Join(chunkDir, strconv.Itoa(req.ChunkIndex)+".part")
	if err := os.WriteFile(chunkPath, record, 0o644); err != nil {
		return app_error.StorageFailure("failed to write chunk")
	}

	handlers.WriteResponse(w, r, "chunk stored", map[string]any{
		"fileId":     req.FileID,
		"chunkIndex": req.ChunkIndex,
	})
	return nil
}

func (h *UploadHandler) CompleteUpload(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	var req room_dto.CompleteUploadRequest
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return app_error.NewAppError(http.StatusBadRequest, "Invalid JSON", "body")
	}

	if err := h.Validate.Struct(req); err != nil {
		return app_error.NewAppError(http.StatusBadRequest, fmt.Sprintf("Invalid fields: %v", err), "validation")
	}

	name := utils.SecureFilename(req.Filename)
	if name == "" || !utils.AllowedFile(name, h.AllowedTypes) {
		return app_error.NewAppError(http.StatusBadRequest, "File type not allowed", "file")
	}

	chunkDir := filepath.Join(h.Dir, "chunks", utils.SecureFilename(req.FileID))
	entries, err := os.ReadDir(chunkDir)
	if err != nil {
		return app_error.NotFound("no chunks found for file id")
	}

	indices := make([]int, 0, len(entries))
	for _, e := range entries {
		idx, convErr := strconv.Atoi(strings.TrimSuffix(e.Name(), ".part"))
		if convErr != nil {
			continue
		}
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	stored := uuid.NewString() + "_" + name
	dst, err := os.Create(filepath.Join(h.Dir, stored))
	if err != nil {
		return app_error.StorageFailure("failed to create upload file")
	}
	defer dst.Close()

	// Final file is one chunk record per line, in index order.
	for _, idx := range indices {
		data, readErr := os.ReadFile(filepath.Join(chunkDir, strconv.Itoa(idx)+".part"))
		if readErr != nil {
			return app_error.StorageFailure("failed to read chunk")
		}
		if _, err := dst.Write(append(data, '\n')); err != nil {
			return app_error.StorageFailure("failed to assemble file")
		}
	}

	if err := os.RemoveAll(chunkDir); err != nil {
		log.Warn().Err(err).Str("fileId", req.FileID).Msg("upload: failed to clean chunk directory")
	}

	log.Info().Str("filename", stored).Int("chunks", len(indices)).Msg("upload: chunked file assembled")

	handlers.WriteResponse(w, r, "file assembled", room_dto.UploadResponse{
		URL:      "/uploads/" + stored,
		Filename: stored,
	})
	return nil
}

func (h *UploadHandler) ServeFile(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	name := utils.SecureFilename(chi.URLParam(r, "filename"))
	if name == "" {
		return app_error.NotFound("file not found")
	}

	path := filepath.Join(h.Dir, name)
	if _, err := os.Stat(path); err != nil {
		return app_error.NotFound("file not found")
	}

	http.ServeFile(w, r, path)
	return nil
}
