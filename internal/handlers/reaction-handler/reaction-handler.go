package reaction_handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/cipher-chat/internal/dtos/room_dto"
	"github.com/xenn00/cipher-chat/internal/entity"
	app_error "github.com/xenn00/cipher-chat/internal/errors"
	"github.com/xenn00/cipher-chat/internal/handlers"
	"github.com/xenn00/cipher-chat/internal/queue"
	reaction_repo "github.com/xenn00/cipher-chat/internal/repo/reaction"
	"github.com/xenn00/cipher-chat/internal/utils"
	"github.com/xenn00/cipher-chat/internal/worker"
	"github.com/xenn00/cipher-chat/state"
)

const reactionCacheTTL = 30 * time.Second

// ReactionHandler persists reactions and hands the room announcement to the
// background queue so a reaction burst never stalls the request path. Reads
// go through a short-lived redis cache.
type ReactionHandler struct {
	State     *state.AppState
	Producer  queue.Producer
	Validate  *validator.Validate
	Reactions reaction_repo.ReactionRepoContract
}

func NewReactionHandler(appState *state.AppState) *ReactionHandler {
	return &ReactionHandler{
		State:     appState,
		Producer:  queue.NewProducer(appState.Redis),
		Validate:  validator.New(),
		Reactions: reaction_repo.NewReactionRepo(appState),
	}
}

func reactionCacheKey(messageID string) string {
	return "reactions:" + messageID
}

func (h *ReactionHandler) ReactToMessage(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	messageID := chi.URLParam(r, "messageId")

	var req room_dto.ReactRequest
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return app_error.NewAppError(http.StatusBadRequest, "Invalid JSON", "body")
	}

	if err := h.Validate.Struct(req); err != nil {
		return app_error.NewAppError(http.StatusBadRequest, fmt.Sprintf("Invalid fields: %v", err), "validation")
	}

	reaction := &entity.MessageReaction{
		MessageID: messageID,
		UserID:    req.UserID,
		Emoji:     req.Emoji,
	}
	if err := h.Reactions.Save(r.Context(), reaction); err != nil {
		return err
	}

	if err := utils.DeleteCacheData(r.Context(), h.State.Redis, reactionCacheKey(messageID)); err != nil {
		log.Warn().Err(err).Str("message_id", messageID).Msg("failed to invalidate reaction cache")
	}

	handlers.WriteResponse(w, r, "reaction saved", map[string]any{
		"id":         reaction.ID,
		"message_id": messageID,
	})

	go func() {
		job := queue.NewJob(worker.JobBroadcastReaction, worker.ReactionJobPayload{
			MessageID: messageID,
			UserID:    req.UserID,
			Emoji:     req.Emoji,
		})
		if err := h.Producer.Enqueue(h.State.Ctx, job); err != nil {
			log.Error().Err(err).Msg("Failed to enqueue job")
		}
	}()

	return nil
}

func (h *ReactionHandler) GetReactions(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	messageID := chi.URLParam(r, "messageId")
	cacheKey := reactionCacheKey(messageID)

	cached, cacheErr := utils.GetCacheData[room_dto.ReactionsResponse](r.Context(), h.State.Redis, cacheKey)
	if cacheErr != nil {
		log.Warn().Err(cacheErr).Str("message_id", messageID).Msg("reaction cache read failed")
	}
	if cached != nil {
		handlers.WriteResponse(w, r, "successfully get reactions", *cached)
		return nil
	}

	reactions, err := h.Reactions.ListByMessage(r.Context(), messageID)
	if err != nil {
		return err
	}
	count, err := h.Reactions.CountByMessage(r.Context(), messageID)
	if err != nil {
		return err
	}

	items := make([]room_dto.ReactionItem, 0, len(reactions))
	for _, re := range reactions {
		items = append(items, room_dto.ReactionItem{
			ID:     re.ID,
			UserID: re.UserID,
			Emoji:  re.Emoji,
		})
	}

	resp := room_dto.ReactionsResponse{
		Reactions: items,
		Count:     count,
	}

	if err := utils.SetCacheData(r.Context(), h.State.Redis, cacheKey, &resp, reactionCacheTTL); err != nil {
		log.Warn().Err(err).Str("message_id", messageID).Msg("failed to cache reactions")
	}

	handlers.WriteResponse(w, r, "successfully get reactions", resp)
	return nil
}
