package user_handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xenn00/cipher-chat/internal/dtos/room_dto"
	app_error "github.com/xenn00/cipher-chat/internal/errors"
	"github.com/xenn00/cipher-chat/internal/handlers"
	"github.com/xenn00/cipher-chat/internal/presence"
	user_repo "github.com/xenn00/cipher-chat/internal/repo/user"
	"github.com/xenn00/cipher-chat/state"
)

// UserHandler serves the public-key directory and the live roster. The key
// endpoint is how a client learns how to encrypt for a peer.
type UserHandler struct {
	Users    user_repo.UserRepoContract
	Registry *presence.Registry
}

func NewUserHandler(appState *state.AppState, registry *presence.Registry) *UserHandler {
	return &UserHandler{
		Users:    user_repo.NewUserRepo(appState),
		Registry: registry,
	}
}

func (h *UserHandler) GetPublicKey(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	username := chi.URLParam(r, "username")

	user, err := h.Users.FindByUsername(r.Context(), username)
	if err != nil {
		return err
	}

	handlers.WriteResponse(w, r, "successfully get public key", room_dto.PublicKeyResponse{
		PublicKey: user.PublicKey,
	})
	return nil
}

func (h *UserHandler) GetRoomUsers(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	room := chi.URLParam(r, "room")

	handlers.WriteResponse(w, r, "successfully get room users", room_dto.RoomUsersResponse{
		Users: h.Registry.RosterOf(room),
	})
	return nil
}
