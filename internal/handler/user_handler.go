package handler

import (
	"net/http"
	"strconv"

	"task-tracker/internal/model/requestresponse"
	"task-tracker/internal/ports"
	"task-tracker/internal/security"
	"task-tracker/internal/util"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService}
}

// CreateUser godoc
// @Summary Создание пользователя
// @Description Требует право users:create. Email и телефон хранятся зашифрованными.
// @Tags Users
// @Accept json
// @Produce json
// @Param body body requestresponse.CreateUserRequest true "Тело запроса"
// @Success 201 {object} requestresponse.UserResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 409 {object} requestresponse.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/users [post]
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		util.HandleError(w, "некорректный JSON", http.StatusBadRequest)
		return
	}

	user, err := h.UserService.CreateUser(r.Context(), req.Username, req.Password, req.Email, req.Phone, req.Scopes)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := requestresponse.UserResponse{}
	resp.Response.ID = user.ID
	resp.Response.UUID = user.UUID
	resp.Response.Username = user.Username
	resp.Response.Email = user.Email
	resp.Response.Phone = user.Phone

	util.WriteJSON(w, http.StatusCreated, resp)
}

// GetUser godoc
// @Summary Получение пользователя по id
// @Description Требует право users:read
// @Tags Users
// @Produce json
// @Param id path int true "ID пользователя"
// @Success 200 {object} requestresponse.UserResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/users/{id} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		util.HandleError(w, "некорректный id пользователя", http.StatusBadRequest)
		return
	}

	user, err := h.UserService.GetUser(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := requestresponse.UserResponse{}
	resp.Response.ID = user.ID
	resp.Response.UUID = user.UUID
	resp.Response.Username = user.Username
	resp.Response.Email = user.Email
	resp.Response.Phone = user.Phone

	util.WriteJSON(w, http.StatusOK, resp)
}

// UpdatePassword godoc
// @Summary Смена пароля текущего пользователя
// @Description После смены пароля все сессии пользователя завершаются
// @Tags Users
// @Accept json
// @Produce json
// @Param body body requestresponse.UpdatePasswordRequest true "Тело запроса"
// @Success 200 {object} requestresponse.UpdatePasswordResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse "Невалидный access-токен"
// @Failure 403 {object} requestresponse.ErrorResponse "Текущий пароль указан неверно"
// @Security ApiKeyAuth
// @Router /api/users/me/password [put]
func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	claims, err := security.GetClaimsFromContext(r.Context())
	if err != nil {
		util.HandleError(w, "не авторизован", http.StatusUnauthorized)
		return
	}

	var req requestresponse.UpdatePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		util.HandleError(w, "некорректный JSON", http.StatusBadRequest)
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		util.HandleError(w, "current_password и new_password обязательны", http.StatusBadRequest)
		return
	}

	revoked, err := h.UserService.UpdatePassword(r.Context(), claims.UserID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := requestresponse.UpdatePasswordResponse{}
	resp.Response.Updated = true
	resp.Response.RevokedSessions = revoked

	util.WriteJSON(w, http.StatusOK, resp)
}
