package handler

import (
	"net/http"

	"task-tracker/internal/model"
	"task-tracker/internal/model/requestresponse"
	"task-tracker/internal/ports"
	"task-tracker/internal/security"
	"task-tracker/internal/util"
)

type AuthenticationHandler struct {
	ports.AuthenticationService
}

func NewAuthenticationHandler(authenticationService ports.AuthenticationService) *AuthenticationHandler {
	return &AuthenticationHandler{authenticationService}
}

// Login godoc
// @Summary Аутентификация пользователя
// @Description Получение пары access/refresh токенов по логину и паролю
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.LoginRequest true "Тело запроса"
// @Success 200 {object} requestresponse.TokensResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Некорректный JSON или пустые поля"
// @Failure 401 {object} requestresponse.ErrorResponse "Неверный логин или пароль"
// @Router /api/auth/login [post]
func (h *AuthenticationHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		util.HandleError(w, "некорректный JSON", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		util.HandleError(w, "username и password обязательны", http.StatusBadRequest)
		return
	}

	session, err := h.AuthenticationService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, tokensResponse(session))
}

// RefreshToken godoc
// @Summary Обновление пары токенов
// @Description Refresh-токен одноразовый: после обмена он недействителен
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.RefreshTokenRequest true "Тело запроса"
// @Success 200 {object} requestresponse.TokensResponse
// @Failure 401 {object} requestresponse.ErrorResponse "Невалидный токен или сессия уже использована"
// @Router /api/auth/refresh [post]
func (h *AuthenticationHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.RefreshTokenRequest
	if err := decodeJSON(w, r, &req); err != nil || req.RefreshToken == "" {
		util.HandleError(w, "refresh_token обязателен", http.StatusBadRequest)
		return
	}

	session, err := h.AuthenticationService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, tokensResponse(session))
}

// Logout godoc
// @Summary Завершение сессии
// @Tags Authentication
// @Accept json
// @Param body body requestresponse.RefreshTokenRequest true "Тело запроса"
// @Success 204
// @Failure 401 {object} requestresponse.ErrorResponse
// @Router /api/auth/logout [post]
func (h *AuthenticationHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.RefreshTokenRequest
	if err := decodeJSON(w, r, &req); err != nil || req.RefreshToken == "" {
		util.HandleError(w, "refresh_token обязателен", http.StatusBadRequest)
		return
	}

	if err := h.AuthenticationService.Logout(r.Context(), req.RefreshToken); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetCurrentUser godoc
// @Summary Текущий пользователь
// @Tags Authentication
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.CurrentUserResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Router /api/auth/me [get]
func (h *AuthenticationHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	claims, err := security.GetClaimsFromContext(r.Context())
	if err != nil {
		util.HandleError(w, "не авторизован", http.StatusUnauthorized)
		return
	}

	user, err := h.AuthenticationService.CurrentUser(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}

	resp := requestresponse.CurrentUserResponse{}
	resp.Response.ID = user.ID
	resp.Response.UUID = user.UUID
	resp.Response.Username = user.Username
	resp.Response.Scopes = claims.Scopes

	util.WriteJSON(w, http.StatusOK, resp)
}

func tokensResponse(session *model.Session) requestresponse.TokensResponse {
	resp := requestresponse.TokensResponse{}
	resp.Response.AccessToken = session.Tokens.AccessToken
	resp.Response.RefreshToken = session.Tokens.RefreshToken
	resp.Response.TokenType = "Bearer"
	resp.Response.Scopes = session.Scopes
	if resp.Response.Scopes == nil {
		resp.Response.Scopes = []string{}
	}
	return resp
}
