package http_handlers

import (
	"net/http"

	"github.com/electroworld/auth-service/internal/application/auth"
	"github.com/electroworld/auth-service/internal/domain"
	"github.com/electroworld/auth-service/internal/transport/http/dto"
	"github.com/electroworld/auth-service/internal/transport/http/middleware"
	"github.com/electroworld/auth-service/internal/transport/http/response"
)

type AuthHandler struct {
	svc *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// decode reads and validates the body; on failure the error is already written.
func decode[T any, PT interface {
	*T
	Validate() error
}](w http.ResponseWriter, r *http.Request) (*T, bool) {
	req := PT(new(T))
	if err := response.DecodeJSON(w, r, req); err != nil {
		response.WriteError(w, r, err)
		return nil, false
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return nil, false
	}
	return (*T)(req), true
}

// Signup handles POST /signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[dto.SignupRequest](w, r)
	if !ok {
		return
	}

	res, err := h.svc.Signup(r.Context(), auth.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Wilaya:   req.Wilaya,
	})
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, dto.AuthResponse{
		Data:  dto.NewUserView(res.User),
		Token: res.Token,
	})
}

// Login handles POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[dto.LoginRequest](w, r)
	if !ok {
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, dto.AuthResponse{
		Data:  dto.NewUserView(res.User),
		Token: res.Token,
	})
}

// ForgotPassword handles POST /forgotPassword
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[dto.ForgotPasswordRequest](w, r)
	if !ok {
		return
	}

	if err := h.svc.ForgotPassword(r.Context(), req.Email); err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, dto.StatusResponse{
		Status:  "Success",
		Message: "Reset code sent to email",
	})
}

// VerifyResetCode handles POST /verifyResetCode
func (h *AuthHandler) VerifyResetCode(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[dto.VerifyResetCodeRequest](w, r)
	if !ok {
		return
	}

	if err := h.svc.VerifyResetCode(r.Context(), req.ResetCode); err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, dto.StatusResponse{Status: "Success"})
}

// ResetPassword handles PUT /resetPassword
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[dto.ResetPasswordRequest](w, r)
	if !ok {
		return
	}

	token, err := h.svc.ResetPassword(r.Context(), req.Email, req.NewPassword)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, dto.TokenResponse{Token: token})
}

// Me handles GET /me (protected)
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenInvalid())
		return
	}
	response.OK(w, dto.NewUserView(u))
}

// Staff handles GET /staff. It has no behaviour of its own: it answers like Me
// and exists as the route the admin/manager role gate is mounted on.
func (h *AuthHandler) Staff(w http.ResponseWriter, r *http.Request) {
	h.Me(w, r)
}
