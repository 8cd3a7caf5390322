package server

import (
	"errors"
	"net/http"

	"contestatii/internal"
	"contestatii/internal/auth"
	"contestatii/pkg/types"
)

const invalidCredentials = "Invalid email or password"

func (s *Service) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if !s.decodeAndValidate(w, r, &req, "") {
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.WithError(err).Error("failed to hash password")
		s.writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "Error encrypting password"})
		return
	}

	user := &types.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}

	err = s.users.Create(r.Context(), user)
	if err != nil {
		if errors.Is(err, types.ErrEmailTaken) {
			s.writeError(w, http.StatusConflict, "Adresa de email este deja înregistrată")
			return
		}
		s.logger.WithError(err).Error("failed to register user")
		s.writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "Error registering user"})
		return
	}

	s.logger.WithField("user_id", user.ID).Info("user registered")

	s.writeJSON(w, http.StatusCreated, messageResponse{Message: "User registered successfully"})
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := decodeRequest(r, &req); err != nil || s.validate.Struct(&req) != nil {
		s.writeJSON(w, http.StatusUnauthorized, sessionResponse{Error: invalidCredentials})
		return
	}

	user, err := s.users.UserByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, types.ErrUserNotFound) {
			s.logger.WithError(err).Error("failed to look up user")
		}
		s.writeJSON(w, http.StatusUnauthorized, sessionResponse{Error: invalidCredentials})
		return
	}

	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		if !errors.Is(err, auth.ErrBadCredentials) {
			s.logger.WithError(err).Error("failed to check password")
		}
		s.writeJSON(w, http.StatusUnauthorized, sessionResponse{Error: invalidCredentials})
		return
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.WithError(err).Error("failed to issue session token")
		s.writeError(w, http.StatusInternalServerError, "Autentificarea a eșuat")
		return
	}

	encryptedToken, err := s.cookie.Encode(internal.COOKIE_SESSION_TOKEN_NAME, token)
	if err != nil {
		s.logger.WithError(err).Error("failed to encrypt session token")
		s.writeError(w, http.StatusInternalServerError, "Autentificarea a eșuat")
		return
	}

	// Set httpOnly cookie with the sealed token
	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_SESSION_TOKEN_NAME,
		Value:    encryptedToken,
		HttpOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.tokens.TTL().Seconds()),
		Path:     "/",
	})

	s.logger.WithField("user_id", user.ID).Info("user logged in")

	s.writeJSON(w, http.StatusOK, sessionResponse{Status: "Success"})
}

func (s *Service) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_SESSION_TOKEN_NAME,
		Value:    "",
		HttpOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})

	s.writeJSON(w, http.StatusOK, sessionResponse{Status: "Success"})
}

func (s *Service) handleVerify(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())

	s.writeJSON(w, http.StatusOK, sessionResponse{Status: "Success", Name: identity.Name})
}
