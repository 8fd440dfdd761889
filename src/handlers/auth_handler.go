package handlers

import (
	"errors"
	"net/http"
	"strings"

	"fingenius-server/src/apperr"
	"fingenius-server/src/db"
	"fingenius-server/src/middleware"
	"fingenius-server/src/models"
	"fingenius-server/src/util"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

func Register(users db.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest
		if err := decodeBody(r, &req); err != nil {
			util.WriteError(w, err)
			return
		}

		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		req.Username = strings.TrimSpace(req.Username)

		var problems []string
		if !util.ValidateUsername(req.Username) {
			problems = append(problems, "Username is required")
		}
		if !util.ValidateEmail(req.Email) {
			problems = append(problems, "Please include a valid email")
		}
		if !util.ValidatePassword(req.Password) {
			problems = append(problems, "Password must be 6 or more characters")
		}
		if len(problems) > 0 {
			util.WriteError(w, apperr.Validation(strings.Join(problems, ", ")))
			return
		}

		if _, err := users.GetUserByEmail(r.Context(), req.Email); err == nil {
			log.Warn().Str("email", req.Email).Msg("registration for existing email")
			util.WriteError(w, apperr.Validation("User already exists"))
			return
		} else if !errors.Is(err, db.ErrNotFound) {
			log.Error().Err(err).Msg("failed to look up user")
			util.WriteError(w, apperr.Internal("internal server error", err))
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Error().Err(err).Str("username", req.Username).Msg("failed to hash password")
			util.WriteError(w, apperr.Internal("internal server error", err))
			return
		}

		created, err := users.CreateUser(r.Context(), &models.User{
			Username:     req.Username,
			Email:        req.Email,
			PasswordHash: hashedPassword,
		})
		if errors.Is(err, db.ErrDuplicate) {
			util.WriteError(w, apperr.Validation("User already exists"))
			return
		}
		if err != nil {
			log.Error().Err(err).Str("username", req.Username).Msg("failed to create user")
			util.WriteError(w, apperr.Internal("internal server error", err))
			return
		}

		log.Info().Str("user_id", created.ID.String()).Msg("user registered")
		util.WriteMessage(w, http.StatusCreated, "User registered successfully. Please login.")
	}
}

func Login(users db.UserStore, auth *middleware.Auth) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var credentials struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := decodeBody(r, &credentials); err != nil {
			util.WriteError(w, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(credentials.Email))
		if !util.ValidateEmail(email) {
			util.WriteError(w, apperr.Validation("Please include a valid email"))
			return
		}

		user, err := users.GetUserByEmail(r.Context(), email)
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			log.Error().Err(err).Msg("failed to look up user")
			util.WriteError(w, apperr.Internal("internal server error", err))
			return
		}
		if err != nil || bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(credentials.Password)) != nil {
			log.Warn().Str("email", email).Str("remote_addr", r.RemoteAddr).Msg("failed login")
			util.WriteError(w, apperr.Authentication("Invalid email or password"))
			return
		}

		token, err := auth.IssueToken(user.ID, user.Username)
		if err != nil {
			log.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to issue token")
			util.WriteError(w, apperr.Internal("Error generating token", err))
			return
		}

		util.WriteJSON(w, http.StatusOK, map[string]any{
			"user": map[string]string{
				"id":       user.ID.String(),
				"username": user.Username,
				"email":    user.Email,
			},
			"token": token,
		})
	}
}
