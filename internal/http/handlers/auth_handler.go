package handlers

import (
	"errors"
	"strings"

	"github.com/flexme/backend/internal/auth"
	"github.com/flexme/backend/internal/config"
	"github.com/flexme/backend/internal/http/dto"
	"github.com/flexme/backend/internal/models"
	"github.com/flexme/backend/internal/repositories"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuthHandler struct {
	userRepo  *repositories.UserRepo
	auditRepo *repositories.AuditRepo
	cfg       *config.Config
	log       *zap.Logger
}

func NewAuthHandler(userRepo *repositories.UserRepo, auditRepo *repositories.AuditRepo, cfg *config.Config, log *zap.Logger) *AuthHandler {
	return &AuthHandler{userRepo: userRepo, auditRepo: auditRepo, cfg: cfg, log: log}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "username, email and password are required"})
	}
	if !strings.Contains(req.Email, "@") {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid email"})
	}
	if len(req.Password) < 8 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "password must be at least 8 characters"})
	}

	hash, err := auth.HashPassword(req.Password, h.cfg.BcryptCost)
	if err != nil {
		h.log.Error("failed to hash password", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := h.userRepo.Create(c.Context(), user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: "email already registered"})
		}
		h.log.Error("failed to create user", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
	}

	_ = h.auditRepo.Log(c.Context(), models.AuditLog{
		ActorUserID: &user.ID,
		ActorType:   "user",
		Action:      "user_registered",
		EntityType:  "user",
		EntityID:    &user.ID,
	})

	token, err := auth.GenerateJWT(h.cfg.JWTSecret, user.ID, user.Email, h.cfg.JWTExpiration)
	if err != nil {
		h.log.Error("failed to generate jwt", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.AuthResponse{Token: token, User: user})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	user, err := h.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		// Same response for unknown email and bad password.
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "invalid credentials"})
	}

	_ = h.userRepo.UpdateLastActive(c.Context(), user.ID)

	token, err := auth.GenerateJWT(h.cfg.JWTSecret, user.ID, user.Email, h.cfg.JWTExpiration)
	if err != nil {
		h.log.Error("failed to generate jwt", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
	}

	return c.JSON(dto.AuthResponse{Token: token, User: user})
}
