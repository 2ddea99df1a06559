package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"salonpro-gateway/utils"
)

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// controllers/auth.go
func Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Email et mot de passe requis")
		return
	}

	s := utils.CurrentSession(c)
	user, err := s.Auth.Login(c.Request.Context(), strings.TrimSpace(input.Email), input.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	// A new login starts from the user's own salon.
	if err := s.Admin.Clear(c.Request.Context()); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Session indisponible")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Connexion réussie",
		"user":    user,
	})
}

func Logout(c *gin.Context) {
	s := utils.CurrentSession(c)
	ctx := c.Request.Context()
	if err := s.Auth.Logout(ctx); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Échec de la déconnexion")
		return
	}
	if err := s.Admin.Clear(ctx); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Échec de la déconnexion")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Déconnexion réussie", "redirect": utils.LoginPath})
}

// Me returns the current user. Visitors get a null user rather than an
// error so the SPA can tell "logged out" apart from "still loading".
func Me(c *gin.Context) {
	s := utils.CurrentSession(c)
	user := s.Auth.User()
	resp := gin.H{
		"user":            user,
		"isAuthenticated": user != nil,
		"isLoading":       s.Auth.IsLoading(),
	}
	if user != nil {
		if claims, err := s.Auth.TokenClaims(); err == nil && !claims.ExpiresAt.IsZero() {
			resp["tokenExpiresAt"] = claims.ExpiresAt
		}
	}
	c.JSON(http.StatusOK, resp)
}

// RefreshUser re-reads the user from the API, for example after the
// salon was edited.
func RefreshUser(c *gin.Context) {
	s := utils.CurrentSession(c)
	if err := s.Auth.RefreshUser(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": s.Auth.User()})
}
