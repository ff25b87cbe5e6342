package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"foodorder/internal/config"
	"foodorder/internal/middleware"
	"foodorder/internal/models"
	"foodorder/internal/services"
)

type registerRequest struct {
	UserType models.Role `json:"userType" binding:"required"`
	Name     string      `json:"name"`
	Phone    string      `json:"phone"`
	Email    string      `json:"email" binding:"omitempty,email"`
	Password string      `json:"password" binding:"required"`
}

type loginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"rememberMe"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// setTokenCookie mirrors the access token into an HttpOnly cookie. A negative
// maxAge clears it.
func setTokenCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.TokenCookie, token, maxAge, "/", "", config.AppEnv.IsProduction(), true)
}

func Register(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "AUTH"
		defer handlePanic(c, route)

		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		user, err := authService.Register(ctx, services.RegisterInput{
			Role:     req.UserType,
			Name:     req.Name,
			Phone:    req.Phone,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "User registered successfully",
			"user":    user,
		})
	}
}

func Login(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "AUTH"
		defer handlePanic(c, route)

		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Please provide phone/email and password")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		session, err := authService.Login(ctx, req.Identifier, req.Password, req.RememberMe)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		setTokenCookie(c, session.AccessToken, int(session.ExpiresIn))
		c.JSON(http.StatusOK, gin.H{
			"message":      "Login successful",
			"token":        session.AccessToken,
			"refreshToken": session.RefreshToken,
			"expiresIn":    session.ExpiresIn,
			"user":         session.User,
		})
	}
}

func Refresh(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "AUTH"
		defer handlePanic(c, route)

		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Invalid request body")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		session, err := authService.Refresh(ctx, req.RefreshToken)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		setTokenCookie(c, session.AccessToken, int(session.ExpiresIn))
		c.JSON(http.StatusOK, gin.H{
			"token":        session.AccessToken,
			"refreshToken": session.RefreshToken,
			"expiresIn":    session.ExpiresIn,
			"user":         session.User,
		})
	}
}

// Logout always clears the cookie. The refresh token in the body is optional.
func Logout(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "AUTH"
		defer handlePanic(c, route)

		var req refreshRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				respondWithError(c, http.StatusBadRequest, route, "Invalid request body")
				return
			}
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		if err := authService.Logout(ctx, strings.TrimSpace(req.RefreshToken)); err != nil {
			respondServiceError(c, route, err)
			return
		}

		setTokenCookie(c, "", -1)
		log.Println("[AUTH] [INFO] logout succeeded")
		c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
	}
}

func Me(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "AUTH"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		user, err := authService.Me(ctx, middleware.PrincipalFrom(c))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

func ListOwners(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "AUTH"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		owners, err := authService.ListOwners(ctx, middleware.PrincipalFrom(c))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, owners)
	}
}
