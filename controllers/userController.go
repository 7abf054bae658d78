package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go-hotel-dashboard/helpers"
	"go-hotel-dashboard/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var ErrAdminNotFound = errors.New("admin not found")

// AdminStore looks up operator accounts and records issued tokens.
type AdminStore interface {
	FindByEmail(ctx context.Context, email string) (models.Admin, error)
	UpdateTokens(ctx context.Context, adminId string, token string, refreshToken string) error
}

type mongoAdmins struct {
	collection *mongo.Collection
}

func NewAdminStore(collection *mongo.Collection) AdminStore {
	return &mongoAdmins{collection: collection}
}

func (m *mongoAdmins) FindByEmail(ctx context.Context, email string) (models.Admin, error) {
	var admin models.Admin
	err := m.collection.FindOne(ctx, bson.M{"email": email}).Decode(&admin)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Admin{}, ErrAdminNotFound
	}
	if err != nil {
		return models.Admin{}, fmt.Errorf("failed to find admin: %w", err)
	}
	return admin, nil
}

func (m *mongoAdmins) UpdateTokens(ctx context.Context, adminId string, token string, refreshToken string) error {
	return helpers.UpdateAllTokens(ctx, m.collection, token, refreshToken, adminId)
}

type loginRequest struct {
	Email    *string `json:"email" validate:"required,email"`
	Password *string `json:"password" validate:"required"`
}

type loginResponse struct {
	Admin_id      string `json:"adminId"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Token         string `json:"token"`
	Refresh_token string `json:"refreshToken"`
}

// Login checks the operator's credentials, issues tokens and binds the
// dashboard to the operator.
func (ctl *Controller) Login() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		var req loginRequest
		if !bindJSON(c, &req) {
			return
		}
		foundAdmin, err := ctl.Admins.FindByEmail(ctx, *req.Email)
		if errors.Is(err, ErrAdminNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "email or password is incorrect"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if foundAdmin.Password == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "email or password is incorrect"})
			return
		}
		passwordIsValid, msg := helpers.VerifyPassword(*req.Password, *foundAdmin.Password)
		if !passwordIsValid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		name := ""
		if foundAdmin.Name != nil {
			name = *foundAdmin.Name
		}
		token, refreshToken, err := ctl.Tokens.GenerateAllTokens(*req.Email, name, foundAdmin.Admin_id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if err := ctl.Admins.UpdateTokens(ctx, foundAdmin.Admin_id, token, refreshToken); err != nil {
			ctl.Logger.Warn("Failed to store tokens", zap.String("adminId", foundAdmin.Admin_id), zap.Error(err))
		}

		ctl.Sessions.SignIn(foundAdmin.Admin_id)
		ctl.Logger.Info("Operator signed in", zap.String("adminId", foundAdmin.Admin_id))

		c.JSON(http.StatusOK, loginResponse{
			Admin_id:      foundAdmin.Admin_id,
			Name:          name,
			Email:         *req.Email,
			Token:         token,
			Refresh_token: refreshToken,
		})
	}
}

// Logout unbinds the dashboard for the operator whose token it carries.
func (ctl *Controller) Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		previous := ctl.Sessions.Current()
		ctl.Sessions.SignOut()
		if previous != "" {
			ctl.Logger.Info("Operator signed out", zap.String("adminId", previous))
		}
		c.JSON(http.StatusOK, gin.H{"message": "signed out"})
	}
}
