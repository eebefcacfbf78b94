package controller

import (
	"literacy_backend/internal/util"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// actorID is the authenticated user's id when the request carries a valid token.
func actorID(ctx *gin.Context) *primitive.ObjectID {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		return nil
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil
	}
	return &id
}
