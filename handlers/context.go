package handlers

import (
	"strconv"

	"blogfeed/middleware"
	"blogfeed/models"

	"github.com/gin-gonic/gin"
)

// viewerID is the authenticated user, or 0 for anonymous requests.
func viewerID(c *gin.Context) uint {
	if v, ok := c.Get(middleware.ContextUserID); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

func actor(c *gin.Context) models.Actor {
	return models.Actor{
		UserID: viewerID(c),
		Role:   models.UserRole(c.GetString(middleware.ContextRole)),
	}
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
