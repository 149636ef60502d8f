package middleware

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/project-task-api/internal/errors"
)

const idParamKey = "id_param"

// RequireIDParam parses the :id path parameter and stores it for handlers.
// resource names the entity in the error message.
func RequireIDParam(resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || id == 0 {
			apierrors.BadRequest(c, fmt.Sprintf("Invalid %s ID", resource))
			return
		}

		c.Set(idParamKey, id)
		c.Next()
	}
}

// GetIDParam returns the ID parsed by RequireIDParam.
func GetIDParam(c *gin.Context) (uint64, bool) {
	v, exists := c.Get(idParamKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}
