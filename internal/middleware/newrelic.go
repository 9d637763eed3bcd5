package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
)

// NewRelicAttributes adds the caller's identity to the New Relic transaction
// started by nrgin. It must run after AuthMiddleware.
func NewRelicAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		txn := nrgin.Transaction(c)
		if txn == nil {
			c.Next()
			return
		}

		if identity, ok := IdentityFrom(c); ok {
			txn.AddAttribute("userId", identity.UserID)
			txn.AddAttribute("role", string(identity.Role))
		}

		c.Next()

		for _, err := range c.Errors {
			txn.NoticeError(err.Err)
		}
	}
}
