package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check always answers 200 while the process is up; the database may be down since the
// server keeps serving without it.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	database := "up"
	if err := h.db.Ping(ctx, readpref.Primary()); err != nil {
		logrus.WithError(err).Warn("Health: Database unreachable")
		database = "down"
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": database})
}
