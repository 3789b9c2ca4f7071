package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/anton-kapralov/fuel-economy-pulse/consumer/consuming"
	"github.com/anton-kapralov/fuel-economy-pulse/vehicle"
)

type message struct {
	ID         string   `json:"id" binding:"required"`
	Make       string   `json:"make" binding:"required"`
	Year       int      `json:"year" binding:"required"`
	CityMpg    *float64 `json:"cityMpg" binding:"required"`
	HighwayMpg *float64 `json:"highwayMpg" binding:"required"`
	IsHybrid   *bool    `json:"isHybrid" binding:"required"`
}

func (m message) record() vehicle.Record {
	return vehicle.Record{
		ID:         m.ID,
		Make:       m.Make,
		Year:       m.Year,
		CityMpg:    *m.CityMpg,
		HighwayMpg: *m.HighwayMpg,
		IsHybrid:   *m.IsHybrid,
	}
}

type Controller interface {
	SaveVehicleMessage(c *gin.Context)
}

type controller struct {
	consumer consuming.Service
	logger   *zap.SugaredLogger
}

func NewController(consumer consuming.Service, logger *zap.SugaredLogger) Controller {
	return &controller{
		consumer: consumer,
		logger:   logger,
	}
}

func (c *controller) SaveVehicleMessage(ctx *gin.Context) {
	var msg message
	if err := ctx.ShouldBindJSON(&msg); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := c.consumer.Save(msg.record()); err != nil {
		if errors.Is(err, vehicle.ErrInvalidRecord) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.logger.Errorw("failed to save vehicle", "id", msg.ID, "error", err)
		ctx.Status(http.StatusInternalServerError)
		return
	}
	ctx.Status(http.StatusAccepted)
}
