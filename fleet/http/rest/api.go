package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/anton-kapralov/fuel-economy-pulse/fleet/aggregating"
	"github.com/anton-kapralov/fuel-economy-pulse/fleet/listing"
	"github.com/anton-kapralov/fuel-economy-pulse/statistics/describing"
)

type samplesRequest struct {
	Samples []float64 `json:"samples"`
}

type ratioResponse struct {
	Ratio float64 `json:"ratio"`
}

type Controller interface {
	Report(c *gin.Context)
	AverageEconomy(c *gin.Context)
	YearStatistics(c *gin.Context)
	HybridRatio(c *gin.Context)
	HybridsByMake(c *gin.Context)
	EconomyByYear(c *gin.Context)
	Describe(c *gin.Context)
}

type controller struct {
	listingService listing.Service
	logger         *zap.SugaredLogger
}

func NewController(listingService listing.Service, logger *zap.SugaredLogger) Controller {
	return &controller{
		listingService: listingService,
		logger:         logger,
	}
}

// Register binds every endpoint of c to router.
func Register(router gin.IRouter, c Controller) {
	router.GET("/api/fleet/report", c.Report)
	router.GET("/api/fleet/economy", c.AverageEconomy)
	router.GET("/api/fleet/economy/years", c.EconomyByYear)
	router.GET("/api/fleet/years", c.YearStatistics)
	router.GET("/api/fleet/hybrids/ratio", c.HybridRatio)
	router.GET("/api/fleet/hybrids/makes", c.HybridsByMake)
	router.POST("/api/statistics", c.Describe)
}

func (c *controller) aggregator(ctx *gin.Context) (aggregating.Service, bool) {
	records, err := c.listingService.List(ctx)
	if err != nil {
		c.fail(ctx, err)
		return nil, false
	}
	return aggregating.NewService(records), true
}

func (c *controller) fail(ctx *gin.Context, err error) {
	if errors.Is(err, describing.ErrInvalidInput) {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.logger.Errorw("request failed", "path", ctx.FullPath(), "error", err)
	ctx.Status(http.StatusInternalServerError)
}

func (c *controller) Report(ctx *gin.Context) {
	agg, ok := c.aggregator(ctx)
	if !ok {
		return
	}
	report, err := agg.Report()
	if err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, report)
}

func (c *controller) AverageEconomy(ctx *gin.Context) {
	agg, ok := c.aggregator(ctx)
	if !ok {
		return
	}
	economy, err := agg.AverageEconomy()
	if err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, economy)
}

func (c *controller) YearStatistics(ctx *gin.Context) {
	agg, ok := c.aggregator(ctx)
	if !ok {
		return
	}
	stats, err := agg.YearStatistics()
	if err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, stats)
}

func (c *controller) HybridRatio(ctx *gin.Context) {
	agg, ok := c.aggregator(ctx)
	if !ok {
		return
	}
	ratio, err := agg.HybridRatio()
	if err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, ratioResponse{Ratio: ratio})
}

func (c *controller) HybridsByMake(ctx *gin.Context) {
	agg, ok := c.aggregator(ctx)
	if !ok {
		return
	}
	makes, err := agg.HybridsByMake()
	if err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, makes)
}

func (c *controller) EconomyByYear(ctx *gin.Context) {
	agg, ok := c.aggregator(ctx)
	if !ok {
		return
	}
	byYear, err := agg.EconomyByYearAndHybridStatus()
	if err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, byYear)
}

func (c *controller) Describe(ctx *gin.Context) {
	var req samplesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := describing.Describe(req.Samples)
	if err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, res)
}
