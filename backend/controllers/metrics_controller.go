package controllers

import (
	"strconv"
	"time"

	"planner/backend/config"
	"planner/backend/engine"
	"planner/backend/sync"
	"planner/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// MetricsController отдаёт производные метрики. Всё пересчитывается из
// снимка на каждый запрос и нигде не сохраняется.
type MetricsController struct {
	Cfg      *config.Config
	Profiles *sync.Registry
	Loc      *time.Location
}

func NewMetricsController(cfg *config.Config, profiles *sync.Registry, loc *time.Location) *MetricsController {
	if loc == nil {
		loc = time.Local
	}
	return &MetricsController{Cfg: cfg, Profiles: profiles, Loc: loc}
}

func (mc *MetricsController) manager(c *fiber.Ctx) (*sync.Manager, error) {
	userID, err := utils.ExtractUserIDFromToken(c, mc.Cfg)
	if err != nil {
		return nil, err
	}
	return mc.Profiles.Manager(c.Context(), userID)
}

// GetDashboard godoc
// @Summary Dashboard metrics
// @Description Streak, level, daily goal progress, subject distribution and the weekly series in one response
// @Tags metrics
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /metrics/dashboard [get]
func (mc *MetricsController) GetDashboard(c *fiber.Ctx) error {
	m, err := mc.manager(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	p := m.Snapshot()
	now := time.Now()

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"xp":            p.XP,
		"level":         engine.Level(p.XP),
		"streak":        engine.Streak(p.History, now, mc.Loc),
		"today_minutes": engine.TodayMinutes(p.History, now, mc.Loc),
		"goal_progress": engine.GoalProgress(p, now, mc.Loc),
		"distribution":  engine.SubjectDistribution(p),
		"weekly":        engine.WeeklySeries(p.History, now, mc.Loc),
	})
}

// GetHeatmap godoc
// @Summary Study heatmap for a calendar year
// @Tags metrics
// @Produce json
// @Param year query int false "Year, defaults to current"
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /metrics/heatmap [get]
func (mc *MetricsController) GetHeatmap(c *fiber.Ctx) error {
	m, err := mc.manager(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	year, convErr := strconv.Atoi(c.Query("year"))
	if convErr != nil || year < 2000 || year > 2100 {
		year = time.Now().In(mc.Loc).Year()
	}

	p := m.Snapshot()
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"year":   year,
		"months": engine.HeatmapYear(p.History, year, mc.Loc),
	})
}

// GetCountdowns godoc
// @Summary Days left until selected exams
// @Description Past exams are excluded, nearest exam first
// @Tags metrics
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /metrics/countdowns [get]
func (mc *MetricsController) GetCountdowns(c *fiber.Ctx) error {
	m, err := mc.manager(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	p := m.Snapshot()
	return utils.Success(c, fiber.StatusOK, engine.Countdowns(p.SelectedExams, time.Now(), mc.Loc))
}
