package controllers

import (
	"planner/backend/config"
	"planner/backend/engine"
	"planner/backend/gateway"
	"planner/backend/models"
	"planner/backend/sync"
	"planner/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type MocksController struct {
	Cfg      *config.Config
	Profiles *sync.Registry
	Gate     *gateway.Gateway
}

func NewMocksController(cfg *config.Config, profiles *sync.Registry, gate *gateway.Gateway) *MocksController {
	return &MocksController{Cfg: cfg, Profiles: profiles, Gate: gate}
}

func (mc *MocksController) manager(c *fiber.Ctx) (*sync.Manager, error) {
	userID, err := utils.ExtractUserIDFromToken(c, mc.Cfg)
	if err != nil {
		return nil, err
	}
	return mc.Profiles.Manager(c.Context(), userID)
}

// GetMockSeries godoc
// @Summary Mock tests sorted by date for charting
// @Description Optional exam type filter; each entry keeps the three subject scores plus the recomputed total
// @Tags mocks
// @Produce json
// @Param type query string false "Exam type filter"
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /mocks [get]
func (mc *MocksController) GetMockSeries(c *fiber.Ctx) error {
	m, err := mc.manager(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	examType := models.ExamName(c.Query("type"))
	series := engine.MockSeries(m.Snapshot(), examType)
	return utils.Success(c, fiber.StatusOK, series)
}

// AddMockTest godoc
// @Summary Log a mock test score
// @Tags mocks
// @Accept json
// @Produce json
// @Param input body gateway.MockTestInput true "Mock test data"
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /mocks [post]
func (mc *MocksController) AddMockTest(c *fiber.Ctx) error {
	m, err := mc.manager(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input gateway.MockTestInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	snapshot, err := m.Update(func(p *models.Profile) (*models.Profile, error) {
		return mc.Gate.AddMockTest(p, input)
	})
	return respondMutation(c, snapshot, err)
}

// DeleteMockTest godoc
// @Summary Delete a mock test record
// @Description Destructive: requires confirm=true
// @Tags mocks
// @Produce json
// @Param id path string true "Mock test id"
// @Param confirm query bool true "Confirmation"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /mocks/{id} [delete]
func (mc *MocksController) DeleteMockTest(c *fiber.Ctx) error {
	m, err := mc.manager(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	if !c.QueryBool("confirm") {
		return utils.BadRequest(c, "Confirmation required")
	}

	testID := c.Params("id")
	snapshot, err := m.Update(func(p *models.Profile) (*models.Profile, error) {
		return mc.Gate.DeleteMockTest(p, testID)
	})
	return respondMutation(c, snapshot, err)
}
