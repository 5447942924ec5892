package controllers

import (
	"errors"

	"planner/backend/config"
	"planner/backend/gateway"
	"planner/backend/models"
	"planner/backend/sync"
	"planner/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type ProfileController struct {
	Cfg      *config.Config
	Profiles *sync.Registry
	Gate     *gateway.Gateway
}

func NewProfileController(cfg *config.Config, profiles *sync.Registry, gate *gateway.Gateway) *ProfileController {
	return &ProfileController{Cfg: cfg, Profiles: profiles, Gate: gate}
}

// manager достаёт менеджер профиля текущего пользователя из токена.
func (pc *ProfileController) manager(c *fiber.Ctx) (*sync.Manager, error) {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return nil, err
	}
	return pc.Profiles.Manager(c.Context(), userID)
}

// respondMutation — общий ответ на мутацию: отвергнутая валидацией
// команда не ошибка, клиент просто получает прежний снимок.
func respondMutation(c *fiber.Ctx, snapshot *models.Profile, err error) error {
	if err != nil && !errors.Is(err, gateway.ErrNoOp) {
		return utils.InternalServerError(c, "Could not apply mutation")
	}
	return utils.Success(c, fiber.StatusOK, snapshot)
}

// GetProfile godoc
// @Summary Get profile document
// @Description Returns the full profile snapshot
// @Tags profile
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /profile [get]
func (pc *ProfileController) GetProfile(c *fiber.Ctx) error {
	m, err := pc.manager(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	return utils.Success(c, fiber.StatusOK, m.Snapshot())
}

// SetDailyGoal godoc
// @Summary Set daily study goal
// @Tags profile
// @Accept json
// @Produce json
// @Param input body map[string]interface{} true "Goal in hours"
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /profile/goal [put]
func (pc *ProfileController) SetDailyGoal(c *fiber.Ctx) error {
	m, err := pc.manager(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Hours float64 `json:"hours"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	snapshot, err := m.Update(func(p *models.Profile) (*models.Profile, error) {
		return pc.Gate.SetDailyGoal(p, input.Hours)
	})
	return respondMutation(c, snapshot, err)
}

// SelectExams godoc
// @Summary Select target exams
// @Description Updates the exam set; subjects for new exams are created, accumulated time is kept
// @Tags profile
// @Accept json
// @Produce json
// @Param input body map[string]interface{} true "Exam names"
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /profile/exams [put]
func (pc *ProfileController) SelectExams(c *fiber.Ctx) error {
	m, err := pc.manager(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Exams []models.ExamName `json:"exams"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	snapshot, err := m.Update(func(p *models.Profile) (*models.Profile, error) {
		return pc.Gate.SelectExams(p, input.Exams)
	})
	return respondMutation(c, snapshot, err)
}

// UpdateSettings godoc
// @Summary Update display settings
// @Description Settings are opaque to the core and stored as-is
// @Tags profile
// @Accept json
// @Produce json
// @Param input body models.Settings true "Settings"
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /profile/settings [put]
func (pc *ProfileController) UpdateSettings(c *fiber.Ctx) error {
	m, err := pc.manager(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var settings models.Settings
	if err := c.BodyParser(&settings); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	snapshot, err := m.Update(func(p *models.Profile) (*models.Profile, error) {
		return pc.Gate.UpdateSettings(p, settings)
	})
	return respondMutation(c, snapshot, err)
}

// ResetProfile godoc
// @Summary Reset profile to defaults
// @Description Destructive: requires confirm=true. The only path where time and XP go down
// @Tags profile
// @Produce json
// @Param confirm query bool true "Confirmation"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /profile/reset [post]
func (pc *ProfileController) ResetProfile(c *fiber.Ctx) error {
	m, err := pc.manager(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	// Подтверждение — на границе, шлюз сам ничего не спрашивает.
	if !c.QueryBool("confirm") {
		return utils.BadRequest(c, "Confirmation required")
	}

	snapshot, err := m.Update(pc.Gate.Reset)
	return respondMutation(c, snapshot, err)
}
