package controllers

import (
	"planner/backend/config"
	"planner/backend/gateway"
	"planner/backend/models"
	"planner/backend/sync"
	"planner/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type TasksController struct {
	Cfg      *config.Config
	Profiles *sync.Registry
	Gate     *gateway.Gateway
}

func NewTasksController(cfg *config.Config, profiles *sync.Registry, gate *gateway.Gateway) *TasksController {
	return &TasksController{Cfg: cfg, Profiles: profiles, Gate: gate}
}

func (tc *TasksController) manager(c *fiber.Ctx) (*sync.Manager, error) {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return nil, err
	}
	return tc.Profiles.Manager(c.Context(), userID)
}

// GetTasks godoc
// @Summary List tasks, most recent first
// @Tags tasks
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /tasks [get]
func (tc *TasksController) GetTasks(c *fiber.Ctx) error {
	m, err := tc.manager(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	return utils.Success(c, fiber.StatusOK, m.Snapshot().Tasks)
}

// AddTask godoc
// @Summary Add a task
// @Tags tasks
// @Accept json
// @Produce json
// @Param input body map[string]interface{} true "Task text and optional subject tag"
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /tasks [post]
func (tc *TasksController) AddTask(c *fiber.Ctx) error {
	m, err := tc.manager(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Text       string `json:"text"`
		SubjectTag string `json:"subject_tag"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	snapshot, err := m.Update(func(p *models.Profile) (*models.Profile, error) {
		return tc.Gate.AddTask(p, input.Text, input.SubjectTag)
	})
	return respondMutation(c, snapshot, err)
}

// ToggleTask godoc
// @Summary Toggle task completion
// @Tags tasks
// @Produce json
// @Param id path string true "Task id"
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /tasks/{id}/toggle [post]
func (tc *TasksController) ToggleTask(c *fiber.Ctx) error {
	m, err := tc.manager(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	taskID := c.Params("id")
	snapshot, err := m.Update(func(p *models.Profile) (*models.Profile, error) {
		return tc.Gate.ToggleTask(p, taskID)
	})
	return respondMutation(c, snapshot, err)
}

// DeleteTask godoc
// @Summary Delete a task by id
// @Description Destructive: requires confirm=true
// @Tags tasks
// @Produce json
// @Param id path string true "Task id"
// @Param confirm query bool true "Confirmation"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /tasks/{id} [delete]
func (tc *TasksController) DeleteTask(c *fiber.Ctx) error {
	m, err := tc.manager(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	if !c.QueryBool("confirm") {
		return utils.BadRequest(c, "Confirmation required")
	}

	taskID := c.Params("id")
	snapshot, err := m.Update(func(p *models.Profile) (*models.Profile, error) {
		return tc.Gate.DeleteTask(p, taskID)
	})
	return respondMutation(c, snapshot, err)
}
