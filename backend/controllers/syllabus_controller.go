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

type SyllabusController struct {
	Cfg      *config.Config
	Profiles *sync.Registry
	Gate     *gateway.Gateway
}

func NewSyllabusController(cfg *config.Config, profiles *sync.Registry, gate *gateway.Gateway) *SyllabusController {
	return &SyllabusController{Cfg: cfg, Profiles: profiles, Gate: gate}
}

func (sc *SyllabusController) manager(c *fiber.Ctx) (*sync.Manager, error) {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return nil, err
	}
	return sc.Profiles.Manager(c.Context(), userID)
}

// GetSyllabus godoc
// @Summary Get syllabus completion for a subject
// @Tags syllabus
// @Produce json
// @Param subject path string true "Subject name"
// @Param grade query string false "Filter by grade (11|12)"
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /syllabus/{subject} [get]
func (sc *SyllabusController) GetSyllabus(c *fiber.Ctx) error {
	m, err := sc.manager(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	subject := models.SubjectName(c.Params("subject"))
	grade := c.Query("grade")

	chapters := engine.SyllabusCompletion(m.Snapshot(), subject)
	if grade != "" {
		filtered := chapters[:0]
		for _, ch := range chapters {
			if ch.Grade == grade {
				filtered = append(filtered, ch)
			}
		}
		chapters = filtered
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"subject":  subject,
		"chapters": chapters,
	})
}

// AddChapter godoc
// @Summary Add a chapter to a subject
// @Tags syllabus
// @Accept json
// @Produce json
// @Param subject path string true "Subject name"
// @Param input body map[string]interface{} true "Chapter data"
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /syllabus/{subject}/chapters [post]
func (sc *SyllabusController) AddChapter(c *fiber.Ctx) error {
	m, err := sc.manager(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Name       string `json:"name"`
		Grade      string `json:"grade"`
		TotalUnits int    `json:"total_units"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	subject := models.SubjectName(c.Params("subject"))
	snapshot, err := m.Update(func(p *models.Profile) (*models.Profile, error) {
		return sc.Gate.AddChapter(p, subject, input.Name, input.Grade, input.TotalUnits)
	})
	return respondMutation(c, snapshot, err)
}

// ToggleUnit godoc
// @Summary Toggle a lecture checkbox
// @Tags syllabus
// @Accept json
// @Produce json
// @Param subject path string true "Subject name"
// @Param id path string true "Chapter id"
// @Param input body map[string]interface{} true "Unit index"
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /syllabus/{subject}/chapters/{id}/toggle [post]
func (sc *SyllabusController) ToggleUnit(c *fiber.Ctx) error {
	m, err := sc.manager(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Index int `json:"index"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	subject := models.SubjectName(c.Params("subject"))
	chapterID := c.Params("id")
	snapshot, err := m.Update(func(p *models.Profile) (*models.Profile, error) {
		return sc.Gate.ToggleUnit(p, subject, chapterID, input.Index)
	})
	return respondMutation(c, snapshot, err)
}

// DeleteChapter godoc
// @Summary Delete a chapter by id
// @Description Destructive: requires confirm=true
// @Tags syllabus
// @Produce json
// @Param subject path string true "Subject name"
// @Param id path string true "Chapter id"
// @Param confirm query bool true "Confirmation"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /syllabus/{subject}/chapters/{id} [delete]
func (sc *SyllabusController) DeleteChapter(c *fiber.Ctx) error {
	m, err := sc.manager(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	if !c.QueryBool("confirm") {
		return utils.BadRequest(c, "Confirmation required")
	}

	subject := models.SubjectName(c.Params("subject"))
	chapterID := c.Params("id")
	snapshot, err := m.Update(func(p *models.Profile) (*models.Profile, error) {
		return sc.Gate.DeleteChapter(p, subject, chapterID)
	})
	return respondMutation(c, snapshot, err)
}
