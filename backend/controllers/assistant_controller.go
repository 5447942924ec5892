package controllers

import (
	"log"

	"planner/backend/assistant"
	"planner/backend/config"
	"planner/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type AssistantController struct {
	Cfg    *config.Config
	Client assistant.Client
	Cache  *assistant.ConversationCache
	Logger *log.Logger
}

func NewAssistantController(cfg *config.Config, client assistant.Client, cache *assistant.ConversationCache, logger *log.Logger) *AssistantController {
	return &AssistantController{Cfg: cfg, Client: client, Cache: cache, Logger: logger}
}

// GetConversation godoc
// @Summary Load the cached conversation
// @Tags assistant
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /assistant [get]
func (ac *AssistantController) GetConversation(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ac.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	msgs, err := ac.Cache.Load(c.Context(), userID)
	if err != nil {
		// Кэш эфемерный: его недоступность не ломает сессию.
		ac.Logger.Printf("assistant: cache load failed for user %d: %v", userID, err)
		msgs = []assistant.Message{}
	}
	return utils.Success(c, fiber.StatusOK, msgs)
}

// SendMessage godoc
// @Summary Send a prompt to the assistant
// @Description Any collaborator failure becomes a single fallback message, never an unhandled fault
// @Tags assistant
// @Accept json
// @Produce json
// @Param input body map[string]interface{} true "Prompt text and optional image"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /assistant [post]
func (ac *AssistantController) SendMessage(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ac.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Text        string `json:"text"`
		ImageBase64 string `json:"image_base64"`
		MimeType    string `json:"mime_type"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Text == "" {
		return utils.BadRequest(c, "Text is required")
	}

	msgs, err := ac.Cache.Load(c.Context(), userID)
	if err != nil {
		msgs = []assistant.Message{}
	}
	msgs = append(msgs, assistant.Message{Role: "user", Text: input.Text})

	parts := []assistant.Part{{Text: input.Text}}
	if input.ImageBase64 != "" {
		parts = append(parts, assistant.Part{ImageBase64: input.ImageBase64, MimeType: input.MimeType})
	}

	reply, err := ac.Client.Generate(c.Context(), parts)
	if err != nil {
		ac.Logger.Printf("assistant: request failed for user %d: %v", userID, err)
		reply = assistant.FallbackMessage
	}
	msgs = append(msgs, assistant.Message{Role: "assistant", Text: reply})

	if err := ac.Cache.Save(c.Context(), userID, msgs); err != nil {
		ac.Logger.Printf("assistant: cache save failed for user %d: %v", userID, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"reply":        reply,
		"conversation": msgs,
	})
}

// ClearConversation godoc
// @Summary Drop the cached conversation
// @Tags assistant
// @Produce json
// @Success 204
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /assistant [delete]
func (ac *AssistantController) ClearConversation(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ac.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	if err := ac.Cache.Clear(c.Context(), userID); err != nil {
		ac.Logger.Printf("assistant: cache clear failed for user %d: %v", userID, err)
	}
	return utils.NoContent(c)
}
