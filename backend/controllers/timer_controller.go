package controllers

import (
	"context"
	"errors"
	gosync "sync"

	"planner/backend/config"
	"planner/backend/gateway"
	"planner/backend/models"
	"planner/backend/sync"
	"planner/backend/timer"
	"planner/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// requestConfirm — подтверждение, приходящее параметром confirm в том
// же запросе. Ответ выставляется непосредственно перед Stop.
type requestConfirm struct {
	mu     gosync.Mutex
	answer bool
}

func (r *requestConfirm) Confirm(string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.answer
}

func (r *requestConfirm) set(v bool) {
	r.mu.Lock()
	r.answer = v
	r.mu.Unlock()
}

type userTimer struct {
	t       *timer.Timer
	confirm *requestConfirm
}

// TimerController держит по одному таймеру на пользователя: одна
// активная сессия на дашборд.
type TimerController struct {
	Cfg      *config.Config
	Profiles *sync.Registry
	Gate     *gateway.Gateway

	mu     gosync.Mutex
	timers map[uint]*userTimer
}

func NewTimerController(cfg *config.Config, profiles *sync.Registry, gate *gateway.Gateway) *TimerController {
	return &TimerController{
		Cfg:      cfg,
		Profiles: profiles,
		Gate:     gate,
		timers:   make(map[uint]*userTimer),
	}
}

// Close гасит все тикающие таймеры при остановке сервера.
func (tc *TimerController) Close() {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	for _, ut := range tc.timers {
		ut.t.Close()
	}
	tc.timers = make(map[uint]*userTimer)
}

func (tc *TimerController) userID(c *fiber.Ctx) (uint, error) {
	return utils.ExtractUserIDFromToken(c, tc.Cfg)
}

// timerFor лениво создаёт таймер пользователя. Фиксация сессии идёт
// через шлюз мутаций: секунды предмета, минуты дня и XP меняются
// одной атомарной командой.
func (tc *TimerController) timerFor(userID uint) *userTimer {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if ut, ok := tc.timers[userID]; ok {
		return ut
	}

	confirm := &requestConfirm{}
	commit := func(subject models.SubjectName, seconds int) error {
		m, err := tc.Profiles.Manager(context.Background(), userID)
		if err != nil {
			return err
		}
		_, err = m.Update(func(p *models.Profile) (*models.Profile, error) {
			return tc.Gate.CommitSession(p, subject, seconds)
		})
		if errors.Is(err, gateway.ErrNoOp) {
			return nil
		}
		return err
	}

	ut := &userTimer{t: timer.New(confirm, commit), confirm: confirm}
	tc.timers[userID] = ut
	return ut
}

func (tc *TimerController) status(ut *userTimer) fiber.Map {
	return fiber.Map{
		"state":   ut.t.State(),
		"subject": ut.t.Subject(),
		"elapsed": ut.t.Elapsed(),
	}
}

// GetStatus godoc
// @Summary Current timer state
// @Tags timer
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /timer [get]
func (tc *TimerController) GetStatus(c *fiber.Ctx) error {
	userID, err := tc.userID(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	return utils.Success(c, fiber.StatusOK, tc.status(tc.timerFor(userID)))
}

// Start godoc
// @Summary Start a focus session
// @Tags timer
// @Accept json
// @Produce json
// @Param input body map[string]interface{} true "Subject"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /timer/start [post]
func (tc *TimerController) Start(c *fiber.Ctx) error {
	userID, err := tc.userID(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Subject models.SubjectName `json:"subject"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	ut := tc.timerFor(userID)
	if err := ut.t.Start(input.Subject); err != nil {
		return utils.BadRequest(c, err.Error())
	}
	return utils.Success(c, fiber.StatusOK, tc.status(ut))
}

// Pause godoc
// @Summary Pause the running session
// @Tags timer
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /timer/pause [post]
func (tc *TimerController) Pause(c *fiber.Ctx) error {
	userID, err := tc.userID(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	ut := tc.timerFor(userID)
	if err := ut.t.Pause(); err != nil {
		return utils.BadRequest(c, err.Error())
	}
	return utils.Success(c, fiber.StatusOK, tc.status(ut))
}

// Resume godoc
// @Summary Resume a paused session
// @Tags timer
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /timer/resume [post]
func (tc *TimerController) Resume(c *fiber.Ctx) error {
	userID, err := tc.userID(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	ut := tc.timerFor(userID)
	if err := ut.t.Resume(); err != nil {
		return utils.BadRequest(c, err.Error())
	}
	return utils.Success(c, fiber.StatusOK, tc.status(ut))
}

// Stop godoc
// @Summary Stop the session and commit the time
// @Description Non-zero elapsed requires confirm=true; declining keeps the timer in its pre-stop state
// @Tags timer
// @Produce json
// @Param confirm query bool false "Confirmation to save the session"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /timer/stop [post]
func (tc *TimerController) Stop(c *fiber.Ctx) error {
	userID, err := tc.userID(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	ut := tc.timerFor(userID)
	ut.confirm.set(c.QueryBool("confirm"))

	seconds, err := ut.t.Stop()
	if errors.Is(err, timer.ErrDeclined) {
		// Отказ — не ошибка: таймер остаётся как был.
		return utils.Success(c, fiber.StatusOK, fiber.Map{
			"committed": false,
			"state":     ut.t.State(),
			"subject":   ut.t.Subject(),
			"elapsed":   ut.t.Elapsed(),
		})
	}
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	// Нулевая сессия останавливается без фиксации.
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"committed": seconds > 0,
		"seconds":   seconds,
		"state":     ut.t.State(),
		"subject":   ut.t.Subject(),
		"elapsed":   ut.t.Elapsed(),
	})
}

// SetSubject godoc
// @Summary Select the session subject
// @Description Only effective while the timer is idle; otherwise silently ignored
// @Tags timer
// @Accept json
// @Produce json
// @Param input body map[string]interface{} true "Subject"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /timer/subject [put]
func (tc *TimerController) SetSubject(c *fiber.Ctx) error {
	userID, err := tc.userID(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Subject models.SubjectName `json:"subject"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	ut := tc.timerFor(userID)
	ut.t.SetSubject(input.Subject)
	return utils.Success(c, fiber.StatusOK, tc.status(ut))
}
