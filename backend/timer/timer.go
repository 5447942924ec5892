// Package timer реализует машину состояний учебного таймера:
// Idle → Running → Paused → Running → Stopped. Секунды накапливаются
// тиками раз в секунду только в состоянии Running; остановка с
// ненулевым временем проходит через подтверждение и сворачивается в
// одну фиксацию сессии.
package timer

import (
	"errors"
	"sync"
	"time"

	"planner/backend/models"
)

type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StatePaused  State = "paused"
)

var (
	ErrNotIdle    = errors.New("timer: not idle")
	ErrNotRunning = errors.New("timer: not running")
	ErrNotPaused  = errors.New("timer: not paused")
	ErrNotActive  = errors.New("timer: nothing to stop")
	// ErrDeclined — пользователь отказался сохранять сессию; таймер
	// остаётся в прежнем состоянии, ничего не фиксируется и не
	// сбрасывается. Защита от случайной потери времени.
	ErrDeclined = errors.New("timer: commit declined")
)

// Confirmer — внешний диалог да/нет. Подменяется в тестах, в HTTP-слое
// его реализует явный параметр confirm.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmerFunc адаптирует функцию под интерфейс Confirmer.
type ConfirmerFunc func(prompt string) bool

func (f ConfirmerFunc) Confirm(prompt string) bool { return f(prompt) }

// CommitFunc получает одну зафиксированную сессию: предмет и секунды.
type CommitFunc func(subject models.SubjectName, seconds int) error

type Timer struct {
	mu       sync.Mutex
	state    State
	subject  models.SubjectName
	elapsed  int
	interval time.Duration
	stopTick chan struct{}

	confirm Confirmer
	commit  CommitFunc
}

func New(confirm Confirmer, commit CommitFunc) *Timer {
	return &Timer{
		state:    StateIdle,
		interval: time.Second,
		confirm:  confirm,
		commit:   commit,
	}
}

// Start запускает таймер для предмета. Допустим только из Idle.
func (t *Timer) Start(subject models.SubjectName) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateIdle {
		return ErrNotIdle
	}
	t.subject = subject
	t.state = StateRunning
	t.startTicking()
	return nil
}

// Pause замораживает счёт. Тик обязательно гасится: невыключенный тик
// продолжал бы накручивать секунды, когда таймером уже никто не владеет.
func (t *Timer) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateRunning {
		return ErrNotRunning
	}
	t.stopTicking()
	t.state = StatePaused
	return nil
}

func (t *Timer) Resume() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StatePaused {
		return ErrNotPaused
	}
	t.state = StateRunning
	t.startTicking()
	return nil
}

// Stop завершает сессию из Running или Paused. Ненулевое время требует
// подтверждения; отказ оставляет таймер ровно в прежнем состоянии.
// Подтверждённая остановка выдаёт одну фиксацию и сбрасывает в Idle.
// Возвращаются зафиксированные секунды: ноль означает, что фиксации
// не было.
func (t *Timer) Stop() (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateRunning && t.state != StatePaused {
		return 0, ErrNotActive
	}
	if t.elapsed > 0 {
		if t.confirm == nil || !t.confirm.Confirm("End session and save time?") {
			return 0, ErrDeclined
		}
	}
	t.stopTicking()
	elapsed, subject := t.elapsed, t.subject
	t.state = StateIdle
	t.elapsed = 0

	if elapsed > 0 && t.commit != nil {
		if err := t.commit(subject, elapsed); err != nil {
			return 0, err
		}
	}
	return elapsed, nil
}

// SetSubject меняет предмет. Разрешено только в Idle; во время работы
// или паузы попытка молча игнорируется.
func (t *Timer) SetSubject(subject models.SubjectName) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateIdle {
		return
	}
	t.subject = subject
}

func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Timer) Subject() models.SubjectName {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.subject
}

func (t *Timer) Elapsed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsed
}

// Close гасит тик при демонтаже владельца. Незакрытый таймер — утечка
// горутины, которая продолжала бы мутировать elapsed.
func (t *Timer) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopTicking()
	t.state = StateIdle
	t.elapsed = 0
}

// startTicking запускает горутину-источник тиков. Вызывается под mu.
func (t *Timer) startTicking() {
	stop := make(chan struct{})
	t.stopTick = stop
	go func() {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				t.mu.Lock()
				if t.state == StateRunning {
					t.elapsed++
				}
				t.mu.Unlock()
			}
		}
	}()
}

// stopTicking гасит источник тиков, если он жив. Вызывается под mu.
func (t *Timer) stopTicking() {
	if t.stopTick != nil {
		close(t.stopTick)
		t.stopTick = nil
	}
}
