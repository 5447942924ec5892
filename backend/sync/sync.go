// Package sync — отложенная сквозная запись профиля в удалённое
// хранилище. Каждое изменение взводит таймер тишины; новое изменение
// до срабатывания сбрасывает прежний таймер, так что наружу уходит
// только последний снимок, никогда промежуточный.
package sync

import (
	"context"
	"log"
	"sync"
	"time"

	"planner/backend/models"
	"planner/backend/store"
)

const DefaultDebounce = time.Second

// Manager владеет профилем одного пользователя в памяти и сериализует
// все мутации: шлюз никогда не выполняется конкурентно сам с собой.
type Manager struct {
	mu       sync.Mutex
	userID   uint
	store    store.ProfileStore
	logger   *log.Logger
	debounce time.Duration

	profile *models.Profile
	pending *time.Timer
	closed  bool
}

func NewManager(userID uint, st store.ProfileStore, logger *log.Logger, debounce time.Duration) *Manager {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Manager{
		userID:   userID,
		store:    st,
		logger:   logger,
		debounce: debounce,
	}
}

// Load выполняет однократную загрузку при старте сессии. Если документа
// ещё нет, начальным удалённым состоянием записывается профиль по
// умолчанию. Ошибка хранилища не валит сессию: работаем на профиле по
// умолчанию в несинхронизированном режиме, следующая успешная запись —
// фактический ретрай.
func (m *Manager) Load(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.profile != nil {
		return nil
	}

	p, err := m.store.Get(ctx, m.userID)
	if err != nil {
		m.logger.Printf("sync: load failed for user %d, continuing unsynced: %v", m.userID, err)
		m.profile = models.DefaultProfile(nil)
		return nil
	}
	if p == nil {
		m.profile = models.DefaultProfile(nil)
		if err := m.store.Set(ctx, m.userID, m.profile); err != nil {
			m.logger.Printf("sync: initial write failed for user %d: %v", m.userID, err)
		}
		return nil
	}
	m.profile = p
	return nil
}

// Snapshot возвращает копию текущего профиля для чтения.
func (m *Manager) Snapshot() *models.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profile.Clone()
}

// Update применяет мутацию шлюза атомарно. При успехе профиль
// подменяется новым снимком и планируется отложенная запись; ошибка
// оставляет всё как было.
func (m *Manager) Update(mutate func(*models.Profile) (*models.Profile, error)) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, err := mutate(m.profile)
	if err != nil {
		return m.profile.Clone(), err
	}
	m.profile = next
	m.scheduleLocked()
	return m.profile.Clone(), nil
}

// scheduleLocked взводит (или перевзводит) таймер тишины. Вызывается под mu.
func (m *Manager) scheduleLocked() {
	if m.closed {
		return
	}
	if m.pending != nil {
		m.pending.Stop()
	}
	m.pending = time.AfterFunc(m.debounce, m.writeThrough)
}

// writeThrough пишет последний снимок. Сбой логируется и не ретраится:
// ближайшая мутация снова взведёт таймер.
func (m *Manager) writeThrough() {
	m.mu.Lock()
	snapshot := m.profile.Clone()
	m.pending = nil
	m.mu.Unlock()

	if err := m.store.Set(context.Background(), m.userID, snapshot); err != nil {
		m.logger.Printf("sync: write failed for user %d: %v", m.userID, err)
	}
}

// Close гасит отложенный таймер и доливает несохранённый снимок.
// Неотменённый таймер пережил бы владельца — ровно та утечка, от
// которой предостерегает дизайн.
func (m *Manager) Close() {
	m.mu.Lock()
	hadPending := m.pending != nil
	if m.pending != nil {
		m.pending.Stop()
		m.pending = nil
	}
	m.closed = true
	m.mu.Unlock()

	if hadPending {
		m.writeThrough()
	}
}

// Registry раздаёт менеджеры по пользователям; каждый профиль
// загружается из хранилища один раз за время жизни процесса.
type Registry struct {
	mu       sync.Mutex
	store    store.ProfileStore
	logger   *log.Logger
	debounce time.Duration
	managers map[uint]*Manager
}

func NewRegistry(st store.ProfileStore, logger *log.Logger, debounce time.Duration) *Registry {
	return &Registry{
		store:    st,
		logger:   logger,
		debounce: debounce,
		managers: make(map[uint]*Manager),
	}
}

func (r *Registry) Manager(ctx context.Context, userID uint) (*Manager, error) {
	r.mu.Lock()
	m, ok := r.managers[userID]
	if !ok {
		m = NewManager(userID, r.store, r.logger, r.debounce)
		r.managers[userID] = m
	}
	r.mu.Unlock()

	if err := m.Load(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// Drop закрывает менеджер пользователя и убирает его из реестра.
// Используется при выходе из аккаунта.
func (r *Registry) Drop(userID uint) {
	r.mu.Lock()
	m, ok := r.managers[userID]
	delete(r.managers, userID)
	r.mu.Unlock()
	if ok {
		m.Close()
	}
}

func (r *Registry) Close() {
	r.mu.Lock()
	managers := make([]*Manager, 0, len(r.managers))
	for _, m := range r.managers {
		managers = append(managers, m)
	}
	r.managers = make(map[uint]*Manager)
	r.mu.Unlock()
	for _, m := range managers {
		m.Close()
	}
}
