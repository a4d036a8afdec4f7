package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"account_service/internal/model"
)

// MemoryStore keeps users and sessions in process memory. It backs STORAGE=memory
// and the service tests. One lock guards both tables so user deletion can cascade.
type MemoryStore struct {
	mu       sync.RWMutex
	nextID   int
	users    map[int]model.User
	byEmail  map[string]int
	sessions map[int]model.Session
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:   1,
		users:    make(map[int]model.User),
		byEmail:  make(map[string]int),
		sessions: make(map[int]model.Session),
	}
}

// Users returns the store's UserRepository
func (m *MemoryStore) Users() UserRepository {
	return memoryUsers{m}
}

// Sessions returns the store's SessionRepository
func (m *MemoryStore) Sessions() SessionRepository {
	return memorySessions{m}
}

// Ping always succeeds.
func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

type memoryUsers struct{ m *MemoryStore }

func (r memoryUsers) CreateWithBootstrapRole(_ context.Context, user *model.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	user.Role = model.RoleAdmin
	for _, u := range r.m.users {
		if u.Role == model.RoleAdmin {
			user.Role = model.RoleUser
			break
		}
	}
	return r.m.insertLocked(user)
}

func (r memoryUsers) Create(_ context.Context, user *model.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.insertLocked(user)
}

func (m *MemoryStore) insertLocked(user *model.User) error {
	if _, taken := m.byEmail[user.Email]; taken {
		return ErrEmailTaken
	}
	user.ID = m.nextID
	m.nextID++
	user.UpdatedAt = user.CreatedAt
	m.users[user.ID] = *user
	m.byEmail[user.Email] = user.ID
	return nil
}

func (r memoryUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	id, ok := r.m.byEmail[email]
	if !ok {
		return nil, nil
	}
	u := r.m.users[id]
	return &u, nil
}

func (r memoryUsers) FindByID(_ context.Context, id int) (*model.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r memoryUsers) FindAnyByRole(_ context.Context, role model.Role) (*model.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	var found *model.User
	for _, u := range r.m.users {
		if u.Role == role && (found == nil || u.ID < found.ID) {
			u := u
			found = &u
		}
	}
	return found, nil
}

func (r memoryUsers) ListAll(_ context.Context) ([]model.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	users := make([]model.User, 0, len(r.m.users))
	for _, u := range r.m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r memoryUsers) Update(_ context.Context, user *model.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	current, ok := r.m.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	if id, taken := r.m.byEmail[user.Email]; taken && id != user.ID {
		return ErrEmailTaken
	}
	delete(r.m.byEmail, current.Email)
	current.Email = user.Email
	current.Username = user.Username
	current.PasswordHash = user.PasswordHash
	current.UpdatedAt = time.Now().UTC()
	user.UpdatedAt = current.UpdatedAt
	r.m.users[user.ID] = current
	r.m.byEmail[current.Email] = current.ID
	return nil
}

func (r memoryUsers) Delete(_ context.Context, id int) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.m.users, id)
	delete(r.m.byEmail, u.Email)
	delete(r.m.sessions, id)
	return nil
}

type memorySessions struct{ m *MemoryStore }

func (r memorySessions) Upsert(_ context.Context, s *model.Session) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[s.UserID]; !ok {
		return ErrNotFound
	}
	r.m.sessions[s.UserID] = *s
	return nil
}

func (r memorySessions) FindByUserID(_ context.Context, userID int) (*model.Session, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	s, ok := r.m.sessions[userID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}
