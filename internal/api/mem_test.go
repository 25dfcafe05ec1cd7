package api_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brightwave/profiler/internal/catalog"
	"github.com/brightwave/profiler/internal/group"
	"github.com/brightwave/profiler/internal/profile"
	"github.com/brightwave/profiler/internal/settings"
	"github.com/brightwave/profiler/internal/staff"
)

// In-memory repository implementations backing the router tests.

type memStaffRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*staff.Account
}

func newMemStaffRepo() *memStaffRepo {
	return &memStaffRepo{accounts: make(map[uuid.UUID]*staff.Account)}
}

func (m *memStaffRepo) Create(_ context.Context, a *staff.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.accounts {
		if existing.Email == a.Email {
			return staff.ErrDuplicateEmail
		}
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	m.accounts[a.ID] = &cp
	return nil
}

func (m *memStaffRepo) GetByID(_ context.Context, id uuid.UUID) (*staff.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, staff.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memStaffRepo) GetByEmail(_ context.Context, email string) (*staff.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, staff.ErrAccountNotFound
}

func (m *memStaffRepo) List(_ context.Context) ([]staff.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]staff.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (m *memStaffRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string, mustChange bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return staff.ErrAccountNotFound
	}
	a.PasswordHash = hash
	a.ChangePasswordOnLogin = mustChange
	a.UpdatedAt = time.Now()
	return nil
}

func (m *memStaffRepo) CountAll(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.accounts), nil
}

type memProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*profile.Profile
	answers  map[string][]*profile.Answer
}

func newMemProfileRepo() *memProfileRepo {
	return &memProfileRepo{
		profiles: make(map[string]*profile.Profile),
		answers:  make(map[string][]*profile.Answer),
	}
}

func (m *memProfileRepo) Create(_ context.Context, p *profile.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.profiles[p.ID] = &cp
	return nil
}

func (m *memProfileRepo) GetByIDAndStatus(_ context.Context, id, status string) (*profile.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok || p.Status != status {
		return nil, profile.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProfileRepo) UpdateName(_ context.Context, id, status, name string) (*profile.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok || p.Status != status {
		return nil, profile.ErrProfileNotFound
	}
	p.Name = name
	cp := *p
	return &cp, nil
}

func (m *memProfileRepo) Complete(_ context.Context, id string) (*profile.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok || p.Status != profile.StatusIncomplete {
		return nil, profile.ErrProfileNotFound
	}
	p.Status = profile.StatusComplete
	cp := *p
	return &cp, nil
}

func (m *memProfileRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[id]; !ok {
		return profile.ErrProfileNotFound
	}
	delete(m.profiles, id)
	delete(m.answers, id)
	return nil
}

func (m *memProfileRepo) ListCompleteByGroup(_ context.Context, groupName string) ([]profile.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []profile.Profile{}
	for _, p := range m.profiles {
		if p.GroupName == groupName && p.Status == profile.StatusComplete {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memProfileRepo) UpsertAnswer(_ context.Context, a *profile.Answer) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.answers[a.ProfileID] {
		if existing.Question == a.Question {
			existing.Score = a.Score
			a.ID = existing.ID
			a.Domain = existing.Domain
			return false, nil
		}
	}
	cp := *a
	m.answers[a.ProfileID] = append(m.answers[a.ProfileID], &cp)
	return true, nil
}

func (m *memProfileRepo) ListAnswers(_ context.Context, profileID string) ([]profile.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []profile.Answer{}
	for _, a := range m.answers[profileID] {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Question < out[j].Question })
	return out, nil
}

type memGroupRepo struct {
	mu       sync.Mutex
	groups   map[string]*group.Group
	profiles *memProfileRepo
}

func newMemGroupRepo(profiles *memProfileRepo) *memGroupRepo {
	return &memGroupRepo{
		groups:   make(map[string]*group.Group),
		profiles: profiles,
	}
}

func (m *memGroupRepo) Create(_ context.Context, g *group.Group) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.groups[g.Name]; ok {
		return group.ErrDuplicateGroupName
	}
	g.Token = uuid.New().String()
	cp := *g
	m.groups[g.Name] = &cp
	return nil
}

func (m *memGroupRepo) GetByName(_ context.Context, name string) (*group.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[name]
	if !ok {
		return nil, group.ErrGroupNotFound
	}
	cp := *g
	return &cp, nil
}

func (m *memGroupRepo) GetByToken(_ context.Context, token string) (*group.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.groups {
		if g.Token == token {
			cp := *g
			return &cp, nil
		}
	}
	return nil, group.ErrGroupNotFound
}

func (m *memGroupRepo) List(ctx context.Context, includeArchived bool) ([]group.WithCount, error) {
	m.mu.Lock()
	names := make([]string, 0, len(m.groups))
	for name, g := range m.groups {
		if g.Archived && !includeArchived {
			continue
		}
		names = append(names, name)
	}
	m.mu.Unlock()
	sort.Strings(names)

	out := make([]group.WithCount, 0, len(names))
	for _, name := range names {
		g, err := m.GetByName(ctx, name)
		if err != nil {
			return nil, err
		}
		complete, err := m.profiles.ListCompleteByGroup(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, group.WithCount{Group: *g, ProfileCount: len(complete)})
	}
	return out, nil
}

func (m *memGroupRepo) Update(_ context.Context, name string, upd group.Update) (*group.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[name]
	if !ok {
		return nil, group.ErrGroupNotFound
	}
	if upd.Name != nil && *upd.Name != name {
		if _, exists := m.groups[*upd.Name]; exists {
			return nil, group.ErrDuplicateGroupName
		}
		m.profiles.mu.Lock()
		for _, p := range m.profiles.profiles {
			if p.GroupName == name {
				p.GroupName = *upd.Name
			}
		}
		m.profiles.mu.Unlock()
		delete(m.groups, name)
		g.Name = *upd.Name
		m.groups[g.Name] = g
	}
	if upd.DisplayAs != nil {
		g.DisplayAs = *upd.DisplayAs
	}
	if upd.Archived != nil {
		g.Archived = *upd.Archived
	}
	if upd.Emoji != nil {
		g.Emoji = *upd.Emoji
	}
	cp := *g
	return &cp, nil
}

func (m *memGroupRepo) RegenerateToken(_ context.Context, name string) (*group.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[name]
	if !ok {
		return nil, group.ErrGroupNotFound
	}
	g.Token = uuid.New().String()
	cp := *g
	return &cp, nil
}

func (m *memGroupRepo) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.groups[name]; !ok {
		return group.ErrGroupNotFound
	}
	delete(m.groups, name)
	return nil
}

func (m *memGroupRepo) MarkHasProfiles(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[name]
	if !ok {
		return group.ErrGroupNotFound
	}
	g.HasProfiles = true
	return nil
}

type memTypeRepo struct {
	mu    sync.Mutex
	types map[string]catalog.ProfilerType
}

func newMemTypeRepo() *memTypeRepo {
	return &memTypeRepo{types: make(map[string]catalog.ProfilerType)}
}

func (m *memTypeRepo) Upsert(_ context.Context, pt *catalog.ProfilerType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.types[pt.Name] = *pt
	return nil
}

func (m *memTypeRepo) GetByName(_ context.Context, name string) (*catalog.ProfilerType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pt, ok := m.types[name]
	if !ok {
		return nil, catalog.ErrProfilerTypeNotFound
	}
	return &pt, nil
}

func (m *memTypeRepo) List(_ context.Context) ([]catalog.ProfilerType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]catalog.ProfilerType, 0, len(m.types))
	for _, pt := range m.types {
		out = append(out, pt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memSettingsRepo struct {
	mu       sync.Mutex
	settings map[string]settings.Setting
}

func newMemSettingsRepo() *memSettingsRepo {
	return &memSettingsRepo{settings: make(map[string]settings.Setting)}
}

func (m *memSettingsRepo) Upsert(_ context.Context, s *settings.Setting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[s.Key] = *s
	return nil
}

func (m *memSettingsRepo) Get(_ context.Context, key string) (*settings.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.settings[key]
	if !ok {
		return nil, settings.ErrSettingNotFound
	}
	return &s, nil
}
