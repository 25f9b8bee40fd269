package tracker

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bfp-echague/firetrack/core/access"
	"github.com/bfp-echague/firetrack/core/csql"
	"github.com/bfp-echague/firetrack/core/rest"
)

// memStore is the in-memory Store used by the handler tests. It mirrors
// the contract of the postgres store: nil results for missing lookups
// and deletes, csql.ErrNoRows for updates of missing rows, name ordering
// for reference data and id ordering for incidents and users.
type memStore struct {
	mu         sync.Mutex
	nextID     int64
	barangays  map[int64]*Barangay
	categories map[int64]*Category
	causes     map[int64]*Cause
	incidents  map[int64]*Incident
	users      map[int64]*User
}

func newMemStore() *memStore {
	return &memStore{
		nextID:     1,
		barangays:  map[int64]*Barangay{},
		categories: map[int64]*Category{},
		causes:     map[int64]*Cause{},
		incidents:  map[int64]*Incident{},
		users:      map[int64]*User{},
	}
}

func (s *memStore) id() int64 {
	id := s.nextID
	s.nextID++
	return id
}

func matches(name, search string) bool {
	return search == "" || strings.Contains(strings.ToLower(name), strings.ToLower(search))
}

func (s *memStore) Barangay(ctx context.Context, id int64) (*Barangay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.barangays[id]; ok {
		clone := *b
		return &clone, nil
	}
	return nil, nil
}

func (s *memStore) Barangays(ctx context.Context, search string) ([]Barangay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := []Barangay{}
	for _, b := range s.barangays {
		if matches(b.Name, search) {
			result = append(result, *b)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (s *memStore) CountBarangays(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.barangays), nil
}

func (s *memStore) CreateBarangay(ctx context.Context, input BarangayInput) (*Barangay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	b := &Barangay{ID: s.id(), Name: input.Name, CreatedAt: now, UpdatedAt: now}
	s.barangays[b.ID] = b
	clone := *b
	return &clone, nil
}

func (s *memStore) CreateBarangays(ctx context.Context, inputs []BarangayInput) ([]Barangay, error) {
	result := make([]Barangay, 0, len(inputs))
	for _, input := range inputs {
		b, err := s.CreateBarangay(ctx, input)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}
	return result, nil
}

func (s *memStore) UpdateBarangay(ctx context.Context, id int64, patch BarangayPatch) (*Barangay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.barangays[id]
	if !ok {
		return nil, csql.ErrNoRows
	}
	if patch.Name != nil {
		b.Name = *patch.Name
	}
	b.UpdatedAt = time.Now()
	clone := *b
	return &clone, nil
}

func (s *memStore) DeleteBarangay(ctx context.Context, id int64) (*Barangay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.barangays[id]
	if !ok {
		return nil, nil
	}
	delete(s.barangays, id)
	return b, nil
}

func (s *memStore) Category(ctx context.Context, id int64) (*Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.categories[id]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, nil
}

func (s *memStore) Categories(ctx context.Context, search string) ([]Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := []Category{}
	for _, c := range s.categories {
		if matches(c.Name, search) {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (s *memStore) CountCategories(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.categories), nil
}

func (s *memStore) CreateCategory(ctx context.Context, input CategoryInput) (*Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	c := &Category{ID: s.id(), Name: input.Name, Severity: input.Severity, CreatedAt: now, UpdatedAt: now}
	s.categories[c.ID] = c
	clone := *c
	return &clone, nil
}

func (s *memStore) UpdateCategory(ctx context.Context, id int64, patch CategoryPatch) (*Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, csql.ErrNoRows
	}
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Severity != nil {
		c.Severity = *patch.Severity
	}
	c.UpdatedAt = time.Now()
	clone := *c
	return &clone, nil
}

func (s *memStore) DeleteCategory(ctx context.Context, id int64) (*Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, nil
	}
	delete(s.categories, id)
	return c, nil
}

func (s *memStore) Cause(ctx context.Context, id int64) (*Cause, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.causes[id]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, nil
}

func (s *memStore) Causes(ctx context.Context, search string) ([]Cause, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := []Cause{}
	for _, c := range s.causes {
		if matches(c.Name, search) {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (s *memStore) CreateCause(ctx context.Context, input CauseInput) (*Cause, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	c := &Cause{ID: s.id(), Name: input.Name, CreatedAt: now, UpdatedAt: now}
	s.causes[c.ID] = c
	clone := *c
	return &clone, nil
}

func (s *memStore) UpdateCause(ctx context.Context, id int64, patch CausePatch) (*Cause, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.causes[id]
	if !ok {
		return nil, csql.ErrNoRows
	}
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	c.UpdatedAt = time.Now()
	clone := *c
	return &clone, nil
}

func (s *memStore) DeleteCause(ctx context.Context, id int64) (*Cause, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.causes[id]
	if !ok {
		return nil, nil
	}
	delete(s.causes, id)
	return c, nil
}

func (s *memStore) Incident(ctx context.Context, id int64) (*Incident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.incidents[id]; ok {
		clone := *i
		return &clone, nil
	}
	return nil, nil
}

func (s *memStore) sortedIncidents() []Incident {
	result := make([]Incident, 0, len(s.incidents))
	for _, i := range s.incidents {
		result = append(result, *i)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (s *memStore) Incidents(ctx context.Context, filter IncidentFilter, options rest.FindManyOptions) ([]Incident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := []Incident{}
	for _, i := range s.sortedIncidents() {
		if !matches(i.Name, filter.Search) {
			continue
		}
		if i.Archived && !filter.IncludeArchived {
			continue
		}
		filtered = append(filtered, i)
	}

	start := 0
	if options.CursorID != nil {
		for idx, i := range filtered {
			if i.ID == *options.CursorID {
				start = idx + options.Skip
				break
			}
		}
	}
	if start >= len(filtered) {
		return []Incident{}, nil
	}
	end := start + options.Take
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], nil
}

func (s *memStore) AllIncidents(ctx context.Context) ([]Incident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedIncidents(), nil
}

func (s *memStore) CreateIncident(ctx context.Context, input IncidentInput) (*Incident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	i := &Incident{
		ID:                 s.id(),
		Name:               input.Name,
		Location:           input.Location,
		BarangayID:         input.BarangayID,
		Causes:             input.Causes,
		StructuresInvolved: input.StructuresInvolved,
		CategoryID:         input.CategoryID,
		ReportTime:         input.ReportTime,
		ResponseTime:       input.ResponseTime,
		FireOutTime:        input.FireOutTime,
		Notes:              input.Notes,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if input.Archived != nil {
		i.Archived = *input.Archived
	}
	s.incidents[i.ID] = i
	clone := *i
	return &clone, nil
}

func (s *memStore) UpdateIncident(ctx context.Context, id int64, patch IncidentPatch) (*Incident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.incidents[id]
	if !ok {
		return nil, csql.ErrNoRows
	}
	if patch.Name != nil {
		i.Name = *patch.Name
	}
	if patch.Location != nil {
		if patch.Location.Latitude != nil {
			i.Location.Latitude = *patch.Location.Latitude
		}
		if patch.Location.Longitude != nil {
			i.Location.Longitude = *patch.Location.Longitude
		}
	}
	if patch.BarangayID != nil {
		i.BarangayID = *patch.BarangayID
	}
	if patch.Causes != nil {
		i.Causes = patch.Causes
	}
	if patch.StructuresInvolved != nil {
		i.StructuresInvolved = patch.StructuresInvolved
	}
	if patch.CategoryID != nil {
		i.CategoryID = *patch.CategoryID
	}
	if patch.ReportTime != nil {
		i.ReportTime = patch.ReportTime
	}
	if patch.ResponseTime != nil {
		i.ResponseTime = patch.ResponseTime
	}
	if patch.FireOutTime != nil {
		i.FireOutTime = patch.FireOutTime
	}
	if patch.Notes != nil {
		i.Notes = patch.Notes
	}
	if patch.Archived != nil {
		i.Archived = *patch.Archived
	}
	i.UpdatedAt = time.Now()
	clone := *i
	return &clone, nil
}

func (s *memStore) User(ctx context.Context, id int64) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, nil
}

func (s *memStore) Users(ctx context.Context, search string) ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := []User{}
	for _, u := range s.users {
		if matches(u.Username, search) {
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *memStore) UserByUsername(ctx context.Context, username string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *memStore) CountAdmins(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, u := range s.users {
		if u.Privilege == access.PrivilegeAdmin {
			count++
		}
	}
	return count, nil
}

func (s *memStore) CreateUser(ctx context.Context, input UserInput, passwordHash string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	u := &User{
		ID:           s.id(),
		Username:     input.Username,
		Email:        input.Email,
		Privilege:    input.Privilege,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users[u.ID] = u
	clone := *u
	return &clone, nil
}

func (s *memStore) UpdateUser(ctx context.Context, id int64, patch UserPatch, passwordHash string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, csql.ErrNoRows
	}
	if patch.Username != nil {
		u.Username = *patch.Username
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.Password != nil {
		u.PasswordHash = passwordHash
	}
	if patch.Privilege != nil {
		u.Privilege = *patch.Privilege
	}
	u.UpdatedAt = time.Now()
	clone := *u
	return &clone, nil
}

func (s *memStore) DeleteUser(ctx context.Context, id int64) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	delete(s.users, id)
	return u, nil
}
