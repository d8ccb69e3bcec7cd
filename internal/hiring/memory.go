package hiring

import (
	"context"
	"sort"
	"sync"
)

// InMemory implements Store with in-process concurrency safety. Used by
// tests and local development; production runs on Postgres.
type InMemory struct {
	mu            sync.RWMutex
	candidates    map[string]*Candidate
	candEmails    map[string]string // email -> id
	organizations map[string]*Organization
	orgEmails     map[string]string
	jobs          map[string]*JobPosting
	applications  map[string]*Application
	pairs         map[string]string // candidateID|jobID -> application id
}

// NewInMemory creates an empty store.
func NewInMemory() *InMemory {
	return &InMemory{
		candidates:    make(map[string]*Candidate),
		candEmails:    make(map[string]string),
		organizations: make(map[string]*Organization),
		orgEmails:     make(map[string]string),
		jobs:          make(map[string]*JobPosting),
		applications:  make(map[string]*Application),
		pairs:         make(map[string]string),
	}
}

func (m *InMemory) Candidates(ctx context.Context) CandidateStore       { return (*memCandidates)(m) }
func (m *InMemory) Organizations(ctx context.Context) OrganizationStore { return (*memOrgs)(m) }
func (m *InMemory) Jobs(ctx context.Context) JobStore                   { return (*memJobs)(m) }
func (m *InMemory) Applications(ctx context.Context) ApplicationStore   { return (*memApps)(m) }

func pairKey(candidateID, jobID string) string { return candidateID + "|" + jobID }

// Candidate store -----------------------------------------------------------

type memCandidates InMemory

func (m *memCandidates) Create(ctx context.Context, c *Candidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.candEmails[c.Email]; taken {
		return ErrAlreadyExists
	}
	cp := *c
	m.candidates[c.ID] = &cp
	m.candEmails[c.Email] = c.ID
	return nil
}

func (m *memCandidates) Find(ctx context.Context, id string) (*Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.candidates[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCandidates) FindByEmail(ctx context.Context, email string) (*Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.candEmails[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m.candidates[id]
	return &cp, nil
}

func (m *memCandidates) AttachCV(ctx context.Context, id, path, contentType string) (*Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.candidates[id]
	if !ok {
		return nil, ErrNotFound
	}
	c.CVPath = path
	c.CVContentType = contentType
	c.IsVerified = true
	cp := *c
	return &cp, nil
}

// Organization store --------------------------------------------------------

type memOrgs InMemory

func (m *memOrgs) Create(ctx context.Context, o *Organization) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.orgEmails[o.Email]; taken {
		return ErrAlreadyExists
	}
	cp := *o
	m.organizations[o.ID] = &cp
	m.orgEmails[o.Email] = o.ID
	return nil
}

func (m *memOrgs) Find(ctx context.Context, id string) (*Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.organizations[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrgs) FindByEmail(ctx context.Context, email string) (*Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.orgEmails[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m.organizations[id]
	return &cp, nil
}

// Job store -----------------------------------------------------------------

type memJobs InMemory

func (m *memJobs) Create(ctx context.Context, j *JobPosting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *j
	m.jobs[j.ID] = &cp
	return nil
}

func (m *memJobs) Find(ctx context.Context, id string) (*JobPosting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *memJobs) ListOpen(ctx context.Context, limit, offset int) ([]*JobPosting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var all []*JobPosting
	for _, j := range m.jobs {
		if j.Status != JobStatusOpen {
			continue
		}
		cp := *j
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, k int) bool { return all[i].DatePosted.Before(all[k].DatePosted) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (m *memJobs) ListByOrganization(ctx context.Context, orgID string) ([]*JobWithApplications, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[string]int)
	for _, a := range m.applications {
		counts[a.JobID]++
	}
	var res []*JobWithApplications
	for _, j := range m.jobs {
		if j.OrganizationID != orgID {
			continue
		}
		res = append(res, &JobWithApplications{JobPosting: *j, ApplicationCount: counts[j.ID]})
	}
	sort.Slice(res, func(i, k int) bool { return res[i].DatePosted.Before(res[k].DatePosted) })
	return res, nil
}

// Application store ---------------------------------------------------------

type memApps InMemory

func (m *memApps) Create(ctx context.Context, a *Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pairKey(a.CandidateID, a.JobID)
	if _, taken := m.pairs[key]; taken {
		return ErrAlreadyApplied
	}
	cp := *a
	m.applications[a.ID] = &cp
	m.pairs[key] = a.ID
	return nil
}

func (m *memApps) Find(ctx context.Context, id string) (*Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.applications[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memApps) FindByCandidateAndJob(ctx context.Context, candidateID, jobID string) (*Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.pairs[pairKey(candidateID, jobID)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m.applications[id]
	return &cp, nil
}

func (m *memApps) UpdateStatus(ctx context.Context, id string, status ApplicationStatus) (*Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.applications[id]
	if !ok {
		return nil, ErrNotFound
	}
	a.Status = status
	cp := *a
	return &cp, nil
}
