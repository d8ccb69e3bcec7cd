package hiring

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"talentbase.org/internal/auth"
	"talentbase.org/internal/ids"
	"talentbase.org/internal/storage"
)

// Service provides the hiring-platform core: dual-actor registration and
// login, job postings, the application workflow and the CV ownership check.
type Service struct {
	store  Store
	tokens *auth.Tokens
	files  storage.Store
	now    func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the hiring service.
func NewService(store Store, tokens *auth.Tokens, files storage.Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:  store,
		tokens: tokens,
		files:  files,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CandidateRegistration carries candidate profile fields plus the plaintext
// password, which is hashed before anything touches the store.
type CandidateRegistration struct {
	Email         string
	Password      string
	FullName      string
	FirstName     string
	LastName      string
	Gender        string
	Phone         string
	Address       string
	Qualification string
	DateOfBirth   *time.Time
	Age           int
	DesiredJob    string
}

// OrganizationRegistration carries organization profile fields plus the
// plaintext password.
type OrganizationRegistration struct {
	Email       string
	Password    string
	Name        string
	Description string
	Address     string
	Phone       string
	Website     string
	Industry    string
}

// JobInput is the payload for creating a job posting.
type JobInput struct {
	Title        string
	Description  string
	Requirements string
	Department   string
	MinAge       int
	MaxAge       int
}

// RegisterCandidate validates input, hashes the password and creates the
// account. Duplicate emails surface as ErrAlreadyExists.
func (s *Service) RegisterCandidate(ctx context.Context, in CandidateRegistration) (*Candidate, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if in.Password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.FullName) == "" {
		return nil, fmt.Errorf("%w: full_name is required", ErrInvalidInput)
	}
	if in.Age < 0 {
		return nil, fmt.Errorf("%w: age must be >= 0", ErrInvalidInput)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	cand := &Candidate{
		ID:             ids.New(),
		Email:          email,
		PasswordHash:   hash,
		FullName:       strings.TrimSpace(in.FullName),
		FirstName:      strings.TrimSpace(in.FirstName),
		LastName:       strings.TrimSpace(in.LastName),
		Gender:         strings.TrimSpace(in.Gender),
		Phone:          strings.TrimSpace(in.Phone),
		Address:        strings.TrimSpace(in.Address),
		Qualification:  strings.TrimSpace(in.Qualification),
		DateOfBirth:    in.DateOfBirth,
		Age:            in.Age,
		DesiredJob:     strings.TrimSpace(in.DesiredJob),
		DateRegistered: s.now().UTC(),
	}
	if err := s.store.Candidates(ctx).Create(ctx, cand); err != nil {
		return nil, err
	}
	return cand, nil
}

// RegisterOrganization validates input, hashes the password and creates the
// account. Duplicate emails surface as ErrAlreadyExists.
func (s *Service) RegisterOrganization(ctx context.Context, in OrganizationRegistration) (*Organization, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if in.Password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	org := &Organization{
		ID:           ids.New(),
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(in.Name),
		Description:  strings.TrimSpace(in.Description),
		Address:      strings.TrimSpace(in.Address),
		Phone:        strings.TrimSpace(in.Phone),
		Website:      strings.TrimSpace(in.Website),
		Industry:     strings.TrimSpace(in.Industry),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.Organizations(ctx).Create(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

// LoginCandidate authenticates candidate credentials and issues a
// role-tagged token. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *Service) LoginCandidate(ctx context.Context, email, password string) (string, time.Time, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return "", time.Time{}, ErrInvalidCredentials
	}
	cand, err := s.store.Candidates(ctx).FindByEmail(ctx, email)
	if err != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}
	if !auth.VerifyPassword(cand.PasswordHash, password) {
		return "", time.Time{}, ErrInvalidCredentials
	}
	return s.tokens.Issue(cand.ID, auth.RoleCandidate)
}

// LoginOrganization authenticates organization credentials and issues a
// role-tagged token.
func (s *Service) LoginOrganization(ctx context.Context, email, password string) (string, time.Time, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return "", time.Time{}, ErrInvalidCredentials
	}
	org, err := s.store.Organizations(ctx).FindByEmail(ctx, email)
	if err != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}
	if !auth.VerifyPassword(org.PasswordHash, password) {
		return "", time.Time{}, ErrInvalidCredentials
	}
	return s.tokens.Issue(org.ID, auth.RoleOrganization)
}

// CreateJob creates a posting owned by the calling organization.
func (s *Service) CreateJob(ctx context.Context, org *Organization, in JobInput) (*JobPosting, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Requirements) == "" {
		return nil, fmt.Errorf("%w: requirements are required", ErrInvalidInput)
	}
	if in.MinAge < 0 || in.MaxAge < 0 || (in.MaxAge > 0 && in.MinAge > in.MaxAge) {
		return nil, fmt.Errorf("%w: invalid age bounds", ErrInvalidInput)
	}

	job := &JobPosting{
		ID:             ids.New(),
		OrganizationID: org.ID,
		Title:          strings.TrimSpace(in.Title),
		Description:    strings.TrimSpace(in.Description),
		Requirements:   strings.TrimSpace(in.Requirements),
		Department:     strings.TrimSpace(in.Department),
		Status:         JobStatusOpen,
		MinAge:         in.MinAge,
		MaxAge:         in.MaxAge,
		DatePosted:     s.now().UTC(),
	}
	if err := s.store.Jobs(ctx).Create(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// ListOpenJobs returns postings visible to authenticated candidates.
func (s *Service) ListOpenJobs(ctx context.Context, limit, offset int) ([]*JobPosting, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.Jobs(ctx).ListOpen(ctx, limit, offset)
}

// OrganizationJobs returns the calling organization's own postings with
// their application counts.
func (s *Service) OrganizationJobs(ctx context.Context, org *Organization) ([]*JobWithApplications, error) {
	return s.store.Jobs(ctx).ListByOrganization(ctx, org.ID)
}

// AttachCV stores the uploaded document and records the reference on the
// candidate's profile.
//
// Attaching a CV also flips is_verified in the same write. That conflates
// document storage with profile verification; it is kept for wire
// compatibility. TODO: move verification into an explicit review step.
func (s *Service) AttachCV(ctx context.Context, cand *Candidate, filename, contentType string, r io.Reader) (*Candidate, error) {
	base := filepath.Base(strings.TrimSpace(filename))
	if base == "" || base == "." {
		return nil, fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}
	name := fmt.Sprintf("user_%s_%s_%s", cand.ID, uuid.NewString(), base)
	path, err := s.files.Save(ctx, name, r)
	if err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return s.store.Candidates(ctx).AttachCV(ctx, cand.ID, path, contentType)
}

// Apply submits an application for the candidate. The job must exist; a
// second application for the same pair fails with ErrAlreadyApplied, with
// the store's uniqueness constraint as the backstop under concurrency.
func (s *Service) Apply(ctx context.Context, cand *Candidate, jobID string) (*Application, error) {
	if _, err := s.store.Jobs(ctx).Find(ctx, jobID); err != nil {
		return nil, err
	}
	if _, err := s.store.Applications(ctx).FindByCandidateAndJob(ctx, cand.ID, jobID); err == nil {
		return nil, ErrAlreadyApplied
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	app := &Application{
		ID:          ids.New(),
		CandidateID: cand.ID,
		JobID:       jobID,
		Status:      StatusPending,
		AppliedAt:   s.now().UTC(),
	}
	if err := s.store.Applications(ctx).Create(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// UpdateApplicationStatus performs the administrative pending -> accepted or
// pending -> rejected transition. A terminal status is never re-entered, and
// only the organization owning the job may transition its applications.
func (s *Service) UpdateApplicationStatus(ctx context.Context, org *Organization, applicationID string, status ApplicationStatus) (*Application, error) {
	if !status.Terminal() {
		return nil, fmt.Errorf("%w: status must be accepted or rejected", ErrInvalidInput)
	}
	app, err := s.store.Applications(ctx).Find(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	job, err := s.store.Jobs(ctx).Find(ctx, app.JobID)
	if err != nil {
		return nil, err
	}
	if job.OrganizationID != org.ID {
		return nil, ErrForbidden
	}
	if app.Status.Terminal() {
		return nil, ErrStatusFinal
	}
	return s.store.Applications(ctx).UpdateStatus(ctx, applicationID, status)
}

// AuthorizeCVAccess walks the ownership chain application -> job ->
// organization and only then touches the candidate's document reference.
// The order is load-bearing: checking the document before ownership would
// leak its existence across tenants.
func (s *Service) AuthorizeCVAccess(ctx context.Context, org *Organization, applicationID string) (CVFile, error) {
	app, err := s.store.Applications(ctx).Find(ctx, applicationID)
	if err != nil {
		return CVFile{}, err
	}
	job, err := s.store.Jobs(ctx).Find(ctx, app.JobID)
	if err != nil {
		return CVFile{}, err
	}
	if job.OrganizationID != org.ID {
		return CVFile{}, ErrForbidden
	}
	cand, err := s.store.Candidates(ctx).Find(ctx, app.CandidateID)
	if err != nil {
		return CVFile{}, ErrNoCV
	}
	if cand.CVPath == "" {
		return CVFile{}, ErrNoCV
	}
	return CVFile{
		Path:        cand.CVPath,
		ContentType: cand.CVContentType,
		CandidateID: cand.ID,
	}, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.TrimSpace(strings.ToLower(raw))
	if email == "" {
		return "", fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email address", ErrInvalidInput)
	}
	return email, nil
}
