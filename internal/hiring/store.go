package hiring

import "context"

// Store describes persistence operations required by the hiring core. Each
// write is one atomic unit: a failed request leaves no partial rows behind.
type Store interface {
	Candidates(ctx context.Context) CandidateStore
	Organizations(ctx context.Context) OrganizationStore
	Jobs(ctx context.Context) JobStore
	Applications(ctx context.Context) ApplicationStore
}

// CandidateStore manages candidate accounts.
type CandidateStore interface {
	// Create fails with ErrAlreadyExists when the email is taken; the email
	// uniqueness guarantee lives in the store, not in the caller's pre-check.
	Create(ctx context.Context, c *Candidate) error
	Find(ctx context.Context, id string) (*Candidate, error)
	FindByEmail(ctx context.Context, email string) (*Candidate, error)
	// AttachCV records the stored document reference and marks the profile
	// verified in the same write.
	AttachCV(ctx context.Context, id, path, contentType string) (*Candidate, error)
}

// OrganizationStore manages organization accounts.
type OrganizationStore interface {
	Create(ctx context.Context, o *Organization) error
	Find(ctx context.Context, id string) (*Organization, error)
	FindByEmail(ctx context.Context, email string) (*Organization, error)
}

// JobStore manages job postings.
type JobStore interface {
	Create(ctx context.Context, j *JobPosting) error
	Find(ctx context.Context, id string) (*JobPosting, error)
	ListOpen(ctx context.Context, limit, offset int) ([]*JobPosting, error)
	ListByOrganization(ctx context.Context, orgID string) ([]*JobWithApplications, error)
}

// ApplicationStore manages applications.
type ApplicationStore interface {
	// Create fails with ErrAlreadyApplied when an application for the same
	// (candidate, job) pair exists. The store enforces this uniquely even
	// under concurrent inserts; the service's read-then-write check is an
	// early exit, not the correctness guarantee.
	Create(ctx context.Context, a *Application) error
	Find(ctx context.Context, id string) (*Application, error)
	FindByCandidateAndJob(ctx context.Context, candidateID, jobID string) (*Application, error)
	UpdateStatus(ctx context.Context, id string, status ApplicationStatus) (*Application, error)
}
