package hiring

import "time"

// Candidate is a job-seeker account. The password hash never leaves the
// service: it is excluded from every serialized representation.
type Candidate struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"-"`
	FullName       string     `json:"full_name"`
	FirstName      string     `json:"first_name,omitempty"`
	LastName       string     `json:"last_name,omitempty"`
	Gender         string     `json:"gender,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	Address        string     `json:"address,omitempty"`
	Qualification  string     `json:"qualification,omitempty"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	Age            int        `json:"age,omitempty"`
	DesiredJob     string     `json:"desired_job,omitempty"`
	DateRegistered time.Time  `json:"date_registered"`
	IsVerified     bool       `json:"is_verified"`
	CVPath         string     `json:"cv_path,omitempty"`
	CVContentType  string     `json:"-"`
}

// Organization is an employer account that owns job postings.
type Organization struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Address      string    `json:"address,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Website      string    `json:"website,omitempty"`
	Industry     string    `json:"industry,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// JobStatusOpen is the default status for new postings.
const JobStatusOpen = "Open"

// JobPosting is owned by exactly one organization.
type JobPosting struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Requirements   string    `json:"requirements"`
	Department     string    `json:"department,omitempty"`
	Status         string    `json:"status"`
	MinAge         int       `json:"min_age,omitempty"`
	MaxAge         int       `json:"max_age,omitempty"`
	DatePosted     time.Time `json:"date_posted"`
}

// JobWithApplications is a posting annotated with its application count,
// used by the owning organization's job listing.
type JobWithApplications struct {
	JobPosting
	ApplicationCount int `json:"application_count"`
}

// ApplicationStatus is the closed state set of an application.
type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "pending"
	StatusAccepted ApplicationStatus = "accepted"
	StatusRejected ApplicationStatus = "rejected"
)

// Terminal reports whether the status admits no further transitions.
func (s ApplicationStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// ParseApplicationStatus maps a wire string onto the closed status set.
func ParseApplicationStatus(raw string) (ApplicationStatus, bool) {
	switch ApplicationStatus(raw) {
	case StatusPending, StatusAccepted, StatusRejected:
		return ApplicationStatus(raw), true
	default:
		return "", false
	}
}

// Application links one candidate to one job posting. At most one application
// may exist per (candidate, job) pair.
type Application struct {
	ID          string            `json:"id"`
	CandidateID string            `json:"candidate_id"`
	JobID       string            `json:"job_id"`
	Status      ApplicationStatus `json:"status"`
	AppliedAt   time.Time         `json:"applied_at"`
}

// CVFile is the authorized handle the file-storage collaborator retrieves by.
type CVFile struct {
	Path        string
	ContentType string
	CandidateID string
}
