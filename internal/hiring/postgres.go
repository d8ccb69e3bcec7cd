package hiring

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store using PostgreSQL. Email uniqueness and the one
// application per (candidate, job) pair invariant are enforced by unique
// constraints, so concurrent duplicate inserts lose cleanly.
type PGStore struct {
	db *sql.DB
}

// NewPGStore wraps an existing connection pool.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

// OpenPG connects to PostgreSQL with tuned pool defaults.
func OpenPG(dsn string) (*PGStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &PGStore{db: db}, nil
}

func (s *PGStore) Close() error { return s.db.Close() }

func (s *PGStore) DB() *sql.DB { return s.db }

func (s *PGStore) Candidates(ctx context.Context) CandidateStore {
	return &pgCandidates{db: s.db}
}
func (s *PGStore) Organizations(ctx context.Context) OrganizationStore {
	return &pgOrganizations{db: s.db}
}
func (s *PGStore) Jobs(ctx context.Context) JobStore { return &pgJobs{db: s.db} }
func (s *PGStore) Applications(ctx context.Context) ApplicationStore {
	return &pgApplications{db: s.db}
}

// uniqueViolation reports whether err is a violation of the named constraint.
// An empty name matches any unique violation.
func uniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return false
	}
	return constraint == "" || strings.Contains(pgErr.ConstraintName, constraint)
}

// Candidate store -----------------------------------------------------------

type pgCandidates struct{ db *sql.DB }

const candidateColumns = `id, email, password_hash, full_name, first_name, last_name, gender, phone,
	address, qualification, date_of_birth, age, desired_job, date_registered, is_verified,
	coalesce(cv_path, ''), coalesce(cv_content_type, '')`

func (s *pgCandidates) Create(ctx context.Context, c *Candidate) error {
	_, err := s.db.ExecContext(ctx,
		`insert into candidates(id, email, password_hash, full_name, first_name, last_name, gender,
			phone, address, qualification, date_of_birth, age, desired_job, date_registered, is_verified)
		 values($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		c.ID, c.Email, c.PasswordHash, c.FullName, c.FirstName, c.LastName, c.Gender,
		c.Phone, c.Address, c.Qualification, c.DateOfBirth, c.Age, c.DesiredJob,
		c.DateRegistered, c.IsVerified,
	)
	if uniqueViolation(err, "candidates_email") {
		return ErrAlreadyExists
	}
	return err
}

func (s *pgCandidates) Find(ctx context.Context, id string) (*Candidate, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+candidateColumns+` from candidates where id=$1`, id)
	return scanCandidate(row)
}

func (s *pgCandidates) FindByEmail(ctx context.Context, email string) (*Candidate, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+candidateColumns+` from candidates where email=$1`, email)
	return scanCandidate(row)
}

func (s *pgCandidates) AttachCV(ctx context.Context, id, path, contentType string) (*Candidate, error) {
	row := s.db.QueryRowContext(ctx,
		`update candidates set cv_path=$2, cv_content_type=$3, is_verified=true
		 where id=$1
		 returning `+candidateColumns, id, path, contentType)
	return scanCandidate(row)
}

func scanCandidate(row *sql.Row) (*Candidate, error) {
	var c Candidate
	err := row.Scan(&c.ID, &c.Email, &c.PasswordHash, &c.FullName, &c.FirstName, &c.LastName,
		&c.Gender, &c.Phone, &c.Address, &c.Qualification, &c.DateOfBirth, &c.Age,
		&c.DesiredJob, &c.DateRegistered, &c.IsVerified, &c.CVPath, &c.CVContentType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Organization store --------------------------------------------------------

type pgOrganizations struct{ db *sql.DB }

const organizationColumns = `id, email, password_hash, name, description, address, phone, website, industry, created_at`

func (s *pgOrganizations) Create(ctx context.Context, o *Organization) error {
	_, err := s.db.ExecContext(ctx,
		`insert into organizations(id, email, password_hash, name, description, address, phone, website, industry, created_at)
		 values($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		o.ID, o.Email, o.PasswordHash, o.Name, o.Description, o.Address, o.Phone, o.Website,
		o.Industry, o.CreatedAt,
	)
	if uniqueViolation(err, "organizations_email") {
		return ErrAlreadyExists
	}
	return err
}

func (s *pgOrganizations) Find(ctx context.Context, id string) (*Organization, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+organizationColumns+` from organizations where id=$1`, id)
	return scanOrganization(row)
}

func (s *pgOrganizations) FindByEmail(ctx context.Context, email string) (*Organization, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+organizationColumns+` from organizations where email=$1`, email)
	return scanOrganization(row)
}

func scanOrganization(row *sql.Row) (*Organization, error) {
	var o Organization
	err := row.Scan(&o.ID, &o.Email, &o.PasswordHash, &o.Name, &o.Description, &o.Address,
		&o.Phone, &o.Website, &o.Industry, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Job store -----------------------------------------------------------------

type pgJobs struct{ db *sql.DB }

const jobColumns = `id, organization_id, title, description, requirements, department, status, min_age, max_age, date_posted`

func (s *pgJobs) Create(ctx context.Context, j *JobPosting) error {
	_, err := s.db.ExecContext(ctx,
		`insert into job_postings(id, organization_id, title, description, requirements, department, status, min_age, max_age, date_posted)
		 values($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		j.ID, j.OrganizationID, j.Title, j.Description, j.Requirements, j.Department,
		j.Status, j.MinAge, j.MaxAge, j.DatePosted,
	)
	return err
}

func (s *pgJobs) Find(ctx context.Context, id string) (*JobPosting, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+jobColumns+` from job_postings where id=$1`, id)
	var j JobPosting
	err := row.Scan(&j.ID, &j.OrganizationID, &j.Title, &j.Description, &j.Requirements,
		&j.Department, &j.Status, &j.MinAge, &j.MaxAge, &j.DatePosted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (s *pgJobs) ListOpen(ctx context.Context, limit, offset int) ([]*JobPosting, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+jobColumns+` from job_postings where status=$1 order by date_posted asc limit $2 offset $3`,
		JobStatusOpen, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*JobPosting
	for rows.Next() {
		var j JobPosting
		if err := rows.Scan(&j.ID, &j.OrganizationID, &j.Title, &j.Description, &j.Requirements,
			&j.Department, &j.Status, &j.MinAge, &j.MaxAge, &j.DatePosted); err != nil {
			return nil, err
		}
		res = append(res, &j)
	}
	return res, rows.Err()
}

func (s *pgJobs) ListByOrganization(ctx context.Context, orgID string) ([]*JobWithApplications, error) {
	rows, err := s.db.QueryContext(ctx,
		`select j.id, j.organization_id, j.title, j.description, j.requirements, j.department,
			j.status, j.min_age, j.max_age, j.date_posted, count(a.id)
		 from job_postings j
		 left join applications a on a.job_id = j.id
		 where j.organization_id = $1
		 group by j.id, j.organization_id, j.title, j.description, j.requirements, j.department,
			j.status, j.min_age, j.max_age, j.date_posted
		 order by j.date_posted asc`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*JobWithApplications
	for rows.Next() {
		var j JobWithApplications
		if err := rows.Scan(&j.ID, &j.OrganizationID, &j.Title, &j.Description, &j.Requirements,
			&j.Department, &j.Status, &j.MinAge, &j.MaxAge, &j.DatePosted, &j.ApplicationCount); err != nil {
			return nil, err
		}
		res = append(res, &j)
	}
	return res, rows.Err()
}

// Application store ---------------------------------------------------------

type pgApplications struct{ db *sql.DB }

const applicationColumns = `id, candidate_id, job_id, status, applied_at`

func (s *pgApplications) Create(ctx context.Context, a *Application) error {
	_, err := s.db.ExecContext(ctx,
		`insert into applications(id, candidate_id, job_id, status, applied_at)
		 values($1,$2,$3,$4,$5)`,
		a.ID, a.CandidateID, a.JobID, a.Status, a.AppliedAt,
	)
	if uniqueViolation(err, "applications_candidate_id_job_id") {
		return ErrAlreadyApplied
	}
	return err
}

func (s *pgApplications) Find(ctx context.Context, id string) (*Application, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+applicationColumns+` from applications where id=$1`, id)
	return scanApplication(row)
}

func (s *pgApplications) FindByCandidateAndJob(ctx context.Context, candidateID, jobID string) (*Application, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+applicationColumns+` from applications where candidate_id=$1 and job_id=$2`,
		candidateID, jobID)
	return scanApplication(row)
}

func (s *pgApplications) UpdateStatus(ctx context.Context, id string, status ApplicationStatus) (*Application, error) {
	row := s.db.QueryRowContext(ctx,
		`update applications set status=$2 where id=$1 returning `+applicationColumns,
		id, status)
	return scanApplication(row)
}

func scanApplication(row *sql.Row) (*Application, error) {
	var a Application
	err := row.Scan(&a.ID, &a.CandidateID, &a.JobID, &a.Status, &a.AppliedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
