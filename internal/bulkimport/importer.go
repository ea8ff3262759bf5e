package bulkimport

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/talentbridge/sales-crm-platform/internal/faults"
	"github.com/talentbridge/sales-crm-platform/internal/leads"
	"github.com/talentbridge/sales-crm-platform/internal/observability/metrics"
	"github.com/talentbridge/sales-crm-platform/internal/users"
	"github.com/talentbridge/sales-crm-platform/pkg/logging"
)

// Options steer one import run. With an empty AssigneeID the surviving rows
// are distributed round-robin across active BD Executives.
type Options struct {
	AssigneeID string `json:"assignee_id,omitempty"`
}

// Summary is the outcome of an import run. Errors carry the 1-based source
// line of each skipped row.
type Summary struct {
	TotalRows int               `json:"total_rows"`
	Inserted  int               `json:"inserted"`
	Skipped   int               `json:"skipped"`
	Errors    []faults.RowError `json:"errors,omitempty"`
}

func (s *Summary) skip(line int, reason string) {
	s.Skipped++
	s.Errors = append(s.Errors, faults.RowError{Line: line, Reason: reason})
}

// Importer turns CSV uploads into leads. Each row is validated and inserted
// independently; one bad row never blocks the rest.
type Importer struct {
	leads   *leads.Service
	repo    leads.Repository
	users   users.Repository
	metrics *metrics.CRMMetrics
	logger  *logging.Logger
}

func NewImporter(leadSvc *leads.Service, repo leads.Repository, userRepo users.Repository,
	m *metrics.CRMMetrics, logger *logging.Logger) *Importer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Importer{leads: leadSvc, repo: repo, users: userRepo, metrics: m, logger: logger}
}

// Run parses, validates, deduplicates and inserts. A parse failure of the
// stream itself is the only way the whole run fails.
func (im *Importer) Run(ctx context.Context, r io.Reader, opts Options, actorID string) (*Summary, error) {
	started := time.Now()

	rows, err := Parse(r)
	if err != nil {
		return nil, faults.Invalid("file", err.Error())
	}

	assign, err := im.assigner(ctx, opts)
	if err != nil {
		return nil, err
	}

	sum := &Summary{TotalRows: len(rows)}
	seen := make(map[string]bool)
	for _, row := range rows {
		req := row.Request

		if err := req.Validate(); err != nil {
			sum.skip(row.Line, validationReason(err))
			im.metrics.ObserveImportRow("invalid")
			continue
		}

		email := strings.ToLower(strings.TrimSpace(req.CompanyEmail))
		if seen[email] {
			sum.skip(row.Line, "duplicate company email within file")
			im.metrics.ObserveImportRow("duplicate")
			continue
		}
		exists, err := im.repo.ExistsByEmail(ctx, req.CompanyEmail)
		if err != nil {
			sum.skip(row.Line, "duplicate check failed: "+err.Error())
			im.metrics.ObserveImportRow("error")
			continue
		}
		if exists {
			sum.skip(row.Line, "company email already exists")
			im.metrics.ObserveImportRow("duplicate")
			continue
		}

		req.AssignedTo = assign()
		if _, err := im.leads.Create(ctx, &req, actorID); err != nil {
			sum.skip(row.Line, err.Error())
			im.metrics.ObserveImportRow("error")
			continue
		}
		seen[email] = true
		sum.Inserted++
		im.metrics.ObserveImportRow("inserted")
	}

	im.metrics.ObserveImportDuration(time.Since(started).Seconds())
	im.logger.Info("bulk import finished", "total", sum.TotalRows, "inserted", sum.Inserted,
		"skipped", sum.Skipped, "actor", actorID)
	return sum, nil
}

// assigner returns the next assignee id per inserted row: the fixed assignee
// in manual mode, round-robin over active BD Executives otherwise. With no
// executives available, leads import unassigned.
func (im *Importer) assigner(ctx context.Context, opts Options) (func() string, error) {
	if opts.AssigneeID != "" {
		if _, err := im.users.GetByID(ctx, opts.AssigneeID); err != nil {
			return nil, faults.Invalid("assignee_id", "unknown user")
		}
		return func() string { return opts.AssigneeID }, nil
	}

	executives, err := im.users.ListActiveByRole(ctx, users.RoleBDExecutive)
	if err != nil {
		return nil, faults.Infra("bulkimport: list executives", err)
	}
	if len(executives) == 0 {
		return func() string { return "" }, nil
	}
	i := 0
	return func() string {
		id := executives[i%len(executives)].ID
		i++
		return id
	}, nil
}

// validationReason flattens a field-error list into one skip reason.
func validationReason(err error) string {
	var v *faults.ValidationError
	if !errors.As(err, &v) {
		return err.Error()
	}
	parts := make([]string, len(v.Fields))
	for i, fe := range v.Fields {
		parts[i] = fe.Field + " " + fe.Message
	}
	return strings.Join(parts, "; ")
}
