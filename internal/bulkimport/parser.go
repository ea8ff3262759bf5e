package bulkimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/talentbridge/sales-crm-platform/internal/leads"
)

// Row is one parsed candidate lead tagged with its 1-based source line
// (header row is line 1, so the first data row is line 2).
type Row struct {
	Line    int
	Request leads.CreateLeadRequest
}

// column identifies a known lead field a CSV header can map to.
type column int

const (
	colUnknown column = iota
	colCompanyName
	colCompanyInfo
	colCompanySize
	colWebsiteURL
	colCompanyEmail
	colHiringNeeds
	colLeadSource
	colIndustryName
	colLinkedInLink
	colNoOfDesignations
	colNoOfPositions
	colStage
	colContactName
	colContactEmail
	colContactPhone
	colContactDesignation
)

// mapHeader resolves a header cell to a field by normalized substring
// matching, so "Company Size", "company_size" and "COMPANY-SIZE (est.)" all
// land on the same column.
func mapHeader(header string) column {
	h := normalize(header)
	has := func(parts ...string) bool {
		for _, p := range parts {
			if !strings.Contains(h, p) {
				return false
			}
		}
		return true
	}
	switch {
	case has("contact", "name") || has("poc", "name"):
		return colContactName
	case has("contact", "email") || has("poc", "email"):
		return colContactEmail
	case has("contact", "phone") || has("poc", "phone") || has("phone"):
		return colContactPhone
	case has("contact", "designation") || has("poc", "designation"):
		return colContactDesignation
	case has("company", "size"):
		return colCompanySize
	case has("company", "info") || has("about"):
		return colCompanyInfo
	case has("company", "email") || has("email"):
		return colCompanyEmail
	case has("linkedin"):
		return colLinkedInLink
	case has("website") || has("url"):
		return colWebsiteURL
	case has("hiring"):
		return colHiringNeeds
	case has("source"):
		return colLeadSource
	case has("industry"):
		return colIndustryName
	case has("designation"):
		return colNoOfDesignations
	case has("position"):
		return colNoOfPositions
	case has("stage"):
		return colStage
	case has("company"):
		return colCompanyName
	}
	return colUnknown
}

func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Parse reads an RFC 4180 CSV stream into candidate rows. Quoted fields with
// embedded commas and newlines are handled by the csv reader; blank lines are
// skipped. Only a malformed stream (e.g. unterminated quote) is a parse error;
// per-row field problems are left to validation.
func Parse(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("bulkimport: empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("bulkimport: read header: %w", err)
	}

	cols := make([]column, len(header))
	known := 0
	for i, cell := range header {
		cols[i] = mapHeader(cell)
		if cols[i] != colUnknown {
			known++
		}
	}
	if known == 0 {
		return nil, fmt.Errorf("bulkimport: no recognizable columns in header")
	}

	var out []Row
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("bulkimport: line %d: %w", line, err)
		}
		if blank(record) {
			continue
		}
		out = append(out, Row{Line: line, Request: buildRequest(cols, record)})
	}
	return out, nil
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func buildRequest(cols []column, record []string) leads.CreateLeadRequest {
	var req leads.CreateLeadRequest
	var poc leads.PointOfContact

	for i, cell := range record {
		if i >= len(cols) {
			break
		}
		cell = strings.TrimSpace(cell)
		switch cols[i] {
		case colCompanyName:
			req.CompanyName = cell
		case colCompanyInfo:
			req.CompanyInfo = cell
		case colCompanySize:
			req.CompanySize = leads.CompanySize(cell)
		case colWebsiteURL:
			req.WebsiteURL = cell
		case colCompanyEmail:
			req.CompanyEmail = cell
		case colHiringNeeds:
			req.HiringNeeds = splitNeeds(cell)
		case colLeadSource:
			req.LeadSource = leads.LeadSource(cell)
		case colIndustryName:
			req.IndustryName = cell
		case colLinkedInLink:
			req.LinkedInLink = cell
		case colNoOfDesignations:
			req.NoOfDesignations, _ = strconv.Atoi(cell)
		case colNoOfPositions:
			req.NoOfPositions, _ = strconv.Atoi(cell)
		case colStage:
			req.Stage = leads.Stage(cell)
		case colContactName:
			poc.Name = cell
		case colContactEmail:
			poc.Email = cell
		case colContactPhone:
			poc.Phone = cell
		case colContactDesignation:
			poc.Designation = cell
		}
	}

	if poc != (leads.PointOfContact{}) {
		req.PointsOfContact = []leads.PointOfContact{poc}
	}
	return req
}

// splitNeeds accepts "IT;Leadership" and "IT|Leadership" style multi-values.
func splitNeeds(cell string) []leads.HiringNeed {
	if cell == "" {
		return nil
	}
	fields := strings.FieldsFunc(cell, func(r rune) bool { return r == ';' || r == '|' })
	out := make([]leads.HiringNeed, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, leads.HiringNeed(f))
		}
	}
	return out
}
