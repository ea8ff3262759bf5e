package leads

import (
	"strings"

	"github.com/talentbridge/sales-crm-platform/internal/faults"
	"github.com/talentbridge/sales-crm-platform/internal/validation"
)

// CreateLeadRequest carries the fields of the lead creation form.
type CreateLeadRequest struct {
	CompanyName      string           `json:"company_name"`
	CompanyInfo      string           `json:"company_info"`
	CompanySize      CompanySize      `json:"company_size"`
	WebsiteURL       string           `json:"website_url"`
	CompanyEmail     string           `json:"company_email"`
	HiringNeeds      []HiringNeed     `json:"hiring_needs"`
	LeadSource       LeadSource       `json:"lead_source"`
	IndustryName     string           `json:"industry_name"`
	LinkedInLink     string           `json:"linkedin_link"`
	NoOfDesignations int              `json:"no_of_designations"`
	NoOfPositions    int              `json:"no_of_positions"`
	Stage            Stage            `json:"stage"`
	AssignedTo       string           `json:"assigned_to"`
	PointsOfContact  []PointOfContact `json:"points_of_contact"`
}

// Validate applies the creation-time field rules. All violations are
// collected so the form can show every problem at once.
func (r *CreateLeadRequest) Validate() error {
	var v faults.ValidationError

	if strings.TrimSpace(r.CompanyName) == "" {
		v.Add("company_name", "is required")
	}
	if !validation.ValidWebsite(r.WebsiteURL) {
		v.Add("website_url", "must start with http:// or https://")
	}
	if !validation.ValidEmail(r.CompanyEmail) {
		v.Add("company_email", "must be a valid email address")
	}
	if strings.TrimSpace(r.IndustryName) == "" {
		v.Add("industry_name", "is required")
	}
	if r.NoOfDesignations < 1 {
		v.Add("no_of_designations", "must be at least 1")
	}
	if !r.CompanySize.Valid() {
		v.Add("company_size", "is not a known company size")
	}
	if !r.LeadSource.Valid() {
		v.Add("lead_source", "is not a known lead source")
	}
	for _, need := range r.HiringNeeds {
		if !need.Valid() {
			v.Add("hiring_needs", "contains unknown value "+string(need))
		}
	}
	if r.LinkedInLink != "" && !validation.ValidLinkedIn(r.LinkedInLink) {
		v.Add("linkedin_link", "must be a linkedin.com URL")
	}
	if r.Stage != "" && !r.Stage.Valid() {
		v.Add("stage", "is not a known stage")
	}

	// A lead needs at least one reachable contact at creation time.
	usable := false
	for _, poc := range r.PointsOfContact {
		if !poc.Stage.Valid() {
			v.Add("points_of_contact", "contact stage is not a known value")
		}
		if poc.Phone != "" && !validation.ValidPhone(poc.Phone) {
			v.Add("points_of_contact", "contact phone must contain 8 to 15 digits")
		}
		if strings.TrimSpace(poc.Name) != "" && validation.ValidEmail(poc.Email) {
			usable = true
		}
	}
	if !usable {
		v.Add("points_of_contact", "at least one contact with a name and a valid email is required")
	}

	return v.OrNil()
}

// UpdateLeadRequest is a partial merge: nil fields are left untouched.
type UpdateLeadRequest struct {
	CompanyName      *string       `json:"company_name,omitempty"`
	CompanyInfo      *string       `json:"company_info,omitempty"`
	CompanySize      *CompanySize  `json:"company_size,omitempty"`
	WebsiteURL       *string       `json:"website_url,omitempty"`
	CompanyEmail     *string       `json:"company_email,omitempty"`
	HiringNeeds      *[]HiringNeed `json:"hiring_needs,omitempty"`
	LeadSource       *LeadSource   `json:"lead_source,omitempty"`
	IndustryName     *string       `json:"industry_name,omitempty"`
	LinkedInLink     *string       `json:"linkedin_link,omitempty"`
	NoOfDesignations *int          `json:"no_of_designations,omitempty"`
	NoOfPositions    *int          `json:"no_of_positions,omitempty"`
	Stage            *Stage        `json:"stage,omitempty"`
	AssignedTo       *string       `json:"assigned_to,omitempty"`
	Locked           *bool         `json:"locked,omitempty"`
}

// Validate applies shape rules to the fields that are present.
func (r *UpdateLeadRequest) Validate() error {
	var v faults.ValidationError

	if r.CompanyName != nil && strings.TrimSpace(*r.CompanyName) == "" {
		v.Add("company_name", "cannot be emptied")
	}
	if r.WebsiteURL != nil && !validation.ValidWebsite(*r.WebsiteURL) {
		v.Add("website_url", "must start with http:// or https://")
	}
	if r.CompanyEmail != nil && !validation.ValidEmail(*r.CompanyEmail) {
		v.Add("company_email", "must be a valid email address")
	}
	if r.IndustryName != nil && strings.TrimSpace(*r.IndustryName) == "" {
		v.Add("industry_name", "cannot be emptied")
	}
	if r.CompanySize != nil && !r.CompanySize.Valid() {
		v.Add("company_size", "is not a known company size")
	}
	if r.LeadSource != nil && !r.LeadSource.Valid() {
		v.Add("lead_source", "is not a known lead source")
	}
	if r.HiringNeeds != nil {
		for _, need := range *r.HiringNeeds {
			if !need.Valid() {
				v.Add("hiring_needs", "contains unknown value "+string(need))
			}
		}
	}
	if r.LinkedInLink != nil && *r.LinkedInLink != "" && !validation.ValidLinkedIn(*r.LinkedInLink) {
		v.Add("linkedin_link", "must be a linkedin.com URL")
	}
	if r.NoOfDesignations != nil && *r.NoOfDesignations < 1 {
		v.Add("no_of_designations", "must be at least 1")
	}
	if r.Stage != nil && !r.Stage.Valid() {
		v.Add("stage", "is not a known stage")
	}

	return v.OrNil()
}

// apply merges the request into the lead and returns a snapshot of the
// changed fields for the audit trail. The contact collection never appears
// in the snapshot; it would bloat the log.
func (r *UpdateLeadRequest) apply(l *Lead) map[string]any {
	diff := make(map[string]any)

	if r.CompanyName != nil && *r.CompanyName != l.CompanyName {
		l.CompanyName = *r.CompanyName
		diff["company_name"] = l.CompanyName
	}
	if r.CompanyInfo != nil && *r.CompanyInfo != l.CompanyInfo {
		l.CompanyInfo = *r.CompanyInfo
		diff["company_info"] = l.CompanyInfo
	}
	if r.CompanySize != nil && *r.CompanySize != l.CompanySize {
		l.CompanySize = *r.CompanySize
		diff["company_size"] = l.CompanySize
	}
	if r.WebsiteURL != nil && *r.WebsiteURL != l.WebsiteURL {
		l.WebsiteURL = *r.WebsiteURL
		diff["website_url"] = l.WebsiteURL
	}
	if r.CompanyEmail != nil && *r.CompanyEmail != l.CompanyEmail {
		l.CompanyEmail = *r.CompanyEmail
		diff["company_email"] = l.CompanyEmail
	}
	if r.HiringNeeds != nil {
		l.HiringNeeds = *r.HiringNeeds
		diff["hiring_needs"] = l.HiringNeeds
	}
	if r.LeadSource != nil && *r.LeadSource != l.LeadSource {
		l.LeadSource = *r.LeadSource
		diff["lead_source"] = l.LeadSource
	}
	if r.IndustryName != nil && *r.IndustryName != l.IndustryName {
		l.IndustryName = *r.IndustryName
		diff["industry_name"] = l.IndustryName
	}
	if r.LinkedInLink != nil && *r.LinkedInLink != l.LinkedInLink {
		l.LinkedInLink = *r.LinkedInLink
		diff["linkedin_link"] = l.LinkedInLink
	}
	if r.NoOfDesignations != nil && *r.NoOfDesignations != l.NoOfDesignations {
		l.NoOfDesignations = *r.NoOfDesignations
		diff["no_of_designations"] = l.NoOfDesignations
	}
	if r.NoOfPositions != nil && *r.NoOfPositions != l.NoOfPositions {
		l.NoOfPositions = *r.NoOfPositions
		diff["no_of_positions"] = l.NoOfPositions
	}
	if r.Stage != nil && *r.Stage != l.Stage {
		l.Stage = *r.Stage
		diff["stage"] = l.Stage
	}
	if r.AssignedTo != nil && *r.AssignedTo != l.AssignedTo {
		l.AssignedTo = *r.AssignedTo
		diff["assigned_to"] = l.AssignedTo
	}
	if r.Locked != nil && *r.Locked != l.Locked {
		l.Locked = *r.Locked
		diff["locked"] = l.Locked
	}

	return diff
}
