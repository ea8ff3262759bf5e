package leads

import "time"

// Stage is the lead's overall sales-pipeline position. Any member may follow
// any other; there is no enforced transition graph.
type Stage string

const (
	StageNew          Stage = "New"
	StageContacted    Stage = "Contacted"
	StageProposalSent Stage = "Proposal Sent"
	StageNegotiation  Stage = "Negotiation"
	StageWon          Stage = "Won"
	StageLost         Stage = "Lost"
	StageOnboarded    Stage = "Onboarded"
	StageNoVendor     Stage = "No vendor"
)

// Stages lists every valid pipeline stage.
var Stages = []Stage{
	StageNew, StageContacted, StageProposalSent, StageNegotiation,
	StageWon, StageLost, StageOnboarded, StageNoVendor,
}

// Valid reports whether s is a member of the stage enum.
func (s Stage) Valid() bool {
	for _, v := range Stages {
		if s == v {
			return true
		}
	}
	return false
}

// POCStage tracks outreach progress for an individual contact. Independent
// of the lead's pipeline stage.
type POCStage string

const (
	POCContacted   POCStage = "Contacted"
	POCBusy        POCStage = "Busy"
	POCNoAnswer    POCStage = "No Answer"
	POCWrongNumber POCStage = "Wrong Number"
)

// Valid reports whether p is a member of the contact-stage enum. The empty
// value is allowed: a fresh contact has no outreach progress yet.
func (p POCStage) Valid() bool {
	switch p {
	case "", POCContacted, POCBusy, POCNoAnswer, POCWrongNumber:
		return true
	}
	return false
}

// CompanySize buckets the prospect company's headcount.
type CompanySize string

const (
	SizeMicro      CompanySize = "1-10"
	SizeSmall      CompanySize = "11-50"
	SizeMid        CompanySize = "51-200"
	SizeLarge      CompanySize = "201-500"
	SizeEnterprise CompanySize = "501-1000"
	SizeGlobal     CompanySize = "1000+"
)

func (c CompanySize) Valid() bool {
	switch c {
	case "", SizeMicro, SizeSmall, SizeMid, SizeLarge, SizeEnterprise, SizeGlobal:
		return true
	}
	return false
}

// HiringNeed is a multi-valued tag describing what the prospect hires for.
type HiringNeed string

const (
	NeedIT         HiringNeed = "IT"
	NeedNonIT      HiringNeed = "Non-IT"
	NeedLeadership HiringNeed = "Leadership"
	NeedVolume     HiringNeed = "Volume"
	NeedContract   HiringNeed = "Contract"
)

func (h HiringNeed) Valid() bool {
	switch h {
	case NeedIT, NeedNonIT, NeedLeadership, NeedVolume, NeedContract:
		return true
	}
	return false
}

// LeadSource records where the lead came from.
type LeadSource string

const (
	SourceLinkedIn      LeadSource = "LinkedIn"
	SourceReferral      LeadSource = "Referral"
	SourceWebsite       LeadSource = "Website"
	SourceColdCall      LeadSource = "Cold Call"
	SourceEmailCampaign LeadSource = "Email Campaign"
	SourceEvent         LeadSource = "Event"
	SourceOther         LeadSource = "Other"
)

func (l LeadSource) Valid() bool {
	switch l {
	case "", SourceLinkedIn, SourceReferral, SourceWebsite, SourceColdCall,
		SourceEmailCampaign, SourceEvent, SourceOther:
		return true
	}
	return false
}

// PointOfContact is an individual contact person at the lead's company.
// Each entry carries its own id so contacts can be added, updated and removed
// individually instead of whole-collection replace only.
type PointOfContact struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Designation string   `json:"designation,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Email       string   `json:"email,omitempty"`
	LinkedInURL string   `json:"linkedin_url,omitempty"`
	Stage       POCStage `json:"stage,omitempty"`
}

// Lead is a prospective client company under sales pursuit.
type Lead struct {
	ID               string           `json:"id"`
	CompanyName      string           `json:"company_name"`
	CompanyInfo      string           `json:"company_info,omitempty"`
	CompanySize      CompanySize      `json:"company_size,omitempty"`
	WebsiteURL       string           `json:"website_url"`
	CompanyEmail     string           `json:"company_email"`
	HiringNeeds      []HiringNeed     `json:"hiring_needs,omitempty"`
	LeadSource       LeadSource       `json:"lead_source,omitempty"`
	IndustryName     string           `json:"industry_name"`
	LinkedInLink     string           `json:"linkedin_link,omitempty"`
	NoOfDesignations int              `json:"no_of_designations"`
	NoOfPositions    int              `json:"no_of_positions,omitempty"`
	Stage            Stage            `json:"stage"`
	AssignedTo       string           `json:"assigned_to,omitempty"`
	AssignedBy       string           `json:"assigned_by,omitempty"`
	Locked           bool             `json:"locked"`
	LockedBy         string           `json:"locked_by,omitempty"`
	PointsOfContact  []PointOfContact `json:"points_of_contact"`
	// Version is the optimistic-concurrency token; bumped on every write.
	// An update carrying a stale version is rejected instead of silently
	// winning by last write.
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RemarkType distinguishes text notes from file and voice attachments.
type RemarkType string

const (
	RemarkText  RemarkType = "text"
	RemarkVoice RemarkType = "voice"
	RemarkFile  RemarkType = "file"
)

func (r RemarkType) Valid() bool {
	switch r {
	case RemarkText, RemarkVoice, RemarkFile:
		return true
	}
	return false
}

// Remark is a free-form note attached to a lead. Append-only except explicit
// delete by permitted roles.
type Remark struct {
	ID        string     `json:"id"`
	LeadID    string     `json:"lead_id"`
	AuthorID  string     `json:"author_id"`
	Type      RemarkType `json:"type"`
	Content   string     `json:"content,omitempty"`
	FileURL   string     `json:"file_url,omitempty"`
	VoiceURL  string     `json:"voice_url,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ListFilter narrows lead listings.
type ListFilter struct {
	Stage      Stage
	AssignedTo string
	Limit      int
	Offset     int
}
