package models

import "time"

// Certification is a single certification held by a company
// (e.g., CIDB registration, ISO 9001).
type Certification struct {
	Name       string     `bson:"name" json:"name"`
	Level      string     `bson:"level,omitempty" json:"level,omitempty"`
	ExpiryDate *time.Time `bson:"expiry_date,omitempty" json:"expiry_date,omitempty"`
}

// CompanyProfile describes an SME's capabilities, one per team. The
// readiness engine matches these fields against tender requirements.
type CompanyProfile struct {
	ID     string `bson:"_id" json:"id"`
	TeamID string `bson:"team_id" json:"team_id"`

	IndustrySector     string          `bson:"industry_sector" json:"industry_sector"`
	ServicesProvided   []string        `bson:"services_provided" json:"services_provided"`
	Certifications     []Certification `bson:"certifications" json:"certifications"`
	GeographicCoverage []string        `bson:"geographic_coverage" json:"geographic_coverage"`
	YearsExperience    int             `bson:"years_experience" json:"years_experience"`

	ContactEmail string `bson:"contact_email" json:"contact_email"`
	ContactPhone string `bson:"contact_phone,omitempty" json:"contact_phone,omitempty"`
	Website      string `bson:"website,omitempty" json:"website,omitempty"`

	// South African procurement qualifiers. BBBEE level 1 is the best;
	// CIDB grades run "Grade 1" (smallest) through "Grade 9".
	BBBEELevel *int   `bson:"bbbee_level,omitempty" json:"bbbee_level,omitempty"`
	CIDBGrade  string `bson:"cidb_grade,omitempty" json:"cidb_grade,omitempty"`

	CompanySize               string `bson:"company_size,omitempty" json:"company_size,omitempty"`
	CompanyRegistrationNumber string `bson:"company_registration_number,omitempty" json:"company_registration_number,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// CoversProvince reports whether the company operates in the given province.
func (p CompanyProfile) CoversProvince(province string) bool {
	for _, pr := range p.GeographicCoverage {
		if pr == province {
			return true
		}
	}
	return false
}
