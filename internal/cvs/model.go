package cvs

import "time"

// CV is the structured résumé document being edited. Section entries are
// embedded in the owning CV; they have no identity of their own.
type CV struct {
	ID           string       `json:"id"`
	UserID       string       `json:"userId"`
	Title        string       `json:"title"`
	PersonalInfo PersonalInfo `json:"personalInfo"`
	Education    []Education  `json:"education"`
	Experience   []Experience `json:"experience"`
	Skills       []Skill      `json:"skills"`
	Projects     []Project    `json:"projects"`
	Progress     int          `json:"progress"`
	LastUpdated  time.Time    `json:"lastUpdated"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// PersonalInfo holds the free-form header fields; all optional.
type PersonalInfo struct {
	FullName string `json:"fullName"`
	Title    string `json:"title"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Summary  string `json:"summary"`
}

// Education is one entry in the education section.
type Education struct {
	Institution  string `json:"institution"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldOfStudy"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	Description  string `json:"description"`
}

// Experience is one entry in the experience section.
type Experience struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	Location    string `json:"location"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Description string `json:"description"`
}

// Skill is a named skill with a 1-5 proficiency level.
type Skill struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// Project is one entry in the projects section.
type Project struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"`
}

// emptySections normalizes nil list sections to empty slices so JSON
// responses always carry arrays.
func (cv *CV) emptySections() {
	if cv.Education == nil {
		cv.Education = []Education{}
	}
	if cv.Experience == nil {
		cv.Experience = []Experience{}
	}
	if cv.Skills == nil {
		cv.Skills = []Skill{}
	}
	if cv.Projects == nil {
		cv.Projects = []Project{}
	}
}
