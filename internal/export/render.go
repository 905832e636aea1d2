package export

import (
	"bytes"
	"embed"
	"html/template"
	"strings"

	"cv-builder-backend/internal/cvs"
)

//go:embed templates/*.html
var templateFiles embed.FS

var pageTemplate = template.Must(
	template.New("cv.html").Funcs(template.FuncMap{
		"join":  strings.Join,
		"level": levelLabel,
	}).ParseFS(templateFiles, "templates/cv.html"),
)

// Renderer produces a printable HTML document from a CV. All user content
// passes through html/template escaping.
type Renderer struct{}

// NewRenderer constructs a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render fills the page template. Empty sections are skipped by the
// template itself.
func (r *Renderer) Render(cv cvs.CV) ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, viewModel(cv)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// view is the template's data shape.
type view struct {
	Title      string
	Info       cvs.PersonalInfo
	Contact    []string
	Education  []cvs.Education
	Experience []cvs.Experience
	Skills     []cvs.Skill
	Projects   []cvs.Project
}

func viewModel(cv cvs.CV) view {
	title := strings.TrimSpace(cv.Title)
	if title == "" {
		title = strings.TrimSpace(cv.PersonalInfo.FullName)
	}
	if title == "" {
		title = "CV"
	}

	var contact []string
	for _, field := range []string{cv.PersonalInfo.Email, cv.PersonalInfo.Phone, cv.PersonalInfo.Address} {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			contact = append(contact, trimmed)
		}
	}

	return view{
		Title:      title,
		Info:       cv.PersonalInfo,
		Contact:    contact,
		Education:  cv.Education,
		Experience: cv.Experience,
		Skills:     cv.Skills,
		Projects:   cv.Projects,
	}
}

func levelLabel(level int) string {
	switch level {
	case 1:
		return "Beginner"
	case 2:
		return "Basic"
	case 3:
		return "Intermediate"
	case 4:
		return "Advanced"
	case 5:
		return "Expert"
	default:
		return ""
	}
}
