package main

// Render a sample CV to a printable HTML page:
//   go run ./cmd/renderdemo -out ./out/cv_preview.html

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"cv-builder-backend/internal/cvs"
	"cv-builder-backend/internal/export"
)

func main() {
	outPath := flag.String("out", "./out/cv_preview.html", "output path for the rendered page")
	flag.Parse()

	cv := sampleCV()
	page, err := export.NewRenderer().Render(cv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render failed: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "write failed: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*outPath, page, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("OK: wrote %s (progress %d%%)\n", *outPath, cvs.Progress(cv))
}

func sampleCV() cvs.CV {
	return cvs.CV{
		Title: "Backend Engineer CV",
		PersonalInfo: cvs.PersonalInfo{
			FullName: "Jordan Reyes",
			Title:    "Backend Engineer",
			Email:    "jordan.reyes@example.com",
			Phone:    "+1 555 010 2030",
			Address:  "Lisbon, Portugal",
			Summary:  "Engineer with eight years building data-heavy web services.",
		},
		Education: []cvs.Education{{
			Institution:  "Instituto Superior Tecnico",
			Degree:       "MSc",
			FieldOfStudy: "Computer Science",
			StartDate:    "2012",
			EndDate:      "2014",
		}},
		Experience: []cvs.Experience{{
			Company:     "Harbor Analytics",
			Position:    "Senior Backend Engineer",
			Location:    "Remote",
			StartDate:   "2019",
			EndDate:     "Present",
			Description: "Owns the ingestion pipeline and its Postgres storage layer.",
		}, {
			Company:     "Seaward Systems",
			Position:    "Software Engineer",
			StartDate:   "2014",
			EndDate:     "2019",
			Description: "Built internal tooling and the customer-facing REST API.",
		}},
		Skills: []cvs.Skill{
			{Name: "Go", Level: 5},
			{Name: "PostgreSQL", Level: 4},
			{Name: "Kubernetes", Level: 3},
		},
		Projects: []cvs.Project{{
			Name:        "cv-builder-backend",
			Description: "CV builder API with printable export.",
			URL:         "https://example.com/cv-builder",
		}},
	}
}
