package service

import "github.com/campusgrid/lms-dashboard-api/internal/models"

// placeholderCourses is shown to students with no enrollments yet, so the
// dashboard never renders an empty shell. A deliberate UX fallback, not an
// error state.
func placeholderCourses() []models.Course {
	return []models.Course{
		{
			ID:        "sample-101",
			Shortname: "GS101",
			FullName:  "Getting Started",
			Summary:   "A short tour of your dashboard, courses and activities.",
			Category:  "Onboarding",
		},
		{
			ID:        "sample-102",
			Shortname: "LIB100",
			FullName:  "Using the Library",
			Summary:   "How to find course materials and submit your first assignment.",
			Category:  "Onboarding",
		},
	}
}
