package roles

import (
	"context"
	"strings"
	"time"

	"github.com/campusgrid/lms-dashboard-api/internal/models"
)

// inactivityWindow is how long without a login a user must be before the
// inactivity heuristic classifies them as a student.
const inactivityWindow = 30 * 24 * time.Hour

// rolePriority maps remote role-assignment shortnames to application roles.
// Order is precedence: the first shortname with an exact, case-insensitive
// match in the assignment set wins. No substring matching here; a role
// named "student-teacher-liaison" must not hit the "teacher" entry.
var rolePriority = []struct {
	shortname string
	role      models.Role
}{
	{"manager", models.RoleAdmin},
	{"siteadmin", models.RoleAdmin},
	{"companymanager", models.RoleSchoolAdmin},
	{"teacher", models.RoleTeacher},
	{"editingteacher", models.RoleTeacher},
	{"student", models.RoleStudent},
	{"user", models.RoleStudent},
	{"guest", models.RoleStudent},
}

// defaultSystemAccounts are reserved guest/test usernames that always
// resolve to student, regardless of any role-assignment data.
var defaultSystemAccounts = []string{"guest", "webservice", "selftest"}

// defaultAdminAccounts is the built-in allow-list of operator usernames.
var defaultAdminAccounts = map[string]models.Role{
	"admin":        models.RoleAdmin,
	"sysadmin":     models.RoleAdmin,
	"companyadmin": models.RoleSchoolAdmin,
}

// signals is everything a rule may inspect. Remote-backed signals are
// loaded lazily and at most once per resolution; a failed load leaves the
// signal inconclusive rather than failing the resolution.
type signals struct {
	username    string
	record      *models.UserRecord
	assignments []models.RoleAssignment
	now         time.Time

	enrollmentCount func(ctx context.Context) (int, bool)
}

// rule is one tier of the cascade: a named, pure mapping from signals to a
// role. ok=false means inconclusive, fall through to the next rule.
type rule struct {
	name  string
	apply func(ctx context.Context, sig *signals) (models.Role, bool)
}

func systemAccountRule(accounts []string) rule {
	set := make(map[string]struct{}, len(accounts))
	for _, account := range accounts {
		set[strings.ToLower(account)] = struct{}{}
	}
	return rule{
		name: "system_account",
		apply: func(_ context.Context, sig *signals) (models.Role, bool) {
			if _, ok := set[strings.ToLower(sig.username)]; ok {
				return models.RoleStudent, true
			}
			return "", false
		},
	}
}

func adminAccountRule(accounts map[string]models.Role) rule {
	set := make(map[string]models.Role, len(accounts))
	for account, role := range accounts {
		set[strings.ToLower(account)] = role
	}
	return rule{
		name: "admin_account",
		apply: func(_ context.Context, sig *signals) (models.Role, bool) {
			if role, ok := set[strings.ToLower(sig.username)]; ok {
				return role, true
			}
			return "", false
		},
	}
}

func assignmentRule() rule {
	return rule{
		name: "role_assignment",
		apply: func(_ context.Context, sig *signals) (models.Role, bool) {
			for _, entry := range rolePriority {
				for _, assignment := range sig.assignments {
					if strings.EqualFold(assignment.Shortname, entry.shortname) {
						return entry.role, true
					}
				}
			}
			return "", false
		},
	}
}

func usernameHeuristicRule() rule {
	return rule{
		name: "username_heuristic",
		apply: func(_ context.Context, sig *signals) (models.Role, bool) {
			username := strings.ToLower(sig.username)
			switch {
			case containsAny(username, "admin", "manager"):
				return models.RoleAdmin, true
			case containsAny(username, "teacher", "trainer", "instructor"):
				return models.RoleTeacher, true
			case containsAny(username, "student", "learner"):
				return models.RoleStudent, true
			}
			return "", false
		},
	}
}

// Biased by design toward students: an inactive teacher with no role
// metadata lands here too. Kept at the bottom of the cascade and isolated
// in its own rule so the bias can be revisited without touching the rest.
func enrollmentRule() rule {
	return rule{
		name: "enrollment_inference",
		apply: func(ctx context.Context, sig *signals) (models.Role, bool) {
			if sig.enrollmentCount == nil {
				return "", false
			}
			count, ok := sig.enrollmentCount(ctx)
			if ok && count > 0 {
				return models.RoleStudent, true
			}
			return "", false
		},
	}
}

func emailHeuristicRule() rule {
	return rule{
		name: "email_heuristic",
		apply: func(_ context.Context, sig *signals) (models.Role, bool) {
			if sig.record == nil {
				return "", false
			}
			at := strings.LastIndex(sig.record.Email, "@")
			if at < 0 {
				return "", false
			}
			domain := strings.ToLower(sig.record.Email[at+1:])
			switch {
			case containsAny(domain, "admin", "school"):
				return models.RoleSchoolAdmin, true
			case containsAny(domain, "teacher", "faculty"):
				return models.RoleTeacher, true
			case containsAny(domain, "student", "edu"):
				return models.RoleStudent, true
			}
			return "", false
		},
	}
}

// Same student bias as enrollmentRule; see the note there.
func inactivityRule() rule {
	return rule{
		name: "inactivity",
		apply: func(_ context.Context, sig *signals) (models.Role, bool) {
			if sig.record == nil {
				return "", false
			}
			if sig.now.Sub(sig.record.LastAccess) > inactivityWindow {
				return models.RoleStudent, true
			}
			return "", false
		},
	}
}

func defaultRule() rule {
	return rule{
		name: "default",
		apply: func(context.Context, *signals) (models.Role, bool) {
			return models.RoleStudent, true
		},
	}
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
