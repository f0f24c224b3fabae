package lms

import (
	"strconv"
	"time"

	"github.com/campusgrid/lms-dashboard-api/internal/models"
)

// Remote procedure names, one per operation the dashboard consumes.
const (
	fnGetUsersByField     = "core_user_get_users_by_field"
	fnGetUserRoles        = "core_role_get_user_roles"
	fnGetUserCompanies    = "block_iomad_company_admin_get_user_companies"
	fnGetCompanies        = "block_iomad_company_admin_get_companies"
	fnGetEnrolledCourses  = "core_enrol_get_users_courses"
	fnGetCoursesByField   = "core_course_get_courses_by_field"
	fnGetCourseContents   = "core_course_get_contents"
	fnGetCompletionStatus = "core_completion_get_course_completion_status"
	fnGetGradeItems       = "gradereport_user_get_grade_items"
	fnGetCourseGroups     = "core_group_get_course_groups"
	fnGetGroupMembers     = "core_group_get_group_members"
	fnGetAssignments      = "mod_assign_get_assignments"
	fnGetSubmissions      = "mod_assign_get_submissions"
	fnEnrolUsers          = "enrol_manual_enrol_users"
	fnAssignRoles         = "core_role_assign_roles"
	fnUnassignRoles       = "core_role_unassign_roles"
	fnCreateUsers         = "core_user_create_users"
	fnUpdateUsers         = "core_user_update_users"
	fnDeleteUsers         = "core_user_delete_users"
)

// Wire shapes. The LMS reports numeric ids and unix-second timestamps;
// conversions to the string-keyed local projections happen here and
// nowhere else.

type wsUser struct {
	ID         int64    `json:"id"`
	Username   string   `json:"username"`
	Email      string   `json:"email"`
	FullName   string   `json:"fullname"`
	LastAccess int64    `json:"lastaccess"`
	Roles      []wsRole `json:"roles,omitempty"`
}

type wsRole struct {
	Shortname string `json:"shortname"`
	Name      string `json:"name"`
}

type wsCompany struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Shortname string `json:"shortname"`
}

type wsCompanies struct {
	Companies []wsCompany `json:"companies"`
}

type wsCourse struct {
	ID           int64   `json:"id"`
	Shortname    string  `json:"shortname"`
	FullName     string  `json:"fullname"`
	Summary      string  `json:"summary"`
	CategoryName string  `json:"categoryname"`
	Progress     float64 `json:"progress"`
	Completed    bool    `json:"completed"`
}

type wsCoursesByField struct {
	Courses []wsCourse `json:"courses"`
}

type wsSection struct {
	ID      int64      `json:"id"`
	Name    string     `json:"name"`
	Summary string     `json:"summary"`
	Visible int        `json:"visible"`
	Modules []wsModule `json:"modules"`
}

type wsModule struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	ModName        string `json:"modname"`
	CompletionData *struct {
		State int `json:"state"`
	} `json:"completiondata,omitempty"`
	Dates []struct {
		Label     string `json:"label"`
		Timestamp int64  `json:"timestamp"`
	} `json:"dates,omitempty"`
}

type wsCompletionStatus struct {
	CompletionStatus struct {
		Completed bool `json:"completed"`
	} `json:"completionstatus"`
}

type wsGradeItems struct {
	UserGrades []struct {
		CourseID   int64 `json:"courseid"`
		GradeItems []struct {
			ItemName string   `json:"itemname"`
			GradeRaw *float64 `json:"graderaw"`
			GradeMax float64  `json:"grademax"`
		} `json:"gradeitems"`
	} `json:"usergrades"`
}

type wsGroup struct {
	ID       int64  `json:"id"`
	CourseID int64  `json:"courseid"`
	Name     string `json:"name"`
}

type wsGroupMembers []struct {
	GroupID int64   `json:"groupid"`
	UserIDs []int64 `json:"userids"`
}

type wsAssignments struct {
	Courses []struct {
		ID          int64 `json:"id"`
		Assignments []struct {
			ID      int64  `json:"id"`
			CMID    int64  `json:"cmid"`
			Name    string `json:"name"`
			DueDate int64  `json:"duedate"`
		} `json:"assignments"`
	} `json:"courses"`
}

type wsSubmissions struct {
	Assignments []struct {
		AssignmentID int64 `json:"assignmentid"`
		Submissions  []struct {
			ID            int64  `json:"id"`
			UserID        int64  `json:"userid"`
			Status        string `json:"status"`
			TimeModified  int64  `json:"timemodified"`
			GradingStatus string `json:"gradingstatus"`
		} `json:"submissions"`
	} `json:"assignments"`
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func unixOrZero(ts int64) time.Time {
	if ts <= 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}

func (u wsUser) toModel() models.UserRecord {
	record := models.UserRecord{
		ID:         itoa(u.ID),
		Username:   u.Username,
		Email:      u.Email,
		FullName:   u.FullName,
		LastAccess: unixOrZero(u.LastAccess),
	}
	for _, role := range u.Roles {
		record.Assignments = append(record.Assignments, models.RoleAssignment{
			Shortname: role.Shortname,
			Name:      role.Name,
		})
	}
	return record
}

func (c wsCourse) toModel() models.Course {
	return models.Course{
		ID:        itoa(c.ID),
		Shortname: c.Shortname,
		FullName:  c.FullName,
		Summary:   c.Summary,
		Category:  c.CategoryName,
		Progress:  c.Progress,
		Completed: c.Completed,
	}
}
