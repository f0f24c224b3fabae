package lms

import (
	"context"
	"net/url"
	"time"

	"github.com/campusgrid/lms-dashboard-api/internal/models"
)

// GetEnrolledCourses returns the courses a user is enrolled in.
func (c *Client) GetEnrolledCourses(ctx context.Context, userID string) ([]models.Course, error) {
	params := url.Values{}
	params.Set("userid", userID)

	var courses []wsCourse
	if err := c.call(ctx, fnGetEnrolledCourses, params, &courses); err != nil {
		return nil, err
	}
	result := make([]models.Course, 0, len(courses))
	for _, course := range courses {
		result = append(result, course.toModel())
	}
	return result, nil
}

// GetCoursesByField queries courses by an arbitrary field ("ids", "category", ...).
func (c *Client) GetCoursesByField(ctx context.Context, field, value string) ([]models.Course, error) {
	params := url.Values{}
	params.Set("field", field)
	params.Set("value", value)

	var result wsCoursesByField
	if err := c.call(ctx, fnGetCoursesByField, params, &result); err != nil {
		return nil, err
	}
	courses := make([]models.Course, 0, len(result.Courses))
	for _, course := range result.Courses {
		courses = append(courses, course.toModel())
	}
	return courses, nil
}

// GetCourseContents returns the course's sections with their modules,
// projected as lessons with embedded activities.
func (c *Client) GetCourseContents(ctx context.Context, courseID string) ([]models.Lesson, error) {
	params := url.Values{}
	params.Set("courseid", courseID)

	var sections []wsSection
	if err := c.call(ctx, fnGetCourseContents, params, &sections); err != nil {
		return nil, err
	}

	lessons := make([]models.Lesson, 0, len(sections))
	for _, section := range sections {
		lesson := models.Lesson{
			ID:       itoa(section.ID),
			CourseID: courseID,
			Name:     section.Name,
			Summary:  section.Summary,
			Visible:  section.Visible != 0,
		}
		for _, module := range section.Modules {
			activity := models.Activity{
				ID:       itoa(module.ID),
				LessonID: lesson.ID,
				CourseID: courseID,
				Name:     module.Name,
				Type:     module.ModName,
			}
			if module.CompletionData != nil && module.CompletionData.State > 0 {
				activity.Done = true
			}
			for _, date := range module.Dates {
				if date.Label == "Due:" && date.Timestamp > 0 {
					due := time.Unix(date.Timestamp, 0).UTC()
					activity.DueDate = &due
				}
			}
			lesson.Modules = append(lesson.Modules, activity)
		}
		lessons = append(lessons, lesson)
	}
	return lessons, nil
}

// GetCompletionStatus reports whether a user completed a course.
func (c *Client) GetCompletionStatus(ctx context.Context, courseID, userID string) (bool, error) {
	params := url.Values{}
	params.Set("courseid", courseID)
	params.Set("userid", userID)

	var result wsCompletionStatus
	if err := c.call(ctx, fnGetCompletionStatus, params, &result); err != nil {
		return false, err
	}
	return result.CompletionStatus.Completed, nil
}

// GetCourseGrades returns the user's gradebook lines for a course.
func (c *Client) GetCourseGrades(ctx context.Context, courseID, userID string) ([]models.Grade, error) {
	params := url.Values{}
	params.Set("courseid", courseID)
	params.Set("userid", userID)

	var result wsGradeItems
	if err := c.call(ctx, fnGetGradeItems, params, &result); err != nil {
		return nil, err
	}

	var grades []models.Grade
	for _, userGrades := range result.UserGrades {
		for _, item := range userGrades.GradeItems {
			grade := models.Grade{
				CourseID: itoa(userGrades.CourseID),
				ItemName: item.ItemName,
				Max:      item.GradeMax,
			}
			if item.GradeRaw != nil {
				grade.Value = *item.GradeRaw
			}
			grades = append(grades, grade)
		}
	}
	return grades, nil
}

// GetCourseGroups returns the groups of a course, without members.
func (c *Client) GetCourseGroups(ctx context.Context, courseID string) ([]models.Group, error) {
	params := url.Values{}
	params.Set("courseid", courseID)

	var groups []wsGroup
	if err := c.call(ctx, fnGetCourseGroups, params, &groups); err != nil {
		return nil, err
	}
	result := make([]models.Group, 0, len(groups))
	for _, group := range groups {
		result = append(result, models.Group{
			ID:       itoa(group.ID),
			CourseID: itoa(group.CourseID),
			Name:     group.Name,
		})
	}
	return result, nil
}

// GetGroupMembers returns the member user ids of a group.
func (c *Client) GetGroupMembers(ctx context.Context, groupID string) ([]string, error) {
	params := url.Values{}
	params.Set("groupids[0]", groupID)

	var result wsGroupMembers
	if err := c.call(ctx, fnGetGroupMembers, params, &result); err != nil {
		return nil, err
	}
	var members []string
	for _, entry := range result {
		for _, userID := range entry.UserIDs {
			members = append(members, itoa(userID))
		}
	}
	return members, nil
}

// GetAssignments lists assignment activities across a set of courses.
func (c *Client) GetAssignments(ctx context.Context, courseIDs []string) ([]models.Activity, error) {
	params := url.Values{}
	for i, id := range courseIDs {
		params.Set(indexedKey("courseids", i), id)
	}

	var result wsAssignments
	if err := c.call(ctx, fnGetAssignments, params, &result); err != nil {
		return nil, err
	}

	var activities []models.Activity
	for _, course := range result.Courses {
		for _, assignment := range course.Assignments {
			activity := models.Activity{
				ID:       itoa(assignment.ID),
				CourseID: itoa(course.ID),
				Name:     assignment.Name,
				Type:     "assign",
			}
			if assignment.DueDate > 0 {
				due := time.Unix(assignment.DueDate, 0).UTC()
				activity.DueDate = &due
			}
			activities = append(activities, activity)
		}
	}
	return activities, nil
}

// GetSubmissions lists submissions for a set of assignments.
func (c *Client) GetSubmissions(ctx context.Context, assignmentIDs []string) ([]models.Submission, error) {
	params := url.Values{}
	for i, id := range assignmentIDs {
		params.Set(indexedKey("assignmentids", i), id)
	}

	var result wsSubmissions
	if err := c.call(ctx, fnGetSubmissions, params, &result); err != nil {
		return nil, err
	}

	var submissions []models.Submission
	for _, assignment := range result.Assignments {
		for _, submission := range assignment.Submissions {
			submissions = append(submissions, models.Submission{
				ID:           itoa(submission.ID),
				AssignmentID: itoa(assignment.AssignmentID),
				UserID:       itoa(submission.UserID),
				Status:       submission.Status,
				SubmittedAt:  unixOrZero(submission.TimeModified),
			})
		}
	}
	return submissions, nil
}
