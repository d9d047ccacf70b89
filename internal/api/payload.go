package api

import (
	"strings"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/query"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/service/assignment"
)

// Request body field names.
const (
	fieldName         = "name"
	fieldEmail        = "email"
	fieldPendingTasks = "pendingTasks"
	fieldDescription  = "description"
	fieldDeadline     = "deadline"
	fieldCompleted    = "completed"
	fieldAssignedUser = "assignedUser"
)

func userInputFromPayload(p shared.Payload) (service.UserInput, error) {
	pending, err := assignment.NormalizeIDs(fieldPendingTasks, p[fieldPendingTasks])
	if err != nil {
		return service.UserInput{}, err
	}
	return service.UserInput{
		Name:         query.String(p[fieldName]),
		Email:        query.String(p[fieldEmail]),
		PendingTasks: pending,
	}, nil
}

func taskInputFromPayload(p shared.Payload) (service.TaskInput, error) {
	deadline, err := query.Time(fieldDeadline, p[fieldDeadline])
	if err != nil {
		return service.TaskInput{}, err
	}
	return service.TaskInput{
		Name:         query.String(p[fieldName]),
		Description:  query.String(p[fieldDescription]),
		Deadline:     deadline,
		Completed:    query.Bool(p[fieldCompleted], false),
		AssignedUser: strings.TrimSpace(query.String(p[fieldAssignedUser])),
	}, nil
}
