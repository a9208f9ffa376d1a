// AngelaMos | 2026
// recurring.go

package task

import (
	"time"

	"github.com/google/uuid"
)

const recurringInterval = 5 * 24 * time.Hour

var monthlyRoutine = []string{
	"Post 1 of the month",
	"Post 2 of the month",
	"Post 3 of the month",
	"Post 4 of the month",
	"Monthly review",
	"Monthly review request",
}

// MonthlyRoutine builds the recurring tasks a freshly signed client gets,
// spaced five days apart starting five days after from.
func MonthlyRoutine(userID, clientID, clientName string, from time.Time) []Task {
	description := "Recurring task for " + clientName

	tasks := make([]Task, 0, len(monthlyRoutine))
	for i, title := range monthlyRoutine {
		tasks = append(tasks, Task{
			ID:          uuid.New().String(),
			UserID:      userID,
			Title:       title,
			Description: &description,
			TaskType:    TypeRecurring,
			DueDate:     from.Add(time.Duration(i+1) * recurringInterval),
			ClientID:    &clientID,
			ClientName:  &clientName,
		})
	}
	return tasks
}
