package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/client/models"
)

const (
	timeLayout = "2006-01-02 15:04"
	dateLayout = "2006-01-02"
	pageSize   = 100
)

var errUsageID = errors.New("usage: <command> <task id>")

func parseID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errUsageID
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", args[0])
	}
	return id, nil
}

// parseDue accepts an RFC 3339 timestamp or a plain date, read as midnight
// local time.
func parseDue(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return nil, fmt.Errorf("due date must be YYYY-MM-DD or RFC 3339, got %q", s)
	}
	return &t, nil
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// List prints every task, fetching pages until a short one comes back.
func (a *App) List(ctx context.Context) error {
	var all []models.Task
	for skip := 0; ; skip += pageSize {
		page, err := a.api.ListTasks(ctx, skip, pageSize)
		if err != nil {
			return err
		}
		all = append(all, page...)
		if len(page) < pageSize {
			break
		}
	}

	if len(all) == 0 {
		fmt.Fprintln(a.out, "No tasks")
		return nil
	}
	for _, t := range all {
		line := fmt.Sprintf("%5d %s %s", t.ID, checkbox(t.Completed), t.Title)
		if t.DueDate != nil {
			line += " (due " + t.DueDate.Local().Format(timeLayout) + ")"
		}
		fmt.Fprintln(a.out, line)
	}
	return nil
}

func (a *App) Add(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	if title == "" {
		return errors.New("title must not be empty")
	}

	desc, err := getSimpleText(a.reader, "Description (optional)", a.out)
	if err != nil {
		return err
	}

	dueText, err := getSimpleText(a.reader, "Due date, YYYY-MM-DD (optional)", a.out)
	if err != nil {
		return err
	}
	due, err := parseDue(dueText)
	if err != nil {
		return err
	}

	nt := models.NewTask{Title: title, DueDate: due}
	if desc != "" {
		nt.Description = &desc
	}

	t, err := a.api.CreateTask(ctx, nt)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created task %d\n", t.ID)
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	t, err := a.api.GetTask(ctx, id)
	if err != nil {
		return err
	}
	a.printTask(t)
	return nil
}

func (a *App) Done(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	completed := true
	t, err := a.api.UpdateTask(ctx, id, models.TaskUpdate{Completed: &completed})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Task %d marked done\n", t.ID)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	t, err := a.api.DeleteTask(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted task %d (%s)\n", t.ID, t.Title)
	return nil
}

func (a *App) printTask(t *models.Task) {
	fmt.Fprintf(a.out, "%d %s %s\n", t.ID, checkbox(t.Completed), t.Title)
	if t.Description != nil && *t.Description != "" {
		fmt.Fprintf(a.out, "  %s\n", *t.Description)
	}
	if t.DueDate != nil {
		fmt.Fprintf(a.out, "  due:     %s\n", t.DueDate.Local().Format(timeLayout))
	}
	fmt.Fprintf(a.out, "  created: %s\n", t.CreatedAt.Local().Format(timeLayout))
	fmt.Fprintf(a.out, "  updated: %s\n", t.UpdatedAt.Local().Format(timeLayout))
}
