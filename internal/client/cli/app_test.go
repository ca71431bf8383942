package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/client/client"
	"github.com/dmitrijs2005/gophtasks/internal/client/config"
	"github.com/dmitrijs2005/gophtasks/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	loggedIn  bool
	email     string
	password  string
	loginErr  error
	tasks     []models.Task
	created   []models.NewTask
	updates   map[int64]models.TaskUpdate
	listCalls [][2]int
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) Register(_ context.Context, email string, password []byte) (*models.User, error) {
	f.email, f.password = email, string(password)
	return &models.User{ID: 1, Email: email, IsActive: true}, nil
}

func (f *fakeClient) Login(_ context.Context, email string, password []byte) error {
	f.email, f.password = email, string(password)
	if f.loginErr != nil {
		return f.loginErr
	}
	f.loggedIn = true
	return nil
}

func (f *fakeClient) Logout(context.Context) error {
	if !f.loggedIn {
		return client.ErrNotLoggedIn
	}
	f.loggedIn = false
	return nil
}

func (f *fakeClient) LoggedIn() bool { return f.loggedIn }

func (f *fakeClient) Me(context.Context) (*models.User, error) {
	return &models.User{ID: 1, Email: f.email, IsActive: true, CreatedAt: time.Now()}, nil
}

func (f *fakeClient) ListTasks(_ context.Context, skip, limit int) ([]models.Task, error) {
	f.listCalls = append(f.listCalls, [2]int{skip, limit})
	if skip >= len(f.tasks) {
		return []models.Task{}, nil
	}
	end := min(skip+limit, len(f.tasks))
	return f.tasks[skip:end], nil
}

func (f *fakeClient) CreateTask(_ context.Context, t models.NewTask) (*models.Task, error) {
	f.created = append(f.created, t)
	return &models.Task{ID: int64(len(f.created)), Title: t.Title}, nil
}

func (f *fakeClient) find(id int64) (*models.Task, error) {
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			return &f.tasks[i], nil
		}
	}
	return nil, &client.APIError{StatusCode: 404, Detail: "Not found"}
}

func (f *fakeClient) GetTask(_ context.Context, id int64) (*models.Task, error) { return f.find(id) }

func (f *fakeClient) UpdateTask(_ context.Context, id int64, upd models.TaskUpdate) (*models.Task, error) {
	if f.updates == nil {
		f.updates = map[int64]models.TaskUpdate{}
	}
	f.updates[id] = upd
	return f.find(id)
}

func (f *fakeClient) DeleteTask(_ context.Context, id int64) (*models.Task, error) { return f.find(id) }

func newTestApp(t *testing.T, api client.Client, input string) (*App, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	cfg := &config.Config{}
	cfg.LoadDefaults()
	return newApp(cfg, api, strings.NewReader(input), &out), &out
}

func stubPassword(t *testing.T, pw string) *[]byte {
	t.Helper()
	var last []byte
	orig := getPassword
	getPassword = func(io.Writer) ([]byte, error) {
		last = []byte(pw)
		return last, nil
	}
	t.Cleanup(func() { getPassword = orig })
	return &last
}

func TestApp_RegisterWipesPassword(t *testing.T) {
	last := stubPassword(t, "s3cret")
	api := &fakeClient{}
	app, out := newTestApp(t, api, "alice@example.com\n")

	require.NoError(t, app.Register(context.Background()))
	assert.Equal(t, "alice@example.com", api.email)
	assert.Equal(t, "s3cret", api.password)
	assert.Equal(t, make([]byte, 6), *last)
	assert.Contains(t, out.String(), "Registered alice@example.com")
	assert.False(t, app.isLoggedIn())
}

func TestApp_Login(t *testing.T) {
	stubPassword(t, "pw")

	t.Run("success", func(t *testing.T) {
		api := &fakeClient{}
		app, _ := newTestApp(t, api, " Alice@Example.com \n")
		require.NoError(t, app.Login(context.Background()))
		assert.True(t, app.isLoggedIn())
		assert.Equal(t, "(alice@example.com) ", app.getStatus())
	})

	t.Run("bad credentials", func(t *testing.T) {
		api := &fakeClient{loginErr: client.ErrUnauthorized}
		app, _ := newTestApp(t, api, "alice@example.com\n")
		err := app.Login(context.Background())
		require.Error(t, err)
		assert.Equal(t, "incorrect email or password", err.Error())
		assert.Equal(t, "", app.getStatus())
	})

	t.Run("server down", func(t *testing.T) {
		api := &fakeClient{loginErr: fmt.Errorf("%w: dial", client.ErrUnavailable)}
		app, _ := newTestApp(t, api, "alice@example.com\n")
		err := app.Login(context.Background())
		assert.ErrorIs(t, err, client.ErrUnavailable)
	})
}

func TestApp_LogoutClearsStatus(t *testing.T) {
	api := &fakeClient{loggedIn: true}
	app, out := newTestApp(t, api, "")
	app.userName = "alice@example.com"

	require.NoError(t, app.Logout(context.Background()))
	assert.Equal(t, "", app.getStatus())
	assert.Contains(t, out.String(), "Logged out")

	assert.ErrorIs(t, app.Logout(context.Background()), client.ErrNotLoggedIn)
}

func TestApp_Add(t *testing.T) {
	api := &fakeClient{loggedIn: true}
	app, out := newTestApp(t, api, "groceries\nmilk and eggs\n2026-11-01\n")

	require.NoError(t, app.Add(context.Background()))
	require.Len(t, api.created, 1)
	got := api.created[0]
	assert.Equal(t, "groceries", got.Title)
	require.NotNil(t, got.Description)
	assert.Equal(t, "milk and eggs", *got.Description)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, "2026-11-01", got.DueDate.Format(dateLayout))
	assert.Contains(t, out.String(), "Created task 1")
}

func TestApp_AddOptionalFieldsAndErrors(t *testing.T) {
	api := &fakeClient{loggedIn: true}

	app, _ := newTestApp(t, api, "title only\n\n\n")
	require.NoError(t, app.Add(context.Background()))
	assert.Nil(t, api.created[0].Description)
	assert.Nil(t, api.created[0].DueDate)

	app, _ = newTestApp(t, api, "\n")
	assert.Error(t, app.Add(context.Background()))

	app, _ = newTestApp(t, api, "t\n\nnext tuesday\n")
	assert.Error(t, app.Add(context.Background()))
	assert.Len(t, api.created, 1)
}

func TestApp_ListPages(t *testing.T) {
	api := &fakeClient{loggedIn: true}
	for i := 1; i <= pageSize+1; i++ {
		api.tasks = append(api.tasks, models.Task{ID: int64(i), Title: fmt.Sprintf("task %d", i), Completed: i == 1})
	}
	app, out := newTestApp(t, api, "")

	require.NoError(t, app.List(context.Background()))
	assert.Equal(t, [][2]int{{0, pageSize}, {pageSize, pageSize}}, api.listCalls)
	assert.Contains(t, out.String(), "    1 [x] task 1\n")
	assert.Contains(t, out.String(), fmt.Sprintf("%5d [ ] task %d\n", pageSize+1, pageSize+1))
}

func TestApp_ListEmpty(t *testing.T) {
	app, out := newTestApp(t, &fakeClient{loggedIn: true}, "")
	require.NoError(t, app.List(context.Background()))
	assert.Equal(t, "No tasks\n", out.String())
}

func TestApp_TaskCommands(t *testing.T) {
	desc := "details"
	api := &fakeClient{loggedIn: true, tasks: []models.Task{{ID: 7, Title: "seven", Description: &desc}}}
	app, out := newTestApp(t, api, "")
	ctx := context.Background()

	require.NoError(t, app.Show(ctx, []string{"7"}))
	assert.Contains(t, out.String(), "7 [ ] seven\n  details\n")

	require.NoError(t, app.Done(ctx, []string{"7"}))
	require.NotNil(t, api.updates[7].Completed)
	assert.True(t, *api.updates[7].Completed)
	assert.Nil(t, api.updates[7].Title)

	require.NoError(t, app.Delete(ctx, []string{"7"}))
	assert.Contains(t, out.String(), "Deleted task 7 (seven)")

	err := app.Show(ctx, []string{"8"})
	assert.Equal(t, "Not found", describe(err))

	for _, args := range [][]string{nil, {"x"}, {"0"}, {"1", "2"}} {
		assert.Error(t, app.Show(ctx, args), "%v", args)
		assert.Error(t, app.Done(ctx, args), "%v", args)
		assert.Error(t, app.Delete(ctx, args), "%v", args)
	}
}

func TestParseDue(t *testing.T) {
	due, err := parseDue("")
	require.NoError(t, err)
	assert.Nil(t, due)

	due, err = parseDue("2026-10-18T09:30:00Z")
	require.NoError(t, err)
	assert.True(t, due.Equal(time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)))

	due, err = parseDue("2026-10-18")
	require.NoError(t, err)
	assert.Equal(t, time.Local, due.Location())

	_, err = parseDue("18/10/2026")
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "please log in first", describe(client.ErrNotLoggedIn))
	assert.Equal(t, "session expired or revoked, please log in again", describe(client.ErrUnauthorized))
	assert.Equal(t, "server unavailable", describe(fmt.Errorf("%w: refused", client.ErrUnavailable)))
	assert.Equal(t, "Already exists", describe(&client.APIError{StatusCode: 409, Detail: "Already exists"}))
	assert.Equal(t, "server returned 500", describe(&client.APIError{StatusCode: 500}))
	assert.Equal(t, "plain", describe(errors.New("plain")))
}

func TestApp_RunLogsOutOnExit(t *testing.T) {
	capturePrints(t)
	api := &fakeClient{loggedIn: true}
	app, out := newTestApp(t, api, "exit\n")

	app.Run(context.Background())
	assert.False(t, api.loggedIn)
	assert.Contains(t, out.String(), "Welcome to GophTasks CLI")
}
