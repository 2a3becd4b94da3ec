package store

import (
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/tasklight/tasklight/internal/models"
	"github.com/tasklight/tasklight/internal/remote"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// blockingTaskRemote serves List responses in a controlled order and
// signals when a call has entered List.
type blockingTaskRemote struct {
	mu      sync.Mutex
	entered chan struct{}
	pending []chan []models.Task
}

func newBlockingTaskRemote() *blockingTaskRemote {
	return &blockingTaskRemote{entered: make(chan struct{}, 2)}
}

func (r *blockingTaskRemote) nextList() chan []models.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch := make(chan []models.Task)
	r.pending = append(r.pending, ch)
	return ch
}

func (r *blockingTaskRemote) List(remote.TaskListScope) ([]models.Task, error) {
	r.mu.Lock()
	ch := r.pending[0]
	r.pending = r.pending[1:]
	r.mu.Unlock()
	r.entered <- struct{}{}
	return <-ch, nil
}

func (r *blockingTaskRemote) FindByID(string) (*models.Task, error) { return nil, remote.ErrNotFound }
func (r *blockingTaskRemote) Insert(*models.Task) (*models.Task, error) {
	return nil, remote.ErrNotFound
}
func (r *blockingTaskRemote) Update(string, map[string]any) (*models.Task, error) {
	return nil, remote.ErrNotFound
}
func (r *blockingTaskRemote) Delete(string) error { return nil }

// A fetch that started earlier but finished later must not overwrite the
// result of a newer fetch.
func TestFetchTasksDiscardsStaleResponse(t *testing.T) {
	blocking := newBlockingTaskRemote()
	store := NewTaskStore("user-1", &remote.Client{Tasks: blocking})

	first := blocking.nextList()
	second := blocking.nextList()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		store.FetchTasks() // seq 1, will be answered last
	}()
	<-blocking.entered
	go func() {
		defer wg.Done()
		store.FetchTasks() // seq 2, answered first
	}()
	<-blocking.entered

	second <- []models.Task{{ID: "fresh"}}
	first <- []models.Task{{ID: "stale"}}
	wg.Wait()

	tasks := store.Tasks()
	require.Len(t, tasks, 1)
	require.Equal(t, "fresh", tasks[0].ID)
}

// An update whose fields all strip away must never reach the backend.
func TestUpdateTaskEmptyPatchIssuesNoSQL(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      conn,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	client := remote.NewGormClient(db, remote.OAuthConfig{})
	store := NewTaskStore("user-1", client)

	empty := ""
	updated, err := store.UpdateTask("task-1", TaskPatch{
		Title:       &empty,
		Description: &empty,
	})

	require.NoError(t, err)
	require.Nil(t, updated)
	require.Empty(t, store.LastError())
	require.NoError(t, mock.ExpectationsWereMet(), "no SQL may be issued for an empty patch")
}
