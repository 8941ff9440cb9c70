package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/librium/internal/tasks"
)

// BackupRequest is the body of POST /api/backups. Async hands the snapshot to
// the task queue when one is running.
type BackupRequest struct {
	Name  string `json:"name"`
	Async bool   `json:"async"`
}

type BackupsController struct {
	backups BackupManager
	queue   TaskQueue
}

func NewBackupsController(backups BackupManager, queue TaskQueue) *BackupsController {
	return &BackupsController{backups: backups, queue: queue}
}

// List handles GET /api/backups.
func (bc *BackupsController) List(c *gin.Context) {
	snapshots, err := bc.backups.List()
	if err != nil {
		respondServiceError(c, err, "backups")
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: snapshots, Count: len(snapshots)})
}

// Create handles POST /api/backups.
func (bc *BackupsController) Create(c *gin.Context) {
	var req BackupRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request body: "+err.Error())
			return
		}
	}

	if req.Async && bc.queue != nil {
		ids, err := bc.queue.Add(tasks.CreateBackupTask{Name: req.Name}).Save()
		if err != nil {
			respondInternalError(c, err, "enqueue backup")
			return
		}
		respondAccepted(c, "backup enqueued", gin.H{"task_id": ids[0]})
		return
	}

	snapshot, err := bc.backups.Create(c.Request.Context(), req.Name)
	if err != nil {
		respondServiceError(c, err, "backup")
		return
	}
	respondCreated(c, snapshot)
}

// Restore handles POST /api/backups/:name/restore.
func (bc *BackupsController) Restore(c *gin.Context) {
	name := c.Param("name")
	if err := bc.backups.Restore(c.Request.Context(), name); err != nil {
		respondServiceError(c, err, "backup")
		return
	}
	respondSuccess(c, "backup restored")
}

// TaskStatus handles GET /api/tasks/:id.
func (bc *BackupsController) TaskStatus(c *gin.Context) {
	if bc.queue == nil {
		respondNotFound(c, "task queue")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := bc.queue.Status(ctx, c.Param("id"))
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}
	if status == backlite.TaskStatusNotFound {
		respondNotFound(c, "task")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     c.Param("id"),
		"status": taskStatusToString(status),
	})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
