package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"task-manager-api/internal/middleware"
	"task-manager-api/internal/models"
	"task-manager-api/internal/services"
)

// TaskHandler はタスク関連のハンドラーを管理します。
type TaskHandler struct {
	taskService *services.TaskService
	log         logrus.FieldLogger
}

// NewTaskHandler は新しい TaskHandler を作成します。
func NewTaskHandler(taskService *services.TaskService, log logrus.FieldLogger) *TaskHandler {
	return &TaskHandler{taskService: taskService, log: log}
}

// currentUser は認証済みユーザーの ID を取り出します。
// Auth ミドルウェアを通っていない場合は 401 を返して false になります。
func currentUser(c *gin.Context) (int64, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondMessage(c, http.StatusUnauthorized, middleware.UnauthorizedMessage)
		return 0, false
	}
	return userID, true
}

// taskID はパスパラメーターの ID を解析します。整数でない ID は存在しないタスクとして扱います。
func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondMessage(c, http.StatusNotFound, msgTaskNotFound)
		return 0, false
	}
	return id, true
}

// GetTasksHandler はユーザーのタスク一覧を返します。
func (h *TaskHandler) GetTasksHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	tasks, err := h.taskService.ListTasks(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err, msgTitleRequired)
		return
	}
	if tasks == nil {
		tasks = []*models.Task{}
	}
	c.JSON(http.StatusOK, tasks)
}

// CreateTaskHandler は新しいタスクを作成します。
func (h *TaskHandler) CreateTaskHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, msgTitleRequired)
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.log, err, msgTitleRequired)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// GetTaskHandler は指定 ID のタスクを返します。
func (h *TaskHandler) GetTaskHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := taskID(c)
	if !ok {
		return
	}
	task, err := h.taskService.GetTask(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, h.log, err, msgTitleRequired)
		return
	}
	c.JSON(http.StatusOK, task)
}

// UpdateTaskHandler は指定 ID のタスクを部分更新します。ボディが空なら何も変更しません。
// タスクが見つからない場合はボディの内容に関係なく 404 を返します。
func (h *TaskHandler) UpdateTaskHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := taskID(c)
	if !ok {
		return
	}

	var req models.UpdateTaskRequest
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			// 存在しないタスクへの不正なボディは 404 を優先する
			if _, err := h.taskService.GetTask(c.Request.Context(), userID, id); err != nil {
				respondError(c, h.log, err, msgTitleRequired)
				return
			}
			respondMessage(c, http.StatusBadRequest, "Invalid request payload")
			return
		}
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), userID, id, req)
	if err != nil {
		respondError(c, h.log, err, msgTitleRequired)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteTaskHandler は指定 ID のタスクを削除します。
func (h *TaskHandler) DeleteTaskHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := taskID(c)
	if !ok {
		return
	}
	if err := h.taskService.DeleteTask(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.log, err, msgTitleRequired)
		return
	}
	c.Status(http.StatusNoContent)
}
