package handlers

import (
	"net/http"
	"strconv"

	"github.com/Benjaminax/camous-taskboard-system/middleware"
	"github.com/Benjaminax/camous-taskboard-system/models"
	"github.com/Benjaminax/camous-taskboard-system/services"
)

// userTasksDefaultLimit — размер ленты последних задач пользователя.
const userTasksDefaultLimit = 10

type TaskHandler struct {
	taskService services.TaskService
}

func NewTaskHandler(taskService services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		errorResponse(w, http.StatusUnauthorized, "Missing token")
		return
	}

	var input services.CreateTaskInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}
	input.CreatorID = userID

	task, err := h.taskService.CreateTask(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		errorResponse(w, http.StatusUnauthorized, "Missing token")
		return
	}

	taskID, err := urlParamInt(r, "taskID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input services.UpdateTaskInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	task, err := h.taskService.UpdateTask(r.Context(), taskID, input, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		errorResponse(w, http.StatusUnauthorized, "Missing token")
		return
	}

	taskID, err := urlParamInt(r, "taskID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), taskID, userID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"message": "Task deleted successfully"})
}

// TeamTasks возвращает задачи команды, опционально фильтруя по ?status=.
func (h *TaskHandler) TeamTasks(w http.ResponseWriter, r *http.Request) {
	teamID, err := urlParamInt(r, "teamID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var status *models.TaskStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := models.TaskStatus(raw)
		status = &s
	}

	tasks, err := h.taskService.ListTeamTasks(r.Context(), teamID, status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}

// UserTasks возвращает последние задачи, где пользователь автор или
// исполнитель.
func (h *TaskHandler) UserTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		errorResponse(w, http.StatusUnauthorized, "Missing token")
		return
	}

	limit := userTasksDefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	tasks, err := h.taskService.ListUserTasks(r.Context(), userID, limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}
