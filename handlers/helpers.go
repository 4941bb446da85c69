package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/Benjaminax/camous-taskboard-system/services"
	"github.com/go-chi/chi/v5"
)

type jsonResponse map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // ошибка программиста: передан не указатель
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	js, err := json.Marshal(data)
	if err != nil {
		slog.Error("failed to marshal JSON response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(js); err != nil {
		slog.Error("failed to write JSON response", slog.Any("error", err))
	}
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, jsonResponse{"error": message})
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err))
	errorResponse(w, http.StatusInternalServerError, "Internal server error")
}

func badRequestResponse(w http.ResponseWriter, err error) {
	errorResponse(w, http.StatusBadRequest, err.Error())
}

func notFoundResponse(w http.ResponseWriter, err error) {
	errorResponse(w, http.StatusNotFound, err.Error())
}

func forbiddenResponse(w http.ResponseWriter, err error) {
	errorResponse(w, http.StatusForbidden, err.Error())
}

// maxUploadSize ограничивает размер загружаемых изображений.
const maxUploadSize = 10 << 20 // 10MB

func formFile(r *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, nil, fmt.Errorf("failed to parse multipart form: %w", err)
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, nil, fmt.Errorf("missing file field %q", field)
	}
	return file, header, nil
}

// urlParamInt достает целочисленный параметр пути.
func urlParamInt(r *http.Request, name string) (int, error) {
	value := chi.URLParam(r, name)
	id, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s parameter", name)
	}
	return id, nil
}

// mapServiceErrorToHTTP преобразует ошибки сервисного слоя в HTTP-ответы.
// Конфликты исторически отдаются как 400: клиент сопоставляет тексты.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrTaskNotFound):
		notFoundResponse(w, err)

	case errors.Is(err, services.ErrUserAlreadyExists),
		errors.Is(err, services.ErrAlreadyMember),
		errors.Is(err, services.ErrUserAlreadyMember),
		errors.Is(err, services.ErrJoinRequestPending),
		errors.Is(err, services.ErrInvalidEmailFormat),
		errors.Is(err, services.ErrTeamNameRequired),
		errors.Is(err, services.ErrTaskTitleRequired),
		errors.Is(err, services.ErrMissingUserOrEmail),
		errors.Is(err, services.ErrNoUpdates),
		errors.Is(err, services.ErrCreatorCannotLeave),
		errors.Is(err, services.ErrAdminSelfDelete),
		errors.Is(err, services.ErrCurrentPasswordWrong),
		errors.Is(err, services.ErrUnsupportedImageFormat),
		errors.Is(err, services.ErrInvalidCredentials):
		badRequestResponse(w, err)

	case errors.Is(err, services.ErrTeamEditForbidden),
		errors.Is(err, services.ErrTeamDeleteForbidden),
		errors.Is(err, services.ErrTaskDeleteForbidden),
		errors.Is(err, services.ErrTaskCreateForbidden),
		errors.Is(err, services.ErrTaskUpdateForbidden),
		errors.Is(err, services.ErrAdminRequired):
		forbiddenResponse(w, err)

	default:
		serverErrorResponse(w, r, err)
	}
}
