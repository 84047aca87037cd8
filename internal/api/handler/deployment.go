package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/modelhost/internal/api/request"
	"github.com/edvin/modelhost/internal/api/response"
	"github.com/edvin/modelhost/internal/deploy"
)

type Deployment struct {
	ctrl *deploy.Controller
}

func NewDeployment(ctrl *deploy.Controller) *Deployment {
	return &Deployment{ctrl: ctrl}
}

func (h *Deployment) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateDeployment
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := h.ctrl.Create(r.Context(), req.Params())
	if err != nil {
		switch {
		case errors.Is(err, deploy.ErrPortsExhausted):
			response.WriteError(w, http.StatusServiceUnavailable, err.Error())
		case errors.Is(err, deploy.ErrLaunchFailed):
			// The failed record is registered for audit; the call still failed.
			response.WriteError(w, http.StatusInternalServerError, err.Error())
		default:
			response.WriteError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	response.WriteJSON(w, http.StatusCreated, rec)
}

func (h *Deployment) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := h.ctrl.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, deploy.ErrNotFound) {
			response.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, rec)
}

func (h *Deployment) List(w http.ResponseWriter, r *http.Request) {
	recs := h.ctrl.List(r.Context(), request.ParseDeploymentFilter(r))
	response.WriteJSON(w, http.StatusOK, recs)
}

// Removed is the receipt returned when a deployment is deleted.
type Removed struct {
	Detail       string `json:"detail"`
	DeploymentID string `json:"deployment_id"`
}

func (h *Deployment) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, err = h.ctrl.Delete(r.Context(), id, request.ParseForce(r))
	if err != nil {
		switch {
		case errors.Is(err, deploy.ErrNotFound):
			response.WriteError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, deploy.ErrStopTimeout):
			response.WriteError(w, http.StatusConflict, err.Error())
		default:
			response.WriteError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	response.WriteJSON(w, http.StatusOK, Removed{Detail: "deployment removed", DeploymentID: id})
}
