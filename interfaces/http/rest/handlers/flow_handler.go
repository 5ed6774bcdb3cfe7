package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"composer-backend/application/commands"
	"composer-backend/application/commands/bus"
	"composer-backend/application/queries"
	querybus "composer-backend/application/queries/bus"
	"composer-backend/application/services"
	"composer-backend/pkg/common"
	pkgerrors "composer-backend/pkg/errors"
	"composer-backend/pkg/utils"
)

// FlowHandler handles flow-related HTTP requests
type FlowHandler struct {
	commandBus      *bus.CommandBus
	queryBus        *querybus.QueryBus
	deletionService *services.DeletionService
	logger          *zap.Logger
}

// NewFlowHandler creates a new flow handler
func NewFlowHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	deletionService *services.DeletionService,
	logger *zap.Logger,
) *FlowHandler {
	return &FlowHandler{
		commandBus:      commandBus,
		queryBus:        queryBus,
		deletionService: deletionService,
		logger:          logger,
	}
}

// CreateFlowRequest represents the request body for creating a flow
type CreateFlowRequest struct {
	Name        string `json:"name" validate:"omitempty,max=120"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

// CreateFlowResponse represents the response for creating a flow
type CreateFlowResponse struct {
	ID string `json:"id"`
}

// CreateFlow handles POST /flows
func (h *FlowHandler) CreateFlow(w http.ResponseWriter, r *http.Request) {
	var req CreateFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	flowID := uuid.New().String()
	cmd := commands.CreateFlowCommand{
		FlowID:      flowID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.respondCommandError(w, "Failed to create flow", err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, CreateFlowResponse{ID: flowID})
}

// ListFlows handles GET /flows
func (h *FlowHandler) ListFlows(w http.ResponseWriter, r *http.Request) {
	params := common.ExtractPaginationParams(r)

	result, err := h.queryBus.Ask(r.Context(), queries.ListFlowsQuery{
		Page:     params.Page,
		PageSize: params.PageSize,
	})
	if err != nil {
		h.respondCommandError(w, "Failed to list flows", err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// GetFlow handles GET /flows/{flowID}
func (h *FlowHandler) GetFlow(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")

	result, err := h.queryBus.Ask(r.Context(), queries.GetFlowQuery{FlowID: flowID})
	if err != nil {
		h.respondCommandError(w, "Failed to get flow", err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// GetFlowGraph handles GET /flows/{flowID}/graph
func (h *FlowHandler) GetFlowGraph(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")

	result, err := h.queryBus.Ask(r.Context(), queries.GetFlowGraphQuery{FlowID: flowID})
	if err != nil {
		h.respondCommandError(w, "Failed to get flow graph", err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// DeleteFlowResponse reports whether anything was actually deleted
type DeleteFlowResponse struct {
	Deleted bool `json:"deleted"`
}

// DeleteFlow handles DELETE /flows/{flowID}. Deleting an absent flow is
// not an error; the response says nothing was deleted.
func (h *FlowHandler) DeleteFlow(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")

	deleted, err := h.deletionService.DeleteFlow(r.Context(), flowID)
	if err != nil {
		h.respondCommandError(w, "Failed to delete flow", err)
		return
	}

	common.RespondJSON(w, http.StatusOK, DeleteFlowResponse{Deleted: deleted})
}

// respondCommandError maps application errors onto HTTP responses
func (h *FlowHandler) respondCommandError(w http.ResponseWriter, msg string, err error) {
	respondAppError(h.logger, w, msg, err)
}

// respondAppError is shared across the REST handlers
func respondAppError(logger *zap.Logger, w http.ResponseWriter, msg string, err error) {
	if appErr := pkgerrors.GetAppError(err); appErr != nil {
		common.RespondError(w, pkgerrors.HTTPStatusOf(appErr), string(appErr.Type), appErr.Message)
		return
	}
	if strings.Contains(err.Error(), "validation failed") || strings.Contains(err.Error(), "invalid") {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	logger.Error(msg, zap.Error(err))
	common.RespondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", msg)
}
