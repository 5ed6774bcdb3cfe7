package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"composer-backend/application/commands"
	"composer-backend/application/commands/bus"
	"composer-backend/application/services"
	"composer-backend/pkg/common"
	"composer-backend/pkg/utils"
)

// EdgeHandler handles edge-related HTTP requests
type EdgeHandler struct {
	commandBus      *bus.CommandBus
	deletionService *services.DeletionService
	logger          *zap.Logger
}

// NewEdgeHandler creates a new edge handler
func NewEdgeHandler(
	commandBus *bus.CommandBus,
	deletionService *services.DeletionService,
	logger *zap.Logger,
) *EdgeHandler {
	return &EdgeHandler{
		commandBus:      commandBus,
		deletionService: deletionService,
		logger:          logger,
	}
}

// ConnectNodesRequest represents the request body for connecting two nodes
type ConnectNodesRequest struct {
	SourceID     string `json:"source_id" validate:"required,uuid"`
	TargetID     string `json:"target_id" validate:"required,uuid"`
	SourceHandle string `json:"source_handle" validate:"required"`
	TargetHandle string `json:"target_handle" validate:"required"`
}

// ConnectNodes handles POST /flows/{flowID}/edges. The connection is
// rejected unless the source output port and target input port carry
// the same data type.
func (h *EdgeHandler) ConnectNodes(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")

	var req ConnectNodesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	cmd := commands.ConnectNodesCommand{
		FlowID:       flowID,
		SourceID:     req.SourceID,
		TargetID:     req.TargetID,
		SourceHandle: req.SourceHandle,
		TargetHandle: req.TargetHandle,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		respondAppError(h.logger, w, "Failed to connect nodes", err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, map[string]string{"message": "Nodes connected"})
}

// BulkDeleteEdgesRequest represents the request body for deleting edges
type BulkDeleteEdgesRequest struct {
	EdgeIDs []string `json:"edge_ids" validate:"required,min=1,max=100"`
}

// BulkDeleteEdgesResponse reports how many edges were actually removed
type BulkDeleteEdgesResponse struct {
	DeletedCount int `json:"deleted_count"`
}

// BulkDeleteEdges handles POST /flows/{flowID}/edges/bulk-delete. IDs
// that don't resolve to edges of this flow are skipped, not errors.
func (h *EdgeHandler) BulkDeleteEdges(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")

	var req BulkDeleteEdgesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	count, err := h.deletionService.DeleteEdges(r.Context(), flowID, req.EdgeIDs)
	if err != nil {
		respondAppError(h.logger, w, "Failed to delete edges", err)
		return
	}

	common.RespondJSON(w, http.StatusOK, BulkDeleteEdgesResponse{DeletedCount: count})
}

// DeleteEdge handles DELETE /flows/{flowID}/edges/{edgeID}
func (h *EdgeHandler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")
	edgeID := chi.URLParam(r, "edgeID")

	count, err := h.deletionService.DeleteEdges(r.Context(), flowID, []string{edgeID})
	if err != nil {
		respondAppError(h.logger, w, "Failed to delete edge", err)
		return
	}
	if count == 0 {
		common.RespondError(w, http.StatusNotFound, "NOT_FOUND", "edge not found")
		return
	}

	common.RespondJSON(w, http.StatusOK, BulkDeleteEdgesResponse{DeletedCount: count})
}
