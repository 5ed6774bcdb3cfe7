package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"composer-backend/application/commands"
	"composer-backend/application/commands/bus"
	"composer-backend/application/services"
	"composer-backend/pkg/common"
	"composer-backend/pkg/utils"
)

// NodeHandler handles node-related HTTP requests
type NodeHandler struct {
	commandBus      *bus.CommandBus
	deletionService *services.DeletionService
	logger          *zap.Logger
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(
	commandBus *bus.CommandBus,
	deletionService *services.DeletionService,
	logger *zap.Logger,
) *NodeHandler {
	return &NodeHandler{
		commandBus:      commandBus,
		deletionService: deletionService,
		logger:          logger,
	}
}

// CreateNodeRequest represents the request body for placing a node
type CreateNodeRequest struct {
	NodeType string          `json:"node_type" validate:"required"`
	Label    string          `json:"label" validate:"omitempty,max=120"`
	X        float64         `json:"x"`
	Y        float64         `json:"y"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// CreateNodeResponse represents the response for placing a node
type CreateNodeResponse struct {
	ID string `json:"id"`
}

// CreateNode handles POST /flows/{flowID}/nodes
func (h *NodeHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")

	var req CreateNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	nodeID := uuid.New().String()
	cmd := commands.CreateNodeCommand{
		NodeID:   nodeID,
		FlowID:   flowID,
		NodeType: req.NodeType,
		Label:    req.Label,
		X:        req.X,
		Y:        req.Y,
		Payload:  req.Payload,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		respondAppError(h.logger, w, "Failed to create node", err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, CreateNodeResponse{ID: nodeID})
}

// UpdateNodeRequest represents the request body for mutating a node.
// Omitted fields are left unchanged; x and y travel together.
type UpdateNodeRequest struct {
	Label   *string         `json:"label,omitempty" validate:"omitempty,max=120"`
	X       *float64        `json:"x,omitempty"`
	Y       *float64        `json:"y,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// UpdateNode handles PATCH /flows/{flowID}/nodes/{nodeID}
func (h *NodeHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")

	var req UpdateNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	cmd := commands.UpdateNodeCommand{
		NodeID:  nodeID,
		Label:   req.Label,
		X:       req.X,
		Y:       req.Y,
		Payload: req.Payload,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		respondAppError(h.logger, w, "Failed to update node", err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "Node updated"})
}

// BulkDeleteNodesRequest represents the request body for deleting nodes
type BulkDeleteNodesRequest struct {
	NodeIDs []string `json:"node_ids" validate:"required,min=1,max=100"`
}

// BulkDeleteNodesResponse lists the labels of the nodes that were removed
type BulkDeleteNodesResponse struct {
	DeletedLabels []string `json:"deleted_labels"`
	DeletedCount  int      `json:"deleted_count"`
}

// BulkDeleteNodes handles POST /flows/{flowID}/nodes/bulk-delete. IDs
// that don't resolve to nodes of this flow are skipped, not errors.
func (h *NodeHandler) BulkDeleteNodes(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")

	var req BulkDeleteNodesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	labels, err := h.deletionService.DeleteNodes(r.Context(), flowID, req.NodeIDs)
	if err != nil {
		respondAppError(h.logger, w, "Failed to delete nodes", err)
		return
	}

	common.RespondJSON(w, http.StatusOK, BulkDeleteNodesResponse{
		DeletedLabels: labels,
		DeletedCount:  len(labels),
	})
}

// DeleteNode handles DELETE /flows/{flowID}/nodes/{nodeID}
func (h *NodeHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")
	nodeID := chi.URLParam(r, "nodeID")

	labels, err := h.deletionService.DeleteNodes(r.Context(), flowID, []string{nodeID})
	if err != nil {
		respondAppError(h.logger, w, "Failed to delete node", err)
		return
	}
	if len(labels) == 0 {
		common.RespondError(w, http.StatusNotFound, "NOT_FOUND", "node not found")
		return
	}

	common.RespondJSON(w, http.StatusOK, BulkDeleteNodesResponse{
		DeletedLabels: labels,
		DeletedCount:  len(labels),
	})
}
