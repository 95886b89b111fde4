package api

import (
	"net/http"
	"strings"

	"github.com/campusfound/campusfound/internal/model"
	"github.com/campusfound/campusfound/internal/workflow"
)

// ClaimsHandler handles claim submission and resolution endpoints.
type ClaimsHandler struct {
	Workflow *workflow.Service
}

type createClaimRequest struct {
	ItemID              int64  `json:"itemId"`
	Message             string `json:"message"`
	VerificationDetails string `json:"verificationDetails"`
}

func (req *createClaimRequest) validate() error {
	req.Message = strings.TrimSpace(req.Message)
	req.VerificationDetails = strings.TrimSpace(req.VerificationDetails)
	if req.ItemID <= 0 {
		return model.ValidationError("itemId required")
	}
	if req.Message == "" {
		return model.ValidationError("message required")
	}
	return nil
}

type updateClaimRequest struct {
	Status string `json:"status"`
}

func (req *updateClaimRequest) validate() error {
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	if !model.IsTerminal(req.Status) {
		return model.ValidationError("status must be approved or rejected")
	}
	return nil
}

// Create handles POST /api/claims.
func (h *ClaimsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createClaimRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.Workflow.CreateClaim(r.Context(), callerFrom(r), workflow.CreateClaimInput{
		ItemID:              req.ItemID,
		Message:             req.Message,
		VerificationDetails: req.VerificationDetails,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	message := "Claim submitted successfully. The item owner has been notified via email."
	if !result.Notified {
		message = "Claim submitted successfully."
	}
	jsonSuccess(w, http.StatusCreated, map[string]any{"claim": result.Claim, "message": message})
}

// Mine handles GET /api/claims/my.
func (h *ClaimsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	claims, err := h.Workflow.ListMyClaims(r.Context(), callerFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeClaims(w, claims)
}

// ListForItem handles GET /api/claims/item/{itemId}.
func (h *ClaimsHandler) ListForItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "itemId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	claims, err := h.Workflow.ListItemClaims(r.Context(), callerFrom(r), itemID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeClaims(w, claims)
}

func writeClaims(w http.ResponseWriter, claims []model.Claim) {
	if claims == nil {
		claims = []model.Claim{}
	}
	jsonSuccess(w, http.StatusOK, map[string]any{"claims": claims})
}

// UpdateStatus handles PUT /api/claims/{id}.
func (h *ClaimsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req updateClaimRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	claim, err := h.Workflow.UpdateClaimStatus(r.Context(), callerFrom(r), id, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonSuccess(w, http.StatusOK, map[string]any{"claim": claim})
}
