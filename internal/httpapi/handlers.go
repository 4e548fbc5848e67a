package httpapi

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"gameitem-nft/internal/config"
	"gameitem-nft/internal/domain"
)

// mintRequest is the wire form of a mint call. The optional override fields
// let one request target a different contract or endpoint without touching
// the persisted defaults.
type mintRequest struct {
	Destination    string           `json:"destination"`
	ImageReference string           `json:"imageReference"`
	Traits         map[string]any   `json:"traits"`
	Override       *config.Override `json:"override,omitempty"`
}

type mintResponse struct {
	TxHash         string         `json:"txHash"`
	BlockNumber    uint64         `json:"blockNumber"`
	TokenID        *string        `json:"tokenId"` // null when unknown
	Destination    string         `json:"destination"`
	ImageReference string         `json:"imageReference"`
	Traits         map[string]any `json:"traits"`
	EntryPoint     string         `json:"entryPoint"`
}

func (s *Server) handleMint(w http.ResponseWriter, r *http.Request) {
	var req mintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("malformed request body: %v", err)})
		return
	}

	result, err := s.service.Mint(r.Context(), &domain.MintRequest{
		Destination:    req.Destination,
		ImageReference: req.ImageReference,
		Traits:         req.Traits,
	}, req.Override)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := mintResponse{
		TxHash:         result.TxHash,
		BlockNumber:    result.BlockNumber,
		Destination:    result.Destination,
		ImageReference: result.ImageReference,
		Traits:         result.Traits,
		EntryPoint:     result.EntryPoint,
	}
	if result.TokenID != nil {
		id := result.TokenID.String()
		resp.TokenID = &id
	}
	writeJSON(w, http.StatusCreated, resp)
}

// tokenView is the wire form of a retrieved token: metadata fields flattened
// to the top level, with the structured metadata alongside.
type tokenView struct {
	TokenID       string           `json:"tokenId"`
	Owner         string           `json:"owner"`
	Name          string           `json:"name,omitempty"`
	Description   string           `json:"description,omitempty"`
	Image         string           `json:"image,omitempty"`
	Traits        map[string]any   `json:"traits,omitempty"`
	Metadata      *domain.Metadata `json:"metadata"`
	MetadataError string           `json:"metadataError,omitempty"`
}

func toWireView(v *domain.TokenView) tokenView {
	out := tokenView{
		Owner:         v.Owner,
		Name:          v.Name,
		Description:   v.Description,
		Image:         v.Image,
		Traits:        v.Traits,
		Metadata:      v.Metadata,
		MetadataError: v.MetadataError,
	}
	if v.TokenID != nil {
		out.TokenID = v.TokenID.String()
	}
	return out
}

func (s *Server) handleGetToken(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := parseTokenID(w, r)
	if !ok {
		return
	}

	view, err := s.service.GetToken(r.Context(), tokenID, overrideFromQuery(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWireView(view))
}

func (s *Server) handleListOwned(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	views, err := s.service.ListOwned(r.Context(), address, overrideFromQuery(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := make([]tokenView, 0, len(views))
	for _, v := range views {
		out = append(out, toWireView(v))
	}
	writeJSON(w, http.StatusOK, map[string]any{"owner": address, "tokens": out})
}

func (s *Server) handleVerifyOwnership(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := parseTokenID(w, r)
	if !ok {
		return
	}
	address := chi.URLParam(r, "address")

	result, err := s.service.VerifyOwnership(r.Context(), tokenID, address, overrideFromQuery(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tokenId":     tokenID.String(),
		"address":     address,
		"isOwner":     result.IsOwner,
		"actualOwner": result.ActualOwner,
	})
}

type configBody struct {
	ContractAddress string `json:"contractAddress"`
	OwnerAddress    string `json:"ownerAddress"`
	UpdatedAt       int64  `json:"updatedAt,omitempty"`
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	if s.configStore == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "no configuration store wired"})
		return
	}

	cfg, err := s.configStore.Get(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, configBody{
		ContractAddress: cfg.ContractAddress,
		OwnerAddress:    cfg.OwnerAddress,
		UpdatedAt:       cfg.UpdatedAt,
	})
}

func (s *Server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	if s.configStore == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "no configuration store wired"})
		return
	}

	var body configBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("malformed request body: %v", err)})
		return
	}

	err := s.configStore.Put(r.Context(), &domain.ContractConfig{
		ContractAddress: body.ContractAddress,
		OwnerAddress:    body.OwnerAddress,
		UpdatedAt:       time.Now().UnixMilli(),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseTokenID reads the tokenID route parameter as a decimal integer.
func parseTokenID(w http.ResponseWriter, r *http.Request) (*big.Int, bool) {
	raw := chi.URLParam(r, "tokenID")
	id, ok := new(big.Int).SetString(raw, 10)
	if !ok || id.Sign() < 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("malformed token identifier %q", raw)})
		return nil, false
	}
	return id, true
}

// overrideFromQuery lifts per-request overrides from query parameters on
// read endpoints.
func overrideFromQuery(r *http.Request) *config.Override {
	q := r.URL.Query()
	contract := q.Get("contract")
	endpoint := q.Get("endpoint")
	if contract == "" && endpoint == "" {
		return nil
	}
	return &config.Override{ContractAddress: contract, EndpointURL: endpoint}
}
