package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"

	"github.com/vncsmyrnk/livepoll/internal/core/ports"
	"github.com/vncsmyrnk/livepoll/internal/core/services"
)

const (
	codeInvalidArgument = "invalid_argument"
	codeInternal        = "internal"
)

// errorResponse is the Connect error body.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type VotingHandler struct {
	service ports.VotingService
	logger  *slog.Logger
}

func NewVotingHandler(service ports.VotingService, logger *slog.Logger) *VotingHandler {
	return &VotingHandler{
		service: service,
		logger:  services.ResolveLogger(logger),
	}
}

func (h *VotingHandler) GetVotingOptions(w http.ResponseWriter, r *http.Request) {
	var req ports.GetVotingOptionsRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "invalid request body")
		return
	}

	resp, err := h.service.GetVotingOptions(r.Context(), req)
	if err != nil {
		h.logger.Error("failed to get voting options", "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *VotingHandler) Vote(w http.ResponseWriter, r *http.Request) {
	var req ports.VoteRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "invalid request body")
		return
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	ctx := services.ContextWithVoterIP(r.Context(), ip)

	resp, err := h.service.Vote(ctx, req)
	if err != nil {
		h.logger.Error("failed to vote", "option_id", req.OptionID, "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *VotingHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	var req ports.GetResultsRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "invalid request body")
		return
	}

	resp, err := h.service.GetResults(r.Context(), req)
	if err != nil {
		h.logger.Error("failed to get results", "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// decodeRequest treats an empty body as {}.
func decodeRequest(r *http.Request, v any) error {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
