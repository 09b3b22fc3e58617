package http

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/NikhilKottoli/ImpactChain-sub001/internal/domain"
	"github.com/NikhilKottoli/ImpactChain-sub001/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type challengeResponse struct {
	Message string `json:"message"`
}

type tokenRequest struct {
	Principal string `json:"principal"`
	Message   string `json:"message"`
	Signature string `json:"signature"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

type attestRequest struct {
	ResourceIDs []uint64 `json:"resourceIds"`
}

type attestResponse struct {
	ResourceIDs []uint64 `json:"resourceIds"`
	TotalCost   string   `json:"totalCost"`
	Signature   string   `json:"signature"`
	Signer      string   `json:"signer"`
}

type initiateRequest struct {
	Amount    string `json:"amount"`
	Recipient string `json:"recipient"`
	Asset     string `json:"asset"`
	SubjectID int64  `json:"subjectId"`
}

type initiateResponse struct {
	ReferenceID string `json:"referenceId"`
}

type confirmRequest struct {
	ReferenceID           string `json:"referenceId"`
	ExternalTransactionID string `json:"externalTransactionId"`
}

type confirmResponse struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

type resourceRequest struct {
	ID          uint64   `json:"id"`
	Owner       string   `json:"owner"`
	ContentHash string   `json:"contentHash"`
	Labels      []string `json:"labels"`
	Price       string   `json:"price"`
}

type resourceResponse struct {
	ID          uint64   `json:"id"`
	Owner       string   `json:"owner"`
	ContentHash string   `json:"contentHash"`
	Labels      []string `json:"labels"`
	Price       string   `json:"price"`
	Active      bool     `json:"active"`
}

func (s *Server) handleChallenge(c *gin.Context) {
	if s.tokens == nil {
		writeErrorCode(c, http.StatusInternalServerError, "CONFIGURATION", "token issuer not configured")
		return
	}
	if !s.enforceRateLimit(c, "challenge") {
		return
	}
	principal := c.Query("principal")
	if principal == "" {
		writeErrorCode(c, http.StatusBadRequest, "VALIDATION", "principal query parameter is required")
		return
	}
	challenge, err := s.tokens.Challenge(principal)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, challengeResponse{Message: challenge.Message})
}

func (s *Server) handleToken(c *gin.Context) {
	if s.tokens == nil {
		writeErrorCode(c, http.StatusInternalServerError, "CONFIGURATION", "token issuer not configured")
		return
	}
	if !s.enforceRateLimit(c, "token") {
		return
	}
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	signature, err := decodeHexField(req.Signature)
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_SIGNATURE", "signature is not valid hex")
		return
	}
	token, err := s.tokens.Issue(c.Request.Context(), req.Principal, req.Message, signature)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleAttest(c *gin.Context) {
	if s.attest == nil {
		writeErrorCode(c, http.StatusInternalServerError, "CONFIGURATION", "attestation signer not configured")
		return
	}
	var req attestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	attestation, err := s.attest.Attest(c.Request.Context(), req.ResourceIDs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, attestResponse{
		ResourceIDs: attestation.ResourceIDs,
		TotalCost:   attestation.TotalCost.String(),
		Signature:   "0x" + hex.EncodeToString(attestation.Signature),
		Signer:      attestation.Signer,
	})
}

func (s *Server) handleInitiate(c *gin.Context) {
	if s.payments == nil {
		writeErrorCode(c, http.StatusInternalServerError, "CONFIGURATION", "settlement authority not configured")
		return
	}
	if !s.enforceRateLimit(c, "payment:initiate") {
		return
	}
	var req initiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	referenceID, err := s.payments.Initiate(c.Request.Context(), usecase.InitiateRequest{
		Amount:    req.Amount,
		Recipient: req.Recipient,
		Asset:     req.Asset,
		SubjectID: req.SubjectID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, initiateResponse{ReferenceID: referenceID})
}

func (s *Server) handleConfirm(c *gin.Context) {
	if s.payments == nil {
		writeErrorCode(c, http.StatusInternalServerError, "CONFIGURATION", "settlement authority not configured")
		return
	}
	if !s.enforceRateLimit(c, "payment:confirm") {
		return
	}
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	result, err := s.payments.Confirm(c.Request.Context(), req.ReferenceID, req.ExternalTransactionID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, confirmResponse{
		Success: result.Success,
		Reason:  result.Outcome.Reason(),
	})
}

func (s *Server) handleRegisterResource(c *gin.Context) {
	if !s.requireAdmin(c) {
		return
	}
	if s.catalog == nil {
		writeErrorCode(c, http.StatusInternalServerError, "CONFIGURATION", "resource catalog not configured")
		return
	}
	var req resourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	if req.ID == 0 {
		writeErrorCode(c, http.StatusBadRequest, "VALIDATION", "id is required")
		return
	}
	price := decimal.Zero
	if req.Price != "" {
		parsed, err := decimal.NewFromString(req.Price)
		if err != nil || parsed.Sign() < 0 {
			writeErrorCode(c, http.StatusBadRequest, "VALIDATION", "price must be a non-negative decimal")
			return
		}
		price = parsed
	}
	res := domain.Resource{
		ID:          req.ID,
		Owner:       req.Owner,
		ContentHash: req.ContentHash,
		Labels:      req.Labels,
		Price:       price,
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.catalog.Register(c.Request.Context(), res); err != nil {
		if errors.Is(err, domain.ErrReplay) {
			writeErrorCode(c, http.StatusConflict, "ALREADY_EXISTS", fmt.Sprintf("resource %d already registered", req.ID))
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": req.ID})
}

func (s *Server) handleGetResource(c *gin.Context) {
	if s.catalog == nil {
		writeErrorCode(c, http.StatusInternalServerError, "CONFIGURATION", "resource catalog not configured")
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "VALIDATION", "invalid resource id")
		return
	}
	res, err := s.catalog.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resourceResponse{
		ID:          res.ID,
		Owner:       res.Owner,
		ContentHash: res.ContentHash,
		Labels:      res.Labels,
		Price:       res.Price.String(),
		Active:      res.Active,
	})
}

func (s *Server) requireAdmin(c *gin.Context) bool {
	if s.adminAPIKey == "" {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "admin key required")
		return false
	}
	key := c.GetHeader("X-Admin-Key")
	if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(s.adminAPIKey)) != 1 {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid admin key")
		return false
	}
	return true
}

func decodeHexField(value string) ([]byte, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "0x")
	if trimmed == "" {
		return nil, errors.New("empty hex value")
	}
	return hex.DecodeString(trimmed)
}

func writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrValidation):
		status, code = http.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrInvalidSignature):
		status, code = http.StatusBadRequest, "INVALID_SIGNATURE"
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrReplay):
		status, code = http.StatusConflict, "REPLAY"
	case errors.Is(err, domain.ErrExternalService):
		status, code = http.StatusBadGateway, "EXTERNAL_SERVICE"
	case errors.Is(err, domain.ErrConfiguration):
		status, code = http.StatusInternalServerError, "CONFIGURATION"
	case errors.Is(err, domain.ErrStorage):
		status, code = http.StatusInternalServerError, "STORAGE"
	}
	writeErrorCode(c, status, code, err.Error())
}

func writeErrorCode(c *gin.Context, status int, code, message string) {
	c.JSON(status, errorResponse{
		Code:    code,
		Message: message,
	})
}
