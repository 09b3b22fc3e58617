package settlement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/NikhilKottoli/ImpactChain-sub001/internal/domain"

	"github.com/shopspring/decimal"
)

const maxResponseBytes = 1 << 20

// HTTPClient queries the settlement authority's transaction API. Callers are
// expected to bound each call with a context timeout.
type HTTPClient struct {
	baseURL string
	apiKey  string
	httpDo  func(*http.Request) (*http.Response, error)
}

func NewHTTPClient(baseURL, apiKey string, httpClient *http.Client) (*HTTPClient, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("%w: settlement base url is required", domain.ErrConfiguration)
	}
	doer := http.DefaultClient.Do
	if httpClient != nil {
		doer = httpClient.Do
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpDo:  doer,
	}, nil
}

type transactionPayload struct {
	TransactionID string `json:"transactionId"`
	Reference     string `json:"reference"`
	Status        string `json:"status"`
	Amount        string `json:"amount"`
	Recipient     string `json:"recipient"`
	Asset         string `json:"asset"`
}

func (c *HTTPClient) GetTransaction(ctx context.Context, txID string) (*domain.SettlementTransaction, error) {
	if strings.TrimSpace(txID) == "" {
		return nil, fmt.Errorf("%w: transaction id is required", domain.ErrValidation)
	}
	endpoint := c.baseURL + "/v1/transactions/" + url.PathEscape(txID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build settlement request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpDo(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: settlement authority timed out", domain.ErrExternalService)
		}
		return nil, fmt.Errorf("%w: settlement authority unreachable: %v", domain.ErrExternalService, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read settlement response: %v", domain.ErrExternalService, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: transaction %s unknown to settlement authority", domain.ErrNotFound, txID)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: settlement authority returned %d", domain.ErrExternalService, resp.StatusCode)
	}

	var payload transactionPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode settlement response: %v", domain.ErrExternalService, err)
	}
	amount, err := decimal.NewFromString(payload.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: settlement amount %q is not decimal", domain.ErrExternalService, payload.Amount)
	}
	return &domain.SettlementTransaction{
		ID:        payload.TransactionID,
		Reference: payload.Reference,
		Status:    payload.Status,
		Amount:    amount,
		Recipient: payload.Recipient,
		Asset:     payload.Asset,
	}, nil
}
