// Package client reads snapshots from a running ward-census server.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"ward-census/internal/service"
)

const resultSuccess = 2000

// snapshotResponse 服务端响应信封
type snapshotResponse struct {
	Code    int                  `json:"code"`
	Type    string               `json:"type"`
	Message string               `json:"message"`
	Result  service.SnapshotView `json:"result"`
}

// CensusClient ward-census HTTP 客户端
type CensusClient struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

func NewCensusClient(baseURL string, logger *zap.Logger) *CensusClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Accept", "application/json")
	return &CensusClient{httpClient: client, logger: logger}
}

// Snapshot fetches the occupancy at the given "dd.mm.yyyy HH:MM" instant;
// an empty at asks for the server's current time.
func (c *CensusClient) Snapshot(ctx context.Context, at string) (*service.SnapshotView, error) {
	var out snapshotResponse
	req := c.httpClient.R().SetContext(ctx).SetResult(&out)
	if at != "" {
		req.SetQueryParam("at", at)
	}
	resp, err := req.Get("/api/v1/inpatient")
	if err != nil {
		return nil, fmt.Errorf("failed to call ward-census: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("ward-census returned HTTP %d", resp.StatusCode())
	}
	if out.Code != resultSuccess {
		c.logger.Error("ward-census returned error", zap.Int("code", out.Code), zap.String("message", out.Message))
		return nil, fmt.Errorf("ward-census error: %s", out.Message)
	}
	return &out.Result, nil
}

// ExportSnapshot downloads the snapshot workbook.
func (c *CensusClient) ExportSnapshot(ctx context.Context, at string) ([]byte, error) {
	req := c.httpClient.R().SetContext(ctx)
	if at != "" {
		req.SetQueryParam("at", at)
	}
	resp, err := req.Get("/api/v1/inpatient/export")
	if err != nil {
		return nil, fmt.Errorf("failed to call ward-census: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("ward-census returned HTTP %d", resp.StatusCode())
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		return nil, fmt.Errorf("ward-census export failed: %s", resp.String())
	}
	return resp.Body(), nil
}
