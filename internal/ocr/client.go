package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/dkphhh/easy-finance/internal/model"
)

// Recognizer OCR识别客户端接口，方便在编排层注入测试替身
type Recognizer interface {
	Recognize(ctx context.Context, req *RecognizeRequest) (*MixedInvoiceItem, error)
}

// ClientConfig OCR客户端配置
type ClientConfig struct {
	Action  string
	Timeout time.Duration
	// BaseURL 覆盖请求地址，留空时使用签名器生成的endpoint。
	// 仅用于测试替身服务器。
	BaseURL string
}

// Client 通用票据识别接口的HTTP客户端
type Client struct {
	signer     *Signer
	httpClient *http.Client
	action     string
	baseURL    string
}

// 确保实现 Recognizer 接口
var _ Recognizer = (*Client)(nil)

// NewClient 创建OCR客户端
func NewClient(signer *Signer, config ClientConfig) *Client {
	if config.Action == "" {
		config.Action = ActionRecognizeGeneralInvoice
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}

	return &Client{
		signer: signer,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		action:  config.Action,
		baseURL: config.BaseURL,
	}
}

// Recognize 提交一份文件的base64内容到OCR接口，返回第一张票据的识别结果。
// 响应缺少约定结构时返回 ProviderContractError 并附带原始响应。
func (c *Client) Recognize(ctx context.Context, req *RecognizeRequest) (*MixedInvoiceItem, error) {
	signed, err := c.signer.Build(c.action, req)
	if err != nil {
		return nil, err
	}

	endpoint := signed.Endpoint
	if c.baseURL != "" {
		endpoint = c.baseURL
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(signed.Payload))
	if err != nil {
		return nil, fmt.Errorf("构造HTTP请求失败: %w", err)
	}
	for key, value := range signed.Headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("请求OCR接口失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取OCR响应失败: %w", err)
	}

	return parseEnvelope(body)
}

// parseEnvelope 解析响应外层结构并定位第一张票据
func parseEnvelope(body []byte) (*MixedInvoiceItem, error) {
	var envelope responseEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, model.NewProviderContractError("OCR响应不是合法的JSON", string(body), err)
	}

	if envelope.Response.Error != nil {
		apiErr := envelope.Response.Error
		log.Printf("OCR接口返回错误: code=%s, message=%s, requestId=%s",
			apiErr.Code, apiErr.Message, envelope.Response.RequestID)
		return nil, model.NewProviderRequestError(apiErr.Code, apiErr.Message, envelope.Response.RequestID)
	}

	if len(envelope.Response.MixedInvoiceItems) == 0 {
		return nil, model.NewProviderContractError("OCR响应缺少MixedInvoiceItems", string(body), nil)
	}

	item := envelope.Response.MixedInvoiceItems[0]
	if item.SubType == "" {
		return nil, model.NewProviderContractError("OCR响应缺少SubType", string(body), nil)
	}

	return &item, nil
}
