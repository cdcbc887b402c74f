package ocr

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dkphhh/easy-finance/internal/model"
)

func TestParseEnvelope_Success(t *testing.T) {
	body := `{
		"Response": {
			"RequestId": "req-1",
			"MixedInvoiceItems": [
				{
					"SubType": "OtherInvoice",
					"SingleInvoiceInfos": {
						"OtherInvoice": {"OtherInvoiceListItems": [{"Name": "付款人名称", "Value": "张三"}]}
					}
				}
			]
		}
	}`

	item, err := parseEnvelope([]byte(body))
	if err != nil {
		t.Fatalf("parseEnvelope failed: %v", err)
	}
	if item.SubType != "OtherInvoice" {
		t.Errorf("Expected SubType 'OtherInvoice', got '%s'", item.SubType)
	}
	if _, ok := item.SingleInvoiceInfos["OtherInvoice"]; !ok {
		t.Error("Expected SingleInvoiceInfos to keep raw JSON by subtype")
	}
}

func TestParseEnvelope_ContractViolations(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "非JSON响应",
			body: `<html>bad gateway</html>`,
		},
		{
			name: "缺少MixedInvoiceItems",
			body: `{"Response": {"RequestId": "req-2"}}`,
		},
		{
			name: "缺少SubType",
			body: `{"Response": {"MixedInvoiceItems": [{"SingleInvoiceInfos": {}}]}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseEnvelope([]byte(tt.body))
			if err == nil {
				t.Fatal("Expected contract error")
			}
			if !model.IsErrorType(err, model.ErrCodeProviderContract) {
				t.Errorf("Expected ErrCodeProviderContract, got %v", err)
			}
			// 原始响应必须附在错误里供排查
			contractErr, ok := err.(*model.ProviderContractError)
			if !ok {
				t.Fatalf("Expected *ProviderContractError, got %T", err)
			}
			if !strings.Contains(contractErr.RawResponse, tt.body[:10]) {
				t.Error("Expected raw response to be attached")
			}
		})
	}
}

func TestParseEnvelope_ProviderError(t *testing.T) {
	body := `{"Response": {"RequestId": "req-3", "Error": {"Code": "AuthFailure.SignatureFailure", "Message": "签名验证失败"}}}`

	_, err := parseEnvelope([]byte(body))
	if err == nil {
		t.Fatal("Expected provider error")
	}
	if !model.IsErrorType(err, model.ErrCodeProviderRequest) {
		t.Errorf("Expected ErrCodeProviderRequest, got %v", err)
	}
}

func TestClient_Recognize(t *testing.T) {
	var gotHeaders http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"Response": {"MixedInvoiceItems": [{"SubType": "VatCommonInvoice", "SingleInvoiceInfos": {"VatCommonInvoice": {}}}]}}`))
	}))
	defer server.Close()

	signer := NewSigner(testCreds(), WithClock(fixedClock()))
	client := NewClient(signer, ClientConfig{BaseURL: server.URL})

	item, err := client.Recognize(context.Background(), &RecognizeRequest{ImageBase64: "aW1n", EnableMultiplePage: false})
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if item.SubType != "VatCommonInvoice" {
		t.Errorf("Expected SubType 'VatCommonInvoice', got '%s'", item.SubType)
	}
	if gotHeaders.Get("Authorization") == "" {
		t.Error("Expected signed Authorization header on the wire")
	}
	if gotHeaders.Get("X-TC-Action") != "RecognizeGeneralInvoice" {
		t.Errorf("Expected action header, got '%s'", gotHeaders.Get("X-TC-Action"))
	}
}
