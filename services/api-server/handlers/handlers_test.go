package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkphhh/easy-finance/internal/extractor"
	"github.com/dkphhh/easy-finance/internal/model"
	"github.com/dkphhh/easy-finance/internal/ocr"
	"github.com/dkphhh/easy-finance/internal/recognizer"
)

// fakeRecognizer 可编程的OCR客户端替身
type fakeRecognizer struct {
	respond func(req *ocr.RecognizeRequest) (*ocr.MixedInvoiceItem, error)
}

func (f *fakeRecognizer) Recognize(ctx context.Context, req *ocr.RecognizeRequest) (*ocr.MixedInvoiceItem, error) {
	return f.respond(req)
}

// bankSlipItem 一张字段齐全的回单识别结果
func bankSlipItem() *ocr.MixedInvoiceItem {
	info, _ := json.Marshal(ocr.OtherInvoiceInfo{
		OtherInvoiceListItems: []model.RawOcrField{
			{Name: "交易时间", Value: "2024-05-01 10:20:30"},
			{Name: "付款人名称", Value: "张三"},
			{Name: "付款人账号", Value: "6222000011112222"},
			{Name: "付款人开户行", Value: "中国工商银行"},
			{Name: "收款人名称", Value: "李四"},
			{Name: "收款人账号", Value: "6222000033334444"},
			{Name: "收款人开户银行", Value: "中国建设银行"},
			{Name: "小写金额", Value: "¥1,234.56元"},
		},
	})
	return &ocr.MixedInvoiceItem{
		SubType:            "OtherInvoice",
		SingleInvoiceInfos: map[string]json.RawMessage{"OtherInvoice": info},
	}
}

func newTestRouter(fake *fakeRecognizer) *gin.Engine {
	gin.SetMode(gin.TestMode)

	service := recognizer.NewService(fake, extractor.New(extractor.DefaultBankSlipPolicy), recognizer.NoopLimiter{})
	h := NewHandlers(service, nil)

	router := gin.New()
	router.GET("/api/v1/health", h.Health)
	router.POST("/api/v1/recognize", h.Recognize)
	router.POST("/api/v1/export", h.Export)
	return router
}

// multipartBody 构造带files字段的multipart请求体
func multipartBody(t *testing.T, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, data := range files {
		part, err := writer.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&fakeRecognizer{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestRecognize_BankSlip(t *testing.T) {
	fake := &fakeRecognizer{
		respond: func(req *ocr.RecognizeRequest) (*ocr.MixedInvoiceItem, error) {
			return bankSlipItem(), nil
		},
	}
	router := newTestRouter(fake)

	body, contentType := multipartBody(t, map[string][]byte{"回单.jpg": []byte("fake image bytes")})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recognize", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp RecognizeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 1, resp.Succeeded)
	assert.Equal(t, 0, resp.Failed)

	item := resp.Items[0]
	assert.Equal(t, "回单.jpg", item.FileName)
	assert.Equal(t, "ok", item.Status)
	require.NotNil(t, item.Result)
	assert.Equal(t, model.KindBankSlip, item.Result.Kind)
	assert.Equal(t, "张三", item.Result.BankSlip.PayerName)
	assert.Nil(t, item.Error)
}

// TestRecognize_PartialFailure 单个文件失败不影响整批请求
func TestRecognize_PartialFailure(t *testing.T) {
	fake := &fakeRecognizer{
		respond: func(req *ocr.RecognizeRequest) (*ocr.MixedInvoiceItem, error) {
			return bankSlipItem(), nil
		},
	}
	router := newTestRouter(fake)

	body, contentType := multipartBody(t, map[string][]byte{
		"a.jpg":      []byte("fake image bytes"),
		"notes.docx": []byte("not a voucher"),
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recognize", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp RecognizeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 2)
	assert.Equal(t, 1, resp.Succeeded)
	assert.Equal(t, 1, resp.Failed)

	for _, item := range resp.Items {
		if item.FileName == "notes.docx" {
			assert.Equal(t, "error", item.Status)
			require.NotNil(t, item.Error)
			assert.Equal(t, model.ErrCodeUnknownFileType, item.Error.Code)
			assert.Nil(t, item.Result)
		} else {
			assert.Equal(t, "ok", item.Status)
			require.NotNil(t, item.Result)
		}
	}
}

func TestRecognize_NoFiles(t *testing.T) {
	router := newTestRouter(&fakeRecognizer{})

	body, contentType := multipartBody(t, nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recognize", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExport_BankSlip(t *testing.T) {
	router := newTestRouter(&fakeRecognizer{})

	payload := ExportRequest{
		Kind: model.KindBankSlip,
		Records: []*model.ExtractionResult{
			{
				Kind:     model.KindBankSlip,
				FileName: "a.jpg",
				BankSlip: &model.BankSlipRecord{
					TransDate:   "2024-05-01",
					PayerName:   "张三",
					TransAmount: "1234.56",
				},
			},
		},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/export", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.NotEmpty(t, w.Body.Bytes())
}

func TestExport_InvalidKind(t *testing.T) {
	router := newTestRouter(&fakeRecognizer{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/export", bytes.NewReader([]byte(`{"kind":"receipt","records":[{"kind":"receipt"}]}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
