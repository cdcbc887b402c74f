package handlers

import (
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dkphhh/easy-finance/internal/export"
	"github.com/dkphhh/easy-finance/internal/model"
	"github.com/dkphhh/easy-finance/internal/recognizer"
	"github.com/dkphhh/easy-finance/internal/storage"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handlers API处理器
type Handlers struct {
	service *recognizer.Service
	archive storage.Archive // 为nil时跳过凭证归档
}

// NewHandlers 创建处理器
func NewHandlers(service *recognizer.Service, archive storage.Archive) *Handlers {
	return &Handlers{
		service: service,
		archive: archive,
	}
}

// ErrorInfo 返回给前端的错误信息
type ErrorInfo struct {
	Code    model.ErrorCode `json:"code"`
	Message string          `json:"message"`
}

// RecognizeItem 批量识别中单个文件的响应。
// Result 与 Error 恰有一个非空。
type RecognizeItem struct {
	FileName   string                  `json:"file_name"`
	Status     string                  `json:"status"`
	Result     *model.ExtractionResult `json:"result,omitempty"`
	VoucherURL string                  `json:"voucher_url,omitempty"`
	Error      *ErrorInfo              `json:"error,omitempty"`
}

// RecognizeResponse 批量识别响应，items与上传文件顺序一一对应
type RecognizeResponse struct {
	Items     []RecognizeItem `json:"items"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
}

// ExportRequest 导出表格请求
type ExportRequest struct {
	Kind    model.RecordKind          `json:"kind" binding:"required,oneof=invoice bank_slip"`
	Records []*model.ExtractionResult `json:"records" binding:"required,min=1"`
}

// Health 健康检查
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
		"service":   "api-server",
	})
}

// Recognize 批量识别上传的票据文件。
// 接收 multipart 表单的 files 字段，逐个文件返回识别结果或错误，
// 单个文件失败不影响整批请求的状态码。
func (h *Handlers) Recognize(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "解析上传表单失败: " + err.Error()})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请至少上传一个文件"})
		return
	}

	ctx := c.Request.Context()

	docs := make([]recognizer.Document, 0, len(files))
	contentTypes := make([]string, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "读取上传文件失败: " + err.Error()})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "读取上传文件失败: " + err.Error()})
			return
		}
		docs = append(docs, recognizer.Document{FileName: fh.Filename, Data: data})
		contentTypes = append(contentTypes, fh.Header.Get("Content-Type"))
	}

	batch := h.service.RecognizeBatch(ctx, docs)

	resp := RecognizeResponse{Items: make([]RecognizeItem, len(batch))}
	for i, item := range batch {
		out := RecognizeItem{FileName: item.FileName}
		if item.Err != nil {
			out.Status = "error"
			out.Error = errorInfo(item.Err)
			resp.Failed++
		} else {
			out.Status = "ok"
			out.Result = item.Result
			// 归档是锦上添花，失败只记日志不影响识别结果
			if h.archive != nil {
				voucherURL, err := h.archive.Store(ctx, item.FileName, docs[i].Data, contentTypes[i])
				if err != nil {
					log.Printf("归档凭证失败: file=%s, err=%v", item.FileName, err)
				} else {
					out.VoucherURL = voucherURL
				}
			}
			resp.Succeeded++
		}
		resp.Items[i] = out
	}

	c.JSON(http.StatusOK, resp)
}

// Export 把前端确认过的识别结果导出为xlsx文件
func (h *Handlers) Export(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, err := export.WorkbookBytes(req.Kind, req.Records)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fileName := model.Schemas[req.Kind].Title + "-" + time.Now().Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", "attachment; filename=export.xlsx; filename*=UTF-8''"+url.PathEscape(fileName))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// errorInfo 提取错误代码和描述，无代码的错误统一归为内部错误
func errorInfo(err error) *ErrorInfo {
	type coded interface {
		GetCode() model.ErrorCode
	}
	if e, ok := err.(coded); ok {
		return &ErrorInfo{Code: e.GetCode(), Message: err.Error()}
	}
	return &ErrorInfo{Code: "INTERNAL_ERROR", Message: err.Error()}
}
