package recognizer

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dkphhh/easy-finance/internal/extractor"
	"github.com/dkphhh/easy-finance/internal/model"
	"github.com/dkphhh/easy-finance/internal/ocr"
)

// imageExtensions 按图片上传的文件扩展名
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
}

// Document 待识别的一份上传文件
type Document struct {
	FileName string
	Data     []byte
}

// BatchItem 批量识别中单个文件的结果。
// Result 与 Err 恰有一个非空，位置与输入列表一一对应。
type BatchItem struct {
	FileName string
	Result   *model.ExtractionResult
	Err      error
}

// Service 识别服务：限流的OCR调用 + 分类提取的编排
type Service struct {
	client    ocr.Recognizer
	extractor *extractor.Extractor
	limiter   Limiter
}

// NewService 创建识别服务
func NewService(client ocr.Recognizer, ext *extractor.Extractor, limiter Limiter) *Service {
	return &Service{
		client:    client,
		extractor: ext,
		limiter:   limiter,
	}
}

// Recognize 识别单份文件：检查内容、编码上传、限流调用OCR、分类提取，
// 并把文件名附到结果上。
func (s *Service) Recognize(ctx context.Context, data []byte, fileName string) (*model.ExtractionResult, error) {
	if len(data) == 0 {
		return nil, model.NewEmptyUploadError(fileName)
	}

	req, err := buildRequest(data, fileName)
	if err != nil {
		return nil, err
	}

	// 限流只作用于网络调用，不覆盖后面的纯计算提取
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	item, err := s.client.Recognize(ctx, req)
	if err != nil {
		return nil, err
	}
	log.Printf("正在处理文件: %s, 识别出的票据类型: %s", fileName, item.SubType)

	result, err := s.extractor.Extract(item)
	if err != nil {
		if docErr, ok := err.(*model.DocumentError); ok && docErr.FileName == "" {
			docErr.FileName = fileName
		}
		return nil, err
	}

	result.FileName = fileName
	return result, nil
}

// RecognizeBatch 并发识别一批文件。
// 单个文件的失败只记录在自己的结果槽位里，不会取消或污染兄弟文件；
// 返回列表与输入顺序一一对应。
func (s *Service) RecognizeBatch(ctx context.Context, docs []Document) []BatchItem {
	results := make([]BatchItem, len(docs))

	var wg sync.WaitGroup
	for i, doc := range docs {
		wg.Add(1)
		go func(i int, doc Document) {
			defer wg.Done()
			// 失败隔离是硬性要求：一份损坏的文件不能拖垮整批识别
			defer func() {
				if r := recover(); r != nil {
					results[i] = BatchItem{
						FileName: doc.FileName,
						Err:      fmt.Errorf("识别过程异常: %v", r),
					}
				}
			}()

			result, err := s.Recognize(ctx, doc.Data, doc.FileName)
			results[i] = BatchItem{FileName: doc.FileName, Result: result, Err: err}
		}(i, doc)
	}
	wg.Wait()

	return results
}

// buildRequest 按扩展名识别文件类型并构造OCR请求体。
// 图片和PDF走不同的上传字段，其余类型直接拒绝。
func buildRequest(data []byte, fileName string) (*ocr.RecognizeRequest, error) {
	encoded := base64.StdEncoding.EncodeToString(data)
	ext := strings.ToLower(filepath.Ext(fileName))

	switch {
	case imageExtensions[ext]:
		return &ocr.RecognizeRequest{ImageBase64: encoded, EnableMultiplePage: false}, nil
	case ext == ".pdf":
		return &ocr.RecognizeRequest{PdfBase64: encoded, EnableMultiplePage: false}, nil
	default:
		return nil, model.NewUnknownFileTypeError(fileName)
	}
}
