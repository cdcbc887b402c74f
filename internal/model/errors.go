package model

import (
	"fmt"
	"time"
)

// ErrorCode 错误代码类型
type ErrorCode string

// 预定义错误代码
const (
	// 配置错误
	ErrCodeMissingCredentials ErrorCode = "MISSING_CREDENTIALS"
	ErrCodeInvalidConfig      ErrorCode = "INVALID_CONFIG"

	// 上传文件错误
	ErrCodeEmptyUpload     ErrorCode = "EMPTY_UPLOAD"
	ErrCodeUnknownFileType ErrorCode = "UNKNOWN_FILE_TYPE"

	// OCR服务错误
	ErrCodeProviderContract ErrorCode = "PROVIDER_CONTRACT_ERROR"
	ErrCodeProviderRequest  ErrorCode = "PROVIDER_REQUEST_ERROR"

	// 分类与提取错误
	ErrCodeUnknownSubType  ErrorCode = "UNKNOWN_SUBTYPE"
	ErrCodeNotFinancialDoc ErrorCode = "NOT_FINANCIAL_DOCUMENT"
	ErrCodeDateParse       ErrorCode = "DATE_PARSE_ERROR"
)

// BaseError 基础错误结构
type BaseError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Error 实现error接口
func (e *BaseError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// GetCode 获取错误代码
func (e *BaseError) GetCode() ErrorCode {
	return e.Code
}

// ProviderContractError OCR服务响应缺少约定的结构，
// 附带原始响应内容用于排查。
type ProviderContractError struct {
	BaseError
	RawResponse string `json:"raw_response"`
	Cause       error  `json:"-"`
}

// NewProviderContractError 创建服务契约错误
func NewProviderContractError(message, rawResponse string, cause error) *ProviderContractError {
	return &ProviderContractError{
		BaseError: BaseError{
			Code:      ErrCodeProviderContract,
			Message:   message,
			Timestamp: time.Now(),
		},
		RawResponse: rawResponse,
		Cause:       cause,
	}
}

// Error 实现error接口
func (e *ProviderContractError) Error() string {
	return fmt.Sprintf("[%s] %s (原始响应: %s)", e.Code, e.Message, e.RawResponse)
}

// Unwrap 返回原始错误
func (e *ProviderContractError) Unwrap() error {
	return e.Cause
}

// ProviderRequestError OCR服务明确返回的错误（鉴权失败、欠费、限频等）
type ProviderRequestError struct {
	BaseError
	ProviderCode string `json:"provider_code"`
	RequestID    string `json:"request_id,omitempty"`
}

// NewProviderRequestError 创建服务请求错误
func NewProviderRequestError(providerCode, message, requestID string) *ProviderRequestError {
	return &ProviderRequestError{
		BaseError: BaseError{
			Code:      ErrCodeProviderRequest,
			Message:   message,
			Timestamp: time.Now(),
		},
		ProviderCode: providerCode,
		RequestID:    requestID,
	}
}

// Error 实现error接口
func (e *ProviderRequestError) Error() string {
	return fmt.Sprintf("[%s] OCR服务返回错误 %s: %s", e.Code, e.ProviderCode, e.Message)
}

// DocumentError 针对单个上传文件的终态错误，
// 在批量识别时随兄弟文件的成功结果一起返回。
type DocumentError struct {
	BaseError
	FileName string `json:"file_name"`
}

// NewDocumentError 创建单文件错误
func NewDocumentError(code ErrorCode, fileName, message string) *DocumentError {
	return &DocumentError{
		BaseError: BaseError{
			Code:      code,
			Message:   message,
			Timestamp: time.Now(),
		},
		FileName: fileName,
	}
}

// Error 实现error接口
func (e *DocumentError) Error() string {
	if e.FileName != "" {
		return fmt.Sprintf("[%s] 文件「%s」: %s", e.Code, e.FileName, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// NewDateParseError 创建日期解析错误
func NewDateParseError(dateString string) error {
	return &BaseError{
		Code:      ErrCodeDateParse,
		Message:   "无法解析日期字符串",
		Details:   dateString,
		Timestamp: time.Now(),
	}
}

// NewMissingCredentialsError 创建密钥缺失错误
func NewMissingCredentialsError() error {
	return &BaseError{
		Code:      ErrCodeMissingCredentials,
		Message:   "未配置腾讯云API密钥",
		Details:   "请设置SECRETID和SECRETKEY环境变量",
		Timestamp: time.Now(),
	}
}

// NewInvalidConfigError 创建配置校验错误
func NewInvalidConfigError(details string) error {
	return &BaseError{
		Code:      ErrCodeInvalidConfig,
		Message:   "配置校验失败",
		Details:   details,
		Timestamp: time.Now(),
	}
}

// NewUnknownSubTypeError 创建未知票据类型错误
func NewUnknownSubTypeError(subType string) error {
	return &BaseError{
		Code:      ErrCodeUnknownSubType,
		Message:   "暂时无法解析该类票据",
		Details:   subType,
		Timestamp: time.Now(),
	}
}

// NewNotFinancialDocError 创建非财务凭证错误
func NewNotFinancialDocError(fileName string) error {
	return NewDocumentError(ErrCodeNotFinancialDoc, fileName, "文件可能不是发票或银行回单")
}

// NewEmptyUploadError 创建空文件错误
func NewEmptyUploadError(fileName string) error {
	return NewDocumentError(ErrCodeEmptyUpload, fileName, "上传的文件内容为空")
}

// NewUnknownFileTypeError 创建未知文件类型错误
func NewUnknownFileTypeError(fileName string) error {
	return NewDocumentError(ErrCodeUnknownFileType, fileName, "未知文件类型")
}

// IsErrorType 检查错误是否为指定类型
func IsErrorType(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	switch e := err.(type) {
	case *BaseError:
		return e.Code == code
	case *ProviderContractError:
		return e.Code == code
	case *ProviderRequestError:
		return e.Code == code
	case *DocumentError:
		return e.Code == code
	}

	return false
}
