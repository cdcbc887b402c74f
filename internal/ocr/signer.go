// Package ocr 封装腾讯云OCR通用票据识别接口的签名与调用
package ocr

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// 签名算法相关常量，由腾讯云TC3签名规范约定，不可修改
const (
	defaultHost    = "ocr.tencentcloudapi.com"
	defaultService = "ocr"
	defaultRegion  = "ap-beijing"
	defaultVersion = "2018-11-19"
	algorithm      = "TC3-HMAC-SHA256"
	contentType    = "application/json; charset=utf-8"
	signedHeaders  = "content-type;host;x-tc-action"

	// ActionRecognizeGeneralInvoice 通用票据识别接口，本项目只会用到这一个Action
	ActionRecognizeGeneralInvoice = "RecognizeGeneralInvoice"
)

// Credentials 腾讯云API密钥对。
// 密钥缺失时签名照常进行并产生无效签名，由服务端在调用时拒绝，
// 这里不做前置校验（与配置错误的暴露时机保持一致）。
type Credentials struct {
	SecretID  string
	SecretKey string
}

// Signer 按TC3-HMAC-SHA256规范构造带签名的OCR请求。
// now 可注入，方便测试生成确定性的签名。
type Signer struct {
	creds   Credentials
	host    string
	service string
	region  string
	version string
	now     func() time.Time
}

// SignerOption Signer可选参数
type SignerOption func(*Signer)

// WithHost 覆盖接口域名
func WithHost(host string) SignerOption {
	return func(s *Signer) { s.host = host }
}

// WithRegion 覆盖地域
func WithRegion(region string) SignerOption {
	return func(s *Signer) { s.region = region }
}

// WithClock 注入时钟
func WithClock(now func() time.Time) SignerOption {
	return func(s *Signer) { s.now = now }
}

// NewSigner 创建签名器
func NewSigner(creds Credentials, opts ...SignerOption) *Signer {
	s := &Signer{
		creds:   creds,
		host:    defaultHost,
		service: defaultService,
		region:  defaultRegion,
		version: defaultVersion,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignedRequest 一次OCR调用所需的全部请求参数
type SignedRequest struct {
	Endpoint string
	Payload  []byte
	Headers  map[string]string
}

// Build 对请求体签名，返回endpoint、payload和请求头。
// 签名过程严格按照腾讯云文档的四个步骤执行：
// 拼接规范请求串 -> 拼接待签名字符串 -> 计算签名 -> 拼接Authorization。
func (s *Signer) Build(action string, params interface{}) (*SignedRequest, error) {
	payload, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("序列化请求参数失败: %w", err)
	}

	timestamp := s.now().Unix()
	date := time.Unix(timestamp, 0).UTC().Format("2006-01-02")

	// 步骤 1：拼接规范请求串
	canonicalHeaders := fmt.Sprintf("content-type:%s\nhost:%s\nx-tc-action:%s\n",
		contentType, s.host, strings.ToLower(action))
	hashedRequestPayload := sha256Hex(payload)
	canonicalRequest := strings.Join([]string{
		"POST",
		"/",
		"",
		canonicalHeaders,
		signedHeaders,
		hashedRequestPayload,
	}, "\n")

	// 步骤 2：拼接待签名字符串
	credentialScope := date + "/" + s.service + "/" + "tc3_request"
	stringToSign := strings.Join([]string{
		algorithm,
		strconv.FormatInt(timestamp, 10),
		credentialScope,
		sha256Hex([]byte(canonicalRequest)),
	}, "\n")

	// 步骤 3：计算签名，三次链式HMAC派生签名密钥
	secretDate := hmacSHA256([]byte("TC3"+s.creds.SecretKey), date)
	secretService := hmacSHA256(secretDate, s.service)
	secretSigning := hmacSHA256(secretService, "tc3_request")
	signature := hex.EncodeToString(hmacSHA256(secretSigning, stringToSign))

	// 步骤 4：拼接 Authorization
	authorization := fmt.Sprintf("%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		algorithm, s.creds.SecretID, credentialScope, signedHeaders, signature)

	headers := map[string]string{
		"Authorization":  authorization,
		"Content-Type":   contentType,
		"Host":           s.host,
		"X-TC-Action":    action,
		"X-TC-Timestamp": strconv.FormatInt(timestamp, 10),
		"X-TC-Version":   s.version,
		"X-TC-Region":    s.region,
	}

	return &SignedRequest{
		Endpoint: "https://" + s.host,
		Payload:  payload,
		Headers:  headers,
	}, nil
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func hmacSHA256(key []byte, msg string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(msg))
	return h.Sum(nil)
}
