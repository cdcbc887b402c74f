package ocr

import (
	"encoding/json"

	"github.com/dkphhh/easy-finance/internal/model"
)

// RecognizeRequest 通用票据识别接口的请求体。
// 图片和PDF分别使用不同的字段上传，二者只会填其一。
type RecognizeRequest struct {
	ImageBase64        string `json:"ImageBase64,omitempty"`
	PdfBase64          string `json:"PdfBase64,omitempty"`
	EnableMultiplePage bool   `json:"EnableMultiplePage"`
}

// apiError 腾讯云响应中的错误结构
type apiError struct {
	Code    string `json:"Code"`
	Message string `json:"Message"`
}

// responseEnvelope 腾讯云响应外层结构
type responseEnvelope struct {
	Response struct {
		Error             *apiError          `json:"Error,omitempty"`
		MixedInvoiceItems []MixedInvoiceItem `json:"MixedInvoiceItems"`
		RequestID         string             `json:"RequestId"`
	} `json:"Response"`
}

// MixedInvoiceItem 一张票据的识别结果。
// SingleInvoiceInfos 按票据子类型为键，值的结构随子类型变化，
// 因此先保留原始JSON，由提取层按SubType再解码。
type MixedInvoiceItem struct {
	SubType            string                     `json:"SubType"`
	SingleInvoiceInfos map[string]json.RawMessage `json:"SingleInvoiceInfos"`
}

// VatInvoiceInfo 增值税发票的结构化识别结果，字段名由接口约定
type VatInvoiceInfo struct {
	Title        string `json:"Title"`        // 发票类型
	Number       string `json:"Number"`       // 发票号码
	Date         string `json:"Date"`         // 开票日期
	Buyer        string `json:"Buyer"`        // 购买方名称
	BuyerTaxID   string `json:"BuyerTaxID"`   // 购买方税号
	Seller       string `json:"Seller"`       // 销售方名称
	SellerTaxID  string `json:"SellerTaxID"`  // 销售方税号
	Tax          string `json:"Tax"`          // 税额
	PretaxAmount string `json:"PretaxAmount"` // 不含税金额
	Total        string `json:"Total"`        // 价税合计
}

// OtherInvoiceInfo "其他发票"类别的识别结果，
// 内容是一组无序的名值对，银行回单会落在这个类别里。
type OtherInvoiceInfo struct {
	OtherInvoiceListItems []model.RawOcrField `json:"OtherInvoiceListItems"`
}
