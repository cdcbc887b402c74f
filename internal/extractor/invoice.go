package extractor

import (
	"github.com/dkphhh/easy-finance/internal/model"
	"github.com/dkphhh/easy-finance/internal/ocr"
)

// ExtractInvoice 把接口返回的结构化发票信息整理为固定10字段的发票记录。
// 发票子类型的响应已经是按固定字段名组织的，不需要关键字匹配。
// 开票日期走严格解析：发票的日期字段是结构化输出，解析失败说明
// 响应本身有问题，错误向上传播而不是降级为占位符。
func ExtractInvoice(info *ocr.VatInvoiceInfo) (*model.InvoiceRecord, error) {
	invoiceDate, err := ParseDateDigits(info.Date)
	if err != nil {
		return nil, err
	}

	return &model.InvoiceRecord{
		InvoiceDate:      invoiceDate,
		InvoiceType:      model.ParseNone(info.Title),
		InvoiceCode:      model.ParseNone(info.Number),
		BuyerName:        model.ParseNone(info.Buyer),
		BuyerTaxID:       model.ParseNone(info.BuyerTaxID),
		SellerName:       model.ParseNone(info.Seller),
		SellerTaxID:      model.ParseNone(info.SellerTaxID),
		TaxAmount:        model.ParseNone(info.Tax),
		PriceExcludedTax: model.ParseNone(info.PretaxAmount),
		PriceIncludedTax: model.ParseNone(info.Total),
	}, nil
}
