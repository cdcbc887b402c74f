package extractor

import (
	"encoding/json"

	"github.com/dkphhh/easy-finance/internal/model"
	"github.com/dkphhh/easy-finance/internal/ocr"
)

// vatInvoiceSubTypes 通用票据识别接口已知的增值税发票子类型。
// 这些子类型的响应结构一致，统一走发票提取路径。
var vatInvoiceSubTypes = map[string]bool{
	"VatSpecialInvoice":               true,
	"VatCommonInvoice":                true,
	"VatElectronicCommonInvoice":      true,
	"VatElectronicSpecialInvoice":     true,
	"VatElectronicInvoiceBlockchain":  true,
	"VatElectronicInvoiceToll":        true,
	"VatElectronicSpecialInvoiceFull": true,
	"VatElectronicInvoiceFull":        true,
	"VatInvoiceRoll":                  true,
	"MachinePrintedInvoice":           true,
}

// subTypeOtherInvoice 接口没有银行回单专属的子类型，
// 回单一律落在"其他发票"里，这是分类路由的刻意约定而非误判。
const subTypeOtherInvoice = "OtherInvoice"

// Classify 根据接口声明的票据子类型决定提取路径
func Classify(subType string) (model.RecordKind, error) {
	switch {
	case vatInvoiceSubTypes[subType]:
		return model.KindInvoice, nil
	case subType == subTypeOtherInvoice:
		return model.KindBankSlip, nil
	default:
		return "", model.NewUnknownSubTypeError(subType)
	}
}

// Extractor 分类+提取的组合入口
type Extractor struct {
	bankSlip *BankSlipExtractor
}

// New 创建提取器
func New(policy KeywordPolicy) *Extractor {
	return &Extractor{
		bankSlip: NewBankSlipExtractor(policy),
	}
}

// Extract 对一张已识别的票据执行分类和字段提取，
// 返回带类别标签的统一结果。
func (e *Extractor) Extract(item *ocr.MixedInvoiceItem) (*model.ExtractionResult, error) {
	kind, err := Classify(item.SubType)
	if err != nil {
		return nil, err
	}

	raw, ok := item.SingleInvoiceInfos[item.SubType]
	if !ok {
		return nil, model.NewProviderContractError(
			"SingleInvoiceInfos缺少SubType对应的识别结果", item.SubType, nil)
	}

	switch kind {
	case model.KindInvoice:
		var info ocr.VatInvoiceInfo
		if err := json.Unmarshal(raw, &info); err != nil {
			return nil, model.NewProviderContractError("发票识别结果结构不符", string(raw), err)
		}
		record, err := ExtractInvoice(&info)
		if err != nil {
			return nil, err
		}
		return &model.ExtractionResult{Kind: model.KindInvoice, Invoice: record}, nil

	default:
		var info ocr.OtherInvoiceInfo
		if err := json.Unmarshal(raw, &info); err != nil {
			return nil, model.NewProviderContractError("回单识别结果结构不符", string(raw), err)
		}
		record, err := e.bankSlip.Extract(info.OtherInvoiceListItems)
		if err != nil {
			return nil, err
		}
		return &model.ExtractionResult{Kind: model.KindBankSlip, BankSlip: record}, nil
	}
}
