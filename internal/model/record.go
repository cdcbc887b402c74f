// Package model 定义识别结果的数据模型和错误类型
package model

// Unrecognized 未识别字段的占位符。
// 下游（前端表格、导出）永远不会看到空值，只会看到这个占位符。
const Unrecognized = "未识别"

// RawOcrField OCR接口返回的一条原子字段（银行回单类票据）。
// 字段在列表中的顺序由OCR服务决定，字段名之间可能存在关键字重叠，
// 例如"收款人开户银行"同时包含"收款"和"行"。
type RawOcrField struct {
	Name  string `json:"Name"`
	Value string `json:"Value"`
}

// RecordKind 识别结果的类别标签
type RecordKind string

const (
	// KindInvoice 增值税发票
	KindInvoice RecordKind = "invoice"
	// KindBankSlip 银行回单
	KindBankSlip RecordKind = "bank_slip"
)

// BankSlipRecord 银行回单识别结果，固定8个字段。
// 任何未能识别的字段用 Unrecognized 占位，不允许出现空值。
type BankSlipRecord struct {
	TransDate    string `json:"trans_date"`    // 转账日期
	PayerName    string `json:"payer_name"`    // 付款人名称
	PayerAccount string `json:"payer_account"` // 付款人账号
	PayerBank    string `json:"payer_bank"`    // 付款人开户行
	PayeeName    string `json:"payee_name"`    // 收款人名称
	PayeeAccount string `json:"payee_account"` // 收款人账号
	PayeeBank    string `json:"payee_bank"`    // 收款人开户银行
	TransAmount  string `json:"trans_amount"`  // 转账金额
}

// Values 按固定顺序返回全部8个字段值
func (r *BankSlipRecord) Values() []string {
	return []string{
		r.TransDate,
		r.PayerName,
		r.PayerAccount,
		r.PayerBank,
		r.PayeeName,
		r.PayeeAccount,
		r.PayeeBank,
		r.TransAmount,
	}
}

// InvoiceRecord 增值税发票识别结果，固定10个字段。
type InvoiceRecord struct {
	InvoiceDate      string `json:"invoice_date"`       // 开票日期
	InvoiceType      string `json:"invoice_type"`       // 发票类型
	InvoiceCode      string `json:"invoice_code"`       // 发票号码
	BuyerName        string `json:"buyer_name"`         // 购买方名称
	BuyerTaxID       string `json:"buyer_tax_id"`       // 购买方统一社会信用代码
	SellerName       string `json:"seller_name"`        // 销售方名称
	SellerTaxID      string `json:"seller_tax_id"`      // 销售方统一社会信用代码
	TaxAmount        string `json:"tax_amount"`         // 税额
	PriceExcludedTax string `json:"price_excluded_tax"` // 不含税价格
	PriceIncludedTax string `json:"price_included_tax"` // 价税合计
}

// Values 按固定顺序返回全部10个字段值
func (r *InvoiceRecord) Values() []string {
	return []string{
		r.InvoiceDate,
		r.InvoiceType,
		r.InvoiceCode,
		r.BuyerName,
		r.BuyerTaxID,
		r.SellerName,
		r.SellerTaxID,
		r.TaxAmount,
		r.PriceExcludedTax,
		r.PriceIncludedTax,
	}
}

// ExtractionResult 分类+提取的最终结果，带类别标签。
// Kind 决定 BankSlip 和 Invoice 哪一个非空。
// FileName 由调用方（上传入口）附加，识别核心不关心文件来源。
type ExtractionResult struct {
	Kind     RecordKind      `json:"kind"`
	FileName string          `json:"file_name,omitempty"`
	BankSlip *BankSlipRecord `json:"bank_slip,omitempty"`
	Invoice  *InvoiceRecord  `json:"invoice,omitempty"`
}

// Values 返回当前类别对应记录的字段值列表
func (r *ExtractionResult) Values() []string {
	switch r.Kind {
	case KindBankSlip:
		if r.BankSlip != nil {
			return r.BankSlip.Values()
		}
	case KindInvoice:
		if r.Invoice != nil {
			return r.Invoice.Values()
		}
	}
	return nil
}

// RecordSchema 一种记录类别的表结构描述
type RecordSchema struct {
	Title   string   // 表标题
	Columns []string // 列标题，与 Values() 的顺序一一对应
}

// Schemas 类别到表结构的映射表。
// 新增记录类别时在这里登记列标题，而不是在各处散落的条件分支里。
var Schemas = map[RecordKind]RecordSchema{
	KindBankSlip: {
		Title: "银行回单",
		Columns: []string{
			"转账日期",
			"付款人名称",
			"付款人账号",
			"付款人开户行",
			"收款人名称",
			"收款人账号",
			"收款人开户银行",
			"转账金额",
		},
	},
	KindInvoice: {
		Title: "增值税发票",
		Columns: []string{
			"开票日期",
			"发票类型",
			"发票号码",
			"购买方名称",
			"购买方统一社会信用代码",
			"销售方名称",
			"销售方统一社会信用代码",
			"税额",
			"不含税价格",
			"价税合计",
		},
	},
}

// ParseNone 将空字符串规范化为占位符，非空值原样返回
func ParseNone(value string) string {
	if value == "" {
		return Unrecognized
	}
	return value
}
