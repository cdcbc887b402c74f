package extractor

import (
	"log"
	"strings"

	"github.com/dkphhh/easy-finance/internal/model"
)

// KeywordPolicy 银行回单字段的关键字匹配策略表。
// OCR返回的字段名是各银行模板自定的自由文本（"付款人户名"、"付款人名称"、
// "汇款人名称"……），因此按关键字包含匹配而不是按字段名精确查找。
// 新银行模板的适配通过修改这张表完成，不改提取逻辑。
type KeywordPolicy struct {
	// Payer/Payee 付款方、收款方字段的标识关键字
	Payer string
	Payee string
	// Name 名称类字段的关键字，命中任意一个即视为名称候选
	Name []string
	// NameExclude 名称候选的排除关键字，
	// 防止"付款人开户行"、"付款人开户账号"这类字段被误认成名称
	NameExclude []string
	// Account 账号字段关键字
	Account string
	// Bank 开户行字段关键字。单字"行"刻意取宽，
	// "开户行"、"开户银行"、"支行"都能命中。
	Bank string
	// Date 日期字段关键字
	Date []string
	// Amount 金额字段关键字与排除关键字（"大写"是金额的汉字大写形式，跳过）
	Amount        []string
	AmountExclude string
}

// DefaultBankSlipPolicy 默认策略，关键字集合与线上验证过的版本保持一致。
// 调整任何关键字都会改变真实回单的提取结果，改动前需要新的样本验证。
var DefaultBankSlipPolicy = KeywordPolicy{
	Payer:         "付款",
	Payee:         "收款",
	Name:          []string{"称", "名", "人"},
	NameExclude:   []string{"账号", "行"},
	Account:       "账号",
	Bank:          "行",
	Date:          []string{"时间", "日期"},
	Amount:        []string{"金额", "小写"},
	AmountExclude: "大写",
}

// rejectThreshold 8个目标字段中未识别数达到该值时，
// 判定上传内容不是银行回单。经验值，调整需要真实样本支撑。
const rejectThreshold = 5

// BankSlipExtractor 银行回单字段提取器。
// 输入是OCR返回的无序名值对列表，输出固定8字段的回单记录。
// 纯函数，无内部状态，同一输入反复提取结果一致。
type BankSlipExtractor struct {
	policy KeywordPolicy
}

// NewBankSlipExtractor 创建银行回单提取器
func NewBankSlipExtractor(policy KeywordPolicy) *BankSlipExtractor {
	return &BankSlipExtractor{policy: policy}
}

// Extract 从OCR名值对中提取银行回单记录。
// 扫描按OCR返回的列表顺序进行，同一角色出现多个候选字段时首个命中者生效
// （first-match-wins）；未识别字段以占位符填充；
// 未识别字段达到 rejectThreshold 时整份文件按非财务凭证拒绝。
func (e *BankSlipExtractor) Extract(fields []model.RawOcrField) (*model.BankSlipRecord, error) {
	var (
		payerName    string
		payerAccount string
		payerBank    string
		payeeName    string
		payeeAccount string
		payeeBank    string
		transAmount  string
	)

	// 日期单独预扫：回单上常有多个时间戳（交易时间、打印时间、记账日期），
	// 取其中最早的一个作为交易日期
	transDate := e.extractEarliestDate(fields)

	for _, field := range fields {
		// 付款方信息
		if strings.Contains(field.Name, e.policy.Payer) {
			if payerName == "" && e.isNameField(field.Name) {
				payerName = field.Value
			}
			if payerAccount == "" && strings.Contains(field.Name, e.policy.Account) {
				payerAccount = field.Value
			}
			if payerBank == "" && strings.Contains(field.Name, e.policy.Bank) {
				payerBank = field.Value
			}
		}

		// 收款方信息
		if strings.Contains(field.Name, e.policy.Payee) {
			if payeeName == "" && e.isNameField(field.Name) {
				payeeName = field.Value
			}
			if payeeAccount == "" && strings.Contains(field.Name, e.policy.Account) {
				payeeAccount = field.Value
			}
			if payeeBank == "" && strings.Contains(field.Name, e.policy.Bank) {
				payeeBank = field.Value
			}
		}

		// 金额
		if transAmount == "" && e.isAmountField(field.Name) {
			if extracted := StripToAmount(field.Value); extracted != "" {
				transAmount = extracted
			}
		}

		// 8个字段齐了就提前结束扫描
		if transDate != "" && payerName != "" && payerAccount != "" && payerBank != "" &&
			payeeName != "" && payeeAccount != "" && payeeBank != "" && transAmount != "" {
			break
		}
	}

	missing := 0
	for _, v := range []string{transDate, payerName, payerAccount, payerBank, payeeName, payeeAccount, payeeBank, transAmount} {
		if v == "" {
			missing++
		}
	}
	if missing >= rejectThreshold {
		log.Printf("银行回单提取失败: %d/8 个字段未识别，判定为非财务凭证", missing)
		return nil, model.NewNotFinancialDocError("")
	}

	return &model.BankSlipRecord{
		TransDate:    model.ParseNone(transDate),
		PayerName:    model.ParseNone(payerName),
		PayerAccount: model.ParseNone(payerAccount),
		PayerBank:    model.ParseNone(payerBank),
		PayeeName:    model.ParseNone(payeeName),
		PayeeAccount: model.ParseNone(payeeAccount),
		PayeeBank:    model.ParseNone(payeeBank),
		TransAmount:  model.ParseNone(transAmount),
	}, nil
}

// extractEarliestDate 遍历全部字段，解析所有日期类值并返回其中最早的。
// 单个值解析失败只跳过，不影响其他日期（宽松路径）。
func (e *BankSlipExtractor) extractEarliestDate(fields []model.RawOcrField) string {
	var earliest string
	for _, field := range fields {
		if !containsAny(field.Name, e.policy.Date) {
			continue
		}
		parsed, err := ParseDateDigits(field.Value)
		if err != nil {
			log.Printf("跳过无法解析的日期字段: name=%s, value=%s", field.Name, field.Value)
			continue
		}
		// 格式统一为"2006-01-02"，字典序即时间序
		if earliest == "" || parsed < earliest {
			earliest = parsed
		}
	}
	return earliest
}

// isNameField 字段名含名称关键字且不含账号/开户行关键字
func (e *BankSlipExtractor) isNameField(name string) bool {
	if !containsAny(name, e.policy.Name) {
		return false
	}
	for _, keyword := range e.policy.NameExclude {
		if strings.Contains(name, keyword) {
			return false
		}
	}
	return true
}

// isAmountField 字段名含金额关键字且不是大写金额
func (e *BankSlipExtractor) isAmountField(name string) bool {
	return containsAny(name, e.policy.Amount) && !strings.Contains(name, e.policy.AmountExclude)
}

func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}
