package extractor

import (
	"encoding/json"
	"testing"

	"github.com/dkphhh/easy-finance/internal/model"
	"github.com/dkphhh/easy-finance/internal/ocr"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		subType  string
		expected model.RecordKind
		wantErr  bool
	}{
		{
			name:     "增值税专用发票",
			subType:  "VatSpecialInvoice",
			expected: model.KindInvoice,
		},
		{
			name:     "电子发票全电版",
			subType:  "VatElectronicInvoiceFull",
			expected: model.KindInvoice,
		},
		{
			name:     "卷式发票",
			subType:  "VatInvoiceRoll",
			expected: model.KindInvoice,
		},
		{
			name:     "机打发票",
			subType:  "MachinePrintedInvoice",
			expected: model.KindInvoice,
		},
		{
			name:     "其他发票走回单路径",
			subType:  "OtherInvoice",
			expected: model.KindBankSlip,
		},
		{
			name:    "未知子类型",
			subType: "TaxiTicket",
			wantErr: true,
		},
		{
			name:    "空子类型",
			subType: "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, err := Classify(tt.subType)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected classification error")
				}
				if !model.IsErrorType(err, model.ErrCodeUnknownSubType) {
					t.Errorf("Expected ErrCodeUnknownSubType, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if kind != tt.expected {
				t.Errorf("Classify(%q) = %q, expected %q", tt.subType, kind, tt.expected)
			}
		})
	}
}

func TestExtractor_Extract_BankSlip(t *testing.T) {
	e := New(DefaultBankSlipPolicy)

	info, _ := json.Marshal(ocr.OtherInvoiceInfo{
		OtherInvoiceListItems: completeSlipFields(),
	})
	item := &ocr.MixedInvoiceItem{
		SubType:            "OtherInvoice",
		SingleInvoiceInfos: map[string]json.RawMessage{"OtherInvoice": info},
	}

	result, err := e.Extract(item)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if result.Kind != model.KindBankSlip {
		t.Errorf("Expected bank_slip kind, got '%s'", result.Kind)
	}
	if result.BankSlip == nil || result.Invoice != nil {
		t.Error("Expected only the bank slip record to be set")
	}
	if result.BankSlip.PayerName != "张三" {
		t.Errorf("Expected payer name '张三', got '%s'", result.BankSlip.PayerName)
	}
}

func TestExtractor_Extract_Invoice(t *testing.T) {
	e := New(DefaultBankSlipPolicy)

	info, _ := json.Marshal(sampleInvoiceInfo())
	item := &ocr.MixedInvoiceItem{
		SubType:            "VatCommonInvoice",
		SingleInvoiceInfos: map[string]json.RawMessage{"VatCommonInvoice": info},
	}

	result, err := e.Extract(item)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if result.Kind != model.KindInvoice {
		t.Errorf("Expected invoice kind, got '%s'", result.Kind)
	}
	if result.Invoice == nil || result.BankSlip != nil {
		t.Error("Expected only the invoice record to be set")
	}
	if result.Invoice.InvoiceDate != "2024-03-15" {
		t.Errorf("Expected invoice date '2024-03-15', got '%s'", result.Invoice.InvoiceDate)
	}
}

func TestExtractor_Extract_MissingInfos(t *testing.T) {
	e := New(DefaultBankSlipPolicy)

	item := &ocr.MixedInvoiceItem{
		SubType:            "VatCommonInvoice",
		SingleInvoiceInfos: map[string]json.RawMessage{},
	}

	_, err := e.Extract(item)
	if err == nil {
		t.Fatal("Expected contract error for missing SingleInvoiceInfos entry")
	}
	if !model.IsErrorType(err, model.ErrCodeProviderContract) {
		t.Errorf("Expected ErrCodeProviderContract, got %v", err)
	}
}

func TestExtractor_Extract_UnknownSubType(t *testing.T) {
	e := New(DefaultBankSlipPolicy)

	item := &ocr.MixedInvoiceItem{
		SubType:            "TrainTicket",
		SingleInvoiceInfos: map[string]json.RawMessage{"TrainTicket": json.RawMessage(`{}`)},
	}

	_, err := e.Extract(item)
	if err == nil {
		t.Fatal("Expected unknown subtype error")
	}
	if !model.IsErrorType(err, model.ErrCodeUnknownSubType) {
		t.Errorf("Expected ErrCodeUnknownSubType, got %v", err)
	}
}
