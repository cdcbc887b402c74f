// Package export 把识别结果渲染成前端下载用的表格文件
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/dkphhh/easy-finance/internal/model"
)

// Workbook 把同一类别的识别结果渲染成xlsx工作簿。
// 首列是文件名，其余列按类别的表结构排列；
// 列标题来自 model.Schemas，与记录字段顺序一一对应。
func Workbook(kind model.RecordKind, results []*model.ExtractionResult) (*excelize.File, error) {
	schema, ok := model.Schemas[kind]
	if !ok {
		return nil, fmt.Errorf("未知的记录类别: %s", kind)
	}

	f := excelize.NewFile()
	sheet := schema.Title
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("重命名工作表失败: %w", err)
	}

	header := append([]string{"文件名"}, schema.Columns...)
	if err := writeRow(f, sheet, 1, header); err != nil {
		f.Close()
		return nil, err
	}

	for i, result := range results {
		if result.Kind != kind {
			f.Close()
			return nil, fmt.Errorf("第%d行记录类别不符: 期望%s, 实际%s", i+1, kind, result.Kind)
		}
		row := append([]string{result.FileName}, result.Values()...)
		if err := writeRow(f, sheet, i+2, row); err != nil {
			f.Close()
			return nil, err
		}
	}

	return f, nil
}

// WorkbookBytes 渲染工作簿并序列化为字节流
func WorkbookBytes(kind model.RecordKind, results []*model.ExtractionResult) ([]byte, error) {
	f, err := Workbook(kind, results)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("序列化工作簿失败: %w", err)
	}
	return buf.Bytes(), nil
}

// writeRow 写入一行单元格，row从1开始
func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("计算单元格坐标失败: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("写入单元格%s失败: %w", cell, err)
		}
	}
	return nil
}
