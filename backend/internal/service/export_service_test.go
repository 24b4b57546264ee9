package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"unit-one/backend/internal/dto"
	"unit-one/backend/internal/model"
	pkgerrors "unit-one/backend/pkg/errors"
)

// ── 测试辅助 ──

func seedHealth(f *fixture) {
	put := func(emp string, d time.Time, code, by string) {
		f.journal.health[healthCell{emp, d.Format(time.DateOnly)}] = model.HealthLog{
			EstablishmentID: "est-1", EmployeeID: emp, LogDate: d, Comment: code, InspectorSurname: by,
		}
	}
	put("emp-1", date(2026, time.March, 1), "зд", "Смирнова")
	put("emp-1", date(2026, time.March, 2), "б/л", "Смирнова")
	put("emp-2", date(2026, time.March, 2), "отст", "Кузнецов")
}

func exportQuery(kind, format string) *dto.ExportQuery {
	return &dto.ExportQuery{
		MonthlyLogsQuery: dto.MonthlyLogsQuery{EstablishmentID: "est-1", Year: 2026, Month: 3, Type: kind},
		Format:           format,
	}
}

// ── ExportJournal 测试 ──

func TestExportJournal_HealthCSV(t *testing.T) {
	f := newFixture()
	seedHealth(f)

	file, err := f.exportService().ExportJournal(context.Background(), f.manager, exportQuery("health", "csv"))
	if err != nil {
		t.Fatalf("ExportJournal 应成功: %v", err)
	}
	if file.Filename != "journal_health_2026-03.csv" {
		t.Errorf("文件名错误: %s", file.Filename)
	}
	if file.ContentType != "text/csv; charset=utf-8" {
		t.Errorf("Content-Type 错误: %s", file.ContentType)
	}

	content := file.Content.String()
	if !strings.HasPrefix(content, "\uFEFF") {
		t.Error("utf-8 CSV 应以 BOM 开头")
	}
	lines := strings.Split(strings.TrimSuffix(strings.TrimPrefix(content, "\uFEFF"), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("期望 5 行（标题、表头、2 名员工、签名），实际 %d:\n%s", len(lines), content)
	}
	if lines[0] != "Гигиенический журнал (сотрудники), 2026-03" {
		t.Errorf("标题行错误: %s", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Сотрудник;1;2;3;") || !strings.HasSuffix(lines[1], ";31") {
		t.Errorf("表头错误: %s", lines[1])
	}

	// 3 日至 10 日无记录显示 В，11 日起为未来日期留空
	wantIvanova := "Иванова Анна;ЗД;Б/Л" + strings.Repeat(";В", 8) + strings.Repeat(";", 21)
	if lines[2] != wantIvanova {
		t.Errorf("员工行错误:\n 实际 %s\n 期望 %s", lines[2], wantIvanova)
	}
	wantPetrov := "Петров Пётр;В;ОТСТ" + strings.Repeat(";В", 8) + strings.Repeat(";", 21)
	if lines[3] != wantPetrov {
		t.Errorf("员工行错误:\n 实际 %s\n 期望 %s", lines[3], wantPetrov)
	}

	// 同日多名检查人时按名册顺序取第一个
	wantSignature := "Подпись проверяющего;Смирнова;Смирнова" + strings.Repeat(";", 29)
	if lines[4] != wantSignature {
		t.Errorf("签名行错误:\n 实际 %s\n 期望 %s", lines[4], wantSignature)
	}
}

func TestExportJournal_TemperatureXLSX(t *testing.T) {
	f := newFixture()
	f.journal.temperature[temperatureCell{"eq-1", "2026-03-05", 1}] = model.TemperatureLog{
		EstablishmentID: "est-1", EquipmentID: "eq-1", LogDate: date(2026, time.March, 5), Shift: 1, Value: "4.5",
	}

	file, err := f.exportService().ExportJournal(context.Background(), f.partner, exportQuery("temperature", ""))
	if err != nil {
		t.Fatalf("ExportJournal 应成功: %v", err)
	}
	if file.Filename != "journal_temperature_2026-03.xlsx" {
		t.Errorf("文件名错误: %s", file.Filename)
	}

	x, err := excelize.OpenReader(file.Content)
	if err != nil {
		t.Fatalf("应为合法 xlsx: %v", err)
	}
	defer x.Close()

	get := func(cell string) string {
		v, err := x.GetCellValue("2026-03", cell)
		if err != nil {
			t.Fatalf("读取 %s 失败: %v", cell, err)
		}
		return v
	}
	if got := get("A1"); got != "Журнал учета температурного режима холодильного оборудования, 2026-03" {
		t.Errorf("标题错误: %s", got)
	}
	if got := get("A2"); got != "Оборудование" {
		t.Errorf("表头错误: %s", got)
	}
	// 第 3 行为 eq-1 早班，第 4 行为 eq-1 晚班
	if got := get("A4"); got != "Холодильник 1 (вечер)" {
		t.Errorf("行标题错误: %s", got)
	}
	if got := get("F4"); got != "4.5" {
		t.Errorf("5 日晚班读数错误: %s", got)
	}
	if got := get("F3"); got != "-" {
		t.Errorf("无读数应为 -，实际: %s", got)
	}
}

func TestExportJournal_Windows1251(t *testing.T) {
	f := newFixture()
	f.cfg.ExportCharset = "windows-1251"

	file, err := f.exportService().ExportJournal(context.Background(), f.admin, exportQuery("health", "csv"))
	if err != nil {
		t.Fatalf("ExportJournal 应成功: %v", err)
	}
	if file.ContentType != "text/csv; charset=windows-1251" {
		t.Errorf("Content-Type 错误: %s", file.ContentType)
	}
	raw := file.Content.Bytes()
	if len(raw) == 0 {
		t.Fatal("导出内容不应为空")
	}
	// "Г" 在 cp1251 中为 0xC3
	if raw[0] != 0xC3 {
		t.Errorf("应按 cp1251 编码且无 BOM，首字节=%#x", raw[0])
	}
}

func TestExportJournal_Errors(t *testing.T) {
	f := newFixture()
	svc := f.exportService()

	if _, err := svc.ExportJournal(context.Background(), f.manager, exportQuery("health", "pdf")); !errors.Is(err, ErrExportFormat) {
		t.Errorf("期望 ErrExportFormat，实际 %v", err)
	}
	if _, err := svc.ExportJournal(context.Background(), f.stranger, exportQuery("health", "csv")); !errors.Is(err, pkgerrors.ErrForbiddenEstablishment) {
		t.Errorf("期望 ErrForbiddenEstablishment，实际 %v", err)
	}

	f.journal.err = errMockDB
	if _, err := svc.ExportJournal(context.Background(), f.admin, exportQuery("temperature", "csv")); !errors.Is(err, errMockDB) {
		t.Errorf("期望数据库错误，实际 %v", err)
	}
}
