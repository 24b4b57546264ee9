package main

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unit-one/backend/internal/haccp"
)

var march = haccp.Month{Year: 2026, Month: time.March}

// fakeAPI 内存中的名册、日志与写入记录
type fakeAPI struct {
	entities []haccp.Entity
	entries  []haccp.Entry

	mu     sync.Mutex
	writes []haccp.Write
}

func (f *fakeAPI) Roster(ctx context.Context, establishmentID string, kind haccp.Kind) ([]haccp.Entity, error) {
	return f.entities, nil
}

func (f *fakeAPI) MonthlyLogs(ctx context.Context, establishmentID string, kind haccp.Kind, month haccp.Month) ([]haccp.Entry, error) {
	return f.entries, nil
}

func (f *fakeAPI) WriteEntry(ctx context.Context, w haccp.Write) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, w)
	return nil
}

func (f *fakeAPI) values() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.writes))
	for _, w := range f.writes {
		out = append(out, w.Value)
	}
	return out
}

func newTestSession(t *testing.T, kind haccp.Kind, api *fakeAPI) *haccp.Session {
	t.Helper()
	s, err := haccp.NewSession(haccp.SessionConfig{
		EstablishmentID: "est-1",
		Kind:            kind,
		Source:          api,
		Writer:          api,
		Actor:           haccp.Actor{UserID: "manager-1", Surname: "Смирнова"},
		Clock:           haccp.FixedClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)),
		Location:        time.UTC,
	})
	require.NoError(t, err)
	require.NoError(t, s.Load(context.Background(), march))
	return s
}

func TestParseShift(t *testing.T) {
	tests := []struct {
		in      string
		want    haccp.Shift
		wantErr bool
	}{
		{"", haccp.ShiftMorning, false},
		{"morning", haccp.ShiftMorning, false},
		{"0", haccp.ShiftMorning, false},
		{"Evening", haccp.ShiftEvening, false},
		{"вечер", haccp.ShiftEvening, false},
		{"night", 0, true},
	}
	for _, tt := range tests {
		got, err := parseShift(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestInitial(t *testing.T) {
	assert.Equal(t, "С.", initial("Смирнова"))
	assert.Equal(t, "", initial(""))
}

func TestMark_HealthEmptyCellWritesHealthy(t *testing.T) {
	api := &fakeAPI{entities: []haccp.Entity{{ID: "emp-1", Name: "Анна", Surname: "Иванова"}}}
	s := newTestSession(t, haccp.KindHealth, api)

	key := haccp.Key{EntityID: "emp-1", Day: 10}
	require.NoError(t, mark(context.Background(), s, key, "", false))
	s.Wait()

	assert.Equal(t, []string{"зд"}, api.values())
	assert.Equal(t, "зд", s.Display(key).Value)
}

func TestMark_HealthEmptyCellWithCode(t *testing.T) {
	api := &fakeAPI{entities: []haccp.Entity{{ID: "emp-1", Name: "Анна", Surname: "Иванова"}}}
	s := newTestSession(t, haccp.KindHealth, api)

	key := haccp.Key{EntityID: "emp-1", Day: 9}
	require.NoError(t, mark(context.Background(), s, key, "б/л", false))
	s.Wait()

	// 首次点击写入 зд，再通过选择器改为 б/л：同一单元格两次写入，按顺序
	assert.Equal(t, []string{"зд", "б/л"}, api.values())
	assert.Equal(t, "б/л", s.Display(key).Value)
	assert.Nil(t, s.Overlay())
}

func TestMark_HealthClear(t *testing.T) {
	api := &fakeAPI{
		entities: []haccp.Entity{{ID: "emp-1", Name: "Анна", Surname: "Иванова"}},
		entries: []haccp.Entry{
			{EntityID: "emp-1", Date: march.Date(5), Value: "отп", RecordedBy: "Смирнова"},
		},
	}
	s := newTestSession(t, haccp.KindHealth, api)

	key := haccp.Key{EntityID: "emp-1", Day: 5}
	require.NoError(t, mark(context.Background(), s, key, "", true))
	s.Wait()

	assert.Equal(t, []string{""}, api.values())
	disp := s.Display(key)
	assert.True(t, disp.Implicit)
	assert.Equal(t, "в", disp.Value)
}

func TestMark_HealthClearOnEmptyCellWritesTwice(t *testing.T) {
	api := &fakeAPI{entities: []haccp.Entity{{ID: "emp-1", Name: "Анна", Surname: "Иванова"}}}
	s := newTestSession(t, haccp.KindHealth, api)

	key := haccp.Key{EntityID: "emp-1", Day: 8}
	require.NoError(t, mark(context.Background(), s, key, "", true))
	s.Wait()

	assert.Equal(t, []string{"зд", ""}, api.values())
	disp := s.Display(key)
	assert.True(t, disp.Implicit)
	assert.Equal(t, "в", disp.Value)
}

func TestMark_HealthUnknownCode(t *testing.T) {
	api := &fakeAPI{
		entities: []haccp.Entity{{ID: "emp-1", Name: "Анна", Surname: "Иванова"}},
		entries:  []haccp.Entry{{EntityID: "emp-1", Date: march.Date(5), Value: "зд"}},
	}
	s := newTestSession(t, haccp.KindHealth, api)

	err := mark(context.Background(), s, haccp.Key{EntityID: "emp-1", Day: 5}, "xx", false)
	assert.Error(t, err)
	s.Wait()
	assert.Empty(t, api.values())
	assert.Nil(t, s.Overlay())
}

func TestMark_Temperature(t *testing.T) {
	api := &fakeAPI{entities: []haccp.Entity{{ID: "eq-1", Name: "Холодильник 1", Type: "холодильное"}}}
	s := newTestSession(t, haccp.KindTemperature, api)

	key := haccp.Key{EntityID: "eq-1", Day: 10, Shift: haccp.ShiftEvening}
	require.NoError(t, mark(context.Background(), s, key, " 4,5 ", false))
	s.Wait()

	assert.Equal(t, []string{"4.5"}, api.values())
	assert.Equal(t, "4.5", s.Display(key).Value)

	assert.Error(t, mark(context.Background(), s, key, "   ", false))
	assert.Nil(t, s.Overlay())
}

func TestMark_FutureDayRejected(t *testing.T) {
	api := &fakeAPI{entities: []haccp.Entity{{ID: "eq-1", Name: "Холодильник 1", Type: "холодильное"}}}
	s := newTestSession(t, haccp.KindTemperature, api)

	err := mark(context.Background(), s, haccp.Key{EntityID: "eq-1", Day: 11}, "3", false)
	assert.Error(t, err)
	s.Wait()
	assert.Empty(t, api.values())
}

func TestRenderGrid_Health(t *testing.T) {
	api := &fakeAPI{
		entities: []haccp.Entity{
			{ID: "emp-1", Name: "Анна", Surname: "Иванова"},
			{ID: "emp-2", Name: "Пётр", Surname: "Петров"},
		},
		entries: []haccp.Entry{
			{EntityID: "emp-1", Date: march.Date(2), Value: "б/л", RecordedBy: "Смирнова"},
		},
	}
	s := newTestSession(t, haccp.KindHealth, api)

	out := renderGrid(s.Grid(), s.Today(), defaultTheme)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	// 标题 + 表头 + 两名员工 + 签名行
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "Гигиенический журнал")
	assert.Contains(t, lines[1], "31")
	assert.Contains(t, lines[2], "Иванова Анна")
	assert.Contains(t, lines[2], "б/л")
	assert.Contains(t, lines[2], futureMark)
	assert.Contains(t, lines[3], "Петров Пётр")
	assert.Contains(t, lines[4], haccp.SignatureLabel)
	assert.Contains(t, lines[4], "С.")
}

func TestRenderGrid_TemperatureHasTwoRowsPerUnit(t *testing.T) {
	api := &fakeAPI{
		entities: []haccp.Entity{{ID: "eq-1", Name: "Морозильник", Type: "морозильное"}},
		entries: []haccp.Entry{
			{EntityID: "eq-1", Date: march.Date(1), Shift: haccp.ShiftEvening, Value: "-18"},
		},
	}
	s := newTestSession(t, haccp.KindTemperature, api)

	out := renderGrid(s.Grid(), s.Today(), defaultTheme)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	require.Len(t, lines, 4)
	assert.Contains(t, lines[2], haccp.ShiftMorning.Label())
	assert.Contains(t, lines[3], haccp.ShiftEvening.Label())
	assert.Contains(t, lines[3], "-18")
	assert.NotContains(t, out, haccp.SignatureLabel)
}
