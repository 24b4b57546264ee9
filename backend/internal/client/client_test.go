package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unit-one/backend/internal/dto"
	"unit-one/backend/internal/haccp"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func ok(data interface{}) map[string]interface{} {
	return map[string]interface{}{"code": 0, "message": "success", "data": data}
}

func TestRoster_MapsKindAndEntities(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/roster/est-1", r.URL.Path)
		assert.Equal(t, "equipment", r.URL.Query().Get("kind"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		writeJSON(w, http.StatusOK, ok(map[string]interface{}{"list": []dto.RosterItem{
			{ID: "eq-1", Name: "Холодильник 1", Type: "холодильное", Zone: "Кухня"},
		}}))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", "tok")
	entities, err := c.Roster(context.Background(), "est-1", haccp.KindTemperature)
	require.NoError(t, err)
	assert.Equal(t, []haccp.Entity{{ID: "eq-1", Name: "Холодильник 1", Type: "холодильное", Zone: "Кухня"}}, entities)
}

func TestMonthlyLogs_ConvertsEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "est-1", q.Get("establishmentId"))
		assert.Equal(t, "2026", q.Get("year"))
		assert.Equal(t, "2", q.Get("month"))
		assert.Equal(t, "health", q.Get("type"))
		writeJSON(w, http.StatusOK, ok(map[string]interface{}{"list": []map[string]interface{}{
			{"employeeId": "emp-1", "date": "2026-02-03", "comment": "б/л", "inspectorSurname": "Смирнова"},
			{"employeeId": "emp-2", "date": "bad-date", "comment": "зд", "inspectorSurname": "Смирнова"},
		}}))
	}))
	defer srv.Close()

	entries, err := New(srv.URL, "tok").MonthlyLogs(context.Background(), "est-1", haccp.KindHealth, haccp.Month{Year: 2026, Month: time.February})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, haccp.Entry{
		EntityID:   "emp-1",
		Date:       time.Date(2026, time.February, 3, 0, 0, 0, 0, time.UTC),
		Value:      "б/л",
		RecordedBy: "Смирнова",
	}, entries[0])
}

func TestWriteEntry_Temperature(t *testing.T) {
	msk := time.FixedZone("MSK", 3*60*60)
	var got dto.CreateLogRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/logs", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusCreated, ok(nil))
	}))
	defer srv.Close()

	err := New(srv.URL, "tok", WithLocation(msk)).WriteEntry(context.Background(), haccp.Write{
		EstablishmentID: "est-1",
		Kind:            haccp.KindTemperature,
		Key:             haccp.Key{EntityID: "eq-1", Day: 10, Shift: haccp.ShiftEvening},
		Date:            time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC),
		Value:           "4.5",
	})
	require.NoError(t, err)

	assert.Equal(t, "eq-1", got.EquipmentID)
	assert.Empty(t, got.EmployeeID)
	require.NotNil(t, got.Shift)
	assert.Equal(t, 1, *got.Shift)
	require.NotNil(t, got.Value)
	assert.Equal(t, "4.5", *got.Value)
	assert.Equal(t, "2026-03-10T00:00:00+03:00", got.Date)
}

func TestWriteEntry_HealthClear(t *testing.T) {
	var raw map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		writeJSON(w, http.StatusCreated, ok(nil))
	}))
	defer srv.Close()

	err := New(srv.URL, "tok").WriteEntry(context.Background(), haccp.Write{
		EstablishmentID: "est-1",
		Kind:            haccp.KindHealth,
		Key:             haccp.Key{EntityID: "emp-1", Day: 1},
		Date:            time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		Value:           "",
	})
	require.NoError(t, err)
	// 清除状态也要显式发送空 comment
	assert.Equal(t, "", raw["comment"])
	assert.Equal(t, "emp-1", raw["employeeId"])
	assert.Nil(t, raw["shift"])
}

func TestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{"code": 20003, "message": "不能记录未来日期"})
	}))
	defer srv.Close()

	err := New(srv.URL, "tok").WriteEntry(context.Background(), haccp.Write{
		EstablishmentID: "est-1",
		Kind:            haccp.KindHealth,
		Key:             haccp.Key{EntityID: "emp-1", Day: 20},
		Date:            time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC),
		Value:           "зд",
	})
	require.Error(t, err)
	assert.True(t, IsFutureDate(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 20003, apiErr.Code)
	assert.Equal(t, "不能记录未来日期", apiErr.Message)
}

func TestLogin_StoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/login":
			writeJSON(w, http.StatusOK, ok(dto.TokenResponse{AccessToken: "fresh", ExpiresIn: 900}))
		case "/api/v1/auth/me":
			assert.Equal(t, "Bearer fresh", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, ok(dto.UserResponse{ID: "u-1", Surname: "Смирнова"}))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	_, err := c.Login(context.Background(), "manager", "secret")
	require.NoError(t, err)

	me, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Смирнова", me.Surname)
}

func TestExport_ReadsFilename(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "csv", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''journal_health_2026-03.csv")
		w.Write([]byte("a;b\n"))
	}))
	defer srv.Close()

	file, err := New(srv.URL, "tok").Export(context.Background(), "est-1", haccp.KindHealth, haccp.Month{Year: 2026, Month: time.March}, "csv")
	require.NoError(t, err)
	assert.Equal(t, "journal_health_2026-03.csv", file.Filename)
	assert.Equal(t, "a;b\n", string(file.Content))
}

func TestExport_Forbidden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]interface{}{"code": 10003, "message": "无权访问该门店"})
	}))
	defer srv.Close()

	_, err := New(srv.URL, "tok").Export(context.Background(), "est-2", haccp.KindHealth, haccp.Month{Year: 2026, Month: time.March}, "")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.False(t, IsFutureDate(err))
}
