package agentapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Backland-Labs/dailyagi/internal/wallet"
)

const addr = "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/")
}

func TestClient_ListReminders(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/agent/reminders", r.URL.Path)
		assert.Equal(t, addr, r.URL.Query().Get("address"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		_, _ = io.WriteString(w, `{"reminders":[{"id":"r1","title":"Call mom","datetime":"2026-10-20T09:00","completed":false,"address":"`+addr+`","cid":null}]}`)
	})

	reminders, err := client.ListReminders(context.Background(), addr)
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, "r1", reminders[0].ID)
	assert.Equal(t, "Call mom", reminders[0].Title)
	assert.Empty(t, reminders[0].CID)
}

func TestClient_CreateReminder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body NewReminder
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Dentist", body.Title)

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"reminder": Reminder{ID: "r2", Title: body.Title, Datetime: body.Datetime, Address: body.Address},
		})
	})

	reminder, err := client.CreateReminder(context.Background(), NewReminder{
		Address:  addr,
		Title:    "Dentist",
		Datetime: "2026-10-21T14:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "r2", reminder.ID)

	_, err = client.CreateReminder(context.Background(), NewReminder{Address: addr, Title: "  "})
	assert.Error(t, err)
}

func TestClient_DeleteReminder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/agent/reminders/r%201", r.URL.EscapedPath())
		assert.Equal(t, addr, r.URL.Query().Get("address"))
		_, _ = io.WriteString(w, `{"success":true}`)
	})

	require.NoError(t, client.DeleteReminder(context.Background(), "r 1", addr))
	assert.Error(t, client.DeleteReminder(context.Background(), "", addr))
}

func TestClient_AnalyzeSpending(t *testing.T) {
	var gotRange string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotRange = body["timeRange"]
		_, _ = io.WriteString(w, `{
			"transactions":[{"hash":"0x1","value":4.5,"category":"coffee","timestamp":"2026-10-18T08:00:00","from":"a","to":"b"}],
			"totalSpent":4.5,
			"categories":{"coffee":4.5},
			"chartData":[{"date":"2026-10-18","amount":4.5}],
			"nudge":null
		}`)
	})

	report, err := client.AnalyzeSpending(context.Background(), addr, "")
	require.NoError(t, err)
	assert.Equal(t, "30d", gotRange)
	assert.InDelta(t, 4.5, report.TotalSpent, 1e-9)
	assert.Equal(t, map[string]float64{"coffee": 4.5}, report.Categories)
	require.Len(t, report.ChartData, 1)
	assert.Empty(t, report.Nudge)

	_, err = client.AnalyzeSpending(context.Background(), addr, "1y")
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestClient_UploadGrocery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, addr, r.FormValue("address"))

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "fridge.jpg", header.Filename)
		assert.Equal(t, "jpegbytes", string(data))

		_, _ = io.WriteString(w, `{"items":[{"name":"Milk","quantity":"1 gallon","category":"Dairy"}],"cid":"bafy123","timestamp":"2026-10-19T10:00:00"}`)
	})

	list, err := client.UploadGrocery(context.Background(), addr, "/tmp/photos/fridge.jpg", strings.NewReader("jpegbytes"))
	require.NoError(t, err)
	assert.Equal(t, "bafy123", list.CID)
	assert.Equal(t, []GroceryItem{{Name: "Milk", Quantity: "1 gallon", Category: "Dairy"}}, list.Items)
}

func TestClient_Errors(t *testing.T) {
	t.Run("not found with detail", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"detail":"no such list"}`)
		})

		_, err := client.GetGroceryList(context.Background(), "bafy404")
		require.ErrorIs(t, err, ErrNotFound)

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "no such list", apiErr.Detail)
		assert.Equal(t, "GET /agent/grocery/bafy404: status 404: no such list", apiErr.Error())
	})

	t.Run("server error is not ErrNotFound", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		})

		_, err := client.PremiumStatus(context.Background(), addr)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
	})

	t.Run("invalid address never hits the network", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("unexpected request")
		})

		_, err := client.ListReminders(context.Background(), "0xnope")
		assert.ErrorIs(t, err, wallet.ErrInvalidAddress)
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}))
		defer srv.Close()

		client := NewClient(srv.URL, WithTimeout(20*time.Millisecond))
		_, err := client.Health(context.Background())
		assert.Error(t, err)
	})
}

func TestClient_PremiumAndRun(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/premium/status/" + addr:
			_, _ = io.WriteString(w, `{"premium":false,"staked_amount":"0","unlock_date":null}`)
		case "/agent/run":
			var req RunRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "spending", req.AgentType)
			_, _ = io.WriteString(w, `{"success":true,"agent":"spending","oml_fingerprint":"fp","result":{"totalSpent":1}}`)
		default:
			http.NotFound(w, r)
		}
	})

	status, err := client.PremiumStatus(context.Background(), addr)
	require.NoError(t, err)
	assert.False(t, status.Premium)
	assert.Equal(t, "0", status.StakedAmount)

	result, err := client.RunAgent(context.Background(), RunRequest{Address: addr, AgentType: "spending"})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.JSONEq(t, `{"totalSpent":1}`, string(result.Result))
}

func TestTimeRange(t *testing.T) {
	assert.True(t, Range7Days.Valid())
	assert.False(t, TimeRange("1y").Valid())
	assert.Equal(t, 90, Range90Days.Days())
	assert.Equal(t, 30, TimeRange("bogus").Days())
}
