package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"p2pcli/internal/dataprocessing"
	"p2pcli/internal/exporter"
	"p2pcli/internal/services"
)

var snapshotColumns = []string{
	"Vendor Name", "Vendor Number", "Entity Name", "IT/NON-IT",
	"Material Description", "Service Area", "Purchasing Document Number",
	"Document Date", "Delivery Date",
	"Ordered Quantity", "Delivery Quantity", "Still to Deliver",
	"PO Ordered Value in Loc. Curr.", "PO Invoice Value in Loc. Curr.", "PO Down Payment",
	"GR Document Number", "IR Document Number",
}

func newTestHandler(t *testing.T) *TableHandler {
	t.Helper()
	service := services.NewTableService(nil)
	pipeline := dataprocessing.NewPipeline(nil, dataprocessing.DefaultAggregatorConfig())
	workbook := exporter.NewWorkbookWriter(nil, "2006-01-02")
	now := func() time.Time { return time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC) }
	return NewTableHandler(service, pipeline, workbook, nil, 8<<20, now)
}

// snapshotWorkbook builds an in-memory snapshot with the given headers and
// rows.
func snapshotWorkbook(t *testing.T, headers []string, rows [][]interface{}) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	for i := range rows {
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, addr, &rows[i]))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func uploadRequest(t *testing.T, workbook *bytes.Buffer) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("snapshot", "snapshot.xlsx")
	require.NoError(t, err)
	_, err = part.Write(workbook.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/snapshot", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func validUpload(t *testing.T) *bytes.Buffer {
	return snapshotWorkbook(t, snapshotColumns, [][]interface{}{
		{
			"Vendor A", "100001", "Entity One", "IT", "Laptops", "Infrastructure", "PO-1",
			"2024-03-01", "2024-03-10",
			10, 8, 2,
			1000, 1200, 100,
			"GR-1", "IR-1",
		},
		{
			"Vendor B", "100002", "Entity One", "NON-IT", "Chairs", "Facilities", "PO-2",
			"2024-04-01", "",
			5, 5, 0,
			300, 250, 0,
			"GR-2", "",
		},
	})
}

func TestUploadSnapshot(t *testing.T) {
	h := newTestHandler(t)
	router := h.Routes()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, validUpload(t)))

	require.Equal(t, http.StatusCreated, rec.Code)

	var summary struct {
		SnapshotID        string   `json:"snapshot_id"`
		LineCount         int      `json:"line_count"`
		VendorCount       int      `json:"vendor_count"`
		DelayedPOs        int      `json:"delayed_pos"`
		OverbillingCases  int      `json:"overbilling_cases"`
		UnderbillingCases int      `json:"underbilling_cases"`
		Tables            []string `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))

	assert.NotEmpty(t, summary.SnapshotID)
	assert.Equal(t, 2, summary.LineCount)
	assert.Equal(t, 2, summary.VendorCount)
	assert.Equal(t, 1, summary.DelayedPOs)
	assert.Equal(t, 1, summary.OverbillingCases)
	assert.Equal(t, 1, summary.UnderbillingCases)
	assert.Equal(t, dataprocessing.TableNames(), summary.Tables)
}

func TestUploadSnapshot_SchemaMismatch(t *testing.T) {
	h := newTestHandler(t)
	router := h.Routes()

	// Drop the ordered-value column so the schema check trips.
	headers := make([]string, 0, len(snapshotColumns)-1)
	for _, c := range snapshotColumns {
		if c == "PO Ordered Value in Loc. Curr." {
			continue
		}
		headers = append(headers, c)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, snapshotWorkbook(t, headers, nil)))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		Error   struct {
			ErrorCode string      `json:"error_code"`
			Details   interface{} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "SCHEMA_MISMATCH", resp.Error.ErrorCode)
	assert.Contains(t, rec.Body.String(), "PO Ordered Value in Loc. Curr.")
}

func TestUploadSnapshot_NotAWorkbook(t *testing.T) {
	h := newTestHandler(t)
	router := h.Routes()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, bytes.NewBufferString("this is not an xlsx")))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "SNAPSHOT_UNREADABLE")
}

func TestUploadSnapshot_MissingFileField(t *testing.T) {
	h := newTestHandler(t)
	router := h.Routes()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("note", "no file here"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/snapshot", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListTables(t *testing.T) {
	h := newTestHandler(t)
	router := h.Routes()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tables", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Tables []string `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, dataprocessing.TableNames(), resp.Tables)
}

func TestGetTable_NoSnapshot(t *testing.T) {
	h := newTestHandler(t)
	router := h.Routes()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tables/Vendor%20Analysis", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NO_SNAPSHOT")
}

func TestGetTable(t *testing.T) {
	h := newTestHandler(t)
	router := h.Routes()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, validUpload(t)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tables/Overbilling%20Analysis", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Table string `json:"table"`
		Rows  []struct {
			PONumber string  `json:"po_number"`
			Amount   float64 `json:"amount"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Overbilling Analysis", resp.Table)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, "PO-1", resp.Rows[0].PONumber)
	assert.Equal(t, float64(200), resp.Rows[0].Amount)
}

func TestGetTable_UnknownName(t *testing.T) {
	h := newTestHandler(t)
	router := h.Routes()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, validUpload(t)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tables/Nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDownloadReport(t *testing.T) {
	h := newTestHandler(t)
	router := h.Routes()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, validUpload(t)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/report.xlsx", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "P2P_Analysis_Report.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, dataprocessing.TableNames(), f.GetSheetList())
}

func TestDownloadReport_NoSnapshot(t *testing.T) {
	h := newTestHandler(t)
	router := h.Routes()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/report.xlsx", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
