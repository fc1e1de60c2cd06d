package patents

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"patsearch-backend/lib/scrapers/patentscope"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func testRouter(engine Engine) *chi.Mux {
	router := chi.NewRouter()
	NewService(engine, nil).RegisterHTTP(router)
	return router
}

func postSearch(t *testing.T, router http.Handler, req SearchRequest) *httptest.ResponseRecorder {
	body, err := json.Marshal(req)
	require.NoError(t, err)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(
		http.MethodPost, "/api/v1/search", bytes.NewReader(body),
	))
	return recorder
}

func TestHandleSearch(t *testing.T) {
	engine := &fakeEngine{result: patentscope.CrawlResult{
		Records:    crawlRecords(3),
		Pages:      1,
		StopReason: patentscope.StopNoMoreData,
	}}
	recorder := postSearch(t, testRouter(engine), SearchRequest{Molecule: "C6H12O6"})
	require.Equal(t, http.StatusOK, recorder.Code)

	var response SearchResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	require.Equal(t, "success", response.Status)
	require.Len(t, response.Records, 3)
	require.Equal(t, 1, response.Pagination.CurrentPage)
}

func TestHandleSearchRejectsBadInput(t *testing.T) {
	recorder := postSearch(t, testRouter(&fakeEngine{}), SearchRequest{Molecule: "<script>"})
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Equal(t, "error", body.Status)
	require.Equal(t, "molecule", body.Field)
}

func TestHandleSearchRejectsMalformedBody(t *testing.T) {
	recorder := httptest.NewRecorder()
	testRouter(&fakeEngine{}).ServeHTTP(recorder, httptest.NewRequest(
		http.MethodPost, "/api/v1/search", bytes.NewReader([]byte("{not json")),
	))
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestHandleDetail(t *testing.T) {
	engine := &fakeEngine{detail: patentscope.Detail{
		Record: patentscope.Record{
			ID:                "WO2024123456",
			PublicationNumber: "WO2024123456",
			Title:             "Enzymatic synthesis of glucose polymers",
		},
		Claims: "1. A method.",
	}}
	recorder := httptest.NewRecorder()
	testRouter(engine).ServeHTTP(recorder, httptest.NewRequest(
		http.MethodGet, "/api/v1/patent/WO2024123456", nil,
	))
	require.Equal(t, http.StatusOK, recorder.Code)

	var detail patentscope.Detail
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &detail))
	require.Equal(t, "WO2024123456", detail.PublicationNumber)
	require.Equal(t, "1. A method.", detail.Claims)
}

func TestHandleDetailNotFound(t *testing.T) {
	engine := &fakeEngine{err: patentscope.ErrPatentNotFound}
	recorder := httptest.NewRecorder()
	testRouter(engine).ServeHTTP(recorder, httptest.NewRequest(
		http.MethodGet, "/api/v1/patent/WO0000000000", nil,
	))
	require.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestHandleHealth(t *testing.T) {
	recorder := httptest.NewRecorder()
	testRouter(&fakeEngine{}).ServeHTTP(recorder, httptest.NewRequest(
		http.MethodGet, "/api/v1/health", nil,
	))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), `"ok"`)
}
