package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/storage-catalog/pkg/catalog"
	"github.com/tendant/storage-catalog/pkg/catalog/api"
	"github.com/tendant/storage-catalog/pkg/catalog/repo/memory"
)

func setupHandler(t *testing.T) http.Handler {
	t.Helper()
	svc, err := catalog.New(catalog.WithRepository(memory.New()))
	require.NoError(t, err)
	return api.NewStorageServiceHandler(svc).Routes()
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeService(t *testing.T, w *httptest.ResponseRecorder) *catalog.StorageService {
	t.Helper()
	svc, err := catalog.Decode(w.Body.Bytes())
	require.NoError(t, err, w.Body.String())
	return svc
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestStorageServiceHandler_Lifecycle(t *testing.T) {
	h := setupHandler(t)

	w := doRequest(t, h, http.MethodPost, "/", `{"name":"s3-prod","serviceType":"S3","updatedBy":"alice"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeService(t, w)
	assert.Equal(t, catalog.StorageServiceTypeS3, created.ServiceType)
	assert.Equal(t, catalog.InitialVersion, *created.Version)
	assert.Equal(t, catalog.DefaultHrefPrefix+"/"+created.ID, created.Href)

	w = doRequest(t, h, http.MethodGet, "/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created, decodeService(t, w))

	w = doRequest(t, h, http.MethodGet, "/name/s3-prod", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.ID, decodeService(t, w).ID)

	w = doRequest(t, h, http.MethodPatch, "/"+created.ID, `{"description":"prod bucket","updatedBy":"bob"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeService(t, w)
	assert.Equal(t, 0.2, *updated.Version)
	require.NotNil(t, updated.ChangeDescription)
	assert.Equal(t, 0.1, *updated.ChangeDescription.PreviousVersion)
	assert.Equal(t, []string{"description"}, updated.ChangeDescription.FieldNames())

	w = doRequest(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data   []json.RawMessage `json:"data"`
		Paging api.Paging        `json:"paging"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Paging.Total)
	require.Len(t, list.Data, 1)
	listed, err := catalog.Decode(list.Data[0])
	require.NoError(t, err)
	assert.Equal(t, updated, listed)

	w = doRequest(t, h, http.MethodDelete, "/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(t, h, http.MethodGet, "/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, http.StatusNotFound, decodeError(t, w).Code)
}

func TestStorageServiceHandler_CreateErrors(t *testing.T) {
	h := setupHandler(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"UnknownServiceType", `{"name":"blob","serviceType":"AZURE_BLOB"}`, http.StatusBadRequest},
		{"LowercaseServiceType", `{"name":"blob","serviceType":"s3"}`, http.StatusBadRequest},
		{"MissingServiceType", `{"name":"blob"}`, http.StatusBadRequest},
		{"MissingName", `{"serviceType":"GCS"}`, http.StatusBadRequest},
		{"MalformedJSON", `{"name":`, http.StatusBadRequest},
		{"WrongType", `{"name":5,"serviceType":"GCS"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, h, http.MethodPost, "/", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			resp := decodeError(t, w)
			assert.Equal(t, tt.wantStatus, resp.Code)
			assert.NotEmpty(t, resp.Message)
		})
	}

	t.Run("EmptyBody", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(nil))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("DuplicateName", func(t *testing.T) {
		w := doRequest(t, h, http.MethodPost, "/", `{"name":"lake","serviceType":"ABFS"}`)
		require.Equal(t, http.StatusCreated, w.Code)
		w = doRequest(t, h, http.MethodPost, "/", `{"name":"lake","serviceType":"HDFS"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestStorageServiceHandler_UpdateAndDeleteErrors(t *testing.T) {
	h := setupHandler(t)

	w := doRequest(t, h, http.MethodPatch, "/missing", `{"description":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, h, http.MethodDelete, "/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, h, http.MethodGet, "/name/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, h, http.MethodPost, "/", `{"name":"hdfs-main","serviceType":"HDFS","description":"namenode"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeService(t, w)

	w = doRequest(t, h, http.MethodPatch, "/"+created.ID, `{"description":"namenode"}`)
	require.Equal(t, http.StatusOK, w.Code)
	unchanged := decodeService(t, w)
	assert.Equal(t, 0.1, *unchanged.Version)
	assert.True(t, unchanged.ChangeDescription.IsEmpty())

	w = doRequest(t, h, http.MethodPatch, "/"+created.ID, `{"description":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStorageServiceHandler_ListFilterAndEmpty(t *testing.T) {
	h := setupHandler(t)

	w := doRequest(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[],"paging":{"total":0}}`, w.Body.String())

	for _, body := range []string{
		`{"name":"gcs-archive","serviceType":"GCS"}`,
		`{"name":"s3-prod","serviceType":"S3"}`,
	} {
		require.Equal(t, http.StatusCreated, doRequest(t, h, http.MethodPost, "/", body).Code)
	}

	w = doRequest(t, h, http.MethodGet, "/?name=gcs-archive", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list api.StorageServiceList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	assert.Equal(t, catalog.StorageServiceTypeGCS, list.Data[0].ServiceType)
}

func TestStorageServiceHandler_WriteMiddlewaresGuardMutationsOnly(t *testing.T) {
	svc, err := catalog.New(catalog.WithRepository(memory.New()))
	require.NoError(t, err)

	denyWrites := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("X-Allow") != "yes" {
				http.Error(w, "forbidden", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
	h := api.NewStorageServiceHandler(svc).Routes(denyWrites)

	w := doRequest(t, h, http.MethodPost, "/", `{"name":"s3-prod","serviceType":"S3"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"s3-prod","serviceType":"S3"}`))
	req.Header.Set("X-Allow", "yes")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeService(t, w)

	for _, path := range []string{"/", "/" + created.ID, "/name/s3-prod"} {
		w = doRequest(t, h, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w = doRequest(t, h, http.MethodPatch, "/"+created.ID, `{"description":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = doRequest(t, h, http.MethodDelete, "/"+created.ID, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// conflictingRepository loses every update to a concurrent writer.
type conflictingRepository struct {
	catalog.Repository
}

func (conflictingRepository) UpdateStorageService(ctx context.Context, svc *catalog.StorageService, expectedVersion float64) error {
	return catalog.ErrStorageServiceConflict
}

func TestStorageServiceHandler_UpdateConflict(t *testing.T) {
	svc, err := catalog.New(catalog.WithRepository(conflictingRepository{Repository: memory.New()}))
	require.NoError(t, err)
	h := api.NewStorageServiceHandler(svc).Routes()

	w := doRequest(t, h, http.MethodPost, "/", `{"name":"gcs-archive","serviceType":"GCS"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeService(t, w)

	w = doRequest(t, h, http.MethodPatch, "/"+created.ID, `{"description":"cold"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, http.StatusConflict, decodeError(t, w).Code)
}
