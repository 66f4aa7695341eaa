package carga

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ControlCajaSaas/api/auth"
	"ControlCajaSaas/api/caja/dataset"
	"ControlCajaSaas/api/caja/filterstate"
)

// Helper: read one multipart file fully into memory
func readUpload(files []*multipart.FileHeader) ([]byte, string, error) {
	if len(files) == 0 {
		return nil, "", errors.New("no file uploaded")
	}
	f, err := files[0].Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	buf, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	return buf, files[0].Filename, nil
}

func resolveAdmin(r *http.Request) (*auth.UserSession, string) {
	userID := r.FormValue("user_id")
	if userID == "" {
		return nil, "user_id required in form"
	}
	for _, s := range auth.GetActiveSessions() {
		if s.UserID == userID {
			if s.Role != auth.RoleAdmin {
				return nil, "only admin can upload files"
			}
			return s, ""
		}
	}
	return nil, "User not found in active sessions"
}

// stageRows copies the loaded rows into the staging table for audit. The
// pool may be nil when no DB is configured; staging is then skipped.
func stageRows(ctx context.Context, pool *pgxpool.Pool, ds *dataset.Dataset, source string) (string, error) {
	if pool == nil {
		return "", nil
	}
	batchID := uuid.New().String()
	now := time.Now()
	copyRows := make([][]interface{}, len(ds.Rows))
	for i, row := range ds.Rows {
		attrs, err := json.Marshal(row.Fields)
		if err != nil {
			return "", err
		}
		dir, _ := row.Direction()
		copyRows[i] = []interface{}{
			batchID, source, i + 1, row.Fecha, dir, row.Total.StringFixed(2), attrs, now,
		}
	}
	_, err := pool.CopyFrom(ctx,
		pgx.Identifier{"caja_cargas_staging"},
		[]string{"batch_id", "origen", "fila", "fecha", "ingresoegreso", "total", "atributos", "cargado_en"},
		pgx.CopyFromRows(copyRows),
	)
	if err != nil {
		return "", err
	}
	return batchID, nil
}

// Handler: UploadControlCaja
func UploadControlCaja(pool *pgxpool.Pool, store *dataset.Store, filters *filterstate.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, "Failed to parse multipart form", http.StatusBadRequest)
			return
		}
		session, denied := resolveAdmin(r)
		if denied != "" {
			http.Error(w, denied, http.StatusUnauthorized)
			return
		}
		buf, filename, err := readUpload(r.MultipartForm.File["file"])
		if err != nil {
			http.Error(w, "No files uploaded", http.StatusBadRequest)
			return
		}

		ds, err := store.SaveSingle(buf, filename)
		if err != nil {
			replyLoadError(w, err)
			return
		}
		batchID, err := stageRows(ctx, pool, ds, "control_caja")
		if err != nil {
			http.Error(w, "Failed to stage upload: "+err.Error(), http.StatusInternalServerError)
			return
		}
		filters.Reset(session.SessionID)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":  true,
			"batch_id": batchID,
			"filas":    ds.Len(),
			"columnas": ds.Columns,
		})
	}
}

// Handler: UploadComparacion
func UploadComparacion(pool *pgxpool.Pool, store *dataset.Store, filters *filterstate.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := r.ParseMultipartForm(64 << 20); err != nil {
			http.Error(w, "Failed to parse multipart form", http.StatusBadRequest)
			return
		}
		session, denied := resolveAdmin(r)
		if denied != "" {
			http.Error(w, denied, http.StatusUnauthorized)
			return
		}
		ejBuf, ejName, err := readUpload(r.MultipartForm.File["ejecutado"])
		if err != nil {
			http.Error(w, "ejecutado file required", http.StatusBadRequest)
			return
		}
		prBuf, prName, err := readUpload(r.MultipartForm.File["proyectado"])
		if err != nil {
			http.Error(w, "proyectado file required", http.StatusBadRequest)
			return
		}

		ds, err := store.SaveComparison(ejBuf, ejName, prBuf, prName)
		if err != nil {
			replyLoadError(w, err)
			return
		}
		batchID, err := stageRows(ctx, pool, ds, "comparacion")
		if err != nil {
			http.Error(w, "Failed to stage upload: "+err.Error(), http.StatusInternalServerError)
			return
		}
		filters.Reset(session.SessionID)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":  true,
			"batch_id": batchID,
			"filas":    ds.Len(),
			"columnas": ds.Columns,
		})
	}
}

func replyLoadError(w http.ResponseWriter, err error) {
	var missing *dataset.MissingColumnError
	var malformed *dataset.MalformedAmountError
	if errors.As(err, &missing) || errors.As(err, &malformed) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	http.Error(w, "Invalid or empty file: "+err.Error(), http.StatusBadRequest)
}
