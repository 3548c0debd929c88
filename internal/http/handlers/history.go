package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/Pradeep20056/thumbnail-genie/internal/domain"
	"github.com/Pradeep20056/thumbnail-genie/internal/sqlinline"
	"github.com/Pradeep20056/thumbnail-genie/pkg/zip"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
	exportFetchLimit    = 4
)

type historyItemDTO struct {
	ID             string              `json:"id"`
	TextInput      string              `json:"text_input"`
	Template       string              `json:"template"`
	OverlayText    string              `json:"overlay_text"`
	TextPosition   string              `json:"text_position"`
	OverlayStyle   domain.OverlayStyle `json:"overlay_style"`
	ImageURL       string              `json:"image_url"`
	CreditsCharged int                 `json:"credits_charged"`
	CreatedAt      time.Time           `json:"created_at"`
}

// HistoryList returns the caller's generations, newest first.
func (a *App) HistoryList(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.domainError(w, r, domain.ErrUnauthorized)
		return
	}
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	rows, err := a.SQL.Query(r.Context(), sqlinline.QListGenerationHistory, userID, limit)
	if err != nil {
		a.Logger.Error().Err(err).Msg("history query failed")
		a.error(w, r, http.StatusInternalServerError, "internal", "failed to load history")
		return
	}
	defer rows.Close()

	items := []historyItemDTO{}
	for rows.Next() {
		var item historyItemDTO
		var styleBytes []byte
		if err := rows.Scan(&item.ID, &item.TextInput, &item.Template, &item.OverlayText,
			&item.TextPosition, &styleBytes, &item.ImageURL, &item.CreditsCharged, &item.CreatedAt); err != nil {
			continue
		}
		item.OverlayStyle = domain.DefaultOverlayStyle()
		if len(styleBytes) > 0 {
			_ = json.Unmarshal(styleBytes, &item.OverlayStyle)
		}
		items = append(items, item)
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// HistoryDelete removes one generation. The statement is scoped to the owner,
// so deleting another user's record answers not found.
func (a *App) HistoryDelete(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.domainError(w, r, domain.ErrUnauthorized)
		return
	}
	id := chi.URLParam(r, "id")
	if id == "" {
		a.error(w, r, http.StatusBadRequest, "bad_request", "id required")
		return
	}
	var deleted string
	row := a.SQL.QueryRow(r.Context(), sqlinline.QDeleteGeneration, id, userID)
	if err := row.Scan(&deleted); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			a.error(w, r, http.StatusNotFound, "not_found", "generation not found")
			return
		}
		a.Logger.Error().Err(err).Msg("history delete failed")
		a.error(w, r, http.StatusInternalServerError, "internal", "failed to delete generation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HistoryExport bundles the caller's stored thumbnails into a zip download.
// Remote URLs are fetched concurrently; data URIs decode in place.
func (a *App) HistoryExport(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.domainError(w, r, domain.ErrUnauthorized)
		return
	}

	rows, err := a.SQL.Query(r.Context(), sqlinline.QListGenerationHistory, userID, maxHistoryLimit)
	if err != nil {
		a.Logger.Error().Err(err).Msg("history query failed")
		a.error(w, r, http.StatusInternalServerError, "internal", "failed to load history")
		return
	}
	type exportRow struct {
		ID  string
		URL string
	}
	var toExport []exportRow
	for rows.Next() {
		var item historyItemDTO
		var styleBytes []byte
		if err := rows.Scan(&item.ID, &item.TextInput, &item.Template, &item.OverlayText,
			&item.TextPosition, &styleBytes, &item.ImageURL, &item.CreditsCharged, &item.CreatedAt); err != nil {
			continue
		}
		if item.ImageURL != "" {
			toExport = append(toExport, exportRow{ID: item.ID, URL: item.ImageURL})
		}
	}
	rows.Close()
	if len(toExport) == 0 {
		a.error(w, r, http.StatusNotFound, "not_found", "nothing to export")
		return
	}

	entries := make([]zip.Entry, len(toExport))
	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(exportFetchLimit)
	for i, row := range toExport {
		i, row := i, row
		g.Go(func() error {
			data, mime := resolveImageData(ctx, row.URL)
			entries[i] = zip.Entry{Name: row.ID, MIME: mime, Data: data}
			return nil
		})
	}
	_ = g.Wait()

	archive := zip.Archive(entries)
	if len(archive) == 0 {
		a.error(w, r, http.StatusInternalServerError, "internal", "failed to build archive")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=thumbnails-%s.zip", time.Now().UTC().Format("20060102")))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

// resolveImageData turns a stored image reference into raw bytes. Failures
// return nil, which the archiver skips.
func resolveImageData(ctx context.Context, ref string) ([]byte, string) {
	lower := strings.ToLower(ref)
	switch {
	case strings.HasPrefix(lower, "data:"):
		idx := strings.Index(ref, ",")
		if idx < 0 {
			return nil, ""
		}
		mime := "image/png"
		if meta := ref[5:idx]; strings.Contains(meta, "jpeg") {
			mime = "image/jpeg"
		}
		data, err := base64.StdEncoding.DecodeString(ref[idx+1:])
		if err != nil {
			return nil, ""
		}
		return data, mime
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
		if err != nil {
			return nil, ""
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, ""
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, ""
		}
		data, err := io.ReadAll(io.LimitReader(resp.Body, 20<<20))
		if err != nil {
			return nil, ""
		}
		return data, resp.Header.Get("Content-Type")
	default:
		return nil, ""
	}
}
