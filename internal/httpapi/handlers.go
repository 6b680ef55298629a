package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/koustreak/relstore/internal/database"
	"github.com/koustreak/relstore/internal/errs"
)

type queryRequest struct {
	SQL    string          `json:"sql"`
	Params json.RawMessage `json:"params"`
	Mode   string          `json:"mode"`
}

type readResponse struct {
	Mode    database.Mode  `json:"mode"`
	Columns []string       `json:"columns"`
	Rows    []database.Row `json:"rows"`
}

type writeResponse struct {
	Mode         database.Mode `json:"mode"`
	RowsAffected int64         `json:"rows_affected"`
	LastInsertID string        `json:"last_insert_id,omitempty"`
}

type createRequest struct {
	Columns string `json:"columns"`
}

type tableResponse struct {
	Table  string          `json:"table"`
	Action database.Action `json:"action,omitempty"`
	OK     bool            `json:"ok"`
	Error  string          `json:"error,omitempty"`
}

type existsResponse struct {
	Table  string `json:"table"`
	Exists bool   `json:"exists"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errs.Wrap(errs.ErrKindInvalidInput, "invalid request body", err))
		return
	}

	params, err := decodeParams(req.Params)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.mu.Lock()
	res, err := s.store.Execute(r.Context(), req.SQL, params, req.Mode)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resultBody(res))
}

func resultBody(res *database.Result) any {
	if res.Mode == database.ModeRead {
		return readResponse{Mode: res.Mode, Columns: res.Columns, Rows: res.Rows}
	}
	return writeResponse{Mode: res.Mode, RowsAffected: res.RowsAffected, LastInsertID: res.LastInsertID}
}

func (s *Server) tableExists(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")

	s.mu.Lock()
	exists := s.store.TableExists(r.Context(), table)
	s.mu.Unlock()

	s.writeJSON(w, http.StatusOK, existsResponse{Table: table, Exists: exists})
}

func (s *Server) createTable(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errs.Wrap(errs.ErrKindInvalidInput, "invalid request body", err))
		return
	}
	s.manageTable(w, r, req.Columns, database.ActionCreate)
}

func (s *Server) dropTable(w http.ResponseWriter, r *http.Request) {
	s.manageTable(w, r, "", database.ActionDrop)
}

func (s *Server) backupTable(w http.ResponseWriter, r *http.Request) {
	s.manageTable(w, r, "", database.ActionBackup)
}

func (s *Server) manageTable(w http.ResponseWriter, r *http.Request, columns string, action database.Action) {
	table := chi.URLParam(r, "table")

	s.mu.Lock()
	res := s.store.ManageTable(r.Context(), table, columns, string(action))
	s.mu.Unlock()

	body := tableResponse{Table: res.Table, Action: res.Action, OK: res.OK}
	if !res.OK {
		if res.Err != nil {
			body.Error = res.Err.Error()
		}
		s.writeJSON(w, http.StatusUnprocessableEntity, body)
		return
	}
	s.writeJSON(w, http.StatusOK, body)
}

func (s *Server) tableRows(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	if err := database.ValidateIdent(table); err != nil {
		s.writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.store.TableExists(r.Context(), table) {
		s.writeError(w, errs.Newf(errs.ErrKindNotFound, "table %q not found", table))
		return
	}
	res, err := s.store.Execute(r.Context(), "SELECT * FROM "+table, nil, string(database.ModeRead))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resultBody(res))
}

func (s *Server) tableColumns(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")

	s.mu.Lock()
	cols, err := s.store.Columns(r.Context(), table)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, cols)
}
