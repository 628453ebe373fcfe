package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/koustreak/schemastore/internal/errs"
	"github.com/koustreak/schemastore/internal/store"
)

type createTableRequest struct {
	Table   string           `json:"table"`
	Columns store.ColumnSpec `json:"columns"`
}

type renameRequest struct {
	NewName    string `json:"new_name"`
	Definition string `json:"definition,omitempty"`
}

type addColumnRequest struct {
	Name       string `json:"name"`
	Definition string `json:"definition"`
	Position   string `json:"position,omitempty"`
}

type modifyColumnRequest struct {
	Definition string `json:"definition"`
}

type insertRequest struct {
	Row store.RowData `json:"row"`
}

type updateRequest struct {
	Set   store.RowData `json:"set"`
	Where string        `json:"where"`
	Args  []any         `json:"args"`
}

type deleteRequest struct {
	Where string `json:"where"`
	Args  []any  `json:"args"`
}

type tablesResponse struct {
	Tables []string `json:"tables"`
}

type describeResponse struct {
	store.Result
	Columns []store.ColumnInfo `json:"columns"`
}

type rowsResponse struct {
	store.Result
	Rows []store.RowData `json:"rows"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	state := s.store.State()
	err := s.store.Ping(r.Context())
	s.mu.Unlock()

	body := map[string]string{"state": state.String(), "database": s.store.Database()}
	if err != nil {
		body["error"] = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) listTables(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	tables, err := s.store.ListTables(r.Context())
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tablesResponse{Tables: tables})
}

func (s *Server) createTable(w http.ResponseWriter, r *http.Request) {
	var req createTableRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Table == "" {
		writeError(w, errs.New(errs.ErrKindInvalidInput, "table is required"))
		return
	}

	s.mu.Lock()
	res, err := s.store.CreateTable(r.Context(), req.Table, req.Columns)
	s.mu.Unlock()
	writeResult(w, http.StatusCreated, res, err)
}

func (s *Server) describeTable(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	cols, res, err := s.store.DescribeTable(r.Context(), chi.URLParam(r, "table"))
	s.mu.Unlock()
	writeJSON(w, statusFor(res, err), describeResponse{Result: res, Columns: cols})
}

func (s *Server) dropTable(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	res, err := s.store.DropTable(r.Context(), chi.URLParam(r, "table"))
	s.mu.Unlock()
	writeResult(w, http.StatusOK, res, err)
}

func (s *Server) renameTable(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.NewName == "" {
		writeError(w, errs.New(errs.ErrKindInvalidInput, "new_name is required"))
		return
	}

	s.mu.Lock()
	res, err := s.store.RenameTable(r.Context(), chi.URLParam(r, "table"), req.NewName)
	s.mu.Unlock()
	writeResult(w, http.StatusOK, res, err)
}

func (s *Server) addColumn(w http.ResponseWriter, r *http.Request) {
	var req addColumnRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Name == "" {
		writeError(w, errs.New(errs.ErrKindInvalidInput, "name is required"))
		return
	}

	s.mu.Lock()
	res, err := s.store.AddColumn(r.Context(), chi.URLParam(r, "table"), req.Name, req.Definition, req.Position)
	s.mu.Unlock()
	writeResult(w, http.StatusCreated, res, err)
}

func (s *Server) modifyColumn(w http.ResponseWriter, r *http.Request) {
	var req modifyColumnRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	res, err := s.store.ModifyColumn(r.Context(), chi.URLParam(r, "table"), chi.URLParam(r, "column"), req.Definition)
	s.mu.Unlock()
	writeResult(w, http.StatusOK, res, err)
}

func (s *Server) renameColumn(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.NewName == "" {
		writeError(w, errs.New(errs.ErrKindInvalidInput, "new_name is required"))
		return
	}

	s.mu.Lock()
	res, err := s.store.RenameColumn(r.Context(), chi.URLParam(r, "table"), chi.URLParam(r, "column"), req.NewName, req.Definition)
	s.mu.Unlock()
	writeResult(w, http.StatusOK, res, err)
}

func (s *Server) dropColumn(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	res, err := s.store.DropColumn(r.Context(), chi.URLParam(r, "table"), chi.URLParam(r, "column"))
	s.mu.Unlock()
	writeResult(w, http.StatusOK, res, err)
}

func (s *Server) addForeignKey(w http.ResponseWriter, r *http.Request) {
	var fk store.ForeignKey
	if err := decode(r, &fk); err != nil {
		writeError(w, err)
		return
	}
	fk.Table = chi.URLParam(r, "table")

	s.mu.Lock()
	res, err := s.store.AddForeignKey(r.Context(), fk)
	s.mu.Unlock()
	writeResult(w, http.StatusCreated, res, err)
}

// selectRows reads ?columns=a,b&where=...&arg=...&order=...&limit=N.
// Each arg binds one placeholder in where, as a string.
func (s *Server) selectRows(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var columns []string
	if c := q.Get("columns"); c != "" {
		for _, name := range strings.Split(c, ",") {
			if name = strings.TrimSpace(name); name != "" {
				columns = append(columns, name)
			}
		}
	}

	opts := store.SelectOptions{Where: q.Get("where"), OrderBy: q.Get("order")}
	for _, a := range q["arg"] {
		opts.Args = append(opts.Args, a)
	}
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			writeError(w, errs.Newf(errs.ErrKindInvalidInput, "invalid limit %q", l))
			return
		}
		opts.Limit = n
	}

	s.mu.Lock()
	rows, res, err := s.store.SelectRows(r.Context(), chi.URLParam(r, "table"), columns, opts)
	s.mu.Unlock()
	writeJSON(w, statusFor(res, err), rowsResponse{Result: res, Rows: rows})
}

func (s *Server) insertRow(w http.ResponseWriter, r *http.Request) {
	var req insertRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	res, err := s.store.InsertRow(r.Context(), chi.URLParam(r, "table"), normalizeRow(req.Row))
	s.mu.Unlock()
	writeResult(w, http.StatusCreated, res, err)
}

func (s *Server) updateRows(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	res, err := s.store.UpdateRows(r.Context(), chi.URLParam(r, "table"), normalizeRow(req.Set), req.Where, normalizeArgs(req.Args)...)
	s.mu.Unlock()
	writeResult(w, http.StatusOK, res, err)
}

func (s *Server) deleteRows(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	res, err := s.store.DeleteRows(r.Context(), chi.URLParam(r, "table"), req.Where, normalizeArgs(req.Args)...)
	s.mu.Unlock()
	writeResult(w, http.StatusOK, res, err)
}

func (s *Server) dropDatabase(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	res, err := s.store.DropDatabase(r.Context())
	s.mu.Unlock()
	writeResult(w, http.StatusOK, res, err)
}
