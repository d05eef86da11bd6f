package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/getmockd/regdesk/pkg/apperr"
	"github.com/getmockd/regdesk/pkg/domain"
	"github.com/getmockd/regdesk/pkg/httputil"
	"github.com/getmockd/regdesk/pkg/service"
	"github.com/getmockd/regdesk/pkg/table"
	"github.com/getmockd/regdesk/pkg/views"
)

// MaxPageSize caps the size query parameter.
const MaxPageSize = 100

// resource serves the REST routes of one record type.
type resource[T, P, F any] struct {
	srv     *Server
	name    string
	label   string
	svc     *service.Resource[T, P, F]
	view    views.View[T]
	filter  func(url.Values) F
	id      func(T) string
	actions map[string]func(context.Context, string) (T, error)
	stats   func(context.Context) (any, error)
}

func (rs *resource[T, P, F]) register(mux *http.ServeMux) {
	base := BasePath + "/" + rs.name
	mux.HandleFunc("GET "+base, rs.handleList)
	mux.HandleFunc("GET "+base+"/{id}", rs.handleGet)
	mux.HandleFunc("POST "+base, rs.srv.requireWrite(rs.handleCreate))
	mux.HandleFunc("PATCH "+base+"/{id}", rs.srv.requireWrite(rs.handleUpdate))
	mux.HandleFunc("PUT "+base+"/{id}", rs.srv.requireWrite(rs.handleUpdate))
	mux.HandleFunc("DELETE "+base+"/{id}", rs.srv.requireWrite(rs.handleDelete))
	if len(rs.actions) > 0 {
		mux.HandleFunc("POST "+base+"/{id}/{action}", rs.srv.requireWrite(rs.handleAction))
	}
	if rs.stats != nil {
		mux.HandleFunc("GET "+base+"/stats", rs.handleStats)
	}
}

// handleList answers with a bare array, or with a page object when page or
// size is given. where, sort and order run through the table engine.
func (rs *resource[T, P, F]) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, size, err := pageParams(q)
	if err != nil {
		rs.srv.writeError(w, r, err)
		return
	}

	rows, err := rs.svc.GetAll(r.Context(), rs.filter(q))
	if err != nil {
		rs.srv.writeError(w, r, err)
		return
	}

	t := rs.view.Table(rows, size)
	if err := t.SetWhere(q.Get("where")); err != nil {
		rs.srv.writeError(w, r, &apperr.ValidationError{Field: "where", Message: err.Error()})
		return
	}
	sort := rs.view.DefaultSort
	if key := q.Get("sort"); key != "" {
		if _, ok := rs.view.Fields.Lookup(key); !ok {
			rs.srv.writeError(w, r, &apperr.ValidationError{Field: "sort", Message: fmt.Sprintf("unknown field %q", key)})
			return
		}
		sort = table.SortState{Field: key, Direction: table.ParseDirection(q.Get("order"))}
	}
	t.SetSort(sort.Field, sort.Direction)

	if !q.Has("page") && !q.Has("size") {
		t.SetPageSize(max(len(rows), 1))
		out := t.View().Rows
		if out == nil {
			out = []T{}
		}
		httputil.WriteJSON(w, http.StatusOK, out)
		return
	}

	t.GoToPage(page)
	v := t.View()
	httputil.WriteJSON(w, http.StatusOK, domain.Page[T]{
		TotalCount: v.TotalItems,
		TotalPages: v.TotalPages,
		Page:       v.CurrentPage,
		Size:       v.PageSize,
		HasMore:    v.HasNext,
		Items:      v.Rows,
		ListKey:    rs.name,
	})
}

func pageParams(q url.Values) (page, size int, err error) {
	page, size = 1, table.DefaultPageSize
	if raw := q.Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, &apperr.ValidationError{Field: "page", Message: "must be a positive integer"}
		}
	}
	if raw := q.Get("size"); raw != "" {
		size, err = strconv.Atoi(raw)
		if err != nil || size < 1 || size > MaxPageSize {
			return 0, 0, &apperr.ValidationError{Field: "size", Message: fmt.Sprintf("must be between 1 and %d", MaxPageSize)}
		}
	}
	return page, size, nil
}

func (rs *resource[T, P, F]) handleGet(w http.ResponseWriter, r *http.Request) {
	row, err := rs.svc.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		rs.srv.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, row)
}

func (rs *resource[T, P, F]) handleCreate(w http.ResponseWriter, r *http.Request) {
	var row T
	if err := rs.srv.decodeBody(w, r, rs.label+".create", &row); err != nil {
		rs.srv.writeError(w, r, err)
		return
	}
	created, err := rs.svc.Create(r.Context(), row)
	if err != nil {
		rs.srv.writeError(w, r, err)
		return
	}
	rs.srv.notify(r, domain.NotifyCreated, rs.name, rs.label, rs.id(created), "created")
	httputil.WriteData(w, http.StatusCreated, created)
}

func (rs *resource[T, P, F]) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch P
	if err := rs.srv.decodeBody(w, r, rs.label+".update", &patch); err != nil {
		rs.srv.writeError(w, r, err)
		return
	}
	updated, err := rs.svc.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		rs.srv.writeError(w, r, err)
		return
	}
	rs.srv.notify(r, domain.NotifyUpdated, rs.name, rs.label, rs.id(updated), "updated")
	httputil.WriteData(w, http.StatusOK, updated)
}

func (rs *resource[T, P, F]) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := rs.svc.Delete(r.Context(), id); err != nil {
		rs.srv.writeError(w, r, err)
		return
	}
	rs.srv.notify(r, domain.NotifyDeleted, rs.name, rs.label, id, "deleted")
	httputil.WriteNoContent(w)
}

func (rs *resource[T, P, F]) handleAction(w http.ResponseWriter, r *http.Request) {
	action := r.PathValue("action")
	run, ok := rs.actions[action]
	if !ok {
		rs.srv.writeError(w, r, &apperr.NotFoundError{Resource: "action", ID: action})
		return
	}
	row, err := run(r.Context(), r.PathValue("id"))
	if err != nil {
		rs.srv.writeError(w, r, err)
		return
	}
	rs.srv.notify(r, domain.NotifyAction, rs.name, rs.label, rs.id(row), pastTense(action))
	httputil.WriteData(w, http.StatusOK, row)
}

func (rs *resource[T, P, F]) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := rs.stats(r.Context())
	if err != nil {
		rs.srv.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, st)
}

var pastTenses = map[string]string{
	domain.ActionApprove:    "approved",
	domain.ActionRenew:      "renewed",
	domain.ActionSuspend:    "suspended",
	domain.ActionReactivate: "reactivated",
	domain.ActionRevoke:     "revoked",
	domain.ActionActivate:   "activated",
	domain.ActionDeregister: "deregistered",
	domain.ActionPay:        "paid",
	domain.ActionCancel:     "cancelled",
	domain.ActionPublish:    "published",
	domain.ActionArchive:    "archived",
}

func pastTense(action string) string {
	if s, ok := pastTenses[action]; ok {
		return s
	}
	return action
}
