package http

import (
	"context"
	"net/http"

	"cluster-ledger-backend/internal/metrics"
	"cluster-ledger-backend/internal/security"
	"cluster-ledger-backend/internal/service"
	"cluster-ledger-backend/internal/storage"

	"github.com/gorilla/mux"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the ledger operations exposed over HTTP.
type Services struct {
	Auth          service.AuthService
	Members       service.MemberService
	Loans         service.LoanService
	Records       service.RecordService
	Notifications service.NotificationService
}

// RouterOptions configures the non-service dependencies of the router.
type RouterOptions struct {
	Tokens         security.TokenManager
	Files          storage.FileStorage
	DB             Pinger
	MaxUploadBytes int64
	// MetricsPath mounts the Prometheus handler; empty disables it.
	MetricsPath string
}

// NewRouter builds the API router. Route names key into the route security table.
func NewRouter(svc Services, opts RouterOptions) *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "route not found"})
	})
	r.Use(requestIDMiddleware, loggingMiddleware, metricsMiddleware, NewAuthMiddleware(opts.Tokens).Handler)

	auth := &authHandler{svc: svc.Auth}
	members := &memberHandler{svc: svc.Members, maxUploadBytes: opts.MaxUploadBytes}
	loans := &loanHandler{svc: svc.Loans}
	records := &recordHandler{svc: svc.Records}
	notes := &notificationHandler{svc: svc.Notifications}
	images := &imageHandler{files: opts.Files}
	health := &healthHandler{db: opts.DB}

	r.HandleFunc("/healthz", health.check).Methods(http.MethodGet).Name("Healthz")
	if opts.MetricsPath != "" {
		r.Handle(opts.MetricsPath, metrics.Handler()).Methods(http.MethodGet).Name("Metrics")
	}

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/login", auth.login).Methods(http.MethodPost).Name("Login")
	api.HandleFunc("/me/password", auth.changePassword).Methods(http.MethodPut).Name("ChangePassword")
	api.HandleFunc("/me/phone", auth.changePhone).Methods(http.MethodPut).Name("ChangePhone")

	api.HandleFunc("/members", members.list).Methods(http.MethodGet).Name("ListMembers")
	api.HandleFunc("/members", members.add).Methods(http.MethodPost).Name("AddMember")
	api.HandleFunc("/members/{id}", members.profile).Methods(http.MethodGet).Name("GetProfile")
	api.HandleFunc("/members/{id}", members.update).Methods(http.MethodPut).Name("UpdateMember")
	api.HandleFunc("/members/{id}", members.delete).Methods(http.MethodDelete).Name("DeleteMember")
	api.HandleFunc("/members/{id}/details", members.details).Methods(http.MethodGet).Name("GetMemberDetails")
	api.HandleFunc("/members/{id}/totals", records.totals).Methods(http.MethodGet).Name("GetTotals")
	api.HandleFunc("/members/{id}/records", records.list).Methods(http.MethodGet).Name("ListRecords")
	api.HandleFunc("/members/{id}/notifications", notes.list).Methods(http.MethodGet).Name("ListNotifications")

	api.HandleFunc("/loans", loans.create).Methods(http.MethodPost).Name("CreateLoan")
	api.HandleFunc("/loans/{id}", loans.cancel).Methods(http.MethodDelete).Name("CancelLoan")

	api.HandleFunc("/records", records.assign).Methods(http.MethodPost).Name("AssignRecord")
	api.HandleFunc("/records/{id}/settle", records.settle).Methods(http.MethodPut).Name("SettleRecord")
	api.HandleFunc("/records/{id}/reset", records.reset).Methods(http.MethodPut).Name("ResetRecord")
	api.HandleFunc("/records/{id}", records.delete).Methods(http.MethodDelete).Name("DeleteRecord")
	api.HandleFunc("/cash-out", records.cashOut).Methods(http.MethodPut).Name("CashOut")
	api.HandleFunc("/undo-cash-out", records.undoCashOut).Methods(http.MethodPut).Name("UndoCashOut")

	api.HandleFunc("/notifications/{id}/read", notes.markRead).Methods(http.MethodPut).Name("MarkNotificationRead")

	api.HandleFunc("/images/{key:.+}", images.serve).Methods(http.MethodGet).Name("GetImage")

	return r
}
