package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"

	"blackrent-backend/internal/security"
	"blackrent-backend/internal/service"
)

const defaultMaxBodyBytes = 1 << 20

// Services bundles every use case the REST API exposes
type Services struct {
	Auth         service.AuthService
	Users        service.UserService
	Vehicles     service.VehicleService
	Rentals      service.RentalService
	Customers    service.CustomerService
	Companies    service.CompanyService
	Insurances   service.InsuranceService
	Expenses     service.ExpenseService
	Leasings     service.LeasingService
	Settlements  service.SettlementService
	Protocols    service.ProtocolService
	EmailStaging service.EmailStagingService
	Availability service.AvailabilityService
	Bulk         service.BulkDataService
	Maintenance  service.MaintenanceService
}

type Options struct {
	MaxBodyBytes   int64
	MaxUploadBytes int64
	AllowedTypes   []string
	Environment    string
}

type Handler struct {
	svc     Services
	tokens  security.TokenManager
	opts    Options
	started time.Time
}

func NewHandler(svc Services, tokens security.TokenManager, opts Options) *Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	return &Handler{svc: svc, tokens: tokens, opts: opts, started: time.Now()}
}

// Routes builds the REST API. limiter may be nil.
func (h *Handler) Routes(limiter *RateLimiter) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Endpoint neexistuje")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Metóda nie je povolená")
	})

	// public
	r.HandleFunc("/api/health", h.health).Methods(http.MethodGet)
	r.HandleFunc("/api/auth/login", h.login).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(Authenticate(h.tokens))

	api.HandleFunc("/auth/me", h.me).Methods(http.MethodGet)
	api.HandleFunc("/auth/change-password", h.changePassword).Methods(http.MethodPost)

	api.HandleFunc("/vehicles", h.listVehicles).Methods(http.MethodGet)
	api.HandleFunc("/vehicles", h.createVehicle).Methods(http.MethodPost)
	api.HandleFunc("/vehicles/paginated", h.searchVehicles).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{id}", h.getVehicle).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{id}", h.updateVehicle).Methods(http.MethodPut)
	api.HandleFunc("/vehicles/{id}", h.deleteVehicle).Methods(http.MethodDelete)

	api.HandleFunc("/rentals", h.listRentals).Methods(http.MethodGet)
	api.HandleFunc("/rentals", h.createRental).Methods(http.MethodPost)
	api.HandleFunc("/rentals/calculate-price", h.calculatePrice).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id}", h.getRental).Methods(http.MethodGet)
	api.HandleFunc("/rentals/{id}", h.updateRental).Methods(http.MethodPut)
	api.HandleFunc("/rentals/{id}", h.deleteRental).Methods(http.MethodDelete)

	api.HandleFunc("/customers", h.listCustomers).Methods(http.MethodGet)
	api.HandleFunc("/customers", h.createCustomer).Methods(http.MethodPost)
	api.HandleFunc("/customers/{id}", h.getCustomer).Methods(http.MethodGet)
	api.HandleFunc("/customers/{id}", h.updateCustomer).Methods(http.MethodPut)
	api.HandleFunc("/customers/{id}", h.deleteCustomer).Methods(http.MethodDelete)

	api.HandleFunc("/companies", h.listCompanies).Methods(http.MethodGet)
	api.HandleFunc("/companies", h.createCompany).Methods(http.MethodPost)
	api.HandleFunc("/companies/{id}", h.getCompany).Methods(http.MethodGet)
	api.HandleFunc("/companies/{id}", h.updateCompany).Methods(http.MethodPut)
	api.HandleFunc("/companies/{id}", h.deleteCompany).Methods(http.MethodDelete)

	api.HandleFunc("/insurers", h.listInsurers).Methods(http.MethodGet)
	api.HandleFunc("/insurers", h.createInsurer).Methods(http.MethodPost)
	api.HandleFunc("/insurers/{id}", h.deleteInsurer).Methods(http.MethodDelete)
	api.HandleFunc("/insurances", h.listInsurances).Methods(http.MethodGet)
	api.HandleFunc("/insurances", h.createInsurance).Methods(http.MethodPost)
	api.HandleFunc("/insurances/{id}", h.updateInsurance).Methods(http.MethodPut)
	api.HandleFunc("/insurances/{id}", h.deleteInsurance).Methods(http.MethodDelete)

	api.HandleFunc("/expenses", h.listExpenses).Methods(http.MethodGet)
	api.HandleFunc("/expenses", h.createExpense).Methods(http.MethodPost)
	api.HandleFunc("/expenses/{id}", h.updateExpense).Methods(http.MethodPut)
	api.HandleFunc("/expenses/{id}", h.deleteExpense).Methods(http.MethodDelete)
	api.HandleFunc("/expense-categories", h.listCategories).Methods(http.MethodGet)
	api.HandleFunc("/expense-categories", h.createCategory).Methods(http.MethodPost)
	api.HandleFunc("/expense-categories/{id}", h.deleteCategory).Methods(http.MethodDelete)
	api.HandleFunc("/recurring-expenses", h.listRecurring).Methods(http.MethodGet)
	api.HandleFunc("/recurring-expenses", h.createRecurring).Methods(http.MethodPost)
	api.HandleFunc("/recurring-expenses/generate", h.generateRecurring).Methods(http.MethodPost)

	api.HandleFunc("/leasings", h.listLeasings).Methods(http.MethodGet)
	api.HandleFunc("/leasings", h.createLeasing).Methods(http.MethodPost)
	api.HandleFunc("/leasings/{id}", h.getLeasing).Methods(http.MethodGet)
	api.HandleFunc("/leasings/{id}", h.updateLeasing).Methods(http.MethodPut)
	api.HandleFunc("/leasings/{id}", h.deleteLeasing).Methods(http.MethodDelete)
	api.HandleFunc("/leasings/{id}/schedule", h.leasingSchedule).Methods(http.MethodGet)
	api.HandleFunc("/leasings/{id}/schedule/bulk-pay", h.bulkPayInstallments).Methods(http.MethodPost)
	api.HandleFunc("/leasings/{id}/schedule/{installment:[0-9]+}/pay", h.payInstallment).Methods(http.MethodPost)
	api.HandleFunc("/leasings/{id}/schedule/{installment:[0-9]+}/pay", h.unpayInstallment).Methods(http.MethodDelete)
	api.HandleFunc("/leasings/{id}/documents", h.leasingDocuments).Methods(http.MethodGet)
	api.HandleFunc("/leasings/{id}/documents/upload", h.addLeasingDocument).Methods(http.MethodPost)
	api.HandleFunc("/leasings/{id}/documents/{docId}", h.deleteLeasingDocument).Methods(http.MethodDelete)

	api.HandleFunc("/settlements", h.listSettlements).Methods(http.MethodGet)
	api.HandleFunc("/settlements", h.createSettlement).Methods(http.MethodPost)
	api.HandleFunc("/settlements/{id}", h.getSettlement).Methods(http.MethodGet)
	api.HandleFunc("/settlements/{id}", h.deleteSettlement).Methods(http.MethodDelete)

	api.HandleFunc("/protocols/handover", h.createHandover).Methods(http.MethodPost)
	api.HandleFunc("/protocols/handover/{id}", h.updateHandover).Methods(http.MethodPut)
	api.HandleFunc("/protocols/return", h.createReturn).Methods(http.MethodPost)
	api.HandleFunc("/protocols/return/{id}", h.updateReturn).Methods(http.MethodPut)
	api.HandleFunc("/protocols/rental/{rentalId}", h.rentalProtocols).Methods(http.MethodGet)

	api.HandleFunc("/email-management/stage", h.stageEmail).Methods(http.MethodPost)
	api.HandleFunc("/email-management/ingest", h.stageEmail).Methods(http.MethodPost)
	api.HandleFunc("/email-management/pending", h.pendingEmails).Methods(http.MethodGet)
	api.HandleFunc("/email-management/stats", h.emailStats).Methods(http.MethodGet)
	api.HandleFunc("/email-management/{id}/approve", h.approveEmail).Methods(http.MethodPost)
	api.HandleFunc("/email-management/{id}/reject", h.rejectEmail).Methods(http.MethodPost)
	api.HandleFunc("/email-management/{id}/spam", h.spamEmail).Methods(http.MethodPost)

	api.HandleFunc("/availability/calendar", h.calendar).Methods(http.MethodGet)
	api.HandleFunc("/bulk/data", h.bulkData).Methods(http.MethodGet)

	api.HandleFunc("/users", h.listUsers).Methods(http.MethodGet)
	api.HandleFunc("/users", h.createUser).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}", h.updateUser).Methods(http.MethodPut)
	api.HandleFunc("/users/{id}", h.deleteUser).Methods(http.MethodDelete)
	api.HandleFunc("/users/{id}/permissions", h.getPermissions).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}/permissions", h.setPermission).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}/permissions/{companyId}", h.removePermission).Methods(http.MethodDelete)

	api.HandleFunc("/files/upload", h.uploadFile).Methods(http.MethodPost)
	api.HandleFunc("/files/download", h.downloadFile).Methods(http.MethodGet)

	api.HandleFunc("/maintenance/reset-protocols", h.resetProtocols).Methods(http.MethodPost)
	api.HandleFunc("/maintenance/purge-storage", h.purgeStorage).Methods(http.MethodPost)

	var next http.Handler = r
	if limiter != nil {
		next = limiter.Middleware(next)
	}
	return middleware.RequestID(middleware.RealIP(Logging(middleware.Recoverer(next))))
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"environment": h.opts.Environment,
		"uptime":      int64(time.Since(h.started).Seconds()),
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}

// actor returns the caller. Routes behind Authenticate always have one.
func actor(r *http.Request) service.Actor {
	a, _ := ActorFromContext(r.Context())
	return a
}

// decode reads a JSON body of at most MaxBodyBytes into v
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "Požiadavka je príliš veľká")
		case errors.Is(err, io.EOF):
			writeError(w, http.StatusBadRequest, "Chýba telo požiadavky")
		default:
			writeError(w, http.StatusBadRequest, "Neplatný formát JSON")
		}
		return false
	}
	return true
}

func pathVar(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}

func queryBool(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return b
}

func queryInt(r *http.Request, name string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return n
}

// parseDate accepts YYYY-MM-DD or RFC 3339
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
