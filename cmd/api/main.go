package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/otel"
	stdouttrace "go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"crmflow/pkg/crm"
	"crmflow/pkg/crm/memory"
	"crmflow/pkg/logger"
)

var (
	redisClient *redis.Client
	client      *crm.Client
	log         *zap.Logger
	tracer      trace.Tracer
)

// @title CRMFlow API
// @version 1.0
// @description Read API over the in-memory CRM data access layer
// @host localhost:8080
// @BasePath /
func main() {
	var err error
	log, err = logger.New("crmflow")
	if err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		log.Fatal("init tracing", zap.Error(err))
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
	otel.SetTracerProvider(tp)
	defer tp.Shutdown(context.Background())
	tracer = tp.Tracer("crmflow")

	// Seeding runs in the background; the first requests may race it.
	client = crm.New(memory.New(), crm.WithLogger(log))

	redisClient = redis.NewClient(&redis.Options{Addr: os.Getenv("REDIS_ADDR")})

	r := mux.NewRouter()
	r.Use(traceMiddleware)
	r.HandleFunc("/login", loginHandler).Methods(http.MethodPost)

	api := r.PathPrefix("/customers").Subrouter()
	api.Use(authMiddleware)
	api.HandleFunc("", addCustomerHandler).Methods(http.MethodPost)
	api.HandleFunc("", listCustomersHandler).Methods(http.MethodGet)
	api.HandleFunc("/{id}", getCustomerHandler).Methods(http.MethodGet)
	api.HandleFunc("/{id}/orders", listOrdersHandler).Methods(http.MethodGet)
	api.HandleFunc("/{id}/events", customerEventsHandler).Methods(http.MethodGet)

	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	addr := os.Getenv("API_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	log.Info("listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Error("server closed", zap.Error(err))
	}
}

// loginRequest represents login credentials.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginHandler handles user login and session creation.
// @Summary Login
// @Description Authenticates user and sets session cookie
// @Accept json
// @Produce json
// @Param creds body loginRequest true "Credentials"
// @Success 200
// @Router /login [post]
func loginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		http.Error(w, "invalid credentials", http.StatusBadRequest)
		return
	}
	sid := uuid.NewString()
	if err := redisClient.Set(r.Context(), "session:"+sid, req.Username, time.Hour).Err(); err != nil {
		http.Error(w, "session error", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "session_id", Value: sid, Path: "/", Expires: time.Now().Add(time.Hour), HttpOnly: true})
	w.WriteHeader(http.StatusOK)
}

// authMiddleware ensures a valid session exists.
func authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("session_id")
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		user, err := redisClient.Get(r.Context(), "session:"+c.Value).Result()
		if err != nil || user == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), "user", user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), r.Method+" "+r.URL.Path)
		defer span.End()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// addCustomerRequest is the create-customer payload.
type addCustomerRequest struct {
	Name string `json:"name"`
}

// addCustomerHandler creates a new customer.
// @Summary Add customer
// @Accept json
// @Produce json
// @Param customer body addCustomerRequest true "Customer"
// @Success 201 {object} crm.Customer
// @Security ApiKeyAuth
// @Router /customers [post]
func addCustomerHandler(w http.ResponseWriter, r *http.Request) {
	var req addCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cust, err := client.AddCustomer(r.Context(), req.Name)
	if err == crm.ErrInvalidName {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Error("add customer", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(cust)
}

// listCustomersHandler lists customers, optionally filtered by name.
// @Summary List customers
// @Produce json
// @Param name query string false "Case-insensitive name filter"
// @Success 200 {array} crm.Customer
// @Security ApiKeyAuth
// @Router /customers [get]
func listCustomersHandler(w http.ResponseWriter, r *http.Request) {
	var (
		customers []crm.Customer
		err       error
	)
	if name := r.URL.Query().Get("name"); name != "" {
		customers, err = client.CustomersByName(r.Context(), name)
	} else {
		customers, err = client.Customers(r.Context())
	}
	if err != nil {
		log.Error("list customers", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(customers)
}

// getCustomerHandler retrieves a customer by id.
// @Summary Get customer
// @Produce json
// @Param id path int true "Customer ID"
// @Success 200 {object} crm.Customer
// @Security ApiKeyAuth
// @Router /customers/{id} [get]
func getCustomerHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid customer id", http.StatusBadRequest)
		return
	}
	cust, err := client.CustomerByID(r.Context(), id)
	if err == crm.ErrNotFound {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		log.Error("get customer", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(cust)
}

// listOrdersHandler lists a customer's orders.
// @Summary List orders for customer
// @Produce json
// @Param id path int true "Customer ID"
// @Success 200 {array} crm.Order
// @Security ApiKeyAuth
// @Router /customers/{id}/orders [get]
func listOrdersHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid customer id", http.StatusBadRequest)
		return
	}
	orders, err := client.OrdersFor(r.Context(), id)
	if err != nil {
		log.Error("list orders", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(orders)
}

// customerEventsHandler streams the customer's paced event feed as SSE.
// @Summary Stream customer events
// @Produce text/event-stream
// @Param id path int true "Customer ID"
// @Success 200
// @Security ApiKeyAuth
// @Router /customers/{id}/events [get]
func customerEventsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid customer id", http.StatusBadRequest)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	// Client disconnect cancels r.Context() and stops the producer.
	for ev := range client.CustomerEvents(r.Context(), id) {
		data, err := json.Marshal(ev)
		if err != nil {
			log.Error("encode event", zap.Error(err))
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}
}
