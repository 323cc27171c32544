package v1

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/liber-hq/liber/log"
	"github.com/liber-hq/liber/middleware"
	"github.com/liber-hq/liber/store"
	"github.com/liber-hq/liber/worker"
)

type Handler struct {
	store      *store.Store
	ingestPool worker.WorkPool
	router     *mux.Router
}

func NewHandler(store *store.Store, ingestPool worker.WorkPool) *Handler {
	return &Handler{
		store:      store,
		ingestPool: ingestPool,
	}
}

// Server mounts the v1 API on the router.
func Server(router *mux.Router, handler *Handler) error {
	handler.router = router

	sr := router.PathPrefix("/api/v1").Subrouter()
	m := middleware.NewMiddleware(handler.store)
	sr.Use(m.HandleCORS)
	sr.Use(m.LoggingRequest)
	sr.Use(m.RateLimit)

	sSetting, err := handler.store.GetOrInitSecuritySetting()
	if err != nil {
		log.Error("Error getting security setting", zap.Error(err))
		return err
	}
	sr.Use(NewAuthInterceptor(handler.store, sSetting.JWTSecret).AuthenticationInterceptor)
	sr.Methods(http.MethodOptions)

	sr.HandleFunc("/signup", handler.signUp).Methods(http.MethodPost)
	sr.HandleFunc("/signin", handler.signIn).Methods(http.MethodPost)
	sr.HandleFunc("/user", handler.createUser).Methods(http.MethodPost)
	sr.HandleFunc("/users", handler.listUsers).Methods(http.MethodGet)

	sr.HandleFunc("/books", handler.listBooks).Methods(http.MethodGet)
	sr.HandleFunc("/books", handler.addBook).Methods(http.MethodPost)
	sr.HandleFunc("/book/{id}", handler.getBook).Methods(http.MethodGet)
	sr.HandleFunc("/book/{id}", handler.updateBook).Methods(http.MethodPut)
	sr.HandleFunc("/book/{id}", handler.deleteBook).Methods(http.MethodDelete)
	sr.HandleFunc("/book/{id}/cover", handler.getCover).Methods(http.MethodGet)
	sr.HandleFunc("/book/{id}/cover", handler.uploadCover).Methods(http.MethodPost)
	sr.HandleFunc("/book/{id}/copies", handler.listBookCopies).Methods(http.MethodGet)

	sr.HandleFunc("/copy", handler.addCopy).Methods(http.MethodPost)
	sr.HandleFunc("/copy/{id}", handler.getCopy).Methods(http.MethodGet)
	sr.HandleFunc("/copy/{id}", handler.updateCopy).Methods(http.MethodPut)
	sr.HandleFunc("/copy/{id}", handler.deleteCopy).Methods(http.MethodDelete)
	sr.HandleFunc("/copy/{id}/status", handler.setCopyStatus).Methods(http.MethodPut)
	sr.HandleFunc("/copy/{id}/stock", handler.setCopyStock).Methods(http.MethodPut)

	sr.HandleFunc("/categories", handler.listCategories).Methods(http.MethodGet)
	sr.HandleFunc("/categories", handler.addCategory).Methods(http.MethodPost)
	sr.HandleFunc("/category/{id}", handler.updateCategory).Methods(http.MethodPut)
	sr.HandleFunc("/category/{id}", handler.deleteCategory).Methods(http.MethodDelete)

	sr.HandleFunc("/readers", handler.listReaders).Methods(http.MethodGet)
	sr.HandleFunc("/readers", handler.addReader).Methods(http.MethodPost)
	sr.HandleFunc("/reader/{id}", handler.getReader).Methods(http.MethodGet)
	sr.HandleFunc("/reader/{id}", handler.updateReader).Methods(http.MethodPut)
	sr.HandleFunc("/reader/{id}", handler.deleteReader).Methods(http.MethodDelete)
	sr.HandleFunc("/reader/{id}/activate", handler.activateReader).Methods(http.MethodPost)
	sr.HandleFunc("/reader/{id}/deactivate", handler.deactivateReader).Methods(http.MethodPost)

	sr.HandleFunc("/borrow", handler.borrowBook).Methods(http.MethodPost)
	sr.HandleFunc("/borrow/{id}/return", handler.returnBook).Methods(http.MethodPost)
	sr.HandleFunc("/borrow/{id}/renew", handler.renewBorrow).Methods(http.MethodPost)
	sr.HandleFunc("/borrows", handler.listBorrows).Methods(http.MethodGet)
	sr.HandleFunc("/borrows/sweep", handler.sweepOverdue).Methods(http.MethodPost)
	sr.HandleFunc("/policy", handler.getPolicy).Methods(http.MethodGet)
	sr.HandleFunc("/policy", handler.setPolicy).Methods(http.MethodPut)

	return nil
}
