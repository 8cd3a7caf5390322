package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"contestatii/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/securecookie"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var decoder = newFormDecoder()

type ComplaintStore interface {
	CreateComplaint(ctx context.Context, in *types.NewComplaint) (*types.Created, error)
	CreateComplaintShell(ctx context.Context, in *types.NewComplaint) (*types.Created, error)
	ComplaintView(ctx context.Context, complaintID string) (*types.ComplaintRow, error)
	UpdateComplaint(ctx context.Context, complaintID string, complaint *types.Complaint, address *types.Address, claimant *types.Claimant) error
	DeleteComplaint(ctx context.Context, complaintID string) error
	FilterComplaints(ctx context.Context, f *types.ComplaintFilter) ([]*types.ComplaintRow, error)
	Stats(ctx context.Context) (*types.Stats, error)
	NextSequenceNumber(ctx context.Context) (int, error)
}

type ClaimantStore interface {
	Create(ctx context.Context, claimant *types.Claimant) error
	ByComplaintID(ctx context.Context, complaintID string) ([]*types.Claimant, error)
}

type UserStore interface {
	UserByEmail(ctx context.Context, email string) (*types.User, error)
	Create(ctx context.Context, user *types.User) error
}

type TokenService interface {
	Issue(user *types.User) (string, error)
	Verify(raw string) (*types.Identity, error)
	TTL() time.Duration
}

type ReportRenderer interface {
	Render(w io.Writer, rows []*types.ComplaintRow) error
}

// ReportArchive is optional; a nil archive skips archiving.
type ReportArchive interface {
	Store(ctx context.Context, pdf []byte) (string, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Service struct {
	logger *logrus.Logger
	config *types.Config

	db         Pinger
	complaints ComplaintStore
	claimants  ClaimantStore
	users      UserStore
	tokens     TokenService
	reports    ReportRenderer
	archive    ReportArchive

	cookie   *securecookie.SecureCookie
	validate *validator.Validate
	metrics  *metrics
	gatherer prometheus.Gatherer

	mux     *flow.Mux
	handler http.Handler
	server  *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	db Pinger,
	complaints ComplaintStore,
	claimants ClaimantStore,
	users UserStore,
	tokens TokenService,
	reports ReportRenderer,
	archive ReportArchive,
	registry *prometheus.Registry,
) (*Service, error) {
	mux := flow.New()

	hashKey, err := base64.StdEncoding.DecodeString(config.CookieHashKey)
	if err != nil {
		return nil, fmt.Errorf("decode cookie hash key: %w", err)
	}
	blockKey, err := base64.StdEncoding.DecodeString(config.CookieBlockKey)
	if err != nil {
		return nil, fmt.Errorf("decode cookie block key: %w", err)
	}
	if len(hashKey) == 0 {
		return nil, fmt.Errorf("cookie hash key is required")
	}

	m, err := newMetrics(registry)
	if err != nil {
		return nil, err
	}

	cookie := securecookie.New(hashKey, blockKey)
	cookie.MaxAge(int(tokens.TTL().Seconds()))

	s := &Service{
		logger: logger,
		config: config,

		db:         db,
		complaints: complaints,
		claimants:  claimants,
		users:      users,
		tokens:     tokens,
		reports:    reports,
		archive:    archive,

		cookie:   cookie,
		validate: newValidator(),
		metrics:  m,
		gatherer: registry,

		mux: mux,
	}

	s.buildRouter(mux)

	// flow only runs middleware on matched routes, so the slash redirect
	// wraps the whole mux
	s.handler = s.StripTrailingSlash(mux)
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", config.ServerPort),
		Handler:           s.handler,
		ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) Handler() http.Handler {
	return s.handler
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.LoggingMiddleware)
	r.Use(s.MetricsMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}), http.MethodGet)

	r.HandleFunc("/register", s.handleRegister, http.MethodPost)
	r.HandleFunc("/login", s.handleLogin, http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout, http.MethodGet)
	r.HandleFunc("/judete", s.handleCounties, http.MethodGet)

	// These two answer 200 with an error body when unauthenticated; the
	// client relies on it to check the session.
	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuthInBody)

		r.HandleFunc("/verify", s.handleVerify, http.MethodGet)
		r.HandleFunc("/location-preselection", s.handleLocationPreselection, http.MethodPost)
	})

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/contestatii", s.handleCreateComplaint, http.MethodPost)
		r.HandleFunc("/contestatii-only", s.handleCreateComplaintShell, http.MethodPost)
		r.HandleFunc("/contestatii-stats", s.handleStats, http.MethodGet)
		r.HandleFunc("/contestatii-next-number", s.handleNextNumber, http.MethodGet)
		r.HandleFunc("/contestatii/:id", s.handleGetComplaint, http.MethodGet)
		r.HandleFunc("/contestatii/:id", s.handleUpdateComplaint, http.MethodPut)
		r.HandleFunc("/contestatii/:id", s.handleDeleteComplaint, http.MethodDelete)

		r.HandleFunc("/membri-contestatie", s.handleAddClaimant, http.MethodPost)
		r.HandleFunc("/membri-contestatie/:complaintID", s.handleListClaimants, http.MethodGet)

		r.HandleFunc("/filter-contestatii", s.handleFilterComplaints, http.MethodPost)
		r.HandleFunc("/rapoarte", s.handleReport, http.MethodPost)
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.Ping(ctx); err != nil {
		s.logger.WithError(err).Error("health check failed")
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func newFormDecoder() *form.Decoder {
	d := form.NewDecoder()
	d.SetTagName("form")
	d.RegisterCustomTypeFunc(func(vals []string) (any, error) {
		return types.ParseDate(vals[0])
	}, types.Date{})
	d.RegisterCustomTypeFunc(func(vals []string) (any, error) {
		return types.ParseFlag(vals[0])
	}, types.Flag(false))
	d.RegisterCustomTypeFunc(func(vals []string) (any, error) {
		return types.ParseOptionalBool(vals[0])
	}, types.OptionalBool{})
	d.RegisterCustomTypeFunc(func(vals []string) (any, error) {
		return types.ParseOptionalInt(vals[0])
	}, types.OptionalInt{})
	return d
}

// newValidator reports fields by their JSON name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}
