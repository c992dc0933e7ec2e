package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/lib/pq"

	"realtycrm/internal/authz"
	"realtycrm/internal/config"
	"realtycrm/internal/logger"
	"realtycrm/internal/utils"
)

var (
	ErrAlreadyInstalled = errors.New("application is already installed")
	ErrStepOutOfOrder   = errors.New("previous steps must be completed first")
	ErrUnknownStep      = errors.New("unknown install step")
	ErrConnectionFailed = errors.New("database connection failed")
	ErrValidation       = errors.New("validation failed")
)

type Step int

const (
	StepDatabase Step = iota + 1
	StepApp
	StepAdmin
	StepConfirm
)

var Steps = []Step{StepDatabase, StepApp, StepAdmin, StepConfirm}

var stepNames = map[Step]string{
	StepDatabase: "database",
	StepApp:      "app",
	StepAdmin:    "admin",
	StepConfirm:  "confirm",
}

func (s Step) String() string { return stepNames[s] }

// ParseStep accepts a step number or its name.
func ParseStep(v string) (Step, error) {
	if n, err := strconv.Atoi(v); err == nil {
		if n >= int(StepDatabase) && n <= int(StepConfirm) {
			return Step(n), nil
		}
		return 0, fmt.Errorf("%w: %s", ErrUnknownStep, v)
	}
	for st, name := range stepNames {
		if strings.EqualFold(name, v) {
			return st, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownStep, v)
}

// ValidationError lists invalid fields by their JSON name.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k, v := range e.Fields {
		keys = append(keys, k+": "+v)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// DatabaseStep collects PostgreSQL credentials. Skip installs without a
// database and serves demo data.
type DatabaseStep struct {
	Skip     bool   `json:"skip"`
	Host     string `json:"host" validate:"required,hostname_rfc1123|ip"`
	Port     int    `json:"port" validate:"required,min=1,max=65535"`
	Name     string `json:"name" validate:"required,max=63"`
	User     string `json:"user" validate:"required"`
	Password string `json:"password"`
	SSLMode  string `json:"ssl_mode" validate:"omitempty,oneof=disable require verify-ca verify-full prefer allow"`
}

func (d DatabaseStep) DSN() string {
	if d.Skip {
		return ""
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   "/" + d.Name,
	}
	mode := d.SSLMode
	if mode == "" {
		mode = "disable"
	}
	u.RawQuery = url.Values{"sslmode": {mode}}.Encode()
	return u.String()
}

type AppStep struct {
	Name        string `json:"name" validate:"required,max=80"`
	URL         string `json:"url" validate:"omitempty,url"`
	Timezone    string `json:"timezone" validate:"required,timezone"`
	PhoneRegion string `json:"phone_region" validate:"omitempty,iso3166_1_alpha2"`
	Policy      string `json:"policy" validate:"omitempty,oneof=reference full"`
}

type AdminStep struct {
	Name            string `json:"name" validate:"required,max=80"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type StepState struct {
	Step      Step   `json:"step"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// WizardState is the client-visible wizard progress. It never carries secrets.
type WizardState struct {
	Installed   bool             `json:"installed"`
	CurrentStep Step             `json:"current_step"`
	Steps       []StepState      `json:"steps"`
	Database    *DatabaseSummary `json:"database,omitempty"`
	App         *AppStep         `json:"app,omitempty"`
	AdminEmail  string           `json:"admin_email,omitempty"`
}

type DatabaseSummary struct {
	Skip bool   `json:"skip"`
	Host string `json:"host,omitempty"`
	Port int    `json:"port,omitempty"`
	Name string `json:"name,omitempty"`
	User string `json:"user,omitempty"`
}

// Pinger checks that a DSN is reachable.
type Pinger func(ctx context.Context, dsn string) error

func PostgresPinger(ctx context.Context, dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}

type InstallOption func(*InstallService)

func WithPinger(p Pinger) InstallOption {
	return func(s *InstallService) { s.ping = p }
}

// OnInstalled registers a hook run after the config file is written.
func OnInstalled(fn func(*config.Config)) InstallOption {
	return func(s *InstallService) { s.hooks = append(s.hooks, fn) }
}

type InstallService struct {
	path     string
	base     config.Config
	validate *validator.Validate
	ping     Pinger
	hooks    []func(*config.Config)
	log      logger.Logger

	mu        sync.Mutex
	installed bool
	current   Step
	completed map[Step]bool
	db        DatabaseStep
	app       AppStep
	admin     AdminStep
}

// NewInstallService drives the first-run wizard. The config written on
// completion starts from base and is saved to path.
func NewInstallService(path string, base *config.Config, log logger.Logger, opts ...InstallOption) *InstallService {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	s := &InstallService{
		path:      path,
		validate:  v,
		ping:      PostgresPinger,
		log:       log,
		current:   StepDatabase,
		completed: map[Step]bool{},
	}
	if base != nil {
		s.base = *base
		s.installed = base.App.Installed
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *InstallService) Installed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.installed
}

func (s *InstallService) State() WizardState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *InstallService) stateLocked() WizardState {
	st := WizardState{Installed: s.installed, CurrentStep: s.current}
	for _, step := range Steps {
		st.Steps = append(st.Steps, StepState{Step: step, Name: step.String(), Completed: s.completed[step]})
	}
	if s.completed[StepDatabase] {
		st.Database = &DatabaseSummary{
			Skip: s.db.Skip,
			Host: s.db.Host,
			Port: s.db.Port,
			Name: s.db.Name,
			User: s.db.User,
		}
	}
	if s.completed[StepApp] {
		app := s.app
		st.App = &app
	}
	if s.completed[StepAdmin] {
		st.AdminEmail = s.admin.Email
	}
	return st
}

// gate reports whether step may be submitted now: the wizard is not
// finished, every earlier step is complete and step is not ahead of the
// current one.
func (s *InstallService) gate(step Step) error {
	if s.installed {
		return ErrAlreadyInstalled
	}
	if step > s.current {
		return fmt.Errorf("%w: at step %s, got %s", ErrStepOutOfOrder, s.current, step)
	}
	for _, earlier := range Steps {
		if earlier >= step {
			break
		}
		if !s.completed[earlier] {
			return fmt.Errorf("%w: %s is incomplete", ErrStepOutOfOrder, earlier)
		}
	}
	return nil
}

func (s *InstallService) advance(step Step) {
	s.completed[step] = true
	if step == s.current && s.current < StepConfirm {
		s.current++
	}
}

func (s *InstallService) check(v interface{}) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = describeFieldError(fe)
	}
	return out
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "eqfield":
		return "passwords do not match"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "timezone":
		return "must be an IANA time zone"
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}

func (s *InstallService) checkDatabase(ctx context.Context, d DatabaseStep) error {
	if d.Skip {
		return nil
	}
	if err := s.check(d); err != nil {
		return err
	}
	if err := s.ping(ctx, d.DSN()); err != nil {
		s.log.Warn("install: database ping failed", map[string]interface{}{"host": d.Host, "db": d.Name, "error": err.Error()})
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	return nil
}

// TestConnection validates and pings d without advancing the wizard.
func (s *InstallService) TestConnection(ctx context.Context, d DatabaseStep) error {
	if s.Installed() {
		return ErrAlreadyInstalled
	}
	return s.checkDatabase(ctx, d)
}

func (s *InstallService) SubmitDatabase(ctx context.Context, d DatabaseStep) (WizardState, error) {
	s.mu.Lock()
	if err := s.gate(StepDatabase); err != nil {
		s.mu.Unlock()
		return WizardState{}, err
	}
	s.mu.Unlock()

	// The ping runs unlocked; a concurrent submission just wins or loses.
	if err := s.checkDatabase(ctx, d); err != nil {
		return WizardState{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.installed {
		return WizardState{}, ErrAlreadyInstalled
	}
	s.db = d
	s.advance(StepDatabase)
	return s.stateLocked(), nil
}

func (s *InstallService) SubmitApp(a AppStep) (WizardState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.gate(StepApp); err != nil {
		return WizardState{}, err
	}
	a.PhoneRegion = strings.ToUpper(a.PhoneRegion)
	if err := s.check(a); err != nil {
		return WizardState{}, err
	}
	s.app = a
	s.advance(StepApp)
	return s.stateLocked(), nil
}

func (s *InstallService) SubmitAdmin(a AdminStep) (WizardState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.gate(StepAdmin); err != nil {
		return WizardState{}, err
	}
	a.Email = normalizeEmail(a.Email)
	if err := s.check(a); err != nil {
		return WizardState{}, err
	}
	s.admin = a
	s.advance(StepAdmin)
	return s.stateLocked(), nil
}

// Back moves the wizard one step back. Completed steps stay completed.
func (s *InstallService) Back() (WizardState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.installed {
		return WizardState{}, ErrAlreadyInstalled
	}
	if s.current > StepDatabase {
		s.current--
	}
	return s.stateLocked(), nil
}

// Confirm writes the config file and marks the application installed.
func (s *InstallService) Confirm() (*config.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.gate(StepConfirm); err != nil {
		return nil, err
	}

	cfg, err := s.buildConfig()
	if err != nil {
		return nil, err
	}
	if err := config.Save(s.path, cfg); err != nil {
		return nil, fmt.Errorf("write config: %w", err)
	}

	s.installed = true
	s.completed[StepConfirm] = true
	s.log.Info("install: configuration written", map[string]interface{}{"path": s.path, "source": cfg.Store.Source})

	for _, fn := range s.hooks {
		fn(cfg)
	}
	return cfg, nil
}

func (s *InstallService) buildConfig() (*config.Config, error) {
	cfg := s.base
	cfg.Users = nil

	cfg.Database.DSN = s.db.DSN()
	if s.db.Skip {
		cfg.Store.Source = "mock"
	} else {
		cfg.Store.Source = "postgres"
	}

	cfg.App.Name = s.app.Name
	cfg.App.URL = s.app.URL
	cfg.App.Installed = true
	cfg.Filter.Timezone = s.app.Timezone
	if s.app.Policy != "" {
		cfg.Filter.Policy = s.app.Policy
	}
	if s.app.PhoneRegion != "" {
		cfg.Store.PhoneRegion = s.app.PhoneRegion
	}

	hash, err := HashPassword(s.admin.Password)
	if err != nil {
		return nil, err
	}
	cfg.Users = []config.UserConfig{{
		ID:           1,
		Name:         s.admin.Name,
		Email:        s.admin.Email,
		PasswordHash: hash,
		Role:         authz.RoleAdmin,
	}}

	if cfg.JWT.Secret == "" {
		secret, err := utils.NewSecret(32)
		if err != nil {
			return nil, fmt.Errorf("generate jwt secret: %w", err)
		}
		cfg.JWT.Secret = secret
	}
	return &cfg, nil
}
