package appointments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"salonpro-gateway/apiclient"
	"salonpro-gateway/cache"
	"salonpro-gateway/dates"
	"salonpro-gateway/models"
	"salonpro-gateway/permissions"
)

var (
	// ErrForbidden means the user's role does not allow the action.
	ErrForbidden = errors.New("action not permitted")
	// ErrMutationInFlight means the same action on the same appointment is
	// still waiting for the API.
	ErrMutationInFlight = errors.New("mutation already in progress")
	ErrNotFound         = errors.New("appointment not found")
	ErrInvalidInput     = errors.New("invalid input")
)

// API is the part of the booking API the appointments page uses.
type API interface {
	ListAppointments(ctx context.Context, salonID models.ID, filters url.Values) (apiclient.Page[models.Appointment], error)
	GetAppointment(ctx context.Context, id models.ID) (*models.Appointment, error)
	CreateAppointment(ctx context.Context, in models.NewAppointment) (*models.Appointment, error)
	ConfirmAppointment(ctx context.Context, id models.ID) (*models.Appointment, error)
	StartAppointment(ctx context.Context, id models.ID) (*models.Appointment, error)
	CompleteAppointment(ctx context.Context, id models.ID) (*models.Appointment, error)
	CancelAppointment(ctx context.Context, id models.ID) (*models.Appointment, error)
	RescheduleAppointment(ctx context.Context, id models.ID, date, startTime string) (*models.Appointment, error)
	MoveAppointment(ctx context.Context, id, employeeID models.ID) (*models.Appointment, error)
	DeleteAppointment(ctx context.Context, id models.ID) error
	ListClients(ctx context.Context, salonID models.ID, filters url.Values) (apiclient.Page[models.Client], error)
	ListEmployees(ctx context.Context, salonID models.ID, filters url.Values) (apiclient.Page[models.Employee], error)
	ListServices(ctx context.Context, salonID models.ID, filters url.Values) (apiclient.Page[models.Service], error)
}

// UserSource returns the logged-in user, or nil.
type UserSource interface {
	User() *models.User
}

// TenantSource returns the active salon or an error when there is none.
type TenantSource interface {
	Salon() (*models.Salon, error)
}

// Event is a successful appointment change.
type Event struct {
	Action      permissions.Action
	Appointment models.Appointment
	Salon       *models.Salon
	// Client is nil when the client could not be looked up.
	Client *models.Client
}

// Notifier is told about successful changes, for example to message the
// client.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

// ListStaleTime is how long the page's lists are served from cache.
// Mutations invalidate them earlier.
const ListStaleTime = 15 * time.Second

type Manager struct {
	api      API
	cache    *cache.Cache
	users    UserSource
	tenant   TenantSource
	notifier Notifier
	logger   *slog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewManager(api API, c *cache.Cache, users UserSource, tenant TenantSource, notifier Notifier, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		api:      api,
		cache:    c,
		users:    users,
		tenant:   tenant,
		notifier: notifier,
		logger:   logger,
		inflight: make(map[string]struct{}),
	}
}

// Result is a successful mutation with its confirmation message.
type Result struct {
	Appointment *models.Appointment `json:"appointment,omitempty"`
	Message     string              `json:"message"`
}

var successMessages = map[permissions.Action]string{
	permissions.ActionCreate:     "Rendez-vous créé avec succès",
	permissions.ActionConfirm:    "Rendez-vous confirmé",
	permissions.ActionStart:      "Rendez-vous démarré",
	permissions.ActionComplete:   "Rendez-vous terminé",
	permissions.ActionCancel:     "Rendez-vous annulé",
	permissions.ActionReschedule: "Rendez-vous reporté",
	permissions.ActionMove:       "Rendez-vous déplacé",
	permissions.ActionDelete:     "Rendez-vous supprimé",
}

// Create books a new PENDING appointment in the active salon.
func (m *Manager) Create(ctx context.Context, in models.NewAppointment) (*Result, error) {
	action := permissions.ActionCreate
	if !permissions.Evaluate(m.users.User(), nil).CanCreate {
		return nil, m.fail(action, ErrForbidden)
	}
	salon, err := m.tenant.Salon()
	if err != nil {
		return nil, m.fail(action, err)
	}
	if err := validateNew(&in); err != nil {
		return nil, m.fail(action, err)
	}
	in.Salon = salon.ID
	in.Status = string(models.StatusPending)

	release, err := m.acquire(action, fmt.Sprintf("%d-%s-%s", in.Employee, in.Date, in.StartTime))
	if err != nil {
		return nil, m.fail(action, err)
	}
	defer release()

	apt, err := m.api.CreateAppointment(ctx, in)
	if err != nil {
		return nil, m.fail(action, err)
	}
	m.cache.Invalidate("appointments")
	return &Result{Appointment: apt, Message: successMessages[action]}, nil
}

func (m *Manager) Confirm(ctx context.Context, id models.ID) (*Result, error) {
	return m.mutate(ctx, permissions.ActionConfirm, id, nil, m.api.ConfirmAppointment)
}

func (m *Manager) Start(ctx context.Context, id models.ID) (*Result, error) {
	return m.mutate(ctx, permissions.ActionStart, id, nil, m.api.StartAppointment)
}

func (m *Manager) Complete(ctx context.Context, id models.ID) (*Result, error) {
	return m.mutate(ctx, permissions.ActionComplete, id, nil, m.api.CompleteAppointment)
}

func (m *Manager) Cancel(ctx context.Context, id models.ID) (*Result, error) {
	return m.mutate(ctx, permissions.ActionCancel, id, nil, m.api.CancelAppointment)
}

// Reschedule moves the appointment to another day and start time; the API
// recomputes the end time.
func (m *Manager) Reschedule(ctx context.Context, id models.ID, date, startTime string) (*Result, error) {
	action := permissions.ActionReschedule
	if _, err := dates.ParseDate(date); err != nil {
		return nil, m.fail(action, fmt.Errorf("%w: %v", ErrInvalidInput, err))
	}
	clock, err := dates.NormalizeClock(startTime)
	if err != nil {
		return nil, m.fail(action, fmt.Errorf("%w: %v", ErrInvalidInput, err))
	}
	return m.mutate(ctx, action, id, nil, func(ctx context.Context, id models.ID) (*models.Appointment, error) {
		return m.api.RescheduleAppointment(ctx, id, date, clock)
	})
}

// Move reassigns the appointment to another coiffeur.
func (m *Manager) Move(ctx context.Context, id, employeeID models.ID) (*Result, error) {
	action := permissions.ActionMove
	check := func(ctx context.Context, apt *models.Appointment) error {
		candidates, err := m.moveCandidates(ctx, apt)
		if err != nil {
			return err
		}
		for _, e := range candidates {
			if e.ID == employeeID {
				return nil
			}
		}
		return fmt.Errorf("%w: employee %d cannot take this appointment", ErrInvalidInput, employeeID)
	}
	return m.mutate(ctx, action, id, check, func(ctx context.Context, id models.ID) (*models.Appointment, error) {
		return m.api.MoveAppointment(ctx, id, employeeID)
	})
}

// Delete removes an appointment whatever its status.
func (m *Manager) Delete(ctx context.Context, id models.ID) (*Result, error) {
	return m.mutate(ctx, permissions.ActionDelete, id, nil, func(ctx context.Context, id models.ID) (*models.Appointment, error) {
		return nil, m.api.DeleteAppointment(ctx, id)
	})
}

// Get returns one appointment of the active salon.
func (m *Manager) Get(ctx context.Context, id models.ID) (*models.Appointment, error) {
	salon, err := m.tenant.Salon()
	if err != nil {
		return nil, err
	}
	apt, err := cache.Get(ctx, m.cache, cache.Key("appointment", id), cache.Options{StaleTime: ListStaleTime},
		func(ctx context.Context) (*models.Appointment, error) {
			return m.api.GetAppointment(ctx, id)
		})
	if err != nil {
		if apiclient.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !apt.Salon.IsZero() && apt.Salon != salon.ID {
		return nil, ErrNotFound
	}
	return apt, nil
}

// Permissions evaluates the user's permissions on one appointment, or in
// general when id is zero.
func (m *Manager) Permissions(ctx context.Context, id models.ID) (permissions.Permissions, []permissions.Action, error) {
	user := m.users.User()
	if id.IsZero() {
		return permissions.Evaluate(user, nil), nil, nil
	}
	apt, err := m.Get(ctx, id)
	if err != nil {
		return permissions.Permissions{}, nil, err
	}
	perms := permissions.Evaluate(user, apt)
	return perms, AvailableActions(perms, apt), nil
}

// MoveCandidates lists the coiffeurs apt can be moved to.
func (m *Manager) MoveCandidates(ctx context.Context, id models.ID) ([]models.Employee, error) {
	apt, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.moveCandidates(ctx, apt)
}

func (m *Manager) moveCandidates(ctx context.Context, apt *models.Appointment) ([]models.Employee, error) {
	salon, err := m.tenant.Salon()
	if err != nil {
		return nil, err
	}
	employees, err := m.employees(ctx, salon.ID)
	if err != nil {
		return nil, err
	}
	return MoveCandidates(apt, employees), nil
}

// mutate runs one action on an existing appointment: permission and status
// checks, the in-flight guard, the API call, then cache invalidation and
// notification. Nothing is changed locally before the API answers.
func (m *Manager) mutate(
	ctx context.Context,
	action permissions.Action,
	id models.ID,
	check func(context.Context, *models.Appointment) error,
	call func(context.Context, models.ID) (*models.Appointment, error),
) (*Result, error) {
	release, err := m.acquire(action, id.String())
	if err != nil {
		return nil, m.fail(action, err)
	}
	defer release()

	// Permissions and status are checked against a fresh copy.
	m.cache.Invalidate("appointment", id)
	current, err := m.Get(ctx, id)
	if err != nil {
		return nil, m.fail(action, err)
	}
	if !permissions.Evaluate(m.users.User(), current).CanPerformAction(action, current) {
		return nil, m.fail(action, ErrForbidden)
	}
	if _, err := Transition(action, current.Status); err != nil {
		return nil, m.fail(action, err)
	}
	if check != nil {
		if err := check(ctx, current); err != nil {
			return nil, m.fail(action, err)
		}
	}

	apt, err := call(ctx, id)
	if err != nil {
		return nil, m.fail(action, err)
	}
	m.cache.Invalidate("appointments")
	m.cache.Invalidate("appointment", id)

	if m.notifier != nil && apt != nil {
		m.notify(ctx, action, apt)
	}
	m.logger.Info("appointment updated", "action", action, "appointment", id)
	return &Result{Appointment: apt, Message: successMessages[action]}, nil
}

func (m *Manager) notify(ctx context.Context, action permissions.Action, apt *models.Appointment) {
	ev := Event{Action: action, Appointment: *apt}
	if salon, err := m.tenant.Salon(); err == nil {
		ev.Salon = salon
		if clients, err := m.clients(ctx, salon.ID); err == nil {
			for i := range clients {
				if clients[i].ID == apt.Client {
					ev.Client = &clients[i]
					break
				}
			}
		} else {
			m.logger.Warn("look up client for notification", "client", apt.Client, "err", err)
		}
	}
	m.notifier.Notify(ctx, ev)
}

// acquire marks (action, key) as running. The returned func clears it.
func (m *Manager) acquire(action permissions.Action, key string) (func(), error) {
	k := string(action) + ":" + key
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, busy := m.inflight[k]; busy {
		return nil, ErrMutationInFlight
	}
	m.inflight[k] = struct{}{}
	return func() {
		m.mu.Lock()
		delete(m.inflight, k)
		m.mu.Unlock()
	}, nil
}

func (m *Manager) fail(action permissions.Action, err error) error {
	m.logger.Warn("appointment action failed", "action", action, "err", err)
	return &MutationError{Action: action, Err: err}
}

func validateNew(in *models.NewAppointment) error {
	var missing []string
	if in.Client.IsZero() {
		missing = append(missing, "client")
	}
	if in.Service.IsZero() {
		missing = append(missing, "service")
	}
	if in.Employee.IsZero() {
		missing = append(missing, "employee")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidInput, strings.Join(missing, ", "))
	}
	if _, err := dates.ParseDate(in.Date); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	clock, err := dates.NormalizeClock(in.StartTime)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	in.StartTime = clock
	if in.Source != "" && !in.Source.Valid() {
		return fmt.Errorf("%w: unknown source %q", ErrInvalidInput, in.Source)
	}
	return nil
}

// View is everything the appointments page shows for one state.
type View struct {
	State        ViewState               `json:"state"`
	DayLabel     string                  `json:"dayLabel"`
	Salon        *models.Salon           `json:"salon"`
	Disabled     bool                    `json:"disabled"`
	Appointments []models.Appointment    `json:"appointments"`
	Grid         *Grid                   `json:"grid,omitempty"`
	Stats        Stats                   `json:"stats"`
	Employees    []models.Employee       `json:"employees"`
	Clients      []models.Client         `json:"clients"`
	Services     []models.Service        `json:"services"`
	Permissions  permissions.Permissions `json:"permissions"`
}

// LoadView fetches the page data of the active salon. Without a salon the
// view is empty and disabled, and nothing is fetched.
func (m *Manager) LoadView(ctx context.Context, state ViewState) (*View, error) {
	view := &View{
		State:        state,
		Appointments: []models.Appointment{},
		Employees:    []models.Employee{},
		Clients:      []models.Client{},
		Services:     []models.Service{},
		Permissions:  permissions.Evaluate(m.users.User(), nil),
	}
	salon, err := m.tenant.Salon()
	if err != nil {
		view.Disabled = true
		return view, nil
	}
	view.Salon = salon

	var apts []models.Appointment
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		apts, err = m.appointments(gctx, salon.ID, state.SelectedDate)
		return err
	})
	g.Go(func() (err error) {
		view.Employees, err = m.employees(gctx, salon.ID)
		return err
	})
	g.Go(func() (err error) {
		view.Clients, err = m.clients(gctx, salon.ID)
		return err
	})
	g.Go(func() (err error) {
		view.Services, err = m.services(gctx, salon.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view.Appointments = Filter(apts, view.Clients, state)
	view.Stats = DayStats(apts, state.SelectedDate)
	if state.ViewMode != ViewList {
		grid := BuildGrid(view.Appointments, view.Employees, state)
		view.Grid = &grid
	}
	return view, nil
}

func (m *Manager) appointments(ctx context.Context, salonID models.ID, date string) ([]models.Appointment, error) {
	return cache.Get(ctx, m.cache, cache.Key("appointments", salonID, date), cache.Options{StaleTime: ListStaleTime},
		func(ctx context.Context) ([]models.Appointment, error) {
			page, err := m.api.ListAppointments(ctx, salonID, url.Values{"date": {date}})
			return page.Results, err
		})
}

func (m *Manager) employees(ctx context.Context, salonID models.ID) ([]models.Employee, error) {
	return cache.Get(ctx, m.cache, cache.Key("employees", salonID), cache.Options{StaleTime: ListStaleTime},
		func(ctx context.Context) ([]models.Employee, error) {
			page, err := m.api.ListEmployees(ctx, salonID, nil)
			return page.Results, err
		})
}

func (m *Manager) clients(ctx context.Context, salonID models.ID) ([]models.Client, error) {
	return cache.Get(ctx, m.cache, cache.Key("clients", salonID), cache.Options{StaleTime: ListStaleTime},
		func(ctx context.Context) ([]models.Client, error) {
			page, err := m.api.ListClients(ctx, salonID, nil)
			return page.Results, err
		})
}

func (m *Manager) services(ctx context.Context, salonID models.ID) ([]models.Service, error) {
	return cache.Get(ctx, m.cache, cache.Key("services", salonID), cache.Options{StaleTime: ListStaleTime},
		func(ctx context.Context) ([]models.Service, error) {
			page, err := m.api.ListServices(ctx, salonID, nil)
			return page.Results, err
		})
}
