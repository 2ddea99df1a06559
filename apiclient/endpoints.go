package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"salonpro-gateway/models"
)

// LoginResponse is the answer of POST /auth/login/.
type LoginResponse struct {
	Access  string      `json:"access"`
	Refresh string      `json:"refresh"`
	User    models.User `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.DoAnonymous(ctx, http.MethodPost, "/auth/login/", nil, body, &out); err != nil {
		return nil, err
	}
	if out.Access == "" {
		return nil, fmt.Errorf("login: missing access token")
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.Do(ctx, http.MethodGet, "/auth/me/", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// List fetches a list endpoint and normalizes its shape.
func List[T any](ctx context.Context, c *Client, path string, query url.Values) (Page[T], error) {
	var raw json.RawMessage
	if err := c.Do(ctx, http.MethodGet, path, query, nil, &raw); err != nil {
		return Page[T]{}, err
	}
	return DecodePage[T](raw)
}

func listPublic[T any](ctx context.Context, c *Client, path string, query url.Values) (Page[T], error) {
	var raw json.RawMessage
	if err := c.DoAnonymous(ctx, http.MethodGet, path, query, nil, &raw); err != nil {
		return Page[T]{}, err
	}
	return DecodePage[T](raw)
}

// scoped adds the tenant filter every scoped list endpoint takes.
func scoped(salonID models.ID, filters url.Values) url.Values {
	q := url.Values{}
	for k, v := range filters {
		q[k] = append([]string(nil), v...)
	}
	q.Set("salon", salonID.String())
	return q
}

func get[T any](ctx context.Context, c *Client, path string) (*T, error) {
	var out T
	if err := c.Do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Salons

func (c *Client) ListSalons(ctx context.Context) (Page[models.Salon], error) {
	return List[models.Salon](ctx, c, "/salons/", nil)
}

func (c *Client) GetSalon(ctx context.Context, id models.ID) (*models.Salon, error) {
	return get[models.Salon](ctx, c, fmt.Sprintf("/salons/%d/", id))
}

func (c *Client) UpdateSalonTheme(ctx context.Context, id models.ID, theme models.TenantTheme) (*models.Salon, error) {
	var out models.Salon
	err := c.Do(ctx, http.MethodPatch, fmt.Sprintf("/salons/%d/", id), nil, map[string]any{"theme": theme}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListOpeningHours(ctx context.Context, salonID models.ID) (Page[models.OpeningHour], error) {
	return List[models.OpeningHour](ctx, c, "/opening-hours/", scoped(salonID, nil))
}

// Scoped resources

func (c *Client) ListClients(ctx context.Context, salonID models.ID, filters url.Values) (Page[models.Client], error) {
	return List[models.Client](ctx, c, "/clients/", scoped(salonID, filters))
}

func (c *Client) GetClient(ctx context.Context, id models.ID) (*models.Client, error) {
	return get[models.Client](ctx, c, fmt.Sprintf("/clients/%d/", id))
}

func (c *Client) ListEmployees(ctx context.Context, salonID models.ID, filters url.Values) (Page[models.Employee], error) {
	return List[models.Employee](ctx, c, "/employees/", scoped(salonID, filters))
}

func (c *Client) GetEmployee(ctx context.Context, id models.ID) (*models.Employee, error) {
	return get[models.Employee](ctx, c, fmt.Sprintf("/employees/%d/", id))
}

func (c *Client) ListServices(ctx context.Context, salonID models.ID, filters url.Values) (Page[models.Service], error) {
	return List[models.Service](ctx, c, "/services/", scoped(salonID, filters))
}

func (c *Client) GetService(ctx context.Context, id models.ID) (*models.Service, error) {
	return get[models.Service](ctx, c, fmt.Sprintf("/services/%d/", id))
}

func (c *Client) ListCategories(ctx context.Context, salonID models.ID, filters url.Values) (Page[models.ServiceCategory], error) {
	return List[models.ServiceCategory](ctx, c, "/services/categories/", scoped(salonID, filters))
}

func (c *Client) ListPayments(ctx context.Context, salonID models.ID, filters url.Values) (Page[models.Payment], error) {
	return List[models.Payment](ctx, c, "/payments/", scoped(salonID, filters))
}

func (c *Client) GetPayment(ctx context.Context, id models.ID) (*models.Payment, error) {
	return get[models.Payment](ctx, c, fmt.Sprintf("/payments/%d/", id))
}

// Appointments

func (c *Client) ListAppointments(ctx context.Context, salonID models.ID, filters url.Values) (Page[models.Appointment], error) {
	return List[models.Appointment](ctx, c, "/appointments/", scoped(salonID, filters))
}

func (c *Client) GetAppointment(ctx context.Context, id models.ID) (*models.Appointment, error) {
	return get[models.Appointment](ctx, c, appointmentPath(id, ""))
}

func (c *Client) CreateAppointment(ctx context.Context, in models.NewAppointment) (*models.Appointment, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, http.MethodPost, "/appointments/", nil, in, &raw); err != nil {
		return nil, err
	}
	return decodeAppointment(raw)
}

// UpdateAppointment patches the given fields of an appointment.
func (c *Client) UpdateAppointment(ctx context.Context, id models.ID, fields map[string]any) (*models.Appointment, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, http.MethodPatch, appointmentPath(id, ""), nil, fields, &raw); err != nil {
		return nil, err
	}
	return decodeAppointment(raw)
}

func (c *Client) DeleteAppointment(ctx context.Context, id models.ID) error {
	return c.Do(ctx, http.MethodDelete, appointmentPath(id, ""), nil, nil, nil)
}

func (c *Client) ConfirmAppointment(ctx context.Context, id models.ID) (*models.Appointment, error) {
	return c.appointmentAction(ctx, id, "confirm")
}

func (c *Client) StartAppointment(ctx context.Context, id models.ID) (*models.Appointment, error) {
	return c.appointmentAction(ctx, id, "start")
}

func (c *Client) CompleteAppointment(ctx context.Context, id models.ID) (*models.Appointment, error) {
	return c.appointmentAction(ctx, id, "complete")
}

func (c *Client) CancelAppointment(ctx context.Context, id models.ID) (*models.Appointment, error) {
	return c.appointmentAction(ctx, id, "cancel")
}

// RescheduleAppointment changes date and start time; the server recomputes
// the end time.
func (c *Client) RescheduleAppointment(ctx context.Context, id models.ID, date, startTime string) (*models.Appointment, error) {
	return c.UpdateAppointment(ctx, id, map[string]any{"date": date, "start_time": startTime})
}

func (c *Client) MoveAppointment(ctx context.Context, id, employeeID models.ID) (*models.Appointment, error) {
	return c.UpdateAppointment(ctx, id, map[string]any{"employee": employeeID})
}

// action endpoints take no body
func (c *Client) appointmentAction(ctx context.Context, id models.ID, action string) (*models.Appointment, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, http.MethodPost, appointmentPath(id, action), nil, nil, &raw); err != nil {
		return nil, err
	}
	return decodeAppointment(raw)
}

func appointmentPath(id models.ID, action string) string {
	if action == "" {
		return fmt.Sprintf("/appointments/%d/", id)
	}
	return fmt.Sprintf("/appointments/%d/%s/", id, action)
}

// decodeAppointment accepts the appointment itself or the
// {success, message, appointment} envelope of the action endpoints.
// An empty body yields a nil appointment.
func decodeAppointment(raw []byte) (*models.Appointment, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var envelope struct {
		Appointment *models.Appointment `json:"appointment"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Appointment != nil {
		return envelope.Appointment, nil
	}
	var apt models.Appointment
	if err := json.Unmarshal(raw, &apt); err != nil {
		return nil, fmt.Errorf("decode appointment: %w", err)
	}
	return &apt, nil
}

// Public site, keyed by slug and unauthenticated

func (c *Client) PublicServices(ctx context.Context, slug string) (Page[models.Service], error) {
	return listPublic[models.Service](ctx, c, "/public/salon/"+url.PathEscape(slug)+"/services/", nil)
}

func (c *Client) PublicCategories(ctx context.Context, slug string) (Page[models.ServiceCategory], error) {
	return listPublic[models.ServiceCategory](ctx, c, "/public/salon/"+url.PathEscape(slug)+"/categories/", nil)
}

func (c *Client) PublicEmployees(ctx context.Context, slug string) (Page[models.Employee], error) {
	return listPublic[models.Employee](ctx, c, "/public/salon/"+url.PathEscape(slug)+"/employees/", nil)
}

func (c *Client) AvailableSlots(ctx context.Context, slug string, employeeID models.ID, date string, serviceID models.ID) (*models.AvailableSlots, error) {
	q := url.Values{}
	q.Set("salon_slug", slug)
	q.Set("employee_id", employeeID.String())
	q.Set("date", date)
	if !serviceID.IsZero() {
		q.Set("service_id", serviceID.String())
	}
	var out models.AvailableSlots
	if err := c.DoAnonymous(ctx, http.MethodGet, "/public/booking/available-slots/", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreatePublicBooking(ctx context.Context, in models.PublicBooking) (*models.Appointment, error) {
	var raw json.RawMessage
	if err := c.DoAnonymous(ctx, http.MethodPost, "/public/booking/create/", nil, in, &raw); err != nil {
		return nil, err
	}
	return decodeAppointment(raw)
}
