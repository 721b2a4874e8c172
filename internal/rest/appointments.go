package rest

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

type TimeSlots struct {
	StylistID      string   `json:"stylist_id"`
	StylistName    string   `json:"stylist_name"`
	JalaliDate     string   `json:"jalali_date"`
	AvailableSlots []string `json:"available_slots"`
	WorkingHours   struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"working_hours"`
}

type BookingRequest struct {
	StylistID     int    `json:"stylist_id"`
	ServiceID     int    `json:"service_id"`
	JalaliDate    string `json:"jalali_date"`
	TimeSlot      string `json:"time_slot"`
	CustomerNotes string `json:"customer_notes,omitempty"`
}

type Appointment struct {
	ID              int    `json:"id"`
	CustomerName    string `json:"customer_name,omitempty"`
	StylistName     string `json:"stylist_name"`
	ServiceName     string `json:"service_name"`
	SalonName       string `json:"salon_name"`
	SalonAddress    string `json:"salon_address"`
	AppointmentDate string `json:"appointment_date"`
	AppointmentTime string `json:"appointment_time"`
	JalaliDate      string `json:"jalali_date"`
	Status          string `json:"status"`
	CustomerNotes   string `json:"customer_notes,omitempty"`
}

type MyAppointments struct {
	Count        int           `json:"count"`
	Appointments []Appointment `json:"appointments"`
}

func (c *Client) Availability(ctx context.Context, stylistID int, jalaliDate string) (TimeSlots, error) {
	query := url.Values{
		"stylist_id":  {strconv.Itoa(stylistID)},
		"jalali_date": {jalaliDate},
	}
	var slots TimeSlots
	if err := c.get(ctx, "/appointments/api/availability/", query, &slots); err != nil {
		return TimeSlots{}, err
	}
	return slots, nil
}

func (c *Client) BookAppointment(ctx context.Context, req BookingRequest) error {
	return c.post(ctx, "/appointments/api/book/", req, nil)
}

func (c *Client) MyAppointments(ctx context.Context) (MyAppointments, error) {
	var result MyAppointments
	if err := c.get(ctx, "/appointments/api/my-appointments/", nil, &result); err != nil {
		return MyAppointments{}, err
	}
	return result, nil
}

func (c *Client) CancelAppointment(ctx context.Context, id int) error {
	return c.post(ctx, fmt.Sprintf("/appointments/api/cancel/%d/", id), nil, nil)
}
