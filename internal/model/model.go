package model

import (
	"database/sql/driver"
	"time"

	"github.com/pkg/errors"
)

type BookingType string

const (
	BookingGymVisit  BookingType = "gym_visit"
	BookingVideocall BookingType = "videocall"
)

func (b BookingType) Valid() bool {
	return b == BookingGymVisit || b == BookingVideocall
}

type ReservationStatus string

const (
	StatusConfirmed ReservationStatus = "CONFIRMED"
	StatusCancelled ReservationStatus = "CANCELLED"
)

type EntitlementKind string

const (
	KindMonthlyAllowance EntitlementKind = "monthly_allowance"
	KindVisitPackage     EntitlementKind = "visit_package"
	KindVideocallPackage EntitlementKind = "videocall_package"
	KindSingleVideocall  EntitlementKind = "single_videocall"
)

// KindsFor lists entitlement kinds that can pay for a booking type,
// in consumption-preference order.
func KindsFor(bt BookingType) []EntitlementKind {
	switch bt {
	case BookingVideocall:
		return []EntitlementKind{KindVideocallPackage, KindSingleVideocall}
	default:
		return []EntitlementKind{KindMonthlyAllowance, KindVisitPackage}
	}
}

type WaitlistStatus string

const (
	WaitlistWaiting   WaitlistStatus = "waiting"
	WaitlistPromoted  WaitlistStatus = "promoted"
	WaitlistExpired   WaitlistStatus = "expired"
	WaitlistFulfilled WaitlistStatus = "fulfilled"
)

// Date is a calendar day without a time-of-day component. It marshals
// as "2006-01-02" and maps onto Postgres date columns.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), now.Month(), now.Day())
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, errors.Wrap(err, "parse date")
	}
	return Date{Time: t.UTC()}, nil
}

func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

func (d Date) Before(other Date) bool { return d.Time.Before(other.Time) }
func (d Date) After(other Date) bool  { return d.Time.After(other.Time) }
func (d Date) String() string         { return d.Time.Format(time.DateOnly) }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return errors.New("date must be a string")
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Value() (driver.Value, error) {
	return d.Time, nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.Time = time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return errors.Errorf("cannot scan %T into Date", src)
	}
}

// WeeklyHours maps a weekday to the ordered time slots the section is
// open that day. An absent or empty weekday means closed.
type WeeklyHours map[time.Weekday][]string

type Section struct {
	ID              string      `json:"id" db:"id"`
	Name            string      `json:"name" db:"name"`
	CapacityPerSlot int         `json:"capacityPerSlot" db:"capacity_per_slot"`
	WeeklyHours     WeeklyHours `json:"weeklyHours" db:"-"`
	CreatedAt       time.Time   `json:"-" db:"created_at"`
}

// SlotsFor returns the configured slots for the date's weekday in
// chronological order.
func (s Section) SlotsFor(date Date) []string {
	return s.WeeklyHours[date.Weekday()]
}

type Reservation struct {
	ID             int               `json:"-" db:"id"`
	ReservationUID string            `json:"reservationUid" db:"reservation_uid"`
	SectionID      string            `json:"sectionId" db:"section_id"`
	Date           Date              `json:"date" db:"date"`
	TimeSlot       string            `json:"timeSlot" db:"time_slot"`
	ConsumerID     string            `json:"consumerId" db:"consumer_id"`
	BookingType    BookingType       `json:"bookingType" db:"booking_type"`
	Status         ReservationStatus `json:"status" db:"status"`
	CreatedAt      time.Time         `json:"createdAt" db:"created_at"`
}

type Entitlement struct {
	ID             int             `json:"-" db:"id"`
	ConsumerID     string          `json:"consumerId" db:"consumer_id"`
	Kind           EntitlementKind `json:"kind" db:"kind"`
	RemainingCount *int            `json:"remainingCount" db:"remaining_count"`
	PeriodEnd      *Date           `json:"periodEnd" db:"period_end"`
}

// Expired reports whether the entitlement period ended before today.
func (e Entitlement) Expired(today Date) bool {
	return e.PeriodEnd != nil && e.PeriodEnd.Before(today)
}

// Usable reports whether the entitlement can pay for one more booking
// today. A nil RemainingCount means unbounded within the period.
func (e Entitlement) Usable(today Date) bool {
	if e.Expired(today) {
		return false
	}
	return e.RemainingCount == nil || *e.RemainingCount > 0
}

type EntitlementDecision struct {
	Allowed        bool `json:"allowed"`
	RemainingAfter *int `json:"remainingAfter"`
}

type WaitlistEntry struct {
	ID            int            `json:"-" db:"id"`
	EntryUID      string         `json:"entryUid" db:"entry_uid"`
	SectionID     string         `json:"sectionId" db:"section_id"`
	Date          Date           `json:"date" db:"date"`
	TimeSlot      string         `json:"timeSlot" db:"time_slot"`
	BookingType   BookingType    `json:"bookingType" db:"booking_type"`
	ConsumerID    string         `json:"consumerId" db:"consumer_id"`
	Status        WaitlistStatus `json:"status" db:"status"`
	HoldExpiresAt *time.Time     `json:"holdExpiresAt,omitempty" db:"hold_expires_at"`
	CreatedAt     time.Time      `json:"createdAt" db:"created_at"`
}

// SlotStatus classifies a date's slots by occupancy.
type SlotStatus struct {
	Available []string       `json:"available"`
	Full      []string       `json:"full"`
	Counts    map[string]int `json:"counts"`
}

// SlotOccupancy is one row of the batched horizon occupancy query.
type SlotOccupancy struct {
	Date     Date   `db:"date"`
	TimeSlot string `db:"time_slot"`
	Count    int    `db:"cnt"`
}

// InvalidationEvent tells subscribers that something changed for a
// section; it deliberately carries no further payload.
type InvalidationEvent struct {
	SectionID  string    `json:"sectionId"`
	OccurredAt time.Time `json:"occurredAt"`
}

// BookingEvent is the wire form of a reservation mutation published to
// the broker.
type BookingEvent struct {
	SectionID   string      `json:"sectionId"`
	Date        Date        `json:"date"`
	TimeSlot    string      `json:"timeSlot"`
	BookingType BookingType `json:"bookingType"`
	Action      string      `json:"action"`
}

const (
	ActionCreated   = "created"
	ActionCancelled = "cancelled"
	ActionPromoted  = "promoted"
)
