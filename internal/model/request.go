package model

type CreateReservationRequest struct {
	SectionID   string      `json:"sectionId" validate:"required"`
	Date        Date        `json:"date" validate:"required"`
	TimeSlot    string      `json:"timeSlot" validate:"required"`
	BookingType BookingType `json:"bookingType" validate:"required,oneof=gym_visit videocall"`
	ConsumerID  string      `json:"-" validate:"required"`
}

type JoinWaitlistRequest struct {
	SectionID   string      `json:"sectionId" validate:"required"`
	Date        Date        `json:"date" validate:"required"`
	TimeSlot    string      `json:"timeSlot" validate:"required"`
	BookingType BookingType `json:"bookingType" validate:"required,oneof=gym_visit videocall"`
	ConsumerID  string      `json:"-" validate:"required"`
}

type CreateSectionRequest struct {
	Name            string              `json:"name" validate:"required"`
	CapacityPerSlot int                 `json:"capacityPerSlot" validate:"required,min=1"`
	WeeklyHours     map[string][]string `json:"weeklyHours" validate:"required"`
}

type GrantEntitlementRequest struct {
	ConsumerID     string          `json:"consumerId" validate:"required"`
	Kind           EntitlementKind `json:"kind" validate:"required,oneof=monthly_allowance visit_package videocall_package single_videocall"`
	RemainingCount *int            `json:"remainingCount" validate:"omitempty,min=0"`
	PeriodEnd      *Date           `json:"periodEnd"`
}

type EntitlementSummary struct {
	Balances  []Entitlement                       `json:"balances"`
	Decisions map[BookingType]EntitlementDecision `json:"decisions"`
}
