package handler

import (
	"net/http"
	"strconv"

	"github.com/gymboard/booking-service/internal/errs"
	"github.com/gymboard/booking-service/internal/model"
	"github.com/gymboard/booking-service/pkg/auth"
	"github.com/gymboard/booking-service/pkg/validate"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Handler struct {
	bookingSvc BookingService
	log        *zap.Logger
}

func New(bookingSvc BookingService, log *zap.Logger) *Handler {
	return &Handler{
		bookingSvc: bookingSvc,
		log:        log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", newRateLimiterMW(baseRPS))
	base.GET("/manage/health", h.Health)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(requestLoggerConfig(h.log)),
		middleware.RequestID(),
		newRateLimiterMW(apiRPS),
		authContextMW,
	)

	api.GET("/sections/:sectionId", h.GetSection)
	api.GET("/sections/:sectionId/slots", h.SlotStatuses)
	api.GET("/sections/:sectionId/disabled-dates", h.DisabledDates)
	api.GET("/sections/:sectionId/changes", h.SectionChanges)
	api.POST("/sections", h.CreateSection, requireAdminMW)

	api.POST("/reservations", h.CreateReservation)
	api.GET("/reservations", h.ListReservations)
	api.POST("/reservations/:reservationUid/cancel", h.CancelReservation)

	api.POST("/waitlist", h.JoinWaitlist)

	api.GET("/entitlements", h.Entitlements)
	api.GET("/entitlements/can-reserve", h.CanReserve)
	api.POST("/entitlements", h.GrantEntitlement, requireAdminMW)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) SlotStatuses(c echo.Context) error {
	sectionID := c.Param("sectionId")
	date, err := model.ParseDate(c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	bt := model.BookingType(c.QueryParam("bookingType"))
	if bt == "" {
		bt = model.BookingGymVisit
	}

	status, err := h.bookingSvc.Resolve(c.Request().Context(), sectionID, date, bt)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, status)
}

func (h *Handler) DisabledDates(c echo.Context) error {
	sectionID := c.Param("sectionId")
	consumerID, err := consumerFrom(c)
	if err != nil {
		return err
	}
	bt := model.BookingType(c.QueryParam("bookingType"))
	if bt == "" {
		bt = model.BookingGymVisit
	}
	horizonDays := 0
	if raw := c.QueryParam("horizonDays"); raw != "" {
		if horizonDays, err = strconv.Atoi(raw); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "horizonDays must be an integer")
		}
	}

	dates, err := h.bookingSvc.DisabledDates(c.Request().Context(), sectionID, consumerID, bt, horizonDays)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"disabledDates": dates})
}

func (h *Handler) CreateReservation(c echo.Context) error {
	var req model.CreateReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	consumerID, err := consumerFrom(c)
	if err != nil {
		return err
	}
	req.ConsumerID = consumerID
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := h.bookingSvc.CreateReservation(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) ListReservations(c echo.Context) error {
	consumerID, err := consumerFrom(c)
	if err != nil {
		return err
	}
	items, err := h.bookingSvc.ListReservations(c.Request().Context(), consumerID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CancelReservation(c echo.Context) error {
	reservationUID := c.Param("reservationUid")
	if reservationUID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "reservationUid is empty")
	}
	consumerID, err := consumerFrom(c)
	if err != nil {
		return err
	}
	// Admins may cancel on behalf of any consumer.
	if role, _ := auth.UserRole(c.Request().Context()); role == auth.RoleAdmin {
		consumerID = ""
	}

	if err := h.bookingSvc.CancelReservation(c.Request().Context(), consumerID, reservationUID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusOK)
}

func (h *Handler) JoinWaitlist(c echo.Context) error {
	var req model.JoinWaitlistRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	consumerID, err := consumerFrom(c)
	if err != nil {
		return err
	}
	req.ConsumerID = consumerID
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	entry, err := h.bookingSvc.JoinWaitlist(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, entry)
}

func (h *Handler) Entitlements(c echo.Context) error {
	consumerID, err := consumerFrom(c)
	if err != nil {
		return err
	}
	summary, err := h.bookingSvc.Entitlements(c.Request().Context(), consumerID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Handler) CanReserve(c echo.Context) error {
	consumerID, err := consumerFrom(c)
	if err != nil {
		return err
	}
	bt := model.BookingType(c.QueryParam("bookingType"))
	if bt == "" {
		bt = model.BookingGymVisit
	}
	decision, err := h.bookingSvc.CanReserve(c.Request().Context(), consumerID, bt)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, decision)
}

func (h *Handler) GrantEntitlement(c echo.Context) error {
	var req model.GrantEntitlementRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ent, err := h.bookingSvc.GrantEntitlement(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, ent)
}

func (h *Handler) CreateSection(c echo.Context) error {
	var req model.CreateSectionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	section, err := h.bookingSvc.CreateSection(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, section)
}

func (h *Handler) GetSection(c echo.Context) error {
	section, err := h.bookingSvc.GetSection(c.Request().Context(), c.Param("sectionId"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, section)
}

func consumerFrom(c echo.Context) (string, error) {
	name, ok := auth.UserName(c.Request().Context())
	if !ok || name == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "user-name is empty")
	}
	return name, nil
}

func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrEntitlementExhausted),
		errors.Is(err, errs.ErrSlotFull),
		errors.Is(err, errs.ErrSlotNotFull):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, errs.ErrSectionClosed),
		errors.Is(err, errs.ErrInvalidDate),
		errors.Is(err, errs.ErrInvalidBookingType):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrStoreUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
