package interviewsrv

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/errx"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/logx"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/notify"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/application"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/application/applicationsrv"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/interview"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// InterviewService handles slot allocation, booking and interview
// outcomes.
type InterviewService struct {
	slotRepo        interview.SlotRepository
	interviewRepo   interview.InterviewRepository
	bookingStore    interview.BookingStore
	applicationRepo application.Repository
	applicationSvc  *applicationsrv.ApplicationService
	dispatcher      notify.Dispatcher
}

// NewInterviewService creates a new instance of the interview service
func NewInterviewService(
	slotRepo interview.SlotRepository,
	interviewRepo interview.InterviewRepository,
	bookingStore interview.BookingStore,
	applicationRepo application.Repository,
	applicationSvc *applicationsrv.ApplicationService,
	dispatcher notify.Dispatcher,
) *InterviewService {
	return &InterviewService{
		slotRepo:        slotRepo,
		interviewRepo:   interviewRepo,
		bookingStore:    bookingStore,
		applicationRepo: applicationRepo,
		applicationSvc:  applicationSvc,
		dispatcher:      dispatcher,
	}
}

// ============================================================================
// Slot Allocation
// ============================================================================

// CreateSlots creates interview slots in bulk or manual mode
func (s *InterviewService) CreateSlots(ctx context.Context, req interview.CreateSlotsRequest, createdBy kernel.UserID) ([]interview.InterviewSlot, error) {
	switch req.Mode {
	case "bulk":
		if req.Bulk == nil {
			return nil, interview.ErrInvalidRequest().WithDetail("bulk", "missing bulk parameters")
		}
		return s.GenerateSlots(ctx, *req.Bulk, createdBy)
	case "manual":
		if len(req.Manual) == 0 {
			return nil, interview.ErrInvalidRequest().WithDetail("manual", "missing slot specs")
		}
		return s.CreateManualSlots(ctx, req.Manual, createdBy)
	default:
		return nil, interview.ErrInvalidRequest().WithDetail("mode", req.Mode)
	}
}

// GenerateSlots slices each day in [StartDate, EndDate] into
// duration-sized intervals between the daily start and end times. A
// trailing interval that does not fit whole is discarded.
func (s *InterviewService) GenerateSlots(ctx context.Context, req interview.GenerateSlotsRequest, createdBy kernel.UserID) ([]interview.InterviewSlot, error) {
	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, interview.ErrInvalidTimeWindow().WithDetail("start_date", req.StartDate)
	}
	endDate, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return nil, interview.ErrInvalidTimeWindow().WithDetail("end_date", req.EndDate)
	}
	if endDate.Before(startDate) {
		return nil, interview.ErrInvalidTimeWindow().
			WithDetail("start_date", req.StartDate).
			WithDetail("end_date", req.EndDate)
	}

	dailyStart, err := time.Parse(timeLayout, req.DailyStartTime)
	if err != nil {
		return nil, interview.ErrInvalidTimeWindow().WithDetail("daily_start_time", req.DailyStartTime)
	}
	dailyEnd, err := time.Parse(timeLayout, req.DailyEndTime)
	if err != nil {
		return nil, interview.ErrInvalidTimeWindow().WithDetail("daily_end_time", req.DailyEndTime)
	}
	if !dailyStart.Before(dailyEnd) {
		return nil, interview.ErrInvalidTimeWindow().
			WithDetail("daily_start_time", req.DailyStartTime).
			WithDetail("daily_end_time", req.DailyEndTime)
	}

	if req.DurationMinutes <= 0 {
		return nil, interview.ErrInvalidTimeWindow().WithDetail("duration_minutes", req.DurationMinutes)
	}
	if req.MaxInterviews <= 0 {
		return nil, interview.ErrInvalidRequest().WithDetail("max_interviews", req.MaxInterviews)
	}

	duration := time.Duration(req.DurationMinutes) * time.Minute
	now := time.Now()

	var slots []*interview.InterviewSlot
	for day := startDate; !day.After(endDate); day = day.AddDate(0, 0, 1) {
		windowStart := time.Date(day.Year(), day.Month(), day.Day(),
			dailyStart.Hour(), dailyStart.Minute(), 0, 0, time.UTC)
		windowEnd := time.Date(day.Year(), day.Month(), day.Day(),
			dailyEnd.Hour(), dailyEnd.Minute(), 0, 0, time.UTC)

		for start := windowStart; !start.Add(duration).After(windowEnd); start = start.Add(duration) {
			slots = append(slots, &interview.InterviewSlot{
				ID:            kernel.SlotID(uuid.NewString()),
				Date:          day,
				StartTime:     start,
				EndTime:       start.Add(duration),
				Tracks:        req.Tracks,
				MaxInterviews: req.MaxInterviews,
				BookedCount:   0,
				IsAvailable:   true,
				MeetingLink:   req.MeetingLink,
				CreatedBy:     createdBy,
				CreatedAt:     now,
				UpdatedAt:     now,
			})
		}
	}

	if err := s.slotRepo.CreateSlots(ctx, slots); err != nil {
		return nil, errx.Wrap(err, "failed to create generated slots", errx.TypeInternal)
	}

	logx.Infof("generated %d interview slots between %s and %s", len(slots), req.StartDate, req.EndDate)
	return dereferenceSlots(slots), nil
}

// CreateManualSlots creates explicitly specified slots, validated per
// tuple.
func (s *InterviewService) CreateManualSlots(ctx context.Context, specs []interview.ManualSlotSpec, createdBy kernel.UserID) ([]interview.InterviewSlot, error) {
	now := time.Now()
	slots := make([]*interview.InterviewSlot, 0, len(specs))

	for i, spec := range specs {
		day, err := time.Parse(dateLayout, spec.Date)
		if err != nil {
			return nil, interview.ErrInvalidTimeWindow().WithDetail("date", spec.Date)
		}
		start, err := time.Parse(timeLayout, spec.StartTime)
		if err != nil {
			return nil, interview.ErrInvalidTimeWindow().WithDetail("start_time", spec.StartTime)
		}
		end, err := time.Parse(timeLayout, spec.EndTime)
		if err != nil {
			return nil, interview.ErrInvalidTimeWindow().WithDetail("end_time", spec.EndTime)
		}
		if !start.Before(end) {
			return nil, interview.ErrInvalidTimeWindow().
				WithDetail("slot_index", i).
				WithDetail("start_time", spec.StartTime).
				WithDetail("end_time", spec.EndTime)
		}
		if len(spec.Tracks) == 0 {
			return nil, interview.ErrInvalidRequest().
				WithDetail("slot_index", i).
				WithDetail("tracks", "at least one track is required")
		}
		if spec.MaxInterviews <= 0 {
			return nil, interview.ErrInvalidRequest().
				WithDetail("slot_index", i).
				WithDetail("max_interviews", spec.MaxInterviews)
		}

		slots = append(slots, &interview.InterviewSlot{
			ID:   kernel.SlotID(uuid.NewString()),
			Date: day,
			StartTime: time.Date(day.Year(), day.Month(), day.Day(),
				start.Hour(), start.Minute(), 0, 0, time.UTC),
			EndTime: time.Date(day.Year(), day.Month(), day.Day(),
				end.Hour(), end.Minute(), 0, 0, time.UTC),
			Tracks:        spec.Tracks,
			MaxInterviews: spec.MaxInterviews,
			BookedCount:   0,
			IsAvailable:   true,
			MeetingLink:   spec.MeetingLink,
			CreatedBy:     createdBy,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}

	if err := s.slotRepo.CreateSlots(ctx, slots); err != nil {
		return nil, errx.Wrap(err, "failed to create manual slots", errx.TypeInternal)
	}

	return dereferenceSlots(slots), nil
}

// ListAvailable returns upcoming bookable slots for the application's
// track, grouped by date
func (s *InterviewService) ListAvailable(ctx context.Context, applicationID kernel.ApplicationID) (*interview.AvailableSlotsResponse, error) {
	app, err := s.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	slots, err := s.slotRepo.ListAvailable(ctx, time.Now(), app.TrackID)
	if err != nil {
		return nil, errx.Wrap(err, "failed to list available slots", errx.TypeInternal)
	}

	resp := &interview.AvailableSlotsResponse{Days: []interview.DaySlots{}}
	for _, slot := range slots {
		date := interview.SlotDate(slot.StartTime)
		if n := len(resp.Days); n > 0 && resp.Days[n-1].Date == date {
			resp.Days[n-1].Slots = append(resp.Days[n-1].Slots, slot)
			continue
		}
		resp.Days = append(resp.Days, interview.DaySlots{
			Date:  date,
			Slots: []interview.InterviewSlot{slot},
		})
	}

	return resp, nil
}

// GetSlot retrieves a slot by ID
func (s *InterviewService) GetSlot(ctx context.Context, id kernel.SlotID) (*interview.InterviewSlot, error) {
	return s.slotRepo.GetSlotByID(ctx, id)
}

// DeleteSlot removes an unbooked slot. A slot with bookings is
// deactivated instead so existing interviews stay intact; the returned
// bool reports whether the slot was actually deleted.
func (s *InterviewService) DeleteSlot(ctx context.Context, id kernel.SlotID) (bool, error) {
	err := s.slotRepo.DeleteSlot(ctx, id)
	if err == nil {
		return true, nil
	}
	if !errx.HasCode(err, interview.CodeSlotHasBookings) {
		return false, err
	}

	if err := s.slotRepo.SetAvailability(ctx, id, false); err != nil {
		return false, err
	}
	logx.Infof("slot %s has bookings, deactivated instead of deleted", id)
	return false, nil
}

// ============================================================================
// Booking
// ============================================================================

// Book books an application into a slot. The store's test-and-increment
// on booked_count decides races over the last seat.
func (s *InterviewService) Book(ctx context.Context, req interview.BookInterviewRequest) (*interview.Interview, error) {
	if req.ApplicationID.IsEmpty() || req.SlotID.IsEmpty() {
		return nil, interview.ErrInvalidRequest().
			WithDetail("message", "application_id and slot_id are required")
	}

	app, err := s.applicationRepo.GetByID(ctx, req.ApplicationID)
	if err != nil {
		return nil, err
	}

	bookable := false
	for _, st := range application.BookableStatuses() {
		if app.Status == st {
			bookable = true
			break
		}
	}
	if !bookable {
		return nil, interview.ErrNotEligible().
			WithDetail("application_id", req.ApplicationID.String()).
			WithDetail("current_status", app.Status)
	}

	slot, err := s.slotRepo.GetSlotByID(ctx, req.SlotID)
	if err != nil {
		return nil, err
	}
	if !slot.AcceptsTrack(app.TrackID) {
		return nil, interview.ErrNotEligible().
			WithDetail("application_id", req.ApplicationID.String()).
			WithDetail("track_id", app.TrackID.String())
	}

	now := time.Now()
	newInterview := &interview.Interview{
		ID:            kernel.InterviewID(uuid.NewString()),
		ApplicationID: req.ApplicationID,
		SlotID:        req.SlotID,
		Status:        interview.InterviewStatusScheduled,
		ScheduledAt:   slot.StartTime,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.bookingStore.Book(ctx, newInterview, application.BookableStatuses()); err != nil {
		return nil, err
	}

	s.notifyInterview(ctx, notify.KindInterviewScheduled, app, map[string]any{
		"scheduled_at": slot.StartTime,
		"meeting_link": slot.MeetingLink,
	})
	return newInterview, nil
}

// Cancel cancels a scheduled interview, releases its slot seat and
// returns the application to SHORTLISTED so a new slot can be booked.
func (s *InterviewService) Cancel(ctx context.Context, id kernel.InterviewID, reason string) (*interview.Interview, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, interview.ErrInvalidRequest().WithDetail("reason", "missing or empty")
	}

	cancelled, err := s.bookingStore.Cancel(ctx, id, reason)
	if err != nil {
		return nil, err
	}

	if app, getErr := s.applicationRepo.GetByID(ctx, cancelled.ApplicationID); getErr == nil {
		s.notifyInterview(ctx, notify.KindInterviewCancelled, app, map[string]any{
			"reason": reason,
		})
	}

	return cancelled, nil
}

// Complete records the interview outcome. The application outcome
// commits first: when provisioning or the rejection fails, the interview
// stays SCHEDULED and the call can be retried. The interview's own flip
// to COMPLETED is the last step.
func (s *InterviewService) Complete(ctx context.Context, id kernel.InterviewID, req interview.CompleteInterviewRequest, completedBy kernel.UserID) (*interview.CompleteInterviewResponse, error) {
	if !req.Result.IsValid() {
		return nil, interview.ErrInvalidRequest().WithDetail("result", req.Result)
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		return nil, interview.ErrInvalidRequest().WithDetail("rating", *req.Rating)
	}

	current, err := s.interviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != interview.InterviewStatusScheduled {
		return nil, interview.ErrAlreadyCompleted().
			WithDetail("interview_id", id.String()).
			WithDetail("current_status", current.Status)
	}

	resp := &interview.CompleteInterviewResponse{}

	switch req.Result {
	case interview.InterviewResultAccepted:
		accepted, err := s.applicationSvc.AcceptFromInterview(ctx, current.ApplicationID)
		if err != nil {
			// A prior attempt may have accepted the application and then
			// failed before completing the interview; only then is the
			// conflict safe to skip on retry.
			app, getErr := s.applicationRepo.GetByID(ctx, current.ApplicationID)
			if getErr != nil || app.Status != application.ApplicationStatusAccepted {
				return nil, err
			}
		} else {
			resp.ProvisionedUserID = accepted.UserID
			resp.TemporaryPassword = accepted.TemporaryPassword
		}
	case interview.InterviewResultRejected:
		reason := req.Feedback
		if strings.TrimSpace(reason) == "" {
			reason = "Not selected after interview"
		}
		if _, err := s.applicationSvc.Reject(ctx, current.ApplicationID, reason, completedBy); err != nil {
			app, getErr := s.applicationRepo.GetByID(ctx, current.ApplicationID)
			if getErr != nil || app.Status != application.ApplicationStatusRejected {
				return nil, err
			}
		}
	}

	completed, err := s.bookingStore.Complete(ctx, id, req.Result, req.Feedback, req.Rating)
	if err != nil {
		return nil, err
	}
	resp.Interview = completed

	return resp, nil
}

// GetInterview retrieves an interview by ID
func (s *InterviewService) GetInterview(ctx context.Context, id kernel.InterviewID) (*interview.Interview, error) {
	return s.interviewRepo.GetByID(ctx, id)
}

// ListBySlot retrieves all interviews booked into a slot
func (s *InterviewService) ListBySlot(ctx context.Context, slotID kernel.SlotID) ([]interview.Interview, error) {
	return s.interviewRepo.ListBySlot(ctx, slotID)
}

// notifyInterview dispatches an interview notification, best-effort.
func (s *InterviewService) notifyInterview(ctx context.Context, kind notify.TemplateKind, app *application.Application, extra map[string]any) {
	data := map[string]any{
		"application_id": app.ID.String(),
		"first_name":     app.FirstName,
	}
	for k, v := range extra {
		data[k] = v
	}

	if err := s.dispatcher.Dispatch(ctx, kind, app.Email, data); err != nil {
		logx.Warnf("failed to dispatch %s notification for application %s: %v", kind, app.ID, err)
	}
}

func dereferenceSlots(slots []*interview.InterviewSlot) []interview.InterviewSlot {
	out := make([]interview.InterviewSlot, 0, len(slots))
	for _, s := range slots {
		out = append(out, *s)
	}
	return out
}
