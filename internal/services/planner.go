package services

import (
	"context"
	"errors"
	"fmt"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/optimizer"
	"itinerary-route-service/internal/platform/obs"
	"itinerary-route-service/internal/ports"

	"go.uber.org/zap"
)

// ErrNothingToOptimize is returned when a day, or every day of a trip, has
// no activity with coordinates.
var ErrNothingToOptimize = errors.New("nothing to optimize")

// RouteOptimizer orders stops; *optimizer.Optimizer satisfies it.
type RouteOptimizer interface {
	OptimizeDay(ctx context.Context, stops []*domain.Stop, origin *domain.Origin) (optimizer.DayResult, error)
	OptimizeTrip(ctx context.Context, days []optimizer.DayInput, origin *domain.Origin) (map[int]optimizer.DayResult, error)
}

// DayPlan is the optimized itinerary of one day.
type DayPlan struct {
	TripID    string
	DayNumber int
	Origin    *domain.Origin
	// Activities in their new order: optimized activities first, then those
	// without coordinates in their previous relative order.
	Activities []*domain.Activity
	Result     optimizer.DayResult
	Persisted  bool
}

type TripPlan struct {
	TripID string
	Origin *domain.Origin
	Days   []*DayPlan
}

// Planner loads itineraries, optimizes them and persists the new order.
type Planner struct {
	repo   ports.ActivityRepository
	opt    RouteOptimizer
	usage  ports.UsageTracker
	logger *zap.Logger
}

// NewPlanner wires a planner. usage may be nil.
func NewPlanner(repo ports.ActivityRepository, opt RouteOptimizer, usage ports.UsageTracker, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{repo: repo, opt: opt, usage: usage, logger: logger}
}

// PlanDay optimizes one day and persists the new order.
func (p *Planner) PlanDay(ctx context.Context, tripID string, dayNumber int) (_ *DayPlan, err error) {
	defer obs.Time(ctx, p.logger, "planner.PlanDay")(&err)
	return p.planDay(ctx, tripID, dayNumber, true)
}

// PreviewDay optimizes one day without writing anything.
func (p *Planner) PreviewDay(ctx context.Context, tripID string, dayNumber int) (_ *DayPlan, err error) {
	defer obs.Time(ctx, p.logger, "planner.PreviewDay")(&err)
	return p.planDay(ctx, tripID, dayNumber, false)
}

func (p *Planner) planDay(ctx context.Context, tripID string, dayNumber int, persist bool) (*DayPlan, error) {
	trip, err := p.repo.GetTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("plan day: get trip: %w", err)
	}

	day, err := p.repo.ListDay(ctx, tripID, dayNumber)
	if err != nil {
		return nil, fmt.Errorf("plan day: list day: %w", err)
	}

	stops := day.Stops()
	if len(stops) == 0 {
		return nil, fmt.Errorf("plan day: trip %s day %d: %w", tripID, dayNumber, ErrNothingToOptimize)
	}

	res, err := p.opt.OptimizeDay(ctx, stops, trip.Lodging)
	if err != nil {
		return nil, fmt.Errorf("plan day: %w", err)
	}
	p.track(ctx, 1)

	plan := &DayPlan{
		TripID:     tripID,
		DayNumber:  dayNumber,
		Origin:     trip.Lodging,
		Activities: day.Activities,
		Result:     res,
	}
	if res.Optimized {
		plan.Activities = reorder(day.Activities, res.Stops)
	}

	if persist && res.Optimized {
		if err := p.persist(ctx, plan); err != nil {
			return nil, fmt.Errorf("plan day: %w", err)
		}
	}

	return plan, nil
}

// PlanTrip optimizes every day of a trip concurrently and persists each
// optimized day. Days without coordinates are returned unchanged.
func (p *Planner) PlanTrip(ctx context.Context, tripID string) (_ *TripPlan, err error) {
	defer obs.Time(ctx, p.logger, "planner.PlanTrip")(&err)

	trip, err := p.repo.GetTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("plan trip: get trip: %w", err)
	}

	days, err := p.repo.ListDays(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("plan trip: list days: %w", err)
	}

	inputs := make([]optimizer.DayInput, 0, len(days))
	for _, d := range days {
		if stops := d.Stops(); len(stops) > 0 {
			inputs = append(inputs, optimizer.DayInput{DayNumber: d.DayNumber, Stops: stops})
		}
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("plan trip: trip %s: %w", tripID, ErrNothingToOptimize)
	}

	results, err := p.opt.OptimizeTrip(ctx, inputs, trip.Lodging)
	if err != nil {
		return nil, fmt.Errorf("plan trip: %w", err)
	}
	p.track(ctx, int64(len(inputs)))

	plan := &TripPlan{TripID: tripID, Origin: trip.Lodging, Days: make([]*DayPlan, 0, len(days))}
	for _, d := range days {
		dp := &DayPlan{
			TripID:     tripID,
			DayNumber:  d.DayNumber,
			Origin:     trip.Lodging,
			Activities: d.Activities,
		}
		if res, ok := results[d.DayNumber]; ok {
			dp.Result = res
			if res.Optimized {
				dp.Activities = reorder(d.Activities, res.Stops)
				if err := p.persist(ctx, dp); err != nil {
					return nil, fmt.Errorf("plan trip: %w", err)
				}
			}
		}
		plan.Days = append(plan.Days, dp)
	}

	return plan, nil
}

func (p *Planner) persist(ctx context.Context, plan *DayPlan) error {
	ids := make([]string, len(plan.Activities))
	for i, a := range plan.Activities {
		ids[i] = a.ActivityID
	}
	if err := p.repo.UpdateOrder(ctx, plan.TripID, plan.DayNumber, ids); err != nil {
		return fmt.Errorf("persist day %d: %w", plan.DayNumber, err)
	}
	for i, a := range plan.Activities {
		a.OrderIndex = i
	}
	plan.Persisted = true
	return nil
}

func (p *Planner) track(ctx context.Context, days int64) {
	if p.usage == nil {
		return
	}
	if err := p.usage.Track(ctx, ports.APIOptimization, days); err != nil {
		p.logger.Warn("usage tracking failed", zap.Error(err))
	}
}

// reorder places activities matching ordered stops first, in stop order,
// followed by the remaining activities in their existing relative order.
func reorder(activities []*domain.Activity, ordered []*domain.Stop) []*domain.Activity {
	byID := make(map[string]*domain.Activity, len(activities))
	for _, a := range activities {
		byID[a.ActivityID] = a
	}

	out := make([]*domain.Activity, 0, len(activities))
	placed := make(map[string]struct{}, len(ordered))
	for _, s := range ordered {
		if a, ok := byID[s.ID]; ok {
			out = append(out, a)
			placed[s.ID] = struct{}{}
		}
	}
	for _, a := range activities {
		if _, ok := placed[a.ActivityID]; !ok {
			out = append(out, a)
		}
	}
	return out
}
