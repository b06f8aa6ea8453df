package service

import (
	"context"
	"sort"
	"time"

	"family-calendar-api/modules/event/entity"
	"family-calendar-api/modules/event/repository"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// fakeStore is an in-memory Store. It enforces the same unique constraint on
// (event_id, occurrence_date) the database does, returning the pq error the
// driver would, so the coordinator's retry protocol is exercised for real.
type fakeStore struct {
	events     map[uuid.UUID]*entity.Event
	exceptions map[uuid.UUID]*entity.EventException

	// failExceptionCreates makes the next N exception inserts fail with a
	// unique violation, simulating a concurrent writer winning the slot.
	failExceptionCreates int
	// raceWinner, when set, is inserted into the store on the first forced
	// failure, the way a committed concurrent insert becomes visible.
	raceWinner *entity.EventException
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:     make(map[uuid.UUID]*entity.Event),
		exceptions: make(map[uuid.UUID]*entity.EventException),
	}
}

func (s *fakeStore) Events() repository.EventRepositoryInterface {
	return &fakeEventRepo{s}
}

func (s *fakeStore) Exceptions() repository.ExceptionRepositoryInterface {
	return &fakeExceptionRepo{s}
}

func (s *fakeStore) WithinTransaction(_ context.Context, fn func(st repository.Store) error) error {
	return fn(s)
}

func (s *fakeStore) addEvent(ev *entity.Event) *entity.Event {
	cp := *ev
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	s.events[cp.ID] = &cp
	return &cp
}

func (s *fakeStore) addException(x *entity.EventException) *entity.EventException {
	cp := *x
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	s.exceptions[cp.ID] = &cp
	return &cp
}

func (s *fakeStore) exceptionBySlot(eventID uuid.UUID, date time.Time) *entity.EventException {
	key := entity.DateKey(date)
	for _, x := range s.exceptions {
		if x.EventID == eventID && entity.DateKey(x.OccurrenceDate) == key {
			return x
		}
	}
	return nil
}

type fakeEventRepo struct {
	s *fakeStore
}

func (r *fakeEventRepo) Create(_ context.Context, event *entity.Event) (*entity.Event, error) {
	created := r.s.addEvent(event)
	cp := *created
	return &cp, nil
}

func (r *fakeEventRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Event, error) {
	ev, ok := r.s.events[id]
	if !ok {
		return nil, nil
	}
	cp := *ev
	return &cp, nil
}

func (r *fakeEventRepo) ListForWindow(_ context.Context, familyID uuid.UUID, from, to time.Time) ([]entity.Event, error) {
	var out []entity.Event
	for _, ev := range r.s.events {
		if ev.FamilyID != familyID || ev.IsOverride {
			continue
		}
		if ev.StartTime.After(to) {
			continue
		}
		if ev.RecurrenceType == entity.RecurrenceNone && ev.StartTime.Before(from) {
			continue
		}
		if ev.RecurrenceEnd != nil && ev.RecurrenceEnd.Before(from) {
			continue
		}
		out = append(out, *ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r *fakeEventRepo) Update(_ context.Context, event *entity.Event) error {
	cp := *event
	r.s.events[event.ID] = &cp
	return nil
}

func (r *fakeEventRepo) TruncateRecurrence(_ context.Context, id uuid.UUID, end time.Time) error {
	if ev, ok := r.s.events[id]; ok {
		e := end
		ev.RecurrenceEnd = &e
	}
	return nil
}

func (r *fakeEventRepo) SetAttachmentURL(_ context.Context, id uuid.UUID, url string) error {
	if ev, ok := r.s.events[id]; ok {
		u := url
		ev.AttachmentURL = &u
	}
	return nil
}

func (r *fakeEventRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.s.events, id)
	return nil
}

type fakeExceptionRepo struct {
	s *fakeStore
}

func (r *fakeExceptionRepo) Create(_ context.Context, exception *entity.EventException) (*entity.EventException, error) {
	if r.s.failExceptionCreates > 0 {
		r.s.failExceptionCreates--
		if r.s.raceWinner != nil {
			r.s.addException(r.s.raceWinner)
			r.s.raceWinner = nil
		}
		return nil, &pq.Error{Code: "23505"}
	}
	if r.s.exceptionBySlot(exception.EventID, exception.OccurrenceDate) != nil {
		return nil, &pq.Error{Code: "23505"}
	}
	created := r.s.addException(exception)
	cp := *created
	return &cp, nil
}

func (r *fakeExceptionRepo) Update(_ context.Context, exception *entity.EventException) error {
	cp := *exception
	r.s.exceptions[exception.ID] = &cp
	return nil
}

func (r *fakeExceptionRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.s.exceptions, id)
	return nil
}

func (r *fakeExceptionRepo) GetBySlot(_ context.Context, eventID uuid.UUID, date time.Time) (*entity.EventException, error) {
	x := r.s.exceptionBySlot(eventID, date)
	if x == nil {
		return nil, nil
	}
	cp := *x
	return &cp, nil
}

func (r *fakeExceptionRepo) ListByEventID(_ context.Context, eventID uuid.UUID) ([]entity.EventException, error) {
	var out []entity.EventException
	for _, x := range r.s.exceptions {
		if x.EventID == eventID {
			out = append(out, *x)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurrenceDate.Before(out[j].OccurrenceDate) })
	return out, nil
}

func (r *fakeExceptionRepo) ListOnOrAfter(_ context.Context, eventID uuid.UUID, date time.Time) ([]entity.EventException, error) {
	var out []entity.EventException
	for _, x := range r.s.exceptions {
		if x.EventID == eventID && !x.OccurrenceDate.Before(date) {
			out = append(out, *x)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurrenceDate.Before(out[j].OccurrenceDate) })
	return out, nil
}

func (r *fakeExceptionRepo) Reparent(_ context.Context, ids []uuid.UUID, newEventID uuid.UUID) error {
	for _, id := range ids {
		if x, ok := r.s.exceptions[id]; ok {
			x.EventID = newEventID
		}
	}
	return nil
}

func (r *fakeExceptionRepo) LoadOverlays(_ context.Context, eventIDs []uuid.UUID) (entity.Overlays, error) {
	overlays := entity.NewOverlays()
	wanted := make(map[uuid.UUID]struct{}, len(eventIDs))
	for _, id := range eventIDs {
		wanted[id] = struct{}{}
	}

	for _, x := range r.s.exceptions {
		if _, ok := wanted[x.EventID]; !ok {
			continue
		}
		switch x.Kind {
		case entity.ExceptionDeleted:
			overlays.AddDeleted(x.EventID, x.OccurrenceDate)
		case entity.ExceptionModified:
			if x.OverrideEventID != nil {
				if override, ok := r.s.events[*x.OverrideEventID]; ok {
					overlays.AddModified(x.EventID, x.OccurrenceDate, *override)
				}
			}
		}
	}
	return overlays, nil
}
