package displaysync

import (
	"context"
	"sync"
	"time"

	"signage/internal/model"
)

// Rotator cycles through a display's slides, showing each for its duration.
type Rotator struct {
	show    func(model.Slide)
	now     func() time.Time
	unit    time.Duration
	updated chan struct{}

	mu     sync.Mutex
	slides []model.Slide
	index  int
}

// NewRotator creates a rotator that calls show for every slide it displays.
func NewRotator(show func(model.Slide)) *Rotator {
	return &Rotator{
		show:    show,
		now:     func() time.Time { return time.Now().UTC() },
		unit:    time.Second,
		updated: make(chan struct{}, 1),
	}
}

// Update replaces the rotation with the snapshot's slides. The slide on
// screen keeps its place when it is still part of the rotation.
func (r *Rotator) Update(snap *model.DisplaySnapshot) {
	if snap == nil {
		return
	}
	r.mu.Lock()
	var currentID uint
	if r.index < len(r.slides) {
		currentID = r.slides[r.index].ID
	}
	r.slides = append([]model.Slide(nil), snap.Slides...)
	r.index = 0
	for i, s := range r.slides {
		if s.ID == currentID {
			r.index = i
			break
		}
	}
	r.mu.Unlock()

	select {
	case r.updated <- struct{}{}:
	default:
	}
}

// Run shows slides until ctx ends. With nothing to show it waits for the
// next Update.
func (r *Rotator) Run(ctx context.Context) error {
	for {
		slide, ok := r.current()
		if !ok {
			select {
			case <-ctx.Done():
				return nil
			case <-r.updated:
				continue
			}
		}

		r.show(slide)
		timer := time.NewTimer(r.duration(slide))
	wait:
		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil
			case <-timer.C:
				r.advance(slide.ID)
				break wait
			case <-r.updated:
				if !r.contains(slide.ID) {
					timer.Stop()
					break wait
				}
			}
		}
	}
}

// current returns the slide at the cursor, skipping slides that expired
// since the last snapshot.
func (r *Rotator) current() (model.Slide, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for i := 0; i < len(r.slides); i++ {
		idx := (r.index + i) % len(r.slides)
		if r.slides[idx].IsDisplayEligible(now) {
			r.index = idx
			return r.slides[idx], true
		}
	}
	return model.Slide{}, false
}

func (r *Rotator) advance(shownID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.slides) == 0 {
		return
	}
	for i, s := range r.slides {
		if s.ID == shownID {
			r.index = (i + 1) % len(r.slides)
			return
		}
	}
	r.index %= len(r.slides)
}

func (r *Rotator) contains(id uint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.slides {
		if s.ID == id {
			return true
		}
	}
	return false
}

func (r *Rotator) duration(s model.Slide) time.Duration {
	d := s.Duration
	if d < model.MinSlideDuration {
		d = model.DefaultSlideDuration
	}
	return time.Duration(d) * r.unit
}
