package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/ecodispensa/dispensa/internal/model"
	"github.com/ecodispensa/dispensa/internal/store"
)

// expiryWindowDays is how far ahead the reminder looks: items expiring
// today or within the next three days are included.
const expiryWindowDays = 3

// sender delivers a payload to a single subscription.
type sender interface {
	Send(sub *model.PushSubscription, payload Payload) error
}

// ItemSource provides the current pantry snapshot.
type ItemSource interface {
	PantryItems() []model.PantryItem
}

// Scheduler periodically checks the pantry for items close to their
// expiry date and pushes a reminder, at most once per calendar day.
type Scheduler struct {
	mu       sync.RWMutex
	service  sender
	subs     *store.PushStore
	sentLog  *store.NotificationStore
	pantry   ItemSource
	interval time.Duration
	now      func() time.Time
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewScheduler creates an expiry reminder scheduler.
func NewScheduler(svc *Service, pushStore *store.PushStore, notifStore *store.NotificationStore, pantry ItemSource) *Scheduler {
	return &Scheduler{
		service:  svc,
		subs:     pushStore,
		sentLog:  notifStore,
		pantry:   pantry,
		interval: 60 * time.Second,
		now:      time.Now,
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) tick() {
	now := s.now().UTC()

	sent, err := s.sentLog.WasSentOn(model.NotifTypeExpiry, now)
	if err != nil {
		log.Printf("notify scheduler: check sent: %v", err)
		return
	}
	if sent {
		return
	}

	expiring := expiringItems(s.pantry.PantryItems(), now)
	if len(expiring) == 0 {
		return
	}

	subs, err := s.subs.List()
	if err != nil {
		log.Printf("notify scheduler: list subscriptions: %v", err)
		return
	}
	if len(subs) == 0 {
		return
	}

	payload := Payload{
		Title: "EcoDispensa - Anti Spreco ⚠️",
		Body:  expiryBody(expiring),
		URL:   "/",
		Tag:   "expiry-notification",
	}

	for _, sub := range subs {
		if err := s.service.Send(&sub, payload); err != nil {
			if errors.Is(err, ErrExpired) {
				s.subs.DeleteByEndpoint(sub.Endpoint)
			} else {
				log.Printf("notify scheduler: send expiry reminder: %v", err)
			}
		}
	}

	if err := s.sentLog.RecordSent(model.NotifTypeExpiry, now); err != nil {
		log.Printf("notify scheduler: record sent: %v", err)
	}
}

// expiringItems returns the items whose expiry date falls between today
// and the end of the lookahead window.
func expiringItems(items []model.PantryItem, now time.Time) []model.PantryItem {
	var expiring []model.PantryItem
	for _, item := range items {
		if item.ExpiryDate == "" {
			continue
		}
		expiry, err := time.Parse("2006-01-02", item.ExpiryDate)
		if err != nil {
			continue
		}
		days := int(math.Ceil(expiry.Sub(now).Hours() / 24))
		if days >= 0 && days <= expiryWindowDays {
			expiring = append(expiring, item)
		}
	}
	return expiring
}

// expiryBody names up to two expiring products and counts the rest.
func expiryBody(expiring []model.PantryItem) string {
	names := make([]string, 0, 2)
	for _, item := range expiring[:min(2, len(expiring))] {
		names = append(names, item.Name)
	}
	suffix := ""
	if len(expiring) > 2 {
		suffix = fmt.Sprintf(" e altri %d", len(expiring)-2)
	}
	return fmt.Sprintf("Hai %d prodotti in scadenza: %s%s. Cucinali subito con EcoChef!",
		len(expiring), strings.Join(names, ", "), suffix)
}
