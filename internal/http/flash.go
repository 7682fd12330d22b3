package httpx

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/OnTrak-Tech/TaskBuddy/internal/ports"
)

// Notices are the transient user-visible messages collected during a
// request. The view layer renders them as toasts.
type Notices struct {
	Successes []string `json:"successes,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

// NoticeBag accumulates notices for one request.
type NoticeBag struct {
	mu      sync.Mutex
	notices Notices
}

type noticeBagKey struct{}

// Notify returns a middleware that injects a NoticeBag into every request
// context. CtxNotifier writes into it; handlers drain it into responses.
func Notify() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), noticeBagKey{}, &NoticeBag{})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CtxNotifier implements ports.Notifier against the request's NoticeBag.
// Notices raised outside a request (no bag in ctx) are dropped.
type CtxNotifier struct{}

func (CtxNotifier) Success(ctx context.Context, message string) {
	if bag := bagFromContext(ctx); bag != nil {
		bag.mu.Lock()
		bag.notices.Successes = append(bag.notices.Successes, message)
		bag.mu.Unlock()
	}
}

func (CtxNotifier) Error(ctx context.Context, message string) {
	if bag := bagFromContext(ctx); bag != nil {
		bag.mu.Lock()
		bag.notices.Errors = append(bag.notices.Errors, message)
		bag.mu.Unlock()
	}
}

var _ ports.Notifier = CtxNotifier{}

func bagFromContext(ctx context.Context) *NoticeBag {
	bag, _ := ctx.Value(noticeBagKey{}).(*NoticeBag)
	return bag
}

// TakeNotices drains the request's collected notices for embedding in a
// JSON response.
func TakeNotices(ctx context.Context) Notices {
	bag := bagFromContext(ctx)
	if bag == nil {
		return Notices{}
	}
	bag.mu.Lock()
	defer bag.mu.Unlock()
	n := bag.notices
	bag.notices = Notices{}
	return n
}

const flashCookieName = "flash"

// FlashRedirect carries the request's notices across a redirect in a
// short-lived cookie the next page load consumes.
func FlashRedirect(w http.ResponseWriter, r *http.Request, location string) {
	n := TakeNotices(r.Context())
	if len(n.Successes) > 0 || len(n.Errors) > 0 {
		if data, err := json.Marshal(n); err == nil {
			http.SetCookie(w, &http.Cookie{
				Name:     flashCookieName,
				Value:    base64.RawURLEncoding.EncodeToString(data),
				Path:     "/",
				MaxAge:   60,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// ReadFlash consumes the flash cookie, clearing it on the response.
func ReadFlash(w http.ResponseWriter, r *http.Request) Notices {
	c, err := r.Cookie(flashCookieName)
	if err != nil {
		return Notices{}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	data, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return Notices{}
	}
	var n Notices
	if unmarshalErr := json.Unmarshal(data, &n); unmarshalErr != nil {
		return Notices{}
	}
	return n
}
